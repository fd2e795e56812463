package presentation

import (
	"fmt"

	"github.com/aretw0/causal/pkg/domain"
	"github.com/samber/lo"
)

// Presentation is the signature of one theory: its objects, generators and
// equations. It grows only through its Add methods and never shrinks.
//
// A Presentation is not safe for concurrent mutation. Give a second party
// its own snapshot with Clone instead of sharing a live store.
type Presentation struct {
	name string

	objects     []domain.Object
	generators  []domain.Generator
	equations   []domain.Equation
	index       map[string]domain.Kind // joint namespace of objects and generators
	objectAt    map[string]int
	generatorAt map[string]int

	log []Mutation
}

// New creates an empty presentation.
func New(name string) *Presentation {
	return &Presentation{
		name:        name,
		index:       make(map[string]domain.Kind),
		objectAt:    make(map[string]int),
		generatorAt: make(map[string]int),
	}
}

// Name returns the theory name given at creation.
func (p *Presentation) Name() string { return p.name }

// AddObject registers a new object.
func (p *Presentation) AddObject(name string) (domain.Object, error) {
	if name == "" {
		return "", fmt.Errorf("object name must not be empty")
	}
	if err := p.claim(name, domain.KindObject); err != nil {
		return "", err
	}
	obj := domain.Object(name)
	p.objectAt[name] = len(p.objects)
	p.objects = append(p.objects, obj)
	p.record(OpAddObject, name)
	return obj, nil
}

// AddObjects registers several objects, stopping at the first failure.
func (p *Presentation) AddObjects(names ...string) error {
	for _, n := range names {
		if _, err := p.AddObject(n); err != nil {
			return err
		}
	}
	return nil
}

// AddGenerator registers a generator whose domain and codomain objects must
// already belong to this presentation.
func (p *Presentation) AddGenerator(name string, dom, cod domain.Seq) (domain.Generator, error) {
	if name == "" {
		return domain.Generator{}, fmt.Errorf("generator name must not be empty")
	}
	if existing, ok := p.index[name]; ok {
		return domain.Generator{}, &domain.NameCollisionError{Name: name, Existing: existing, Adding: domain.KindGenerator}
	}
	for _, o := range dom.Concat(cod) {
		if _, ok := p.objectAt[o.Name()]; !ok {
			return domain.Generator{}, &domain.UnknownError{Kind: domain.KindObject, Name: o.Name(), Where: "generator " + name}
		}
	}
	g := domain.Generator{Name: name, Dom: dom.Clone(), Cod: cod.Clone()}
	if g.Dom == nil {
		g.Dom = domain.Seq{}
	}
	if g.Cod == nil {
		g.Cod = domain.Seq{}
	}
	p.index[name] = domain.KindGenerator
	p.generatorAt[name] = len(p.generators)
	p.generators = append(p.generators, g)
	p.record(OpAddGenerator, name)
	return g.Clone(), nil
}

// AddEquation asserts lhs == rhs. Both terms must have the same domain and
// codomain and reference only generators and objects of this presentation.
// On failure the equation set is left unchanged.
func (p *Presentation) AddEquation(name string, lhs, rhs domain.Term) error {
	for _, t := range []domain.Term{lhs, rhs} {
		if err := p.Resolve(t); err != nil {
			return err
		}
	}
	eq, err := domain.NewEquation(name, lhs, rhs)
	if err != nil {
		return err
	}
	p.equations = append(p.equations, eq)
	p.record(OpAddEquation, eq.Label())
	return nil
}

// Resolve checks that t is well typed and that every generator and object it
// mentions belongs to this presentation with the registered signature.
func (p *Presentation) Resolve(t domain.Term) error {
	if err := domain.CheckTerm(t); err != nil {
		return err
	}
	for _, g := range domain.Generators(t) {
		own, err := p.Generator(g.Name)
		if err != nil {
			return err
		}
		if !own.Dom.Equal(g.Dom) {
			return &domain.TypeMismatchError{Op: "generator domain", Subject: g.Name, Expected: own.Dom, Actual: g.Dom}
		}
		if !own.Cod.Equal(g.Cod) {
			return &domain.TypeMismatchError{Op: "generator codomain", Subject: g.Name, Expected: own.Cod, Actual: g.Cod}
		}
	}
	for _, o := range domain.ObjectsOf(t) {
		if _, ok := p.objectAt[o.Name()]; !ok {
			return &domain.UnknownError{Kind: domain.KindObject, Name: o.Name()}
		}
	}
	return nil
}

// Object looks up an object by name.
func (p *Presentation) Object(name string) (domain.Object, error) {
	i, ok := p.objectAt[name]
	if !ok {
		return "", &domain.UnknownError{Kind: domain.KindObject, Name: name}
	}
	return p.objects[i], nil
}

// ObjectSeq resolves a list of object names.
func (p *Presentation) ObjectSeq(names ...string) (domain.Seq, error) {
	out := make(domain.Seq, len(names))
	for i, n := range names {
		o, err := p.Object(n)
		if err != nil {
			return nil, err
		}
		out[i] = o
	}
	return out, nil
}

// Generator looks up a generator by name.
func (p *Presentation) Generator(name string) (domain.Generator, error) {
	i, ok := p.generatorAt[name]
	if !ok {
		return domain.Generator{}, &domain.UnknownError{Kind: domain.KindGenerator, Name: name}
	}
	return p.generators[i].Clone(), nil
}

// Lookup reports what a name refers to in this presentation.
func (p *Presentation) Lookup(name string) (domain.Kind, bool) {
	k, ok := p.index[name]
	return k, ok
}

// Objects returns all objects in insertion order.
func (p *Presentation) Objects() []domain.Object {
	return append([]domain.Object(nil), p.objects...)
}

// Generators returns all generators in insertion order.
func (p *Presentation) Generators() []domain.Generator {
	return lo.Map(p.generators, func(g domain.Generator, _ int) domain.Generator { return g.Clone() })
}

// Equations returns all equations in insertion order. Terms are immutable
// and therefore shared.
func (p *Presentation) Equations() []domain.Equation {
	return append([]domain.Equation(nil), p.equations...)
}

// Clone returns an independent presentation with the same contents and log.
// Terms are immutable and carry generators by value, so they stay valid in
// the clone.
func (p *Presentation) Clone() *Presentation {
	return p.CloneAs(p.name)
}

// CloneAs is Clone with a new name.
func (p *Presentation) CloneAs(name string) *Presentation {
	c := New(name)
	c.objects = append(c.objects, p.objects...)
	c.generators = p.Generators()
	c.equations = p.Equations()
	for k, v := range p.index {
		c.index[k] = v
	}
	for k, v := range p.objectAt {
		c.objectAt[k] = v
	}
	for k, v := range p.generatorAt {
		c.generatorAt[k] = v
	}
	c.log = append(c.log, p.log...)
	c.record(OpClone, p.name)
	return c
}

func (p *Presentation) claim(name string, kind domain.Kind) error {
	if existing, ok := p.index[name]; ok {
		return &domain.NameCollisionError{Name: name, Existing: existing, Adding: kind}
	}
	p.index[name] = kind
	return nil
}
