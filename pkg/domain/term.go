package domain

import (
	"fmt"
	"strings"
)

// Term is a morphism expression. Terms are immutable trees; a subterm may be
// shared by any number of parents. The sequences returned by Dom and Cod
// must not be modified by callers.
type Term interface {
	Dom() Seq
	Cod() Seq
	String() string
	isTerm()
}

// Identity is the identity morphism on a sequence of objects.
type Identity struct {
	Objects Seq
}

// GeneratorRef is an occurrence of a generator. It carries the generator's
// signature so that the term's type can be derived without a presentation.
type GeneratorRef struct {
	Generator Generator
}

// Composition is sequential composition: First, then Second.
type Composition struct {
	First  Term
	Second Term
}

// Product is the tensor (parallel composition) of two terms.
type Product struct {
	Left  Term
	Right Term
}

// Duplicate copies a value: A -> A⊗A.
type Duplicate struct {
	Object Object
}

// Delete discards a value: A -> unit.
type Delete struct {
	Object Object
}

// Braid exchanges two adjacent blocks of wires: A⊗B -> B⊗A.
type Braid struct {
	Left  Seq
	Right Seq
}

func (t *Identity) Dom() Seq { return t.Objects }
func (t *Identity) Cod() Seq { return t.Objects }
func (t *Identity) String() string {
	return "id" + t.Objects.String()
}

func (t *GeneratorRef) Dom() Seq       { return t.Generator.Dom }
func (t *GeneratorRef) Cod() Seq       { return t.Generator.Cod }
func (t *GeneratorRef) String() string { return t.Generator.Name }

func (t *Composition) Dom() Seq { return t.First.Dom() }
func (t *Composition) Cod() Seq { return t.Second.Cod() }
func (t *Composition) String() string {
	return "(" + t.First.String() + " ; " + t.Second.String() + ")"
}

func (t *Product) Dom() Seq { return t.Left.Dom().Concat(t.Right.Dom()) }
func (t *Product) Cod() Seq { return t.Left.Cod().Concat(t.Right.Cod()) }
func (t *Product) String() string {
	return "(" + t.Left.String() + " * " + t.Right.String() + ")"
}

func (t *Duplicate) Dom() Seq       { return Seq{t.Object} }
func (t *Duplicate) Cod() Seq       { return Seq{t.Object, t.Object} }
func (t *Duplicate) String() string { return fmt.Sprintf("dup[%s]", t.Object) }

func (t *Delete) Dom() Seq       { return Seq{t.Object} }
func (t *Delete) Cod() Seq       { return Seq{} }
func (t *Delete) String() string { return fmt.Sprintf("del[%s]", t.Object) }

func (t *Braid) Dom() Seq { return t.Left.Concat(t.Right) }
func (t *Braid) Cod() Seq { return t.Right.Concat(t.Left) }
func (t *Braid) String() string {
	return "swap[" + strings.Join(t.Left.Names(), ",") + "|" + strings.Join(t.Right.Names(), ",") + "]"
}

func (*Identity) isTerm()     {}
func (*GeneratorRef) isTerm() {}
func (*Composition) isTerm()  {}
func (*Product) isTerm()      {}
func (*Duplicate) isTerm()    {}
func (*Delete) isTerm()       {}
func (*Braid) isTerm()        {}

// Id returns the identity on objs.
func Id(objs ...Object) Term {
	return &Identity{Objects: Seq(objs).Clone()}
}

// IdSeq returns the identity on a sequence.
func IdSeq(objs Seq) Term {
	if objs == nil {
		objs = Seq{}
	}
	return &Identity{Objects: objs.Clone()}
}

// Ref returns a reference to g.
func Ref(g Generator) Term {
	return &GeneratorRef{Generator: g.Clone()}
}

// Dup returns the duplication morphism on o.
func Dup(o Object) Term { return &Duplicate{Object: o} }

// Del returns the deletion morphism on o.
func Del(o Object) Term { return &Delete{Object: o} }

// Swap returns the braiding a⊗b -> b⊗a.
func Swap(a, b Seq) Term {
	return &Braid{Left: a.Clone(), Right: b.Clone()}
}

// Compose returns f followed by g. It fails with a *TypeMismatchError when
// the codomain of f is not the domain of g.
func Compose(f, g Term) (Term, error) {
	if !f.Cod().Equal(g.Dom()) {
		return nil, &TypeMismatchError{
			Op:       "compose",
			Subject:  g.String(),
			Expected: f.Cod(),
			Actual:   g.Dom(),
		}
	}
	return &Composition{First: f, Second: g}, nil
}

// MustCompose is like Compose but panics on a type mismatch. It is meant for
// terms whose types are known to line up by construction.
func MustCompose(f, g Term) Term {
	t, err := Compose(f, g)
	if err != nil {
		panic(err)
	}
	return t
}

// ComposeAll composes a non-empty chain left to right.
func ComposeAll(first Term, rest ...Term) (Term, error) {
	acc := first
	for _, t := range rest {
		var err error
		if acc, err = Compose(acc, t); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// Tensor returns f and g side by side. It is total.
func Tensor(f, g Term) Term {
	return &Product{Left: f, Right: g}
}

// TensorAll tensors the given terms left to right. With no terms it returns
// the identity on the unit.
func TensorAll(ts ...Term) Term {
	if len(ts) == 0 {
		return IdSeq(nil)
	}
	acc := ts[0]
	for _, t := range ts[1:] {
		acc = Tensor(acc, t)
	}
	return acc
}

// Walk visits t and its subterms depth-first, parents before children.
// Returning false from fn prunes the subtree.
func Walk(t Term, fn func(Term) bool) {
	if !fn(t) {
		return
	}
	switch n := t.(type) {
	case *Composition:
		Walk(n.First, fn)
		Walk(n.Second, fn)
	case *Product:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	}
}

// Generators returns the generators referenced by t, each name once, in
// order of first occurrence.
func Generators(t Term) []Generator {
	seen := make(map[string]bool)
	var out []Generator
	Walk(t, func(n Term) bool {
		if ref, ok := n.(*GeneratorRef); ok && !seen[ref.Generator.Name] {
			seen[ref.Generator.Name] = true
			out = append(out, ref.Generator)
		}
		return true
	})
	return out
}

// ObjectsOf returns every object mentioned by t, including those only
// reachable through generator signatures, each once in order of first use.
func ObjectsOf(t Term) Seq {
	seen := make(map[Object]bool)
	var out Seq
	add := func(s Seq) {
		for _, o := range s {
			if !seen[o] {
				seen[o] = true
				out = append(out, o)
			}
		}
	}
	Walk(t, func(n Term) bool {
		switch n := n.(type) {
		case *Identity:
			add(n.Objects)
		case *GeneratorRef:
			add(n.Generator.Dom)
			add(n.Generator.Cod)
		case *Duplicate:
			add(Seq{n.Object})
		case *Delete:
			add(Seq{n.Object})
		case *Braid:
			add(n.Left)
			add(n.Right)
		}
		return true
	})
	return out
}
