package dsl

import (
	"fmt"

	"github.com/aretw0/causal/pkg/domain"
	"github.com/aretw0/causal/pkg/presentation"
)

// Builder manages the construction of a presentation.
type Builder struct {
	name       string
	objects    []string
	generators []*GeneratorBuilder
	byName     map[string]*GeneratorBuilder
	equations  []equation
}

type equation struct {
	name     string
	lhs, rhs *ProgramBuilder
}

// New creates a new presentation builder.
func New(name string) *Builder {
	return &Builder{
		name:   name,
		byName: make(map[string]*GeneratorBuilder),
	}
}

// Objects declares objects, in order.
func (b *Builder) Objects(names ...string) *Builder {
	b.objects = append(b.objects, names...)
	return b
}

// Generator declares a generator.
// If the generator already exists, it returns the existing builder.
func (b *Builder) Generator(name string) *GeneratorBuilder {
	if gb, ok := b.byName[name]; ok {
		return gb
	}
	gb := &GeneratorBuilder{name: name, builder: b}
	b.byName[name] = gb
	b.generators = append(b.generators, gb)
	return gb
}

// Equation asserts that two programs denote the same process. Both sides are
// compiled against the finished presentation by Build.
func (b *Builder) Equation(name string, lhs, rhs *ProgramBuilder) *Builder {
	b.equations = append(b.equations, equation{name: name, lhs: lhs, rhs: rhs})
	return b
}

// Build creates the presentation, adding objects, then generators, then
// equations. It stops at the first failure.
func (b *Builder) Build() (*presentation.Presentation, error) {
	p := presentation.New(b.name)
	if err := p.AddObjects(b.objects...); err != nil {
		return nil, err
	}
	for _, gb := range b.generators {
		dom, err := p.ObjectSeq(gb.dom...)
		if err != nil {
			return nil, fmt.Errorf("generator %s: %w", gb.name, err)
		}
		cod, err := p.ObjectSeq(gb.cod...)
		if err != nil {
			return nil, fmt.Errorf("generator %s: %w", gb.name, err)
		}
		if _, err := p.AddGenerator(gb.name, dom, cod); err != nil {
			return nil, err
		}
	}
	for _, eq := range b.equations {
		lhs, err := eq.lhs.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("equation %s: left side: %w", eq.name, err)
		}
		rhs, err := eq.rhs.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("equation %s: right side: %w", eq.name, err)
		}
		if err := p.AddEquation(eq.name, lhs, rhs); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// MustBuild is like Build but panics on error. Intended for tests and
// package-level theory definitions.
func (b *Builder) MustBuild() *presentation.Presentation {
	p, err := b.Build()
	if err != nil {
		panic(err)
	}
	return p
}

// GeneratorBuilder provides a fluent API for declaring a generator.
type GeneratorBuilder struct {
	name     string
	dom, cod []string
	builder  *Builder
}

// From sets the input objects.
func (g *GeneratorBuilder) From(objects ...string) *GeneratorBuilder {
	g.dom = objects
	return g
}

// To sets the output objects.
func (g *GeneratorBuilder) To(objects ...string) *GeneratorBuilder {
	g.cod = objects
	return g
}

// Generator declares the next generator on the same presentation.
func (g *GeneratorBuilder) Generator(name string) *GeneratorBuilder {
	return g.builder.Generator(name)
}

// Signature returns the declared generator with unresolved objects.
func (g *GeneratorBuilder) Signature() domain.Generator {
	return domain.Generator{Name: g.name, Dom: domain.Objects(g.dom...), Cod: domain.Objects(g.cod...)}
}
