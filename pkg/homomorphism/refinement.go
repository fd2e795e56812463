package homomorphism

import (
	"fmt"

	"github.com/aretw0/causal/pkg/domain"
	"github.com/aretw0/causal/pkg/presentation"
)

// Refinement derives a new theory from a base one. The base is cloned, the
// clone grows new objects and generators, and existing generators are then
// defined in terms of the new ones. Build returns the refined theory with
// the inclusion of the base into it.
type Refinement struct {
	base    *presentation.Presentation
	refined *presentation.Presentation
	opts    []Option
}

// NewRefinement starts a refinement of base named name.
func NewRefinement(base *presentation.Presentation, name string, opts ...Option) *Refinement {
	return &Refinement{
		base:    base,
		refined: base.CloneAs(name),
		opts:    opts,
	}
}

// Presentation returns the theory being built. Terms passed to Define must
// be built over its generators.
func (r *Refinement) Presentation() *presentation.Presentation { return r.refined }

// AddObject adds a new object to the refined theory.
func (r *Refinement) AddObject(name string) (domain.Object, error) {
	return r.refined.AddObject(name)
}

// AddGenerator adds a new generator to the refined theory.
func (r *Refinement) AddGenerator(name string, dom, cod domain.Seq) (domain.Generator, error) {
	return r.refined.AddGenerator(name, dom, cod)
}

// Define asserts that gen equals rhs in the refined theory.
func (r *Refinement) Define(gen string, rhs domain.Term) error {
	return Refine(r.refined, gen, rhs)
}

// Build validates and returns the inclusion of the base into the refined
// theory, mapping every object and generator to itself.
func (r *Refinement) Build() (*presentation.Presentation, *Homomorphism, error) {
	id := Identity(r.base)
	inc, err := New(r.base, r.refined, id.objects, id.generators, r.opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("refinement %s: %w", r.refined.Name(), err)
	}
	return r.refined, inc, nil
}
