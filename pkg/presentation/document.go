package presentation

import (
	"fmt"

	"github.com/aretw0/causal/pkg/domain"
)

// Document is the serializable snapshot of a presentation, used by
// persistence adapters. It does not carry the mutation log.
type Document struct {
	Name       string             `json:"name" yaml:"name"`
	Objects    []string           `json:"objects" yaml:"objects"`
	Generators []domain.Generator `json:"generators" yaml:"generators"`
	Equations  []EquationDocument `json:"equations,omitempty" yaml:"equations,omitempty"`
}

// EquationDocument is the serializable form of an equation.
type EquationDocument struct {
	Name string          `json:"name,omitempty" yaml:"name,omitempty"`
	LHS  domain.TermNode `json:"lhs" yaml:"lhs"`
	RHS  domain.TermNode `json:"rhs" yaml:"rhs"`
}

// Document returns a snapshot of p.
func (p *Presentation) Document() Document {
	doc := Document{
		Name:       p.name,
		Objects:    domain.Seq(p.objects).Names(),
		Generators: p.Generators(),
	}
	for _, eq := range p.equations {
		doc.Equations = append(doc.Equations, EquationDocument{
			Name: eq.Name,
			LHS:  domain.EncodeTerm(eq.LHS),
			RHS:  domain.EncodeTerm(eq.RHS),
		})
	}
	return doc
}

// FromDocument rebuilds a presentation, re-running every invariant check.
func FromDocument(doc Document) (*Presentation, error) {
	p := New(doc.Name)
	if err := p.AddObjects(doc.Objects...); err != nil {
		return nil, err
	}
	for _, g := range doc.Generators {
		if _, err := p.AddGenerator(g.Name, g.Dom, g.Cod); err != nil {
			return nil, err
		}
	}
	for i, e := range doc.Equations {
		lhs, err := domain.DecodeTerm(e.LHS)
		if err != nil {
			return nil, fmt.Errorf("equation %d lhs: %w", i, err)
		}
		rhs, err := domain.DecodeTerm(e.RHS)
		if err != nil {
			return nil, fmt.Errorf("equation %d rhs: %w", i, err)
		}
		if err := p.AddEquation(e.Name, lhs, rhs); err != nil {
			return nil, fmt.Errorf("equation %d: %w", i, err)
		}
	}
	return p, nil
}
