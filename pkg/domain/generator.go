package domain

import "fmt"

// Generator is a named primitive morphism with fixed input and output objects.
// Generators are values: once registered in a presentation they never change.
type Generator struct {
	Name string `json:"name" yaml:"name"`
	Dom  Seq    `json:"dom" yaml:"dom"`
	Cod  Seq    `json:"cod" yaml:"cod"`
}

// Clone returns a copy that shares no slices with g.
func (g Generator) Clone() Generator {
	return Generator{Name: g.Name, Dom: g.Dom.Clone(), Cod: g.Cod.Clone()}
}

func (g Generator) String() string {
	return fmt.Sprintf("%s: %s -> %s", g.Name, g.Dom, g.Cod)
}

// Equation asserts that two terms with identical boundaries are equal.
type Equation struct {
	Name string // optional label, used in error reports
	LHS  Term
	RHS  Term
}

// NewEquation checks that both sides share domain and codomain.
func NewEquation(name string, lhs, rhs Term) (Equation, error) {
	if !lhs.Dom().Equal(rhs.Dom()) {
		return Equation{}, &TypeMismatchError{Op: "equation domain", Subject: name, Expected: lhs.Dom(), Actual: rhs.Dom()}
	}
	if !lhs.Cod().Equal(rhs.Cod()) {
		return Equation{}, &TypeMismatchError{Op: "equation codomain", Subject: name, Expected: lhs.Cod(), Actual: rhs.Cod()}
	}
	return Equation{Name: name, LHS: lhs, RHS: rhs}, nil
}

// Label returns the equation's name, or its rendered form when unnamed.
func (e Equation) Label() string {
	if e.Name != "" {
		return e.Name
	}
	return e.String()
}

func (e Equation) String() string {
	return fmt.Sprintf("%s == %s", e.LHS, e.RHS)
}
