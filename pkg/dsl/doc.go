/*
Package dsl provides a Go DSL for programmatically constructing theories and
programs.

It lets developers declare presentations with a fluent builder instead of
theory files. This is useful for tests, for embedding a fixed theory in a
binary, and for leaning on the compiler for name checking.

Example usage:

	logic := dsl.New("logic").
		Objects("Number", "Bool")

	logic.Generator("neg").From("Bool").To("Bool").
		Generator("observed").To("Bool")

	logic.Equation("involution",
		dsl.Program("lhs").Input("x", "Bool").Let("y", "neg", "x").Let("z", "neg", "y").Return("z"),
		dsl.Program("rhs").Input("x", "Bool").Return("x"),
	)

	pres, err := logic.Build()
	if err != nil {
		// ...
	}

	term, err := dsl.Program("model").
		Let("a", "observed").
		Let("b", "neg", "a").
		Return("b").
		Compile(pres)
*/
package dsl
