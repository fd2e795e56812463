// Package program compiles straight-line programs into terms.
//
// A Program declares typed inputs, a list of generator invocations binding
// named results, and the variables it returns. The compiler threads the live
// variables through every step as one tuple of wires: variables read again
// later are duplicated, variables read for the last time are moved, and
// variables never returned are deleted. The resulting term has exactly the
// declared inputs as domain and the returned objects as codomain.
//
// The package has no surface syntax of its own; internal/compiler parses the
// def-style notation produced by Program.String.
package program
