// Package compiler parses the def-style program notation into
// program.Program values. It relies on the Starlark grammar for tokens and
// layout and accepts only the subset that denotes a straight-line program.
package compiler
