/*
Package causal is a toolkit for building and relating presentations of
Markov categories: the algebraic theories behind causal and probabilistic
models.

A theory (presentation) declares objects, typed generators and equations
between morphism terms. Programs written in a small straight-line language
compile into terms of the free Cartesian category on a theory, and
homomorphisms map one theory into another, checked for totality, type
correctness and preservation of every equation.

# Concept

The core lives in pure packages: pkg/domain holds the term algebra,
pkg/presentation the theory store, pkg/program the compiler,
pkg/homomorphism the structure-preserving maps and pkg/rewrite the
equational search used to check them. The Workspace in this package ties
them to adapters: theories are read from a Loam repository, YAML/JSON files
or memory, and working copies are kept in memory, on disk or in Redis.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/causal"
	)

	func main() {
		// Reads theories from ./theories (markdown frontmatter, JSON or YAML)
		ws, err := causal.New("./theories")
		if err != nil {
			log.Fatal(err)
		}

		term, err := ws.Compile(context.Background(), "logic", `
	def model():
	    a = observed()
	    return neg(a)
	`)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(term) // (observed ; neg)
	}
*/
package causal
