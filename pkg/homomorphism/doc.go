/*
Package homomorphism maps one theory into another.

A Homomorphism assigns every object of a source presentation to an object of
a target presentation and every generator to a term over the target. New
accepts the assignment only if it is:

  - total: every source object and generator has an image;
  - well typed: each image has the mapped domain and codomain of its generator;
  - sound: every source equation, translated into the target, holds there.

Equations are checked with package rewrite, using the target's own equations.
All failures are reported together in a domain.AggregateError.

Refine and Refinement grow a target theory so that an existing generator
becomes derivable from new ones:

	r := homomorphism.NewRefinement(base, "refined")
	r.AddGenerator("noise", nil, domain.Objects("Real"))
	r.AddGenerator("threshold", domain.Objects("Real"), domain.Objects("Bool"))
	r.Define("observed", compiled)
	refined, inclusion, err := r.Build()
*/
package homomorphism
