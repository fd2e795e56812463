/*
Package presentation implements the store of a theory: its objects,
generators and equations.

A Presentation enforces the naming and typing invariants of the theory:

  - objects and generators share one case-sensitive namespace;
  - a generator may only mention objects already registered;
  - an equation must relate two terms with the same boundary, built only from
    this presentation's generators.

Presentations grow monotonically and keep a mutation log of every change.
Clone produces an independent copy; it is how a refinement derives a new
theory without touching its base.
*/
package presentation
