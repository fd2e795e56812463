/*
Package rewrite decides equality of terms under a set of equations.

Terms are first compared structurally (see domain.StructurallyEqual). When
that fails, each equation is used as a rewrite rule in both directions and a
bounded breadth-first search runs from both string diagrams until their
reachable sets meet. A rule matches a convex sub-diagram of the wiring box for
box, so an occurrence is found however the term is bracketed or interleaved.
Rewritten diagrams are read back as terms with Diagram.Term.

Termination is not guaranteed by the equations themselves, so every search is
limited by a budget. Running out of budget is reported as ErrRewriteBudget.
A rule side made of wires only cannot be matched, and some occurrences admit
more rewrites than are enumerated; a search that closes after skipping any of
them reports ErrIncomplete. Callers treat both as undecided rather than as
equality or inequality.
*/
package rewrite
