/*
Package domain contains the term algebra of causal theories.

It defines the vocabulary shared by every other package: objects (type tags),
generators (primitive processes), equations, and terms built from them with
composition, tensor, identity, duplication, deletion and braiding. This
package is pure: it performs no I/O and keeps no registry; presentations live
in package presentation.

# Key Entities

  - Object / Seq: a type tag and an ordered list of them (a boundary).
  - Generator: a named morphism with a fixed domain and codomain.
  - Term: an immutable expression tree whose type is derived structurally.
  - Diagram: the string diagram of a term, used for structural equality and
    for visualization.

# Structural Equality

StructurallyEqual compares the canonical serialization of two diagrams. It
holds across re-bracketing of composition and tensor, insertion of
identities, the interchange law, braid naturality and the counit laws of
duplicate/delete. It never applies user equations; see package rewrite.
*/
package domain
