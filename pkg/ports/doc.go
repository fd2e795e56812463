/*
Package ports defines the driven ports (interfaces) of the causal toolkit.

These interfaces decouple the theory core from external implementations,
allowing theories to come from files, Loam repositories or memory, and to be
stored in memory, on disk or in Redis.

# Key Interfaces

  - TheoryLoader: builds theories from their authoring source.
  - PresentationStore: persists compiled theories as snapshots.
  - Locker: serializes writers of a stored theory.
  - Workspace: what transports need from the facade.
*/
package ports
