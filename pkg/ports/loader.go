package ports

import (
	"context"

	"github.com/aretw0/causal/pkg/presentation"
)

// TheoryLoader defines how theories are read from their authoring source
// (theory files, a Loam repository, memory).
type TheoryLoader interface {
	// LoadTheory builds the named theory.
	// Returns domain.ErrTheoryNotFound if the source has no such theory.
	LoadTheory(ctx context.Context, name string) (*presentation.Presentation, error)

	// ListTheories returns the names of every theory available.
	ListTheories(ctx context.Context) ([]string, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload in long-running servers.
type Watchable interface {
	// Watch returns a channel that receives the name of each changed document.
	Watch(ctx context.Context) (<-chan string, error)
}
