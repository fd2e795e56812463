package ports

import (
	"context"

	"github.com/aretw0/causal/pkg/presentation"
)

// PresentationStore defines the interface for persisting theories.
// Implementations store a snapshot: a loaded presentation shares no state
// with the one that was saved.
type PresentationStore interface {
	// Save persists the presentation under its name, replacing any previous version.
	Save(ctx context.Context, p *presentation.Presentation) error

	// Load retrieves the presentation with the given name.
	// Returns domain.ErrTheoryNotFound if it does not exist.
	Load(ctx context.Context, name string) (*presentation.Presentation, error)

	// Delete removes the presentation with the given name.
	Delete(ctx context.Context, name string) error

	// List returns the names of all stored presentations.
	List(ctx context.Context) ([]string, error)
}
