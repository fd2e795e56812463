package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/causal/pkg/domain"
	"github.com/aretw0/causal/pkg/presentation"
)

// Loader implements ports.TheoryLoader over a fixed set of presentations.
type Loader struct {
	theories map[string]presentation.Document
}

// NewLoader creates a Loader serving snapshots of the given presentations.
func NewLoader(ps ...*presentation.Presentation) (*Loader, error) {
	theories := make(map[string]presentation.Document, len(ps))
	for _, p := range ps {
		if p.Name() == "" {
			return nil, fmt.Errorf("theory missing name")
		}
		if _, dup := theories[p.Name()]; dup {
			return nil, fmt.Errorf("theory %q given twice", p.Name())
		}
		theories[p.Name()] = p.Document()
	}
	return &Loader{theories: theories}, nil
}

// LoadTheory returns a fresh copy of the named presentation.
func (l *Loader) LoadTheory(ctx context.Context, name string) (*presentation.Presentation, error) {
	doc, ok := l.theories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTheoryNotFound, name)
	}
	return presentation.FromDocument(doc)
}

// ListTheories returns all theory names.
func (l *Loader) ListTheories(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(l.theories))
	for k := range l.theories {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
