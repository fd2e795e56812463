package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/causal/pkg/domain"
	"github.com/aretw0/causal/pkg/presentation"
)

// Store implements ports.PresentationStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]presentation.Document
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]presentation.Document),
	}
}

// Save persists a snapshot of the presentation in memory.
func (s *Store) Save(ctx context.Context, p *presentation.Presentation) error {
	// Snapshot to ensure isolation, similar to serialization
	doc := p.Document()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[doc.Name] = doc
	return nil
}

// Load rebuilds the presentation from its snapshot.
func (s *Store) Load(ctx context.Context, name string) (*presentation.Presentation, error) {
	s.mu.RLock()
	doc, ok := s.data[name]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrTheoryNotFound
	}
	return presentation.FromDocument(doc)
}

// Delete removes the presentation.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// List returns stored presentation names in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
