package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/causal/pkg/domain"
	"github.com/aretw0/causal/pkg/ports"
)

// TheoryLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.TheoryLoader.
// expected maps each theory name the loader must provide to its generator count.
func TheoryLoaderContractTest(t *testing.T, loader ports.TheoryLoader, expected map[string]int) {
	t.Helper()
	ctx := context.Background()

	t.Run("LoadTheory_Success", func(t *testing.T) {
		for name, gens := range expected {
			p, err := loader.LoadTheory(ctx, name)
			if err != nil {
				t.Fatalf("unexpected error loading theory %s: %v", name, err)
			}
			if p.Name() != name {
				t.Errorf("name mismatch: got %q, want %q", p.Name(), name)
			}
			if got := len(p.Generators()); got != gens {
				t.Errorf("generator count mismatch for %s: got %d, want %d", name, got, gens)
			}
		}
	})

	t.Run("LoadTheory_NotFound", func(t *testing.T) {
		_, err := loader.LoadTheory(ctx, "non-existent-theory")
		if !errors.Is(err, domain.ErrTheoryNotFound) {
			t.Errorf("expected ErrTheoryNotFound, got %v", err)
		}
	})

	t.Run("ListTheories", func(t *testing.T) {
		names, err := loader.ListTheories(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing theories: %v", err)
		}
		if len(names) != len(expected) {
			t.Errorf("expected %d theories, got %d", len(expected), len(names))
		}
		lookup := make(map[string]bool)
		for _, n := range names {
			lookup[n] = true
		}
		for name := range expected {
			if !lookup[name] {
				t.Errorf("theory %s missing from list", name)
			}
		}
	})
}
