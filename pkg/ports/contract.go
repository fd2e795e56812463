package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/causal/pkg/domain"
	"github.com/aretw0/causal/pkg/presentation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractTheory(t *testing.T, name string) *presentation.Presentation {
	t.Helper()
	p := presentation.New(name)
	require.NoError(t, p.AddObjects("Number", "Bool"))
	neg, err := p.AddGenerator("neg", domain.Objects("Bool"), domain.Objects("Bool"))
	require.NoError(t, err)
	_, err = p.AddGenerator("observed", nil, domain.Objects("Bool"))
	require.NoError(t, err)
	lhs := domain.MustCompose(domain.Ref(neg), domain.Ref(neg))
	require.NoError(t, p.AddEquation("involution", lhs, domain.Id("Bool")))
	return p
}

// RunPresentationStoreContract runs a suite of tests to verify that a PresentationStore
// implementation adheres to the defined interface contract.
func RunPresentationStoreContract(t *testing.T, store PresentationStore) {
	ctx := context.Background()
	name := "contract-theory-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		p := contractTheory(t, name)
		require.NoError(t, store.Save(ctx, p), "Save should not return error")

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, name, loaded.Name())
		assert.Equal(t, p.Objects(), loaded.Objects())
		assert.Equal(t, p.Generators(), loaded.Generators())

		require.Len(t, loaded.Equations(), 1)
		eq := loaded.Equations()[0]
		assert.Equal(t, "involution", eq.Name)
		assert.True(t, domain.StructurallyEqual(p.Equations()[0].LHS, eq.LHS))
		assert.True(t, domain.StructurallyEqual(p.Equations()[0].RHS, eq.RHS))
	})

	t.Run("Loaded Copy Is Independent", func(t *testing.T) {
		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		_, err = loaded.AddObject("Extra")
		require.NoError(t, err)

		again, err := store.Load(ctx, name)
		require.NoError(t, err)
		_, err = again.Object("Extra")
		assert.ErrorIs(t, err, domain.ErrUnknownObject)
	})

	t.Run("Save Replaces", func(t *testing.T) {
		p := contractTheory(t, name)
		_, err := p.AddObject("Real")
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, p))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Len(t, loaded.Objects(), 3)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, domain.ErrTheoryNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, contractTheory(t, name)))
		require.NoError(t, store.Delete(ctx, name), "Delete should not return error")

		_, err := store.Load(ctx, name)
		assert.ErrorIs(t, err, domain.ErrTheoryNotFound, "Load after Delete should return ErrTheoryNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := name + "-1"
		id2 := name + "-2"
		require.NoError(t, store.Save(ctx, contractTheory(t, id1)))
		require.NoError(t, store.Save(ctx, contractTheory(t, id2)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, id1)
		assert.Contains(t, names, id2)
	})
}
