package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/causal/pkg/adapters/memory"
	"github.com/aretw0/causal/pkg/dsl"
	contract "github.com/aretw0/causal/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryLoader_Contract(t *testing.T) {
	logic := dsl.New("logic").Objects("Bool")
	logic.Generator("neg").From("Bool").To("Bool").
		Generator("observed").To("Bool")

	empty := dsl.New("empty")

	loader, err := memory.NewLoader(logic.MustBuild(), empty.MustBuild())
	require.NoError(t, err)

	contract.TheoryLoaderContractTest(t, loader, map[string]int{
		"logic": 2,
		"empty": 0,
	})
}

func TestInMemoryLoader_Duplicate(t *testing.T) {
	p := dsl.New("same").MustBuild()
	_, err := memory.NewLoader(p, p)
	assert.Error(t, err)
}

func TestInMemoryLoader_Isolation(t *testing.T) {
	loader, err := memory.NewLoader(dsl.New("t").Objects("A").MustBuild())
	require.NoError(t, err)

	ctx := context.Background()
	p, err := loader.LoadTheory(ctx, "t")
	require.NoError(t, err)
	_, err = p.AddObject("B")
	require.NoError(t, err)

	again, err := loader.LoadTheory(ctx, "t")
	require.NoError(t, err)
	assert.Len(t, again.Objects(), 1)
}
