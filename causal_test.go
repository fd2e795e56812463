package causal_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/causal"
	"github.com/aretw0/causal/pkg/adapters/memory"
	"github.com/aretw0/causal/pkg/domain"
	"github.com/aretw0/causal/pkg/dsl"
	"github.com/aretw0/causal/pkg/ports"
	"github.com/aretw0/causal/pkg/presentation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Workspace satisfies the transport surface.
var _ ports.Workspace = (*causal.Workspace)(nil)

func coin() *presentation.Presentation {
	b := dsl.New("coin").Objects("Bool")
	b.Generator("observed").To("Bool").
		Generator("neg").From("Bool").To("Bool")
	return b.MustBuild()
}

func noisy() *presentation.Presentation {
	b := dsl.New("noisy").Objects("Bool", "Real")
	b.Generator("observed").To("Bool").
		Generator("neg").From("Bool").To("Bool").
		Generator("noise").To("Real").
		Generator("threshold").From("Real").To("Bool")
	b.Equation("involution",
		dsl.Program("lhs").Input("x", "Bool").Let("y", "neg", "x").Let("z", "neg", "y").Return("z"),
		dsl.Program("rhs").Input("x", "Bool").Return("x"),
	)
	return b.MustBuild()
}

func newWorkspace(t *testing.T, opts ...causal.Option) *causal.Workspace {
	t.Helper()
	loader, err := memory.NewLoader(coin(), noisy())
	require.NoError(t, err)
	ws, err := causal.New("", append([]causal.Option{causal.WithLoader(loader)}, opts...)...)
	require.NoError(t, err)
	return ws
}

func TestNew_RequiresSource(t *testing.T) {
	_, err := causal.New("")
	assert.Error(t, err)
}

func TestWorkspace_Loam(t *testing.T) {
	repoPath := t.TempDir()
	content := []byte(`---
objects: [Bool]
generators:
  - "observed: -> Bool"
  - "neg: Bool -> Bool"
---
A fair coin.`)
	require.NoError(t, os.WriteFile(filepath.Join(repoPath, "coin.md"), content, 0644))

	ws, err := causal.New(repoPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(repoPath), ws.Name)

	names, err := ws.Theories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"coin"}, names)

	term, err := ws.Compile(context.Background(), "coin", "def m():\n    return neg(observed())\n")
	require.NoError(t, err)
	assert.Equal(t, "(observed ; neg)", term.String())
}

func TestWorkspace_Compile(t *testing.T) {
	var events []*domain.CompileEvent
	ws := newWorkspace(t, causal.WithLifecycleHooks(domain.LifecycleHooks{
		OnCompile: func(_ context.Context, e *domain.CompileEvent) { events = append(events, e) },
	}))
	ctx := context.Background()

	term, err := ws.Compile(ctx, "coin", "def model():\n    a = observed()\n    return neg(a)\n")
	require.NoError(t, err)
	assert.Equal(t, "(observed ; neg)", term.String())

	_, err = ws.Compile(ctx, "coin", "def model():\n    return noise()\n")
	assert.ErrorIs(t, err, domain.ErrUnknownGenerator)

	_, err = ws.Compile(ctx, "ghost", "def model():\n    return\n")
	assert.ErrorIs(t, err, domain.ErrTheoryNotFound)

	require.Len(t, events, 3)
	assert.Equal(t, "model", events[0].Program)
	assert.NoError(t, events[0].Err)
	assert.Error(t, events[1].Err)
	assert.Equal(t, "ghost", events[2].Theory)
}

func TestWorkspace_TheoryIsPrivateCopy(t *testing.T) {
	ws := newWorkspace(t)
	ctx := context.Background()

	p, err := ws.Theory(ctx, "coin")
	require.NoError(t, err)
	_, err = p.AddObject("Extra")
	require.NoError(t, err)

	again, err := ws.Theory(ctx, "coin")
	require.NoError(t, err)
	assert.Len(t, again.Objects(), 1)
}

const noiseMap = `
source: coin
target: noisy
objects: {Bool: Bool}
generators:
  observed: |
    def img():
        return threshold(noise())
  neg: |
    def img(x = Bool):
        return neg(x)
`

func TestWorkspace_Homomorphism(t *testing.T) {
	var checks []*domain.CheckEvent
	ws := newWorkspace(t, causal.WithLifecycleHooks(domain.LifecycleHooks{
		OnCheck: func(_ context.Context, e *domain.CheckEvent) { checks = append(checks, e) },
	}))
	ctx := context.Background()

	h, err := ws.Homomorphism(ctx, []byte(noiseMap))
	require.NoError(t, err)
	assert.Equal(t, "coin -> noisy", h.String())

	t.Run("Reports Failures", func(t *testing.T) {
		doc := []byte("source: coin\ntarget: noisy\nobjects: {Bool: Real}\n")
		_, err := ws.Homomorphism(ctx, doc)
		require.ErrorIs(t, err, domain.ErrValidationFailure)
		require.Len(t, checks, 2)
		assert.Equal(t, len(domain.ValidationErrors(err)), checks[1].Failures)
		assert.Positive(t, checks[1].Failures)
	})

	t.Run("Unknown Theory", func(t *testing.T) {
		_, err := ws.Homomorphism(ctx, []byte("source: ghost\ntarget: noisy\n"))
		assert.ErrorIs(t, err, domain.ErrTheoryNotFound)
	})

	t.Run("Malformed Document", func(t *testing.T) {
		_, err := ws.Homomorphism(ctx, []byte("source: [unclosed"))
		assert.Error(t, err)
	})
}

func TestWorkspace_Refine(t *testing.T) {
	var refines []*domain.RefineEvent
	ws := newWorkspace(t, causal.WithLifecycleHooks(domain.LifecycleHooks{
		OnRefine: func(_ context.Context, e *domain.RefineEvent) { refines = append(refines, e) },
	}))
	ctx := context.Background()

	require.NoError(t, ws.Refine(ctx, "noisy", "observed", "def d():\n    return threshold(noise())\n"))

	p, err := ws.Theory(ctx, "noisy")
	require.NoError(t, err)
	assert.Len(t, p.Equations(), 2, "definition is recorded as an equation")

	t.Run("Rejects Wrong Type", func(t *testing.T) {
		err := ws.Refine(ctx, "noisy", "neg", "def d(x = Bool):\n    return noise()\n")
		assert.Error(t, err)

		p, err := ws.Theory(ctx, "noisy")
		require.NoError(t, err)
		assert.Len(t, p.Equations(), 2, "failed refinement leaves the theory unchanged")
	})

	require.Len(t, refines, 2)
	assert.NoError(t, refines[0].Err)
	assert.Error(t, refines[1].Err)
}

func TestWorkspace_RefineIsSerialized(t *testing.T) {
	ws := newWorkspace(t)
	ctx := context.Background()

	// Each refinement adds an equation; none may be lost to a concurrent write.
	gens := []string{"observed", "noise"}
	srcs := map[string]string{
		"observed": "def d():\n    return threshold(noise())\n",
		"noise":    "def d():\n    return noise()\n",
	}
	var wg sync.WaitGroup
	for _, g := range gens {
		wg.Add(1)
		go func(g string) {
			defer wg.Done()
			assert.NoError(t, ws.Refine(ctx, "noisy", g, srcs[g]))
		}(g)
	}
	wg.Wait()

	p, err := ws.Theory(ctx, "noisy")
	require.NoError(t, err)
	assert.Len(t, p.Equations(), 3)
}

type watchLoader struct {
	ports.TheoryLoader
	events chan string
}

func (w *watchLoader) Watch(ctx context.Context) (<-chan string, error) {
	return w.events, nil
}

func TestWorkspace_Watch(t *testing.T) {
	inner, err := memory.NewLoader(coin(), noisy())
	require.NoError(t, err)
	loader := &watchLoader{TheoryLoader: inner, events: make(chan string)}

	var reloads []string
	ws, err := causal.New("", causal.WithLoader(loader), causal.WithLifecycleHooks(domain.LifecycleHooks{
		OnReload: func(_ context.Context, e *domain.ReloadEvent) { reloads = append(reloads, e.Theory) },
	}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, ws.Refine(ctx, "noisy", "observed", "def d():\n    return threshold(noise())\n"))

	changes, err := ws.Watch(ctx)
	require.NoError(t, err)

	loader.events <- "noisy"
	select {
	case name := <-changes:
		assert.Equal(t, "noisy", name)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change")
	}
	assert.Equal(t, []string{"noisy"}, reloads)

	p, err := ws.Theory(ctx, "noisy")
	require.NoError(t, err)
	assert.Len(t, p.Equations(), 1, "reload discards the refined copy")

	close(loader.events)

	t.Run("Unsupported Loader", func(t *testing.T) {
		_, err := newWorkspace(t).Watch(ctx)
		assert.Error(t, err)
	})
}

func TestWorkspace_StoreErrors(t *testing.T) {
	loader, err := memory.NewLoader(coin())
	require.NoError(t, err)
	ws, err := causal.New("", causal.WithLoader(loader), causal.WithStore(failingStore{}))
	require.NoError(t, err)

	_, err = ws.Theory(context.Background(), "coin")
	assert.ErrorIs(t, err, errStore)
}

var errStore = errors.New("store unavailable")

type failingStore struct{}

func (failingStore) Save(context.Context, *presentation.Presentation) error { return errStore }
func (failingStore) Load(context.Context, string) (*presentation.Presentation, error) {
	return nil, domain.ErrTheoryNotFound
}
func (failingStore) Delete(context.Context, string) error    { return errStore }
func (failingStore) List(context.Context) ([]string, error) { return nil, errStore }
