package causal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/aretw0/causal/internal/compiler"
	"github.com/aretw0/causal/internal/dto"
	"github.com/aretw0/causal/pkg/adapters/loam"
	"github.com/aretw0/causal/pkg/adapters/memory"
	"github.com/aretw0/causal/pkg/domain"
	"github.com/aretw0/causal/pkg/homomorphism"
	"github.com/aretw0/causal/pkg/ports"
	"github.com/aretw0/causal/pkg/presentation"
	"github.com/aretw0/causal/pkg/program"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Version is the release of the causal toolkit.
const Version = "0.3.0"

// DefaultLockTTL bounds how long a refinement may hold a theory's lock.
const DefaultLockTTL = 30 * time.Second

// Workspace is the high-level entry point for the causal library.
// It reads theories from a loader, keeps working copies in a store, and
// compiles programs and checks homomorphisms against them.
//
// The store acts as a cache in front of the loader: the first read of a
// theory snapshots it into the store, refinements update the snapshot under
// the theory's lock, and a change reported by a watchable loader evicts it.
type Workspace struct {
	loader ports.TheoryLoader
	store  ports.PresentationStore
	locker ports.Locker
	parser *compiler.Parser
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	budget int
	Name   string
}

// Option defines a functional option for configuring the Workspace.
type Option func(*Workspace)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(w *Workspace) {
		w.hooks = hooks
	}
}

// WithLoader injects a custom TheoryLoader, bypassing the default Loam initialization.
func WithLoader(l ports.TheoryLoader) Option {
	return func(w *Workspace) {
		w.loader = l
	}
}

// WithStore sets where working copies of theories are kept (default: memory).
func WithStore(s ports.PresentationStore) Option {
	return func(w *Workspace) {
		w.store = s
	}
}

// WithLocker sets the lock used to serialize refinements (default: in-process).
// Use a distributed locker when several processes share one store.
func WithLocker(l ports.Locker) Option {
	return func(w *Workspace) {
		w.locker = l
	}
}

// WithLogger sets a custom structured logger for the workspace.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workspace) {
		w.logger = logger
	}
}

// WithRewriteBudget bounds the equational search of homomorphism checks.
func WithRewriteBudget(n int) Option {
	return func(w *Workspace) {
		w.budget = n
	}
}

// New initializes a new Workspace.
// By default, it reads theories from a Loam repository at the given path.
// If WithLoader option is provided, repoPath can be empty and Loam is skipped.
func New(repoPath string, opts ...Option) (*Workspace, error) {
	w := &Workspace{parser: compiler.NewParser()}

	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if w.loader == nil {
		if repoPath == "" {
			return nil, fmt.Errorf("repoPath is required when no custom loader is provided")
		}
		l, err := loam.Open(repoPath, loam.WithLogger(w.logger))
		if err != nil {
			return nil, err
		}
		w.loader = l
	}
	if repoPath != "" {
		w.Name = filepath.Base(repoPath)
		w.logger = w.logger.With("workspace", w.Name)
	}

	if w.store == nil {
		w.store = memory.NewStore()
	}
	if w.locker == nil {
		w.locker = memory.NewLocker()
	}

	return w, nil
}

// Theories returns the names known to the loader or held in the store.
func (w *Workspace) Theories(ctx context.Context) ([]string, error) {
	loaded, err := w.loader.ListTheories(ctx)
	if err != nil {
		return nil, err
	}
	stored, err := w.store.List(ctx)
	if err != nil {
		return nil, err
	}
	names := lo.Uniq(append(loaded, stored...))
	slices.Sort(names)
	return names, nil
}

// Theory returns a private copy of the named theory. Callers may mutate it
// freely; use Refine to change the workspace's copy.
func (w *Workspace) Theory(ctx context.Context, name string) (*presentation.Presentation, error) {
	p, err := w.store.Load(ctx, name)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrTheoryNotFound) {
		return nil, err
	}

	p, err = w.loader.LoadTheory(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := w.store.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to cache theory %s: %w", name, err)
	}
	w.logger.Debug("theory loaded", "theory", name)
	return p, nil
}

// Compile parses a program and compiles it against the named theory.
func (w *Workspace) Compile(ctx context.Context, theory, source string) (domain.Term, error) {
	start := time.Now()
	event := &domain.CompileEvent{
		EventBase: domain.EventBase{Timestamp: start, Type: domain.EventCompile},
		Theory:    theory,
	}
	defer func() {
		event.Duration = time.Since(start)
		if w.hooks.OnCompile != nil {
			w.hooks.OnCompile(ctx, event)
		}
	}()

	p, err := w.Theory(ctx, theory)
	if err != nil {
		event.Err = err
		return nil, err
	}
	prog, err := w.parser.Parse(theory, []byte(source))
	if err != nil {
		event.Err = err
		return nil, err
	}
	event.Program = prog.Name

	t, err := program.NewCompiler(p, program.WithLogger(w.logger)).Compile(prog)
	event.Err = err
	return t, err
}

// Refine defines generator of the named theory by a program over the
// theory's other generators and stores the result. Refinements of one
// theory are serialized through the locker.
func (w *Workspace) Refine(ctx context.Context, theory, generator, source string) (err error) {
	event := &domain.RefineEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRefine},
		Theory:    theory,
		Generator: generator,
	}
	defer func() {
		event.Err = err
		if w.hooks.OnRefine != nil {
			w.hooks.OnRefine(ctx, event)
		}
	}()

	unlock, err := w.locker.Lock(ctx, theory, DefaultLockTTL)
	if err != nil {
		return fmt.Errorf("lock %s: %w", theory, err)
	}
	defer func() {
		if uerr := unlock(context.WithoutCancel(ctx)); uerr != nil {
			w.logger.Warn("failed to release theory lock", "theory", theory, "err", uerr)
		}
	}()

	p, err := w.Theory(ctx, theory)
	if err != nil {
		return err
	}
	rhs, err := dto.CompileSource(w.parser, p, "refine."+generator, source, program.WithLogger(w.logger))
	if err != nil {
		return err
	}
	if err := homomorphism.Refine(p, generator, rhs); err != nil {
		return err
	}
	return w.store.Save(ctx, p)
}

// Homomorphism builds and validates a homomorphism from a YAML or JSON
// document whose source and target name workspace theories.
func (w *Workspace) Homomorphism(ctx context.Context, document []byte) (h *homomorphism.Homomorphism, err error) {
	var m dto.HomomorphismMetadata
	if err := yaml.Unmarshal(document, &m); err != nil {
		return nil, fmt.Errorf("failed to decode homomorphism: %w", err)
	}

	start := time.Now()
	event := &domain.CheckEvent{
		EventBase: domain.EventBase{Timestamp: start, Type: domain.EventCheck},
		Source:    m.Source,
		Target:    m.Target,
	}
	defer func() {
		event.Duration = time.Since(start)
		event.Err = err
		event.Failures = len(domain.ValidationErrors(err))
		if w.hooks.OnCheck != nil {
			w.hooks.OnCheck(ctx, event)
		}
	}()

	source, err := w.Theory(ctx, m.Source)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	target, err := w.Theory(ctx, m.Target)
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}

	opts := []homomorphism.Option{homomorphism.WithLogger(w.logger)}
	if w.budget > 0 {
		opts = append(opts, homomorphism.WithRewriteBudget(w.budget))
	}
	return m.Build(w.parser, source, target, opts...)
}

// Watch returns a channel that reports each theory whose source changed.
// The workspace's copy of a changed theory is evicted before it is reported,
// discarding refinements made to it.
// Returns error if the loader does not support watching.
func (w *Workspace) Watch(ctx context.Context) (<-chan string, error) {
	wl, ok := w.loader.(ports.Watchable)
	if !ok {
		return nil, fmt.Errorf("current loader does not support watching")
	}
	changes, err := wl.Watch(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan string, 1)
	go func() {
		defer close(out)
		for name := range changes {
			if err := w.store.Delete(ctx, name); err != nil {
				w.logger.Warn("failed to evict theory", "theory", name, "err", err)
			}
			if w.hooks.OnReload != nil {
				w.hooks.OnReload(ctx, &domain.ReloadEvent{
					EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventReload},
					Theory:    name,
				})
			}
			select {
			case out <- name:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Loader returns the underlying TheoryLoader used by the workspace.
func (w *Workspace) Loader() ports.TheoryLoader {
	return w.loader
}
