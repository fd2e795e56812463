package loam

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/causal/internal/compiler"
	"github.com/aretw0/causal/internal/dto"
	"github.com/aretw0/causal/pkg/domain"
	"github.com/aretw0/causal/pkg/presentation"
	"github.com/aretw0/loam"
)

// Loader adapts a Loam repository to ports.TheoryLoader. Each document's
// frontmatter (or JSON/YAML body) is one theory; a missing name defaults to
// the document path without extension.
type Loader struct {
	Repo   *loam.TypedRepository[dto.TheoryMetadata]
	parser *compiler.Parser
	logger *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used to report documents that fail to build.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[dto.TheoryMetadata], opts ...Option) *Loader {
	l := &Loader{
		Repo:   repo,
		parser: compiler.NewParser(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open initializes a read-only, strict Loam repository at path and wraps it.
func Open(path string, opts ...Option) (*Loader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numeric types consistent across serializers; the
	// loader never writes, so the repository is opened read-only.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[dto.TheoryMetadata](repo), opts...), nil
}

// theories indexes the repository's documents by theory name.
func (l *Loader) theories(ctx context.Context) (map[string]dto.TheoryMetadata, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string, len(docs))
	out := make(map[string]dto.TheoryMetadata, len(docs))
	for _, doc := range docs {
		meta := doc.Data
		if meta.IsZero() {
			// Loam lists cached metadata, and a document saved with its
			// frontmatter inside the content is cached without any. Parse the
			// stored file instead.
			stored, err := l.Repo.Get(ctx, doc.ID)
			if err != nil {
				return nil, fmt.Errorf("loam get %s failed: %w", doc.ID, err)
			}
			meta = stored.Data
		}
		if meta.Name == "" {
			meta.Name = trimExtension(doc.ID)
		}

		// Collision Detection
		if existing, ok := seen[meta.Name]; ok {
			return nil, fmt.Errorf("collision detected: theory '%s' is defined in both '%s' and '%s'", meta.Name, existing, doc.ID)
		}
		seen[meta.Name] = doc.ID
		out[meta.Name] = meta
	}
	return out, nil
}

// LoadTheory builds the named theory from its document.
func (l *Loader) LoadTheory(ctx context.Context, name string) (*presentation.Presentation, error) {
	all, err := l.theories(ctx)
	if err != nil {
		return nil, err
	}
	meta, ok := all[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTheoryNotFound, name)
	}

	p, err := meta.Build(l.parser)
	if err != nil {
		l.logger.Warn("theory failed to build", "theory", name, "err", err)
		return nil, err
	}
	return p, nil
}

// ListTheories lists every theory in the repository.
func (l *Loader) ListTheories(ctx context.Context) ([]string, error) {
	all, err := l.theories(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func trimExtension(id string) string {
	return filepath.ToSlash(strings.TrimSuffix(id, filepath.Ext(id)))
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				// Loam debounces; forward the document id as-is.
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
