package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/causal/internal/compiler"
	"github.com/aretw0/causal/internal/dto"
	"github.com/aretw0/causal/pkg/domain"
	"github.com/aretw0/causal/pkg/presentation"
	"gopkg.in/yaml.v3"
)

// Extensions lists the theory file extensions in lookup order.
var Extensions = []string{".yaml", ".yml", ".json"}

// Loader implements ports.TheoryLoader over a directory of theory files.
// A theory named "logic" lives in logic.yaml, logic.yml or logic.json.
type Loader struct {
	dir    string
	parser *compiler.Parser
	logger *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger used to report skipped files.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a Loader reading theories from dir.
func NewLoader(dir string, opts ...LoaderOption) *Loader {
	l := &Loader{
		dir:    dir,
		parser: compiler.NewParser(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadTheory reads and builds the named theory.
func (l *Loader) LoadTheory(ctx context.Context, name string) (*presentation.Presentation, error) {
	for _, ext := range Extensions {
		path := filepath.Join(l.dir, name+ext)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return ReadTheory(path, l.parser)
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrTheoryNotFound, name)
}

// ListTheories returns the names of all theory files in the directory.
func (l *Loader) ListTheories(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list theories: %w", err)
	}

	seen := make(map[string]bool)
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !isTheoryFile(entry.Name()) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if seen[name] {
			l.logger.Warn("theory defined by more than one file", "theory", name, "file", entry.Name())
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func isTheoryFile(name string) bool {
	ext := filepath.Ext(name)
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ReadTheory reads one theory file. A missing name defaults to the file stem;
// a name that disagrees with the stem is an error.
func ReadTheory(path string, parser *compiler.Parser) (*presentation.Presentation, error) {
	var m dto.TheoryMetadata
	if err := decodeFile(path, &m); err != nil {
		return nil, err
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch m.Name {
	case "":
		m.Name = stem
	case stem:
	default:
		return nil, fmt.Errorf("%s: theory name %q does not match file name", path, m.Name)
	}

	p, err := m.Build(parser)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// decodeFile unmarshals a YAML or JSON file into v by extension.
func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", domain.ErrTheoryNotFound, path)
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if filepath.Ext(path) == ".json" {
		err = json.Unmarshal(data, v)
	} else {
		err = yaml.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
