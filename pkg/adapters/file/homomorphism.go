package file

import (
	"fmt"
	"path/filepath"

	"github.com/aretw0/causal/internal/compiler"
	"github.com/aretw0/causal/internal/dto"
	"github.com/aretw0/causal/pkg/homomorphism"
)

// ReadHomomorphism reads a homomorphism file and the theories it names.
// Relative source and target paths resolve against the file's directory.
func ReadHomomorphism(path string, opts ...homomorphism.Option) (*homomorphism.Homomorphism, error) {
	var m dto.HomomorphismMetadata
	if err := decodeFile(path, &m); err != nil {
		return nil, err
	}
	if m.Source == "" || m.Target == "" {
		return nil, fmt.Errorf("%s: homomorphism needs both source and target", path)
	}

	parser := compiler.NewParser()
	base := filepath.Dir(path)
	source, err := ReadTheory(resolve(base, m.Source), parser)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	target, err := ReadTheory(resolve(base, m.Target), parser)
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}

	h, err := m.Build(parser, source, target, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}

func resolve(base, ref string) string {
	if filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(base, ref)
}
