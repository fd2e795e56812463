package ports

import (
	"context"

	"github.com/aretw0/causal/pkg/domain"
	"github.com/aretw0/causal/pkg/homomorphism"
	"github.com/aretw0/causal/pkg/presentation"
)

// Workspace is the surface used by transports (HTTP, MCP) to reach theories
// without depending on how they are loaded or stored.
type Workspace interface {
	// Theories returns the names of every known theory.
	Theories(ctx context.Context) ([]string, error)

	// Theory returns the named theory.
	Theory(ctx context.Context, name string) (*presentation.Presentation, error)

	// Compile parses a program and compiles it against the named theory.
	Compile(ctx context.Context, theory, source string) (domain.Term, error)

	// Refine defines a generator of the named theory by a program over its
	// other generators.
	Refine(ctx context.Context, theory, generator, source string) error

	// Homomorphism builds and validates a homomorphism from a document
	// in the loader's format.
	Homomorphism(ctx context.Context, document []byte) (*homomorphism.Homomorphism, error)
}
