package homomorphism

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/causal/pkg/domain"
	"github.com/aretw0/causal/pkg/presentation"
	"github.com/aretw0/causal/pkg/rewrite"
	"github.com/samber/lo"
)

// ErrNotComposable is returned by Compose when the first homomorphism's
// target is not the second one's source.
var ErrNotComposable = errors.New("homomorphisms are not composable")

// Homomorphism maps the objects and generators of a source presentation to
// objects and terms of a target presentation. A value returned by New has
// passed validation and is never modified afterwards.
type Homomorphism struct {
	source     *presentation.Presentation
	target     *presentation.Presentation
	objects    map[domain.Object]domain.Object
	generators map[string]domain.Term
}

type config struct {
	logger  *slog.Logger
	rewrite []rewrite.Option
}

// Option configures validation.
type Option func(*config)

// WithLogger sets the logger used while validating.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
		c.rewrite = append(c.rewrite, rewrite.WithLogger(logger))
	}
}

// WithRewriteBudget bounds the equation search per source equation.
func WithRewriteBudget(n int) Option {
	return func(c *config) {
		c.rewrite = append(c.rewrite, rewrite.WithBudget(n))
	}
}

func newConfig(opts []Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

// New validates the given maps and returns the homomorphism they define.
// On failure the error is a *domain.AggregateError listing every failed
// check; it matches domain.ErrValidationFailure.
func New(source, target *presentation.Presentation, objects map[domain.Object]domain.Object, generators map[string]domain.Term, opts ...Option) (*Homomorphism, error) {
	h := &Homomorphism{
		source:     source,
		target:     target,
		objects:    lo.Assign(objects),
		generators: lo.Assign(generators),
	}
	if err := h.validate(newConfig(opts)); err != nil {
		return nil, err
	}
	return h, nil
}

// Validate checks the maps without keeping the result.
func Validate(source, target *presentation.Presentation, objects map[domain.Object]domain.Object, generators map[string]domain.Term, opts ...Option) error {
	_, err := New(source, target, objects, generators, opts...)
	return err
}

// Identity returns the identity homomorphism of p.
func Identity(p *presentation.Presentation) *Homomorphism {
	return &Homomorphism{
		source: p,
		target: p,
		objects: lo.SliceToMap(p.Objects(), func(o domain.Object) (domain.Object, domain.Object) {
			return o, o
		}),
		generators: lo.SliceToMap(p.Generators(), func(g domain.Generator) (string, domain.Term) {
			return g.Name, domain.Ref(g)
		}),
	}
}

// Compose returns k after h. The target of h must be the source of k.
func Compose(h, k *Homomorphism, opts ...Option) (*Homomorphism, error) {
	if h.target != k.source {
		return nil, fmt.Errorf("%w: %s maps into %s, not %s", ErrNotComposable, h.source.Name(), h.target.Name(), k.source.Name())
	}
	objects := make(map[domain.Object]domain.Object, len(h.objects))
	for o, img := range h.objects {
		next, ok := k.objects[img]
		if !ok {
			return nil, &domain.UnknownError{Kind: domain.KindObject, Name: img.Name(), Where: "object map of " + k.String()}
		}
		objects[o] = next
	}
	generators := make(map[string]domain.Term, len(h.generators))
	for name, img := range h.generators {
		t, err := k.Translate(img)
		if err != nil {
			return nil, fmt.Errorf("image of %s: %w", name, err)
		}
		generators[name] = t
	}
	return New(h.source, k.target, objects, generators, opts...)
}

// Source returns the presentation being mapped.
func (h *Homomorphism) Source() *presentation.Presentation { return h.source }

// Target returns the presentation mapped into.
func (h *Homomorphism) Target() *presentation.Presentation { return h.target }

// Object returns the image of o.
func (h *Homomorphism) Object(o domain.Object) (domain.Object, bool) {
	img, ok := h.objects[o]
	return img, ok
}

// Image returns the term assigned to the named generator.
func (h *Homomorphism) Image(gen string) (domain.Term, bool) {
	t, ok := h.generators[gen]
	return t, ok
}

// ObjectMap returns a copy of the object map.
func (h *Homomorphism) ObjectMap() map[domain.Object]domain.Object { return lo.Assign(h.objects) }

// GeneratorMap returns a copy of the generator map.
func (h *Homomorphism) GeneratorMap() map[string]domain.Term { return lo.Assign(h.generators) }

func (h *Homomorphism) String() string {
	return h.source.Name() + " -> " + h.target.Name()
}

// MapSeq applies the object map to every entry of s.
func (h *Homomorphism) MapSeq(s domain.Seq) (domain.Seq, error) {
	out := make(domain.Seq, len(s))
	for i, o := range s {
		img, ok := h.objects[o]
		if !ok {
			return nil, &domain.UnknownError{Kind: domain.KindObject, Name: o.Name(), Where: "object map of " + h.String()}
		}
		out[i] = img
	}
	return out, nil
}

// Translate rewrites a term over the source into a term over the target:
// generator references are replaced by their images and the structural
// nodes are rebuilt over the mapped objects.
func (h *Homomorphism) Translate(t domain.Term) (domain.Term, error) {
	switch n := t.(type) {
	case *domain.Identity:
		objs, err := h.MapSeq(n.Objects)
		if err != nil {
			return nil, err
		}
		return domain.IdSeq(objs), nil
	case *domain.GeneratorRef:
		img, ok := h.generators[n.Generator.Name]
		if !ok {
			return nil, &domain.UnknownError{Kind: domain.KindGenerator, Name: n.Generator.Name, Where: "generator map of " + h.String()}
		}
		return img, nil
	case *domain.Composition:
		first, err := h.Translate(n.First)
		if err != nil {
			return nil, err
		}
		second, err := h.Translate(n.Second)
		if err != nil {
			return nil, err
		}
		return domain.Compose(first, second)
	case *domain.Product:
		left, err := h.Translate(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := h.Translate(n.Right)
		if err != nil {
			return nil, err
		}
		return domain.Tensor(left, right), nil
	case *domain.Duplicate:
		objs, err := h.MapSeq(domain.Seq{n.Object})
		if err != nil {
			return nil, err
		}
		return domain.Dup(objs[0]), nil
	case *domain.Delete:
		objs, err := h.MapSeq(domain.Seq{n.Object})
		if err != nil {
			return nil, err
		}
		return domain.Del(objs[0]), nil
	case *domain.Braid:
		left, err := h.MapSeq(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := h.MapSeq(n.Right)
		if err != nil {
			return nil, err
		}
		return domain.Swap(left, right), nil
	}
	return nil, fmt.Errorf("%w: unsupported term %T", domain.ErrTypeMismatch, t)
}

// Refine asserts in d that the existing generator gen equals rhs. It mutates
// d; clone it first to keep the base theory intact.
func Refine(d *presentation.Presentation, gen string, rhs domain.Term) error {
	if err := d.AddDefinition(gen, rhs); err != nil {
		return fmt.Errorf("refine %s in %s: %w", gen, d.Name(), err)
	}
	return nil
}
