package homomorphism

import (
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/causal/pkg/domain"
	"github.com/aretw0/causal/pkg/rewrite"
	"github.com/samber/lo"
)

// validate runs the totality, type and equation checks. Equations are only
// checked once every object and generator image is sound, since their
// translation depends on it.
func (h *Homomorphism) validate(cfg *config) error {
	var errs []error
	fail := func(check domain.Check, kind domain.Kind, subject, reason string, err error) {
		errs = append(errs, &domain.ValidationError{Check: check, Kind: kind, Subject: subject, Reason: reason, Err: err})
	}

	for _, o := range h.source.Objects() {
		img, ok := h.objects[o]
		if !ok {
			fail(domain.CheckTotality, domain.KindObject, o.Name(), "no image in the object map", nil)
			continue
		}
		if _, err := h.target.Object(img.Name()); err != nil {
			fail(domain.CheckWellFormed, domain.KindObject, o.Name(), "image is not an object of "+h.target.Name(), err)
		}
	}
	for _, name := range sortedKeys(h.objects) {
		if _, err := h.source.Object(name.Name()); err != nil {
			fail(domain.CheckWellFormed, domain.KindObject, name.Name(), "mapped but not an object of "+h.source.Name(), err)
		}
	}

	for _, g := range h.source.Generators() {
		img, ok := h.generators[g.Name]
		if !ok {
			fail(domain.CheckTotality, domain.KindGenerator, g.Name, "no image in the generator map", nil)
			continue
		}
		if err := h.target.Resolve(img); err != nil {
			fail(domain.CheckWellFormed, domain.KindGenerator, g.Name, "image is not a term over "+h.target.Name(), err)
			continue
		}
		h.checkBoundary(g, img, fail)
	}
	for _, name := range sortedKeys(h.generators) {
		if _, err := h.source.Generator(name); err != nil {
			fail(domain.CheckWellFormed, domain.KindGenerator, name, "mapped but not a generator of "+h.source.Name(), err)
		}
	}

	if len(errs) > 0 {
		cfg.logger.Debug("homomorphism rejected before equation checks", "hom", h.String(), "errors", len(errs))
		return &domain.AggregateError{Errors: errs}
	}

	rw := rewrite.New(h.target.Equations(), cfg.rewrite...)
	for _, eq := range h.source.Equations() {
		lhs, err := h.Translate(eq.LHS)
		if err != nil {
			fail(domain.CheckEquation, domain.KindEquation, eq.Label(), "left side does not translate", err)
			continue
		}
		rhs, err := h.Translate(eq.RHS)
		if err != nil {
			fail(domain.CheckEquation, domain.KindEquation, eq.Label(), "right side does not translate", err)
			continue
		}
		ok, err := rw.Equal(lhs, rhs)
		switch {
		case errors.Is(err, rewrite.ErrRewriteBudget), errors.Is(err, rewrite.ErrIncomplete):
			fail(domain.CheckRewriteLimit, domain.KindEquation, eq.Label(), "could not decide equality", err)
		case err != nil:
			fail(domain.CheckEquation, domain.KindEquation, eq.Label(), "equality check failed", err)
		case !ok:
			fail(domain.CheckEquation, domain.KindEquation, eq.Label(),
				fmt.Sprintf("%s and %s are not equal in %s", lhs, rhs, h.target.Name()), nil)
		}
	}

	if len(errs) > 0 {
		cfg.logger.Debug("homomorphism rejected", "hom", h.String(), "errors", len(errs))
		return &domain.AggregateError{Errors: errs}
	}
	cfg.logger.Debug("homomorphism validated", "hom", h.String(),
		"objects", len(h.objects), "generators", len(h.generators), "equations", len(h.source.Equations()))
	return nil
}

func (h *Homomorphism) checkBoundary(g domain.Generator, img domain.Term, fail func(domain.Check, domain.Kind, string, string, error)) {
	dom, err := h.MapSeq(g.Dom)
	if err != nil {
		return
	}
	cod, err := h.MapSeq(g.Cod)
	if err != nil {
		return
	}
	if !img.Dom().Equal(dom) {
		fail(domain.CheckType, domain.KindGenerator, g.Name, "image has the wrong domain",
			&domain.TypeMismatchError{Op: "image domain", Subject: g.Name, Expected: dom, Actual: img.Dom()})
	}
	if !img.Cod().Equal(cod) {
		fail(domain.CheckType, domain.KindGenerator, g.Name, "image has the wrong codomain",
			&domain.TypeMismatchError{Op: "image codomain", Subject: g.Name, Expected: cod, Actual: img.Cod()})
	}
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}
