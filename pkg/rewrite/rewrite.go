package rewrite

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/causal/pkg/domain"
)

// DefaultBudget bounds how many distinct terms each side of a search may
// visit before Equal gives up.
const DefaultBudget = 512

var (
	// ErrRewriteBudget is returned when a search exhausts its budget without
	// joining the two terms.
	ErrRewriteBudget = errors.New("rewrite budget exhausted")
	// ErrIncomplete is returned when a search closes without joining the two
	// terms but skipped rewrites it could not enumerate, so the terms may
	// still be equal.
	ErrIncomplete = errors.New("rewrite search incomplete")
)

// Rewriter decides equality of terms modulo a set of equations.
type Rewriter struct {
	rules   []rule
	forward []rule
	// partial is set when a rule direction was dropped because its left
	// side has no boxes to match.
	partial bool
	budget  int
	logger  *slog.Logger
}

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithBudget sets the number of distinct terms visited per side.
func WithBudget(n int) Option {
	return func(r *Rewriter) {
		if n > 0 {
			r.budget = n
		}
	}
}

// WithLogger sets the logger used for search traces.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Rewriter) {
		r.logger = logger
	}
}

// New creates a Rewriter using every equation in both directions. A
// direction whose left side is made of wires only, such as the identity, is
// not usable as a rule.
func New(eqs []domain.Equation, opts ...Option) *Rewriter {
	r := &Rewriter{budget: DefaultBudget}
	for _, e := range eqs {
		fwd := newRule(e.Label(), e.LHS, e.RHS)
		rev := newRule(e.Label()+" (reversed)", e.RHS, e.LHS)
		if len(fwd.from.Boxes) > 0 {
			r.rules = append(r.rules, fwd)
			r.forward = append(r.forward, fwd)
		} else {
			r.partial = true
		}
		if len(rev.from.Boxes) > 0 {
			r.rules = append(r.rules, rev)
		} else {
			r.partial = true
		}
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

// Equal reports whether a and b are structurally equal, or can be joined by
// replacing occurrences of one side of an equation with the other side.
//
// The search runs breadth-first from both string diagrams at once and
// identifies diagrams by their canonical form. It returns false with a nil
// error once both sides run out of new diagrams and no rewrite was skipped.
// It returns false with ErrIncomplete when the search closed after skipping
// rewrites, and false with ErrRewriteBudget when either side visits more
// diagrams than the budget allows.
func (r *Rewriter) Equal(a, b domain.Term) (bool, error) {
	if !a.Dom().Equal(b.Dom()) || !a.Cod().Equal(b.Cod()) {
		return false, nil
	}
	if domain.StructurallyEqual(a, b) {
		return true, nil
	}

	left, right := newSide(domain.Wiring(a)), newSide(domain.Wiring(b))
	for step := 0; ; step++ {
		if left.done() && right.done() {
			r.logger.Debug("rewrite search closed", "steps", step, "left", len(left.visited), "right", len(right.visited))
			if r.partial || left.incomplete || right.incomplete {
				return false, fmt.Errorf("%w (%s vs %s)", ErrIncomplete, a, b)
			}
			return false, nil
		}
		for _, s := range []struct{ this, other *side }{{left, right}, {right, left}} {
			if s.this.done() {
				continue
			}
			if len(s.this.visited) >= r.budget {
				return false, fmt.Errorf("%w after %d terms (%s vs %s)", ErrRewriteBudget, r.budget, a, b)
			}
			if r.expand(s.this, s.other) {
				r.logger.Debug("rewrite search joined", "steps", step, "left", len(left.visited), "right", len(right.visited))
				return true, nil
			}
		}
	}
}

// Normalize applies rules left to right until none applies, or until the
// budget is spent. It returns the last term reached.
func (r *Rewriter) Normalize(t domain.Term) (domain.Term, error) {
	d := domain.Wiring(t)
	seen := map[string]bool{d.Canonical(): true}
	for i := 0; i < r.budget; i++ {
		next, ok := r.step(d, seen)
		if !ok {
			return d.Term(), nil
		}
		d = next
	}
	n := d.Term()
	return n, fmt.Errorf("%w normalizing %s", ErrRewriteBudget, n)
}

func (r *Rewriter) step(d *domain.Diagram, seen map[string]bool) (*domain.Diagram, bool) {
	for _, rl := range r.forward {
		for _, n := range rl.apply(d).results {
			key := n.Canonical()
			if !seen[key] {
				seen[key] = true
				r.logger.Debug("rewrite applied", "rule", rl.label)
				return n, true
			}
		}
	}
	return nil, false
}

type side struct {
	visited    map[string]bool
	queue      []*domain.Diagram
	incomplete bool
}

func newSide(d *domain.Diagram) *side {
	return &side{
		visited: map[string]bool{d.Canonical(): true},
		queue:   []*domain.Diagram{d},
	}
}

func (s *side) done() bool { return len(s.queue) == 0 }

// expand pops one diagram and enqueues its unvisited neighbours. It reports
// whether a neighbour was already reached from the other side.
func (r *Rewriter) expand(s, other *side) bool {
	cur := s.queue[0]
	s.queue = s.queue[1:]

	for _, rl := range r.rules {
		rw := rl.apply(cur)
		s.incomplete = s.incomplete || rw.incomplete
		for _, n := range rw.results {
			key := n.Canonical()
			if other.visited[key] {
				r.logger.Debug("rewrite applied", "rule", rl.label, "joined", true)
				return true
			}
			if s.visited[key] {
				continue
			}
			s.visited[key] = true
			s.queue = append(s.queue, n)
		}
	}
	return false
}
