package rewrite

import "github.com/aretw0/causal/pkg/domain"

// Rewrites returns every term obtained from t by replacing one occurrence of
// from with to. Occurrences are found on the string diagram of t, so they do
// not depend on how t is bracketed or how independent boxes are interleaved.
// A from without boxes has no occurrences.
func Rewrites(t, from, to domain.Term) []domain.Term {
	if !from.Dom().Equal(to.Dom()) || !from.Cod().Equal(to.Cod()) {
		return nil
	}
	rl := newRule("", from, to)
	if len(rl.from.Boxes) == 0 {
		return nil
	}
	var out []domain.Term
	for _, d := range rl.apply(domain.Wiring(t)).results {
		out = append(out, d.Term())
	}
	return out
}

type rule struct {
	label    string
	from, to *domain.Diagram
}

func newRule(label string, from, to domain.Term) rule {
	return rule{label: label, from: domain.Wiring(from), to: domain.Wiring(to)}
}

// rewrites is the outcome of applying a rule at every occurrence.
type rewrites struct {
	results []*domain.Diagram
	// incomplete is set when an occurrence admits rewrites that are missing
	// from results.
	incomplete bool
}

// site is one occurrence of a pattern: the target box of every pattern box
// and the target wire of every pattern input the pattern reads.
type site struct {
	boxes []int
	bound []domain.Port
	has   []bool
}

// apply rewrites d at every occurrence of the rule's left side. Results are
// deduplicated by canonical form and listed in box order of the first match.
func (rl rule) apply(d *domain.Diagram) rewrites {
	m := &matcher{
		target:  d,
		pattern: rl.from,
		used:    make([]bool, len(d.Boxes)),
		boxes:   make([]int, len(rl.from.Boxes)),
		bound:   make([]domain.Port, len(rl.from.Dom)),
		has:     make([]bool, len(rl.from.Dom)),
	}
	m.search(0)

	var out rewrites
	seen := make(map[string]bool)
	for _, s := range m.found {
		ds, incomplete := rl.replace(d, s)
		out.incomplete = out.incomplete || incomplete
		for _, n := range ds {
			key := n.Canonical()
			if seen[key] {
				continue
			}
			seen[key] = true
			out.results = append(out.results, n)
		}
	}
	return out
}

// matcher assigns pattern boxes to target boxes by backtracking. Pattern
// boxes are visited in index order, which is topological for diagrams built
// by domain.Wiring.
type matcher struct {
	target, pattern *domain.Diagram
	used            []bool
	boxes           []int
	bound           []domain.Port
	has             []bool
	found           []site
}

func (m *matcher) search(i int) {
	if i == len(m.pattern.Boxes) {
		m.found = append(m.found, site{
			boxes: append([]int(nil), m.boxes...),
			bound: append([]domain.Port(nil), m.bound...),
			has:   append([]bool(nil), m.has...),
		})
		return
	}
	pb := m.pattern.Boxes[i]
	for tb, box := range m.target.Boxes {
		if m.used[tb] || !sameGenerator(pb.Generator, box.Generator) {
			continue
		}
		fresh, ok := m.bind(pb.Inputs, box.Inputs)
		if ok {
			m.used[tb] = true
			m.boxes[i] = tb
			m.search(i + 1)
			m.used[tb] = false
		}
		for _, x := range fresh {
			m.has[x] = false
		}
	}
}

// bind lines up the inputs of a pattern box with those of a target box. It
// returns the pattern inputs it bound for the first time.
func (m *matcher) bind(pat, tgt []domain.Port) ([]int, bool) {
	var fresh []int
	for j, p := range pat {
		w := tgt[j]
		if !p.IsInput() {
			if w != (domain.Port{Box: m.boxes[p.Box], Index: p.Index}) {
				return fresh, false
			}
			continue
		}
		if m.has[p.Index] {
			if m.bound[p.Index] != w {
				return fresh, false
			}
			continue
		}
		m.has[p.Index] = true
		m.bound[p.Index] = w
		fresh = append(fresh, p.Index)
	}
	return fresh, true
}

func sameGenerator(a, b domain.Generator) bool {
	return a.Name == b.Name && a.Dom.Equal(b.Dom) && a.Cod.Equal(b.Cod)
}

// replace cuts the matched boxes out of d and wires in the rule's right
// side. It returns no diagram when the site is not a convex sub-diagram
// with all its exits among the pattern outputs.
func (rl rule) replace(d *domain.Diagram, s site) ([]*domain.Diagram, bool) {
	pat, rhs := rl.from, rl.to
	matched := make(map[int]bool, len(s.boxes))
	for _, b := range s.boxes {
		matched[b] = true
	}
	for i, ok := range s.has {
		if ok && !s.bound[i].IsInput() && matched[s.bound[i].Box] {
			return nil, false
		}
	}
	if unboundInputUsed(pat, rhs, s) {
		return nil, true
	}

	incomplete := false
	// exposed maps a matched output wire to the first pattern output showing it.
	exposed := make(map[domain.Port]int)
	for k, q := range pat.Outputs {
		if q.IsInput() {
			continue
		}
		w := domain.Port{Box: s.boxes[q.Box], Index: q.Index}
		if first, ok := exposed[w]; ok {
			if rhs.Outputs[first] != rhs.Outputs[k] {
				incomplete = true
			}
			continue
		}
		exposed[w] = k
	}
	leaks := func(w domain.Port) bool {
		if w.IsInput() || !matched[w.Box] {
			return false
		}
		_, ok := exposed[w]
		return !ok
	}
	for b, box := range d.Boxes {
		if matched[b] {
			continue
		}
		for _, w := range box.Inputs {
			if leaks(w) {
				return nil, incomplete
			}
		}
	}
	for _, w := range d.Outputs {
		if leaks(w) {
			return nil, incomplete
		}
	}

	below := reach(d, matched, d.Consumers())
	for i, ok := range s.has {
		if ok && !s.bound[i].IsInput() && below[s.bound[i].Box] {
			return nil, incomplete
		}
	}
	above := reach(d, matched, producers(d))

	newIdx := make([]int, len(d.Boxes))
	base := 0
	for b := range d.Boxes {
		if matched[b] {
			newIdx[b] = -1
			continue
		}
		newIdx[b] = base
		base++
	}
	var remap func(domain.Port) domain.Port
	rhsPort := func(r domain.Port) domain.Port {
		if r.IsInput() {
			return remap(s.bound[r.Index])
		}
		return domain.Port{Box: base + r.Box, Index: r.Index}
	}
	remap = func(w domain.Port) domain.Port {
		switch {
		case w.IsInput():
			return w
		case matched[w.Box]:
			return rhsPort(rhs.Outputs[exposed[w]])
		default:
			return domain.Port{Box: newIdx[w.Box], Index: w.Index}
		}
	}

	// A pattern output that passes an input straight through leaves its
	// readers on the input wire. When the right side computes that output
	// instead, the readers placed after the site may also be moved onto it.
	reroute := make(map[domain.Port]domain.Port)
	for k, q := range pat.Outputs {
		if !q.IsInput() || !s.has[q.Index] {
			continue
		}
		w := s.bound[q.Index]
		to := rhsPort(rhs.Outputs[k])
		if to == remap(w) {
			continue
		}
		if prev, ok := reroute[w]; ok {
			if prev != to {
				incomplete = true
			}
			continue
		}
		reroute[w] = to
	}
	readers := 0
	for b, box := range d.Boxes {
		if matched[b] || above[b] {
			continue
		}
		for _, w := range box.Inputs {
			if _, ok := reroute[w]; ok {
				readers++
			}
		}
	}
	for _, w := range d.Outputs {
		if _, ok := reroute[w]; ok {
			readers++
		}
	}
	if readers > 1 {
		incomplete = true
	}

	build := func(moved bool) *domain.Diagram {
		n := &domain.Diagram{Dom: d.Dom.Clone(), Cod: d.Cod.Clone()}
		wire := func(w domain.Port, after bool) domain.Port {
			if to, ok := reroute[w]; ok && moved && after {
				return to
			}
			return remap(w)
		}
		for b, box := range d.Boxes {
			if matched[b] {
				continue
			}
			ins := make([]domain.Port, len(box.Inputs))
			for j, w := range box.Inputs {
				ins[j] = wire(w, !above[b])
			}
			n.Boxes = append(n.Boxes, domain.Box{Generator: box.Generator, Inputs: ins})
		}
		for _, rb := range rhs.Boxes {
			ins := make([]domain.Port, len(rb.Inputs))
			for j, r := range rb.Inputs {
				ins[j] = rhsPort(r)
			}
			n.Boxes = append(n.Boxes, domain.Box{Generator: rb.Generator, Inputs: ins})
		}
		n.Outputs = make([]domain.Port, len(d.Outputs))
		for j, w := range d.Outputs {
			n.Outputs[j] = wire(w, true)
		}
		return n
	}

	out := []*domain.Diagram{build(false)}
	if readers > 0 {
		out = append(out, build(true))
	}
	return out, incomplete
}

// unboundInputUsed reports whether the right side needs a pattern input the
// pattern itself never reads, so that no target wire is determined for it.
func unboundInputUsed(pat, rhs *domain.Diagram, s site) bool {
	for i, ok := range s.has {
		if ok {
			continue
		}
		in := domain.Port{Box: -1, Index: i}
		for _, rb := range rhs.Boxes {
			for _, r := range rb.Inputs {
				if r == in {
					return true
				}
			}
		}
		for k, r := range rhs.Outputs {
			if r == in && pat.Outputs[k] != in {
				return true
			}
		}
	}
	return false
}

// reach marks the unmatched boxes reachable from the matched ones along next.
func reach(d *domain.Diagram, matched map[int]bool, next [][]int) []bool {
	seen := make([]bool, len(d.Boxes))
	var queue []int
	for b := range matched {
		queue = append(queue, b)
	}
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		for _, n := range next[b] {
			if matched[n] || seen[n] {
				continue
			}
			seen[n] = true
			queue = append(queue, n)
		}
	}
	return seen
}

// producers returns, for every box, the boxes whose outputs it reads.
func producers(d *domain.Diagram) [][]int {
	out := make([][]int, len(d.Boxes))
	for i, b := range d.Boxes {
		for _, p := range b.Inputs {
			if !p.IsInput() {
				out[i] = append(out[i], p.Box)
			}
		}
	}
	return out
}
