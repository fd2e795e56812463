package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Port is the source end of a wire: either the Index-th input of the whole
// diagram (Box < 0) or the Index-th output of box Box.
type Port struct {
	Box   int
	Index int
}

// IsInput reports whether the port is a diagram input.
func (p Port) IsInput() bool { return p.Box < 0 }

// Box is one occurrence of a generator in a string diagram.
type Box struct {
	Generator Generator
	Inputs    []Port
}

// Diagram is the string diagram of a term. Duplicate and Delete leave no
// boxes behind: a duplicated wire is simply read twice, a deleted wire is
// read by nobody. Boxes are never merged or dropped.
type Diagram struct {
	Dom     Seq
	Cod     Seq
	Boxes   []Box
	Outputs []Port
}

// Wiring evaluates a well-typed term into its string diagram.
func Wiring(t Term) *Diagram {
	d := &Diagram{Dom: t.Dom().Clone(), Cod: t.Cod().Clone()}
	in := make([]Port, len(d.Dom))
	for i := range in {
		in[i] = Port{Box: -1, Index: i}
	}
	d.Outputs = d.eval(t, in)
	return d
}

func (d *Diagram) eval(t Term, in []Port) []Port {
	switch n := t.(type) {
	case *Identity:
		return in
	case *GeneratorRef:
		id := len(d.Boxes)
		d.Boxes = append(d.Boxes, Box{
			Generator: n.Generator,
			Inputs:    append([]Port(nil), in...),
		})
		out := make([]Port, len(n.Generator.Cod))
		for i := range out {
			out[i] = Port{Box: id, Index: i}
		}
		return out
	case *Composition:
		return d.eval(n.Second, d.eval(n.First, in))
	case *Product:
		k := len(n.Left.Dom())
		left := d.eval(n.Left, in[:k:k])
		right := d.eval(n.Right, in[k:])
		out := make([]Port, 0, len(left)+len(right))
		out = append(out, left...)
		return append(out, right...)
	case *Duplicate:
		return []Port{in[0], in[0]}
	case *Delete:
		return nil
	case *Braid:
		k := len(n.Left)
		out := make([]Port, 0, len(in))
		out = append(out, in[k:]...)
		return append(out, in[:k]...)
	default:
		panic(fmt.Sprintf("domain: unknown term node %T", t))
	}
}

// Consumers returns, for every box, the boxes that read at least one of its outputs.
func (d *Diagram) Consumers() [][]int {
	out := make([][]int, len(d.Boxes))
	for i, b := range d.Boxes {
		for _, p := range b.Inputs {
			if !p.IsInput() {
				out[p.Box] = append(out[p.Box], i)
			}
		}
	}
	return out
}

// Canonical returns a serialization of the diagram that is identical for
// any two terms related by associativity, units, interchange, braid
// naturality and the comonoid laws of Duplicate/Delete.
//
// Boxes reachable from the outputs are numbered by a depth-first walk from
// the ordered outputs. Discarded subdiagrams are ordered by their own
// serialization before being numbered.
func (d *Diagram) Canonical() string {
	c := newCanon(d)
	var sb strings.Builder
	fmt.Fprintf(&sb, "dom%s cod%s\n", d.Dom, d.Cod)

	outs := make([]string, len(d.Outputs))
	for i, p := range d.Outputs {
		outs[i] = c.port(p)
	}
	sb.WriteString(c.lines.String())
	c.lines.Reset()
	fmt.Fprintf(&sb, "out(%s)\n", strings.Join(outs, ","))

	sinks := c.discardedSinks()
	if len(sinks) == 0 {
		return sb.String()
	}
	keys := make(map[int]string, len(sinks))
	for _, s := range sinks {
		scratch := c.fork()
		scratch.visit(s)
		keys[s] = scratch.lines.String()
	}
	sort.SliceStable(sinks, func(i, j int) bool { return keys[sinks[i]] < keys[sinks[j]] })
	for _, s := range sinks {
		c.visit(s)
		fmt.Fprintf(&c.lines, "drop b%d\n", c.ids[s])
	}
	sb.WriteString(c.lines.String())
	return sb.String()
}

type canon struct {
	d     *Diagram
	ids   []int
	next  int
	lines strings.Builder
}

func newCanon(d *Diagram) *canon {
	ids := make([]int, len(d.Boxes))
	for i := range ids {
		ids[i] = -1
	}
	return &canon{d: d, ids: ids}
}

func (c *canon) fork() *canon {
	return &canon{d: c.d, ids: append([]int(nil), c.ids...), next: c.next}
}

func (c *canon) port(p Port) string {
	if p.IsInput() {
		return fmt.Sprintf("i%d", p.Index)
	}
	c.visit(p.Box)
	return fmt.Sprintf("b%d.%d", c.ids[p.Box], p.Index)
}

func (c *canon) visit(b int) {
	if c.ids[b] >= 0 {
		return
	}
	box := c.d.Boxes[b]
	args := make([]string, len(box.Inputs))
	for i, p := range box.Inputs {
		args[i] = c.port(p)
	}
	c.ids[b] = c.next
	c.next++
	fmt.Fprintf(&c.lines, "b%d=%s/%d(%s)\n", c.ids[b], box.Generator.Name, len(box.Generator.Cod), strings.Join(args, ","))
}

// discardedSinks lists unnumbered boxes whose outputs no other unnumbered box reads.
func (c *canon) discardedSinks() []int {
	consumed := make([]bool, len(c.d.Boxes))
	for i, b := range c.d.Boxes {
		if c.ids[i] >= 0 {
			continue
		}
		for _, p := range b.Inputs {
			if !p.IsInput() && c.ids[p.Box] < 0 {
				consumed[p.Box] = true
			}
		}
	}
	var sinks []int
	for i := range c.d.Boxes {
		if c.ids[i] < 0 && !consumed[i] {
			sinks = append(sinks, i)
		}
	}
	return sinks
}

// Canonical returns the canonical form of a well-typed term.
func Canonical(t Term) string {
	return Wiring(t).Canonical()
}

// StructurallyEqual reports whether two terms denote the same string
// diagram. It does not use any user-declared equation.
func StructurallyEqual(a, b Term) bool {
	if !a.Dom().Equal(b.Dom()) || !a.Cod().Equal(b.Cod()) {
		return false
	}
	return Canonical(a) == Canonical(b)
}

// CheckTerm verifies that every composition inside t is well typed. Terms built
// with the constructors of this package always pass; terms assembled from
// struct literals or decoded from storage may not.
func CheckTerm(t Term) error {
	switch n := t.(type) {
	case nil:
		return fmt.Errorf("nil term: %w", ErrTypeMismatch)
	case *Composition:
		if err := CheckTerm(n.First); err != nil {
			return err
		}
		if err := CheckTerm(n.Second); err != nil {
			return err
		}
		if !n.First.Cod().Equal(n.Second.Dom()) {
			return &TypeMismatchError{Op: "compose", Subject: n.Second.String(), Expected: n.First.Cod(), Actual: n.Second.Dom()}
		}
	case *Product:
		if err := CheckTerm(n.Left); err != nil {
			return err
		}
		return CheckTerm(n.Right)
	}
	return nil
}
