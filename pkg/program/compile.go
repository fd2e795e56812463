package program

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/causal/pkg/domain"
	"github.com/aretw0/causal/pkg/presentation"
)

// Compiler turns programs into terms over a fixed presentation.
type Compiler struct {
	pres   *presentation.Presentation
	logger *slog.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger used for debug traces of each compilation.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// NewCompiler creates a compiler for programs over p.
func NewCompiler(p *presentation.Presentation, opts ...Option) *Compiler {
	c := &Compiler{pres: p}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

// Compile is a shorthand for NewCompiler(p).Compile(prog).
func Compile(p *presentation.Presentation, prog *Program) (domain.Term, error) {
	return NewCompiler(p).Compile(prog)
}

// slot is one wire of the live tuple.
type slot struct {
	owner string // variable name, "" for discarded results
	obj   domain.Object
}

// env tracks the live tuple and the variables bound to its slots. Slots are
// identified by a stable id; tuple lists the ids in wire order.
type env struct {
	slots []slot
	tuple []int
	vars  map[string][]int
}

func (e *env) objects(ids []int) domain.Seq {
	out := make(domain.Seq, len(ids))
	for i, id := range ids {
		out[i] = e.slots[id].obj
	}
	return out
}

func (e *env) positions(ids []int) []int {
	pos := make(map[int]int, len(e.tuple))
	for i, id := range e.tuple {
		pos[id] = i
	}
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = pos[id]
	}
	return out
}

func (e *env) bind(name string, obj domain.Object) int {
	id := len(e.slots)
	e.slots = append(e.slots, slot{owner: name, obj: obj})
	if name != "" {
		e.vars[name] = append(e.vars[name], id)
	}
	return id
}

// Compile translates prog into a single term whose domain is the declared
// input objects and whose codomain is the declared outputs, in order.
//
// Variables are never consumed by a read: a variable still needed later is
// duplicated ahead of use, and a variable read for the last time is handed
// over as is. Variables that are never returned are deleted.
func (c *Compiler) Compile(prog *Program) (domain.Term, error) {
	e := &env{vars: make(map[string][]int)}

	var inputs domain.Seq
	for _, in := range prog.Inputs {
		obj, err := c.pres.Object(in.Object)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", in.Name, err)
		}
		if _, dup := e.vars[in.Name]; dup {
			return nil, &domain.NameCollisionError{Name: in.Name, Existing: domain.KindVariable, Adding: domain.KindVariable}
		}
		e.tuple = append(e.tuple, e.bind(in.Name, obj))
		inputs = append(inputs, obj)
	}
	if inputs == nil {
		inputs = domain.Seq{}
	}

	last := lastReads(prog)
	live := func(name string, k int) bool {
		r, read := last[name]
		return !read || r > k
	}

	cur := domain.IdSeq(inputs)
	for k, st := range prog.Statements {
		step, err := c.statement(e, k, st, live)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", where(prog, k, st), err)
		}
		cur = then(cur, step)
	}

	final, want, err := c.outputs(e, prog.Outputs)
	if err != nil {
		return nil, err
	}
	cur = then(cur, final)

	if !cur.Dom().Equal(inputs) {
		return nil, &domain.TypeMismatchError{Op: "program domain", Subject: prog.Name, Expected: inputs, Actual: cur.Dom()}
	}
	if !cur.Cod().Equal(want) {
		return nil, &domain.TypeMismatchError{Op: "program codomain", Subject: prog.Name, Expected: want, Actual: cur.Cod()}
	}
	c.logger.Debug("program compiled", "program", prog.Name, "dom", cur.Dom().String(), "cod", cur.Cod().String())
	return cur, nil
}

func (c *Compiler) statement(e *env, k int, st Statement, live func(string, int) bool) (domain.Term, error) {
	g, err := c.pres.Generator(st.Generator)
	if err != nil {
		return nil, err
	}

	var args []int
	for _, name := range st.Args {
		ids, ok := e.vars[name]
		if !ok {
			return nil, &domain.UnknownError{Kind: domain.KindVariable, Name: name, Where: "call to " + g.Name}
		}
		args = append(args, ids...)
	}
	if len(args) != len(g.Dom) {
		return nil, &domain.ArityMismatchError{Generator: g.Name, Expected: len(g.Dom), Actual: len(args)}
	}
	for i, id := range args {
		if got := e.slots[id].obj; got != g.Dom[i] {
			return nil, &domain.TypeMismatchError{
				Op:       fmt.Sprintf("argument %d of %s", i+1, g.Name),
				Subject:  e.slots[id].owner,
				Expected: domain.Seq{g.Dom[i]},
				Actual:   domain.Seq{got},
			}
		}
	}

	if len(st.Targets) > 1 && len(st.Targets) != len(g.Cod) {
		return nil, &domain.ArityMismatchError{Generator: g.Name, Expected: len(g.Cod), Actual: len(st.Targets), Results: true}
	}
	seen := make(map[string]bool, len(st.Targets))
	for _, t := range st.Targets {
		if _, bound := e.vars[t]; bound || seen[t] {
			return nil, &domain.NameCollisionError{Name: t, Existing: domain.KindVariable, Adding: domain.KindVariable}
		}
		seen[t] = true
	}

	var kept []int
	for _, id := range e.tuple {
		if live(e.slots[id].owner, k) {
			kept = append(kept, id)
		}
	}
	sel := append(e.positions(kept), e.positions(args)...)
	step := then(
		project(e.objects(e.tuple), sel),
		beside(domain.IdSeq(e.objects(kept)), domain.Ref(g)),
	)

	e.tuple = kept
	for i, o := range g.Cod {
		var name string
		switch len(st.Targets) {
		case 0:
		case 1:
			name = st.Targets[0]
		default:
			name = st.Targets[i]
		}
		e.tuple = append(e.tuple, e.bind(name, o))
	}
	if len(st.Targets) == 1 && len(g.Cod) == 0 {
		e.vars[st.Targets[0]] = nil
	}

	c.logger.Debug("statement compiled", "index", k, "generator", g.Name, "live", len(e.tuple))
	return step, nil
}

func (c *Compiler) outputs(e *env, outs []Output) (domain.Term, domain.Seq, error) {
	var ids []int
	want := domain.Seq{}
	for _, o := range outs {
		vids, ok := e.vars[o.Name]
		if !ok {
			return nil, nil, &domain.UnknownError{Kind: domain.KindVariable, Name: o.Name, Where: "return"}
		}
		got := e.objects(vids)
		if o.Object != "" {
			obj, err := c.pres.Object(o.Object)
			if err != nil {
				return nil, nil, fmt.Errorf("output %q: %w", o.Name, err)
			}
			if !got.Equal(domain.Seq{obj}) {
				return nil, nil, &domain.TypeMismatchError{Op: "output", Subject: o.Name, Expected: domain.Seq{obj}, Actual: got}
			}
		}
		ids = append(ids, vids...)
		want = append(want, got...)
	}
	return project(e.objects(e.tuple), e.positions(ids)), want, nil
}

// lastReads maps each variable to the index of the last statement reading
// it; variables returned by the program count as read after the last
// statement. Variables absent from the map are never read.
func lastReads(prog *Program) map[string]int {
	last := make(map[string]int)
	for k, st := range prog.Statements {
		for _, a := range st.Args {
			last[a] = k
		}
	}
	for _, o := range prog.Outputs {
		last[o.Name] = len(prog.Statements)
	}
	return last
}

func where(prog *Program, k int, st Statement) string {
	if st.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", prog.Name, st.Line, st)
	}
	return fmt.Sprintf("%s: statement %d (%s)", prog.Name, k+1, st)
}
