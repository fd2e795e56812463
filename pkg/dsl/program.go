package dsl

import (
	"github.com/aretw0/causal/pkg/domain"
	"github.com/aretw0/causal/pkg/presentation"
	"github.com/aretw0/causal/pkg/program"
)

// ProgramBuilder provides a fluent API for writing a program.
type ProgramBuilder struct {
	prog program.Program
}

// Program starts a new program.
func Program(name string) *ProgramBuilder {
	return &ProgramBuilder{prog: program.Program{Name: name}}
}

// Input declares an input variable carrying object.
func (p *ProgramBuilder) Input(name, object string) *ProgramBuilder {
	p.prog.Inputs = append(p.prog.Inputs, program.Binding{Name: name, Object: object})
	return p
}

// Let binds the whole result of gen(args...) to target.
func (p *ProgramBuilder) Let(target, gen string, args ...string) *ProgramBuilder {
	return p.Bind([]string{target}, gen, args...)
}

// Bind binds one target per result of gen(args...).
func (p *ProgramBuilder) Bind(targets []string, gen string, args ...string) *ProgramBuilder {
	p.prog.Statements = append(p.prog.Statements, program.Statement{
		Targets:   targets,
		Generator: gen,
		Args:      args,
	})
	return p
}

// Do calls gen(args...) and discards its results.
func (p *ProgramBuilder) Do(gen string, args ...string) *ProgramBuilder {
	return p.Bind(nil, gen, args...)
}

// Return declares the outputs, in order. A name may appear more than once.
func (p *ProgramBuilder) Return(names ...string) *ProgramBuilder {
	for _, n := range names {
		p.prog.Outputs = append(p.prog.Outputs, program.Output{Name: n})
	}
	return p
}

// Build returns a copy of the program.
func (p *ProgramBuilder) Build() *program.Program {
	prog := p.prog
	prog.Inputs = append([]program.Binding(nil), p.prog.Inputs...)
	prog.Statements = append([]program.Statement(nil), p.prog.Statements...)
	prog.Outputs = append([]program.Output(nil), p.prog.Outputs...)
	return &prog
}

// Compile compiles the program against pres.
func (p *ProgramBuilder) Compile(pres *presentation.Presentation, opts ...program.Option) (domain.Term, error) {
	return program.NewCompiler(pres, opts...).Compile(p.Build())
}
