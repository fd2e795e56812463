package program

import (
	"fmt"
	"strings"
)

// Binding declares a program input: a variable and the object it carries.
type Binding struct {
	Name   string `json:"name" yaml:"name"`
	Object string `json:"object" yaml:"object"`
}

// Statement binds the results of one generator invocation.
//
// With no targets the results are discarded. With one target the variable
// holds the generator's whole codomain. With several targets there must be
// exactly one per codomain object.
type Statement struct {
	Targets   []string `json:"targets,omitempty" yaml:"targets,omitempty"`
	Generator string   `json:"generator" yaml:"generator"`
	Args      []string `json:"args,omitempty" yaml:"args,omitempty"`
	Line      int      `json:"line,omitempty" yaml:"line,omitempty"`
}

// Output names a variable returned by the program. Object, when set, is the
// expected object of that variable.
type Output struct {
	Name   string `json:"name" yaml:"name"`
	Object string `json:"object,omitempty" yaml:"object,omitempty"`
}

// Program is a straight-line list of statements over declared inputs,
// returning declared outputs. It does not depend on any surface syntax.
type Program struct {
	Name       string      `json:"name" yaml:"name"`
	Inputs     []Binding   `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Statements []Statement `json:"statements" yaml:"statements"`
	Outputs    []Output    `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

func (s Statement) String() string {
	call := fmt.Sprintf("%s(%s)", s.Generator, strings.Join(s.Args, ", "))
	if len(s.Targets) == 0 {
		return call
	}
	return strings.Join(s.Targets, ", ") + " = " + call
}

// String renders the program in the def-style notation read by the parser.
func (p *Program) String() string {
	var sb strings.Builder
	params := make([]string, len(p.Inputs))
	for i, in := range p.Inputs {
		params[i] = in.Name + " = " + in.Object
	}
	name := p.Name
	if name == "" {
		name = "program"
	}
	fmt.Fprintf(&sb, "def %s(%s):\n", name, strings.Join(params, ", "))
	for _, s := range p.Statements {
		sb.WriteString("    " + s.String() + "\n")
	}
	outs := make([]string, len(p.Outputs))
	for i, o := range p.Outputs {
		outs[i] = o.Name
	}
	switch len(outs) {
	case 0:
		sb.WriteString("    return\n")
	case 1:
		sb.WriteString("    return " + outs[0] + "\n")
	default:
		sb.WriteString("    return (" + strings.Join(outs, ", ") + ")\n")
	}
	return sb.String()
}
