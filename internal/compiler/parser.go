package compiler

import (
	"errors"
	"fmt"

	"github.com/aretw0/causal/pkg/program"
	"go.starlark.net/syntax"
)

// ErrSyntax is returned for source that is not a valid program.
var ErrSyntax = errors.New("syntax error")

// Parser converts def-style source into programs.
//
// A program is one Starlark def. Parameters name the inputs and their
// defaults name the objects they carry. Each statement is a generator call,
// optionally assigned to one name or destructured into several. Nested calls
// are bound to hidden temporaries. The final return lists the outputs.
//
//	def model(x = Number):
//	    a = observed()
//	    l, r = split(x)
//	    return (neg(a), r)
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

var fileOptions = &syntax.FileOptions{}

// Parse parses source holding exactly one def.
func (p *Parser) Parse(name string, src []byte) (*program.Program, error) {
	progs, err := p.ParseAll(name, src)
	if err != nil {
		return nil, err
	}
	if len(progs) != 1 {
		return nil, fmt.Errorf("%w: %s: expected one def, found %d", ErrSyntax, name, len(progs))
	}
	return progs[0], nil
}

// ParseAll parses every top-level def in source, in order.
func (p *Parser) ParseAll(name string, src []byte) ([]*program.Program, error) {
	file, err := fileOptions.Parse(name, src, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	var progs []*program.Program
	for _, stmt := range file.Stmts {
		def, ok := stmt.(*syntax.DefStmt)
		if !ok {
			return nil, errorAt(name, stmt, "only def statements are allowed at top level")
		}
		prog, err := newLowering(name).def(def)
		if err != nil {
			return nil, err
		}
		progs = append(progs, prog)
	}
	return progs, nil
}

// lowering turns one def into a statement list.
type lowering struct {
	file  string
	prog  *program.Program
	temps int
}

func newLowering(file string) *lowering {
	return &lowering{file: file}
}

func (l *lowering) def(def *syntax.DefStmt) (*program.Program, error) {
	l.prog = &program.Program{Name: def.Name.Name}

	for _, param := range def.Params {
		bin, ok := param.(*syntax.BinaryExpr)
		if !ok || bin.Op != syntax.EQ {
			if id, ok := param.(*syntax.Ident); ok {
				return nil, errorAt(l.file, param, fmt.Sprintf("input %s needs an object, write %s = Object", id.Name, id.Name))
			}
			return nil, errorAt(l.file, param, "inputs must be written name = Object")
		}
		name, ok1 := bin.X.(*syntax.Ident)
		obj, ok2 := bin.Y.(*syntax.Ident)
		if !ok1 || !ok2 {
			return nil, errorAt(l.file, param, "inputs must be written name = Object")
		}
		l.prog.Inputs = append(l.prog.Inputs, program.Binding{Name: name.Name, Object: obj.Name})
	}

	returned := false
	for _, stmt := range def.Body {
		if returned {
			return nil, errorAt(l.file, stmt, "statement after return")
		}
		switch s := stmt.(type) {
		case *syntax.AssignStmt:
			if err := l.assign(s); err != nil {
				return nil, err
			}
		case *syntax.ExprStmt:
			call, ok := s.X.(*syntax.CallExpr)
			if !ok {
				return nil, errorAt(l.file, s, "expression statements must be generator calls")
			}
			if err := l.emit(nil, call); err != nil {
				return nil, err
			}
		case *syntax.ReturnStmt:
			if err := l.ret(s); err != nil {
				return nil, err
			}
			returned = true
		case *syntax.BranchStmt:
			if s.Token != syntax.PASS {
				return nil, errorAt(l.file, s, "unsupported "+s.Token.String())
			}
		default:
			return nil, errorAt(l.file, stmt, fmt.Sprintf("unsupported statement %T", stmt))
		}
	}
	return l.prog, nil
}

func (l *lowering) assign(s *syntax.AssignStmt) error {
	if s.Op != syntax.EQ {
		return errorAt(l.file, s, "only plain assignment is supported")
	}
	targets, err := l.targets(s.LHS)
	if err != nil {
		return err
	}
	call, ok := s.RHS.(*syntax.CallExpr)
	if !ok {
		return errorAt(l.file, s.RHS, "right-hand side must be a generator call")
	}
	return l.emit(targets, call)
}

func (l *lowering) targets(e syntax.Expr) ([]string, error) {
	switch x := e.(type) {
	case *syntax.Ident:
		return []string{x.Name}, nil
	case *syntax.ParenExpr:
		return l.targets(x.X)
	case *syntax.TupleExpr:
		return l.idents(x.List)
	case *syntax.ListExpr:
		return l.idents(x.List)
	}
	return nil, errorAt(l.file, e, "assignment targets must be names")
}

func (l *lowering) idents(list []syntax.Expr) ([]string, error) {
	names := make([]string, 0, len(list))
	for _, e := range list {
		id, ok := e.(*syntax.Ident)
		if !ok {
			return nil, errorAt(l.file, e, "assignment targets must be names")
		}
		names = append(names, id.Name)
	}
	return names, nil
}

// emit appends a statement for call, first emitting any nested calls.
func (l *lowering) emit(targets []string, call *syntax.CallExpr) error {
	fn, ok := call.Fn.(*syntax.Ident)
	if !ok {
		return errorAt(l.file, call.Fn, "callee must be a generator name")
	}
	args := make([]string, 0, len(call.Args))
	for _, a := range call.Args {
		name, err := l.operand(a)
		if err != nil {
			return err
		}
		args = append(args, name)
	}
	start, _ := call.Span()
	l.prog.Statements = append(l.prog.Statements, program.Statement{
		Targets:   targets,
		Generator: fn.Name,
		Args:      args,
		Line:      int(start.Line),
	})
	return nil
}

// operand returns the variable holding e, lowering nested calls into
// temporaries.
func (l *lowering) operand(e syntax.Expr) (string, error) {
	switch x := e.(type) {
	case *syntax.Ident:
		return x.Name, nil
	case *syntax.ParenExpr:
		return l.operand(x.X)
	case *syntax.CallExpr:
		l.temps++
		tmp := fmt.Sprintf("$%d", l.temps)
		if err := l.emit([]string{tmp}, x); err != nil {
			return "", err
		}
		return tmp, nil
	}
	return "", errorAt(l.file, e, "arguments must be names or generator calls")
}

func (l *lowering) ret(s *syntax.ReturnStmt) error {
	if s.Result == nil {
		return nil
	}
	result := s.Result
	if paren, ok := result.(*syntax.ParenExpr); ok {
		result = paren.X
	}
	list := []syntax.Expr{result}
	if tuple, ok := result.(*syntax.TupleExpr); ok {
		list = tuple.List
	}
	for _, e := range list {
		name, err := l.operand(e)
		if err != nil {
			return err
		}
		l.prog.Outputs = append(l.prog.Outputs, program.Output{Name: name})
	}
	return nil
}

func errorAt(file string, n syntax.Node, msg string) error {
	start, _ := n.Span()
	return fmt.Errorf("%w: %s:%d:%d: %s", ErrSyntax, file, start.Line, start.Col, msg)
}
