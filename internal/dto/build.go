package dto

import (
	"fmt"
	"strings"

	"github.com/aretw0/causal/internal/compiler"
	"github.com/aretw0/causal/pkg/domain"
	"github.com/aretw0/causal/pkg/homomorphism"
	"github.com/aretw0/causal/pkg/presentation"
	"github.com/aretw0/causal/pkg/program"
	"github.com/mitchellh/mapstructure"
)

// DecodeGenerators normalizes the loosely typed generator entries.
func (m TheoryMetadata) DecodeGenerators() ([]GeneratorMetadata, error) {
	out := make([]GeneratorMetadata, 0, len(m.Generators))
	for i, raw := range m.Generators {
		switch v := raw.(type) {
		case string:
			g, err := ParseSignature(v)
			if err != nil {
				return nil, fmt.Errorf("generator %d: %w", i, err)
			}
			out = append(out, g)
		case map[string]any, map[any]any:
			var g GeneratorMetadata
			if err := mapstructure.Decode(v, &g); err != nil {
				return nil, fmt.Errorf("generator %d: %w", i, err)
			}
			if g.Name == "" {
				return nil, fmt.Errorf("generator %d: missing name", i)
			}
			out = append(out, g)
		case GeneratorMetadata:
			out = append(out, v)
		default:
			return nil, fmt.Errorf("generator %d: invalid definition type %T", i, v)
		}
	}
	return out, nil
}

// ParseSignature reads the shorthand "name: A, B -> C". Either side may be
// empty.
func ParseSignature(s string) (GeneratorMetadata, error) {
	name, sig, ok := strings.Cut(s, ":")
	if !ok {
		return GeneratorMetadata{}, fmt.Errorf("signature %q: missing ':'", s)
	}
	dom, cod, ok := strings.Cut(sig, "->")
	if !ok {
		return GeneratorMetadata{}, fmt.Errorf("signature %q: missing '->'", s)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return GeneratorMetadata{}, fmt.Errorf("signature %q: missing name", s)
	}
	return GeneratorMetadata{Name: name, Dom: splitObjects(dom), Cod: splitObjects(cod)}, nil
}

func splitObjects(s string) []string {
	s = strings.Trim(strings.TrimSpace(s), "[]()")
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// Build creates the presentation described by m. Equation sides are parsed
// and compiled against the presentation once its generators are in place.
func (m TheoryMetadata) Build(parser *compiler.Parser) (*presentation.Presentation, error) {
	if m.Name == "" {
		return nil, fmt.Errorf("theory missing name")
	}
	p := presentation.New(m.Name)
	if err := p.AddObjects(m.Objects...); err != nil {
		return nil, fmt.Errorf("theory %s: %w", m.Name, err)
	}

	gens, err := m.DecodeGenerators()
	if err != nil {
		return nil, fmt.Errorf("theory %s: %w", m.Name, err)
	}
	for _, g := range gens {
		dom, err := p.ObjectSeq(g.Dom...)
		if err != nil {
			return nil, fmt.Errorf("theory %s: generator %s: %w", m.Name, g.Name, err)
		}
		cod, err := p.ObjectSeq(g.Cod...)
		if err != nil {
			return nil, fmt.Errorf("theory %s: generator %s: %w", m.Name, g.Name, err)
		}
		if _, err := p.AddGenerator(g.Name, dom, cod); err != nil {
			return nil, fmt.Errorf("theory %s: %w", m.Name, err)
		}
	}

	for i, eq := range m.Equations {
		name := eq.Name
		if name == "" {
			name = fmt.Sprintf("eq%d", i+1)
		}
		lhs, err := CompileSource(parser, p, name+".lhs", eq.LHS)
		if err != nil {
			return nil, fmt.Errorf("theory %s: equation %s: %w", m.Name, name, err)
		}
		rhs, err := CompileSource(parser, p, name+".rhs", eq.RHS)
		if err != nil {
			return nil, fmt.Errorf("theory %s: equation %s: %w", m.Name, name, err)
		}
		if err := p.AddEquation(name, lhs, rhs); err != nil {
			return nil, fmt.Errorf("theory %s: %w", m.Name, err)
		}
	}
	return p, nil
}

// FromPresentation returns metadata for p without equations, which have no
// source form once compiled.
func FromPresentation(p *presentation.Presentation) TheoryMetadata {
	m := TheoryMetadata{Name: p.Name()}
	for _, o := range p.Objects() {
		m.Objects = append(m.Objects, o.Name())
	}
	for _, g := range p.Generators() {
		m.Generators = append(m.Generators, GeneratorMetadata{Name: g.Name, Dom: g.Dom.Names(), Cod: g.Cod.Names()})
	}
	return m
}

// CompileSource parses a single-def program and compiles it against p.
func CompileSource(parser *compiler.Parser, p *presentation.Presentation, name, src string, opts ...program.Option) (domain.Term, error) {
	prog, err := parser.Parse(name, []byte(src))
	if err != nil {
		return nil, err
	}
	return program.NewCompiler(p, opts...).Compile(prog)
}

// Build creates the homomorphism described by m between the resolved
// source and target. When m carries refinements they are applied to a clone
// of target, which is returned as the effective target.
func (m HomomorphismMetadata) Build(parser *compiler.Parser, source, target *presentation.Presentation, opts ...homomorphism.Option) (*homomorphism.Homomorphism, error) {
	if len(m.Refine) > 0 {
		target = target.CloneAs(target.Name())
		for _, r := range m.Refine {
			rhs, err := CompileSource(parser, target, "refine."+r.Generator, r.Program)
			if err != nil {
				return nil, fmt.Errorf("refine %s: %w", r.Generator, err)
			}
			if err := homomorphism.Refine(target, r.Generator, rhs); err != nil {
				return nil, err
			}
		}
	}

	objects := make(map[domain.Object]domain.Object, len(m.Objects))
	for from, to := range m.Objects {
		objects[domain.Object(from)] = domain.Object(to)
	}
	generators := make(map[string]domain.Term, len(m.Generators))
	for name, src := range m.Generators {
		t, err := CompileSource(parser, target, "image."+name, src)
		if err != nil {
			return nil, fmt.Errorf("image of %s: %w", name, err)
		}
		generators[name] = t
	}
	return homomorphism.New(source, target, objects, generators, opts...)
}
