package program_test

import (
	"fmt"
	"testing"

	"github.com/aretw0/causal/pkg/domain"
	"github.com/aretw0/causal/pkg/presentation"
	"github.com/aretw0/causal/pkg/program"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logic(t *testing.T) *presentation.Presentation {
	t.Helper()
	p := presentation.New("logic")
	require.NoError(t, p.AddObjects("Number", "Bool"))
	for _, g := range []struct {
		name     string
		dom, cod []string
	}{
		{"neg", []string{"Bool"}, []string{"Bool"}},
		{"observed", nil, []string{"Bool"}},
		{"and", []string{"Bool", "Bool"}, []string{"Bool"}},
		{"positive", []string{"Number"}, []string{"Bool"}},
		{"split", []string{"Number"}, []string{"Number", "Bool"}},
		{"noise", nil, []string{"Number"}},
		{"sink", []string{"Bool"}, nil},
	} {
		_, err := p.AddGenerator(g.name, domain.Objects(g.dom...), domain.Objects(g.cod...))
		require.NoError(t, err)
	}
	return p
}

func call(gen string, targets []string, args ...string) program.Statement {
	return program.Statement{Targets: targets, Generator: gen, Args: args}
}

func vars(names ...string) []string { return names }

func outs(names ...string) []program.Output {
	out := make([]program.Output, len(names))
	for i, n := range names {
		out[i] = program.Output{Name: n}
	}
	return out
}

func gen(t *testing.T, p *presentation.Presentation, name string) domain.Term {
	t.Helper()
	g, err := p.Generator(name)
	require.NoError(t, err)
	return domain.Ref(g)
}

func TestCompile_Scenarios(t *testing.T) {
	p := logic(t)
	boolean := domain.Object("Bool")
	observed := gen(t, p, "observed")

	tests := []struct {
		name     string
		prog     *program.Program
		expected domain.Term
		rendered string
	}{
		{
			name: "Negated Observation",
			prog: &program.Program{Name: "a", Statements: []program.Statement{
				call("observed", vars("a")),
				call("neg", vars("b"), "a"),
			}, Outputs: outs("b")},
			expected: domain.MustCompose(observed, gen(t, p, "neg")),
			rendered: "(observed ; neg)",
		},
		{
			name: "Variable Returned Twice",
			prog: &program.Program{Name: "b", Statements: []program.Statement{
				call("observed", vars("a")),
			}, Outputs: outs("a", "a")},
			expected: domain.MustCompose(observed, domain.Dup(boolean)),
			rendered: "(observed ; dup[Bool])",
		},
		{
			name: "Variable Never Returned",
			prog: &program.Program{Name: "c", Statements: []program.Statement{
				call("observed", vars("a")),
			}},
			expected: domain.MustCompose(observed, domain.Del(boolean)),
			rendered: "(observed ; del[Bool])",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, err := program.Compile(p, tt.prog)
			require.NoError(t, err)
			assert.Equal(t, tt.rendered, term.String())
			assert.True(t, domain.StructurallyEqual(tt.expected, term))
			assert.True(t, term.Dom().Equal(tt.expected.Dom()))
			assert.True(t, term.Cod().Equal(tt.expected.Cod()))
		})
	}
}

func TestCompile_Wiring(t *testing.T) {
	p := logic(t)
	num, boolean := domain.Object("Number"), domain.Object("Bool")

	t.Run("Shared Input Is Duplicated", func(t *testing.T) {
		prog := &program.Program{
			Inputs: []program.Binding{{Name: "x", Object: "Bool"}},
			Statements: []program.Statement{
				call("neg", vars("y"), "x"),
				call("and", vars("z"), "x", "y"),
			},
			Outputs: outs("z"),
		}
		term, err := program.Compile(p, prog)
		require.NoError(t, err)

		neg, and := gen(t, p, "neg"), gen(t, p, "and")
		expected := domain.MustCompose(
			domain.Dup(boolean),
			domain.MustCompose(domain.Tensor(domain.Id(boolean), neg), and),
		)
		assert.True(t, domain.StructurallyEqual(expected, term), term.String())
	})

	t.Run("Unused Input Is Deleted", func(t *testing.T) {
		prog := &program.Program{
			Inputs: []program.Binding{
				{Name: "n", Object: "Number"},
				{Name: "b", Object: "Bool"},
			},
			Outputs: outs("b"),
		}
		term, err := program.Compile(p, prog)
		require.NoError(t, err)
		assert.True(t, domain.StructurallyEqual(domain.Tensor(domain.Del(num), domain.Id(boolean)), term), term.String())
	})

	t.Run("Outputs Are Reordered", func(t *testing.T) {
		prog := &program.Program{
			Inputs: []program.Binding{
				{Name: "n", Object: "Number"},
				{Name: "b", Object: "Bool"},
			},
			Outputs: outs("b", "n"),
		}
		term, err := program.Compile(p, prog)
		require.NoError(t, err)
		assert.True(t, domain.StructurallyEqual(domain.Swap(domain.Seq{num}, domain.Seq{boolean}), term), term.String())
		assert.Equal(t, domain.Seq{boolean, num}, term.Cod())
	})

	t.Run("Destructured Results", func(t *testing.T) {
		prog := &program.Program{
			Statements: []program.Statement{
				call("noise", vars("n")),
				call("split", vars("m", "flag"), "n"),
				call("positive", vars("pos"), "m"),
			},
			Outputs: outs("pos", "flag"),
		}
		term, err := program.Compile(p, prog)
		require.NoError(t, err)
		assert.Empty(t, term.Dom())
		assert.Equal(t, domain.Seq{boolean, boolean}, term.Cod())

		expected := domain.MustCompose(
			domain.MustCompose(gen(t, p, "noise"), gen(t, p, "split")),
			domain.Tensor(gen(t, p, "positive"), domain.Id(boolean)),
		)
		assert.True(t, domain.StructurallyEqual(expected, term), term.String())
	})

	t.Run("Single Target Holds Whole Codomain", func(t *testing.T) {
		prog := &program.Program{
			Inputs:     []program.Binding{{Name: "n", Object: "Number"}},
			Statements: []program.Statement{call("split", vars("pair"), "n")},
			Outputs:    outs("pair"),
		}
		term, err := program.Compile(p, prog)
		require.NoError(t, err)
		assert.True(t, domain.StructurallyEqual(gen(t, p, "split"), term), term.String())
	})

	t.Run("Discarded Call Is Kept And Deleted", func(t *testing.T) {
		prog := &program.Program{
			Statements: []program.Statement{call("observed", nil)},
		}
		term, err := program.Compile(p, prog)
		require.NoError(t, err)
		assert.True(t, domain.StructurallyEqual(domain.MustCompose(gen(t, p, "observed"), domain.Del(boolean)), term))
	})

	t.Run("Effect With Empty Codomain", func(t *testing.T) {
		prog := &program.Program{
			Statements: []program.Statement{
				call("observed", vars("a")),
				call("sink", nil, "a"),
			},
		}
		term, err := program.Compile(p, prog)
		require.NoError(t, err)
		assert.Equal(t, "(observed ; sink)", term.String())
	})
}

func TestCompile_Errors(t *testing.T) {
	p := logic(t)

	tests := []struct {
		name string
		prog *program.Program
		want error
	}{
		{
			name: "Unknown Generator",
			prog: &program.Program{Statements: []program.Statement{call("flip", vars("a"))}},
			want: domain.ErrUnknownGenerator,
		},
		{
			name: "Unknown Variable",
			prog: &program.Program{Statements: []program.Statement{call("neg", vars("b"), "a")}},
			want: domain.ErrUnknownVariable,
		},
		{
			name: "Unknown Output",
			prog: &program.Program{Outputs: outs("ghost")},
			want: domain.ErrUnknownVariable,
		},
		{
			name: "Unknown Input Object",
			prog: &program.Program{Inputs: []program.Binding{{Name: "x", Object: "Real"}}},
			want: domain.ErrUnknownObject,
		},
		{
			name: "Too Few Arguments",
			prog: &program.Program{
				Inputs:     []program.Binding{{Name: "x", Object: "Bool"}},
				Statements: []program.Statement{call("and", vars("y"), "x")},
			},
			want: domain.ErrArityMismatch,
		},
		{
			name: "Wrong Number Of Targets",
			prog: &program.Program{
				Inputs:     []program.Binding{{Name: "x", Object: "Number"}},
				Statements: []program.Statement{call("split", vars("a", "b", "c"), "x")},
			},
			want: domain.ErrArityMismatch,
		},
		{
			name: "Argument Of Wrong Object",
			prog: &program.Program{
				Inputs:     []program.Binding{{Name: "x", Object: "Number"}},
				Statements: []program.Statement{call("neg", vars("y"), "x")},
			},
			want: domain.ErrTypeMismatch,
		},
		{
			name: "Output Of Wrong Object",
			prog: &program.Program{
				Inputs:  []program.Binding{{Name: "x", Object: "Number"}},
				Outputs: []program.Output{{Name: "x", Object: "Bool"}},
			},
			want: domain.ErrTypeMismatch,
		},
		{
			name: "Rebinding A Variable",
			prog: &program.Program{
				Statements: []program.Statement{
					call("observed", vars("a")),
					call("observed", vars("a")),
				},
			},
			want: domain.ErrNameCollision,
		},
		{
			name: "Duplicate Input",
			prog: &program.Program{
				Inputs: []program.Binding{{Name: "x", Object: "Bool"}, {Name: "x", Object: "Bool"}},
			},
			want: domain.ErrNameCollision,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, err := program.Compile(p, tt.prog)
			assert.Nil(t, term)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCompile_ErrorsNameTheCulprit(t *testing.T) {
	p := logic(t)

	_, err := program.Compile(p, &program.Program{
		Name:   "bad",
		Inputs: []program.Binding{{Name: "x", Object: "Number"}},
		Statements: []program.Statement{
			{Targets: vars("y"), Generator: "neg", Args: vars("x"), Line: 3},
		},
	})
	require.Error(t, err)

	var tm *domain.TypeMismatchError
	require.ErrorAs(t, err, &tm)
	assert.Equal(t, "x", tm.Subject)
	assert.Contains(t, err.Error(), "bad:3")
	assert.Contains(t, err.Error(), "neg")
}

// Every successful compilation must carry exactly the declared boundary.
func TestCompile_BoundaryMatchesDeclaration(t *testing.T) {
	p := logic(t)
	objects := []string{"Number", "Bool"}

	for mask := 0; mask < 1<<4; mask++ {
		var inputs []program.Binding
		var want domain.Seq
		for i := 0; i < 4; i++ {
			obj := objects[(mask>>i)&1]
			inputs = append(inputs, program.Binding{Name: fmt.Sprintf("v%d", i), Object: obj})
		}
		var outputs []program.Output
		for i := 3; i >= 0; i -= 2 {
			outputs = append(outputs, program.Output{Name: inputs[i].Name})
			want = append(want, domain.Object(inputs[i].Object))
		}
		outputs = append(outputs, program.Output{Name: "v3"})
		want = append(want, domain.Object(inputs[3].Object))

		t.Run(fmt.Sprintf("Mask %d", mask), func(t *testing.T) {
			term, err := program.Compile(p, &program.Program{Inputs: inputs, Outputs: outputs})
			require.NoError(t, err)
			assert.True(t, term.Dom().Equal(domain.Objects(objects[mask&1], objects[(mask>>1)&1], objects[(mask>>2)&1], objects[(mask>>3)&1])))
			assert.True(t, term.Cod().Equal(want))
			require.NoError(t, domain.CheckTerm(term))
		})
	}
}

func TestProgram_String(t *testing.T) {
	prog := &program.Program{
		Name:   "model",
		Inputs: []program.Binding{{Name: "x", Object: "Bool"}},
		Statements: []program.Statement{
			call("neg", vars("y"), "x"),
			call("and", vars("z"), "x", "y"),
		},
		Outputs: outs("z", "y"),
	}
	expected := "def model(x = Bool):\n" +
		"    y = neg(x)\n" +
		"    z = and(x, y)\n" +
		"    return (z, y)\n"
	assert.Equal(t, expected, prog.String())
}
