package rewrite_test

import (
	"testing"

	"github.com/aretw0/causal/pkg/domain"
	"github.com/aretw0/causal/pkg/rewrite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func endo(name string) domain.Term {
	return domain.Ref(domain.Generator{Name: name, Dom: domain.Objects("A"), Cod: domain.Objects("A")})
}

func seq(ts ...domain.Term) domain.Term {
	t, err := domain.ComposeAll(ts[0], ts[1:]...)
	if err != nil {
		panic(err)
	}
	return t
}

func equation(t *testing.T, name string, lhs, rhs domain.Term) domain.Equation {
	t.Helper()
	eq, err := domain.NewEquation(name, lhs, rhs)
	require.NoError(t, err)
	return eq
}

func TestEqual(t *testing.T) {
	f, g, h, k := endo("f"), endo("g"), endo("h"), endo("k")
	eqs := []domain.Equation{
		equation(t, "fg", seq(f, g), h),
		equation(t, "hk", seq(h, k), k),
	}
	r := rewrite.New(eqs)

	tests := []struct {
		name     string
		a, b     domain.Term
		expected bool
	}{
		{"Structurally Equal", seq(f, domain.Id("A")), f, true},
		{"One Step Inside A Chain", seq(f, g, k), seq(h, k), true},
		{"Right To Left", seq(h, k), seq(f, g, k), true},
		{"Two Steps", seq(f, g, k), k, true},
		{"Inside A Tensor", domain.Tensor(seq(f, g), k), domain.Tensor(h, k), true},
		{"Unrelated Generators", f, g, false},
		{"Different Boundaries", f, domain.Tensor(f, f), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := r.Equal(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
		})
	}
}

func TestEqual_WithoutEquations(t *testing.T) {
	f, g := endo("f"), endo("g")
	r := rewrite.New(nil)

	ok, err := r.Equal(seq(f, g), seq(f, g))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Equal(seq(f, g), seq(g, f))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEqual_Budget(t *testing.T) {
	f, g := endo("f"), endo("g")
	r := rewrite.New([]domain.Equation{equation(t, "grow", f, seq(f, f))}, rewrite.WithBudget(8))

	ok, err := r.Equal(f, g)
	assert.False(t, ok)
	assert.ErrorIs(t, err, rewrite.ErrRewriteBudget)
}

func TestNormalize(t *testing.T) {
	f, g, h, k := endo("f"), endo("g"), endo("h"), endo("k")
	r := rewrite.New([]domain.Equation{
		equation(t, "fg", seq(f, g), h),
		equation(t, "hk", seq(h, k), k),
	})

	n, err := r.Normalize(seq(f, g, k))
	require.NoError(t, err)
	assert.True(t, domain.StructurallyEqual(k, n), n.String())

	t.Run("Diverging Rules Hit The Budget", func(t *testing.T) {
		r := rewrite.New([]domain.Equation{equation(t, "grow", f, seq(f, f))}, rewrite.WithBudget(4))
		_, err := r.Normalize(f)
		assert.ErrorIs(t, err, rewrite.ErrRewriteBudget)
	})
}

func TestRewrites(t *testing.T) {
	f, g, h, k := endo("f"), endo("g"), endo("h"), endo("k")

	t.Run("Composition Run", func(t *testing.T) {
		out := rewrite.Rewrites(seq(k, f, g, k), seq(f, g), h)
		require.Len(t, out, 1)
		assert.True(t, domain.StructurallyEqual(seq(k, h, k), out[0]))
	})

	t.Run("Every Occurrence", func(t *testing.T) {
		out := rewrite.Rewrites(domain.Tensor(f, domain.Tensor(k, f)), f, g)
		require.Len(t, out, 2)
		assert.True(t, domain.StructurallyEqual(domain.TensorAll(g, k, f), out[0]))
		assert.True(t, domain.StructurallyEqual(domain.TensorAll(f, k, g), out[1]))
	})

	t.Run("No Occurrence", func(t *testing.T) {
		assert.Empty(t, rewrite.Rewrites(seq(f, k), g, h))
	})
}

func TestEqual_ModuloInterchange(t *testing.T) {
	b := domain.Object("Bool")
	neg := domain.Ref(domain.Generator{Name: "neg", Dom: domain.Seq{b}, Cod: domain.Seq{b}})
	r := rewrite.New([]domain.Equation{
		equation(t, "involution", seq(neg, neg), domain.Id(b)),
	})

	tests := []struct {
		name string
		a    domain.Term
	}{
		{"Layered Beside An Identity", seq(domain.Tensor(domain.Id(b), neg), domain.Tensor(domain.Id(b), neg))},
		{"Split Across Both Factors", seq(domain.Tensor(neg, neg), domain.Tensor(neg, neg))},
		{"Behind A Swap", seq(
			domain.Tensor(neg, domain.Id(b)),
			domain.Swap(domain.Seq{b}, domain.Seq{b}),
			domain.Tensor(domain.Id(b), neg),
			domain.Swap(domain.Seq{b}, domain.Seq{b}),
		)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := r.Equal(tt.a, domain.Id(b, b))
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestEqual_Incomplete(t *testing.T) {
	b := domain.Object("Bool")
	neg := domain.Ref(domain.Generator{Name: "neg", Dom: domain.Seq{b}, Cod: domain.Seq{b}})
	r := rewrite.New([]domain.Equation{
		equation(t, "involution", seq(neg, neg), domain.Id(b)),
	})

	// The identity side cannot be matched, so a closed search proves nothing.
	ok, err := r.Equal(neg, domain.Id(b))
	assert.False(t, ok)
	assert.ErrorIs(t, err, rewrite.ErrIncomplete)
}

func TestRewrites_Diagram(t *testing.T) {
	f, g, h, k := endo("f"), endo("g"), endo("h"), endo("k")
	a := domain.Object("A")

	t.Run("Across Layers", func(t *testing.T) {
		out := rewrite.Rewrites(seq(domain.Tensor(f, k), domain.Tensor(g, domain.Id(a))), seq(f, g), h)
		require.Len(t, out, 1)
		assert.True(t, domain.StructurallyEqual(domain.Tensor(h, k), out[0]), out[0].String())
	})

	t.Run("Hidden Wire Used Outside", func(t *testing.T) {
		shared := seq(f, domain.Dup(a), domain.Tensor(g, k))
		assert.Empty(t, rewrite.Rewrites(shared, seq(f, g), h))
	})

	t.Run("Copied Input Is Bound Once", func(t *testing.T) {
		p := domain.Ref(domain.Generator{Name: "p", Dom: domain.Objects("A", "A"), Cod: domain.Objects("A")})
		from := seq(domain.Dup(a), p)
		out := rewrite.Rewrites(seq(f, domain.Dup(a), p), from, g)
		require.Len(t, out, 1)
		assert.True(t, domain.StructurallyEqual(seq(f, g), out[0]), out[0].String())

		assert.Empty(t, rewrite.Rewrites(seq(domain.Tensor(f, k), p), from, g))
	})

	t.Run("Wires Only Pattern", func(t *testing.T) {
		assert.Empty(t, rewrite.Rewrites(f, domain.Id(a), f))
	})
}
