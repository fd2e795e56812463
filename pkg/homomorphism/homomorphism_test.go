package homomorphism_test

import (
	"testing"

	"github.com/aretw0/causal/pkg/domain"
	"github.com/aretw0/causal/pkg/homomorphism"
	"github.com/aretw0/causal/pkg/presentation"
	"github.com/aretw0/causal/pkg/program"
	"github.com/aretw0/causal/pkg/rewrite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sig struct {
	name     string
	dom, cod []string
}

func theory(t *testing.T, name string, objects []string, gens ...sig) *presentation.Presentation {
	t.Helper()
	p := presentation.New(name)
	require.NoError(t, p.AddObjects(objects...))
	for _, g := range gens {
		_, err := p.AddGenerator(g.name, domain.Objects(g.dom...), domain.Objects(g.cod...))
		require.NoError(t, err)
	}
	return p
}

func ref(t *testing.T, p *presentation.Presentation, name string) domain.Term {
	t.Helper()
	g, err := p.Generator(name)
	require.NoError(t, err)
	return domain.Ref(g)
}

func chain(t *testing.T, p *presentation.Presentation, names ...string) domain.Term {
	t.Helper()
	term := ref(t, p, names[0])
	for _, n := range names[1:] {
		var err error
		term, err = domain.Compose(term, ref(t, p, n))
		require.NoError(t, err)
	}
	return term
}

func objmap(pairs ...string) map[domain.Object]domain.Object {
	m := make(map[domain.Object]domain.Object)
	for i := 0; i < len(pairs); i += 2 {
		m[domain.Object(pairs[i])] = domain.Object(pairs[i+1])
	}
	return m
}

// assertSound re-derives every check a valid homomorphism must pass.
func assertSound(t *testing.T, h *homomorphism.Homomorphism) {
	t.Helper()
	for _, g := range h.Source().Generators() {
		img, ok := h.Image(g.Name)
		require.True(t, ok, "generator %s has no image", g.Name)
		dom, err := h.MapSeq(g.Dom)
		require.NoError(t, err)
		cod, err := h.MapSeq(g.Cod)
		require.NoError(t, err)
		assert.True(t, img.Dom().Equal(dom), "domain of %s", g.Name)
		assert.True(t, img.Cod().Equal(cod), "codomain of %s", g.Name)
	}
	rw := rewrite.New(h.Target().Equations())
	for _, eq := range h.Source().Equations() {
		lhs, err := h.Translate(eq.LHS)
		require.NoError(t, err)
		rhs, err := h.Translate(eq.RHS)
		require.NoError(t, err)
		ok, err := rw.Equal(lhs, rhs)
		require.NoError(t, err)
		assert.True(t, ok, "equation %s", eq.Label())
	}
}

func TestNew_Valid(t *testing.T) {
	src := theory(t, "src", []string{"A", "B"},
		sig{"f", []string{"A"}, []string{"B"}},
		sig{"g", []string{"B"}, []string{"B"}},
	)
	require.NoError(t, src.AddEquation("gg", chain(t, src, "g", "g"), ref(t, src, "g")))

	dst := theory(t, "dst", []string{"X", "Y"},
		sig{"p", []string{"X"}, []string{"Y"}},
		sig{"q", []string{"Y"}, []string{"Y"}},
	)
	require.NoError(t, dst.AddEquation("qq", chain(t, dst, "q", "q"), ref(t, dst, "q")))

	h, err := homomorphism.New(src, dst, objmap("A", "X", "B", "Y"), map[string]domain.Term{
		"f": chain(t, dst, "p", "q"),
		"g": ref(t, dst, "q"),
	})
	require.NoError(t, err)
	assertSound(t, h)

	img, ok := h.Object("A")
	assert.True(t, ok)
	assert.Equal(t, domain.Object("X"), img)
	assert.Equal(t, "src -> dst", h.String())
}

func TestNew_ImageOfWrongCodomain(t *testing.T) {
	src := theory(t, "src", []string{"A", "B"}, sig{"g", []string{"A"}, []string{"B"}})
	dst := theory(t, "dst", []string{"X", "Y", "Z"}, sig{"h", []string{"X"}, []string{"Z"}})

	h, err := homomorphism.New(src, dst, objmap("A", "X", "B", "Y"), map[string]domain.Term{
		"g": ref(t, dst, "h"),
	})
	assert.Nil(t, h)
	require.ErrorIs(t, err, domain.ErrValidationFailure)
	assert.ErrorIs(t, err, domain.ErrTypeMismatch)

	verrs := domain.ValidationErrors(err)
	require.Len(t, verrs, 1)
	assert.Equal(t, domain.CheckType, verrs[0].Check)
	assert.Equal(t, domain.KindGenerator, verrs[0].Kind)
	assert.Equal(t, "g", verrs[0].Subject)
	assert.Contains(t, err.Error(), `"g"`)
}

func TestNew_Failures(t *testing.T) {
	src := theory(t, "src", []string{"A"}, sig{"f", []string{"A"}, []string{"A"}})
	dst := theory(t, "dst", []string{"X"}, sig{"p", []string{"X"}, []string{"X"}})
	foreign := theory(t, "foreign", []string{"X"}, sig{"z", []string{"X"}, []string{"X"}})

	tests := []struct {
		name       string
		objects    map[domain.Object]domain.Object
		generators map[string]domain.Term
		check      domain.Check
		kind       domain.Kind
		subject    string
	}{
		{
			name:       "Missing Object",
			objects:    objmap(),
			generators: map[string]domain.Term{"f": ref(t, dst, "p")},
			check:      domain.CheckTotality,
			kind:       domain.KindObject,
			subject:    "A",
		},
		{
			name:       "Missing Generator",
			objects:    objmap("A", "X"),
			generators: map[string]domain.Term{},
			check:      domain.CheckTotality,
			kind:       domain.KindGenerator,
			subject:    "f",
		},
		{
			name:       "Image Object Outside Target",
			objects:    objmap("A", "W"),
			generators: map[string]domain.Term{"f": domain.Id("W")},
			check:      domain.CheckWellFormed,
			kind:       domain.KindObject,
			subject:    "A",
		},
		{
			name:       "Image Built From Foreign Generator",
			objects:    objmap("A", "X"),
			generators: map[string]domain.Term{"f": ref(t, foreign, "z")},
			check:      domain.CheckWellFormed,
			kind:       domain.KindGenerator,
			subject:    "f",
		},
		{
			name:       "Mapping An Unknown Generator",
			objects:    objmap("A", "X"),
			generators: map[string]domain.Term{"f": ref(t, dst, "p"), "ghost": ref(t, dst, "p")},
			check:      domain.CheckWellFormed,
			kind:       domain.KindGenerator,
			subject:    "ghost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := homomorphism.Validate(src, dst, tt.objects, tt.generators)
			require.ErrorIs(t, err, domain.ErrValidationFailure)

			verrs := domain.ValidationErrors(err)
			require.NotEmpty(t, verrs)
			found := false
			for _, v := range verrs {
				if v.Check == tt.check && v.Kind == tt.kind && v.Subject == tt.subject {
					found = true
				}
			}
			assert.True(t, found, "expected %s/%s/%s in %v", tt.check, tt.kind, tt.subject, err)
		})
	}
}

func TestNew_EquationPreservation(t *testing.T) {
	src := theory(t, "src", []string{"A"}, sig{"f", []string{"A"}, []string{"A"}})
	require.NoError(t, src.AddEquation("idem", chain(t, src, "f", "f"), ref(t, src, "f")))

	t.Run("Target Lacks The Equation", func(t *testing.T) {
		dst := theory(t, "dst", []string{"X"}, sig{"p", []string{"X"}, []string{"X"}})
		err := homomorphism.Validate(src, dst, objmap("A", "X"), map[string]domain.Term{"f": ref(t, dst, "p")})
		require.ErrorIs(t, err, domain.ErrValidationFailure)

		verrs := domain.ValidationErrors(err)
		require.Len(t, verrs, 1)
		assert.Equal(t, domain.CheckEquation, verrs[0].Check)
		assert.Equal(t, "idem", verrs[0].Subject)
	})

	t.Run("Target Proves It", func(t *testing.T) {
		dst := theory(t, "dst", []string{"X"}, sig{"p", []string{"X"}, []string{"X"}})
		require.NoError(t, dst.AddEquation("p-idem", chain(t, dst, "p", "p"), ref(t, dst, "p")))
		h, err := homomorphism.New(src, dst, objmap("A", "X"), map[string]domain.Term{"f": ref(t, dst, "p")})
		require.NoError(t, err)
		assertSound(t, h)
	})

	t.Run("Holds Structurally", func(t *testing.T) {
		dst := theory(t, "dst", []string{"X"})
		h, err := homomorphism.New(src, dst, objmap("A", "X"), map[string]domain.Term{"f": domain.Id("X")})
		require.NoError(t, err)
		assertSound(t, h)
	})

	t.Run("Undecided Within Budget", func(t *testing.T) {
		src := theory(t, "src", []string{"A"},
			sig{"f", []string{"A"}, []string{"A"}},
			sig{"g", []string{"A"}, []string{"A"}},
		)
		require.NoError(t, src.AddEquation("fg", ref(t, src, "f"), ref(t, src, "g")))
		dst := theory(t, "dst", []string{"X"},
			sig{"p", []string{"X"}, []string{"X"}},
			sig{"q", []string{"X"}, []string{"X"}},
		)
		require.NoError(t, dst.AddEquation("grow", ref(t, dst, "p"), chain(t, dst, "p", "p")))

		err := homomorphism.Validate(src, dst, objmap("A", "X"),
			map[string]domain.Term{"f": ref(t, dst, "p"), "g": ref(t, dst, "q")},
			homomorphism.WithRewriteBudget(16))
		require.ErrorIs(t, err, rewrite.ErrRewriteBudget)

		verrs := domain.ValidationErrors(err)
		require.Len(t, verrs, 1)
		assert.Equal(t, domain.CheckRewriteLimit, verrs[0].Check)
	})
}

func TestNew_CompiledEquation(t *testing.T) {
	boolean := domain.Object("Bool")
	src := theory(t, "ctx", []string{"Bool"}, sig{"f", []string{"Bool"}, []string{"Bool"}})
	lhs, err := program.Compile(src, &program.Program{
		Name:   "l",
		Inputs: []program.Binding{{Name: "x", Object: "Bool"}, {Name: "y", Object: "Bool"}},
		Statements: []program.Statement{
			{Targets: []string{"a"}, Generator: "f", Args: []string{"y"}},
			{Targets: []string{"r"}, Generator: "f", Args: []string{"a"}},
		},
		Outputs: []program.Output{{Name: "x"}, {Name: "r"}},
	})
	require.NoError(t, err)
	require.NoError(t, src.AddEquation("second-wire", lhs, domain.Id(boolean, boolean)))

	dst := theory(t, "bool", []string{"Bool"}, sig{"neg", []string{"Bool"}, []string{"Bool"}})
	require.NoError(t, dst.AddEquation("involution", chain(t, dst, "neg", "neg"), domain.Id(boolean)))

	tests := []struct {
		name  string
		image func() domain.Term
	}{
		{"Generator Image", func() domain.Term { return ref(t, dst, "neg") }},
		{"Identity Image", func() domain.Term { return domain.Id(boolean) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := homomorphism.New(src, dst, objmap("Bool", "Bool"), map[string]domain.Term{"f": tt.image()})
			require.NoError(t, err)
			assertSound(t, h)
		})
	}

	t.Run("Unprovable Is Undecided", func(t *testing.T) {
		odd := theory(t, "odd", []string{"Bool"}, sig{"f", []string{"Bool"}, []string{"Bool"}})
		require.NoError(t, odd.AddEquation("once", ref(t, odd, "f"), domain.Id(boolean)))

		err := homomorphism.Validate(odd, dst, objmap("Bool", "Bool"), map[string]domain.Term{"f": ref(t, dst, "neg")})
		require.ErrorIs(t, err, rewrite.ErrIncomplete)

		verrs := domain.ValidationErrors(err)
		require.Len(t, verrs, 1)
		assert.Equal(t, domain.CheckRewriteLimit, verrs[0].Check)
		assert.Equal(t, "once", verrs[0].Subject)
	})
}

func TestTranslate(t *testing.T) {
	src := theory(t, "src", []string{"A", "B"}, sig{"f", []string{"A"}, []string{"B"}})
	dst := theory(t, "dst", []string{"X", "Y"}, sig{"p", []string{"X"}, []string{"Y"}})
	h, err := homomorphism.New(src, dst, objmap("A", "X", "B", "Y"), map[string]domain.Term{"f": ref(t, dst, "p")})
	require.NoError(t, err)

	a, b := domain.Object("A"), domain.Object("B")
	term := domain.TensorAll(
		domain.MustCompose(domain.Dup(a), domain.Tensor(ref(t, src, "f"), domain.Del(a))),
		domain.Swap(domain.Seq{a}, domain.Seq{b}),
	)
	out, err := h.Translate(term)
	require.NoError(t, err)

	x, y := domain.Object("X"), domain.Object("Y")
	expected := domain.TensorAll(
		domain.MustCompose(domain.Dup(x), domain.Tensor(ref(t, dst, "p"), domain.Del(x))),
		domain.Swap(domain.Seq{x}, domain.Seq{y}),
	)
	assert.True(t, domain.StructurallyEqual(expected, out), out.String())
	assert.NoError(t, dst.Resolve(out))

	_, err = h.Translate(domain.Id("C"))
	assert.ErrorIs(t, err, domain.ErrUnknownObject)
}

func TestCompose(t *testing.T) {
	c := theory(t, "c", []string{"A"}, sig{"f", []string{"A"}, []string{"A"}})
	d := theory(t, "d", []string{"X"},
		sig{"p", []string{"X"}, []string{"X"}},
		sig{"q", []string{"X"}, []string{"X"}},
	)
	e := theory(t, "e", []string{"U"}, sig{"s", []string{"U"}, []string{"U"}})

	cd, err := homomorphism.New(c, d, objmap("A", "X"), map[string]domain.Term{"f": chain(t, d, "p", "q")})
	require.NoError(t, err)
	de, err := homomorphism.New(d, e, objmap("X", "U"), map[string]domain.Term{
		"p": ref(t, e, "s"),
		"q": domain.Id("U"),
	})
	require.NoError(t, err)

	ce, err := homomorphism.Compose(cd, de)
	require.NoError(t, err)
	assert.Same(t, c, ce.Source())
	assert.Same(t, e, ce.Target())
	img, _ := ce.Image("f")
	assert.True(t, domain.StructurallyEqual(ref(t, e, "s"), img), img.String())
	assertSound(t, ce)

	t.Run("With Identity", func(t *testing.T) {
		same, err := homomorphism.Compose(homomorphism.Identity(c), cd)
		require.NoError(t, err)
		img, _ := same.Image("f")
		assert.True(t, domain.StructurallyEqual(chain(t, d, "p", "q"), img))
	})

	t.Run("Mismatched Ends", func(t *testing.T) {
		_, err := homomorphism.Compose(de, cd)
		assert.ErrorIs(t, err, homomorphism.ErrNotComposable)
	})
}

func TestRefine(t *testing.T) {
	src := theory(t, "src", []string{"A"},
		sig{"p", []string{"A"}, []string{"A"}},
		sig{"q", []string{"A"}, []string{"A"}},
		sig{"r", []string{"A"}, []string{"A"}},
	)
	require.NoError(t, src.AddEquation("r-split", ref(t, src, "r"), chain(t, src, "p", "q")))

	dst := theory(t, "dst", []string{"A"},
		sig{"p", []string{"A"}, []string{"A"}},
		sig{"q", []string{"A"}, []string{"A"}},
		sig{"r", []string{"A"}, []string{"A"}},
	)
	images := func() map[string]domain.Term {
		return map[string]domain.Term{"p": ref(t, dst, "p"), "q": ref(t, dst, "q"), "r": ref(t, dst, "r")}
	}

	err := homomorphism.Validate(src, dst, objmap("A", "A"), images())
	require.ErrorIs(t, err, domain.ErrValidationFailure)

	require.NoError(t, homomorphism.Refine(dst, "r", chain(t, dst, "p", "q")))
	h, err := homomorphism.New(src, dst, objmap("A", "A"), images())
	require.NoError(t, err)
	assertSound(t, h)

	t.Run("Wrong Boundary", func(t *testing.T) {
		err := homomorphism.Refine(dst, "r", domain.Tensor(ref(t, dst, "p"), ref(t, dst, "q")))
		assert.ErrorIs(t, err, domain.ErrTypeMismatch)
	})

	t.Run("Unknown Generator", func(t *testing.T) {
		err := homomorphism.Refine(dst, "ghost", ref(t, dst, "p"))
		assert.ErrorIs(t, err, domain.ErrUnknownGenerator)
	})
}

func TestRefinement(t *testing.T) {
	base := theory(t, "coin", []string{"Bool"},
		sig{"observed", nil, []string{"Bool"}},
		sig{"neg", []string{"Bool"}, []string{"Bool"}},
	)
	require.NoError(t, base.AddEquation("involution",
		chain(t, base, "neg", "neg"), domain.Id("Bool")))
	baseLog := len(base.Log())

	r := homomorphism.NewRefinement(base, "coin-refined")
	_, err := r.AddObject("Real")
	require.NoError(t, err)
	_, err = r.AddGenerator("noise", nil, domain.Objects("Real"))
	require.NoError(t, err)
	_, err = r.AddGenerator("threshold", domain.Objects("Real"), domain.Objects("Bool"))
	require.NoError(t, err)

	refined := r.Presentation()
	require.NoError(t, r.Define("observed", chain(t, refined, "noise", "threshold")))

	out, inc, err := r.Build()
	require.NoError(t, err)
	assert.Same(t, refined, out)
	assert.Same(t, base, inc.Source())
	assertSound(t, inc)

	t.Run("Base Is Untouched", func(t *testing.T) {
		assert.Len(t, base.Log(), baseLog)
		assert.Len(t, base.Equations(), 1)
		_, err := base.Generator("noise")
		assert.ErrorIs(t, err, domain.ErrUnknownGenerator)
	})

	t.Run("Refined Log Records The Definition", func(t *testing.T) {
		log := refined.Log()
		last := log[len(log)-1]
		assert.Equal(t, presentation.OpRefine, last.Op)
		assert.Equal(t, "observed", last.Subject)
	})

	t.Run("Observation Is Derivable", func(t *testing.T) {
		rw := rewrite.New(refined.Equations())
		ok, err := rw.Equal(ref(t, refined, "observed"), chain(t, refined, "noise", "threshold"))
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
