package program

import "github.com/aretw0/causal/pkg/domain"

// then composes f and g, dropping identities. The caller guarantees that
// the types line up.
func then(f, g domain.Term) domain.Term {
	if _, ok := g.(*domain.Identity); ok {
		return f
	}
	if _, ok := f.(*domain.Identity); ok {
		return g
	}
	return domain.MustCompose(f, g)
}

// beside tensors f and g, dropping units and merging adjacent identities.
func beside(f, g domain.Term) domain.Term {
	fid, fok := f.(*domain.Identity)
	gid, gok := g.(*domain.Identity)
	switch {
	case fok && len(fid.Objects) == 0:
		return g
	case gok && len(gid.Objects) == 0:
		return f
	case fok && gok:
		return domain.IdSeq(fid.Objects.Concat(gid.Objects))
	}
	return domain.Tensor(f, g)
}

// copies turns one wire of o into n wires: n = 0 deletes, n = 1 passes
// through, n >= 2 duplicates repeatedly.
func copies(o domain.Object, n int) domain.Term {
	switch n {
	case 0:
		return domain.Del(o)
	case 1:
		return domain.Id(o)
	case 2:
		return domain.Dup(o)
	}
	return domain.MustCompose(domain.Dup(o), beside(copies(o, n-1), domain.Id(o)))
}

// project builds the morphism objs -> objs[sel[0]] ⊗ ... ⊗ objs[sel[k]].
// Slots missing from sel are deleted, slots listed several times are
// duplicated, and the result is reordered with braids.
func project(objs domain.Seq, sel []int) domain.Term {
	if isIdentity(len(objs), sel) {
		return domain.IdSeq(objs)
	}
	count := make([]int, len(objs))
	for _, i := range sel {
		count[i]++
	}

	stage := domain.IdSeq(nil)
	var expanded domain.Seq
	start := make([]int, len(objs))
	for i, o := range objs {
		start[i] = len(expanded)
		stage = beside(stage, copies(o, count[i]))
		for j := 0; j < count[i]; j++ {
			expanded = append(expanded, o)
		}
	}

	used := make([]int, len(objs))
	perm := make([]int, len(sel))
	for k, i := range sel {
		perm[k] = start[i] + used[i]
		used[i]++
	}
	return then(stage, permute(expanded, perm))
}

// permute builds the morphism whose k-th output is input perm[k], as a
// sequence of adjacent transpositions.
func permute(objs domain.Seq, perm []int) domain.Term {
	n := len(objs)
	cur := make([]int, n)
	for i := range cur {
		cur[i] = i
	}
	at := func(idx []int) domain.Seq {
		s := make(domain.Seq, len(idx))
		for i, j := range idx {
			s[i] = objs[j]
		}
		return s
	}

	t := domain.IdSeq(objs)
	for k := 0; k < n; k++ {
		m := k
		for cur[m] != perm[k] {
			m++
		}
		for j := m; j > k; j-- {
			layer := beside(
				beside(domain.IdSeq(at(cur[:j-1])), domain.Swap(domain.Seq{objs[cur[j-1]]}, domain.Seq{objs[cur[j]]})),
				domain.IdSeq(at(cur[j+1:])),
			)
			t = then(t, layer)
			cur[j-1], cur[j] = cur[j], cur[j-1]
		}
	}
	return t
}

func isIdentity(n int, sel []int) bool {
	if len(sel) != n {
		return false
	}
	for i, j := range sel {
		if i != j {
			return false
		}
	}
	return true
}
