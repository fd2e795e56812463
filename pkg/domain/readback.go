package domain

// Term reads the diagram back as a term denoting it. Boxes are placed one per
// layer in dependency order. Between layers the wires still needed are
// copied, dropped and reordered with Duplicate, Delete and Braid.
func (d *Diagram) Term() Term {
	order := d.topoOrder()
	pos := make([]int, len(d.Boxes))
	for step, b := range order {
		pos[b] = step
	}

	lastRead := make(map[Port]int)
	for b, box := range d.Boxes {
		for _, p := range box.Inputs {
			if v, ok := lastRead[p]; !ok || pos[b] > v {
				lastRead[p] = pos[b]
			}
		}
	}
	for _, p := range d.Outputs {
		lastRead[p] = len(order)
	}

	live := make([]Port, len(d.Dom))
	for i := range live {
		live[i] = Port{Box: -1, Index: i}
	}
	t := IdSeq(d.Dom)

	for step, b := range order {
		box := d.Boxes[b]
		var keep []Port
		for _, p := range live {
			if v, ok := lastRead[p]; ok && v > step {
				keep = append(keep, p)
			}
		}
		wires := append(append([]Port(nil), keep...), box.Inputs...)
		t = MustCompose(t, d.plumb(live, wires))
		t = MustCompose(t, Tensor(IdSeq(d.objects(keep)), Ref(box.Generator)))

		live = keep
		for i := range box.Generator.Cod {
			live = append(live, Port{Box: b, Index: i})
		}
	}
	return MustCompose(t, d.plumb(live, d.Outputs))
}

// topoOrder lists the boxes so that every box comes after the boxes it
// reads, preferring lower indices.
func (d *Diagram) topoOrder() []int {
	placed := make([]bool, len(d.Boxes))
	order := make([]int, 0, len(d.Boxes))
	for len(order) < len(d.Boxes) {
		progress := false
		for b, box := range d.Boxes {
			if placed[b] {
				continue
			}
			ready := true
			for _, p := range box.Inputs {
				if !p.IsInput() && !placed[p.Box] {
					ready = false
					break
				}
			}
			if ready {
				placed[b] = true
				order = append(order, b)
				progress = true
				break
			}
		}
		if !progress {
			panic("domain: diagram has a cycle")
		}
	}
	return order
}

func (d *Diagram) objectAt(p Port) Object {
	if p.IsInput() {
		return d.Dom[p.Index]
	}
	return d.Boxes[p.Box].Generator.Cod[p.Index]
}

func (d *Diagram) objects(ps []Port) Seq {
	out := make(Seq, len(ps))
	for i, p := range ps {
		out[i] = d.objectAt(p)
	}
	return out
}

// plumb returns the structural term taking the distinct wires from to the
// wires to, copying, deleting and reordering as needed. Every wire of to
// must occur in from.
func (d *Diagram) plumb(from, to []Port) Term {
	uses := make(map[Port]int, len(to))
	for _, p := range to {
		uses[p]++
	}

	parts := make([]Term, len(from))
	var grouped []Port
	for i, p := range from {
		parts[i] = copies(d.objectAt(p), uses[p])
		for k := 0; k < uses[p]; k++ {
			grouped = append(grouped, p)
		}
	}
	t := IdSeq(d.objects(from))
	if len(parts) > 0 {
		t = TensorAll(parts...)
	}

	// arr[i] is the wire currently at position i; bubble each target into place.
	arr := append([]Port(nil), grouped...)
	for j, want := range to {
		k := j
		for arr[k] != want {
			k++
		}
		for ; k > j; k-- {
			objs := d.objects(arr)
			layer := TensorAll(
				IdSeq(objs[:k-1]),
				Swap(Seq{objs[k-1]}, Seq{objs[k]}),
				IdSeq(objs[k+1:]),
			)
			t = MustCompose(t, layer)
			arr[k-1], arr[k] = arr[k], arr[k-1]
		}
	}
	return t
}

// copies returns the term o -> o^n made of duplicates, or Delete when n is 0.
func copies(o Object, n int) Term {
	switch n {
	case 0:
		return Del(o)
	case 1:
		return Id(o)
	}
	t := Dup(o)
	for k := 2; k < n; k++ {
		rest := make(Seq, k-1)
		for i := range rest {
			rest[i] = o
		}
		t = MustCompose(t, Tensor(Dup(o), IdSeq(rest)))
	}
	return t
}
