package domain

import "strings"

// Object is a named type tag of a theory, such as Number or Bool.
// Two objects are the same object iff their names are equal.
type Object string

// Name returns the object's name.
func (o Object) Name() string { return string(o) }

func (o Object) String() string { return string(o) }

// Seq is an ordered sequence of objects: the domain or codomain of a
// morphism. The empty Seq is the monoidal unit.
type Seq []Object

// Objects builds a Seq from object names.
func Objects(names ...string) Seq {
	s := make(Seq, len(names))
	for i, n := range names {
		s[i] = Object(n)
	}
	return s
}

// Equal reports whether both sequences list the same objects in the same order.
func (s Seq) Equal(other Seq) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Concat returns s followed by other, never aliasing either.
func (s Seq) Concat(other Seq) Seq {
	out := make(Seq, 0, len(s)+len(other))
	out = append(out, s...)
	return append(out, other...)
}

// Clone returns an independent copy.
func (s Seq) Clone() Seq {
	if s == nil {
		return nil
	}
	out := make(Seq, len(s))
	copy(out, s)
	return out
}

// Names returns the object names in order.
func (s Seq) Names() []string {
	out := make([]string, len(s))
	for i, o := range s {
		out[i] = string(o)
	}
	return out
}

func (s Seq) String() string {
	return "[" + strings.Join(s.Names(), ",") + "]"
}
