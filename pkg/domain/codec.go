package domain

import (
	"encoding/json"
	"fmt"
)

// Node kinds used by the term codec.
const (
	NodeIdentity  = "id"
	NodeGenerator = "gen"
	NodeCompose   = "compose"
	NodeTensor    = "tensor"
	NodeDuplicate = "dup"
	NodeDelete    = "del"
	NodeBraid     = "swap"
)

// TermNode is the serializable form of a Term.
type TermNode struct {
	Kind    string     `json:"kind" yaml:"kind"`
	Objects []string   `json:"objects,omitempty" yaml:"objects,omitempty"`
	Right   []string   `json:"right_objects,omitempty" yaml:"right_objects,omitempty"`
	Gen     *Generator `json:"generator,omitempty" yaml:"generator,omitempty"`
	Args    []TermNode `json:"args,omitempty" yaml:"args,omitempty"`
}

// EncodeTerm converts a term into its serializable form.
func EncodeTerm(t Term) TermNode {
	switch n := t.(type) {
	case *Identity:
		return TermNode{Kind: NodeIdentity, Objects: n.Objects.Names()}
	case *GeneratorRef:
		g := n.Generator.Clone()
		return TermNode{Kind: NodeGenerator, Gen: &g}
	case *Composition:
		return TermNode{Kind: NodeCompose, Args: []TermNode{EncodeTerm(n.First), EncodeTerm(n.Second)}}
	case *Product:
		return TermNode{Kind: NodeTensor, Args: []TermNode{EncodeTerm(n.Left), EncodeTerm(n.Right)}}
	case *Duplicate:
		return TermNode{Kind: NodeDuplicate, Objects: []string{n.Object.Name()}}
	case *Delete:
		return TermNode{Kind: NodeDelete, Objects: []string{n.Object.Name()}}
	case *Braid:
		return TermNode{Kind: NodeBraid, Objects: n.Left.Names(), Right: n.Right.Names()}
	default:
		panic(fmt.Sprintf("domain: unknown term node %T", t))
	}
}

// DecodeTerm rebuilds a term, re-checking composition types.
func DecodeTerm(n TermNode) (Term, error) {
	switch n.Kind {
	case NodeIdentity:
		return IdSeq(Objects(n.Objects...)), nil
	case NodeGenerator:
		if n.Gen == nil {
			return nil, fmt.Errorf("generator node without generator")
		}
		return Ref(*n.Gen), nil
	case NodeCompose, NodeTensor:
		if len(n.Args) != 2 {
			return nil, fmt.Errorf("%s node needs 2 args, got %d", n.Kind, len(n.Args))
		}
		l, err := DecodeTerm(n.Args[0])
		if err != nil {
			return nil, err
		}
		r, err := DecodeTerm(n.Args[1])
		if err != nil {
			return nil, err
		}
		if n.Kind == NodeTensor {
			return Tensor(l, r), nil
		}
		return Compose(l, r)
	case NodeDuplicate, NodeDelete:
		if len(n.Objects) != 1 {
			return nil, fmt.Errorf("%s node needs exactly 1 object, got %d", n.Kind, len(n.Objects))
		}
		if n.Kind == NodeDuplicate {
			return Dup(Object(n.Objects[0])), nil
		}
		return Del(Object(n.Objects[0])), nil
	case NodeBraid:
		return Swap(Objects(n.Objects...), Objects(n.Right...)), nil
	default:
		return nil, fmt.Errorf("unknown term node kind %q", n.Kind)
	}
}

// MarshalTerm encodes a term as JSON.
func MarshalTerm(t Term) ([]byte, error) {
	return json.Marshal(EncodeTerm(t))
}

// UnmarshalTerm decodes a term from JSON.
func UnmarshalTerm(data []byte) (Term, error) {
	var n TermNode
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("failed to parse term: %w", err)
	}
	return DecodeTerm(n)
}
