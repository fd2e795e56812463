package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/causal/pkg/domain"
)

// Overlay marks parts of the diagram for emphasis.
type Overlay struct {
	// Highlight lists generator names whose boxes are emphasised.
	Highlight []string
}

// GenerateMermaid renders the string diagram of t as a left-to-right
// Mermaid flowchart:
// - Diagram inputs and outputs: ([Stadium])
// - Generator boxes: [Rectangle], or [[Subroutine]] for sources with no inputs
// - Discarded wires end in a small x((del)) node
// Every edge is labelled with the object it carries.
func GenerateMermaid(t domain.Term, overlay *Overlay) string {
	d := domain.Wiring(t)

	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for i, o := range d.Dom {
		sb.WriteString(fmt.Sprintf("    in%d([\"%s\"])\n", i, escape(o.Name())))
	}
	for i, b := range d.Boxes {
		opener, closer := "[", "]"
		if len(b.Generator.Dom) == 0 {
			opener, closer = "[[", "]]"
		}
		sb.WriteString(fmt.Sprintf("    b%d%s\"%s\"%s\n", i, opener, escape(b.Generator.Name), closer))
	}
	for i, o := range d.Cod {
		sb.WriteString(fmt.Sprintf("    out%d([\"%s\"])\n", i, escape(o.Name())))
	}

	read := make(map[domain.Port]bool)
	for i, b := range d.Boxes {
		for _, p := range b.Inputs {
			read[p] = true
			sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> b%d\n", portNode(p), wireType(d, p), i))
		}
	}
	for i, p := range d.Outputs {
		read[p] = true
		sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> out%d\n", portNode(p), wireType(d, p), i))
	}

	// Wires nobody reads were deleted.
	dels := 0
	discard := func(p domain.Port) {
		if read[p] {
			return
		}
		sb.WriteString(fmt.Sprintf("    %s -. \"%s\" .-> del%d((x))\n", portNode(p), wireType(d, p), dels))
		dels++
	}
	for i := range d.Dom {
		discard(domain.Port{Box: -1, Index: i})
	}
	for i, b := range d.Boxes {
		for j := range b.Generator.Cod {
			discard(domain.Port{Box: i, Index: j})
		}
	}

	if overlay != nil && len(overlay.Highlight) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef highlight fill:#ffeb3b,stroke:#fbc02d,stroke-width:3px,color:#000;\n")
		marked := make(map[string]bool, len(overlay.Highlight))
		for _, name := range overlay.Highlight {
			marked[name] = true
		}
		for i, b := range d.Boxes {
			if marked[b.Generator.Name] {
				sb.WriteString(fmt.Sprintf("    class b%d highlight;\n", i))
			}
		}
	}

	return sb.String()
}

func portNode(p domain.Port) string {
	if p.IsInput() {
		return fmt.Sprintf("in%d", p.Index)
	}
	return fmt.Sprintf("b%d", p.Box)
}

func wireType(d *domain.Diagram, p domain.Port) string {
	if p.IsInput() {
		return escape(d.Dom[p.Index].Name())
	}
	return escape(d.Boxes[p.Box].Generator.Cod[p.Index].Name())
}

// escape replaces double quotes, which would end a Mermaid label.
func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
