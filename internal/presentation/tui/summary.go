package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/causal/pkg/domain"
	"github.com/aretw0/causal/pkg/homomorphism"
	"github.com/aretw0/causal/pkg/presentation"
)

// TheorySummary describes a presentation as markdown.
func TheorySummary(p *presentation.Presentation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", p.Name())

	sb.WriteString("## Objects\n\n")
	if len(p.Objects()) == 0 {
		sb.WriteString("_none_\n")
	}
	for _, o := range p.Objects() {
		fmt.Fprintf(&sb, "- `%s`\n", o)
	}

	sb.WriteString("\n## Generators\n\n")
	if len(p.Generators()) == 0 {
		sb.WriteString("_none_\n")
	} else {
		sb.WriteString("| Name | Domain | Codomain |\n|---|---|---|\n")
		for _, g := range p.Generators() {
			fmt.Fprintf(&sb, "| `%s` | %s | %s |\n", g.Name, seq(g.Dom), seq(g.Cod))
		}
	}

	if eqs := p.Equations(); len(eqs) > 0 {
		sb.WriteString("\n## Equations\n\n")
		for _, eq := range eqs {
			fmt.Fprintf(&sb, "- **%s**: `%s` = `%s`\n", eq.Name, eq.LHS, eq.RHS)
		}
	}
	return sb.String()
}

// HomomorphismSummary describes a validated homomorphism as markdown.
func HomomorphismSummary(h *homomorphism.Homomorphism) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", h)

	sb.WriteString("## Objects\n\n")
	for _, o := range h.Source().Objects() {
		img, _ := h.Object(o)
		fmt.Fprintf(&sb, "- `%s` ↦ `%s`\n", o, img)
	}

	sb.WriteString("\n## Generators\n\n")
	for _, g := range h.Source().Generators() {
		img, ok := h.Image(g.Name)
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "- `%s` ↦ `%s`\n", g.Name, img)
	}
	return sb.String()
}

func seq(s domain.Seq) string {
	if len(s) == 0 {
		return "I"
	}
	return strings.Join(s.Names(), " ⊗ ")
}
