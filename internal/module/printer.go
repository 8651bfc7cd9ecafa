package module

import (
	"fmt"
	"strings"

	"frost/internal/graph"
	"frost/internal/rt"
	"frost/internal/types"
)

// Format renders the hierarchy rooted at h.Root() as source text.
// Attributes print in declaration order with their current values, so a
// frozen hierarchy prints without its pruned attributes. The printer
// assumes a tree; a submodule instance shared between two parents prints
// as two independent declarations.
func Format(h *Hierarchy) string {
	var sb strings.Builder
	rootName := h.Type(h.Root()).QualifiedName()
	if i := strings.LastIndex(rootName, "."); i >= 0 {
		rootName = rootName[i+1:]
	}
	writeModule(&sb, h, h.Root(), rootName, 0)
	return sb.String()
}

func writeModule(sb *strings.Builder, h *Hierarchy, ref rt.ModuleRef, name string, indent int) {
	pad := strings.Repeat("    ", indent)
	fmt.Fprintf(sb, "%smodule %s {\n", pad, name)

	inner := strings.Repeat("    ", indent+1)
	for _, a := range h.Type(ref).Attributes() {
		if types.IsModule(a.Type) {
			if sub, ok := h.Submodule(ref, a.Name); ok {
				writeModule(sb, h, sub, a.Name, indent+1)
			}
			continue
		}
		v, ok := h.Attr(ref, a.Name)
		if !ok {
			continue
		}
		fmt.Fprintf(sb, "%sattr %s: %s = %s\n", inner, a.Name, a.Type, v)
	}

	for _, m := range h.Methods(ref) {
		fmt.Fprintf(sb, "\n%smethod %s(%s) {\n", inner, m.Name(), formatParams(m.Graph()))
		sb.WriteString(graph.FormatBody(m.Graph(), indent+2))
		fmt.Fprintf(sb, "%s}\n", inner)
	}

	fmt.Fprintf(sb, "%s}\n", pad)
}

// formatParams renders a method's parameter list, skipping the implicit
// receiver.
func formatParams(g *graph.Graph) string {
	inputs := g.Inputs()
	if len(inputs) <= 1 {
		return ""
	}
	parts := make([]string, 0, len(inputs)-1)
	for _, in := range inputs[1:] {
		parts = append(parts, fmt.Sprintf("%%%s: %s", in.DebugName(), in.Type()))
	}
	return strings.Join(parts, ", ")
}
