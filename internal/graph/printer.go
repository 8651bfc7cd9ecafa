package graph

import "strings"

// Printer renders graphs back into the textual instruction syntax.
// Output of a well-formed graph re-parses, which keeps dumps usable as
// fixtures.
type Printer struct {
	sb     strings.Builder
	indent int
}

// Format renders the body of g at one indent level.
func Format(g *Graph) string {
	return FormatBody(g, 1)
}

// FormatBody renders the instructions and return of g starting at the
// given indent level.
func FormatBody(g *Graph, indent int) string {
	p := &Printer{indent: indent}
	p.writeBlockBody(g.Block(), true)
	return p.sb.String()
}

func (p *Printer) writeBlockBody(b *Block, top bool) {
	for n := b.First(); n != nil; n = n.Next() {
		if ifn, ok := n.(*IfNode); ok {
			p.writeIf(ifn)
			continue
		}
		p.writeLine(renderNode(n))
	}
	results := b.Results()
	if !top && len(results) == 0 {
		return
	}
	keyword := "yield"
	if top {
		keyword = "return"
	}
	if len(results) > 0 {
		keyword += " " + joinValueNames(results)
	}
	p.writeLine(keyword)
}

func (p *Printer) writeIf(n *IfNode) {
	header := ""
	if n.NumOutputs() > 0 {
		header = joinValueNames(n.Outputs()) + " = "
	}
	header += "if %" + n.Input(0).DebugName() + " {"
	p.writeLine(header)
	p.indent++
	p.writeBlockBody(n.Then(), false)
	p.indent--
	if !n.Else().Empty() || len(n.Else().Results()) > 0 {
		p.writeLine("} else {")
		p.indent++
		p.writeBlockBody(n.Else(), false)
		p.indent--
	}
	p.writeLine("}")
}

func (p *Printer) writeLine(s string) {
	p.sb.WriteString(strings.Repeat("    ", p.indent))
	p.sb.WriteString(s)
	p.sb.WriteString("\n")
}

func joinValueNames(vals []*Value) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = "%" + v.DebugName()
	}
	return strings.Join(parts, ", ")
}
