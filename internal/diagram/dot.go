package diagram

import (
	"fmt"
	"strings"

	"github.com/rendis/atelier/pkg/schema"
)

// RenderDOT renders a graph as Graphviz DOT source. Node shape follows the
// node kind; step edges are dashed.
func RenderDOT(g *schema.Graph, title string) string {
	var b strings.Builder

	b.WriteString("digraph architecture {\n")
	b.WriteString("    rankdir=TB;\n")
	if title != "" {
		b.WriteString(fmt.Sprintf("    label=%q;\n", title))
	}

	for i := range g.Nodes {
		n := &g.Nodes[i]
		b.WriteString(fmt.Sprintf("    %q [label=%q, shape=%s];\n",
			n.ID, firstLine(nodeLabel(n)), dotShape(n.Type)))
	}

	for _, e := range g.Edges {
		attrs := ""
		if e.Type == schema.EdgeTypeStep {
			attrs = " [style=dashed]"
		}
		b.WriteString(fmt.Sprintf("    %q -> %q%s;\n", e.Source, e.Target, attrs))
	}

	b.WriteString("}\n")
	return b.String()
}

// dotShape maps a node kind to a Graphviz shape.
func dotShape(kind schema.NodeKind) string {
	switch kind {
	case schema.NodeKindDatabase:
		return "cylinder"
	case schema.NodeKindQueue:
		return "cds"
	case schema.NodeKindInfra:
		return "component"
	case schema.NodeKindAPIBinding:
		return "oval"
	default: // process
		return "box"
	}
}
