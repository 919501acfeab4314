package diagram

import (
	"fmt"
	"strings"

	"github.com/rendis/atelier/pkg/schema"
)

// RenderMermaid renders a graph as a Mermaid flowchart string. Node shape
// follows the node kind; step edges are drawn dashed to distinguish
// control-flow ordering from plain links.
func RenderMermaid(g *schema.Graph, title string) string {
	var b strings.Builder

	b.WriteString("graph TD\n")
	if title != "" {
		b.WriteString(fmt.Sprintf("    %%%% %s\n", title))
	}

	for i := range g.Nodes {
		b.WriteString(fmt.Sprintf("    %s\n", mermaidNodeDef(&g.Nodes[i])))
	}

	for _, e := range g.Edges {
		arrow := "-->"
		if e.Type == schema.EdgeTypeStep {
			arrow = "-.->"
		}
		b.WriteString(fmt.Sprintf("    %s %s %s\n",
			mermaidSafeID(e.Source), arrow, mermaidSafeID(e.Target)))
	}

	b.WriteString("\n")
	b.WriteString("    classDef process fill:#1a5276,stroke:#0e3a52,color:#fff\n")
	b.WriteString("    classDef database fill:#2d6a2d,stroke:#1a4a1a,color:#fff\n")
	b.WriteString("    classDef queue fill:#b7791a,stroke:#8a5c14,color:#fff\n")
	b.WriteString("    classDef infra fill:#6b6b6b,stroke:#4a4a4a,color:#fff\n")
	b.WriteString("    classDef api_binding fill:#5b2c6f,stroke:#3f1e4d,color:#fff\n")

	for i := range g.Nodes {
		n := &g.Nodes[i]
		b.WriteString(fmt.Sprintf("    class %s %s\n", mermaidSafeID(n.ID), n.Type))
	}

	return b.String()
}

// mermaidNodeDef returns a Mermaid node definition with the shape for the
// node's kind.
func mermaidNodeDef(n *schema.Node) string {
	id := mermaidSafeID(n.ID)
	label := firstLine(nodeLabel(n))

	switch n.Type {
	case schema.NodeKindDatabase:
		return fmt.Sprintf("%s[(%q)]", id, label)
	case schema.NodeKindQueue:
		return fmt.Sprintf("%s>%q]", id, label)
	case schema.NodeKindInfra:
		return fmt.Sprintf("%s[[%q]]", id, label)
	case schema.NodeKindAPIBinding:
		return fmt.Sprintf("%s([%q])", id, label)
	default: // process
		return fmt.Sprintf("%s[%q]", id, label)
	}
}

// mermaidSafeID converts a node ID to a Mermaid-safe identifier.
// Replaces dots and dashes with underscores.
func mermaidSafeID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", " ", "_")
	return r.Replace(id)
}

// nodeLabel extracts the variant's display label, falling back to the id.
func nodeLabel(n *schema.Node) string {
	var label string
	switch d := n.Data.(type) {
	case *schema.ProcessData:
		label = d.Label
	case *schema.DatabaseData:
		label = d.Label
	case *schema.QueueData:
		label = d.Label
	case *schema.InfraData:
		label = d.Label
	case *schema.APIBindingData:
		label = d.Label
		if label == "" && d.Route != "" {
			label = string(d.Method) + " " + d.Route
		}
	}
	if label == "" {
		label = n.ID
	}
	return label
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
