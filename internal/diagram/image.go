package diagram

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/rendis/atelier/pkg/schema"
)

// RenderImage renders a graph as a PNG image using graphviz.
// Returns the PNG bytes.
func RenderImage(ctx context.Context, g *schema.Graph, title string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("diagram: create graphviz: %w", err)
	}
	defer gv.Close()

	gv.SetLayout(graphviz.DOT)

	graph, err := gv.Graph()
	if err != nil {
		return nil, fmt.Errorf("diagram: create graph: %w", err)
	}
	defer graph.Close()

	graph.SetRankDir(cgraph.TBRank)
	if title != "" {
		graph.SetLabel(title)
	}

	gvNodes := make(map[string]*cgraph.Node, len(g.Nodes))
	for i := range g.Nodes {
		n := &g.Nodes[i]
		gvNode, nErr := graph.CreateNodeByName(n.ID)
		if nErr != nil {
			return nil, fmt.Errorf("diagram: create node %s: %w", n.ID, nErr)
		}
		gvNode.SetLabel(firstLine(nodeLabel(n)))
		applyNodeStyle(gvNode, n.Type)
		gvNodes[n.ID] = gvNode
	}

	for _, edge := range g.Edges {
		fromGV, toGV := gvNodes[edge.Source], gvNodes[edge.Target]
		// Dangling endpoints are tolerated in the model; skip them here.
		if fromGV == nil || toGV == nil {
			continue
		}
		e, eErr := graph.CreateEdgeByName("", fromGV, toGV)
		if eErr == nil && edge.Type == schema.EdgeTypeStep {
			e.SetStyle(cgraph.DashedEdgeStyle)
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("diagram: render PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// applyNodeStyle sets graphviz shape and fill based on node kind.
func applyNodeStyle(gvNode *cgraph.Node, kind schema.NodeKind) {
	gvNode.SetStyle(cgraph.FilledNodeStyle)
	switch kind {
	case schema.NodeKindDatabase:
		gvNode.SetShape(cgraph.CylinderShape)
		gvNode.SetFillColor("#2d6a2d")
		gvNode.SetFontColor("white")
	case schema.NodeKindQueue:
		gvNode.SetShape(cgraph.CdsShape)
		gvNode.SetFillColor("#b7791a")
		gvNode.SetFontColor("white")
	case schema.NodeKindInfra:
		gvNode.SetShape(cgraph.ComponentShape)
		gvNode.SetFillColor("#6b6b6b")
		gvNode.SetFontColor("white")
	case schema.NodeKindAPIBinding:
		gvNode.SetShape(cgraph.EllipseShape)
		gvNode.SetFillColor("#5b2c6f")
		gvNode.SetFontColor("white")
	default:
		gvNode.SetShape(cgraph.BoxShape)
		gvNode.SetFillColor("#1a5276")
		gvNode.SetFontColor("white")
	}
}
