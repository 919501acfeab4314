// gen-diagrams generates sample diagram outputs for README documentation.
// Run: go run ./cmd/gen-diagrams
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rendis/atelier/internal/diagram"
	"github.com/rendis/atelier/internal/streaming"
	"github.com/rendis/atelier/internal/workspace"
)

func main() {
	// Hello-world preset plus a database node wired through a step edge,
	// so every edge style shows up in the sample output.
	ws := workspace.NewStore(workspace.TabAPI, streaming.NewMemoryHub())
	ws.LoadPreset("hello_world_api")
	dbID := ws.AddNode("database", nil)
	ws.Connect(workspace.Connection{
		Source: "hello-process",
		Target: dbID,
		Type:   "step",
	})

	g := ws.Graph()
	outDir := filepath.Join("docs", "assets")
	os.MkdirAll(outDir, 0o755)

	const title = "hello world api"

	mermaid := diagram.RenderMermaid(g, title)
	os.WriteFile(filepath.Join(outDir, "diagram-mermaid.md"), []byte("```mermaid\n"+mermaid+"\n```\n"), 0o644)
	fmt.Println("=== Mermaid ===")
	fmt.Println(mermaid)

	dot := diagram.RenderDOT(g, title)
	os.WriteFile(filepath.Join(outDir, "diagram.dot"), []byte(dot), 0o644)
	fmt.Println("=== DOT ===")
	fmt.Println(dot)

	png, err := diagram.RenderImage(context.Background(), g, title)
	if err != nil {
		fmt.Fprintf(os.Stderr, "image error: %v\n", err)
		os.Exit(1)
	}
	pngPath := filepath.Join(outDir, "diagram-sample.png")
	os.WriteFile(pngPath, png, 0o644)
	fmt.Printf("=== Image (PNG) ===\nWritten: %s (%d bytes)\n", pngPath, len(png))
}
