package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rendis/atelier/internal/diagram"
	"github.com/rendis/atelier/internal/logging"
	"github.com/rendis/atelier/internal/store"
	"github.com/rendis/atelier/internal/workspace"
	"github.com/rendis/atelier/pkg/schema"
)

// handleGetGraph returns the persisted graph snapshot for the caller's
// (principal, tab) slot.
func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Resolver.FromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	tab := r.PathValue("tab")
	if !workspace.ValidTab(workspace.Tab(tab)) {
		writeError(w, schema.NewErrorf(schema.ErrCodeNotFound, "unknown tab %q", tab))
		return
	}

	snap, err := s.deps.Store.GetGraph(r.Context(), p.ID, tab)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(snap.Graph)
}

// handlePutGraph validates and persists a graph document for the caller's
// (principal, tab) slot. A document that fails structural validation is
// rejected before anything is written; soft-reference warnings are
// returned alongside the save.
func (s *Server) handlePutGraph(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Resolver.FromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	tab := r.PathValue("tab")
	if !workspace.ValidTab(workspace.Tab(tab)) {
		writeError(w, schema.NewErrorf(schema.ErrCodeNotFound, "unknown tab %q", tab))
		return
	}

	doc, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, "read body: "+err.Error())
		return
	}

	result := s.deps.Validator.ValidateDocument(doc)
	if !result.Valid() {
		writeError(w, result.ToError())
		return
	}

	ctx := logging.WithTab(logging.WithOwnerID(r.Context(), p.ID), tab)
	if err := s.deps.Store.SaveGraph(ctx, &store.GraphSnapshot{
		OwnerID: p.ID,
		Tab:     tab,
		Graph:   doc,
	}); err != nil {
		writeError(w, err)
		return
	}

	s.deps.Logger.InfoContext(ctx, "graph saved", "warnings", len(result.Warnings))
	writeJSON(w, http.StatusOK, map[string]any{
		"saved":    true,
		"tab":      tab,
		"warnings": result.Warnings,
	})
}

// handleExportGraph renders the persisted graph for a tab as mermaid, dot,
// or png. Falls back to the live workspace graph when nothing has been
// persisted yet.
func (s *Server) handleExportGraph(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Resolver.FromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	tab := r.PathValue("tab")
	if !workspace.ValidTab(workspace.Tab(tab)) {
		writeError(w, schema.NewErrorf(schema.ErrCodeNotFound, "unknown tab %q", tab))
		return
	}

	g, err := s.graphForExport(r, p.ID, tab)
	if err != nil {
		writeError(w, err)
		return
	}

	title := tab + " architecture"
	switch format := r.URL.Query().Get("format"); format {
	case "", "mermaid":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, diagram.RenderMermaid(g, title))
	case "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		io.WriteString(w, diagram.RenderDOT(g, title))
	case "png":
		png, err := diagram.RenderImage(r.Context(), g, title)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	default:
		writeBadRequest(w, "format must be one of mermaid, dot, png")
	}
}

func (s *Server) graphForExport(r *http.Request, ownerID, tab string) (*schema.Graph, error) {
	snap, err := s.deps.Store.GetGraph(r.Context(), ownerID, tab)
	if err == nil {
		var g schema.Graph
		if uerr := json.Unmarshal(snap.Graph, &g); uerr != nil {
			return nil, schema.NewErrorf(schema.ErrCodeValidation,
				"stored graph is malformed: %s", uerr.Error()).WithCause(uerr)
		}
		return &g, nil
	}
	return s.deps.Workspace.GraphFor(workspace.Tab(tab)), nil
}

// handleValidate runs the full validation pipeline on an arbitrary graph
// document and returns errors and warnings without persisting anything.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	doc, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, "read body: "+err.Error())
		return
	}

	result := s.deps.Validator.ValidateDocument(doc)
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":    result.Valid(),
		"errors":   result.Errors,
		"warnings": result.Warnings,
	})
}
