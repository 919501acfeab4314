package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rendis/atelier/internal/workspace"
	"github.com/rendis/atelier/pkg/schema"
)

// handleGetWorkspace returns the active tab and its graph.
func (s *Server) handleGetWorkspace(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"activeTab": s.deps.Workspace.ActiveTab(),
		"graph":     s.deps.Workspace.Graph(),
	})
}

// handleSetActiveTab switches the workspace to another tab. Unknown tabs
// are a no-op in the store; the handler reports them so the client can
// correct itself.
func (s *Server) handleSetActiveTab(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Tab workspace.Tab `json:"tab"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	if !workspace.ValidTab(body.Tab) {
		writeBadRequest(w, fmt.Sprintf("unknown tab %q", body.Tab))
		return
	}

	s.deps.Workspace.SetActiveTab(body.Tab)
	writeJSON(w, http.StatusOK, map[string]any{"activeTab": body.Tab})
}

// handleSetWorkspaceGraph wholesale-replaces the active tab's graph. The
// document is validated first so a malformed payload never reaches the
// store.
func (s *Server) handleSetWorkspaceGraph(w http.ResponseWriter, r *http.Request) {
	var g schema.Graph
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid graph: %v", err))
		return
	}

	result := s.deps.Validator.ValidateGraph(&g)
	if !result.Valid() {
		writeError(w, result.ToError())
		return
	}

	s.deps.Workspace.SetGraph(&g)
	writeJSON(w, http.StatusOK, map[string]any{
		"warnings": result.Warnings,
	})
}

// handleLoadPreset loads a named built-in preset into the active tab.
func (s *Server) handleLoadPreset(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	known := false
	for _, n := range workspace.PresetNames() {
		if n == name {
			known = true
			break
		}
	}
	if !known {
		writeError(w, schema.NewErrorf(schema.ErrCodeNotFound, "unknown preset %q", name))
		return
	}

	s.deps.Workspace.LoadPreset(name)
	writeJSON(w, http.StatusOK, map[string]any{"graph": s.deps.Workspace.Graph()})
}

// handleAddNode places a new node from a template.
func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Template string           `json:"template"`
		Position *schema.Position `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	id := s.deps.Workspace.AddNode(body.Template, body.Position)
	if id == "" {
		writeError(w, schema.NewErrorf(schema.ErrCodeNotFound, "unknown template %q", body.Template))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// handleUpdateNodeData replaces a node's data wholesale. The body must be
// a complete variant document with a kind discriminator; a kind that does
// not match the stored node leaves it unchanged.
func (s *Server) handleUpdateNodeData(w http.ResponseWriter, r *http.Request) {
	var probe struct {
		Kind schema.NodeKind `json:"kind"`
	}
	raw := json.RawMessage{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	if err := json.Unmarshal(raw, &probe); err != nil || probe.Kind == "" {
		writeBadRequest(w, "node data missing kind discriminator")
		return
	}

	data, err := schema.DecodeNodeData(probe.Kind, raw)
	if err != nil {
		writeError(w, err)
		return
	}

	s.deps.Workspace.UpdateNodeData(r.PathValue("id"), data)
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteNode removes a node and every edge touching it.
func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	s.deps.Workspace.DeleteNode(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// --- process field and step routes ---
//
// These mirror the store's process-only operations: on a non-process node
// they are silent no-ops, so the handlers always return 204.

func (s *Server) handleAddInput(w http.ResponseWriter, r *http.Request) {
	var f schema.Field
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid field: %v", err))
		return
	}
	s.deps.Workspace.AddInput(r.PathValue("id"), f)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateInput(w http.ResponseWriter, r *http.Request) {
	var f schema.Field
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid field: %v", err))
		return
	}
	s.deps.Workspace.UpdateInput(r.PathValue("id"), r.PathValue("name"), f)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveInput(w http.ResponseWriter, r *http.Request) {
	s.deps.Workspace.RemoveInput(r.PathValue("id"), r.PathValue("name"))
	w.WriteHeader(http.StatusNoContent)
}

func parseOutputArm(r *http.Request) (workspace.OutputArm, bool) {
	arm := workspace.OutputArm(r.PathValue("arm"))
	return arm, arm == workspace.OutputSuccess || arm == workspace.OutputError
}

func (s *Server) handleAddOutput(w http.ResponseWriter, r *http.Request) {
	arm, ok := parseOutputArm(r)
	if !ok {
		writeBadRequest(w, "output arm must be success or error")
		return
	}
	var f schema.Field
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid field: %v", err))
		return
	}
	s.deps.Workspace.AddOutput(r.PathValue("id"), arm, f)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateOutput(w http.ResponseWriter, r *http.Request) {
	arm, ok := parseOutputArm(r)
	if !ok {
		writeBadRequest(w, "output arm must be success or error")
		return
	}
	var f schema.Field
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid field: %v", err))
		return
	}
	s.deps.Workspace.UpdateOutput(r.PathValue("id"), arm, r.PathValue("name"), f)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveOutput(w http.ResponseWriter, r *http.Request) {
	arm, ok := parseOutputArm(r)
	if !ok {
		writeBadRequest(w, "output arm must be success or error")
		return
	}
	s.deps.Workspace.RemoveOutput(r.PathValue("id"), arm, r.PathValue("name"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddStep(w http.ResponseWriter, r *http.Request) {
	var step schema.Step
	if err := json.NewDecoder(r.Body).Decode(&step); err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid step: %v", err))
		return
	}
	s.deps.Workspace.AddStep(r.PathValue("id"), step)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateStep(w http.ResponseWriter, r *http.Request) {
	var step schema.Step
	if err := json.NewDecoder(r.Body).Decode(&step); err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid step: %v", err))
		return
	}
	step.ID = r.PathValue("stepId")
	s.deps.Workspace.UpdateStep(r.PathValue("id"), step)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveStep(w http.ResponseWriter, r *http.Request) {
	s.deps.Workspace.RemoveStep(r.PathValue("id"), r.PathValue("stepId"))
	w.WriteHeader(http.StatusNoContent)
}

// handleConnect appends an edge from a proposed connection.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var conn workspace.Connection
	if err := json.NewDecoder(r.Body).Decode(&conn); err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid connection: %v", err))
		return
	}

	id := s.deps.Workspace.Connect(conn)
	if id == "" {
		writeBadRequest(w, "connection requires source and target")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// handleNodeChanges applies a canvas node change batch.
func (s *Server) handleNodeChanges(w http.ResponseWriter, r *http.Request) {
	var changes []workspace.NodeChange
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid changes: %v", err))
		return
	}
	s.deps.Workspace.ApplyNodeChanges(changes)
	w.WriteHeader(http.StatusNoContent)
}

// handleEdgeChanges applies a canvas edge change batch.
func (s *Server) handleEdgeChanges(w http.ResponseWriter, r *http.Request) {
	var changes []workspace.EdgeChange
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid changes: %v", err))
		return
	}
	s.deps.Workspace.ApplyEdgeChanges(changes)
	w.WriteHeader(http.StatusNoContent)
}
