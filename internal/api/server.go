package api

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/rendis/atelier/internal/identity"
	"github.com/rendis/atelier/internal/store"
	"github.com/rendis/atelier/internal/streaming"
	"github.com/rendis/atelier/internal/validation"
	"github.com/rendis/atelier/internal/workspace"
)

// Deps holds the dependencies for the API server.
type Deps struct {
	Store     store.Store
	Workspace *workspace.Store
	Validator validation.Validator
	Resolver  *identity.Resolver
	Hub       streaming.EventHub
	Logger    *slog.Logger
}

// Server exposes the editor over HTTP: workspace graph operations,
// document persistence, validation, diagram export, and an SSE feed of
// graph events.
type Server struct {
	deps Deps
}

// NewServer creates an API server.
func NewServer(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return &Server{deps: deps}
}

// Handler returns the HTTP handler for all API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Principals. Registration is the only unauthenticated route.
	mux.HandleFunc("POST /api/principals", s.handleRegisterPrincipal)

	// Documents.
	mux.HandleFunc("POST /api/documents", s.handleCreateDocument)
	mux.HandleFunc("GET /api/documents", s.handleListDocuments)
	mux.HandleFunc("GET /api/documents/{id}", s.handleGetDocument)
	mux.HandleFunc("PUT /api/documents/{id}", s.handleUpdateDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", s.handleDeleteDocument)

	// Document sets.
	mux.HandleFunc("POST /api/document-sets", s.handleCreateDocumentSet)
	mux.HandleFunc("GET /api/document-sets", s.handleListDocumentSets)
	mux.HandleFunc("GET /api/document-sets/{id}", s.handleGetDocumentSet)
	mux.HandleFunc("DELETE /api/document-sets/{id}", s.handleDeleteDocumentSet)

	// Persisted graphs, one per (principal, tab). PUT validates before
	// saving; a malformed document never reaches storage.
	mux.HandleFunc("GET /api/graphs/{tab}", s.handleGetGraph)
	mux.HandleFunc("PUT /api/graphs/{tab}", s.handlePutGraph)
	mux.HandleFunc("GET /api/graphs/{tab}/export", s.handleExportGraph)

	// Usage.
	mux.HandleFunc("GET /api/usage", s.handleGetUsage)

	// Workspace (the live editing session).
	mux.HandleFunc("GET /api/workspace", s.handleGetWorkspace)
	mux.HandleFunc("PUT /api/workspace/tab", s.handleSetActiveTab)
	mux.HandleFunc("PUT /api/workspace/graph", s.handleSetWorkspaceGraph)
	mux.HandleFunc("POST /api/workspace/presets/{name}", s.handleLoadPreset)
	mux.HandleFunc("POST /api/workspace/nodes", s.handleAddNode)
	mux.HandleFunc("PUT /api/workspace/nodes/{id}", s.handleUpdateNodeData)
	mux.HandleFunc("DELETE /api/workspace/nodes/{id}", s.handleDeleteNode)
	mux.HandleFunc("POST /api/workspace/nodes/{id}/inputs", s.handleAddInput)
	mux.HandleFunc("PUT /api/workspace/nodes/{id}/inputs/{name}", s.handleUpdateInput)
	mux.HandleFunc("DELETE /api/workspace/nodes/{id}/inputs/{name}", s.handleRemoveInput)
	mux.HandleFunc("POST /api/workspace/nodes/{id}/outputs/{arm}", s.handleAddOutput)
	mux.HandleFunc("PUT /api/workspace/nodes/{id}/outputs/{arm}/{name}", s.handleUpdateOutput)
	mux.HandleFunc("DELETE /api/workspace/nodes/{id}/outputs/{arm}/{name}", s.handleRemoveOutput)
	mux.HandleFunc("POST /api/workspace/nodes/{id}/steps", s.handleAddStep)
	mux.HandleFunc("PUT /api/workspace/nodes/{id}/steps/{stepId}", s.handleUpdateStep)
	mux.HandleFunc("DELETE /api/workspace/nodes/{id}/steps/{stepId}", s.handleRemoveStep)
	mux.HandleFunc("POST /api/workspace/edges", s.handleConnect)
	mux.HandleFunc("POST /api/workspace/changes/nodes", s.handleNodeChanges)
	mux.HandleFunc("POST /api/workspace/changes/edges", s.handleEdgeChanges)

	// Validation of an arbitrary graph document.
	mux.HandleFunc("POST /api/validate", s.handleValidate)

	// SSE stream of graph events.
	mux.HandleFunc("GET /sse/graphs/{tab}", s.handleSSEGraph)

	return mux
}
