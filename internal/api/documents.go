package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/rendis/atelier/internal/logging"
	"github.com/rendis/atelier/internal/store"
)

// handleRegisterPrincipal creates a principal and returns its bearer
// token. The token is only ever returned here.
func (s *Server) handleRegisterPrincipal(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	p, err := s.deps.Resolver.Register(r.Context(), body.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"id":    p.ID,
		"email": p.Email,
		"token": p.Token,
	})
}

// handleCreateDocument saves a new document for the caller, consuming one
// quota unit.
func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Resolver.FromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		SetID    string          `json:"setId"`
		Category store.Category  `json:"category"`
		Title    string          `json:"title"`
		Content  string          `json:"content"`
		Metadata json.RawMessage `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	doc := &store.Document{
		ID:       uuid.New().String(),
		OwnerID:  p.ID,
		SetID:    body.SetID,
		Category: body.Category,
		Title:    body.Title,
		Content:  body.Content,
		Metadata: body.Metadata,
	}

	ctx := logging.WithOwnerID(r.Context(), p.ID)
	if err := s.deps.Store.CreateDocument(ctx, doc); err != nil {
		writeError(w, err)
		return
	}

	s.deps.Logger.InfoContext(logging.WithDocumentID(ctx, doc.ID), "document created",
		"category", doc.Category, "title", doc.Title)
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Resolver.FromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	doc, err := s.deps.Store.GetDocument(r.Context(), p.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Resolver.FromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		SetID    string          `json:"setId"`
		Category store.Category  `json:"category"`
		Title    string          `json:"title"`
		Content  string          `json:"content"`
		Metadata json.RawMessage `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	doc := &store.Document{
		ID:       r.PathValue("id"),
		OwnerID:  p.ID,
		SetID:    body.SetID,
		Category: body.Category,
		Title:    body.Title,
		Content:  body.Content,
		Metadata: body.Metadata,
	}

	ctx := logging.WithOwnerID(r.Context(), p.ID)
	if err := s.deps.Store.UpdateDocument(ctx, doc); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Resolver.FromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	filter := store.DocumentFilter{
		Category: store.Category(r.URL.Query().Get("category")),
		SetID:    r.URL.Query().Get("setId"),
		Limit:    queryInt(r, "limit", 50),
		Offset:   queryInt(r, "offset", 0),
	}

	docs, err := s.deps.Store.ListDocuments(r.Context(), p.ID, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if docs == nil {
		docs = []*store.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Resolver.FromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.deps.Store.DeleteDocument(r.Context(), p.ID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCreateDocumentSet creates a named group of documents.
func (s *Server) handleCreateDocumentSet(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Resolver.FromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Category    store.Category `json:"category"`
		Name        string         `json:"name"`
		Description string         `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	set := &store.DocumentSet{
		ID:          uuid.New().String(),
		OwnerID:     p.ID,
		Category:    body.Category,
		Name:        body.Name,
		Description: body.Description,
	}
	if err := s.deps.Store.CreateDocumentSet(r.Context(), set); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleGetDocumentSet(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Resolver.FromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	set, err := s.deps.Store.GetDocumentSet(r.Context(), p.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleListDocumentSets(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Resolver.FromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	sets, err := s.deps.Store.ListDocumentSets(r.Context(), p.ID,
		store.Category(r.URL.Query().Get("category")))
	if err != nil {
		writeError(w, err)
		return
	}
	if sets == nil {
		sets = []*store.DocumentSet{}
	}
	writeJSON(w, http.StatusOK, sets)
}

func (s *Server) handleDeleteDocumentSet(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Resolver.FromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.deps.Store.DeleteDocumentSet(r.Context(), p.ID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetUsage reports the caller's consumed and remaining save quota.
func (s *Server) handleGetUsage(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Resolver.FromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	u, err := s.deps.Store.GetUsage(r.Context(), p.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"used":      u.Used,
		"quota":     u.Quota,
		"remaining": u.Remaining(),
	})
}
