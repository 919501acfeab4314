package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/atelier/internal/api"
	"github.com/rendis/atelier/internal/expressions"
	"github.com/rendis/atelier/internal/identity"
	"github.com/rendis/atelier/internal/store"
	"github.com/rendis/atelier/internal/streaming"
	"github.com/rendis/atelier/internal/validation"
	"github.com/rendis/atelier/internal/workspace"
	"github.com/rendis/atelier/pkg/schema"
)

// --- Test harness ---

type harness struct {
	t      *testing.T
	server *httptest.Server
	store  *store.LibSQLStore
	ws     *workspace.Store
	hub    *streaming.MemoryHub
	token  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "e2e.db")
	s, err := store.NewLibSQLStore("file:" + dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })

	registry, err := expressions.NewRegistry()
	require.NoError(t, err)
	validator, err := validation.NewGraphValidator()
	require.NoError(t, err)
	validator.WithExpressionChecker(registry)

	hub := streaming.NewMemoryHub()
	ws := workspace.NewStore(workspace.TabAPI, hub)
	resolver := identity.NewResolver(s)

	p, err := resolver.Register(context.Background(), "e2e@example.com")
	require.NoError(t, err)

	srv := api.NewServer(api.Deps{
		Store:     s,
		Workspace: ws,
		Validator: validator,
		Resolver:  resolver,
		Hub:       hub,
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &harness{t: t, server: ts, store: s, ws: ws, hub: hub, token: p.Token}
}

func (h *harness) request(method, path string, body any) *http.Response {
	h.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, h.server.URL+path, &buf)
	require.NoError(h.t, err)
	req.Header.Set("Authorization", "Bearer "+h.token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(h.t, err)
	h.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// --- Scenarios ---

// TestEditingSession walks a full editing session: build a graph through
// the workspace routes, validate it, persist it, read it back, export it.
func TestEditingSession(t *testing.T) {
	h := newHarness(t)

	// Start from the hello-world preset.
	resp := h.request("POST", "/api/workspace/presets/hello_world_api", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Add a database node and wire the process to it.
	resp = h.request("POST", "/api/workspace/nodes", map[string]any{"template": "database"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var added map[string]string
	decode(t, resp, &added)

	resp = h.request("POST", "/api/workspace/edges", map[string]any{
		"source": "hello-process",
		"target": added["id"],
		"type":   "step",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Grow the process contract.
	resp = h.request("POST", "/api/workspace/nodes/hello-process/inputs",
		map[string]any{"name": "locale", "type": "string"})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// The live graph should validate cleanly end to end.
	g := h.ws.Graph()
	require.Len(t, g.Nodes, 3)
	resp = h.request("POST", "/api/validate", g)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var verdict struct {
		Valid bool `json:"valid"`
	}
	decode(t, resp, &verdict)
	assert.True(t, verdict.Valid)

	// Persist it under the api tab, read it back, export it.
	resp = h.request("PUT", "/api/graphs/api", g)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = h.request("GET", "/api/graphs/api", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var loaded schema.Graph
	decode(t, resp, &loaded)
	assert.Len(t, loaded.Nodes, 3)
	assert.Len(t, loaded.Edges, 2)

	resp = h.request("GET", "/api/graphs/api/export?format=dot", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

// TestDocumentLifecycleWithQuota exercises document CRUD against the real
// libSQL store and verifies quota exhaustion surfaces as 429.
func TestDocumentLifecycleWithQuota(t *testing.T) {
	h := newHarness(t)

	p, err := h.store.GetPrincipalByToken(context.Background(), h.token)
	require.NoError(t, err)
	require.NoError(t, h.store.SetQuota(context.Background(), p.ID, 3))

	var ids []string
	for i := 0; i < 3; i++ {
		resp := h.request("POST", "/api/documents", map[string]any{
			"category": "process",
			"title":    fmt.Sprintf("doc %d", i),
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var doc store.Document
		decode(t, resp, &doc)
		ids = append(ids, doc.ID)
	}

	// Quota is spent; the next save must be refused without side effects.
	resp := h.request("POST", "/api/documents", map[string]any{
		"category": "process",
		"title":    "over quota",
	})
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	resp = h.request("GET", "/api/documents?category=process", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var docs []store.Document
	decode(t, resp, &docs)
	assert.Len(t, docs, 3)

	// Deleting does not refund quota.
	resp = h.request("DELETE", "/api/documents/"+ids[0], nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = h.request("GET", "/api/usage", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var usage map[string]any
	decode(t, resp, &usage)
	assert.Equal(t, float64(3), usage["used"])
	assert.Equal(t, float64(0), usage["remaining"])
}

// TestTabIsolation verifies per-tab snapshots never bleed into each other.
func TestTabIsolation(t *testing.T) {
	h := newHarness(t)

	apiGraph := map[string]any{
		"nodes": []map[string]any{{
			"id":       "q-api",
			"type":     "queue",
			"position": map[string]float64{"x": 0, "y": 0},
			"data": map[string]any{
				"kind":       "queue",
				"delivery":   "at_least_once",
				"retry":      map[string]any{"maxAttempts": 3, "backoff": "linear"},
				"deadLetter": false,
			},
		}},
		"edges": []map[string]any{},
	}

	resp := h.request("PUT", "/api/graphs/api", apiGraph)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = h.request("GET", "/api/graphs/process", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = h.request("GET", "/api/graphs/api", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var g schema.Graph
	decode(t, resp, &g)
	require.Len(t, g.Nodes, 1)
	assert.Equal(t, "q-api", g.Nodes[0].ID)
}

// TestInvalidGraphNeverPersisted checks that structural validation gates
// the save path.
func TestInvalidGraphNeverPersisted(t *testing.T) {
	h := newHarness(t)

	bad := map[string]any{
		"nodes": []map[string]any{{
			"id":       "n1",
			"type":     "queue",
			"position": map[string]float64{"x": 0, "y": 0},
			"data":     map[string]any{"kind": "queue", "delivery": "whenever"},
		}},
		"edges": []map[string]any{},
	}

	resp := h.request("PUT", "/api/graphs/api", bad)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = h.request("GET", "/api/graphs/api", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// TestWorkspaceEventsReachSubscribers confirms HTTP edits fan out through
// the hub, which is what the SSE feed consumes.
func TestWorkspaceEventsReachSubscribers(t *testing.T) {
	h := newHarness(t)

	ch, cancel, err := h.hub.Subscribe(context.Background(), streaming.EventFilter{
		Tab:        string(workspace.TabAPI),
		EventTypes: []string{streaming.EventNodeAdded},
	})
	require.NoError(t, err)
	defer cancel()

	resp := h.request("POST", "/api/workspace/nodes", map[string]any{"template": "infra_s3"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var added map[string]string
	decode(t, resp, &added)

	select {
	case event := <-ch:
		assert.Equal(t, streaming.EventNodeAdded, event.EventType)
		assert.Equal(t, added["id"], event.NodeID)
	default:
		t.Fatal("no node_added event published")
	}
}
