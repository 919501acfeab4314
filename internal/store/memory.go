package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rendis/atelier/pkg/schema"
)

// MemoryStore is an in-memory Store for tests and ephemeral runs.
type MemoryStore struct {
	mu         sync.RWMutex
	documents  map[string]*Document    // id -> doc
	sets       map[string]*DocumentSet // id -> set
	graphs     map[string]*GraphSnapshot
	usage      map[string]*Usage
	principals map[string]*Principal // token -> principal
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		documents:  make(map[string]*Document),
		sets:       make(map[string]*DocumentSet),
		graphs:     make(map[string]*GraphSnapshot),
		usage:      make(map[string]*Usage),
		principals: make(map[string]*Principal),
	}
}

func graphKey(ownerID, tab string) string { return ownerID + "\x00" + tab }

// --- Documents ---

func (s *MemoryStore) CreateDocument(ctx context.Context, doc *Document) error {
	if err := validateDocument(doc); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.documents[doc.ID]; exists {
		return schema.NewErrorf(schema.ErrCodeConflict, "document %q already exists", doc.ID)
	}
	if err := s.consumeQuotaLocked(doc.OwnerID); err != nil {
		return err
	}

	stored := *doc
	stored.CreatedAt = timeOrNow(doc.CreatedAt)
	stored.UpdatedAt = timeOrNow(doc.UpdatedAt)
	s.documents[doc.ID] = &stored
	return nil
}

func (s *MemoryStore) GetDocument(ctx context.Context, ownerID, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[id]
	if !ok || doc.OwnerID != ownerID {
		return nil, storeNotFound("document", id)
	}
	out := *doc
	return &out, nil
}

func (s *MemoryStore) UpdateDocument(ctx context.Context, doc *Document) error {
	if err := validateDocument(doc); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.documents[doc.ID]
	if !ok || existing.OwnerID != doc.OwnerID {
		return storeNotFound("document", doc.ID)
	}
	if err := s.consumeQuotaLocked(doc.OwnerID); err != nil {
		return err
	}

	stored := *doc
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now().UTC()
	s.documents[doc.ID] = &stored
	return nil
}

func (s *MemoryStore) ListDocuments(ctx context.Context, ownerID string, filter DocumentFilter) ([]*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []*Document
	for _, doc := range s.documents {
		if doc.OwnerID != ownerID {
			continue
		}
		if filter.Category != "" && doc.Category != filter.Category {
			continue
		}
		if filter.SetID != "" && doc.SetID != filter.SetID {
			continue
		}
		out := *doc
		docs = append(docs, &out)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UpdatedAt.After(docs[j].UpdatedAt)
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(docs) {
			return nil, nil
		}
		docs = docs[filter.Offset:]
	}
	if filter.Limit > 0 && len(docs) > filter.Limit {
		docs = docs[:filter.Limit]
	}
	return docs, nil
}

func (s *MemoryStore) DeleteDocument(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[id]
	if !ok || doc.OwnerID != ownerID {
		return storeNotFound("document", id)
	}
	delete(s.documents, id)
	return nil
}

// --- Document sets ---

func (s *MemoryStore) CreateDocumentSet(ctx context.Context, set *DocumentSet) error {
	if set.Name == "" {
		return schema.NewError(schema.ErrCodeValidation, "document set name is required")
	}
	if !ValidCategory(set.Category) {
		return schema.NewErrorf(schema.ErrCodeValidation, "invalid category %q", set.Category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sets[set.ID]; exists {
		return schema.NewErrorf(schema.ErrCodeConflict, "document set %q already exists", set.ID)
	}
	stored := *set
	stored.CreatedAt = timeOrNow(set.CreatedAt)
	stored.UpdatedAt = timeOrNow(set.UpdatedAt)
	s.sets[set.ID] = &stored
	return nil
}

func (s *MemoryStore) GetDocumentSet(ctx context.Context, ownerID, id string) (*DocumentSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.sets[id]
	if !ok || set.OwnerID != ownerID {
		return nil, storeNotFound("document_set", id)
	}
	out := *set
	return &out, nil
}

func (s *MemoryStore) ListDocumentSets(ctx context.Context, ownerID string, category Category) ([]*DocumentSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sets []*DocumentSet
	for _, set := range s.sets {
		if set.OwnerID != ownerID {
			continue
		}
		if category != "" && set.Category != category {
			continue
		}
		out := *set
		sets = append(sets, &out)
	}
	sort.Slice(sets, func(i, j int) bool {
		return strings.Compare(sets[i].Name, sets[j].Name) < 0
	})
	return sets, nil
}

func (s *MemoryStore) DeleteDocumentSet(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.sets[id]
	if !ok || set.OwnerID != ownerID {
		return storeNotFound("document_set", id)
	}
	delete(s.sets, id)
	for _, doc := range s.documents {
		if doc.SetID == id {
			doc.SetID = ""
		}
	}
	return nil
}

// --- Graph snapshots ---

func (s *MemoryStore) SaveGraph(ctx context.Context, snap *GraphSnapshot) error {
	if len(snap.Graph) == 0 {
		return schema.NewError(schema.ErrCodeValidation, "graph snapshot is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *snap
	stored.Graph = append([]byte(nil), snap.Graph...)
	stored.UpdatedAt = time.Now().UTC()
	s.graphs[graphKey(snap.OwnerID, snap.Tab)] = &stored
	return nil
}

func (s *MemoryStore) GetGraph(ctx context.Context, ownerID, tab string) (*GraphSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.graphs[graphKey(ownerID, tab)]
	if !ok {
		return nil, storeNotFound("graph", tab)
	}
	out := *snap
	out.Graph = append([]byte(nil), snap.Graph...)
	return &out, nil
}

// --- Usage ---

func (s *MemoryStore) GetUsage(ctx context.Context, ownerID string) (*Usage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u, ok := s.usage[ownerID]; ok {
		out := *u
		return &out, nil
	}
	return &Usage{OwnerID: ownerID, Quota: DefaultQuota}, nil
}

func (s *MemoryStore) SetQuota(ctx context.Context, ownerID string, quota int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.usage[ownerID]; ok {
		u.Quota = quota
		return nil
	}
	s.usage[ownerID] = &Usage{OwnerID: ownerID, Quota: quota}
	return nil
}

func (s *MemoryStore) consumeQuotaLocked(ownerID string) error {
	u, ok := s.usage[ownerID]
	if !ok {
		u = &Usage{OwnerID: ownerID, Quota: DefaultQuota}
		s.usage[ownerID] = u
	}
	if u.Used >= u.Quota {
		return schema.NewErrorf(schema.ErrCodeQuotaExceeded,
			"save quota exhausted for owner %q", ownerID)
	}
	u.Used++
	return nil
}

// --- Principals ---

func (s *MemoryStore) CreatePrincipal(ctx context.Context, p *Principal) error {
	if p.Email == "" {
		return schema.NewError(schema.ErrCodeValidation, "principal email is required")
	}
	if p.Token == "" {
		return schema.NewError(schema.ErrCodeValidation, "principal token is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.principals[p.Token]; exists {
		return schema.NewErrorf(schema.ErrCodeConflict, "token already registered")
	}
	stored := *p
	stored.CreatedAt = timeOrNow(p.CreatedAt)
	s.principals[p.Token] = &stored
	return nil
}

func (s *MemoryStore) GetPrincipalByToken(ctx context.Context, token string) (*Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.principals[token]
	if !ok {
		return nil, schema.NewError(schema.ErrCodeUnauthorized, "unknown token")
	}
	out := *p
	return &out, nil
}

// Migrate is a no-op for the memory store.
func (s *MemoryStore) Migrate(ctx context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
