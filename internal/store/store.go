package store

import "context"

// DefaultQuota is the save-quota granted to a principal with no explicit
// quota row.
const DefaultQuota int64 = 1000

// Store defines the persistence layer contract.
// All implementations must be safe for concurrent use.
//
// CreateDocument and UpdateDocument each consume one quota unit for the
// owning principal; when the quota is exhausted they fail with
// ErrCodeQuotaExceeded, which callers must surface distinctly from
// validation failures.
type Store interface {
	// Documents
	CreateDocument(ctx context.Context, doc *Document) error
	GetDocument(ctx context.Context, ownerID, id string) (*Document, error)
	UpdateDocument(ctx context.Context, doc *Document) error
	ListDocuments(ctx context.Context, ownerID string, filter DocumentFilter) ([]*Document, error)
	DeleteDocument(ctx context.Context, ownerID, id string) error

	// Document sets
	CreateDocumentSet(ctx context.Context, set *DocumentSet) error
	GetDocumentSet(ctx context.Context, ownerID, id string) (*DocumentSet, error)
	ListDocumentSets(ctx context.Context, ownerID string, category Category) ([]*DocumentSet, error)
	DeleteDocumentSet(ctx context.Context, ownerID, id string) error

	// Graph snapshots, one per (owner, tab)
	SaveGraph(ctx context.Context, snap *GraphSnapshot) error
	GetGraph(ctx context.Context, ownerID, tab string) (*GraphSnapshot, error)

	// Usage
	GetUsage(ctx context.Context, ownerID string) (*Usage, error)
	SetQuota(ctx context.Context, ownerID string, quota int64) error

	// Principals
	CreatePrincipal(ctx context.Context, p *Principal) error
	GetPrincipalByToken(ctx context.Context, token string) (*Principal, error)

	// Maintenance
	Migrate(ctx context.Context) error

	// Lifecycle
	Close() error
}
