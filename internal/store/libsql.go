package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/rendis/atelier/pkg/schema"
)

// LibSQLStore implements the Store interface using libSQL (embedded SQLite fork).
type LibSQLStore struct {
	db *sql.DB
}

// NewLibSQLStore opens a libSQL database at the given path and returns a Store.
// The path should be a file URI, e.g. "file:/path/to/db.db".
func NewLibSQLStore(dbPath string) (*LibSQLStore, error) {
	db, err := sql.Open("libsql", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open libsql: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Apply connection-level PRAGMAs. Some PRAGMAs return rows so we use QueryRow.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA cache_size=-20000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}
	for _, p := range pragmas {
		var result string
		_ = db.QueryRow(p).Scan(&result)
	}

	return &LibSQLStore{db: db}, nil
}

// Close closes the database.
func (s *LibSQLStore) Close() error { return s.db.Close() }

// Migrate runs all pending database migrations.
func (s *LibSQLStore) Migrate(ctx context.Context) error {
	return runMigrations(ctx, s.db)
}

// --- Documents ---

// CreateDocument inserts a document and consumes one quota unit in the
// same transaction. A missing title fails validation; an exhausted quota
// fails with ErrCodeQuotaExceeded before anything is written.
func (s *LibSQLStore) CreateDocument(ctx context.Context, doc *Document) error {
	if err := validateDocument(doc); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := consumeQuota(ctx, tx, doc.OwnerID); err != nil {
		return err
	}

	metadata := nullRaw(doc.Metadata)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, owner_id, set_id, category, title, content, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.OwnerID, nullStr(doc.SetID), string(doc.Category),
		doc.Title, nullStr(doc.Content), metadata,
		timeOrNow(doc.CreatedAt), timeOrNow(doc.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return tx.Commit()
}

func (s *LibSQLStore) GetDocument(ctx context.Context, ownerID, id string) (*Document, error) {
	doc := &Document{}
	var setID, content, metadata sql.NullString
	var category string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, set_id, category, title, content, metadata, created_at, updated_at
		 FROM documents WHERE id = ? AND owner_id = ?`, id, ownerID,
	).Scan(&doc.ID, &doc.OwnerID, &setID, &category, &doc.Title, &content, &metadata,
		&doc.CreatedAt, &doc.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, storeNotFound("document", id)
	}
	if err != nil {
		return nil, err
	}
	doc.SetID = setID.String
	doc.Category = Category(category)
	doc.Content = content.String
	doc.Metadata = rawOrNil(metadata)
	return doc, nil
}

// UpdateDocument rewrites a document's mutable fields, consuming one quota
// unit. The (id, owner) pair must exist.
func (s *LibSQLStore) UpdateDocument(ctx context.Context, doc *Document) error {
	if err := validateDocument(doc); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := consumeQuota(ctx, tx, doc.OwnerID); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE documents SET set_id = ?, category = ?, title = ?, content = ?, metadata = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND owner_id = ?`,
		nullStr(doc.SetID), string(doc.Category), doc.Title,
		nullStr(doc.Content), nullRaw(doc.Metadata), doc.ID, doc.OwnerID,
	)
	if err != nil {
		return err
	}
	if err := checkRowsAffected(res, "document", doc.ID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *LibSQLStore) ListDocuments(ctx context.Context, ownerID string, filter DocumentFilter) ([]*Document, error) {
	where := []string{"owner_id = ?"}
	args := []any{ownerID}

	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(filter.Category))
	}
	if filter.SetID != "" {
		where = append(where, "set_id = ?")
		args = append(args, filter.SetID)
	}

	query := `SELECT id, owner_id, set_id, category, title, content, metadata, created_at, updated_at FROM documents`
	query += " WHERE " + strings.Join(where, " AND ")
	query += " ORDER BY updated_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		doc := &Document{}
		var setID, content, metadata sql.NullString
		var category string
		if err := rows.Scan(&doc.ID, &doc.OwnerID, &setID, &category, &doc.Title,
			&content, &metadata, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		doc.SetID = setID.String
		doc.Category = Category(category)
		doc.Content = content.String
		doc.Metadata = rawOrNil(metadata)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *LibSQLStore) DeleteDocument(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	return checkRowsAffected(res, "document", id)
}

// --- Document sets ---

func (s *LibSQLStore) CreateDocumentSet(ctx context.Context, set *DocumentSet) error {
	if set.Name == "" {
		return schema.NewError(schema.ErrCodeValidation, "document set name is required")
	}
	if !ValidCategory(set.Category) {
		return schema.NewErrorf(schema.ErrCodeValidation, "invalid category %q", set.Category)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO document_sets (id, owner_id, category, name, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		set.ID, set.OwnerID, string(set.Category), set.Name,
		nullStr(set.Description), timeOrNow(set.CreatedAt), timeOrNow(set.UpdatedAt),
	)
	return err
}

func (s *LibSQLStore) GetDocumentSet(ctx context.Context, ownerID, id string) (*DocumentSet, error) {
	set := &DocumentSet{}
	var desc sql.NullString
	var category string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, category, name, description, created_at, updated_at
		 FROM document_sets WHERE id = ? AND owner_id = ?`, id, ownerID,
	).Scan(&set.ID, &set.OwnerID, &category, &set.Name, &desc, &set.CreatedAt, &set.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, storeNotFound("document_set", id)
	}
	if err != nil {
		return nil, err
	}
	set.Category = Category(category)
	set.Description = desc.String
	return set, nil
}

func (s *LibSQLStore) ListDocumentSets(ctx context.Context, ownerID string, category Category) ([]*DocumentSet, error) {
	where := []string{"owner_id = ?"}
	args := []any{ownerID}
	if category != "" {
		where = append(where, "category = ?")
		args = append(args, string(category))
	}

	query := `SELECT id, owner_id, category, name, description, created_at, updated_at FROM document_sets`
	query += " WHERE " + strings.Join(where, " AND ")
	query += " ORDER BY name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sets []*DocumentSet
	for rows.Next() {
		set := &DocumentSet{}
		var desc sql.NullString
		var cat string
		if err := rows.Scan(&set.ID, &set.OwnerID, &cat, &set.Name, &desc,
			&set.CreatedAt, &set.UpdatedAt); err != nil {
			return nil, err
		}
		set.Category = Category(cat)
		set.Description = desc.String
		sets = append(sets, set)
	}
	return sets, rows.Err()
}

func (s *LibSQLStore) DeleteDocumentSet(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM document_sets WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	return checkRowsAffected(res, "document_set", id)
}

// --- Graph snapshots ---

func (s *LibSQLStore) SaveGraph(ctx context.Context, snap *GraphSnapshot) error {
	if len(snap.Graph) == 0 {
		return schema.NewError(schema.ErrCodeValidation, "graph snapshot is empty")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO graph_snapshots (owner_id, tab, graph, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(owner_id, tab) DO UPDATE SET graph=excluded.graph, updated_at=CURRENT_TIMESTAMP`,
		snap.OwnerID, snap.Tab, string(snap.Graph), timeOrNow(snap.UpdatedAt),
	)
	return err
}

func (s *LibSQLStore) GetGraph(ctx context.Context, ownerID, tab string) (*GraphSnapshot, error) {
	snap := &GraphSnapshot{}
	var graph string
	err := s.db.QueryRowContext(ctx,
		`SELECT owner_id, tab, graph, updated_at FROM graph_snapshots WHERE owner_id = ? AND tab = ?`,
		ownerID, tab,
	).Scan(&snap.OwnerID, &snap.Tab, &graph, &snap.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, storeNotFound("graph", tab)
	}
	if err != nil {
		return nil, err
	}
	snap.Graph = json.RawMessage(graph)
	return snap, nil
}

// --- Usage ---

func (s *LibSQLStore) GetUsage(ctx context.Context, ownerID string) (*Usage, error) {
	u := &Usage{OwnerID: ownerID, Quota: DefaultQuota}
	err := s.db.QueryRowContext(ctx,
		`SELECT used, quota FROM usage_quota WHERE owner_id = ?`, ownerID,
	).Scan(&u.Used, &u.Quota)
	if err == sql.ErrNoRows {
		return u, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *LibSQLStore) SetQuota(ctx context.Context, ownerID string, quota int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usage_quota (owner_id, used, quota) VALUES (?, 0, ?)
		 ON CONFLICT(owner_id) DO UPDATE SET quota=excluded.quota`,
		ownerID, quota,
	)
	return err
}

// consumeQuota charges one save unit inside the caller's transaction.
// The row is created lazily with the default quota on first save.
func consumeQuota(ctx context.Context, tx *sql.Tx, ownerID string) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO usage_quota (owner_id, used, quota) VALUES (?, 0, ?)
		 ON CONFLICT(owner_id) DO NOTHING`,
		ownerID, DefaultQuota,
	); err != nil {
		return fmt.Errorf("ensure quota row: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE usage_quota SET used = used + 1 WHERE owner_id = ? AND used < quota`,
		ownerID,
	)
	if err != nil {
		return fmt.Errorf("consume quota: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return schema.NewErrorf(schema.ErrCodeQuotaExceeded,
			"save quota exhausted for owner %q", ownerID)
	}
	return nil
}

// --- Principals ---

func (s *LibSQLStore) CreatePrincipal(ctx context.Context, p *Principal) error {
	if p.Email == "" {
		return schema.NewError(schema.ErrCodeValidation, "principal email is required")
	}
	if p.Token == "" {
		return schema.NewError(schema.ErrCodeValidation, "principal token is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO principals (id, email, token, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Email, p.Token, timeOrNow(p.CreatedAt),
	)
	return err
}

func (s *LibSQLStore) GetPrincipalByToken(ctx context.Context, token string) (*Principal, error) {
	p := &Principal{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, token, created_at FROM principals WHERE token = ?`, token,
	).Scan(&p.ID, &p.Email, &p.Token, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, schema.NewError(schema.ErrCodeUnauthorized, "unknown token")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// --- Helpers ---

func validateDocument(doc *Document) error {
	if doc.Title == "" {
		return schema.NewError(schema.ErrCodeValidation, "document title is required")
	}
	if !ValidCategory(doc.Category) {
		return schema.NewErrorf(schema.ErrCodeValidation, "invalid category %q", doc.Category)
	}
	if doc.OwnerID == "" {
		return schema.NewError(schema.ErrCodeValidation, "document owner is required")
	}
	return nil
}

func storeNotFound(resource, id string) *schema.AtelierError {
	return schema.NewErrorf(schema.ErrCodeNotFound, "%s %q not found", resource, id)
}

func checkRowsAffected(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storeNotFound(resource, id)
	}
	return nil
}

func timeOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullRaw(r json.RawMessage) any {
	if len(r) == 0 {
		return nil
	}
	return string(r)
}

func rawOrNil(ns sql.NullString) json.RawMessage {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.RawMessage(ns.String)
}

var _ Store = (*LibSQLStore)(nil)
