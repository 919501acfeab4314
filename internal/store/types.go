package store

import (
	"encoding/json"
	"time"
)

// Category tags a document or document set. The set is closed: six values.
type Category string

const (
	CategoryAPI            Category = "api"
	CategoryProcess        Category = "process"
	CategoryInfrastructure Category = "infrastructure"
	CategorySchema         Category = "schema"
	CategoryRequestTab     Category = "requestTab"
	CategoryOther          Category = "other"
)

// Categories lists every valid document category.
var Categories = []Category{
	CategoryAPI, CategoryProcess, CategoryInfrastructure,
	CategorySchema, CategoryRequestTab, CategoryOther,
}

// ValidCategory reports whether c is one of the six fixed categories.
func ValidCategory(c Category) bool {
	for _, cat := range Categories {
		if cat == c {
			return true
		}
	}
	return false
}

// Document is a persisted design artifact owned by a principal. Content
// and Metadata are freeform; Category comes from the fixed enum. Every
// save consumes one quota unit.
type Document struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"ownerId"`
	SetID     string          `json:"setId,omitempty"`
	Category  Category        `json:"category"`
	Title     string          `json:"title"`
	Content   string          `json:"content,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// DocumentFilter narrows ListDocuments.
type DocumentFilter struct {
	Category Category
	SetID    string
	Limit    int
	Offset   int
}

// DocumentSet groups documents under a shared name and category.
type DocumentSet struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Category    Category  `json:"category"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// GraphSnapshot is the persisted graph document for one (owner, tab)
// slot. Graph holds the raw serialized graph; callers validate it at the
// schema boundary before it ever reaches the workspace store.
type GraphSnapshot struct {
	OwnerID   string          `json:"ownerId"`
	Tab       string          `json:"tab"`
	Graph     json.RawMessage `json:"graph"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Usage tracks a principal's consumed save quota.
type Usage struct {
	OwnerID string `json:"ownerId"`
	Used    int64  `json:"used"`
	Quota   int64  `json:"quota"`
}

// Remaining returns how many quota units the owner has left.
func (u Usage) Remaining() int64 {
	if u.Used >= u.Quota {
		return 0
	}
	return u.Quota - u.Used
}

// Principal is an authenticated identity resolved from a bearer token.
type Principal struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}
