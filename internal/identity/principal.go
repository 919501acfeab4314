package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rendis/atelier/internal/store"
	"github.com/rendis/atelier/pkg/schema"
)

// Resolver turns a bearer token into an authenticated principal. All
// persistence operations require a resolved principal or fail
// unauthorized.
type Resolver struct {
	store store.Store
}

// NewResolver creates a Resolver backed by the given store.
func NewResolver(s store.Store) *Resolver {
	return &Resolver{store: s}
}

// FromRequest resolves the principal from a request's Authorization
// header. Accepts "Bearer <token>"; anything else fails unauthorized.
func (r *Resolver) FromRequest(req *http.Request) (*store.Principal, error) {
	header := req.Header.Get("Authorization")
	if header == "" {
		return nil, schema.NewError(schema.ErrCodeUnauthorized, "missing authorization header")
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, schema.NewError(schema.ErrCodeUnauthorized, "authorization header must be a bearer token")
	}
	return r.ResolveToken(req.Context(), token)
}

// ResolveToken looks the token up in the store.
func (r *Resolver) ResolveToken(ctx context.Context, token string) (*store.Principal, error) {
	return r.store.GetPrincipalByToken(ctx, token)
}

// Register creates a principal with a freshly issued token and returns
// it. The token is returned exactly once; the store never exposes it on
// reads.
func (r *Resolver) Register(ctx context.Context, email string) (*store.Principal, error) {
	if email == "" {
		return nil, schema.NewError(schema.ErrCodeValidation, "email is required")
	}
	p := &store.Principal{
		ID:    uuid.New().String(),
		Email: email,
		Token: uuid.New().String(),
	}
	if err := r.store.CreatePrincipal(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
