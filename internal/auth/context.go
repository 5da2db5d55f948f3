package auth

import "context"

// Identity is the authenticated principal attached to a request.
type Identity struct {
	ID      int64
	Role    string
	Blocked bool
}

// IsAdmin reports whether the identity holds the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == "ADMIN"
}

type ctxKey struct{}

// WithUser attaches an identity to the context.
func WithUser(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// UserFromContext extracts the authenticated identity, if any.
func UserFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(*Identity)
	return id, ok && id != nil
}
