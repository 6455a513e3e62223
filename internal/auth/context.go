package auth

import (
	"context"

	"github.com/google/uuid"

	"fsanano/inventory-cart/internal/model"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	User    *model.User
	TokenID uuid.UUID
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.User == nil {
		return Identity{}, false
	}
	return id, true
}
