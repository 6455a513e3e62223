package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fsanano/inventory-cart/internal/auth"
	"fsanano/inventory-cart/internal/model"
)

// Transactor runs fn atomically; repository calls made with the context
// passed to fn join the transaction.
type Transactor interface {
	RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
}

type TokenRepository interface {
	CreateToken(ctx context.Context, t *model.AccessToken) error
	GetToken(ctx context.Context, id uuid.UUID) (*model.AccessToken, error)
	TouchToken(ctx context.Context, id uuid.UUID, at time.Time) error
	DeleteToken(ctx context.Context, id uuid.UUID) error
	DeleteUserTokens(ctx context.Context, userID int64) error
}

type ItemRepository interface {
	CreateItem(ctx context.Context, it *model.Item) error
	GetItem(ctx context.Context, id int64) (*model.Item, error)
	UpdateItem(ctx context.Context, it *model.Item) error
	DeleteItem(ctx context.Context, id int64) error
	ListItems(ctx context.Context, f model.ItemFilter) ([]model.Item, error)
	CountItems(ctx context.Context, f model.ItemFilter) (int, error)
}

type CartRepository interface {
	GetItemForUpdate(ctx context.Context, itemID int64) (*model.Item, error)
	GetEntryByItemForUpdate(ctx context.Context, userID, itemID int64) (*model.CartEntry, error)
	GetEntry(ctx context.Context, userID, entryID int64) (*model.CartEntry, error)
	GetEntryForUpdate(ctx context.Context, userID, entryID int64) (*model.CartEntry, error)
	ReservedQuantity(ctx context.Context, itemID, excludeUserID int64) (int, error)
	CreateEntry(ctx context.Context, e *model.CartEntry) error
	UpdateQuantity(ctx context.Context, e *model.CartEntry) error
	DeleteEntry(ctx context.Context, entryID int64) error
	ClearCart(ctx context.Context, userID int64) (int64, error)
	ListEntries(ctx context.Context, userID int64) ([]model.CartEntry, error)
}

type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Compare(ctx context.Context, hash, password string) error
}

type TokenIssuer interface {
	Issue(tokenID uuid.UUID, userID int64, expiresAt time.Time) (string, error)
	Parse(token string) (*auth.TokenClaims, error)
}
