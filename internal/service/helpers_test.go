package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"fsanano/inventory-cart/internal/auth"
	"fsanano/inventory-cart/internal/model"
	"fsanano/inventory-cart/internal/repository/memory"
	"fsanano/inventory-cart/internal/service"
)

type fixture struct {
	store *memory.Store
	auth  *service.AuthService
	items *service.ItemService
	cart  *service.CartService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	hasher := auth.NewHasher(2, bcrypt.MinCost)
	t.Cleanup(hasher.Close)

	return &fixture{
		store: store,
		auth: service.NewAuthService(store, store, store, hasher, auth.NewTokenManager("test-secret", "test"), service.AuthConfig{
			SessionTTL:  24 * time.Hour,
			RememberTTL: 30 * 24 * time.Hour,
			RegisterTTL: 30 * 24 * time.Hour,
		}),
		items: service.NewItemService(store),
		cart:  service.NewCartService(store, store),
	}
}

func (f *fixture) seedItem(t *testing.T, ownerID int64, name string, price float64, stock int) *model.Item {
	t.Helper()
	it := &model.Item{UserID: ownerID, Name: name, Price: price, Stock: stock}
	require.NoError(t, f.store.CreateItem(context.Background(), it))
	return it
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }
