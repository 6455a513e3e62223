package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fsanano/inventory-cart/internal/model"
	"fsanano/inventory-cart/internal/repository"
	"fsanano/inventory-cart/internal/service"
)

func setupTestDB(t *testing.T) (*pgxpool.Pool, *repository.DB) {
	t.Helper()
	_ = godotenv.Load("../../.env")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := repository.Connect(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, repository.Migrate(ctx, pool))

	// Truncate tables to ensure clean state
	_, err = pool.Exec(ctx, "TRUNCATE TABLE carts, personal_access_tokens, items, users RESTART IDENTITY CASCADE")
	require.NoError(t, err)

	return pool, repository.NewDB(pool)
}

func seedUser(t *testing.T, db *repository.DB, email string) *model.User {
	t.Helper()
	u := &model.User{Name: "Test", Email: email, PasswordHash: "hash"}
	require.NoError(t, repository.NewUserRepository(db).CreateUser(context.Background(), u))
	return u
}

func seedItem(t *testing.T, db *repository.DB, ownerID int64, name string, price float64, stock int) *model.Item {
	t.Helper()
	it := &model.Item{UserID: ownerID, Name: name, Price: price, Stock: stock}
	require.NoError(t, repository.NewItemRepository(db).CreateItem(context.Background(), it))
	return it
}

func TestUserRepository(t *testing.T) {
	_, db := setupTestDB(t)
	ctx := context.Background()
	users := repository.NewUserRepository(db)

	u := seedUser(t, db, "jane@example.com")
	assert.NotZero(t, u.ID)

	err := users.CreateUser(ctx, &model.User{Name: "Dup", Email: "jane@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	got, err := users.GetUserByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	got, err = users.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", got.Email)

	_, err = users.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTokenRepository(t *testing.T) {
	pool, db := setupTestDB(t)
	ctx := context.Background()
	tokens := repository.NewTokenRepository(db)
	u := seedUser(t, db, "jane@example.com")

	tok := &model.AccessToken{ID: uuid.New(), UserID: u.ID, Name: "auth_token", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, tokens.CreateToken(ctx, tok))
	require.NoError(t, tokens.CreateToken(ctx, &model.AccessToken{ID: uuid.New(), UserID: u.ID, Name: "auth_token", ExpiresAt: time.Now().Add(time.Hour)}))

	got, err := tokens.GetToken(ctx, tok.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.UserID)
	assert.Nil(t, got.LastUsedAt)

	require.NoError(t, tokens.TouchToken(ctx, tok.ID, time.Now()))
	got, err = tokens.GetToken(ctx, tok.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.LastUsedAt)

	require.NoError(t, tokens.DeleteToken(ctx, tok.ID))
	_, err = tokens.GetToken(ctx, tok.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, tokens.DeleteUserTokens(ctx, u.ID))
	var count int
	require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM personal_access_tokens WHERE user_id = $1", u.ID).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestItemRepository_List(t *testing.T) {
	_, db := setupTestDB(t)
	ctx := context.Background()
	items := repository.NewItemRepository(db)
	owner := seedUser(t, db, "owner@example.com")
	other := seedUser(t, db, "other@example.com")

	for i := 1; i <= 7; i++ {
		seedItem(t, db, owner.ID, fmt.Sprintf("Widget %d", i), float64(i), i)
	}
	seedItem(t, db, owner.ID, "100% cotton", 3.5, 1)
	seedItem(t, db, other.ID, "Widget foreign", 1, 1)

	f := model.ItemFilter{OwnerID: owner.ID, SortBy: "price", SortDirection: "asc", Page: 2, PerPage: 3}
	page, err := items.ListItems(ctx, f)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, 3.5, page[0].Price)

	total, err := items.CountItems(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, 8, total)

	f = model.ItemFilter{OwnerID: owner.ID, Search: "widget", Page: 1, PerPage: 10}
	total, err = items.CountItems(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, 7, total)

	f.Search = "%"
	page, err = items.ListItems(ctx, f)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "100% cotton", page[0].Name)

	f = model.ItemFilter{OwnerID: owner.ID, Page: 5, PerPage: 10}
	page, err = items.ListItems(ctx, f)
	require.NoError(t, err)
	assert.NotNil(t, page)
	assert.Empty(t, page)
}

func TestItemRepository_UpdateDelete(t *testing.T) {
	_, db := setupTestDB(t)
	ctx := context.Background()
	items := repository.NewItemRepository(db)
	carts := repository.NewCartRepository(db)
	owner := seedUser(t, db, "owner@example.com")
	buyer := seedUser(t, db, "buyer@example.com")
	it := seedItem(t, db, owner.ID, "Lamp", 19.99, 3)

	desc := "desk lamp"
	it.Name, it.Description, it.Stock = "Lamp v2", &desc, 5
	require.NoError(t, items.UpdateItem(ctx, it))

	got, err := items.GetItem(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lamp v2", got.Name)
	require.NotNil(t, got.Description)
	assert.Equal(t, desc, *got.Description)
	assert.Equal(t, 19.99, got.Price)

	require.NoError(t, carts.CreateEntry(ctx, &model.CartEntry{UserID: buyer.ID, ItemID: it.ID, Quantity: 1}))
	require.NoError(t, items.DeleteItem(ctx, it.ID))
	assert.ErrorIs(t, items.DeleteItem(ctx, it.ID), repository.ErrNotFound)

	entries, err := carts.ListEntries(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestItemRepository_ColumnBounds(t *testing.T) {
	_, db := setupTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com")

	it := seedItem(t, db, owner.ID, "Max", 99999999.99, 2147483647)
	got, err := repository.NewItemRepository(db).GetItem(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, 99999999.99, got.Price)
	assert.Equal(t, 2147483647, got.Stock)
}

func TestCartRepository(t *testing.T) {
	_, db := setupTestDB(t)
	ctx := context.Background()
	carts := repository.NewCartRepository(db)
	owner := seedUser(t, db, "owner@example.com")
	a := seedUser(t, db, "a@example.com")
	b := seedUser(t, db, "b@example.com")
	it := seedItem(t, db, owner.ID, "Widget", 2.5, 10)

	ea := &model.CartEntry{UserID: a.ID, ItemID: it.ID, Quantity: 2}
	require.NoError(t, carts.CreateEntry(ctx, ea))
	assert.ErrorIs(t, carts.CreateEntry(ctx, &model.CartEntry{UserID: a.ID, ItemID: it.ID, Quantity: 1}), repository.ErrDuplicate)
	require.NoError(t, carts.CreateEntry(ctx, &model.CartEntry{UserID: b.ID, ItemID: it.ID, Quantity: 3}))

	reserved, err := carts.ReservedQuantity(ctx, it.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reserved)

	_, err = carts.GetEntry(ctx, b.ID, ea.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	ea.Quantity = 4
	require.NoError(t, carts.UpdateQuantity(ctx, ea))

	entries, err := carts.ListEntries(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 4, entries[0].Quantity)
	require.NotNil(t, entries[0].Item)
	assert.Equal(t, 2.5, entries[0].Item.Price)

	n, err := carts.ClearCart(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.ErrorIs(t, carts.DeleteEntry(ctx, ea.ID), repository.ErrNotFound)

	entries, err = carts.ListEntries(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRunAtomic_RollsBack(t *testing.T) {
	_, db := setupTestDB(t)
	ctx := context.Background()
	items := repository.NewItemRepository(db)
	owner := seedUser(t, db, "owner@example.com")

	boom := errors.New("boom")
	var created *model.Item
	err := db.RunAtomic(ctx, func(ctx context.Context) error {
		created = &model.Item{UserID: owner.ID, Name: "Ghost", Price: 1, Stock: 1}
		if err := items.CreateItem(ctx, created); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = items.GetItem(ctx, created.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAddToCart_Concurrency(t *testing.T) {
	pool, db := setupTestDB(t)
	ctx := context.Background()
	cart := service.NewCartService(db, repository.NewCartRepository(db))

	// 10 in stock, 50 requests from 5 users. Only 10 should succeed.
	initialStock := 10
	owner := seedUser(t, db, "owner@example.com")
	it := seedItem(t, db, owner.ID, "Hot item", 10, initialStock)
	buyers := make([]int64, 5)
	for i := range buyers {
		buyers[i] = seedUser(t, db, fmt.Sprintf("buyer%d@example.com", i)).ID
	}

	concurrentRequests := 50
	var wg sync.WaitGroup
	results := make(chan error, concurrentRequests)
	for i := 0; i < concurrentRequests; i++ {
		wg.Add(1)
		userID := buyers[i%len(buyers)]
		go func() {
			defer wg.Done()
			_, err := cart.AddOrIncrement(ctx, userID, service.AddToCartInput{ItemID: it.ID, Quantity: 1})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successCount, failCount := 0, 0
	for err := range results {
		if err == nil {
			successCount++
			continue
		}
		assert.ErrorIs(t, err, service.ErrInsufficientStock)
		failCount++
	}
	assert.Equal(t, initialStock, successCount)
	assert.Equal(t, concurrentRequests-initialStock, failCount)

	var held int
	require.NoError(t, pool.QueryRow(ctx, "SELECT COALESCE(SUM(quantity), 0) FROM carts WHERE item_id = $1", it.ID).Scan(&held))
	assert.Equal(t, initialStock, held)
}
