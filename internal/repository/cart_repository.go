package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fsanano/inventory-cart/internal/model"
)

const cartColumns = `id, user_id, item_id, quantity, created_at, updated_at`

// CartRepository holds the row-locking reads used by the cart protocol. The
// FOR UPDATE variants only hold their locks when called inside RunAtomic.
type CartRepository struct {
	db *DB
}

func NewCartRepository(db *DB) *CartRepository {
	return &CartRepository{db: db}
}

func scanCartEntry(row pgx.Row, e *model.CartEntry) error {
	return row.Scan(&e.ID, &e.UserID, &e.ItemID, &e.Quantity, &e.CreatedAt, &e.UpdatedAt)
}

// GetItemForUpdate locks the item row and returns item data
func (r *CartRepository) GetItemForUpdate(ctx context.Context, itemID int64) (*model.Item, error) {
	var it model.Item
	err := scanItem(r.db.getExecutor(ctx).QueryRow(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, itemID), &it)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &it, nil
}

// GetEntryByItemForUpdate locks the caller's entry for itemID, if any.
func (r *CartRepository) GetEntryByItemForUpdate(ctx context.Context, userID, itemID int64) (*model.CartEntry, error) {
	return r.getEntry(ctx,
		`SELECT `+cartColumns+` FROM carts WHERE user_id = $1 AND item_id = $2 FOR UPDATE`, userID, itemID)
}

// GetEntry reads an entry scoped to its owner without locking it.
func (r *CartRepository) GetEntry(ctx context.Context, userID, entryID int64) (*model.CartEntry, error) {
	return r.getEntry(ctx,
		`SELECT `+cartColumns+` FROM carts WHERE id = $1 AND user_id = $2`, entryID, userID)
}

// GetEntryForUpdate locks an entry scoped to its owner.
func (r *CartRepository) GetEntryForUpdate(ctx context.Context, userID, entryID int64) (*model.CartEntry, error) {
	return r.getEntry(ctx,
		`SELECT `+cartColumns+` FROM carts WHERE id = $1 AND user_id = $2 FOR UPDATE`, entryID, userID)
}

func (r *CartRepository) getEntry(ctx context.Context, query string, args ...any) (*model.CartEntry, error) {
	var e model.CartEntry
	if err := scanCartEntry(r.db.getExecutor(ctx).QueryRow(ctx, query, args...), &e); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get cart entry: %w", err)
	}
	return &e, nil
}

// ReservedQuantity sums what other users' carts hold of itemID.
func (r *CartRepository) ReservedQuantity(ctx context.Context, itemID, excludeUserID int64) (int, error) {
	var reserved int
	err := r.db.getExecutor(ctx).QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM carts WHERE item_id = $1 AND user_id <> $2`,
		itemID, excludeUserID,
	).Scan(&reserved)
	if err != nil {
		return 0, fmt.Errorf("failed to sum reserved quantity: %w", err)
	}
	return reserved, nil
}

func (r *CartRepository) CreateEntry(ctx context.Context, e *model.CartEntry) error {
	err := r.db.getExecutor(ctx).QueryRow(ctx,
		`INSERT INTO carts (user_id, item_id, quantity)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		e.UserID, e.ItemID, e.Quantity,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create cart entry: %w", err)
	}
	return nil
}

func (r *CartRepository) UpdateQuantity(ctx context.Context, e *model.CartEntry) error {
	err := r.db.getExecutor(ctx).QueryRow(ctx,
		`UPDATE carts SET quantity = $2, updated_at = now() WHERE id = $1 RETURNING updated_at`,
		e.ID, e.Quantity,
	).Scan(&e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update cart entry: %w", err)
	}
	return nil
}

func (r *CartRepository) DeleteEntry(ctx context.Context, entryID int64) error {
	tag, err := r.db.getExecutor(ctx).Exec(ctx, `DELETE FROM carts WHERE id = $1`, entryID)
	if err != nil {
		return fmt.Errorf("failed to delete cart entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearCart deletes every entry of userID in one statement.
func (r *CartRepository) ClearCart(ctx context.Context, userID int64) (int64, error) {
	tag, err := r.db.getExecutor(ctx).Exec(ctx, `DELETE FROM carts WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListEntries returns the user's entries with their items loaded.
func (r *CartRepository) ListEntries(ctx context.Context, userID int64) ([]model.CartEntry, error) {
	rows, err := r.db.getExecutor(ctx).Query(ctx,
		`SELECT c.id, c.user_id, c.item_id, c.quantity, c.created_at, c.updated_at,
		        i.id, i.user_id, i.name, i.description, i.price, i.stock, i.created_at, i.updated_at
		 FROM carts c
		 JOIN items i ON i.id = c.item_id
		 WHERE c.user_id = $1
		 ORDER BY c.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}
	defer rows.Close()

	entries := []model.CartEntry{}
	for rows.Next() {
		var (
			e  model.CartEntry
			it model.Item
		)
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.ItemID, &e.Quantity, &e.CreatedAt, &e.UpdatedAt,
			&it.ID, &it.UserID, &it.Name, &it.Description, &it.Price, &it.Stock, &it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cart entry: %w", err)
		}
		e.Item = &it
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}
	return entries, nil
}
