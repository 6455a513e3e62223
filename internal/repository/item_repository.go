package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"fsanano/inventory-cart/internal/model"
)

const itemColumns = `id, user_id, name, description, price, stock, created_at, updated_at`

// sortColumns whitelists the columns a listing may be ordered by.
var sortColumns = map[string]string{
	"id":         "id",
	"name":       "name",
	"price":      "price",
	"stock":      "stock",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

type ItemRepository struct {
	db *DB
}

func NewItemRepository(db *DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func scanItem(row pgx.Row, it *model.Item) error {
	return row.Scan(&it.ID, &it.UserID, &it.Name, &it.Description, &it.Price, &it.Stock, &it.CreatedAt, &it.UpdatedAt)
}

func (r *ItemRepository) CreateItem(ctx context.Context, it *model.Item) error {
	err := r.db.getExecutor(ctx).QueryRow(ctx,
		`INSERT INTO items (user_id, name, description, price, stock)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		it.UserID, it.Name, it.Description, it.Price, it.Stock,
	).Scan(&it.ID, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

func (r *ItemRepository) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	var it model.Item
	err := scanItem(r.db.getExecutor(ctx).QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id), &it)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &it, nil
}

func (r *ItemRepository) UpdateItem(ctx context.Context, it *model.Item) error {
	err := r.db.getExecutor(ctx).QueryRow(ctx,
		`UPDATE items
		 SET name = $2, description = $3, price = $4, stock = $5, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		it.ID, it.Name, it.Description, it.Price, it.Stock,
	).Scan(&it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update item: %w", err)
	}
	return nil
}

// DeleteItem removes the item; cart entries referencing it cascade.
func (r *ItemRepository) DeleteItem(ctx context.Context, id int64) error {
	tag, err := r.db.getExecutor(ctx).Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ItemRepository) ListItems(ctx context.Context, f model.ItemFilter) ([]model.Item, error) {
	where, args := itemWhere(f)

	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(f.SortDirection, "asc") {
		direction = "ASC"
	}

	args = append(args, f.PerPage, f.Offset())
	query := fmt.Sprintf(`SELECT %s FROM items WHERE %s ORDER BY %s %s, id %s LIMIT $%d OFFSET $%d`,
		itemColumns, where, column, direction, direction, len(args)-1, len(args))

	rows, err := r.db.getExecutor(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		var it model.Item
		if err := scanItem(rows, &it); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

func (r *ItemRepository) CountItems(ctx context.Context, f model.ItemFilter) (int, error) {
	where, args := itemWhere(f)

	var total int
	err := r.db.getExecutor(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM items WHERE `+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return total, nil
}

func itemWhere(f model.ItemFilter) (string, []any) {
	where := "user_id = $1"
	args := []any{f.OwnerID}
	if f.Search != "" {
		args = append(args, "%"+escapeLike(f.Search)+"%")
		where += " AND (name ILIKE $2 OR description ILIKE $2)"
	}
	return where, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
