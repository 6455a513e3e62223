package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"fsanano/inventory-cart/internal/model"
)

type TokenRepository struct {
	db *DB
}

func NewTokenRepository(db *DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) CreateToken(ctx context.Context, t *model.AccessToken) error {
	err := r.db.getExecutor(ctx).QueryRow(ctx,
		`INSERT INTO personal_access_tokens (id, user_id, name, expires_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		t.ID, t.UserID, t.Name, t.ExpiresAt,
	).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}
	return nil
}

func (r *TokenRepository) GetToken(ctx context.Context, id uuid.UUID) (*model.AccessToken, error) {
	var t model.AccessToken
	err := r.db.getExecutor(ctx).QueryRow(ctx,
		`SELECT id, user_id, name, expires_at, last_used_at, created_at
		 FROM personal_access_tokens WHERE id = $1`, id,
	).Scan(&t.ID, &t.UserID, &t.Name, &t.ExpiresAt, &t.LastUsedAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return &t, nil
}

func (r *TokenRepository) TouchToken(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.getExecutor(ctx).Exec(ctx,
		`UPDATE personal_access_tokens SET last_used_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to touch token: %w", err)
	}
	return nil
}

func (r *TokenRepository) DeleteToken(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.getExecutor(ctx).Exec(ctx, `DELETE FROM personal_access_tokens WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// DeleteUserTokens revokes every token issued to userID.
func (r *TokenRepository) DeleteUserTokens(ctx context.Context, userID int64) error {
	_, err := r.db.getExecutor(ctx).Exec(ctx, `DELETE FROM personal_access_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user tokens: %w", err)
	}
	return nil
}
