package repository

import (
	"context"
	"fmt"

	"github.com/lasmate/Alisee/internal/model"
)

func (r *ShopRepository) CreateSession(ctx context.Context, s model.Session) error {
	_, err := r.getExecutor(ctx).Exec(ctx,
		`INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES ($1, $2, $3, $4)`,
		s.ID, s.UserID, s.CreatedAt, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *ShopRepository) GetSession(ctx context.Context, id string) (*model.Session, error) {
	var s model.Session
	err := r.getExecutor(ctx).QueryRow(ctx,
		`SELECT id, user_id, created_at, expires_at FROM sessions WHERE id = $1`, id,
	).Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		return nil, notFound(err, "session")
	}
	return &s, nil
}

// DeleteSession is idempotent: deleting an unknown session is not an error.
func (r *ShopRepository) DeleteSession(ctx context.Context, id string) error {
	if _, err := r.getExecutor(ctx).Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
