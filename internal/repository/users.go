package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lasmate/Alisee/internal/model"
)

func (r *ShopRepository) CreateUser(ctx context.Context, u *model.User) error {
	const query = `
		INSERT INTO users (name, surname, email, password_hash, account_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.getExecutor(ctx).QueryRow(ctx, query,
		u.Name, u.Surname, u.Email, u.PasswordHash, int16(u.AccountType),
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

const userColumns = `u.id, u.name, u.surname, u.email, u.password_hash, u.account_type, u.created_at`

func scanUser(row pgx.Row, u *model.User) error {
	return row.Scan(&u.ID, &u.Name, &u.Surname, &u.Email, &u.PasswordHash, &u.AccountType, &u.CreatedAt)
}

func (r *ShopRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := scanUser(r.getExecutor(ctx).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.email = $1`, email), &u)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return &u, nil
}

func (r *ShopRepository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	err := scanUser(r.getExecutor(ctx).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id), &u)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return &u, nil
}

// ListUsers returns every user with the ids of the orders they placed.
func (r *ShopRepository) ListUsers(ctx context.Context) ([]model.User, error) {
	const query = `
		SELECT ` + userColumns + `,
			COALESCE(array_agg(o.id ORDER BY o.id) FILTER (WHERE o.id IS NOT NULL), '{}')
		FROM users u
		LEFT JOIN orders o ON o.user_id = u.id
		GROUP BY u.id
		ORDER BY u.id
	`
	rows, err := r.getExecutor(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Surname, &u.Email, &u.PasswordHash,
			&u.AccountType, &u.CreatedAt, &u.OrderIDs); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

func (r *ShopRepository) UpdateAccountType(ctx context.Context, id int64, t model.AccountType) error {
	tag, err := r.getExecutor(ctx).Exec(ctx, `UPDATE users SET account_type = $2 WHERE id = $1`, id, int16(t))
	if err != nil {
		return fmt.Errorf("failed to update account type: %w", err)
	}
	return expectAffected(tag, "user")
}

// DeleteUser removes the user and its sessions. Orders stay, detached from the account.
func (r *ShopRepository) DeleteUser(ctx context.Context, id int64) error {
	tag, err := r.getExecutor(ctx).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return expectAffected(tag, "user")
}
