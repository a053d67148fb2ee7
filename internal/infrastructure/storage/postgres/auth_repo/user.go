// Package auth_repo provides PostgreSQL implementations for auth repositories.
package auth_repo

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"clubledger/internal/core/apperror"
	"clubledger/internal/core/id"
	"clubledger/internal/domain/auth"
	"clubledger/internal/infrastructure/storage/postgres"
)

const userColumns = `
	id, email, name, password_hash, role, business_type, is_active,
	last_login_at, failed_login_attempts, locked_until, created_at, updated_at
`

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	txManager *postgres.TxManager
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txManager *postgres.TxManager) *UserRepo {
	return &UserRepo{txManager: txManager}
}

// Create creates a new user.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	q := r.txManager.GetQuerier(ctx)

	query := `
		INSERT INTO users (
			id, email, name, password_hash, role, business_type,
			is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := q.Exec(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash, user.Role, user.BusinessType,
		user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return postgres.MapError(fmt.Errorf("insert user: %w", err), "user")
	}

	return nil
}

func (r *UserRepo) getOne(ctx context.Context, where string, arg any, key string) (*auth.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE " + where

	var user auth.User
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &user, query, arg); err != nil {
		if postgres.IsNoRows(err) {
			return nil, apperror.NewNotFound("user", key)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}

// GetByID retrieves user by ID.
func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	return r.getOne(ctx, "id = $1", userID, userID.String())
}

// GetByEmail retrieves user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.getOne(ctx, "email = $1", email, email)
}

// Update updates user data.
func (r *UserRepo) Update(ctx context.Context, user *auth.User) error {
	q := r.txManager.GetQuerier(ctx)

	query := `
		UPDATE users SET
			name = $2,
			password_hash = $3,
			role = $4,
			business_type = $5,
			is_active = $6,
			last_login_at = $7,
			failed_login_attempts = $8,
			locked_until = $9,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := q.Exec(ctx, query,
		user.ID, user.Name, user.PasswordHash, user.Role, user.BusinessType,
		user.IsActive, user.LastLoginAt, user.FailedLoginAttempts, user.LockedUntil,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("user", user.ID.String())
	}

	return nil
}

// Exists checks if email exists.
func (r *UserRepo) Exists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.txManager.GetQuerier(ctx).
		QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", email).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

// List returns every user ordered by email.
func (r *UserRepo) List(ctx context.Context) ([]auth.User, error) {
	var users []auth.User
	query := "SELECT " + userColumns + " FROM users ORDER BY email"
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &users, query); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

var _ auth.UserRepository = (*UserRepo)(nil)
