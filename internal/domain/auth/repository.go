package auth

import (
	"context"
	"time"

	"clubledger/internal/core/id"
)

// UserRepository defines user storage operations.
type UserRepository interface {
	Create(ctx context.Context, user *User) error

	// GetByID retrieves user by ID.
	GetByID(ctx context.Context, userID id.ID) (*User, error)

	// GetByEmail retrieves user by normalized email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update saves login bookkeeping, password and profile fields.
	Update(ctx context.Context, user *User) error

	Exists(ctx context.Context, email string) (bool, error)

	List(ctx context.Context) ([]User, error)
}

// ResetCodeRepository stores password reset codes.
type ResetCodeRepository interface {
	Save(ctx context.Context, code *ResetCode) error

	// Latest returns the newest code of a user, NotFound if none.
	Latest(ctx context.Context, userID id.ID) (*ResetCode, error)

	MarkUsed(ctx context.Context, codeID id.ID, at time.Time) error

	// DeleteExpired removes codes that expired before the given instant.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
