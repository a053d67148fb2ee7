// Package auth provides authentication domain logic: accounts, password
// hashing, access tokens and password reset codes.
package auth

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"clubledger/internal/core/apperror"
	"clubledger/internal/core/id"
)

const (
	RoleOwner = "owner"
	RoleAdmin = "admin"
)

// User is an account. Clubs reference it as their owner.
type User struct {
	ID                  id.ID      `db:"id" json:"id"`
	Email               string     `db:"email" json:"email"`
	Name                string     `db:"name" json:"fullName"`
	PasswordHash        string     `db:"password_hash" json:"-"`
	Role                string     `db:"role" json:"role"`
	BusinessType        string     `db:"business_type" json:"businessType,omitempty"`
	IsActive            bool       `db:"is_active" json:"isActive"`
	LastLoginAt         *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	FailedLoginAttempts int        `db:"failed_login_attempts" json:"-"`
	LockedUntil         *time.Time `db:"locked_until" json:"-"`
	CreatedAt           time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updatedAt"`
}

// NewUser creates an active owner account.
func NewUser(email, name, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           id.New(),
		Email:        NormalizeEmail(email),
		Name:         strings.TrimSpace(name),
		PasswordHash: passwordHash,
		Role:         RoleOwner,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate validates user data.
func (u *User) Validate(_ context.Context) error {
	var missing []string
	if u.Email == "" {
		missing = append(missing, "email")
	}
	if u.Name == "" {
		missing = append(missing, "fullName")
	}
	if len(missing) > 0 {
		return apperror.NewMissingField(missing...)
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return apperror.NewInvalidInput("email", "not a valid address")
	}
	if u.Role != RoleOwner && u.Role != RoleAdmin {
		return apperror.NewInvalidInput("role", "expected owner or admin")
	}
	return nil
}

// IsLocked returns true if account is locked.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// CanLogin checks if user can login.
func (u *User) CanLogin(now time.Time) error {
	if !u.IsActive {
		return apperror.NewForbidden("account is disabled")
	}
	if u.IsLocked(now) {
		return apperror.NewForbidden("account is temporarily locked")
	}
	return nil
}

// RecordFailedLogin increments failed login counter and locks the account
// once maxAttempts is reached.
func (u *User) RecordFailedLogin(now time.Time, maxAttempts int, lockDuration time.Duration) {
	u.FailedLoginAttempts++
	if maxAttempts > 0 && u.FailedLoginAttempts >= maxAttempts {
		lockUntil := now.Add(lockDuration)
		u.LockedUntil = &lockUntil
	}
}

// RecordSuccessfulLogin resets failed login counter.
func (u *User) RecordSuccessfulLogin(now time.Time) {
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	u.LastLoginAt = &now
}

// ResetCode is a one-time password reset code. Only its hash is stored.
type ResetCode struct {
	ID        id.ID      `db:"id"`
	UserID    id.ID      `db:"user_id"`
	CodeHash  string     `db:"code_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	UsedAt    *time.Time `db:"used_at"`
	CreatedAt time.Time  `db:"created_at"`
}

// IsValid reports whether the code is unused and unexpired.
func (c *ResetCode) IsValid(now time.Time) bool {
	return c.UsedAt == nil && now.Before(c.ExpiresAt)
}

// Token is the login response.
type Token struct {
	AccessToken string    `json:"token"`
	ExpiresAt   time.Time `json:"expiresAt"`
	TokenType   string    `json:"tokenType"`
}

// Credentials for login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest for user registration.
type RegisterRequest struct {
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	BusinessType  string `json:"businessType,omitempty"`
	AcceptedTerms bool   `json:"acceptedTerms"`
}
