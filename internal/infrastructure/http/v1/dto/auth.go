package dto

import (
	"time"

	"clubledger/internal/domain/auth"
)

// --- Request DTOs ---

// RegisterRequest for user registration. Presence is checked by the auth
// service so every missing field is reported at once.
type RegisterRequest struct {
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	BusinessType  string `json:"businessType"`
	AcceptedTerms bool   `json:"acceptedTerms"`
}

// ToAuthRequest converts to domain request.
func (r *RegisterRequest) ToAuthRequest() auth.RegisterRequest {
	return auth.RegisterRequest{
		FullName:      r.FullName,
		Email:         r.Email,
		Password:      r.Password,
		BusinessType:  r.BusinessType,
		AcceptedTerms: r.AcceptedTerms,
	}
}

// LoginRequest for user login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ToCredentials converts to domain credentials.
func (r *LoginRequest) ToCredentials() auth.Credentials {
	return auth.Credentials{Email: r.Email, Password: r.Password}
}

// PasswordResetRequest asks for a reset code.
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest sets a new password with a code.
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// --- Response DTOs ---

// UserResponse represents user in API response.
type UserResponse struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	FullName     string     `json:"fullName"`
	Role         string     `json:"role"`
	BusinessType string     `json:"businessType,omitempty"`
	IsActive     bool       `json:"isActive"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// FromUser creates response from domain user.
func FromUser(u *auth.User) *UserResponse {
	return &UserResponse{
		ID:           u.ID.String(),
		Email:        u.Email,
		FullName:     u.Name,
		Role:         u.Role,
		BusinessType: u.BusinessType,
		IsActive:     u.IsActive,
		LastLoginAt:  u.LastLoginAt,
		CreatedAt:    u.CreatedAt,
	}
}

// LoginResponse is the token plus the logged-in user.
type LoginResponse struct {
	Token     string        `json:"token"`
	TokenType string        `json:"tokenType"`
	ExpiresAt time.Time     `json:"expiresAt"`
	User      *UserResponse `json:"user"`
}

// NewLoginResponse builds the login payload.
func NewLoginResponse(t *auth.Token, u *auth.User) *LoginResponse {
	return &LoginResponse{
		Token:     t.AccessToken,
		TokenType: t.TokenType,
		ExpiresAt: t.ExpiresAt,
		User:      FromUser(u),
	}
}

// PasswordResetResponse acknowledges a reset request. Code is only set in
// development, where there is no mailer.
type PasswordResetResponse struct {
	Sent bool   `json:"sent"`
	Code string `json:"code,omitempty"`
}
