package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"clubledger/internal/core/apperror"
	"clubledger/internal/core/id"
	"clubledger/internal/core/tx"
	"clubledger/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	MaxLoginAttempts  int
	LockDuration      time.Duration
	PasswordMinLength int
	ResetCodeTTL      time.Duration
	BcryptCost        int
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLoginAttempts:  5,
		LockDuration:      15 * time.Minute,
		PasswordMinLength: 6,
		ResetCodeTTL:      15 * time.Minute,
		BcryptCost:        bcrypt.DefaultCost,
	}
}

// Service provides authentication logic.
type Service struct {
	users      UserRepository
	codes      ResetCodeRepository
	txManager  tx.Manager
	jwtService *JWTService
	config     ServiceConfig
	now        func() time.Time
}

// NewService creates a new auth service.
func NewService(
	users UserRepository,
	codes ResetCodeRepository,
	txManager tx.Manager,
	jwtService *JWTService,
	config ServiceConfig,
) *Service {
	return &Service{
		users:      users,
		codes:      codes,
		txManager:  txManager,
		jwtService: jwtService,
		config:     config,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an owner account. Terms must be accepted.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var missing []string
	if req.FullName == "" {
		missing = append(missing, "fullName")
	}
	if req.Email == "" {
		missing = append(missing, "email")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if !req.AcceptedTerms {
		missing = append(missing, "acceptedTerms")
	}
	if len(missing) > 0 {
		return nil, apperror.NewMissingField(missing...)
	}

	return s.CreateUser(ctx, req.Email, req.FullName, req.Password, RoleOwner, func(u *User) {
		u.BusinessType = req.BusinessType
	})
}

// CreateUser creates an account with an explicit role. Used by Register and
// the admin CLI.
func (s *Service) CreateUser(ctx context.Context, email, name, password, role string, mutate ...func(*User)) (*User, error) {
	if err := s.checkPassword(password); err != nil {
		return nil, err
	}

	email = NormalizeEmail(email)
	exists, err := s.users.Exists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email exists: %w", err)
	}
	if exists {
		return nil, apperror.NewDuplicate("user", "email", email)
	}

	passwordHash, err := s.hash(password)
	if err != nil {
		return nil, err
	}

	user := NewUser(email, name, passwordHash)
	if role != "" {
		user.Role = role
	}
	for _, fn := range mutate {
		fn(user)
	}
	if err := user.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user registered",
		"user_id", user.ID,
		"email", user.Email,
		"role", user.Role)

	return user, nil
}

// Login authenticates user and returns an access token.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Token, *User, error) {
	var missing []string
	if creds.Email == "" {
		missing = append(missing, "email")
	}
	if creds.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, nil, apperror.NewMissingField(missing...)
	}

	user, err := s.users.GetByEmail(ctx, NormalizeEmail(creds.Email))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, nil, err
	}

	now := s.now()
	if err := user.CanLogin(now); err != nil {
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		user.RecordFailedLogin(now, s.config.MaxLoginAttempts, s.config.LockDuration)
		if uerr := s.users.Update(ctx, user); uerr != nil {
			logger.Warn(ctx, "failed to record login failure", "user_id", user.ID, "error", uerr)
		}
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}

	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate access token: %w", err)
	}

	user.RecordSuccessfulLogin(now)
	if err := s.users.Update(ctx, user); err != nil {
		logger.Warn(ctx, "failed to record login", "user_id", user.ID, "error", err)
	}

	logger.Info(ctx, "user logged in",
		"user_id", user.ID,
		"email", user.Email)

	return &Token{AccessToken: accessToken, ExpiresAt: expiresAt, TokenType: "Bearer"}, user, nil
}

// Me returns the account behind an authenticated request.
func (s *Service) Me(ctx context.Context, userID string) (*User, error) {
	uid, err := id.Parse(userID)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid subject")
	}
	user, err := s.users.GetByID(ctx, uid)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("user not found")
		}
		return nil, err
	}
	return user, nil
}

// ListUsers lists every account.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.users.List(ctx)
}

// RequestPasswordReset issues a six digit code valid for ResetCodeTTL and
// returns it so the caller can deliver it.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", apperror.NewMissingField("email")
	}
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if apperror.IsNotFound(err) {
			return "", apperror.NewNotFound("user", email)
		}
		return "", err
	}

	code, err := randomCode()
	if err != nil {
		return "", fmt.Errorf("generate reset code: %w", err)
	}
	now := s.now()
	rc := &ResetCode{
		ID:        id.New(),
		UserID:    user.ID,
		CodeHash:  hashCode(code),
		ExpiresAt: now.Add(s.config.ResetCodeTTL),
		CreatedAt: now,
	}
	if err := s.codes.Save(ctx, rc); err != nil {
		return "", fmt.Errorf("save reset code: %w", err)
	}

	logger.Info(ctx, "password reset requested", "user_id", user.ID)
	return code, nil
}

// ResetPassword replaces the password when code matches the newest unused code.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	var missing []string
	if email == "" {
		missing = append(missing, "email")
	}
	if code == "" {
		missing = append(missing, "code")
	}
	if newPassword == "" {
		missing = append(missing, "newPassword")
	}
	if len(missing) > 0 {
		return apperror.NewMissingField(missing...)
	}
	if err := s.checkPassword(newPassword); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewNotFound("user", email)
		}
		return err
	}

	invalid := apperror.NewInvalidInput("code", "invalid or expired")
	rc, err := s.codes.Latest(ctx, user.ID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return invalid
		}
		return err
	}
	now := s.now()
	if !rc.IsValid(now) || rc.CodeHash != hashCode(code) {
		return invalid
	}

	passwordHash, err := s.hash(newPassword)
	if err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		user.PasswordHash = passwordHash
		user.FailedLoginAttempts = 0
		user.LockedUntil = nil
		user.UpdatedAt = now
		if err := s.users.Update(ctx, user); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		if err := s.codes.MarkUsed(ctx, rc.ID, now); err != nil {
			return fmt.Errorf("mark reset code used: %w", err)
		}
		logger.Info(ctx, "password reset", "user_id", user.ID)
		return nil
	})
}

// CleanupResetCodes drops expired reset codes.
func (s *Service) CleanupResetCodes(ctx context.Context) (int64, error) {
	return s.codes.DeleteExpired(ctx, s.now())
}

func (s *Service) checkPassword(password string) error {
	if len(password) < s.config.PasswordMinLength {
		return apperror.NewInvalidInput("password",
			fmt.Sprintf("must be at least %d characters", s.config.PasswordMinLength))
	}
	return nil
}

func (s *Service) hash(password string) (string, error) {
	cost := s.config.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// hashCode creates SHA256 hash of a reset code.
func hashCode(code string) string {
	hash := sha256.Sum256([]byte(code))
	return hex.EncodeToString(hash[:])
}

// randomCode returns a uniformly random code in [100000, 999999].
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
