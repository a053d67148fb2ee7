package auth

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"clubledger/internal/core/apperror"
	"clubledger/internal/core/id"
)

type memUsers struct {
	mu   sync.Mutex
	rows map[id.ID]User
}

func newMemUsers() *memUsers { return &memUsers{rows: make(map[id.ID]User)} }

func (m *memUsers) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[u.ID] = *u
	return nil
}

func (m *memUsers) GetByID(_ context.Context, userID id.ID) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID)
	}
	return &u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperror.NewNotFound("user", email)
}

func (m *memUsers) Update(ctx context.Context, u *User) error { return m.Create(ctx, u) }

func (m *memUsers) Exists(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	return err == nil, nil
}

func (m *memUsers) List(_ context.Context) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]User, 0, len(m.rows))
	for _, u := range m.rows {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

type memCodes struct {
	rows []ResetCode
}

func (m *memCodes) Save(_ context.Context, c *ResetCode) error {
	m.rows = append(m.rows, *c)
	return nil
}

func (m *memCodes) Latest(_ context.Context, userID id.ID) (*ResetCode, error) {
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].UserID == userID {
			c := m.rows[i]
			return &c, nil
		}
	}
	return nil, apperror.NewNotFound("reset_code", userID)
}

func (m *memCodes) MarkUsed(_ context.Context, codeID id.ID, at time.Time) error {
	for i := range m.rows {
		if m.rows[i].ID == codeID {
			m.rows[i].UsedAt = &at
		}
	}
	return nil
}

func (m *memCodes) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	var kept []ResetCode
	var n int64
	for _, c := range m.rows {
		if c.ExpiresAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, c)
	}
	m.rows = kept
	return n, nil
}

type passTx struct{}

func (passTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService(t *testing.T) (*Service, *memUsers, *memCodes, *time.Time) {
	t.Helper()
	users, codes := newMemUsers(), &memCodes{}
	cfg := DefaultServiceConfig()
	cfg.BcryptCost = bcrypt.MinCost
	cfg.MaxLoginAttempts = 3

	clock := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	jwtSvc := NewJWTService(DefaultJWTConfig("test-secret"))
	jwtSvc.now = func() time.Time { return clock }
	svc := NewService(users, codes, passTx{}, jwtSvc, cfg)
	svc.now = func() time.Time { return clock }
	return svc, users, codes, &clock
}

func register(t *testing.T, svc *Service) *User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterRequest{
		FullName:      "Ana Owner",
		Email:         "  Ana@Example.com ",
		Password:      "secret123",
		AcceptedTerms: true,
	})
	require.NoError(t, err)
	return u
}

func TestService_Register(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	u := register(t, svc)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, RoleOwner, u.Role)
	assert.NotEqual(t, "secret123", u.PasswordHash)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterRequest{
			FullName: "Other", Email: "ANA@example.com", Password: "secret123", AcceptedTerms: true,
		})
		assert.Equal(t, http.StatusConflict, apperror.GetHTTPStatus(err))
	})

	t.Run("terms must be accepted", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterRequest{FullName: "B", Email: "b@example.com", Password: "secret123"})
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeMissingField, appErr.Code)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterRequest{FullName: "B", Email: "b@example.com", Password: "123", AcceptedTerms: true})
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("bad email", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterRequest{FullName: "B", Email: "nope", Password: "secret123", AcceptedTerms: true})
		assert.True(t, apperror.IsValidation(err))
	})
}

func TestService_LoginAndToken(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	u := register(t, svc)

	tok, got, err := svc.Login(ctx, Credentials{Email: "ANA@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "Bearer", tok.TokenType)
	require.NotNil(t, got.LastLoginAt)

	uc, err := svc.jwtService.ValidateToken(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), uc.UserID)
	assert.Equal(t, RoleOwner, uc.Role)
	assert.Equal(t, "Ana Owner", uc.Name)

	me, err := svc.Me(ctx, uc.UserID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", me.Email)
}

func TestService_Login_Failures(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	ctx := context.Background()
	u := register(t, svc)

	_, _, err := svc.Login(ctx, Credentials{Email: "ghost@example.com", Password: "secret123"})
	assert.Equal(t, http.StatusUnauthorized, apperror.GetHTTPStatus(err))

	_, _, err = svc.Login(ctx, Credentials{Email: "ana@example.com"})
	assert.True(t, apperror.IsValidation(err))

	for range 3 {
		_, _, err = svc.Login(ctx, Credentials{Email: "ana@example.com", Password: "wrong-pass"})
		assert.Equal(t, http.StatusUnauthorized, apperror.GetHTTPStatus(err))
	}

	stored, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.FailedLoginAttempts)
	require.NotNil(t, stored.LockedUntil)

	_, _, err = svc.Login(ctx, Credentials{Email: "ana@example.com", Password: "secret123"})
	assert.Equal(t, http.StatusForbidden, apperror.GetHTTPStatus(err), "locked account")
}

func TestJWTService_RejectsForeignAndExpiredTokens(t *testing.T) {
	clock := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	a := NewJWTService(DefaultJWTConfig("secret-a"))
	a.now = func() time.Time { return clock }
	b := NewJWTService(DefaultJWTConfig("secret-b"))
	b.now = a.now

	tok, _, err := a.GenerateAccessToken(NewUser("x@example.com", "X", "hash"))
	require.NoError(t, err)

	_, err = b.ValidateToken(tok)
	assert.Error(t, err)

	a.now = func() time.Time { return clock.Add(25 * time.Hour) }
	_, err = a.ValidateToken(tok)
	assert.Error(t, err)
}

func TestService_PasswordReset(t *testing.T) {
	svc, _, codes, clock := newTestService(t)
	ctx := context.Background()
	register(t, svc)

	code, err := svc.RequestPasswordReset(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Len(t, code, 6)
	require.Len(t, codes.rows, 1)
	assert.NotEqual(t, code, codes.rows[0].CodeHash)

	err = svc.ResetPassword(ctx, "ana@example.com", "000000", "newsecret")
	assert.True(t, apperror.IsValidation(err), "wrong code")

	require.NoError(t, svc.ResetPassword(ctx, "ana@example.com", code, "newsecret"))

	_, _, err = svc.Login(ctx, Credentials{Email: "ana@example.com", Password: "newsecret"})
	require.NoError(t, err)

	err = svc.ResetPassword(ctx, "ana@example.com", code, "another1")
	assert.True(t, apperror.IsValidation(err), "code is single use")

	_, err = svc.RequestPasswordReset(ctx, "ghost@example.com")
	assert.True(t, apperror.IsNotFound(err))

	*clock = clock.Add(time.Hour)
	n, err := svc.CleanupResetCodes(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
