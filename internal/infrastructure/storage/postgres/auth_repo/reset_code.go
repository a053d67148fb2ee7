package auth_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"clubledger/internal/core/apperror"
	"clubledger/internal/core/id"
	"clubledger/internal/domain/auth"
	"clubledger/internal/infrastructure/storage/postgres"
)

// ResetCodeRepo implements auth.ResetCodeRepository.
type ResetCodeRepo struct {
	txManager *postgres.TxManager
}

// NewResetCodeRepo creates a new reset code repository.
func NewResetCodeRepo(txManager *postgres.TxManager) *ResetCodeRepo {
	return &ResetCodeRepo{txManager: txManager}
}

// Save stores a reset code.
func (r *ResetCodeRepo) Save(ctx context.Context, code *auth.ResetCode) error {
	query := `
		INSERT INTO password_reset_codes (id, user_id, code_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.txManager.GetQuerier(ctx).Exec(ctx, query,
		code.ID, code.UserID, code.CodeHash, code.ExpiresAt, code.CreatedAt)
	if err != nil {
		return fmt.Errorf("save reset code: %w", err)
	}
	return nil
}

// Latest returns the newest code of a user.
func (r *ResetCodeRepo) Latest(ctx context.Context, userID id.ID) (*auth.ResetCode, error) {
	query := `
		SELECT id, user_id, code_hash, expires_at, used_at, created_at
		FROM password_reset_codes
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var code auth.ResetCode
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &code, query, userID); err != nil {
		if postgres.IsNoRows(err) {
			return nil, apperror.NewNotFound("reset_code", userID.String())
		}
		return nil, fmt.Errorf("get reset code: %w", err)
	}
	return &code, nil
}

// MarkUsed stamps a code as consumed.
func (r *ResetCodeRepo) MarkUsed(ctx context.Context, codeID id.ID, at time.Time) error {
	query := `UPDATE password_reset_codes SET used_at = $2 WHERE id = $1 AND used_at IS NULL`
	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, query, codeID, at)
	if err != nil {
		return fmt.Errorf("mark reset code used: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConflict("reset code already used")
	}
	return nil
}

// DeleteExpired removes codes that expired before the given instant.
func (r *ResetCodeRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.txManager.GetQuerier(ctx).Exec(ctx,
		"DELETE FROM password_reset_codes WHERE expires_at < $1", before)
	if err != nil {
		return 0, fmt.Errorf("delete expired reset codes: %w", err)
	}
	return result.RowsAffected(), nil
}

var _ auth.ResetCodeRepository = (*ResetCodeRepo)(nil)
