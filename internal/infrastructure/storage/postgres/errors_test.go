package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"clubledger/internal/core/apperror"
)

func TestMapError(t *testing.T) {
	t.Run("unique violation", func(t *testing.T) {
		err := MapError(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "clubs_owner_name_key"}), "club")
		appErr, ok := apperror.AsAppError(err)
		assert.True(t, ok)
		assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
	})

	t.Run("foreign key violation", func(t *testing.T) {
		err := MapError(&pgconn.PgError{Code: "23503"}, "movement")
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("other errors pass through", func(t *testing.T) {
		boom := errors.New("boom")
		assert.Same(t, boom, MapError(boom, "x"))
		assert.Nil(t, MapError(nil, "x"))
	})
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, IsNoRows(fmt.Errorf("get: %w", pgx.ErrNoRows)))
	assert.False(t, IsNoRows(errors.New("nope")))
}
