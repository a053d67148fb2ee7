package postgres

import (
	"errors"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"clubledger/internal/core/apperror"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// IsNoRows reports whether err means the query matched nothing.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || pgxscan.NotFound(err)
}

// MapError converts driver errors into AppErrors. entity names the
// table's domain object for messages; unknown errors pass through.
func MapError(err error, entity string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.AsAppError(err); ok {
		return err
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		return apperror.NewDuplicate(entity, pgErr.ConstraintName, "").WithCause(err)
	case pgForeignKeyViolation:
		return apperror.NewValidation("referenced record does not exist").
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case pgCheckViolation:
		return apperror.NewValidation("value violates a constraint").
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	}
	return err
}
