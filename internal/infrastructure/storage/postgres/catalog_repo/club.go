package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"clubledger/internal/core/apperror"
	"clubledger/internal/core/id"
	"clubledger/internal/domain/catalogs/club"
	"clubledger/internal/infrastructure/storage/postgres"
)

const clubTable = "clubs"

// ClubRepo implements club.Repository. Clubs are not club-owned rows, so it
// does not embed BaseClubRepo.
type ClubRepo struct {
	txManager *postgres.TxManager
	cols      []string
}

// NewClubRepo creates a new club repository.
func NewClubRepo(txManager *postgres.TxManager) *ClubRepo {
	return &ClubRepo{
		txManager: txManager,
		cols:      postgres.ExtractDBColumns[club.Club](),
	}
}

func (r *ClubRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a club.
func (r *ClubRepo) Create(ctx context.Context, c *club.Club) error {
	sql, args, err := r.builder().
		Insert(clubTable).
		SetMap(postgres.StructToMap(c)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert club: %w", err), "club")
	}
	return nil
}

// GetByID loads a club.
func (r *ClubRepo) GetByID(ctx context.Context, clubID id.ID) (*club.Club, error) {
	sql, args, err := r.builder().
		Select(r.cols...).
		From(clubTable).
		Where(squirrel.Eq{"id": clubID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c club.Club
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &c, sql, args...); err != nil {
		if postgres.IsNoRows(err) {
			return nil, apperror.NewNotFound("club", clubID.String())
		}
		return nil, fmt.Errorf("get club: %w", err)
	}
	return &c, nil
}

func (r *ClubRepo) list(ctx context.Context, where squirrel.Sqlizer) ([]club.Club, error) {
	sql, args, err := r.builder().
		Select(r.cols...).
		From(clubTable).
		Where(where).
		OrderBy("is_main DESC", "created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var clubs []club.Club
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &clubs, sql, args...); err != nil {
		return nil, fmt.Errorf("list clubs: %w", err)
	}
	return clubs, nil
}

// ListByOwner returns the owner's clubs, main club first.
func (r *ClubRepo) ListByOwner(ctx context.Context, ownerID id.ID) ([]club.Club, error) {
	return r.list(ctx, squirrel.Eq{"owner_id": ownerID})
}

// ListByIDs returns the given clubs.
func (r *ClubRepo) ListByIDs(ctx context.Context, clubIDs []id.ID) ([]club.Club, error) {
	if len(clubIDs) == 0 {
		return nil, nil
	}
	return r.list(ctx, squirrel.Eq{"id": clubIDs})
}

// CountByOwner counts the owner's clubs.
func (r *ClubRepo) CountByOwner(ctx context.Context, ownerID id.ID) (int, error) {
	sql, args, err := r.builder().
		Select("COUNT(*)").
		From(clubTable).
		Where(squirrel.Eq{"owner_id": ownerID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var n int
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count clubs: %w", err)
	}
	return n, nil
}

// ListAllIDs returns every club id.
func (r *ClubRepo) ListAllIDs(ctx context.Context) ([]id.ID, error) {
	var ids []id.ID
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &ids,
		"SELECT id FROM "+clubTable+" ORDER BY created_at, id"); err != nil {
		return nil, fmt.Errorf("list club ids: %w", err)
	}
	return ids, nil
}

var _ club.Repository = (*ClubRepo)(nil)
