// Package report_repo provides PostgreSQL implementations for report repositories.
package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"clubledger/internal/core/id"
	"clubledger/internal/core/period"
	"clubledger/internal/domain/reports"
	"clubledger/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository. Every query reads raw rows; the
// engine buckets them in the business zone.
type ReportRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func selectInto[T any](ctx context.Context, r *ReportRepo, q squirrel.SelectBuilder, what string) ([]T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", what, err)
	}
	var rows []T
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", what, err)
	}
	return rows, nil
}

func (r *ReportRepo) salesQuery(clubIDs []id.ID, rng period.Range) squirrel.SelectBuilder {
	return r.builder.
		Select("id", "number", "club_id", "total", "created_at").
		From("sales").
		Where(squirrel.Eq{"club_id": clubIDs, "status": "completed"}).
		Where(squirrel.Expr("created_at BETWEEN ? AND ?", rng.Start, rng.End)).
		OrderBy("created_at", "id")
}

// Sales returns completed sale headers created inside rng.
func (r *ReportRepo) Sales(ctx context.Context, clubIDs []id.ID, rng period.Range) ([]reports.SaleRow, error) {
	if len(clubIDs) == 0 {
		return nil, nil
	}
	return selectInto[reports.SaleRow](ctx, r, r.salesQuery(clubIDs, rng), "sales")
}

func (r *ReportRepo) saleItemsQuery(clubIDs []id.ID, rng period.Range) squirrel.SelectBuilder {
	return r.builder.
		Select(
			"s.id AS sale_id", "s.club_id", "i.product_id", "i.product_name",
			"COALESCE(p.category, '') AS category", "i.type", "i.quantity", "i.amount", "s.created_at",
		).
		From("sale_items i").
		Join("sales s ON s.id = i.sale_id").
		LeftJoin("products p ON p.id = i.product_id AND p.club_id = s.club_id").
		Where(squirrel.Eq{"s.club_id": clubIDs, "s.status": "completed"}).
		Where(squirrel.Expr("s.created_at BETWEEN ? AND ?", rng.Start, rng.End)).
		OrderBy("s.created_at", "s.id", "i.line_no")
}

// SaleItems returns sold lines of completed sales inside rng.
func (r *ReportRepo) SaleItems(ctx context.Context, clubIDs []id.ID, rng period.Range) ([]reports.ItemRow, error) {
	if len(clubIDs) == 0 {
		return nil, nil
	}
	return selectInto[reports.ItemRow](ctx, r, r.saleItemsQuery(clubIDs, rng), "sale items")
}

// Expenses returns expenses dated inside rng.
func (r *ReportRepo) Expenses(ctx context.Context, clubIDs []id.ID, rng period.Range) ([]reports.ExpenseRow, error) {
	if len(clubIDs) == 0 {
		return nil, nil
	}
	q := r.builder.
		Select("id", "club_id", "amount", "category", "date", "description", "supplier", "is_recurring").
		From("expenses").
		Where(squirrel.Eq{"club_id": clubIDs}).
		Where(squirrel.Expr("date BETWEEN ? AND ?", rng.Start, rng.End)).
		OrderBy("date", "created_at", "id")
	return selectInto[reports.ExpenseRow](ctx, r, q, "expenses")
}

// Products returns the catalog of the clubs.
func (r *ReportRepo) Products(ctx context.Context, clubIDs []id.ID) ([]reports.ProductRow, error) {
	if len(clubIDs) == 0 {
		return nil, nil
	}
	q := r.builder.
		Select("id", "club_id", "name", "category", "type", "purchase_price", "sale_price").
		From("products").
		Where(squirrel.Eq{"club_id": clubIDs}).
		OrderBy("club_id", "name", "id")
	return selectInto[reports.ProductRow](ctx, r, q, "products")
}

// Clubs returns the clubs, main first.
func (r *ReportRepo) Clubs(ctx context.Context, clubIDs []id.ID) ([]reports.ClubRow, error) {
	if len(clubIDs) == 0 {
		return nil, nil
	}
	q := r.builder.
		Select("id", "name", "address", "is_main").
		From("clubs").
		Where(squirrel.Eq{"id": clubIDs}).
		OrderBy("is_main DESC", "created_at", "id")
	return selectInto[reports.ClubRow](ctx, r, q, "clubs")
}

// StockByClub sums current balances per club.
func (r *ReportRepo) StockByClub(ctx context.Context, clubIDs []id.ID) (map[id.ID]int64, error) {
	out := make(map[id.ID]int64, len(clubIDs))
	if len(clubIDs) == 0 {
		return out, nil
	}
	q := r.builder.
		Select("club_id", "SUM(quantity)::bigint AS quantity").
		From("inventory_records").
		Where(squirrel.Eq{"club_id": clubIDs}).
		GroupBy("club_id")

	type stockRow struct {
		ClubID   id.ID `db:"club_id"`
		Quantity int64 `db:"quantity"`
	}
	rows, err := selectInto[stockRow](ctx, r, q, "stock by club")
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ClubID] = row.Quantity
	}
	return out, nil
}

var _ reports.Repository = (*ReportRepo)(nil)
