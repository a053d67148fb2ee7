// Package document_repo provides PostgreSQL implementations for document repositories.
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"clubledger/internal/core/id"
	"clubledger/internal/domain/documents/sale"
	"clubledger/internal/infrastructure/storage/postgres"
	"clubledger/internal/infrastructure/storage/postgres/catalog_repo"
)

const (
	salesTable     = "sales"
	saleItemsTable = "sale_items"
)

var itemCols = []string{
	"line_id", "sale_id", "line_no", "product_id", "product_name",
	"quantity", "unit_price", "type", "custom_price", "extras", "amount",
}

// SaleRepo implements sale.Repository. Headers reuse the club-scoped base;
// items live in their own table keyed by sale.
type SaleRepo struct {
	*catalog_repo.BaseClubRepo[*sale.Sale]
}

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(txManager *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		BaseClubRepo: catalog_repo.NewBaseClubRepo[*sale.Sale](
			txManager,
			salesTable, "sale",
			postgres.ExtractDBColumns[sale.Sale](),
			func() *sale.Sale { return &sale.Sale{} },
			catalog_repo.WithSearch("number", "created_by_name"),
			catalog_repo.WithDateColumn("created_at"),
			catalog_repo.WithDefaultOrder("created_at DESC"),
		),
	}
}

// itemsInsert builds one multi-row INSERT for the items of a sale.
func (r *SaleRepo) itemsInsert(saleID id.ID, items []sale.Item) squirrel.InsertBuilder {
	q := r.Builder().Insert(saleItemsTable).Columns(itemCols...)
	for _, it := range items {
		extras := it.Extras
		if extras == nil {
			extras = []sale.Extra{}
		}
		q = q.Values(
			it.LineID, saleID, it.LineNo, it.ProductID, it.ProductName,
			it.Quantity, it.UnitPrice, it.Type, it.CustomPrice, extras, it.Amount,
		)
	}
	return q
}

// SaveItems inserts the items of a sale.
func (r *SaleRepo) SaveItems(ctx context.Context, saleID id.ID, items []sale.Item) error {
	if len(items) == 0 {
		return nil
	}
	sql, args, err := r.itemsInsert(saleID, items).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert sale items: %w", err), "sale_item")
	}
	return nil
}

type itemRow struct {
	SaleID id.ID `db:"sale_id"`
	sale.Item
}

// ItemsBySales returns items keyed by sale id, in line order.
func (r *SaleRepo) ItemsBySales(ctx context.Context, saleIDs []id.ID) (map[id.ID][]sale.Item, error) {
	out := make(map[id.ID][]sale.Item, len(saleIDs))
	if len(saleIDs) == 0 {
		return out, nil
	}

	sql, args, err := r.Builder().
		Select(itemCols...).
		From(saleItemsTable).
		Where(squirrel.Eq{"sale_id": saleIDs}).
		OrderBy("sale_id", "line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []itemRow
	if err := pgxscan.Select(ctx, r.Querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select sale items: %w", err)
	}
	for _, row := range rows {
		out[row.SaleID] = append(out[row.SaleID], row.Item)
	}
	return out, nil
}

var _ sale.Repository = (*SaleRepo)(nil)
