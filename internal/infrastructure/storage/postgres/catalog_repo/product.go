package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"clubledger/internal/core/apperror"
	"clubledger/internal/core/id"
	"clubledger/internal/domain/catalogs/product"
	"clubledger/internal/infrastructure/storage/postgres"
)

const productTable = "products"

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseClubRepo[*product.Product]
	batch *postgres.BatchWriter
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseClubRepo: NewBaseClubRepo[*product.Product](
			txManager,
			productTable, "product",
			postgres.ExtractDBColumns[product.Product](),
			func() *product.Product { return new(product.Product) },
			WithSearch("name", "category", "description"),
			WithDefaultOrder("name ASC"),
		),
		batch: postgres.NewBatchWriter(txManager),
	}
}

// CreateMany queues one insert per product and sends them in one round-trip.
// It must run inside a transaction.
func (r *ProductRepo) CreateMany(ctx context.Context, products []*product.Product) error {
	stmts := make([]postgres.Statement, 0, len(products))
	for _, p := range products {
		q, err := r.InsertBuilder(p)
		if err != nil {
			return err
		}
		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		stmts = append(stmts, postgres.Statement{SQL: sql, Args: args})
	}
	if err := r.batch.Exec(ctx, stmts); err != nil {
		return postgres.MapError(err, "product")
	}
	return nil
}

// UpdatePrices sets the non-null prices of one product.
func (r *ProductRepo) UpdatePrices(ctx context.Context, clubID, productID id.ID, upd product.PriceUpdate) error {
	q := r.Builder().
		Update(productTable).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": productID, "club_id": clubID})
	if upd.Purchase.Valid {
		q = q.Set("purchase_price", upd.Purchase.Decimal)
	}
	if upd.Sale.Valid {
		q = q.Set("sale_price", upd.Sale.Decimal)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update prices: %w", err)
	}
	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update prices: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID.String())
	}
	return nil
}

// ListByClubs returns every product of the clubs, ordered by club then name.
func (r *ProductRepo) ListByClubs(ctx context.Context, clubIDs []id.ID) ([]*product.Product, error) {
	if len(clubIDs) == 0 {
		return nil, nil
	}
	q := r.baseSelect().
		Where(squirrel.Eq{"club_id": clubIDs}).
		OrderBy("club_id", "name", "id")
	return r.FindMany(ctx, q)
}

var _ product.Repository = (*ProductRepo)(nil)
