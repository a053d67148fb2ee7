package sale

import (
	"context"

	"clubledger/internal/core/id"
	"clubledger/internal/domain"
)

// Repository defines persistence for sales.
type Repository interface {
	Create(ctx context.Context, s *Sale) error
	GetByID(ctx context.Context, clubID, saleID id.ID) (*Sale, error)

	SaveItems(ctx context.Context, saleID id.ID, items []Item) error
	// ItemsBySales returns items keyed by sale id, in line order.
	ItemsBySales(ctx context.Context, saleIDs []id.ID) (map[id.ID][]Item, error)

	// List pages sales newest first. Filter.From/To bound created_at.
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Sale], error)
}
