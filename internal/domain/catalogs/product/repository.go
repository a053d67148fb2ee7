package product

import (
	"context"

	"clubledger/internal/core/id"
	"clubledger/internal/domain"
)

// Repository persists products.
type Repository interface {
	domain.ClubRepository[*Product]

	// CreateMany inserts copies in one round-trip.
	CreateMany(ctx context.Context, products []*Product) error

	// UpdatePrices sets the non-null prices of one product.
	UpdatePrices(ctx context.Context, clubID, productID id.ID, upd PriceUpdate) error

	// ListByClubs returns every product of the clubs, ordered by club then name.
	ListByClubs(ctx context.Context, clubIDs []id.ID) ([]*Product, error)
}
