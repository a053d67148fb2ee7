package club

import (
	"context"

	"clubledger/internal/core/id"
)

// Repository persists clubs.
type Repository interface {
	Create(ctx context.Context, c *Club) error
	GetByID(ctx context.Context, clubID id.ID) (*Club, error)

	// ListByOwner returns the owner's clubs, main club first, then by creation.
	ListByOwner(ctx context.Context, ownerID id.ID) ([]Club, error)

	// ListByIDs returns the given clubs in the same order as ListByOwner.
	ListByIDs(ctx context.Context, clubIDs []id.ID) ([]Club, error)

	CountByOwner(ctx context.Context, ownerID id.ID) (int, error)

	// ListAllIDs returns every club id. Used by the worker.
	ListAllIDs(ctx context.Context) ([]id.ID, error)
}
