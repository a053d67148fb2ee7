package reports

import (
	"context"
	"time"

	"clubledger/internal/core/entity"
	"clubledger/internal/core/id"
	"clubledger/internal/core/period"
	"clubledger/internal/core/scope"
	"clubledger/internal/core/types"
	"clubledger/internal/domain/registers/inventory"
)

// SaleRow is a sale header.
type SaleRow struct {
	ID        id.ID       `db:"id"`
	Number    string      `db:"number"`
	ClubID    id.ID       `db:"club_id"`
	Total     types.Money `db:"total"`
	CreatedAt time.Time   `db:"created_at"`
}

// ItemRow is a sold line joined with its sale time and product category.
type ItemRow struct {
	SaleID      id.ID       `db:"sale_id"`
	ClubID      id.ID       `db:"club_id"`
	ProductID   id.ID       `db:"product_id"`
	ProductName string      `db:"product_name"`
	Category    string      `db:"category"`
	Type        string      `db:"type"`
	Quantity    int64       `db:"quantity"`
	Amount      types.Money `db:"amount"`
	CreatedAt   time.Time   `db:"created_at"`
}

// ExpenseRow is an expense.
type ExpenseRow struct {
	ID          id.ID       `db:"id"`
	ClubID      id.ID       `db:"club_id"`
	Amount      types.Money `db:"amount"`
	Category    string      `db:"category"`
	Date        time.Time   `db:"date"`
	Description string      `db:"description"`
	Supplier    string      `db:"supplier"`
	IsRecurring bool        `db:"is_recurring"`
}

// ProductRow is a catalog product.
type ProductRow struct {
	ID            id.ID       `db:"id"`
	ClubID        id.ID       `db:"club_id"`
	Name          string      `db:"name"`
	Category      string      `db:"category"`
	Type          string      `db:"type"`
	PurchasePrice types.Money `db:"purchase_price"`
	SalePrice     types.Money `db:"sale_price"`
}

// ClubRow is a club.
type ClubRow struct {
	ID      id.ID  `db:"id"`
	Name    string `db:"name"`
	Address string `db:"address"`
	IsMain  bool   `db:"is_main"`
}

// Repository reads report sources. Every method filters by club_id = ANY(clubIDs)
// and returns rows ordered by their key (date or id), then creation time.
type Repository interface {
	Sales(ctx context.Context, clubIDs []id.ID, r period.Range) ([]SaleRow, error)
	SaleItems(ctx context.Context, clubIDs []id.ID, r period.Range) ([]ItemRow, error)
	Expenses(ctx context.Context, clubIDs []id.ID, r period.Range) ([]ExpenseRow, error)
	Products(ctx context.Context, clubIDs []id.ID) ([]ProductRow, error)
	Clubs(ctx context.Context, clubIDs []id.ID) ([]ClubRow, error)
	// StockByClub sums current balances per club.
	StockByClub(ctx context.Context, clubIDs []id.ID) (map[id.ID]int64, error)
}

// Stock is the ledger view reports need.
type Stock interface {
	ReconstructAll(ctx context.Context, sc scope.Scope, r period.Range) ([]inventory.StockLine, error)
	Movements(ctx context.Context, filter inventory.MovementFilter) ([]entity.InventoryMovement, error)
}

// Cache stores rendered reports. Get returns nil on a miss.
//
// Generation returns a token that changes after every committed write to any
// of clubIDs; it is part of each key, so a write makes earlier entries of
// its clubs unreachable.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Generation(ctx context.Context, clubIDs []id.ID) (string, error)
}
