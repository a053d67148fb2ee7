// Package inventory is the stock ledger: an append-mostly list of signed
// movements per (club, product) and a materialized balance kept equal to
// their sum. Edits and deletions of past movements are reconciled into the
// balance, and historical stock can be reconstructed for any window.
package inventory

import (
	"context"
	"time"

	"clubledger/internal/core/entity"
	"clubledger/internal/core/id"
)

// Repository defines persistence for the ledger.
type Repository interface {
	// Movements

	CreateMovement(ctx context.Context, m *entity.InventoryMovement) error

	// GetMovement loads a movement of clubID. Movements of other clubs are not found.
	GetMovement(ctx context.Context, clubID, movementID id.ID) (*entity.InventoryMovement, error)

	// GetMovementForUpdate is GetMovement with a row lock held until commit.
	GetMovementForUpdate(ctx context.Context, clubID, movementID id.ID) (*entity.InventoryMovement, error)

	UpdateMovement(ctx context.Context, m *entity.InventoryMovement) error
	DeleteMovement(ctx context.Context, clubID, movementID id.ID) error

	// ListMovements returns movements newest first.
	ListMovements(ctx context.Context, filter MovementFilter) ([]entity.InventoryMovement, error)

	// Balances

	// ApplyDelta adds delta to the pair's record, creating it when absent,
	// in a single atomic statement.
	ApplyDelta(ctx context.Context, clubID, productID id.ID, delta int64) (*entity.InventoryRecord, error)

	// AddToExisting adds delta only when the record exists. It returns nil
	// without error when there is no record.
	AddToExisting(ctx context.Context, clubID, productID id.ID, delta int64) (*entity.InventoryRecord, error)

	// GetRecord loads the pair's balance, nil when there is none.
	GetRecord(ctx context.Context, clubID, productID id.ID) (*entity.InventoryRecord, error)

	ListRecords(ctx context.Context, filter RecordFilter) ([]StockItem, error)

	// SetRecord overwrites a balance. Used only by drift repair.
	SetRecord(ctx context.Context, clubID, productID id.ID, quantity int64) error

	// Reconstruction

	// SumMovements returns Σ quantity per product of a club.
	SumMovements(ctx context.Context, clubID id.ID) (map[id.ID]int64, error)

	// Turnover groups movements per (club, product) for a window, starting
	// from the latest snapshot at or before filter.From.
	Turnover(ctx context.Context, filter TurnoverFilter) ([]entity.Turnover, error)

	SaveSnapshots(ctx context.Context, snaps []entity.InventorySnapshot) (int64, error)

	// InvalidateSnapshots drops snapshots of the pair taken after t.
	InvalidateSnapshots(ctx context.Context, clubID, productID id.ID, after time.Time) error
}

// MovementFilter narrows ListMovements.
type MovementFilter struct {
	ClubIDs   []id.ID
	ProductID *id.ID
	Types     []entity.MovementType
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// RecordFilter narrows ListRecords.
type RecordFilter struct {
	ClubIDs []id.ID
	// Below keeps records with quantity strictly less than the value.
	Below *int64
}

// StockItem is a balance joined with its product.
type StockItem struct {
	entity.InventoryRecord
	ProductName string `db:"product_name" json:"productName"`
	Category    string `db:"category" json:"category"`
}

// TurnoverFilter selects the window and scope of a reconstruction.
type TurnoverFilter struct {
	ClubIDs   []id.ID
	ProductID *id.ID
	From      time.Time
	To        time.Time
}
