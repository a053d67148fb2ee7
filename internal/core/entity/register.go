package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"clubledger/internal/core/id"
)

// MovementType classifies an inventory movement.
type MovementType string

const (
	MovementUseInPrepared MovementType = "use_in_prepared"
	MovementGift          MovementType = "gift"
	MovementDamaged       MovementType = "damaged"
	MovementRestock       MovementType = "restock"
	MovementPurchase      MovementType = "purchase"
	MovementSale          MovementType = "sale"
	MovementOther         MovementType = "other"
)

// MovementTypes lists every accepted type.
var MovementTypes = []MovementType{
	MovementUseInPrepared,
	MovementGift,
	MovementDamaged,
	MovementRestock,
	MovementPurchase,
	MovementSale,
	MovementOther,
}

// Valid reports whether t is a known movement type.
func (t MovementType) Valid() bool {
	for _, known := range MovementTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsInflow reports whether the type is counted as an entry in reports.
// Everything else is counted as an exit regardless of sign.
func (t MovementType) IsInflow() bool {
	return t == MovementRestock || t == MovementPurchase
}

// InflowTypes returns the types IsInflow accepts, as strings for SQL.
func InflowTypes() []string {
	return []string{string(MovementRestock), string(MovementPurchase)}
}

// Direction is derived from the sign of a movement's quantity.
type Direction string

const (
	DirectionIn  Direction = "inflow"
	DirectionOut Direction = "outflow"
)

// DirectionOf returns the direction for a signed quantity. Zero counts as in.
func DirectionOf(qty int64) Direction {
	if qty < 0 {
		return DirectionOut
	}
	return DirectionIn
}

// InventoryMovement is one append-mostly ledger row. The sum of all movement
// quantities for a (club, product) pair is the pair's balance.
type InventoryMovement struct {
	ClubOwned

	ProductID id.ID        `db:"product_id" json:"productId"`
	Type      MovementType `db:"type" json:"type"`
	Direction Direction    `db:"direction" json:"direction"`
	// Quantity is signed: positive adds stock, negative removes it.
	Quantity int64  `db:"quantity" json:"quantity"`
	Notes    string `db:"notes" json:"notes"`

	PurchasePrice decimal.NullDecimal `db:"purchase_price" json:"purchasePrice"`
	SalePrice     decimal.NullDecimal `db:"sale_price" json:"salePrice"`

	// SaleID links movements written by a completed sale.
	SaleID *id.ID `db:"sale_id" json:"saleId,omitempty"`

	CreatedBy string `db:"created_by" json:"createdBy,omitempty"`
}

// NewInventoryMovement creates a movement with direction derived from qty.
func NewInventoryMovement(clubID, productID id.ID, t MovementType, qty int64) *InventoryMovement {
	return &InventoryMovement{
		ClubOwned: NewClubOwned(clubID),
		ProductID: productID,
		Type:      t,
		Direction: DirectionOf(qty),
		Quantity:  qty,
	}
}

// SetQuantity changes the quantity and keeps Direction consistent.
func (m *InventoryMovement) SetQuantity(qty int64) {
	m.Quantity = qty
	m.Direction = DirectionOf(qty)
}

// InventoryRecord is the materialized current balance of one (club, product)
// pair. It equals the sum of the pair's movements.
type InventoryRecord struct {
	ClubID    id.ID     `db:"club_id" json:"club"`
	ProductID id.ID     `db:"product_id" json:"productId"`
	Quantity  int64     `db:"quantity" json:"quantity"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// InventorySnapshot stores the balance of a pair at AsOf: the sum of every
// movement created strictly before AsOf.
type InventorySnapshot struct {
	ClubID    id.ID     `db:"club_id" json:"club"`
	ProductID id.ID     `db:"product_id" json:"productId"`
	AsOf      time.Time `db:"as_of" json:"asOf"`
	Quantity  int64     `db:"quantity" json:"quantity"`
}

// Turnover is the grouped movement summary of one pair over a window.
type Turnover struct {
	ClubID    id.ID `db:"club_id" json:"club"`
	ProductID id.ID `db:"product_id" json:"productId"`
	// Opening is the balance just before the window.
	Opening int64 `db:"opening" json:"opening"`
	// Inflow and Outflow are absolute sums by type classification.
	Inflow  int64 `db:"inflow" json:"inflow"`
	Outflow int64 `db:"outflow" json:"outflow"`
	// Net is the signed sum of quantities inside the window.
	Net int64 `db:"net" json:"net"`
}

// Closing returns the balance at the end of the window.
func (t Turnover) Closing() int64 {
	return t.Opening + t.Net
}
