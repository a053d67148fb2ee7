package dto

import (
	"strings"

	"github.com/shopspring/decimal"

	"clubledger/internal/core/entity"
	"clubledger/internal/core/id"
	"clubledger/internal/domain/registers/inventory"
)

// AdjustRequest records a movement. Required fields are checked by the
// ledger so that their absence is reported as MISSING_FIELD.
type AdjustRequest struct {
	Club               string              `json:"club"`
	ProductID          string              `json:"productId"`
	Type               string              `json:"type"`
	Quantity           LooseInt            `json:"quantity"`
	Notes              string              `json:"notes"`
	PurchasePrice      decimal.NullDecimal `json:"purchasePrice"`
	SalePrice          decimal.NullDecimal `json:"salePrice"`
	UpdateCatalogPrice bool                `json:"updateCatalogPrice"`
}

// ToInput converts to the ledger input. A malformed product id is treated
// as absent.
func (r *AdjustRequest) ToInput(clubID id.ID) inventory.AdjustInput {
	productID, _ := id.Parse(strings.TrimSpace(r.ProductID))
	return inventory.AdjustInput{
		ClubID:             clubID,
		ProductID:          productID,
		Type:               entity.MovementType(strings.TrimSpace(r.Type)),
		Quantity:           r.Quantity.Ptr(),
		Notes:              r.Notes,
		PurchasePrice:      r.PurchasePrice,
		SalePrice:          r.SalePrice,
		UpdateCatalogPrice: r.UpdateCatalogPrice,
	}
}

// EditMovementRequest changes a recorded movement.
type EditMovementRequest struct {
	Club     string   `json:"club"`
	Type     *string  `json:"type" binding:"omitempty,movement_type"`
	Quantity LooseInt `json:"quantity"`
	Notes    *string  `json:"notes"`
}

// ToInput converts to the ledger input.
func (r *EditMovementRequest) ToInput(clubID, movementID id.ID) inventory.EditInput {
	in := inventory.EditInput{
		ClubID:     clubID,
		MovementID: movementID,
		Quantity:   r.Quantity.Ptr(),
		Notes:      r.Notes,
	}
	if r.Type != nil {
		t := entity.MovementType(*r.Type)
		in.Type = &t
	}
	return in
}

// LowStockQuery filters the low-stock list.
type LowStockQuery struct {
	Club      string `form:"club"`
	Threshold int64  `form:"threshold" binding:"omitempty,min=0"`
}
