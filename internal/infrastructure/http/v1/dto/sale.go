package dto

import (
	"github.com/shopspring/decimal"

	"clubledger/internal/core/id"
	"clubledger/internal/core/types"
	"clubledger/internal/domain/documents/sale"
)

// SaleExtraRequest is an add-on charged with a sale line.
type SaleExtraRequest struct {
	Description string      `json:"description"`
	Quantity    int64       `json:"quantity" binding:"min=0"`
	Cost        types.Money `json:"cost"`
}

// SaleItemRequest is one sale line.
type SaleItemRequest struct {
	ProductID   id.ID              `json:"productId"`
	ProductName string             `json:"productName"`
	Quantity    int64              `json:"quantity"`
	UnitPrice   types.Money        `json:"unitPrice"`
	Type        string             `json:"type"`
	CustomPrice bool               `json:"customPrice"`
	Extras      []SaleExtraRequest `json:"extras"`
}

// CreateSaleRequest completes a sale.
type CreateSaleRequest struct {
	Club     string            `json:"club"`
	ClientID *id.ID            `json:"clientId"`
	Items    []SaleItemRequest `json:"items"`
	// Total is optional. A non-zero value must match the computed total.
	Total decimal.NullDecimal `json:"total"`
}

// ToEntity builds the sale for clubID.
func (r *CreateSaleRequest) ToEntity(clubID id.ID) *sale.Sale {
	s := sale.NewSale(clubID)
	s.ClientID = r.ClientID
	if r.Total.Valid {
		s.Total = r.Total.Decimal
	}
	for _, it := range r.Items {
		extras := make([]sale.Extra, len(it.Extras))
		for i, e := range it.Extras {
			extras[i] = sale.Extra{Description: e.Description, Quantity: e.Quantity, Cost: e.Cost}
		}
		s.AddItem(sale.Item{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Type:        sale.ItemType(it.Type),
			CustomPrice: it.CustomPrice,
			Extras:      extras,
		})
	}
	return s
}
