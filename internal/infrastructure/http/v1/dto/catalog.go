package dto

import (
	"github.com/shopspring/decimal"

	"clubledger/internal/core/id"
	"clubledger/internal/core/types"
	"clubledger/internal/domain/catalogs/club"
	"clubledger/internal/domain/catalogs/product"
)

// CreateClubRequest creates a club for the caller.
type CreateClubRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Timezone string `json:"timezone" binding:"omitempty,timezone"`
}

// ToInput converts to the club service input.
func (r *CreateClubRequest) ToInput() club.CreateInput {
	return club.CreateInput{Name: r.Name, Address: r.Address, Timezone: r.Timezone}
}

// CreateProductRequest creates a product in one club.
type CreateProductRequest struct {
	Club          string      `json:"club"`
	Name          string      `json:"name"`
	Category      string      `json:"category"`
	Type          string      `json:"type"`
	Description   string      `json:"description"`
	PurchasePrice types.Money `json:"purchasePrice"`
	SalePrice     types.Money `json:"salePrice"`
	ImageURL      string      `json:"imageUrl" binding:"omitempty,url"`
}

// ToEntity builds the product for clubID.
func (r *CreateProductRequest) ToEntity(clubID id.ID) *product.Product {
	p := product.NewProduct(clubID, r.Name, product.Type(r.Type))
	p.Category = r.Category
	p.Description = r.Description
	p.PurchasePrice = r.PurchasePrice
	p.SalePrice = r.SalePrice
	p.ImageURL = r.ImageURL
	return p
}

// UpdatePricesRequest changes catalog prices. Omitted prices are kept.
type UpdatePricesRequest struct {
	Club          string              `json:"club"`
	PurchasePrice decimal.NullDecimal `json:"purchasePrice"`
	SalePrice     decimal.NullDecimal `json:"salePrice"`
}

// ToUpdate converts to the catalog update.
func (r *UpdatePricesRequest) ToUpdate() product.PriceUpdate {
	return product.PriceUpdate{Purchase: r.PurchasePrice, Sale: r.SalePrice}
}
