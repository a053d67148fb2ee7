// Package product provides the Product catalog. Products are per club; the
// same article in two clubs is two rows.
package product

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"clubledger/internal/core/apperror"
	"clubledger/internal/core/entity"
	"clubledger/internal/core/id"
	"clubledger/internal/core/types"
)

// Type says whether selling the product consumes stock directly.
type Type string

const (
	// TypeSealed items leave the shelf as-is; a sale decrements stock.
	TypeSealed Type = "sealed"
	// TypePrepared items are made to order; stock moves through
	// use_in_prepared adjustments instead.
	TypePrepared Type = "prepared"
)

// Valid reports whether t is known.
func (t Type) Valid() bool {
	return t == TypeSealed || t == TypePrepared
}

// Product is a sellable article of one club.
type Product struct {
	entity.ClubOwned

	Name          string      `db:"name" json:"name"`
	Category      string      `db:"category" json:"category"`
	Type          Type        `db:"type" json:"type"`
	Description   string      `db:"description" json:"description"`
	PurchasePrice types.Money `db:"purchase_price" json:"purchasePrice"`
	SalePrice     types.Money `db:"sale_price" json:"salePrice"`
	ImageURL      string      `db:"image_url" json:"imageUrl,omitempty"`

	// SourceID points at the main-club product this row was copied from.
	SourceID *id.ID `db:"source_id" json:"sourceId,omitempty"`
}

// NewProduct creates a product for clubID.
func NewProduct(clubID id.ID, name string, t Type) *Product {
	return &Product{
		ClubOwned: entity.NewClubOwned(clubID),
		Name:      strings.TrimSpace(name),
		Type:      t,
	}
}

// Validate implements entity.Validatable.
func (p *Product) Validate(_ context.Context) error {
	var missing []string
	if id.IsNil(p.ClubID) {
		missing = append(missing, "club")
	}
	if p.Name == "" {
		missing = append(missing, "name")
	}
	if p.Type == "" {
		missing = append(missing, "type")
	}
	if len(missing) > 0 {
		return apperror.NewMissingField(missing...)
	}
	if !p.Type.Valid() {
		return apperror.NewInvalidInput("type", "expected sealed or prepared")
	}
	if p.PurchasePrice.IsNegative() {
		return apperror.NewInvalidInput("purchase_price", "must not be negative")
	}
	if p.SalePrice.IsNegative() {
		return apperror.NewInvalidInput("sale_price", "must not be negative")
	}
	return nil
}

// Margin is sale minus purchase price.
func (p *Product) Margin() types.Money {
	return p.SalePrice.Sub(p.PurchasePrice)
}

// CopyTo clones the product into another club with a fresh id.
func (p *Product) CopyTo(clubID id.ID) *Product {
	cp := *p
	cp.ClubOwned = entity.NewClubOwned(clubID)
	src := p.ID
	cp.SourceID = &src
	return &cp
}

// PriceUpdate carries optional new prices. Invalid (null) fields are left unchanged.
type PriceUpdate struct {
	Purchase decimal.NullDecimal
	Sale     decimal.NullDecimal
}

// IsEmpty reports whether nothing would change.
func (u PriceUpdate) IsEmpty() bool {
	return !u.Purchase.Valid && !u.Sale.Valid
}

// Validate rejects negative prices.
func (u PriceUpdate) Validate() error {
	if u.Purchase.Valid && u.Purchase.Decimal.IsNegative() {
		return apperror.NewInvalidInput("purchase_price", "must not be negative")
	}
	if u.Sale.Valid && u.Sale.Decimal.IsNegative() {
		return apperror.NewInvalidInput("sale_price", "must not be negative")
	}
	return nil
}
