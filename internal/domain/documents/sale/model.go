// Package sale provides the point-of-sale document and its atomic completion.
package sale

import (
	"context"

	"clubledger/internal/core/apperror"
	"clubledger/internal/core/entity"
	"clubledger/internal/core/id"
	"clubledger/internal/core/types"
)

// Status of a sale.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ItemType tells whether an item draws stock.
type ItemType string

const (
	// ItemSealed items are sold as stocked and leave the ledger.
	ItemSealed ItemType = "sealed"
	// ItemPrepared items are made on site and do not move stock.
	ItemPrepared ItemType = "prepared"
)

// Valid reports whether t is known.
func (t ItemType) Valid() bool {
	return t == ItemSealed || t == ItemPrepared
}

// Extra is an add-on charged on top of an item.
type Extra struct {
	Description string      `json:"description"`
	Quantity    int64       `json:"quantity"`
	Cost        types.Money `json:"cost"`
}

// Amount is quantity times cost.
func (e Extra) Amount() types.Money {
	return e.Cost.Mul(types.NewMoneyFromInt(e.Quantity))
}

// Item is one sold line.
type Item struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID   id.ID       `db:"product_id" json:"productId"`
	ProductName string      `db:"product_name" json:"productName"`
	Quantity    int64       `db:"quantity" json:"quantity"`
	UnitPrice   types.Money `db:"unit_price" json:"unitPrice"`
	Type        ItemType    `db:"type" json:"type"`
	CustomPrice bool        `db:"custom_price" json:"customPrice"`
	Extras      []Extra     `db:"extras" json:"extras"`

	// Amount is quantity times unit price plus extras.
	Amount types.Money `db:"amount" json:"amount"`
}

func (it Item) computeAmount() types.Money {
	amount := it.UnitPrice.Mul(types.NewMoneyFromInt(it.Quantity))
	for _, e := range it.Extras {
		amount = amount.Add(e.Amount())
	}
	return amount
}

// Sale is a completed point-of-sale ticket.
type Sale struct {
	entity.ClubOwned

	Number   string      `db:"number" json:"number"`
	ClientID *id.ID      `db:"client_id" json:"clientId,omitempty"`
	Total    types.Money `db:"total" json:"total"`
	Status   Status      `db:"status" json:"status"`

	CreatedBy     string `db:"created_by" json:"createdBy"`
	CreatedByName string `db:"created_by_name" json:"createdByName"`

	Items []Item `db:"-" json:"items"`
}

// NewSale creates an empty sale for clubID.
func NewSale(clubID id.ID) *Sale {
	return &Sale{
		ClubOwned: entity.NewClubOwned(clubID),
		Items:     make([]Item, 0),
	}
}

// AddItem appends a line and numbers it.
func (s *Sale) AddItem(it Item) {
	it.LineID = id.New()
	it.LineNo = len(s.Items) + 1
	if it.Type == "" {
		it.Type = ItemSealed
	}
	it.Amount = it.computeAmount()
	s.Items = append(s.Items, it)
}

// ComputeTotal sums quantity times unit price plus every extra.
func (s *Sale) ComputeTotal() types.Money {
	total := types.Zero()
	for _, it := range s.Items {
		total = total.Add(it.computeAmount())
	}
	return total
}

// Validate implements entity.Validatable.
func (s *Sale) Validate(_ context.Context) error {
	if id.IsNil(s.ClubID) {
		return apperror.NewMissingField("club")
	}
	if len(s.Items) == 0 {
		return apperror.NewValidation("at least one item is required").
			WithDetail("field", "items")
	}

	for i, it := range s.Items {
		if id.IsNil(it.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if it.Quantity <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if it.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price must not be negative").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if !it.Type.Valid() {
			return apperror.NewInvalidInput("type", "expected sealed or prepared").
				WithDetail("lineNo", i+1)
		}
		for _, e := range it.Extras {
			if e.Quantity < 0 || e.Cost.IsNegative() {
				return apperror.NewValidation("extras must not be negative").
					WithDetail("field", "items").
					WithDetail("lineNo", i+1)
			}
		}
	}
	return nil
}

// SealedItems returns the lines that draw stock.
func (s *Sale) SealedItems() []Item {
	var out []Item
	for _, it := range s.Items {
		if it.Type == ItemSealed {
			out = append(out, it)
		}
	}
	return out
}
