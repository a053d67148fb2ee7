// Package expense records club spending.
package expense

import (
	"context"
	"strings"
	"time"

	"clubledger/internal/core/apperror"
	"clubledger/internal/core/entity"
	"clubledger/internal/core/id"
	"clubledger/internal/core/types"
)

// Category classifies an expense.
type Category string

const (
	CategoryInventory Category = "inventory"
	CategoryServices  Category = "services"
	CategoryPayroll   Category = "payroll"
	CategoryLogistics Category = "logistics"
	CategoryOther     Category = "other"
)

// Categories lists every accepted category.
var Categories = []Category{
	CategoryInventory,
	CategoryServices,
	CategoryPayroll,
	CategoryLogistics,
	CategoryOther,
}

// Valid reports whether c is known.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Expense is one spending entry of a club.
type Expense struct {
	entity.ClubOwned

	Amount   types.Money `db:"amount" json:"amount"`
	Category Category    `db:"category" json:"category"`
	// Date is the day the expense applies to, stored as an instant.
	Date        time.Time `db:"date" json:"date"`
	Description string    `db:"description" json:"description"`
	Supplier    string    `db:"supplier" json:"supplier"`
	IsRecurring bool      `db:"is_recurring" json:"isRecurring"`
	ReceiptURL  string    `db:"receipt_url" json:"receiptUrl,omitempty"`
	Employee    *string   `db:"employee" json:"employee,omitempty"`
}

// NewExpense creates an expense for clubID.
func NewExpense(clubID id.ID, amount types.Money, category Category, date time.Time) *Expense {
	return &Expense{
		ClubOwned: entity.NewClubOwned(clubID),
		Amount:    amount,
		Category:  category,
		Date:      date,
	}
}

// Validate implements entity.Validatable.
func (e *Expense) Validate(_ context.Context) error {
	var missing []string
	if id.IsNil(e.ClubID) {
		missing = append(missing, "club")
	}
	if e.Category == "" {
		missing = append(missing, "category")
	}
	if e.Date.IsZero() {
		missing = append(missing, "date")
	}
	if len(missing) > 0 {
		return apperror.NewMissingField(missing...)
	}
	if !e.Category.Valid() {
		return apperror.NewInvalidInput("category", "expected one of "+categoryList())
	}
	if !e.Amount.IsPositive() {
		return apperror.NewInvalidInput("amount", "must be positive")
	}
	return nil
}

func categoryList() string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
