package dto

import (
	"time"

	"clubledger/internal/core/id"
	"clubledger/internal/core/types"
	"clubledger/internal/domain/expense"
)

// CreateExpenseRequest records an expense.
type CreateExpenseRequest struct {
	Club        string      `json:"club"`
	Amount      types.Money `json:"amount"`
	Category    string      `json:"category" binding:"required,expense_category"`
	Date        time.Time   `json:"date" binding:"required"`
	Description string      `json:"description"`
	Supplier    string      `json:"supplier"`
	IsRecurring bool        `json:"isRecurring"`
	ReceiptURL  string      `json:"receiptUrl" binding:"omitempty,url"`
	Employee    *string     `json:"employee"`
}

// ToEntity builds the expense for clubID.
func (r *CreateExpenseRequest) ToEntity(clubID id.ID) *expense.Expense {
	e := expense.NewExpense(clubID, r.Amount, expense.Category(r.Category), r.Date)
	e.Description = r.Description
	e.Supplier = r.Supplier
	e.IsRecurring = r.IsRecurring
	e.ReceiptURL = r.ReceiptURL
	e.Employee = r.Employee
	return e
}

// UpdateExpenseRequest changes an expense. Nil fields are kept.
type UpdateExpenseRequest struct {
	Club        string       `json:"club"`
	Amount      *types.Money `json:"amount"`
	Category    *string      `json:"category" binding:"omitempty,expense_category"`
	Date        *time.Time   `json:"date"`
	Description *string      `json:"description"`
	Supplier    *string      `json:"supplier"`
	IsRecurring *bool        `json:"isRecurring"`
	ReceiptURL  *string      `json:"receiptUrl"`
	Employee    *string      `json:"employee"`
}

// Apply copies the set fields onto e.
func (r *UpdateExpenseRequest) Apply(e *expense.Expense) error {
	if r.Amount != nil {
		e.Amount = *r.Amount
	}
	if r.Category != nil {
		e.Category = expense.Category(*r.Category)
	}
	if r.Date != nil {
		e.Date = *r.Date
	}
	if r.Description != nil {
		e.Description = *r.Description
	}
	if r.Supplier != nil {
		e.Supplier = *r.Supplier
	}
	if r.IsRecurring != nil {
		e.IsRecurring = *r.IsRecurring
	}
	if r.ReceiptURL != nil {
		e.ReceiptURL = *r.ReceiptURL
	}
	if r.Employee != nil {
		e.Employee = r.Employee
	}
	return nil
}
