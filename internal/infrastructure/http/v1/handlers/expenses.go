package handlers

import (
	"context"

	"clubledger/internal/core/id"
	"clubledger/internal/domain/expense"
	"clubledger/internal/infrastructure/http/v1/dto"
)

// ExpenseService is the expense surface used over HTTP.
type ExpenseService interface {
	ClubCRUDService[*expense.Expense]
	Edit(ctx context.Context, clubID, expenseID id.ID, fn func(e *expense.Expense) error) (*expense.Expense, error)
}

// ExpenseHandler handles /expenses.
type ExpenseHandler = ClubCRUDHandler[*expense.Expense, dto.CreateExpenseRequest, dto.UpdateExpenseRequest]

// NewExpenseHandler creates the expense handler.
func NewExpenseHandler(base *BaseHandler, service ExpenseService) *ExpenseHandler {
	return NewClubCRUDHandler(base, ClubCRUDConfig[*expense.Expense, dto.CreateExpenseRequest, dto.UpdateExpenseRequest]{
		Service:      service,
		DefaultOrder: "-date",
		CreateClub:   func(r *dto.CreateExpenseRequest) string { return r.Club },
		MapCreate: func(r *dto.CreateExpenseRequest, clubID id.ID) *expense.Expense {
			return r.ToEntity(clubID)
		},
		UpdateClub: func(r *dto.UpdateExpenseRequest) string { return r.Club },
		Edit: func(ctx context.Context, clubID, expenseID id.ID, r *dto.UpdateExpenseRequest) (*expense.Expense, error) {
			return service.Edit(ctx, clubID, expenseID, r.Apply)
		},
	})
}
