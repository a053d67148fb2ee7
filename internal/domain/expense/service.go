package expense

import (
	"context"

	"clubledger/internal/core/id"
	"clubledger/internal/core/tx"
	"clubledger/internal/domain"
)

// Repository is the expense store.
type Repository interface {
	domain.ClubRepository[*Expense]
}

// Service provides expense CRUD. Updates may not move an expense to another club.
type Service struct {
	*domain.CRUDService[*Expense]
}

// NewService creates an expense service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{CRUDService: domain.NewCRUDService[*Expense](repo, txManager, "expense")}
}

// Edit loads an expense of clubID, applies fn and saves it.
func (s *Service) Edit(ctx context.Context, clubID, expenseID id.ID, fn func(e *Expense) error) (*Expense, error) {
	e, err := s.GetByID(ctx, clubID, expenseID)
	if err != nil {
		return nil, err
	}
	if err := fn(e); err != nil {
		return nil, err
	}
	e.ClubID = clubID
	e.Touch()
	if err := s.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}
