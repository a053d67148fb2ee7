package product

import (
	"context"
	"fmt"

	"clubledger/internal/core/id"
	"clubledger/internal/core/tx"
	"clubledger/internal/domain"
	"clubledger/internal/domain/catalogs/club"
	"clubledger/pkg/logger"
)

// Clubs is the part of the club catalog products need.
type Clubs interface {
	Siblings(ctx context.Context, clubID id.ID) (*club.Club, []club.Club, error)
}

// Service provides product operations.
type Service struct {
	*domain.CRUDService[*Product]
	repo  Repository
	clubs Clubs
	txm   tx.Manager
}

// NewService creates a product service. Products created on a main club
// are copied into the owner's other clubs inside the same transaction.
func NewService(repo Repository, clubs Clubs, txManager tx.Manager) *Service {
	svc := &Service{
		CRUDService: domain.NewCRUDService[*Product](repo, txManager, "product"),
		repo:        repo,
		clubs:       clubs,
		txm:         txManager,
	}
	svc.Hooks().On(domain.AfterCreate, svc.duplicateFromMain)
	return svc
}

func (s *Service) duplicateFromMain(ctx context.Context, p *Product) error {
	if p.SourceID != nil {
		return nil
	}
	home, others, err := s.clubs.Siblings(ctx, p.ClubID)
	if err != nil {
		return fmt.Errorf("load sibling clubs: %w", err)
	}
	if !home.IsMain || len(others) == 0 {
		return nil
	}

	copies := make([]*Product, len(others))
	for i, c := range others {
		copies[i] = p.CopyTo(c.ID)
	}
	if err := s.repo.CreateMany(ctx, copies); err != nil {
		return fmt.Errorf("duplicate product: %w", err)
	}

	logger.Info(ctx, "product duplicated from main club", "product", p.ID, "copies", len(copies))
	return nil
}

// UpdatePrices changes catalog prices of one product.
func (s *Service) UpdatePrices(ctx context.Context, clubID, productID id.ID, upd PriceUpdate) (*Product, error) {
	if err := upd.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.GetByID(ctx, clubID, productID); err != nil {
		return nil, err
	}
	if !upd.IsEmpty() {
		if err := s.repo.UpdatePrices(ctx, clubID, productID, upd); err != nil {
			return nil, fmt.Errorf("update prices: %w", err)
		}
		s.Touched(ctx, clubID)
	}
	return s.GetByID(ctx, clubID, productID)
}

// ListByClubs returns all products of the given clubs.
func (s *Service) ListByClubs(ctx context.Context, clubIDs []id.ID) ([]*Product, error) {
	if len(clubIDs) == 0 {
		return nil, nil
	}
	return s.repo.ListByClubs(ctx, clubIDs)
}
