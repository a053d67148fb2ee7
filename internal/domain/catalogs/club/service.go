package club

import (
	"context"
	"fmt"

	"clubledger/internal/core/apperror"
	"clubledger/internal/core/id"
	"clubledger/internal/core/tx"
	"clubledger/pkg/logger"
)

// Service manages clubs and answers ownership questions for scope resolution.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a club service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// CreateInput is the payload for Create.
type CreateInput struct {
	Name     string
	Address  string
	Timezone string
}

// Create adds a club for ownerID. The owner's first club becomes main.
func (s *Service) Create(ctx context.Context, ownerID id.ID, in CreateInput) (*Club, error) {
	c := NewClub(ownerID, in.Name, in.Address)
	c.Timezone = in.Timezone
	if err := c.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		count, err := s.repo.CountByOwner(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("count clubs: %w", err)
		}
		c.IsMain = count == 0
		return s.repo.Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "club created", "club", c.ID, "is_main", c.IsMain)
	return c, nil
}

// Get returns a club if ownerID owns it.
func (s *Service) Get(ctx context.Context, ownerID, clubID id.ID) (*Club, error) {
	c, err := s.repo.GetByID(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if c.OwnerID != ownerID {
		return nil, apperror.NewNotFound("club", clubID.String())
	}
	return c, nil
}

// List returns the owner's clubs.
func (s *Service) List(ctx context.Context, ownerID id.ID) ([]Club, error) {
	clubs, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list clubs: %w", err)
	}
	if clubs == nil {
		clubs = []Club{}
	}
	return clubs, nil
}

// ListByIDs returns the clubs of a resolved scope.
func (s *Service) ListByIDs(ctx context.Context, clubIDs []id.ID) ([]Club, error) {
	if len(clubIDs) == 0 {
		return []Club{}, nil
	}
	return s.repo.ListByIDs(ctx, clubIDs)
}

// ListIDsByOwner implements scope.ClubSource. Unknown or malformed owner
// ids own nothing.
func (s *Service) ListIDsByOwner(ctx context.Context, ownerID string) ([]id.ID, error) {
	owner, err := id.Parse(ownerID)
	if err != nil {
		return nil, nil
	}
	clubs, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list owned clubs: %w", err)
	}
	ids := make([]id.ID, len(clubs))
	for i, c := range clubs {
		ids[i] = c.ID
	}
	return ids, nil
}

// Siblings returns the owner's clubs other than clubID, with the club itself.
func (s *Service) Siblings(ctx context.Context, clubID id.ID) (*Club, []Club, error) {
	c, err := s.repo.GetByID(ctx, clubID)
	if err != nil {
		return nil, nil, err
	}
	all, err := s.repo.ListByOwner(ctx, c.OwnerID)
	if err != nil {
		return nil, nil, fmt.Errorf("list sibling clubs: %w", err)
	}
	others := make([]Club, 0, len(all))
	for _, o := range all {
		if o.ID != clubID {
			others = append(others, o)
		}
	}
	return c, others, nil
}

// AllIDs returns every club id.
func (s *Service) AllIDs(ctx context.Context) ([]id.ID, error) {
	return s.repo.ListAllIDs(ctx)
}
