package sale

import (
	"context"
	"fmt"
	"time"

	"clubledger/internal/core/apperror"
	"clubledger/internal/core/changes"
	appctx "clubledger/internal/core/context"
	"clubledger/internal/core/entity"
	"clubledger/internal/core/id"
	"clubledger/internal/core/numerator"
	"clubledger/internal/core/tx"
	"clubledger/internal/domain"
	"clubledger/internal/domain/registers/inventory"
	"clubledger/pkg/logger"
)

// Ledger records the stock side of a sale.
type Ledger interface {
	Adjust(ctx context.Context, in inventory.AdjustInput) (*inventory.AdjustResult, error)
}

// Service provides sale operations.
type Service struct {
	repo      Repository
	ledger    Ledger
	numerator numerator.Generator
	txManager tx.Manager
	changes   changes.Notifier
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithChanges reports the sale's club after each completed sale.
func WithChanges(n changes.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.changes = n
		}
	}
}

// NewService creates a sale service.
func NewService(repo Repository, ledger Ledger, gen numerator.Generator, txManager tx.Manager, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		ledger:    ledger,
		numerator: gen,
		txManager: txManager,
		changes:   changes.Nop{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CompleteSaleAtomically numbers, stores and posts a sale in one transaction.
// Each sealed item writes a negative "sale" movement linked to the sale.
// The total is recomputed; a non-zero client total that disagrees is rejected.
func (s *Service) CompleteSaleAtomically(ctx context.Context, sale *Sale) (*Sale, error) {
	if err := sale.Validate(ctx); err != nil {
		return nil, err
	}

	total := sale.ComputeTotal()
	if !sale.Total.IsZero() && !sale.Total.Equal(total) {
		return nil, apperror.NewValidation("total does not match items").
			WithDetail("expected", total.String()).
			WithDetail("received", sale.Total.String())
	}
	sale.Total = total
	sale.Status = StatusCompleted
	for i := range sale.Items {
		sale.Items[i].Amount = sale.Items[i].computeAmount()
		if sale.Items[i].LineNo == 0 {
			sale.Items[i].LineNo = i + 1
		}
		if id.IsNil(sale.Items[i].LineID) {
			sale.Items[i].LineID = id.New()
		}
	}
	if sale.CreatedBy == "" {
		sale.CreatedBy = appctx.GetUserID(ctx)
	}
	if sale.CreatedByName == "" {
		sale.CreatedByName = appctx.GetUserName(ctx)
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numerator.GetNextNumber(ctx,
			numerator.SaleConfig(sale.ClubID.String()),
			&numerator.Options{Strategy: NumeratorStrategy},
			s.now(),
		)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		sale.Number = number

		if err := s.repo.Create(ctx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		if err := s.repo.SaveItems(ctx, sale.ID, sale.Items); err != nil {
			return fmt.Errorf("save items: %w", err)
		}

		saleID := sale.ID
		for _, it := range sale.SealedItems() {
			q := -it.Quantity
			_, err := s.ledger.Adjust(ctx, inventory.AdjustInput{
				ClubID:    sale.ClubID,
				ProductID: it.ProductID,
				Type:      entity.MovementSale,
				Quantity:  &q,
				Notes:     "sale " + sale.Number,
				SaleID:    &saleID,
			})
			if err != nil {
				return fmt.Errorf("post item %d: %w", it.LineNo, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	changes.Notify(ctx, s.changes, sale.ClubID)

	logger.Info(ctx, "sale completed",
		"id", sale.ID,
		"number", sale.Number,
		"club", sale.ClubID,
		"total", sale.Total.String(),
		"items", len(sale.Items),
	)
	return sale, nil
}

// GetByID returns a sale of clubID with its items.
func (s *Service) GetByID(ctx context.Context, clubID, saleID id.ID) (*Sale, error) {
	sale, err := s.repo.GetByID(ctx, clubID, saleID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ItemsBySales(ctx, []id.ID{saleID})
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	sale.Items = items[saleID]
	if sale.Items == nil {
		sale.Items = []Item{}
	}
	return sale, nil
}

// List pages sales of the filter's clubs with their items.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Sale], error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 50
	}
	if len(filter.ClubIDs) == 0 {
		return domain.ListResult[*Sale]{Items: []*Sale{}, Limit: filter.Limit, Offset: filter.Offset}, nil
	}

	res, err := s.repo.List(ctx, filter)
	if err != nil {
		return res, err
	}
	if len(res.Items) == 0 {
		return res, nil
	}

	ids := make([]id.ID, len(res.Items))
	for i, sale := range res.Items {
		ids[i] = sale.ID
	}
	items, err := s.repo.ItemsBySales(ctx, ids)
	if err != nil {
		return res, fmt.Errorf("get items: %w", err)
	}
	for _, sale := range res.Items {
		sale.Items = items[sale.ID]
		if sale.Items == nil {
			sale.Items = []Item{}
		}
	}
	return res, nil
}
