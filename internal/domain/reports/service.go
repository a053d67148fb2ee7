package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"clubledger/internal/core/period"
	"clubledger/internal/core/scope"
	"clubledger/internal/core/tx"
	"clubledger/pkg/logger"
)

var tracer = otel.Tracer("clubledger/reports")

// Service dispatches report requests to their builders.
type Service struct {
	repo    Repository
	stock   Stock
	periods *period.Resolver

	cache    Cache
	cacheTTL time.Duration

	snapshot tx.ReadOnlyManager
}

// Option configures a Service.
type Option func(*Service)

// WithCache caches rendered reports for ttl. A zero ttl disables caching.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *Service) {
		if c != nil && ttl > 0 {
			s.cache = c
			s.cacheTTL = ttl
		}
	}
}

// WithSnapshot runs every report build inside one read-only transaction.
func WithSnapshot(m tx.ReadOnlyManager) Option {
	return func(s *Service) {
		if m != nil {
			s.snapshot = m
		}
	}
}

// NewService creates a report service.
func NewService(repo Repository, stock Stock, periods *period.Resolver, opts ...Option) *Service {
	s := &Service{repo: repo, stock: stock, periods: periods}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate builds the requested report. Cached results come back as
// json.RawMessage, fresh ones as the report struct.
func (s *Service) Generate(ctx context.Context, req Request) (any, error) {
	if req.Type == "" {
		req.Type = TypeExecutiveSummary
	}
	if req.Period == "" {
		req.Period = period.Monthly
	}

	ctx, span := tracer.Start(ctx, "report."+string(req.Type))
	defer span.End()
	span.SetAttributes(
		attribute.String("report.period", string(req.Period)),
		attribute.Int("report.clubs", len(req.Scope.IDs())),
	)

	b := s.periods.Resolve(req.Period)
	key := s.cacheKey(ctx, req, b)
	if key != "" {
		if raw, err := s.cache.Get(ctx, key); err != nil {
			logger.Warn(ctx, "report cache read failed", "key", key, "error", err)
		} else if raw != nil {
			span.SetAttributes(attribute.Bool("report.cached", true))
			return json.RawMessage(raw), nil
		}
	}

	var report any
	err := s.inSnapshot(ctx, func(ctx context.Context) error {
		var err error
		report, err = s.build(ctx, req, b)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if key != "" {
		if raw, err := json.Marshal(report); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
				logger.Warn(ctx, "report cache write failed", "key", key, "error", err)
			}
		}
	}
	return report, nil
}

// cacheKey is empty when caching is off or the scope's generation cannot be
// read. It is computed before the build starts its snapshot, so a cached
// report never predates the generation in its key.
func (s *Service) cacheKey(ctx context.Context, req Request, b period.Bounds) string {
	if s.cache == nil {
		return ""
	}
	gen, err := s.cache.Generation(ctx, req.Scope.IDs())
	if err != nil {
		logger.Warn(ctx, "report cache generation unavailable", "error", err)
		return ""
	}
	return fmt.Sprintf("report:%s:%s:%s:g%s:%s",
		req.Type, req.Period, req.Scope.Key(), gen, b.SalesDay(s.periods.Now()))
}

func (s *Service) build(ctx context.Context, req Request, b period.Bounds) (any, error) {
	sc := req.Scope
	switch req.Type {
	case TypeExecutiveSummary:
		return s.executiveSummary(ctx, sc, b)
	case TypeCashFlow:
		return s.cashFlow(ctx, sc, b)
	case TypeClubPerformance:
		return s.clubPerformance(ctx, sc, b)
	case TypeExpenses:
		return s.expenses(ctx, sc, b)
	case TypeNetProfit:
		return s.netProfit(ctx, sc, b)
	case TypeProductMargin:
		return s.productMargin(ctx, sc, b)
	case TypeSales:
		return s.sales(ctx, sc, b)
	case TypeTransactionHistory:
		return s.transactionHistory(ctx, sc, b)
	case TypeInventoryMovement:
		return s.inventoryMovement(ctx, sc, b)
	case TypeFutureProjections:
		return s.futureProjections(ctx, sc)
	default:
		_, err := ParseType(string(req.Type))
		return nil, err
	}
}

// SalesExpenses returns daily sales and expenses of the period, zero-filled.
func (s *Service) SalesExpenses(ctx context.Context, p period.Period, sc scope.Scope) ([]SalesExpensesPoint, error) {
	b := s.periods.Resolve(p)
	var points []SalesExpensesPoint
	err := s.inSnapshot(ctx, func(ctx context.Context) error {
		var err error
		points, err = s.salesExpenses(ctx, sc, b)
		return err
	})
	return points, err
}

func (s *Service) inSnapshot(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.snapshot == nil {
		return fn(ctx)
	}
	return s.snapshot.ReadOnly(ctx, fn)
}

func (s *Service) salesExpenses(ctx context.Context, sc scope.Scope, b period.Bounds) ([]SalesExpensesPoint, error) {
	ids := sc.IDs()
	sales, err := s.repo.Sales(ctx, ids, b.Sales)
	if err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}
	expenses, err := s.repo.Expenses(ctx, ids, b.Expenses)
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}

	days := period.Days(b.Sales, b.Location())
	in, out := newSeries(days), newSeries(days)
	for _, r := range sales {
		in.add(b.SalesDay(r.CreatedAt), r.Total)
	}
	for _, r := range expenses {
		out.add(b.ExpenseDay(r.Date), r.Amount)
	}

	points := make([]SalesExpensesPoint, len(days))
	for i, d := range days {
		points[i] = SalesExpensesPoint{Date: d, Sales: in.get(d), Expenses: out.get(d)}
	}
	return points, nil
}
