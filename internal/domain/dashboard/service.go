// Package dashboard computes the headline KPIs shown on the landing screen.
package dashboard

import (
	"context"

	"clubledger/internal/core/id"
	"clubledger/internal/core/period"
	"clubledger/internal/core/scope"
	"clubledger/internal/core/types"
	"clubledger/internal/domain/registers/inventory"
	"clubledger/internal/domain/reports"
)

// KPIs is the dashboard payload.
type KPIs struct {
	SalesToday      types.Money `json:"salesToday"`
	SalesTodayCount int         `json:"salesTodayCount"`
	MonthlySales    types.Money `json:"monthlySales"`
	LowStockCount   int         `json:"lowStockCount"`
	ActiveClubs     int         `json:"activeClubs"`
}

// Sales reads sale headers.
type Sales interface {
	Sales(ctx context.Context, clubIDs []id.ID, r period.Range) ([]reports.SaleRow, error)
}

// Stock lists low balances.
type Stock interface {
	LowStock(ctx context.Context, clubIDs []id.ID, threshold int64) ([]inventory.StockItem, error)
}

// Service builds KPIs.
type Service struct {
	sales    Sales
	stock    Stock
	clubs    scope.ClubSource
	resolver *period.Resolver
}

// NewService creates a dashboard service.
func NewService(sales Sales, stock Stock, clubs scope.ClubSource, resolver *period.Resolver) *Service {
	return &Service{sales: sales, stock: stock, clubs: clubs, resolver: resolver}
}

// KPIs returns today's and this month's sales for sc, the number of products
// under the low stock threshold and how many clubs ownerID runs.
func (s *Service) KPIs(ctx context.Context, ownerID string, sc scope.Scope) (*KPIs, error) {
	out := &KPIs{SalesToday: types.Zero(), MonthlySales: types.Zero()}

	owned, err := s.clubs.ListIDsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out.ActiveClubs = len(owned)

	if sc.IsEmpty() {
		return out, nil
	}
	clubIDs := sc.IDs()

	today, err := s.sales.Sales(ctx, clubIDs, s.resolver.Today())
	if err != nil {
		return nil, err
	}
	for _, row := range today {
		out.SalesToday = out.SalesToday.Add(row.Total)
	}
	out.SalesTodayCount = len(today)

	month, err := s.sales.Sales(ctx, clubIDs, s.resolver.Resolve(period.Monthly).Sales)
	if err != nil {
		return nil, err
	}
	for _, row := range month {
		out.MonthlySales = out.MonthlySales.Add(row.Total)
	}

	low, err := s.stock.LowStock(ctx, clubIDs, inventory.DefaultLowStockThreshold)
	if err != nil {
		return nil, err
	}
	out.LowStockCount = len(low)

	return out, nil
}
