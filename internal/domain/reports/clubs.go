package reports

import (
	"context"
	"fmt"
	"sort"

	"clubledger/internal/core/id"
	"clubledger/internal/core/period"
	"clubledger/internal/core/scope"
)

// clubPerformance lists every club of the scope, including clubs without
// activity, ordered by sales descending.
func (s *Service) clubPerformance(ctx context.Context, sc scope.Scope, b period.Bounds) (*ClubPerformance, error) {
	ids := sc.IDs()
	clubs, err := s.repo.Clubs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load clubs: %w", err)
	}
	cur, err := s.loadTotals(ctx, ids, b.Sales, b.Expenses)
	if err != nil {
		return nil, err
	}
	prevSales, err := s.repo.Sales(ctx, ids, b.PreviousSales)
	if err != nil {
		return nil, fmt.Errorf("load previous sales: %w", err)
	}
	stock, err := s.repo.StockByClub(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load stock: %w", err)
	}

	sales, expenses, prev := newOrdered[id.ID](), newOrdered[id.ID](), newOrdered[id.ID]()
	for _, r := range cur.sales {
		sales.add(r.ClubID, r.Total)
	}
	for _, r := range cur.expenses {
		expenses.add(r.ClubID, r.Amount)
	}
	for _, r := range prevSales {
		prev.add(r.ClubID, r.Total)
	}

	data := make([]ClubFigures, 0, len(clubs))
	for _, c := range clubs {
		cs, ce := sales.get(c.ID), expenses.get(c.ID)
		data = append(data, ClubFigures{
			ID:          c.ID,
			Name:        c.Name,
			Address:     c.Address,
			Sales:       cs,
			Expenses:    ce,
			Profit:      cs.Sub(ce),
			SalesChange: change(cs, prev.get(c.ID)),
			Inventory:   stock[c.ID],
			IsMain:      c.IsMain,
		})
	}
	sort.SliceStable(data, func(i, j int) bool {
		return data[i].Sales.GreaterThan(data[j].Sales)
	})

	return &ClubPerformance{Period: b.Label, ClubsData: data}, nil
}
