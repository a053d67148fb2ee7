package reports

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"clubledger/internal/core/period"
	"clubledger/internal/core/scope"
	"clubledger/internal/domain/expense"
)

var (
	criticalShare = decimal.NewFromInt(15)
	alertGrowth   = decimal.NewFromInt(20)
)

func (s *Service) expenses(ctx context.Context, sc scope.Scope, b period.Bounds) (*Expenses, error) {
	ids := sc.IDs()
	rows, err := s.repo.Expenses(ctx, ids, b.Expenses)
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	prevRows, err := s.repo.Expenses(ctx, ids, b.PreviousExpenses)
	if err != nil {
		return nil, fmt.Errorf("load previous expenses: %w", err)
	}

	// Known categories first in their canonical order, then anything else as seen.
	cur, prev := newOrdered[string](), newOrdered[string]()
	present := make(map[string]bool)
	for _, r := range rows {
		present[r.Category] = true
	}
	for _, c := range expense.Categories {
		if present[string(c)] {
			cur.add(string(c), decimal.Zero)
		}
	}

	lines := make([]ExpenseLine, 0, len(rows))
	for _, r := range rows {
		cur.add(r.Category, r.Amount)
		lines = append(lines, ExpenseLine{
			ID:          r.ID,
			Date:        r.Date,
			Category:    r.Category,
			Description: r.Description,
			Supplier:    r.Supplier,
			Amount:      r.Amount,
			IsRecurring: r.IsRecurring,
			Club:        r.ClubID,
		})
	}
	for _, r := range prevRows {
		prev.add(r.Category, r.Amount)
	}

	total := cur.total()
	out := &Expenses{
		Period:              b.Label,
		ExpensesData:        lines,
		CategoryTotals:      make(map[string]decimal.Decimal, len(cur.keys)),
		TotalExpenses:       total,
		CategoryPercentages: []CategoryShare{},
		CriticalExpenses:    []CategoryShare{},
		Alerts:              []ExpenseAlert{},
	}
	for _, c := range cur.keys {
		amount := cur.get(c)
		sh := CategoryShare{Category: c, Amount: amount, Percentage: share(amount, total)}
		out.CategoryTotals[c] = amount
		out.CategoryPercentages = append(out.CategoryPercentages, sh)
		if sh.Percentage.GreaterThanOrEqual(criticalShare) {
			out.CriticalExpenses = append(out.CriticalExpenses, sh)
		}

		before := prev.get(c)
		if growth := change(amount, before); growth.GreaterThan(alertGrowth) {
			out.Alerts = append(out.Alerts, ExpenseAlert{
				Category:         c,
				Current:          amount,
				Previous:         before,
				ChangePercentage: growth,
				Message:          fmt.Sprintf("%s expenses grew %s%% against the previous period", c, growth.StringFixed(0)),
			})
		}
	}
	return out, nil
}
