package reports

import (
	"context"

	"github.com/shopspring/decimal"

	"clubledger/internal/core/period"
	"clubledger/internal/core/scope"
)

var week = decimal.NewFromInt(7)

func (s *Service) cashFlow(ctx context.Context, sc scope.Scope, b period.Bounds) (*CashFlow, error) {
	t, err := s.loadTotals(ctx, sc.IDs(), b.Sales, b.Expenses)
	if err != nil {
		return nil, err
	}

	days := period.Days(b.Sales, b.Location())
	in, out := newSeries(days), newSeries(days)
	for _, r := range t.sales {
		in.add(b.SalesDay(r.CreatedAt), r.Total)
	}
	recurring := decimal.Zero
	for _, r := range t.expenses {
		out.add(b.ExpenseDay(r.Date), r.Amount)
		if r.IsRecurring {
			recurring = recurring.Add(r.Amount)
		}
	}

	data := make([]CashFlowPoint, len(days))
	balance := decimal.Zero
	for i, d := range days {
		balance = balance.Add(in.get(d)).Sub(out.get(d))
		data[i] = CashFlowPoint{Date: d, Inflow: in.get(d), Outflow: out.get(d), Balance: balance}
	}

	next7 := decimal.Zero
	if len(days) > 0 {
		next7 = recurring.Div(decimal.NewFromInt(int64(len(days)))).Mul(week).Round(2)
	}

	return &CashFlow{
		CurrentMonth:     b.Label,
		CashFlowData:     data,
		CurrentBalance:   balance,
		Next7DaysOutflow: next7,
	}, nil
}
