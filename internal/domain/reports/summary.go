package reports

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"clubledger/internal/core/id"
	"clubledger/internal/core/period"
	"clubledger/internal/core/scope"
	"clubledger/internal/core/types"
)

// topCategoryShare is the share of spending that makes a category worth reviewing.
var topCategoryShare = decimal.NewFromInt(30)

// totals holds sales and expenses of one window.
type totals struct {
	sales    []SaleRow
	expenses []ExpenseRow
}

func (t totals) profit() types.Money {
	return sumSales(t.sales).Sub(sumExpenses(t.expenses))
}

func (s *Service) loadTotals(ctx context.Context, ids []id.ID, sales, expenses period.Range) (totals, error) {
	var t totals
	var err error
	if t.sales, err = s.repo.Sales(ctx, ids, sales); err != nil {
		return t, fmt.Errorf("load sales: %w", err)
	}
	if t.expenses, err = s.repo.Expenses(ctx, ids, expenses); err != nil {
		return t, fmt.Errorf("load expenses: %w", err)
	}
	return t, nil
}

func (s *Service) executiveSummary(ctx context.Context, sc scope.Scope, b period.Bounds) (*ExecutiveSummary, error) {
	ids := sc.IDs()
	cur, err := s.loadTotals(ctx, ids, b.Sales, b.Expenses)
	if err != nil {
		return nil, err
	}
	prev, err := s.loadTotals(ctx, ids, b.PreviousSales, b.PreviousExpenses)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.SaleItems(ctx, ids, b.Sales)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	clubs, err := s.repo.Clubs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load clubs: %w", err)
	}

	totalSales := sumSales(cur.sales)
	totalExpenses := sumExpenses(cur.expenses)
	out := &ExecutiveSummary{
		Period:          b.Label,
		TotalSales:      totalSales,
		TotalExpenses:   totalExpenses,
		NetProfit:       cur.profit(),
		NetProfitChange: change(cur.profit(), prev.profit()),
	}

	qty := newOrdered[id.ID]()
	names := make(map[id.ID]string)
	for _, it := range items {
		qty.add(it.ProductID, decimal.NewFromInt(it.Quantity))
		if _, ok := names[it.ProductID]; !ok {
			names[it.ProductID] = it.ProductName
		}
	}
	if pid, q, ok := qty.max(); ok {
		out.TopProduct = &Ranked{Name: names[pid], Sales: q, Percentage: share(q, qty.total())}
	}

	var top *ExpenseRow
	for i := range cur.expenses {
		if top == nil || cur.expenses[i].Amount.GreaterThan(top.Amount) {
			top = &cur.expenses[i]
		}
	}
	if top != nil {
		name := top.Description
		if name == "" {
			name = top.Category
		}
		out.TopExpense = &TopExpense{Name: name, Amount: top.Amount, Percentage: share(top.Amount, totalExpenses)}
	}

	byClub := newOrdered[id.ID]()
	for _, c := range clubs {
		byClub.add(c.ID, decimal.Zero)
	}
	for _, r := range cur.sales {
		byClub.add(r.ClubID, r.Total)
	}
	if cid, v, ok := byClub.max(); ok {
		name := cid.String()
		for _, c := range clubs {
			if c.ID == cid {
				name = c.Name
			}
		}
		out.TopClub = &Ranked{Name: name, Sales: v, Percentage: share(v, totalSales)}
	}

	byCategory := newOrdered[string]()
	for _, e := range cur.expenses {
		byCategory.add(e.Category, e.Amount)
	}
	out.Recommendations = recommend(out, byCategory, change(totalSales, sumSales(prev.sales)))
	return out, nil
}

func recommend(sum *ExecutiveSummary, byCategory *ordered[string], salesChange types.Money) []Recommendation {
	recs := make([]Recommendation, 0, 3)
	if sum.TopProduct != nil {
		recs = append(recs, Recommendation{
			ID:   "restock-top-product",
			Text: fmt.Sprintf("Keep %s in stock: it is the best seller with %s units.", sum.TopProduct.Name, sum.TopProduct.Sales),
			Type: "positive",
		})
	}
	if cat, amount, ok := byCategory.max(); ok {
		if pct := share(amount, byCategory.total()); pct.GreaterThanOrEqual(topCategoryShare) {
			recs = append(recs, Recommendation{
				ID:   "review-expense-category",
				Text: fmt.Sprintf("Review %s expenses: they are %s%% of total spending.", cat, pct.StringFixed(0)),
				Type: "negative",
			})
		}
	}
	if salesChange.IsNegative() {
		recs = append(recs, Recommendation{
			ID:   "run-promotion",
			Text: fmt.Sprintf("Sales fell %s%% against the previous period. Consider a promotion.", salesChange.Abs().StringFixed(0)),
			Type: "neutral",
		})
	} else {
		recs = append(recs, Recommendation{
			ID:   "keep-strategy",
			Text: "Sales are stable or growing. Keep the current strategy.",
			Type: "neutral",
		})
	}
	return recs
}

func (s *Service) netProfit(ctx context.Context, sc scope.Scope, b period.Bounds) (*NetProfit, error) {
	ids := sc.IDs()
	cur, err := s.loadTotals(ctx, ids, b.Sales, b.Expenses)
	if err != nil {
		return nil, err
	}
	prev, err := s.loadTotals(ctx, ids, b.PreviousSales, b.PreviousExpenses)
	if err != nil {
		return nil, err
	}

	months := period.Months(b.Sales, b.Location())
	sales, expenses := newSeries(months), newSeries(months)
	for _, r := range cur.sales {
		sales.add(b.SalesMonth(r.CreatedAt), r.Total)
	}
	for _, r := range cur.expenses {
		expenses.add(b.ExpenseMonth(r.Date), r.Amount)
	}

	summary := make([]MonthFigures, len(months))
	for i, m := range months {
		summary[i] = MonthFigures{
			Month:    period.MonthLabel(m),
			Sales:    sales.get(m),
			Expenses: expenses.get(m),
			Profit:   sales.get(m).Sub(expenses.get(m)),
		}
	}

	np := cur.profit()
	return &NetProfit{
		Period:           b.Label,
		PreviousPeriod:   period.Label(b.Period, b.PreviousSales, b.Location()),
		TotalSales:       sumSales(cur.sales),
		TotalExpenses:    sumExpenses(cur.expenses),
		NetProfit:        np,
		ChangePercentage: change(np, prev.profit()),
		IsPositive:       !np.IsNegative(),
		MonthlySummary:   summary,
	}, nil
}

var goalFactor = decimal.RequireFromString("1.1")

// futureProjections covers the current year regardless of the requested period.
// Months after the current one are projected from the trailing three-month
// average of actual figures.
func (s *Service) futureProjections(ctx context.Context, sc scope.Scope) (*FutureProjections, error) {
	loc := s.periods.Location()
	now := s.periods.Now()
	year := period.RangeAt(period.Yearly, now, loc)
	trailing := period.TrailingMonths(now, 3, loc)

	window := year
	if trailing[0].Start.Before(window.Start) {
		window.Start = trailing[0].Start
	}
	b := s.periods.ResolveAt(period.Yearly, now)
	t, err := s.loadTotals(ctx, sc.IDs(), window, s.periods.ExpenseRange(window))
	if err != nil {
		return nil, err
	}

	keys := period.Months(window, loc)
	sales, expenses := newSeries(keys), newSeries(keys)
	for _, r := range t.sales {
		sales.add(b.SalesMonth(r.CreatedAt), r.Total)
	}
	for _, r := range t.expenses {
		expenses.add(b.ExpenseMonth(r.Date), r.Amount)
	}

	avgSales, avgExpenses := decimal.Zero, decimal.Zero
	n := decimal.NewFromInt(int64(len(trailing)))
	for _, m := range trailing {
		k := m.Start.In(loc).Format(period.MonthLayout)
		avgSales = avgSales.Add(sales.get(k))
		avgExpenses = avgExpenses.Add(expenses.get(k))
	}
	avgSales = avgSales.Div(n).Round(2)
	avgExpenses = avgExpenses.Div(n).Round(2)

	current := now.Format(period.MonthLayout)
	var data []ProjectionMonth
	for _, k := range period.Months(year, loc) {
		pm := ProjectionMonth{Month: period.MonthLabel(k)}
		if k > current {
			pm.Sales, pm.Expenses, pm.IsProjection = avgSales, avgExpenses, true
		} else {
			pm.Sales, pm.Expenses = sales.get(k), expenses.get(k)
		}
		pm.Profit = pm.Sales.Sub(pm.Expenses)
		data = append(data, pm)
	}

	prevKey := trailing[len(trailing)-2].Start.In(loc).Format(period.MonthLayout)
	prevSales := sales.get(prevKey)
	prevProfit := prevSales.Sub(expenses.get(prevKey))
	curSales := sales.get(current)
	curProfit := curSales.Sub(expenses.get(current))

	salesGoal := prevSales.Mul(goalFactor).Round(2)
	profitGoal := prevProfit.Mul(goalFactor).Round(2)
	return &FutureProjections{
		Year:           now.Year(),
		ProjectionData: data,
		GoalsData: []Goal{
			{Name: "sales", Target: salesGoal, Current: curSales, Percentage: share(curSales, salesGoal)},
			{Name: "profit", Target: profitGoal, Current: curProfit, Percentage: share(curProfit, profitGoal)},
		},
	}, nil
}
