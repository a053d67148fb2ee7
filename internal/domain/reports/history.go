package reports

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"clubledger/internal/core/entity"
	"clubledger/internal/core/id"
	"clubledger/internal/core/period"
	"clubledger/internal/core/scope"
	"clubledger/internal/domain/registers/inventory"
)

// Transaction kinds.
const (
	TransactionSale       = "sale"
	TransactionExpense    = "expense"
	TransactionAdjustment = "adjustment"
)

// transactionHistory merges sales, expenses and manual "other" stock
// adjustments, ordered by date. Adjustments carry -|quantity| as amount.
func (s *Service) transactionHistory(ctx context.Context, sc scope.Scope, b period.Bounds) (*TransactionHistory, error) {
	ids := sc.IDs()
	t, err := s.loadTotals(ctx, ids, b.Sales, b.Expenses)
	if err != nil {
		return nil, err
	}
	from, to := b.Sales.Start, b.Sales.End
	adjustments, err := s.stock.Movements(ctx, inventory.MovementFilter{
		ClubIDs: ids,
		Types:   []entity.MovementType{entity.MovementOther},
		From:    &from,
		To:      &to,
	})
	if err != nil {
		return nil, fmt.Errorf("load adjustments: %w", err)
	}
	names := make(map[id.ID]string)
	if len(adjustments) > 0 {
		products, err := s.repo.Products(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("load products: %w", err)
		}
		for _, p := range products {
			names[p.ID] = p.Name
		}
	}

	txs := make([]Transaction, 0, len(t.sales)+len(t.expenses)+len(adjustments))
	for _, r := range t.sales {
		txs = append(txs, Transaction{
			ID:          r.ID,
			Date:        r.CreatedAt,
			Type:        TransactionSale,
			Description: "Sale " + r.Number,
			Amount:      r.Total,
			Category:    "sales",
			Reference:   r.Number,
		})
	}
	for _, r := range t.expenses {
		desc := r.Description
		if desc == "" {
			desc = r.Category
		}
		txs = append(txs, Transaction{
			ID:          r.ID,
			Date:        r.Date,
			Type:        TransactionExpense,
			Description: desc,
			Amount:      r.Amount.Neg(),
			Category:    r.Category,
			Reference:   r.Supplier,
		})
	}
	// Movements come newest first; replay them oldest first so equal dates keep
	// creation order.
	for i := len(adjustments) - 1; i >= 0; i-- {
		m := adjustments[i]
		q := m.Quantity
		if q < 0 {
			q = -q
		}
		desc := strings.TrimSpace("Stock adjustment " + names[m.ProductID])
		if m.Notes != "" {
			desc += ": " + m.Notes
		}
		txs = append(txs, Transaction{
			ID:          m.ID,
			Date:        m.CreatedAt,
			Type:        TransactionAdjustment,
			Description: desc,
			Amount:      decimal.NewFromInt(-q),
			Category:    "inventory",
			Reference:   m.ProductID.String(),
		})
	}

	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date.Before(txs[j].Date) })
	return &TransactionHistory{Period: b.Label, TransactionsData: txs}, nil
}
