package reports

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"clubledger/internal/core/id"
	"clubledger/internal/core/period"
	"clubledger/internal/core/scope"
	"clubledger/internal/domain/registers/inventory"
)

// AlertLowStock marks lines whose closing stock is under the low-stock threshold.
const AlertLowStock = "low stock"

var two = decimal.NewFromInt(2)

// inventoryMovement reconstructs every product's stock for the period with one
// grouped query.
func (s *Service) inventoryMovement(ctx context.Context, sc scope.Scope, b period.Bounds) (*InventoryMovement, error) {
	lines, err := s.stock.ReconstructAll(ctx, sc, b.Sales)
	if err != nil {
		return nil, fmt.Errorf("reconstruct stock: %w", err)
	}
	products, err := s.repo.Products(ctx, sc.IDs())
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	byID := make(map[id.ID]ProductRow, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	days := decimal.NewFromInt(int64(len(period.Days(b.Sales, b.Location()))))
	out := &InventoryMovement{
		Period:        b.Label,
		InventoryData: make([]InventoryLine, 0, len(lines)),
		Categories:    []string{},
	}
	seenCat := make(map[string]bool)
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok {
			p = ProductRow{ID: l.ProductID, Name: "Unknown product"}
		}
		line := InventoryLine{
			ID:           l.ProductID,
			Name:         p.Name,
			Category:     p.Category,
			InitialStock: l.InitialStock,
			Inflow:       l.Inflow,
			Outflow:      l.Outflow,
			CurrentStock: l.CurrentStock,
			RotationDays: rotationDays(l, days),
		}
		if l.CurrentStock < inventory.DefaultLowStockThreshold {
			line.Alert = AlertLowStock
		}
		out.InventoryData = append(out.InventoryData, line)

		out.TotalInflow += l.Inflow
		out.TotalOutflow += l.Outflow
		out.TotalStock += l.CurrentStock
		if p.Category != "" && !seenCat[p.Category] {
			seenCat[p.Category] = true
			out.Categories = append(out.Categories, p.Category)
		}
	}
	return out, nil
}

// rotationDays is days * average stock / outflow, 0 without outflow.
func rotationDays(l inventory.StockLine, days decimal.Decimal) decimal.Decimal {
	if l.Outflow == 0 {
		return decimal.Zero
	}
	avg := decimal.NewFromInt(l.InitialStock + l.CurrentStock).Div(two)
	return days.Mul(avg).Div(decimal.NewFromInt(l.Outflow)).Round(1)
}
