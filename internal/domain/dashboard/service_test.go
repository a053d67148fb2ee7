package dashboard

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubledger/internal/core/entity"
	"clubledger/internal/core/id"
	"clubledger/internal/core/period"
	"clubledger/internal/core/scope"
	"clubledger/internal/core/types"
	"clubledger/internal/domain/registers/inventory"
	"clubledger/internal/domain/reports"
)

type fakeSales []reports.SaleRow

func (f fakeSales) Sales(_ context.Context, clubIDs []id.ID, r period.Range) ([]reports.SaleRow, error) {
	var out []reports.SaleRow
	for _, row := range f {
		if slices.Contains(clubIDs, row.ClubID) && r.Contains(row.CreatedAt) {
			out = append(out, row)
		}
	}
	return out, nil
}

type fakeStock map[id.ID][]int64

func (f fakeStock) LowStock(_ context.Context, clubIDs []id.ID, threshold int64) ([]inventory.StockItem, error) {
	var out []inventory.StockItem
	for _, c := range clubIDs {
		for _, q := range f[c] {
			if q < threshold {
				out = append(out, inventory.StockItem{InventoryRecord: entity.InventoryRecord{ClubID: c, Quantity: q}})
			}
		}
	}
	return out, nil
}

type fakeClubs map[string][]id.ID

func (f fakeClubs) ListIDsByOwner(_ context.Context, ownerID string) ([]id.ID, error) {
	return f[ownerID], nil
}

func TestService_KPIs(t *testing.T) {
	loc, err := time.LoadLocation("America/Mexico_City")
	require.NoError(t, err)
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, loc)
	resolver := period.NewResolver(loc, period.WithClock(func() time.Time { return now }))

	a, b, c := id.New(), id.New(), id.New()
	sales := fakeSales{
		{ID: id.New(), ClubID: a, Total: types.NewMoneyFromInt(100), CreatedAt: now.Add(-time.Hour)},
		{ID: id.New(), ClubID: b, Total: types.NewMoneyFromInt(50), CreatedAt: now.Add(-2 * time.Hour)},
		{ID: id.New(), ClubID: a, Total: types.NewMoneyFromInt(30), CreatedAt: now.AddDate(0, 0, -3)},
		{ID: id.New(), ClubID: a, Total: types.NewMoneyFromInt(999), CreatedAt: now.AddDate(0, -1, 0)},
		{ID: id.New(), ClubID: c, Total: types.NewMoneyFromInt(777), CreatedAt: now},
	}
	stock := fakeStock{a: {0, 4, 5, 20}, b: {2}, c: {1}}
	svc := NewService(sales, stock, fakeClubs{"owner": {a, b}}, resolver)

	t.Run("global scope", func(t *testing.T) {
		k, err := svc.KPIs(context.Background(), "owner", scope.Multiple(a, b))
		require.NoError(t, err)

		assert.True(t, types.NewMoneyFromInt(150).Equal(k.SalesToday), k.SalesToday.String())
		assert.Equal(t, 2, k.SalesTodayCount)
		assert.True(t, types.NewMoneyFromInt(180).Equal(k.MonthlySales), k.MonthlySales.String())
		assert.Equal(t, 3, k.LowStockCount)
		assert.Equal(t, 2, k.ActiveClubs)
	})

	t.Run("single club", func(t *testing.T) {
		k, err := svc.KPIs(context.Background(), "owner", scope.Single(b))
		require.NoError(t, err)

		assert.True(t, types.NewMoneyFromInt(50).Equal(k.SalesToday))
		assert.Equal(t, 1, k.LowStockCount)
	})

	t.Run("empty scope still counts clubs", func(t *testing.T) {
		k, err := svc.KPIs(context.Background(), "owner", scope.Multiple())
		require.NoError(t, err)

		assert.True(t, k.SalesToday.IsZero())
		assert.Zero(t, k.LowStockCount)
		assert.Equal(t, 2, k.ActiveClubs)
	})
}
