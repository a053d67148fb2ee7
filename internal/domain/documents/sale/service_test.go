package sale

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubledger/internal/core/apperror"
	"clubledger/internal/core/entity"
	"clubledger/internal/core/id"
	"clubledger/internal/core/numerator"
	"clubledger/internal/core/types"
	"clubledger/internal/domain"
	"clubledger/internal/domain/registers/inventory"
)

type memSales struct {
	sales map[id.ID]*Sale
	items map[id.ID][]Item
	order []id.ID
}

func newMemSales() *memSales {
	return &memSales{sales: map[id.ID]*Sale{}, items: map[id.ID][]Item{}}
}

func (m *memSales) Create(_ context.Context, s *Sale) error {
	cp := *s
	cp.Items = nil
	m.sales[s.ID] = &cp
	m.order = append(m.order, s.ID)
	return nil
}

func (m *memSales) GetByID(_ context.Context, clubID, saleID id.ID) (*Sale, error) {
	s, ok := m.sales[saleID]
	if !ok || s.ClubID != clubID {
		return nil, apperror.NewNotFound("sale", saleID)
	}
	cp := *s
	return &cp, nil
}

func (m *memSales) SaveItems(_ context.Context, saleID id.ID, items []Item) error {
	m.items[saleID] = append([]Item(nil), items...)
	return nil
}

func (m *memSales) ItemsBySales(_ context.Context, saleIDs []id.ID) (map[id.ID][]Item, error) {
	out := map[id.ID][]Item{}
	for _, sid := range saleIDs {
		if items, ok := m.items[sid]; ok {
			out[sid] = items
		}
	}
	return out, nil
}

func (m *memSales) List(_ context.Context, f domain.ListFilter) (domain.ListResult[*Sale], error) {
	res := domain.ListResult[*Sale]{Limit: f.Limit, Offset: f.Offset}
	for i := len(m.order) - 1; i >= 0; i-- {
		s := m.sales[m.order[i]]
		for _, c := range f.ClubIDs {
			if s.ClubID == c {
				cp := *s
				res.Items = append(res.Items, &cp)
			}
		}
	}
	res.TotalCount = int64(len(res.Items))
	return res, nil
}

type recordingLedger struct {
	inputs []inventory.AdjustInput
	err    error
}

func (l *recordingLedger) Adjust(_ context.Context, in inventory.AdjustInput) (*inventory.AdjustResult, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.inputs = append(l.inputs, in)
	return &inventory.AdjustResult{}, nil
}

type passTx struct{}

func (passTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService(ledger *recordingLedger) (*Service, *memSales) {
	repo := newMemSales()
	svc := NewService(repo, ledger, &numerator.MockGenerator{}, passTx{})
	svc.now = func() time.Time { return time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC) }
	return svc, repo
}

func sampleSale(clubID id.ID) *Sale {
	s := NewSale(clubID)
	s.AddItem(Item{
		ProductID:   id.New(),
		ProductName: "Shake",
		Quantity:    2,
		UnitPrice:   types.MustMoney("45.50"),
		Type:        ItemPrepared,
		Extras:      []Extra{{Description: "extra scoop", Quantity: 2, Cost: types.MustMoney("10")}},
	})
	s.AddItem(Item{
		ProductID:   id.New(),
		ProductName: "Water",
		Quantity:    3,
		UnitPrice:   types.MustMoney("15"),
		Type:        ItemSealed,
	})
	return s
}

func TestComputeTotal_IncludesExtras(t *testing.T) {
	s := sampleSale(id.New())
	// 2*45.50 + 2*10 + 3*15
	assert.True(t, s.ComputeTotal().Equal(types.MustMoney("156")), s.ComputeTotal().String())
}

func TestCompleteSaleAtomically(t *testing.T) {
	ledger := &recordingLedger{}
	svc, repo := newTestService(ledger)
	clubID := id.New()

	sale, err := svc.CompleteSaleAtomically(context.Background(), sampleSale(clubID))
	require.NoError(t, err)

	assert.Equal(t, "V-2024-00001", sale.Number)
	assert.Equal(t, StatusCompleted, sale.Status)
	assert.True(t, sale.Total.Equal(types.MustMoney("156")))
	assert.Contains(t, repo.sales, sale.ID)
	assert.Len(t, repo.items[sale.ID], 2)

	require.Len(t, ledger.inputs, 1, "only sealed items move stock")
	in := ledger.inputs[0]
	assert.Equal(t, entity.MovementSale, in.Type)
	assert.Equal(t, int64(-3), *in.Quantity)
	assert.Equal(t, clubID, in.ClubID)
	require.NotNil(t, in.SaleID)
	assert.Equal(t, sale.ID, *in.SaleID)

	next, err := svc.CompleteSaleAtomically(context.Background(), sampleSale(clubID))
	require.NoError(t, err)
	assert.Equal(t, "V-2024-00002", next.Number)
}

func TestCompleteSaleAtomically_Validation(t *testing.T) {
	svc, _ := newTestService(&recordingLedger{})
	ctx := context.Background()

	t.Run("no items", func(t *testing.T) {
		_, err := svc.CompleteSaleAtomically(ctx, NewSale(id.New()))
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("no club", func(t *testing.T) {
		_, err := svc.CompleteSaleAtomically(ctx, sampleSale(id.ID{}))
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("zero quantity", func(t *testing.T) {
		s := sampleSale(id.New())
		s.Items[0].Quantity = 0
		_, err := svc.CompleteSaleAtomically(ctx, s)
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("negative price", func(t *testing.T) {
		s := sampleSale(id.New())
		s.Items[1].UnitPrice = types.MustMoney("-1")
		_, err := svc.CompleteSaleAtomically(ctx, s)
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("mismatching client total", func(t *testing.T) {
		s := sampleSale(id.New())
		s.Total = types.MustMoney("100")
		_, err := svc.CompleteSaleAtomically(ctx, s)
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("matching client total", func(t *testing.T) {
		s := sampleSale(id.New())
		s.Total = types.MustMoney("156.00")
		_, err := svc.CompleteSaleAtomically(ctx, s)
		assert.NoError(t, err)
	})
}

func TestCompleteSaleAtomically_LedgerFailureAborts(t *testing.T) {
	boom := errors.New("stock write failed")
	svc, _ := newTestService(&recordingLedger{err: boom})

	_, err := svc.CompleteSaleAtomically(context.Background(), sampleSale(id.New()))
	assert.ErrorIs(t, err, boom)
}

type recordingChanges struct{ touched []id.ID }

func (c *recordingChanges) Touch(_ context.Context, clubIDs ...id.ID) error {
	c.touched = append(c.touched, clubIDs...)
	return nil
}

func TestCompleteSaleAtomically_ReportsChangedClub(t *testing.T) {
	changes := &recordingChanges{}
	svc := NewService(newMemSales(), &recordingLedger{}, &numerator.MockGenerator{}, passTx{}, WithChanges(changes))
	clubID := id.New()

	_, err := svc.CompleteSaleAtomically(context.Background(), sampleSale(clubID))
	require.NoError(t, err)
	assert.Equal(t, []id.ID{clubID}, changes.touched)

	failing := NewService(newMemSales(), &recordingLedger{err: errors.New("stock write failed")},
		&numerator.MockGenerator{}, passTx{}, WithChanges(changes))
	_, err = failing.CompleteSaleAtomically(context.Background(), sampleSale(clubID))
	require.Error(t, err)
	assert.Len(t, changes.touched, 1)
}

func TestGetByID_ScopedToClub(t *testing.T) {
	svc, _ := newTestService(&recordingLedger{})
	clubID := id.New()
	sale, err := svc.CompleteSaleAtomically(context.Background(), sampleSale(clubID))
	require.NoError(t, err)

	got, err := svc.GetByID(context.Background(), clubID, sale.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)

	_, err = svc.GetByID(context.Background(), id.New(), sale.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestList_EmptyScope(t *testing.T) {
	svc, _ := newTestService(&recordingLedger{})
	_, err := svc.CompleteSaleAtomically(context.Background(), sampleSale(id.New()))
	require.NoError(t, err)

	res, err := svc.List(context.Background(), domain.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}
