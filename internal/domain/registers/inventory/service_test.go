package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubledger/internal/core/apperror"
	"clubledger/internal/core/entity"
	"clubledger/internal/core/id"
	"clubledger/internal/core/period"
	"clubledger/internal/core/scope"
	"clubledger/internal/domain/audit"
)

type fixture struct {
	svc      *Service
	repo     *memRepo
	products *memProducts
	audit    *memAudit
	locker   *memLocker
	changes  *memChanges
	club     id.ID
	product  id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:     newMemRepo(),
		products: newMemProducts(),
		audit:    &memAudit{},
		locker:   &memLocker{},
		changes:  &memChanges{},
		club:     id.New(),
	}
	f.product = f.products.add(f.club, "Protein bar")
	f.svc = NewService(f.repo, f.products, &passTx{}, WithAudit(f.audit), WithAuditTrail(f.audit),
		WithLocker(f.locker), WithChanges(f.changes))
	return f
}

func qty(v int64) *int64 { return &v }

func (f *fixture) adjust(t *testing.T, typ entity.MovementType, q int64) *AdjustResult {
	t.Helper()
	res, err := f.svc.Adjust(context.Background(), AdjustInput{
		ClubID:    f.club,
		ProductID: f.product,
		Type:      typ,
		Quantity:  qty(q),
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) balance(t *testing.T) int64 {
	t.Helper()
	q, ok := f.repo.record(f.club, f.product)
	require.True(t, ok, "record must exist")
	return q
}

func TestAdjust_RestockSaleThenEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	restock := f.adjust(t, entity.MovementRestock, 100)
	assert.Equal(t, int64(100), restock.Inventory.Quantity)
	assert.Equal(t, entity.DirectionIn, restock.Movement.Direction)

	sale := f.adjust(t, entity.MovementSale, -30)
	assert.Equal(t, int64(70), sale.Inventory.Quantity)
	assert.Equal(t, entity.DirectionOut, sale.Movement.Direction)

	edited, err := f.svc.EditMovement(ctx, EditInput{
		ClubID:     f.club,
		MovementID: restock.Movement.ID,
		Quantity:   qty(80),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(-20), edited.Diff)
	require.NotNil(t, edited.Inventory)
	assert.Equal(t, int64(50), edited.Inventory.Quantity)
	assert.Equal(t, int64(50), f.balance(t))
}

func TestDeleteMovement_AddsBackRemovedStock(t *testing.T) {
	f := newFixture(t)

	f.adjust(t, entity.MovementRestock, 50)
	damaged := f.adjust(t, entity.MovementDamaged, -20)
	require.Equal(t, int64(30), f.balance(t))

	res, err := f.svc.DeleteMovement(context.Background(), f.club, damaged.Movement.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(50), res.Inventory.Quantity)
	assert.Equal(t, int64(50), f.balance(t))

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, audit.ActionDelete, f.audit.entries[0].Action)
	assert.Equal(t, damaged.Movement.ID, f.audit.entries[0].EntityID)
	assert.Equal(t, []string{LockKey(f.club, f.product)}, f.locker.keys)
}

func TestBalanceMatchesSurvivingMovements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.adjust(t, entity.MovementPurchase, 40)
	b := f.adjust(t, entity.MovementGift, -3)
	c := f.adjust(t, entity.MovementOther, 7)
	f.adjust(t, entity.MovementUseInPrepared, -5)

	_, err := f.svc.EditMovement(ctx, EditInput{ClubID: f.club, MovementID: b.Movement.ID, Quantity: qty(-9)})
	require.NoError(t, err)
	_, err = f.svc.DeleteMovement(ctx, f.club, c.Movement.ID)
	require.NoError(t, err)
	_, err = f.svc.EditMovement(ctx, EditInput{ClubID: f.club, MovementID: a.Movement.ID, Quantity: qty(41)})
	require.NoError(t, err)

	sums, err := f.repo.SumMovements(ctx, f.club)
	require.NoError(t, err)
	assert.Equal(t, sums[f.product], f.balance(t))
	assert.Equal(t, int64(41-9-5), f.balance(t))

	drifts, err := f.svc.VerifyBalances(ctx, f.club)
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestAdjust_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   AdjustInput
		code string
	}{
		{"missing product", AdjustInput{ClubID: f.club, Type: entity.MovementRestock, Quantity: qty(1)}, apperror.CodeMissingField},
		{"missing club", AdjustInput{ProductID: f.product, Type: entity.MovementRestock, Quantity: qty(1)}, apperror.CodeMissingField},
		{"missing quantity", AdjustInput{ClubID: f.club, ProductID: f.product, Type: entity.MovementRestock}, apperror.CodeMissingField},
		{"unknown type", AdjustInput{ClubID: f.club, ProductID: f.product, Type: "stolen", Quantity: qty(1)}, apperror.CodeMissingField},
		{"product of another club", AdjustInput{ClubID: id.New(), ProductID: f.product, Type: entity.MovementRestock, Quantity: qty(1)}, apperror.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Adjust(ctx, tt.in)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok, "expected AppError, got %v", err)
			assert.Equal(t, tt.code, appErr.Code)
		})
	}

	_, ok := f.repo.record(f.club, f.product)
	assert.False(t, ok, "failed adjustments must not create a record")
}

func TestAdjust_PropagatesCatalogPrices(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Adjust(context.Background(), AdjustInput{
		ClubID:             f.club,
		ProductID:          f.product,
		Type:               entity.MovementPurchase,
		Quantity:           qty(12),
		PurchasePrice:      decimal.NewNullDecimal(decimal.RequireFromString("12.50")),
		UpdateCatalogPrice: true,
	})
	require.NoError(t, err)

	p, err := f.products.GetByID(context.Background(), f.club, f.product)
	require.NoError(t, err)
	assert.True(t, p.PurchasePrice.Equal(decimal.RequireFromString("12.50")))
	assert.True(t, p.SalePrice.Equal(decimal.RequireFromString("25")), "sale price untouched")
}

func TestEditMovement_WithoutRecordSkipsBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m := entity.NewInventoryMovement(f.club, f.product, entity.MovementRestock, 10)
	require.NoError(t, f.repo.CreateMovement(ctx, m))

	res, err := f.svc.EditMovement(ctx, EditInput{ClubID: f.club, MovementID: m.ID, Quantity: qty(15)})
	require.NoError(t, err)

	assert.Nil(t, res.Inventory)
	_, ok := f.repo.record(f.club, f.product)
	assert.False(t, ok, "edit must not create a record")
}

func TestEditMovement_OtherClubIsNotFound(t *testing.T) {
	f := newFixture(t)
	m := f.adjust(t, entity.MovementRestock, 10)

	_, err := f.svc.EditMovement(context.Background(), EditInput{ClubID: id.New(), MovementID: m.Movement.ID, Quantity: qty(1)})
	assert.True(t, apperror.IsNotFound(err))

	_, err = f.svc.DeleteMovement(context.Background(), id.New(), m.Movement.ID)
	assert.True(t, apperror.IsNotFound(err))
	assert.Equal(t, int64(10), f.balance(t))
}

func TestEditMovement_AuditsChangedFields(t *testing.T) {
	f := newFixture(t)
	m := f.adjust(t, entity.MovementRestock, 10)
	newType := entity.MovementPurchase

	_, err := f.svc.EditMovement(context.Background(), EditInput{
		ClubID:     f.club,
		MovementID: m.Movement.ID,
		Type:       &newType,
		Quantity:   qty(10),
	})
	require.NoError(t, err)

	require.Len(t, f.audit.entries, 1)
	changes := f.audit.entries[0].Changes
	assert.Contains(t, changes, "type")
	assert.NotContains(t, changes, "quantity")
}

func TestEditMovement_TypeOnlyStillReturnsBalance(t *testing.T) {
	f := newFixture(t)
	m := f.adjust(t, entity.MovementRestock, 10)
	newType := entity.MovementPurchase

	res, err := f.svc.EditMovement(context.Background(), EditInput{
		ClubID:     f.club,
		MovementID: m.Movement.ID,
		Type:       &newType,
		Quantity:   qty(10),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), res.Diff)
	require.NotNil(t, res.Inventory)
	assert.Equal(t, int64(10), res.Inventory.Quantity)
}

func TestAdjust_SaleMayOverdrawStock(t *testing.T) {
	f := newFixture(t)

	f.adjust(t, entity.MovementRestock, 2)
	res := f.adjust(t, entity.MovementSale, -5)

	assert.Equal(t, int64(-3), res.Inventory.Quantity)
	assert.Equal(t, int64(-3), f.balance(t))
}

func TestLedgerWrites_ReportChangedClub(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m := f.adjust(t, entity.MovementRestock, 10)
	_, err := f.svc.EditMovement(ctx, EditInput{ClubID: f.club, MovementID: m.Movement.ID, Quantity: qty(8)})
	require.NoError(t, err)
	_, err = f.svc.DeleteMovement(ctx, f.club, m.Movement.ID)
	require.NoError(t, err)

	assert.Equal(t, []id.ID{f.club, f.club, f.club}, f.changes.touched)

	// A failed write reports nothing.
	_, err = f.svc.DeleteMovement(ctx, f.club, m.Movement.ID)
	require.Error(t, err)
	assert.Len(t, f.changes.touched, 3)
}

func TestMovementAudit_ListsRevisionsOfOwnClub(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.adjust(t, entity.MovementRestock, 10)

	_, err := f.svc.EditMovement(ctx, EditInput{ClubID: f.club, MovementID: m.Movement.ID, Quantity: qty(12)})
	require.NoError(t, err)
	_, err = f.svc.DeleteMovement(ctx, f.club, m.Movement.ID)
	require.NoError(t, err)

	revs, err := f.svc.MovementAudit(ctx, f.club, m.Movement.ID)
	require.NoError(t, err)
	require.Len(t, revs, 2)
	assert.Equal(t, audit.ActionDelete, revs[0].Action)
	assert.Equal(t, audit.ActionUpdate, revs[1].Action)

	other, err := f.svc.MovementAudit(ctx, id.New(), m.Movement.ID)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestLowStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.adjust(t, entity.MovementRestock, 4)

	other := f.products.add(f.club, "Water")
	_, err := f.svc.Adjust(ctx, AdjustInput{ClubID: f.club, ProductID: other, Type: entity.MovementRestock, Quantity: qty(5)})
	require.NoError(t, err)

	items, err := f.svc.LowStock(ctx, []id.ID{f.club}, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, f.product, items[0].ProductID)

	items, err = f.svc.LowStock(ctx, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestReconstruct_MatchesRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	loc := time.UTC
	may := period.RangeAt(period.Monthly, time.Date(2024, time.May, 15, 0, 0, 0, 0, loc), loc)

	before := f.adjust(t, entity.MovementRestock, 60)
	f.repo.backdate(before.Movement.ID, time.Date(2024, time.April, 20, 0, 0, 0, 0, loc))
	in := f.adjust(t, entity.MovementPurchase, 15)
	f.repo.backdate(in.Movement.ID, time.Date(2024, time.May, 2, 0, 0, 0, 0, loc))
	out := f.adjust(t, entity.MovementSale, -25)
	f.repo.backdate(out.Movement.ID, time.Date(2024, time.May, 10, 0, 0, 0, 0, loc))
	gift := f.adjust(t, entity.MovementGift, 3)
	f.repo.backdate(gift.Movement.ID, time.Date(2024, time.May, 11, 0, 0, 0, 0, loc))

	line, err := f.svc.Reconstruct(ctx, scope.Single(f.club), f.product, may)
	require.NoError(t, err)

	assert.Equal(t, int64(60), line.InitialStock)
	assert.Equal(t, int64(15), line.Inflow)
	assert.Equal(t, int64(28), line.Outflow, "non-inflow types count as outflow by magnitude")
	assert.Equal(t, int64(-7), line.NetPeriodDelta)
	assert.Equal(t, f.balance(t), line.CurrentStock)
}

func TestReconstructAll_SaleDecrementsAreOutflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	loc := time.UTC
	may := period.RangeAt(period.Monthly, time.Date(2024, time.May, 15, 0, 0, 0, 0, loc), loc)

	stock := f.adjust(t, entity.MovementRestock, 20)
	f.repo.backdate(stock.Movement.ID, time.Date(2024, time.May, 1, 0, 0, 0, 0, loc))
	saleID := id.New()
	sold, err := f.svc.Adjust(ctx, AdjustInput{
		ClubID:    f.club,
		ProductID: f.product,
		Type:      entity.MovementSale,
		Quantity:  qty(-4),
		SaleID:    &saleID,
	})
	require.NoError(t, err)
	f.repo.backdate(sold.Movement.ID, time.Date(2024, time.May, 3, 0, 0, 0, 0, loc))

	lines, err := f.svc.ReconstructAll(ctx, scope.Single(f.club), may)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(20), lines[0].Inflow)
	assert.Equal(t, int64(4), lines[0].Outflow)
	assert.Equal(t, int64(16), lines[0].CurrentStock)
}

func TestReconstruct_SnapshotGivesSameResult(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	loc := time.UTC
	may := period.RangeAt(period.Monthly, time.Date(2024, time.May, 15, 0, 0, 0, 0, loc), loc)

	a := f.adjust(t, entity.MovementRestock, 30)
	f.repo.backdate(a.Movement.ID, time.Date(2024, time.March, 3, 0, 0, 0, 0, loc))
	b := f.adjust(t, entity.MovementDamaged, -4)
	f.repo.backdate(b.Movement.ID, time.Date(2024, time.April, 9, 0, 0, 0, 0, loc))
	c := f.adjust(t, entity.MovementRestock, 6)
	f.repo.backdate(c.Movement.ID, time.Date(2024, time.May, 9, 0, 0, 0, 0, loc))

	full, err := f.svc.Reconstruct(ctx, scope.Single(f.club), f.product, may)
	require.NoError(t, err)

	n, err := f.svc.WriteSnapshots(ctx, f.club, time.Date(2024, time.April, 1, 0, 0, 0, 0, loc))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	fast, err := f.svc.Reconstruct(ctx, scope.Single(f.club), f.product, may)
	require.NoError(t, err)
	assert.Equal(t, full, fast)

	// Editing history before the snapshot drops it.
	_, err = f.svc.EditMovement(ctx, EditInput{ClubID: f.club, MovementID: a.Movement.ID, Quantity: qty(31)})
	require.NoError(t, err)
	assert.Empty(t, f.repo.snapshots)

	after, err := f.svc.Reconstruct(ctx, scope.Single(f.club), f.product, may)
	require.NoError(t, err)
	assert.Equal(t, int64(27), after.InitialStock)
	assert.Equal(t, f.balance(t), after.CurrentStock)
}

func TestReconstructAll_GlobalScopeExcludesForeignClub(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	clubB, clubC := id.New(), id.New()
	prodB := f.products.add(clubB, "Protein bar")
	prodC := f.products.add(clubC, "Protein bar")

	f.adjust(t, entity.MovementRestock, 10)
	for _, in := range []AdjustInput{
		{ClubID: clubB, ProductID: prodB, Type: entity.MovementRestock, Quantity: qty(20)},
		{ClubID: clubC, ProductID: prodC, Type: entity.MovementRestock, Quantity: qty(99)},
	} {
		_, err := f.svc.Adjust(ctx, in)
		require.NoError(t, err)
	}

	now := time.Now()
	r := period.Range{Start: now.Add(-time.Hour), End: now.Add(time.Hour)}
	lines, err := f.svc.ReconstructAll(ctx, scope.Multiple(f.club, clubB), r)
	require.NoError(t, err)

	var total int64
	for _, l := range lines {
		assert.NotEqual(t, prodC, l.ProductID)
		total += l.CurrentStock
	}
	assert.Len(t, lines, 2)
	assert.Equal(t, int64(30), total)

	empty, err := f.svc.ReconstructAll(ctx, scope.Multiple(), r)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRepairBalances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.adjust(t, entity.MovementRestock, 12)
	require.NoError(t, f.repo.SetRecord(ctx, f.club, f.product, 3))

	orphan := f.products.add(f.club, "Towel")
	require.NoError(t, f.repo.CreateMovement(ctx, entity.NewInventoryMovement(f.club, orphan, entity.MovementRestock, 4)))

	fixed, err := f.svc.RepairBalances(ctx, f.club)
	require.NoError(t, err)
	assert.Len(t, fixed, 2)

	assert.Equal(t, int64(12), f.balance(t))
	q, ok := f.repo.record(f.club, orphan)
	require.True(t, ok)
	assert.Equal(t, int64(4), q)

	drifts, err := f.svc.VerifyBalances(ctx, f.club)
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestHistory_NewestFirstAndPaged(t *testing.T) {
	f := newFixture(t)
	first := f.adjust(t, entity.MovementRestock, 1)
	f.repo.backdate(first.Movement.ID, time.Now().Add(-time.Hour))
	second := f.adjust(t, entity.MovementRestock, 2)

	page, err := f.svc.History(context.Background(), f.club, f.product, 1, 0)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, second.Movement.ID, page[0].ID)

	page, err = f.svc.History(context.Background(), f.club, f.product, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, first.Movement.ID, page[0].ID)
}
