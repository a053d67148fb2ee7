package inventory

import (
	"context"
	"encoding/json"
	"slices"
	"sort"
	"sync"
	"time"

	"clubledger/internal/core/apperror"
	"clubledger/internal/core/entity"
	"clubledger/internal/core/id"
	"clubledger/internal/core/types"
	"clubledger/internal/domain/audit"
	"clubledger/internal/domain/catalogs/product"
)

type pairKey struct{ club, product id.ID }

// memRepo keeps the ledger in maps and mirrors the SQL semantics.
type memRepo struct {
	mu        sync.Mutex
	movements []entity.InventoryMovement
	records   map[pairKey]*entity.InventoryRecord
	snapshots []entity.InventorySnapshot
	names     map[id.ID]string
}

func newMemRepo() *memRepo {
	return &memRepo{records: map[pairKey]*entity.InventoryRecord{}, names: map[id.ID]string{}}
}

func (r *memRepo) CreateMovement(_ context.Context, m *entity.InventoryMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *memRepo) find(clubID, movementID id.ID) int {
	for i, m := range r.movements {
		if m.ID == movementID && m.ClubID == clubID {
			return i
		}
	}
	return -1
}

func (r *memRepo) GetMovement(_ context.Context, clubID, movementID id.ID) (*entity.InventoryMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.find(clubID, movementID)
	if i < 0 {
		return nil, apperror.NewNotFound("inventory movement", movementID)
	}
	m := r.movements[i]
	return &m, nil
}

func (r *memRepo) GetMovementForUpdate(ctx context.Context, clubID, movementID id.ID) (*entity.InventoryMovement, error) {
	return r.GetMovement(ctx, clubID, movementID)
}

func (r *memRepo) UpdateMovement(_ context.Context, m *entity.InventoryMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.find(m.ClubID, m.ID)
	if i < 0 {
		return apperror.NewNotFound("inventory movement", m.ID)
	}
	r.movements[i] = *m
	return nil
}

func (r *memRepo) DeleteMovement(_ context.Context, clubID, movementID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.find(clubID, movementID)
	if i < 0 {
		return apperror.NewNotFound("inventory movement", movementID)
	}
	r.movements = slices.Delete(r.movements, i, i+1)
	return nil
}

func (r *memRepo) ListMovements(_ context.Context, f MovementFilter) ([]entity.InventoryMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.InventoryMovement
	for _, m := range r.movements {
		if !slices.Contains(f.ClubIDs, m.ClubID) {
			continue
		}
		if f.ProductID != nil && m.ProductID != *f.ProductID {
			continue
		}
		if len(f.Types) > 0 && !slices.Contains(f.Types, m.Type) {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Offset >= len(out) {
		return nil, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *memRepo) ApplyDelta(_ context.Context, clubID, productID id.ID, delta int64) (*entity.InventoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := pairKey{clubID, productID}
	rec, ok := r.records[k]
	if !ok {
		rec = &entity.InventoryRecord{ClubID: clubID, ProductID: productID}
		r.records[k] = rec
	}
	rec.Quantity += delta
	out := *rec
	return &out, nil
}

func (r *memRepo) AddToExisting(_ context.Context, clubID, productID id.ID, delta int64) (*entity.InventoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[pairKey{clubID, productID}]
	if !ok {
		return nil, nil
	}
	rec.Quantity += delta
	out := *rec
	return &out, nil
}

func (r *memRepo) GetRecord(_ context.Context, clubID, productID id.ID) (*entity.InventoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[pairKey{clubID, productID}]
	if !ok {
		return nil, nil
	}
	out := *rec
	return &out, nil
}

func (r *memRepo) ListRecords(_ context.Context, f RecordFilter) ([]StockItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []StockItem
	for _, rec := range r.records {
		if !slices.Contains(f.ClubIDs, rec.ClubID) {
			continue
		}
		if f.Below != nil && rec.Quantity >= *f.Below {
			continue
		}
		out = append(out, StockItem{InventoryRecord: *rec, ProductName: r.names[rec.ProductID]})
	}
	return out, nil
}

func (r *memRepo) SetRecord(_ context.Context, clubID, productID id.ID, quantity int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[pairKey{clubID, productID}] = &entity.InventoryRecord{ClubID: clubID, ProductID: productID, Quantity: quantity}
	return nil
}

func (r *memRepo) SumMovements(_ context.Context, clubID id.ID) (map[id.ID]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sums := map[id.ID]int64{}
	for _, m := range r.movements {
		if m.ClubID == clubID {
			sums[m.ProductID] += m.Quantity
		}
	}
	return sums, nil
}

// Turnover starts from the latest usable snapshot like the SQL does.
func (r *memRepo) Turnover(_ context.Context, f TurnoverFilter) ([]entity.Turnover, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var order []pairKey
	rows := map[pairKey]*entity.Turnover{}
	row := func(k pairKey) *entity.Turnover {
		t, ok := rows[k]
		if !ok {
			t = &entity.Turnover{ClubID: k.club, ProductID: k.product}
			rows[k] = t
			order = append(order, k)
		}
		return t
	}
	match := func(clubID, productID id.ID) bool {
		return slices.Contains(f.ClubIDs, clubID) && (f.ProductID == nil || *f.ProductID == productID)
	}

	base := map[pairKey]time.Time{}
	for _, s := range r.snapshots {
		if !match(s.ClubID, s.ProductID) || s.AsOf.After(f.From) {
			continue
		}
		k := pairKey{s.ClubID, s.ProductID}
		if cur, ok := base[k]; ok && !s.AsOf.After(cur) {
			continue
		}
		base[k] = s.AsOf
		row(k).Opening = s.Quantity
	}

	for _, m := range r.movements {
		if !match(m.ClubID, m.ProductID) || m.CreatedAt.After(f.To) {
			continue
		}
		k := pairKey{m.ClubID, m.ProductID}
		if asOf, ok := base[k]; ok && m.CreatedAt.Before(asOf) {
			continue
		}
		t := row(k)
		if m.CreatedAt.Before(f.From) {
			t.Opening += m.Quantity
			continue
		}
		abs := m.Quantity
		if abs < 0 {
			abs = -abs
		}
		if m.Type.IsInflow() {
			t.Inflow += abs
		} else {
			t.Outflow += abs
		}
		t.Net += m.Quantity
	}

	out := make([]entity.Turnover, 0, len(order))
	for _, k := range order {
		out = append(out, *rows[k])
	}
	return out, nil
}

func (r *memRepo) SaveSnapshots(_ context.Context, snaps []entity.InventorySnapshot) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, snaps...)
	return int64(len(snaps)), nil
}

func (r *memRepo) InvalidateSnapshots(_ context.Context, clubID, productID id.ID, after time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = slices.DeleteFunc(r.snapshots, func(s entity.InventorySnapshot) bool {
		return s.ClubID == clubID && s.ProductID == productID && s.AsOf.After(after)
	})
	return nil
}

func (r *memRepo) record(clubID, productID id.ID) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[pairKey{clubID, productID}]
	if !ok {
		return 0, false
	}
	return rec.Quantity, true
}

// backdate moves a stored movement's creation time.
func (r *memRepo) backdate(movementID id.ID, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.movements {
		if r.movements[i].ID == movementID {
			r.movements[i].CreatedAt = at
		}
	}
}

type memProducts struct {
	mu       sync.Mutex
	products map[pairKey]*product.Product
}

func newMemProducts() *memProducts {
	return &memProducts{products: map[pairKey]*product.Product{}}
}

func (p *memProducts) add(clubID id.ID, name string) id.ID {
	prod := product.NewProduct(clubID, name, product.TypeSealed)
	prod.PurchasePrice = types.MustMoney("10")
	prod.SalePrice = types.MustMoney("25")
	p.mu.Lock()
	defer p.mu.Unlock()
	p.products[pairKey{clubID, prod.ID}] = prod
	return prod.ID
}

func (p *memProducts) GetByID(_ context.Context, clubID, productID id.ID) (*product.Product, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prod, ok := p.products[pairKey{clubID, productID}]
	if !ok {
		return nil, apperror.NewNotFound("product", productID)
	}
	return prod, nil
}

func (p *memProducts) UpdatePrices(_ context.Context, clubID, productID id.ID, upd product.PriceUpdate) (*product.Product, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prod, ok := p.products[pairKey{clubID, productID}]
	if !ok {
		return nil, apperror.NewNotFound("product", productID)
	}
	if upd.Purchase.Valid {
		prod.PurchasePrice = upd.Purchase.Decimal
	}
	if upd.Sale.Valid {
		prod.SalePrice = upd.Sale.Decimal
	}
	return prod, nil
}

// passTx runs fn directly; the maps are the only state.
type passTx struct{ calls int }

func (t *passTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type memAudit struct{ entries []audit.Entry }

func (a *memAudit) Record(_ context.Context, e audit.Entry) error {
	a.entries = append(a.entries, e)
	return nil
}

func (a *memAudit) Revisions(_ context.Context, entityType string, entityID id.ID, _ int) ([]audit.Revision, error) {
	var out []audit.Revision
	for i := len(a.entries) - 1; i >= 0; i-- {
		e := a.entries[i]
		if e.EntityType != entityType || e.EntityID != entityID {
			continue
		}
		changes, _ := json.Marshal(e.Changes)
		meta, _ := json.Marshal(e.Metadata)
		out = append(out, audit.Revision{ID: id.New(), Action: e.Action, Changes: changes, Metadata: meta})
	}
	return out, nil
}

type memChanges struct{ touched []id.ID }

func (c *memChanges) Touch(_ context.Context, clubIDs ...id.ID) error {
	c.touched = append(c.touched, clubIDs...)
	return nil
}

type memLocker struct{ keys []string }

func (l *memLocker) Obtain(_ context.Context, key string) (Unlock, error) {
	l.keys = append(l.keys, key)
	return func(context.Context) error { return nil }, nil
}
