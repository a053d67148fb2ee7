package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"clubledger/internal/core/apperror"
	"clubledger/internal/core/changes"
	appctx "clubledger/internal/core/context"
	"clubledger/internal/core/entity"
	"clubledger/internal/core/id"
	"clubledger/internal/core/tx"
	"clubledger/internal/domain/audit"
	"clubledger/internal/domain/catalogs/product"
	"clubledger/pkg/logger"
)

// DefaultLowStockThreshold is used when the caller gives none.
const DefaultLowStockThreshold int64 = 5

const auditEntity = "inventory_movement"

// Products is the catalog view the ledger needs.
type Products interface {
	GetByID(ctx context.Context, clubID, productID id.ID) (*product.Product, error)
	UpdatePrices(ctx context.Context, clubID, productID id.ID, upd product.PriceUpdate) (*product.Product, error)
}

// Unlock releases a lock obtained from a Locker.
type Unlock func(ctx context.Context) error

// Locker serializes writers of one (club, product) pair across processes.
type Locker interface {
	Obtain(ctx context.Context, key string) (Unlock, error)
}

type nopLocker struct{}

func (nopLocker) Obtain(context.Context, string) (Unlock, error) {
	return func(context.Context) error { return nil }, nil
}

// Service provides ledger operations.
type Service struct {
	repo      Repository
	products  Products
	txManager tx.Manager
	audit     audit.Logger
	trail     audit.Reader
	locker    Locker
	changes   changes.Notifier
}

// Option configures a Service.
type Option func(*Service)

// WithAudit records edits and deletions.
func WithAudit(l audit.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.audit = l
		}
	}
}

// WithAuditTrail lets MovementAudit read back recorded revisions.
func WithAuditTrail(r audit.Reader) Option {
	return func(s *Service) {
		if r != nil {
			s.trail = r
		}
	}
}

// WithChanges reports clubs whose stock changed after each committed write.
func WithChanges(n changes.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.changes = n
		}
	}
}

// WithLocker enables a distributed per-pair lock around edits and deletions.
func WithLocker(l Locker) Option {
	return func(s *Service) {
		if l != nil {
			s.locker = l
		}
	}
}

// NewService creates a ledger service.
func NewService(repo Repository, products Products, txManager tx.Manager, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		products:  products,
		txManager: txManager,
		audit:     audit.Nop{},
		locker:    nopLocker{},
		changes:   changes.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AdjustInput is one stock-affecting event.
type AdjustInput struct {
	ClubID    id.ID
	ProductID id.ID
	Type      entity.MovementType
	// Quantity is signed. Nil means the caller sent nothing usable.
	Quantity *int64
	Notes    string

	PurchasePrice      decimal.NullDecimal
	SalePrice          decimal.NullDecimal
	UpdateCatalogPrice bool

	SaleID *id.ID
}

// Validate checks required fields.
func (in AdjustInput) Validate() error {
	var missing []string
	if id.IsNil(in.ProductID) {
		missing = append(missing, "productId")
	}
	if in.Type == "" {
		missing = append(missing, "type")
	}
	if id.IsNil(in.ClubID) {
		missing = append(missing, "club")
	}
	if in.Quantity == nil {
		missing = append(missing, "quantity")
	}
	if len(missing) > 0 {
		return apperror.NewMissingField(missing...)
	}
	if !in.Type.Valid() {
		err := apperror.NewMissingField("type")
		err.Message = "type must be one of " + typeList()
		return err.WithDetail("allowed", entity.MovementTypes)
	}
	return nil
}

func typeList() string {
	names := make([]string, len(entity.MovementTypes))
	for i, t := range entity.MovementTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// AdjustResult is the written movement and the balance after it.
type AdjustResult struct {
	Movement  *entity.InventoryMovement `json:"movement"`
	Inventory *entity.InventoryRecord   `json:"inventory"`
}

// Adjust appends a movement and moves the pair's balance by its quantity.
// When UpdateCatalogPrice is set the given prices are copied to the product.
// Everything happens in one transaction; a surrounding transaction is joined.
func (s *Service) Adjust(ctx context.Context, in AdjustInput) (*AdjustResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	m := entity.NewInventoryMovement(in.ClubID, in.ProductID, in.Type, *in.Quantity)
	m.Notes = in.Notes
	m.PurchasePrice = in.PurchasePrice
	m.SalePrice = in.SalePrice
	m.SaleID = in.SaleID
	m.CreatedBy = appctx.GetUserID(ctx)

	var res AdjustResult
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.products.GetByID(ctx, in.ClubID, in.ProductID); err != nil {
			return err
		}
		if err := s.repo.CreateMovement(ctx, m); err != nil {
			return fmt.Errorf("create movement: %w", err)
		}
		rec, err := s.repo.ApplyDelta(ctx, in.ClubID, in.ProductID, m.Quantity)
		if err != nil {
			return fmt.Errorf("apply delta: %w", err)
		}
		if in.UpdateCatalogPrice {
			upd := product.PriceUpdate{Purchase: in.PurchasePrice, Sale: in.SalePrice}
			if !upd.IsEmpty() {
				if _, err := s.products.UpdatePrices(ctx, in.ClubID, in.ProductID, upd); err != nil {
					return fmt.Errorf("propagate prices: %w", err)
				}
			}
		}
		res = AdjustResult{Movement: m, Inventory: rec}
		return nil
	})
	if err != nil {
		return nil, err
	}

	changes.Notify(ctx, s.changes, in.ClubID)

	logger.Info(ctx, "inventory adjusted",
		"club", in.ClubID,
		"product", in.ProductID,
		"type", in.Type,
		"quantity", m.Quantity,
		"balance", res.Inventory.Quantity,
	)
	return &res, nil
}

// EditInput changes a recorded movement. Nil fields are left as they are.
type EditInput struct {
	ClubID     id.ID
	MovementID id.ID
	Type       *entity.MovementType
	Quantity   *int64
	Notes      *string
}

// EditResult is the updated movement and, when the pair has one, its balance.
type EditResult struct {
	Movement  *entity.InventoryMovement `json:"movement"`
	Inventory *entity.InventoryRecord   `json:"inventory,omitempty"`
	Diff      int64                     `json:"diff"`
}

// EditMovement overwrites a movement and reconciles the balance by the
// quantity difference. A missing balance record is left missing.
func (s *Service) EditMovement(ctx context.Context, in EditInput) (*EditResult, error) {
	if id.IsNil(in.ClubID) {
		return nil, apperror.NewMissingField("club")
	}
	if in.Quantity == nil {
		return nil, apperror.NewMissingField("quantity")
	}
	if in.Type != nil && !in.Type.Valid() {
		return nil, apperror.NewInvalidInput("type", "must be one of "+typeList())
	}

	var res EditResult
	err := s.withPairLock(ctx, in.ClubID, in.MovementID, func(ctx context.Context) error {
		m, err := s.repo.GetMovementForUpdate(ctx, in.ClubID, in.MovementID)
		if err != nil {
			return err
		}
		before := movementState(m)
		diff := *in.Quantity - m.Quantity

		m.SetQuantity(*in.Quantity)
		if in.Type != nil {
			m.Type = *in.Type
		}
		if in.Notes != nil {
			m.Notes = *in.Notes
		}
		m.Touch()

		if err := s.repo.UpdateMovement(ctx, m); err != nil {
			return fmt.Errorf("update movement: %w", err)
		}
		rec, err := s.reconcile(ctx, m, diff)
		if err != nil {
			return err
		}

		if err := s.audit.Record(ctx, audit.Entry{
			EntityType: auditEntity,
			EntityID:   m.ID,
			Action:     audit.ActionUpdate,
			Changes:    audit.Diff(before, movementState(m)),
			Metadata:   map[string]any{"club": m.ClubID, "product": m.ProductID, "diff": diff},
		}); err != nil {
			return fmt.Errorf("audit: %w", err)
		}

		res = EditResult{Movement: m, Inventory: rec, Diff: diff}
		return nil
	})
	if err != nil {
		return nil, err
	}

	changes.Notify(ctx, s.changes, in.ClubID)

	logger.Info(ctx, "movement edited", "movement", in.MovementID, "club", in.ClubID, "diff", res.Diff)
	return &res, nil
}

// DeleteResult is the removed movement and the balance after removal.
type DeleteResult struct {
	Movement  *entity.InventoryMovement `json:"movement"`
	Inventory *entity.InventoryRecord   `json:"inventory,omitempty"`
}

// DeleteMovement removes a movement and takes its quantity back out of the balance.
func (s *Service) DeleteMovement(ctx context.Context, clubID, movementID id.ID) (*DeleteResult, error) {
	if id.IsNil(clubID) {
		return nil, apperror.NewMissingField("club")
	}

	var res DeleteResult
	err := s.withPairLock(ctx, clubID, movementID, func(ctx context.Context) error {
		m, err := s.repo.GetMovementForUpdate(ctx, clubID, movementID)
		if err != nil {
			return err
		}
		rec, err := s.reconcile(ctx, m, -m.Quantity)
		if err != nil {
			return err
		}
		if err := s.repo.DeleteMovement(ctx, clubID, movementID); err != nil {
			return fmt.Errorf("delete movement: %w", err)
		}

		if err := s.audit.Record(ctx, audit.Entry{
			EntityType: auditEntity,
			EntityID:   m.ID,
			Action:     audit.ActionDelete,
			Changes:    movementState(m),
			Metadata:   map[string]any{"club": m.ClubID, "product": m.ProductID},
		}); err != nil {
			return fmt.Errorf("audit: %w", err)
		}

		res = DeleteResult{Movement: m, Inventory: rec}
		return nil
	})
	if err != nil {
		return nil, err
	}

	changes.Notify(ctx, s.changes, clubID)

	logger.Info(ctx, "movement deleted", "movement", movementID, "club", clubID, "quantity", res.Movement.Quantity)
	return &res, nil
}

// reconcile moves an existing balance by delta and drops snapshots the
// change made stale.
func (s *Service) reconcile(ctx context.Context, m *entity.InventoryMovement, delta int64) (*entity.InventoryRecord, error) {
	if err := s.repo.InvalidateSnapshots(ctx, m.ClubID, m.ProductID, m.CreatedAt); err != nil {
		return nil, fmt.Errorf("invalidate snapshots: %w", err)
	}
	if delta == 0 {
		rec, err := s.repo.GetRecord(ctx, m.ClubID, m.ProductID)
		if err != nil {
			return nil, fmt.Errorf("load balance: %w", err)
		}
		return rec, nil
	}
	rec, err := s.repo.AddToExisting(ctx, m.ClubID, m.ProductID, delta)
	if err != nil {
		return nil, fmt.Errorf("reconcile balance: %w", err)
	}
	if rec == nil {
		logger.Warn(ctx, "no balance record to reconcile", "club", m.ClubID, "product", m.ProductID, "delta", delta)
	}
	return rec, nil
}

// withPairLock resolves the movement's product, holds the pair lock and runs
// fn in a transaction.
func (s *Service) withPairLock(ctx context.Context, clubID, movementID id.ID, fn func(ctx context.Context) error) error {
	m, err := s.repo.GetMovement(ctx, clubID, movementID)
	if err != nil {
		return err
	}
	unlock, err := s.locker.Obtain(ctx, LockKey(clubID, m.ProductID))
	if err != nil {
		return err
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			logger.Warn(ctx, "release inventory lock", "error", err)
		}
	}()
	return s.txManager.RunInTransaction(ctx, fn)
}

// LockKey names the lock of one (club, product) pair.
func LockKey(clubID, productID id.ID) string {
	return "inventory:" + clubID.String() + ":" + productID.String()
}

func movementState(m *entity.InventoryMovement) map[string]any {
	return map[string]any{
		"type":     string(m.Type),
		"quantity": m.Quantity,
		"notes":    m.Notes,
	}
}

// History lists movements of one product in one club, newest first.
func (s *Service) History(ctx context.Context, clubID, productID id.ID, limit, offset int) ([]entity.InventoryMovement, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	pid := productID
	return s.repo.ListMovements(ctx, MovementFilter{
		ClubIDs:   []id.ID{clubID},
		ProductID: &pid,
		Limit:     limit,
		Offset:    offset,
	})
}

// MovementAudit returns the recorded edits and deletion of a movement,
// newest first. Revisions written for another club are skipped.
func (s *Service) MovementAudit(ctx context.Context, clubID, movementID id.ID) ([]audit.Revision, error) {
	if id.IsNil(clubID) {
		return nil, apperror.NewMissingField("club")
	}
	if s.trail == nil {
		return nil, nil
	}
	revs, err := s.trail.Revisions(ctx, auditEntity, movementID, 100)
	if err != nil {
		return nil, fmt.Errorf("audit trail: %w", err)
	}

	out := revs[:0]
	for _, r := range revs {
		var meta struct {
			Club id.ID `json:"club"`
		}
		if len(r.Metadata) > 0 {
			if err := json.Unmarshal(r.Metadata, &meta); err != nil {
				logger.Warn(ctx, "unreadable audit metadata", "revision", r.ID, "error", err)
				continue
			}
		}
		if meta.Club == clubID {
			out = append(out, r)
		}
	}
	return out, nil
}

// Movements lists movements by an arbitrary filter. An empty club set yields nothing.
func (s *Service) Movements(ctx context.Context, filter MovementFilter) ([]entity.InventoryMovement, error) {
	if len(filter.ClubIDs) == 0 {
		return nil, nil
	}
	return s.repo.ListMovements(ctx, filter)
}

// Records lists current balances of the given clubs.
func (s *Service) Records(ctx context.Context, clubIDs []id.ID) ([]StockItem, error) {
	if len(clubIDs) == 0 {
		return nil, nil
	}
	return s.repo.ListRecords(ctx, RecordFilter{ClubIDs: clubIDs})
}

// LowStock lists balances strictly below threshold. A threshold of zero or
// less uses DefaultLowStockThreshold.
func (s *Service) LowStock(ctx context.Context, clubIDs []id.ID, threshold int64) ([]StockItem, error) {
	if len(clubIDs) == 0 {
		return nil, nil
	}
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	return s.repo.ListRecords(ctx, RecordFilter{ClubIDs: clubIDs, Below: &threshold})
}
