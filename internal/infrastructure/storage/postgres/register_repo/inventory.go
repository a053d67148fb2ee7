// Package register_repo provides PostgreSQL implementations for register repositories.
package register_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"clubledger/internal/core/apperror"
	"clubledger/internal/core/entity"
	"clubledger/internal/core/id"
	"clubledger/internal/domain/registers/inventory"
	"clubledger/internal/infrastructure/storage/postgres"
)

const (
	movementsTable = "inventory_movements"
	recordsTable   = "inventory_records"
	snapshotsTable = "inventory_snapshots"
)

var (
	movementCols = postgres.ExtractDBColumns[entity.InventoryMovement]()
	snapshotCols = []string{"club_id", "product_id", "as_of", "quantity"}
)

// InventoryRepo implements inventory.Repository.
type InventoryRepo struct {
	txManager *postgres.TxManager
	batch     *postgres.BatchWriter
	builder   squirrel.StatementBuilderType
}

// NewInventoryRepo creates a new inventory ledger repository.
func NewInventoryRepo(txManager *postgres.TxManager) *InventoryRepo {
	return &InventoryRepo{
		txManager: txManager,
		batch:     postgres.NewBatchWriter(txManager),
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *InventoryRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// CreateMovement inserts one movement.
func (r *InventoryRepo) CreateMovement(ctx context.Context, m *entity.InventoryMovement) error {
	sql, args, err := r.builder.
		Insert(movementsTable).
		SetMap(postgres.StructToMap(m)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert movement: %w", err), "inventory_movement")
	}
	return nil
}

func (r *InventoryRepo) getMovement(ctx context.Context, clubID, movementID id.ID, forUpdate bool) (*entity.InventoryMovement, error) {
	q := r.builder.
		Select(movementCols...).
		From(movementsTable).
		Where(squirrel.Eq{"id": movementID, "club_id": clubID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var m entity.InventoryMovement
	if err := pgxscan.Get(ctx, r.querier(ctx), &m, sql, args...); err != nil {
		if postgres.IsNoRows(err) {
			return nil, apperror.NewNotFound("inventory_movement", movementID.String())
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return &m, nil
}

// GetMovement loads a movement of clubID.
func (r *InventoryRepo) GetMovement(ctx context.Context, clubID, movementID id.ID) (*entity.InventoryMovement, error) {
	return r.getMovement(ctx, clubID, movementID, false)
}

// GetMovementForUpdate loads a movement and locks its row until commit.
func (r *InventoryRepo) GetMovementForUpdate(ctx context.Context, clubID, movementID id.ID) (*entity.InventoryMovement, error) {
	return r.getMovement(ctx, clubID, movementID, true)
}

// UpdateMovement saves type, quantity, direction and notes.
func (r *InventoryRepo) UpdateMovement(ctx context.Context, m *entity.InventoryMovement) error {
	sql, args, err := r.builder.
		Update(movementsTable).
		Set("type", m.Type).
		Set("direction", m.Direction).
		Set("quantity", m.Quantity).
		Set("notes", m.Notes).
		Set("updated_at", m.UpdatedAt).
		Where(squirrel.Eq{"id": m.ID, "club_id": m.ClubID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("update movement: %w", err), "inventory_movement")
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("inventory_movement", m.ID.String())
	}
	return nil
}

// DeleteMovement removes a movement of clubID.
func (r *InventoryRepo) DeleteMovement(ctx context.Context, clubID, movementID id.ID) error {
	sql, args, err := r.builder.
		Delete(movementsTable).
		Where(squirrel.Eq{"id": movementID, "club_id": clubID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("inventory_movement", movementID.String())
	}
	return nil
}

// movementsQuery builds the ListMovements SELECT.
func (r *InventoryRepo) movementsQuery(filter inventory.MovementFilter) squirrel.SelectBuilder {
	q := r.builder.
		Select(movementCols...).
		From(movementsTable).
		Where(squirrel.Eq{"club_id": filter.ClubIDs})

	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if len(filter.Types) > 0 {
		types := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			types[i] = string(t)
		}
		q = q.Where(squirrel.Eq{"type": types})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.To})
	}

	q = q.OrderBy("created_at DESC", "id DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q
}

// ListMovements returns movements newest first.
func (r *InventoryRepo) ListMovements(ctx context.Context, filter inventory.MovementFilter) ([]entity.InventoryMovement, error) {
	if len(filter.ClubIDs) == 0 {
		return nil, nil
	}
	sql, args, err := r.movementsQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.InventoryMovement
	if err := pgxscan.Select(ctx, r.querier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}
	return movements, nil
}

const applyDeltaSQL = `
	INSERT INTO inventory_records (club_id, product_id, quantity, updated_at)
	VALUES ($1, $2, $3, now())
	ON CONFLICT (club_id, product_id) DO UPDATE
	SET quantity = inventory_records.quantity + EXCLUDED.quantity,
	    updated_at = now()
	RETURNING club_id, product_id, quantity, updated_at
`

// ApplyDelta adds delta to the pair's record, creating it when absent.
func (r *InventoryRepo) ApplyDelta(ctx context.Context, clubID, productID id.ID, delta int64) (*entity.InventoryRecord, error) {
	var rec entity.InventoryRecord
	if err := pgxscan.Get(ctx, r.querier(ctx), &rec, applyDeltaSQL, clubID, productID, delta); err != nil {
		return nil, postgres.MapError(fmt.Errorf("apply delta: %w", err), "inventory_record")
	}
	return &rec, nil
}

const addToExistingSQL = `
	UPDATE inventory_records
	SET quantity = quantity + $3, updated_at = now()
	WHERE club_id = $1 AND product_id = $2
	RETURNING club_id, product_id, quantity, updated_at
`

// AddToExisting adds delta only when the record exists.
func (r *InventoryRepo) AddToExisting(ctx context.Context, clubID, productID id.ID, delta int64) (*entity.InventoryRecord, error) {
	var rec entity.InventoryRecord
	if err := pgxscan.Get(ctx, r.querier(ctx), &rec, addToExistingSQL, clubID, productID, delta); err != nil {
		if postgres.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("add to existing: %w", err)
	}
	return &rec, nil
}

const getRecordSQL = `
	SELECT club_id, product_id, quantity, updated_at
	FROM inventory_records
	WHERE club_id = $1 AND product_id = $2
`

// GetRecord loads one balance, nil when the pair has none.
func (r *InventoryRepo) GetRecord(ctx context.Context, clubID, productID id.ID) (*entity.InventoryRecord, error) {
	var rec entity.InventoryRecord
	if err := pgxscan.Get(ctx, r.querier(ctx), &rec, getRecordSQL, clubID, productID); err != nil {
		if postgres.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return &rec, nil
}

// recordsQuery builds the ListRecords SELECT.
func (r *InventoryRepo) recordsQuery(filter inventory.RecordFilter) squirrel.SelectBuilder {
	q := r.builder.
		Select(
			"r.club_id", "r.product_id", "r.quantity", "r.updated_at",
			"p.name AS product_name", "p.category",
		).
		From(recordsTable + " r").
		Join("products p ON p.id = r.product_id AND p.club_id = r.club_id").
		Where(squirrel.Eq{"r.club_id": filter.ClubIDs})

	if filter.Below != nil {
		q = q.Where(squirrel.Lt{"r.quantity": *filter.Below}).
			OrderBy("r.quantity", "p.name")
	} else {
		q = q.OrderBy("p.name", "r.club_id")
	}
	return q
}

// ListRecords returns balances joined with product names.
func (r *InventoryRepo) ListRecords(ctx context.Context, filter inventory.RecordFilter) ([]inventory.StockItem, error) {
	if len(filter.ClubIDs) == 0 {
		return nil, nil
	}
	sql, args, err := r.recordsQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []inventory.StockItem
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}
	return items, nil
}

const setRecordSQL = `
	INSERT INTO inventory_records (club_id, product_id, quantity, updated_at)
	VALUES ($1, $2, $3, now())
	ON CONFLICT (club_id, product_id) DO UPDATE
	SET quantity = EXCLUDED.quantity, updated_at = now()
`

// SetRecord overwrites a balance.
func (r *InventoryRepo) SetRecord(ctx context.Context, clubID, productID id.ID, quantity int64) error {
	if _, err := r.querier(ctx).Exec(ctx, setRecordSQL, clubID, productID, quantity); err != nil {
		return fmt.Errorf("set record: %w", err)
	}
	return nil
}

// SumMovements returns Σ quantity per product of a club.
func (r *InventoryRepo) SumMovements(ctx context.Context, clubID id.ID) (map[id.ID]int64, error) {
	const sql = `
		SELECT product_id, SUM(quantity)::bigint AS quantity
		FROM inventory_movements
		WHERE club_id = $1
		GROUP BY product_id
	`
	var rows []struct {
		ProductID id.ID `db:"product_id"`
		Quantity  int64 `db:"quantity"`
	}
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, clubID); err != nil {
		return nil, fmt.Errorf("sum movements: %w", err)
	}
	out := make(map[id.ID]int64, len(rows))
	for _, row := range rows {
		out[row.ProductID] = row.Quantity
	}
	return out, nil
}

// turnoverSQL groups movements per pair. The opening balance starts from the
// latest snapshot at or before $2 and adds the movements from that snapshot
// up to $2; movements before the snapshot are never read.
//
//	$1 club ids, $2 from, $3 to, $4 inflow types, $5 optional product id
const turnoverSQL = `
	WITH snap AS (
		SELECT DISTINCT ON (club_id, product_id) club_id, product_id, as_of, quantity
		FROM inventory_snapshots
		WHERE club_id = ANY($1)
		  AND as_of <= $2
		  AND ($5::uuid IS NULL OR product_id = $5)
		ORDER BY club_id, product_id, as_of DESC
	),
	mv AS (
		SELECT m.club_id, m.product_id, m.type, m.quantity, m.created_at
		FROM inventory_movements m
		LEFT JOIN snap s ON s.club_id = m.club_id AND s.product_id = m.product_id
		WHERE m.club_id = ANY($1)
		  AND m.created_at <= $3
		  AND ($5::uuid IS NULL OR m.product_id = $5)
		  AND (s.as_of IS NULL OR m.created_at >= s.as_of)
	),
	agg AS (
		SELECT club_id, product_id,
			COALESCE(SUM(quantity) FILTER (WHERE created_at < $2), 0)::bigint AS before_from,
			COALESCE(SUM(ABS(quantity)) FILTER (WHERE created_at >= $2 AND type = ANY($4)), 0)::bigint AS inflow,
			COALESCE(SUM(ABS(quantity)) FILTER (WHERE created_at >= $2 AND type <> ALL($4)), 0)::bigint AS outflow,
			COALESCE(SUM(quantity) FILTER (WHERE created_at >= $2), 0)::bigint AS net,
			MIN(created_at) AS first_seen
		FROM mv
		GROUP BY club_id, product_id
	)
	SELECT
		COALESCE(a.club_id, s.club_id) AS club_id,
		COALESCE(a.product_id, s.product_id) AS product_id,
		COALESCE(s.quantity, 0) + COALESCE(a.before_from, 0) AS opening,
		COALESCE(a.inflow, 0) AS inflow,
		COALESCE(a.outflow, 0) AS outflow,
		COALESCE(a.net, 0) AS net
	FROM agg a
	FULL OUTER JOIN snap s ON s.club_id = a.club_id AND s.product_id = a.product_id
	ORDER BY COALESCE(s.as_of, a.first_seen), 2
`

// Turnover groups movements per (club, product) for a window.
func (r *InventoryRepo) Turnover(ctx context.Context, filter inventory.TurnoverFilter) ([]entity.Turnover, error) {
	if len(filter.ClubIDs) == 0 {
		return nil, nil
	}
	var rows []entity.Turnover
	err := pgxscan.Select(ctx, r.querier(ctx), &rows, turnoverSQL,
		filter.ClubIDs, filter.From, filter.To, entity.InflowTypes(), filter.ProductID)
	if err != nil {
		return nil, fmt.Errorf("turnover: %w", err)
	}
	return rows, nil
}

// SaveSnapshots replaces the snapshots of the same (club, as_of) and copies
// the new rows in. It must run inside a transaction.
func (r *InventoryRepo) SaveSnapshots(ctx context.Context, snaps []entity.InventorySnapshot) (int64, error) {
	if len(snaps) == 0 {
		return 0, nil
	}

	type key struct {
		club id.ID
		asOf time.Time
	}
	seen := make(map[key]struct{})
	var stmts []postgres.Statement
	rows := make([][]any, 0, len(snaps))
	for _, s := range snaps {
		k := key{s.ClubID, s.AsOf.UTC()}
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			stmts = append(stmts, postgres.Statement{
				SQL:  "DELETE FROM " + snapshotsTable + " WHERE club_id = $1 AND as_of = $2",
				Args: []any{s.ClubID, s.AsOf},
			})
		}
		rows = append(rows, []any{s.ClubID, s.ProductID, s.AsOf, s.Quantity})
	}

	if err := r.batch.Exec(ctx, stmts); err != nil {
		return 0, fmt.Errorf("clear snapshots: %w", err)
	}
	return r.batch.CopyRows(ctx, snapshotsTable, snapshotCols, rows)
}

// InvalidateSnapshots drops snapshots of the pair taken after t.
func (r *InventoryRepo) InvalidateSnapshots(ctx context.Context, clubID, productID id.ID, after time.Time) error {
	sql, args, err := r.builder.
		Delete(snapshotsTable).
		Where(squirrel.Eq{"club_id": clubID, "product_id": productID}).
		Where(squirrel.Gt{"as_of": after}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("invalidate snapshots: %w", err)
	}
	return nil
}

var _ inventory.Repository = (*InventoryRepo)(nil)
