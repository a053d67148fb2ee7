// Package catalog_repo provides PostgreSQL implementations for catalog repositories.
package catalog_repo

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"clubledger/internal/core/apperror"
	"clubledger/internal/core/id"
	"clubledger/internal/domain"
	"clubledger/internal/infrastructure/storage/postgres"
)

// immutableCols are never written by Update.
var immutableCols = []string{"id", "club_id", "created_at"}

// BaseClubRepo provides CRUD for club-owned rows. Every statement is bound to
// a club, so a row can only be read or written through its own club.
// Embed this in specific repositories.
type BaseClubRepo[T domain.Record] struct {
	txManager  *postgres.TxManager
	tableName  string
	entityName string
	selectCols []string
	newFn      func() T

	// searchCols are matched by ListFilter.Search.
	searchCols []string
	// dateCol is bounded by ListFilter.From/To.
	dateCol string
	// defaultOrder applies when ListFilter.OrderBy is empty.
	defaultOrder string
}

// BaseOption configures a BaseClubRepo.
type BaseOption func(*baseOptions)

type baseOptions struct {
	searchCols   []string
	dateCol      string
	defaultOrder string
}

// WithSearch sets the columns ListFilter.Search matches.
func WithSearch(cols ...string) BaseOption {
	return func(o *baseOptions) { o.searchCols = cols }
}

// WithDateColumn sets the column ListFilter.From/To bound.
func WithDateColumn(col string) BaseOption {
	return func(o *baseOptions) { o.dateCol = col }
}

// WithDefaultOrder sets the ORDER BY used without ListFilter.OrderBy.
func WithDefaultOrder(order string) BaseOption {
	return func(o *baseOptions) { o.defaultOrder = order }
}

// NewBaseClubRepo creates a new base repository.
func NewBaseClubRepo[T domain.Record](
	txManager *postgres.TxManager,
	tableName, entityName string,
	selectCols []string,
	newFn func() T,
	opts ...BaseOption,
) *BaseClubRepo[T] {
	o := baseOptions{defaultOrder: "created_at DESC"}
	for _, opt := range opts {
		opt(&o)
	}
	return &BaseClubRepo[T]{
		txManager:    txManager,
		tableName:    tableName,
		entityName:   entityName,
		selectCols:   selectCols,
		newFn:        newFn,
		searchCols:   o.searchCols,
		dateCol:      o.dateCol,
		defaultOrder: o.defaultOrder,
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *BaseClubRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Querier returns the transaction in ctx, or the pool.
func (r *BaseClubRepo[T]) Querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// columns filters StructToMap output to the repository's columns.
func (r *BaseClubRepo[T]) columns(entity T, skip []string) (map[string]any, error) {
	data := postgres.StructToMap(entity)
	if len(data) == 0 {
		return nil, fmt.Errorf("no db tags found in %s", r.entityName)
	}
	out := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if slices.Contains(skip, col) {
			continue
		}
		if val, ok := data[col]; ok {
			out[col] = val
		}
	}
	return out, nil
}

// InsertBuilder returns the INSERT for entity. Used by Create and batch inserts.
func (r *BaseClubRepo[T]) InsertBuilder(entity T) (squirrel.InsertBuilder, error) {
	data, err := r.columns(entity, nil)
	if err != nil {
		return squirrel.InsertBuilder{}, err
	}
	return r.Builder().Insert(r.tableName).SetMap(data), nil
}

// Create inserts a new entity using its "db" tags.
func (r *BaseClubRepo[T]) Create(ctx context.Context, entity T) error {
	q, err := r.InsertBuilder(entity)
	if err != nil {
		return err
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert %s: %w", r.tableName, err), r.entityName)
	}
	return nil
}

// Update overwrites the mutable columns of an existing entity.
func (r *BaseClubRepo[T]) Update(ctx context.Context, entity T) error {
	data, err := r.columns(entity, immutableCols)
	if err != nil {
		return err
	}

	q := r.Builder().
		Update(r.tableName).
		SetMap(data).
		Where(squirrel.Eq{"id": entity.GetID(), "club_id": entity.GetClubID()})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("update %s: %w", r.tableName, err), r.entityName)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, entity.GetID().String())
	}
	return nil
}

// baseSelect creates a SELECT builder.
func (r *BaseClubRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(r.selectCols...).
		From(r.tableName)
}

// GetByID retrieves an entity of clubID.
func (r *BaseClubRepo[T]) GetByID(ctx context.Context, clubID, entityID id.ID) (T, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": entityID, "club_id": clubID}).
		Limit(1)
	entity, err := r.FindOne(ctx, q)
	if apperror.IsNotFound(err) {
		return entity, apperror.NewNotFound(r.entityName, entityID.String())
	}
	return entity, err
}

// FindOne executes a SELECT query and returns a single entity.
func (r *BaseClubRepo[T]) FindOne(ctx context.Context, q squirrel.SelectBuilder) (T, error) {
	entity := r.newFn()

	sql, args, err := q.ToSql()
	if err != nil {
		return entity, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.Querier(ctx), entity, sql, args...); err != nil {
		if postgres.IsNoRows(err) {
			return entity, apperror.NewNotFound(r.entityName, "matching query")
		}
		return entity, fmt.Errorf("find %s: %w", r.entityName, err)
	}
	return entity, nil
}

// FindMany executes a SELECT query and returns every row.
func (r *BaseClubRepo[T]) FindMany(ctx context.Context, q squirrel.SelectBuilder) ([]T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []T
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", r.tableName, err)
	}
	return items, nil
}

// Delete performs physical removal from the database.
func (r *BaseClubRepo[T]) Delete(ctx context.Context, clubID, entityID id.ID) error {
	q := r.Builder().
		Delete(r.tableName).
		Where(squirrel.Eq{"id": entityID, "club_id": clubID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("delete %s: %w", r.tableName, err), r.entityName)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, entityID.String())
	}
	return nil
}

// filtered applies the club, search and date parts of filter.
func (r *BaseClubRepo[T]) filtered(filter domain.ListFilter) squirrel.SelectBuilder {
	q := r.baseSelect().Where(squirrel.Eq{"club_id": filter.ClubIDs})

	if filter.Search != "" && len(r.searchCols) > 0 {
		pattern := "%" + filter.Search + "%"
		or := make(squirrel.Or, 0, len(r.searchCols))
		for _, col := range r.searchCols {
			or = append(or, squirrel.ILike{col: pattern})
		}
		q = q.Where(or)
	}

	if filter.Category != "" && slices.Contains(r.selectCols, "category") {
		q = q.Where(squirrel.Eq{"category": filter.Category})
	}

	if r.dateCol != "" {
		if filter.From != nil {
			q = q.Where(squirrel.GtOrEq{r.dateCol: *filter.From})
		}
		if filter.To != nil {
			q = q.Where(squirrel.LtOrEq{r.dateCol: *filter.To})
		}
	}
	return q
}

// List retrieves entities with filtering and pagination. An empty
// filter.ClubIDs yields an empty page without touching the database.
func (r *BaseClubRepo[T]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{
		Items:  make([]T, 0),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	if len(filter.ClubIDs) == 0 {
		return result, nil
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}

	q := r.filtered(filter)

	countSQL, countArgs, err := r.Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub").
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := r.Querier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count %s: %w", r.tableName, err)
	}

	q = q.OrderBy(orderBy, "id")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	items, err := r.FindMany(ctx, q)
	if err != nil {
		return result, err
	}
	if items != nil {
		result.Items = items
	}
	return result, nil
}

func (r *BaseClubRepo[T]) parseOrderBy(orderBy string) (string, error) {
	if orderBy == "" {
		return r.defaultOrder, nil
	}

	// Support "-field" for DESC.
	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}

	field = strings.TrimSpace(field)
	if field == "" || !slices.Contains(r.selectCols, field) {
		return "", apperror.NewInvalidInput("orderBy", "unknown column").WithDetail("value", orderBy)
	}
	return field + " " + direction, nil
}
