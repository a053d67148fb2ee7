// Package domain holds the generic contracts shared by club-owned records
// (products, expenses): list filtering, the CRUD repository and lifecycle hooks.
package domain

import (
	"context"
	"time"

	"clubledger/internal/core/entity"
	"clubledger/internal/core/id"
)

// Record is a validatable row that belongs to one club.
type Record interface {
	entity.Validatable
	GetID() id.ID
	GetClubID() id.ID
}

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// ClubIDs restricts rows to these clubs. Empty matches nothing.
	ClubIDs []id.ID

	// Search matches name-like columns case-insensitively.
	Search string

	// Category filters on the category column when the table has one.
	Category string

	// From/To bound the table's date column, both inclusive.
	From *time.Time
	To   *time.Time

	// OrderBy is a column name, "-" prefix for descending.
	OrderBy string

	Limit  int
	Offset int
}

// DefaultListFilter returns the first page of 50.
func DefaultListFilter() ListFilter {
	return ListFilter{Limit: 50}
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// ClubRepository is the CRUD contract for club-owned records. Every lookup
// takes the club so a row can never be read through another club.
type ClubRepository[T Record] interface {
	Create(ctx context.Context, entity T) error
	GetByID(ctx context.Context, clubID, entityID id.ID) (T, error)
	Update(ctx context.Context, entity T) error
	Delete(ctx context.Context, clubID, entityID id.ID) error
	List(ctx context.Context, filter ListFilter) (ListResult[T], error)
}

// HookEvent represents lifecycle event type.
type HookEvent string

const (
	BeforeCreate HookEvent = "before_create"
	AfterCreate  HookEvent = "after_create"
	BeforeUpdate HookEvent = "before_update"
	BeforeDelete HookEvent = "before_delete"
)

// Hook runs at a lifecycle point. Before-hooks run ahead of the write;
// AfterCreate runs inside the same transaction right after the insert.
type Hook[T any] func(ctx context.Context, entity T) error

// HookRegistry stores lifecycle hooks for an entity type.
type HookRegistry[T any] struct {
	hooks map[HookEvent][]Hook[T]
}

// NewHookRegistry creates an empty hook registry.
func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{hooks: make(map[HookEvent][]Hook[T])}
}

// On registers a hook for event.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.hooks[event] = append(r.hooks[event], hook)
}

// Run executes the hooks of event in registration order, stopping at the first error.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, entity T) error {
	for _, hook := range r.hooks[event] {
		if err := hook(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}
