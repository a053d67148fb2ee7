// Package audit defines the change trail written when ledger history is
// rewritten (movement edits and deletions).
package audit

import (
	"context"
	"encoding/json"
	"time"

	"clubledger/internal/core/id"
)

// Action is the kind of audited change.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Entry is one audited change. Changes maps field names to
// {"old": ..., "new": ...} pairs, see Diff.
type Entry struct {
	EntityType string
	EntityID   id.ID
	Action     Action
	Changes    map[string]any
	Metadata   map[string]any
}

// Logger persists entries. Implementations write inside the caller's
// transaction so the trail rolls back with the change.
type Logger interface {
	Record(ctx context.Context, e Entry) error
}

// Revision is a stored entry as read back.
type Revision struct {
	ID        id.ID           `json:"id"`
	Action    Action          `json:"action"`
	UserEmail string          `json:"userEmail,omitempty"`
	Changes   json.RawMessage `json:"changes"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Reader lists the revisions of one entity, newest first.
type Reader interface {
	Revisions(ctx context.Context, entityType string, entityID id.ID, limit int) ([]Revision, error)
}

// Nop discards entries.
type Nop struct{}

// Record implements Logger.
func (Nop) Record(context.Context, Entry) error { return nil }

// Diff returns the fields whose values differ between before and after.
// Values must be comparable (scalars, strings, ids).
func Diff(before, after map[string]any) map[string]any {
	changes := make(map[string]any)
	for k, newVal := range after {
		oldVal, ok := before[k]
		if !ok || oldVal != newVal {
			changes[k] = map[string]any{"old": oldVal, "new": newVal}
		}
	}
	for k, oldVal := range before {
		if _, ok := after[k]; !ok {
			changes[k] = map[string]any{"old": oldVal, "new": nil}
		}
	}
	return changes
}
