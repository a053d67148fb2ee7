// Package changes reports which clubs had committed writes, so read models
// derived from their data (cached reports) can tell old results from new.
package changes

import (
	"context"

	"clubledger/internal/core/id"
	"clubledger/pkg/logger"
)

// Notifier is told about clubs whose ledger, sales, expenses or catalog changed.
type Notifier interface {
	Touch(ctx context.Context, clubIDs ...id.ID) error
}

// Nop ignores changes.
type Nop struct{}

// Touch implements Notifier.
func (Nop) Touch(context.Context, ...id.ID) error { return nil }

// Notify touches clubIDs after a commit. A failure is logged, not returned:
// the write it follows has already succeeded.
func Notify(ctx context.Context, n Notifier, clubIDs ...id.ID) {
	if n == nil || len(clubIDs) == 0 {
		return
	}
	if err := n.Touch(ctx, clubIDs...); err != nil {
		logger.Warn(ctx, "club change notification failed", "clubs", id.Strings(clubIDs), "error", err)
	}
}
