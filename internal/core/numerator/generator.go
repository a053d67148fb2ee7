package numerator

import (
	"context"
	"time"
)

// Generator allocates sequential numbers. The PostgreSQL implementation lives
// in infrastructure/numerator.
type Generator interface {
	// GetNextNumber returns the next formatted number, e.g. V-2024-00001.
	GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)

	// SetNextNumber overwrites the counter. Used by the admin tool after imports.
	SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error
}
