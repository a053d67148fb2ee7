// Package numerator is the PostgreSQL implementation of core/numerator.Generator.
package numerator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	corenumerator "clubledger/internal/core/numerator"
)

// Querier is the subset of pgx used here.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuerierProvider returns the querier bound to ctx (the open transaction if any).
type QuerierProvider func(ctx context.Context) Querier

type cachedRange struct {
	current int64
	max     int64
}

// Service allocates numbers from the sys_sequences table.
type Service struct {
	querier QuerierProvider

	cacheMu sync.Mutex
	ranges  map[string]*cachedRange
}

var _ corenumerator.Generator = (*Service)(nil)

// New creates a service that always uses q.
func New(q Querier) *Service {
	return NewWithProvider(func(context.Context) Querier { return q })
}

// NewWithProvider creates a service that resolves its querier per call, so
// strict numbers are reserved inside the caller's transaction.
func NewWithProvider(p QuerierProvider) *Service {
	return &Service{
		querier: p,
		ranges:  make(map[string]*cachedRange),
	}
}

// GetNextNumber implements corenumerator.Generator.
func (s *Service) GetNextNumber(ctx context.Context, cfg corenumerator.Config, opts *corenumerator.Options, period time.Time) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}
	if opts == nil {
		opts = corenumerator.DefaultOptions()
	}

	key := buildKey(cfg, period)

	var (
		num int64
		err error
	)
	switch opts.Strategy {
	case corenumerator.StrategyCached:
		num, err = s.nextCached(ctx, key, opts)
	default:
		num, err = s.nextStrict(ctx, key)
	}
	if err != nil {
		return "", err
	}

	return formatNumber(cfg, period, num), nil
}

func (s *Service) nextStrict(ctx context.Context, key string) (int64, error) {
	var num int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
		RETURNING current_val
	`, key).Scan(&num)
	if err != nil {
		return 0, fmt.Errorf("strict next %s: %w", key, err)
	}
	return num, nil
}

func (s *Service) nextCached(ctx context.Context, key string, opts *corenumerator.Options) (int64, error) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	rng, ok := s.ranges[key]
	if !ok {
		rng = &cachedRange{}
		s.ranges[key] = rng
	}

	if rng.current >= rng.max {
		size := opts.RangeSize
		if size <= 0 {
			size = 50
		}

		var newMax int64
		err := s.querier(ctx).QueryRow(ctx, `
			INSERT INTO sys_sequences (key, current_val)
			VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + $2
			RETURNING current_val
		`, key, size).Scan(&newMax)
		if err != nil {
			return 0, fmt.Errorf("reserve range %s: %w", key, err)
		}

		// The reserved block is (newMax-size, newMax].
		rng.current = newMax - size
		rng.max = newMax
	}

	rng.current++
	return rng.current, nil
}

// SetNextNumber implements corenumerator.Generator. The next allocation returns value.
func (s *Service) SetNextNumber(ctx context.Context, cfg corenumerator.Config, period time.Time, value int64) error {
	key := buildKey(cfg, period)

	var stored int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = $2
		RETURNING current_val
	`, key, value-1).Scan(&stored)

	s.cacheMu.Lock()
	delete(s.ranges, key)
	s.cacheMu.Unlock()

	if err != nil {
		return fmt.Errorf("set next %s: %w", key, err)
	}
	return nil
}

func buildKey(cfg corenumerator.Config, period time.Time) string {
	base := cfg.Prefix
	if cfg.Scope != "" {
		base = base + ":" + cfg.Scope
	}
	switch cfg.ResetPeriod {
	case "month":
		return base + "_" + period.Format("2006_01")
	case "year":
		return base + "_" + period.Format("2006")
	default:
		return base
	}
}

func formatNumber(cfg corenumerator.Config, period time.Time, num int64) string {
	width := cfg.PadWidth
	if width == 0 {
		width = 5
	}
	if cfg.IncludeYear {
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("2006"), width, num)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, width, num)
}

// ParseNumber extracts the counter from a formatted number, or -1.
func ParseNumber(formatted string) int64 {
	i := strings.LastIndexByte(formatted, '-')
	if i < 0 || i == len(formatted)-1 {
		return -1
	}
	num, err := strconv.ParseInt(formatted[i+1:], 10, 64)
	if err != nil || num < 0 {
		return -1
	}
	return num
}
