package numerator

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "clubledger/internal/core/numerator"
)

type fakeRow struct {
	val int64
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if p, ok := dest[0].(*int64); ok {
		*p = r.val
	}
	return nil
}

// fakeSequences emulates sys_sequences keyed upserts.
type fakeSequences struct {
	mu    sync.Mutex
	vals  map[string]int64
	calls int
}

func newFakeSequences() *fakeSequences {
	return &fakeSequences{vals: make(map[string]int64)}
}

func (f *fakeSequences) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	key := args[0].(string)
	switch {
	case strings.Contains(sql, "current_val = $2"):
		f.vals[key] = args[1].(int64)
	case strings.Contains(sql, "current_val + $2"):
		f.vals[key] += args[1].(int64)
	default:
		f.vals[key]++
	}
	return fakeRow{val: f.vals[key]}
}

var year2024 = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

func TestGetNextNumber_Strict(t *testing.T) {
	svc := New(newFakeSequences())
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("V")

	first, err := svc.GetNextNumber(ctx, cfg, nil, year2024)
	require.NoError(t, err)
	second, err := svc.GetNextNumber(ctx, cfg, nil, year2024)
	require.NoError(t, err)

	assert.Equal(t, "V-2024-00001", first)
	assert.Equal(t, "V-2024-00002", second)
}

func TestGetNextNumber_ScopesCountIndependently(t *testing.T) {
	svc := New(newFakeSequences())
	ctx := context.Background()

	a1, _ := svc.GetNextNumber(ctx, corenumerator.SaleConfig("club-a"), nil, year2024)
	b1, _ := svc.GetNextNumber(ctx, corenumerator.SaleConfig("club-b"), nil, year2024)
	a2, _ := svc.GetNextNumber(ctx, corenumerator.SaleConfig("club-a"), nil, year2024)

	assert.Equal(t, "V-2024-00001", a1)
	assert.Equal(t, "V-2024-00001", b1)
	assert.Equal(t, "V-2024-00002", a2)
}

func TestGetNextNumber_ResetsYearly(t *testing.T) {
	svc := New(newFakeSequences())
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("V")

	_, _ = svc.GetNextNumber(ctx, cfg, nil, year2024)
	next, err := svc.GetNextNumber(ctx, cfg, nil, year2024.AddDate(1, 0, 0))
	require.NoError(t, err)

	assert.Equal(t, "V-2025-00001", next)
}

func TestGetNextNumber_Cached(t *testing.T) {
	db := newFakeSequences()
	svc := New(db)
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("ORD")
	opts := &corenumerator.Options{Strategy: corenumerator.StrategyCached, RangeSize: 10}

	num, err := svc.GetNextNumber(ctx, cfg, opts, year2024)
	require.NoError(t, err)
	assert.Equal(t, "ORD-2024-00001", num)
	assert.Equal(t, 1, db.calls)

	for i := 0; i < 9; i++ {
		_, err = svc.GetNextNumber(ctx, cfg, opts, year2024)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, db.calls, "block of 10 served from memory")

	num, err = svc.GetNextNumber(ctx, cfg, opts, year2024)
	require.NoError(t, err)
	assert.Equal(t, "ORD-2024-00011", num)
	assert.Equal(t, 2, db.calls)
}

func TestSetNextNumber_InvalidatesCache(t *testing.T) {
	db := newFakeSequences()
	svc := New(db)
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("V")
	opts := &corenumerator.Options{Strategy: corenumerator.StrategyCached, RangeSize: 10}

	_, _ = svc.GetNextNumber(ctx, cfg, opts, year2024)
	require.NoError(t, svc.SetNextNumber(ctx, cfg, year2024, 100))

	num, err := svc.GetNextNumber(ctx, cfg, nil, year2024)
	require.NoError(t, err)
	assert.Equal(t, "V-2024-00100", num)
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, int64(42), ParseNumber("V-2024-00042"))
	assert.Equal(t, int64(7), ParseNumber("V-00007"))
	assert.Equal(t, int64(-1), ParseNumber("garbage"))
	assert.Equal(t, int64(-1), ParseNumber("V-"))
}
