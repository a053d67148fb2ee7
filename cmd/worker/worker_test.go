package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"clubledger/internal/core/id"
	"clubledger/internal/domain/registers/inventory"
	"clubledger/pkg/logger"
)

type stubClubs []id.ID

func (s stubClubs) AllIDs(context.Context) ([]id.ID, error) { return s, nil }

type fakeLedger struct {
	verified  []id.ID
	repaired  []id.ID
	snapshots map[id.ID][]time.Time
	failFor   id.ID
}

func (f *fakeLedger) VerifyBalances(_ context.Context, clubID id.ID) ([]inventory.Drift, error) {
	f.verified = append(f.verified, clubID)
	return []inventory.Drift{{ClubID: clubID, ProductID: id.New(), Recorded: 3, Expected: 5}}, nil
}

func (f *fakeLedger) RepairBalances(_ context.Context, clubID id.ID) ([]inventory.Drift, error) {
	f.repaired = append(f.repaired, clubID)
	return nil, nil
}

func (f *fakeLedger) WriteSnapshots(_ context.Context, clubID id.ID, asOf time.Time) (int64, error) {
	if clubID == f.failFor {
		return 0, errors.New("boom")
	}
	if f.snapshots == nil {
		f.snapshots = map[id.ID][]time.Time{}
	}
	f.snapshots[clubID] = append(f.snapshots[clubID], asOf)
	return 2, nil
}

type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time { return c.t }

func TestWorker_CheckDrift(t *testing.T) {
	a, b := id.New(), id.New()

	t.Run("repair mode repairs every club", func(t *testing.T) {
		ledger := &fakeLedger{}
		w := NewWorker(WorkerConfig{RepairDrift: true}, stubClubs{a, b}, ledger, &fixedClock{}, logger.NewNop())
		w.checkDrift(context.Background())
		assert.Equal(t, []id.ID{a, b}, ledger.repaired)
		assert.Empty(t, ledger.verified)
	})

	t.Run("verify mode only reports", func(t *testing.T) {
		ledger := &fakeLedger{}
		w := NewWorker(WorkerConfig{}, stubClubs{a}, ledger, &fixedClock{}, logger.NewNop())
		w.checkDrift(context.Background())
		assert.Equal(t, []id.ID{a}, ledger.verified)
		assert.Empty(t, ledger.repaired)
	})
}

func TestWorker_SnapshotOncePerMonth(t *testing.T) {
	loc := time.FixedZone("CST", -6*3600)
	a := id.New()
	ledger := &fakeLedger{}
	clock := &fixedClock{t: time.Date(2024, 3, 14, 10, 0, 0, 0, loc)}
	w := NewWorker(WorkerConfig{}, stubClubs{a}, ledger, clock, logger.NewNop())

	w.snapshot(context.Background())
	w.snapshot(context.Background())
	clock.t = time.Date(2024, 4, 1, 0, 30, 0, 0, loc)
	w.snapshot(context.Background())

	assert.Equal(t, []time.Time{
		time.Date(2024, 3, 1, 0, 0, 0, 0, loc),
		time.Date(2024, 4, 1, 0, 0, 0, 0, loc),
	}, ledger.snapshots[a])
}

func TestWorker_SnapshotRetriesAfterFailure(t *testing.T) {
	a, b := id.New(), id.New()
	ledger := &fakeLedger{failFor: b}
	clock := &fixedClock{t: time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)}
	w := NewWorker(WorkerConfig{}, stubClubs{a, b}, ledger, clock, logger.NewNop())

	w.snapshot(context.Background())
	w.snapshot(context.Background())

	assert.Len(t, ledger.snapshots[a], 2)
}

func TestWorker_Cleanup(t *testing.T) {
	w := NewWorker(WorkerConfig{}, stubClubs{}, &fakeLedger{}, &fixedClock{}, logger.NewNop())

	var calls []string
	w.AddCleanup("keys", func(context.Context) (int64, error) {
		calls = append(calls, "keys")
		return 0, errors.New("db down")
	})
	w.AddCleanup("codes", func(context.Context) (int64, error) {
		calls = append(calls, "codes")
		return 4, nil
	})

	w.cleanup(context.Background())

	assert.Equal(t, []string{"keys", "codes"}, calls)
}
