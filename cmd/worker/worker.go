package main

import (
	"context"
	"time"

	"clubledger/internal/core/id"
	"clubledger/internal/domain/registers/inventory"
	"clubledger/pkg/logger"
)

// Clubs lists every club the worker maintains.
type Clubs interface {
	AllIDs(ctx context.Context) ([]id.ID, error)
}

// Ledger is the inventory maintenance surface.
type Ledger interface {
	VerifyBalances(ctx context.Context, clubID id.ID) ([]inventory.Drift, error)
	RepairBalances(ctx context.Context, clubID id.ID) ([]inventory.Drift, error)
	WriteSnapshots(ctx context.Context, clubID id.ID, asOf time.Time) (int64, error)
}

// Clock returns the current instant in the business zone.
type Clock interface {
	Now() time.Time
}

// CleanupFunc deletes expired rows and reports how many went.
type CleanupFunc func(ctx context.Context) (int64, error)

type WorkerConfig struct {
	DriftInterval    time.Duration
	SnapshotInterval time.Duration
	CleanupInterval  time.Duration
	RepairDrift      bool
}

type cleanup struct {
	name string
	fn   CleanupFunc
}

// Worker runs periodic ledger maintenance.
type Worker struct {
	cfg      WorkerConfig
	clubs    Clubs
	ledger   Ledger
	clock    Clock
	log      *logger.Logger
	cleanups []cleanup

	// lastSnapshot is the month start most recently snapshotted.
	lastSnapshot time.Time
}

func NewWorker(cfg WorkerConfig, clubs Clubs, ledger Ledger, clock Clock, log *logger.Logger) *Worker {
	if cfg.DriftInterval <= 0 {
		cfg.DriftInterval = time.Hour
	}
	if cfg.SnapshotInterval <= 0 {
		cfg.SnapshotInterval = 6 * time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Hour
	}
	return &Worker{
		cfg:    cfg,
		clubs:  clubs,
		ledger: ledger,
		clock:  clock,
		log:    log.WithComponent("worker"),
	}
}

// AddCleanup registers a purge job run every CleanupInterval.
func (w *Worker) AddCleanup(name string, fn CleanupFunc) {
	w.cleanups = append(w.cleanups, cleanup{name: name, fn: fn})
}

// Run blocks until ctx is cancelled. Every job also runs once at start.
func (w *Worker) Run(ctx context.Context) {
	driftTicker := time.NewTicker(w.cfg.DriftInterval)
	defer driftTicker.Stop()
	snapshotTicker := time.NewTicker(w.cfg.SnapshotInterval)
	defer snapshotTicker.Stop()
	cleanupTicker := time.NewTicker(w.cfg.CleanupInterval)
	defer cleanupTicker.Stop()

	w.checkDrift(ctx)
	w.snapshot(ctx)
	w.cleanup(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-driftTicker.C:
			w.checkDrift(ctx)
		case <-snapshotTicker.C:
			w.snapshot(ctx)
		case <-cleanupTicker.C:
			w.cleanup(ctx)
		}
	}
}

func (w *Worker) checkDrift(ctx context.Context) {
	clubIDs, err := w.clubs.AllIDs(ctx)
	if err != nil {
		w.log.Errorw("failed to list clubs", "error", err)
		return
	}

	for _, clubID := range clubIDs {
		if ctx.Err() != nil {
			return
		}
		var drifts []inventory.Drift
		if w.cfg.RepairDrift {
			drifts, err = w.ledger.RepairBalances(ctx, clubID)
		} else {
			drifts, err = w.ledger.VerifyBalances(ctx, clubID)
		}
		if err != nil {
			w.log.Errorw("drift check failed", "club", clubID, "error", err)
			continue
		}
		for _, d := range drifts {
			w.log.Warnw("inventory drift",
				"club", d.ClubID,
				"product", d.ProductID,
				"recorded", d.Recorded,
				"expected", d.Expected,
				"missing", d.Missing,
				"repaired", w.cfg.RepairDrift,
			)
		}
	}
}

// snapshot writes opening balances for the current business month once.
func (w *Worker) snapshot(ctx context.Context) {
	now := w.clock.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if monthStart.Equal(w.lastSnapshot) {
		return
	}

	clubIDs, err := w.clubs.AllIDs(ctx)
	if err != nil {
		w.log.Errorw("failed to list clubs", "error", err)
		return
	}

	var total int64
	failed := false
	for _, clubID := range clubIDs {
		if ctx.Err() != nil {
			return
		}
		n, err := w.ledger.WriteSnapshots(ctx, clubID, monthStart)
		if err != nil {
			w.log.Errorw("snapshot failed", "club", clubID, "as_of", monthStart, "error", err)
			failed = true
			continue
		}
		total += n
	}
	if !failed {
		w.lastSnapshot = monthStart
	}
	w.log.Infow("monthly snapshots written", "as_of", monthStart, "rows", total, "clubs", len(clubIDs))
}

func (w *Worker) cleanup(ctx context.Context) {
	for _, c := range w.cleanups {
		n, err := c.fn(ctx)
		if err != nil {
			w.log.Errorw("cleanup failed", "job", c.name, "error", err)
			continue
		}
		if n > 0 {
			w.log.Infow("cleaned up expired rows", "job", c.name, "count", n)
		}
	}
}
