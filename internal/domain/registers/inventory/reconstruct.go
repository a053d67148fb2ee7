package inventory

import (
	"context"
	"fmt"
	"time"

	"clubledger/internal/core/changes"
	"clubledger/internal/core/entity"
	"clubledger/internal/core/id"
	"clubledger/internal/core/period"
	"clubledger/internal/core/scope"
	"clubledger/pkg/logger"
)

// StockLine is the reconstructed stock of one product over a window.
type StockLine struct {
	ProductID      id.ID `json:"productId"`
	InitialStock   int64 `json:"initialStock"`
	Inflow         int64 `json:"inflow"`
	Outflow        int64 `json:"outflow"`
	NetPeriodDelta int64 `json:"netPeriodDelta"`
	CurrentStock   int64 `json:"currentStock"`
}

func (l *StockLine) add(t entity.Turnover) {
	l.InitialStock += t.Opening
	l.Inflow += t.Inflow
	l.Outflow += t.Outflow
	l.NetPeriodDelta += t.Net
	l.CurrentStock = l.InitialStock + l.NetPeriodDelta
}

// Reconstruct computes stock of one product across the scope for r:
// the balance before r.Start, in-window inflow and outflow, and the balance
// at r.End.
func (s *Service) Reconstruct(ctx context.Context, sc scope.Scope, productID id.ID, r period.Range) (StockLine, error) {
	line := StockLine{ProductID: productID}
	if sc.IsEmpty() {
		return line, nil
	}
	pid := productID
	rows, err := s.repo.Turnover(ctx, TurnoverFilter{
		ClubIDs:   sc.IDs(),
		ProductID: &pid,
		From:      r.Start,
		To:        r.End,
	})
	if err != nil {
		return line, fmt.Errorf("turnover: %w", err)
	}
	for _, t := range rows {
		line.add(t)
	}
	return line, nil
}

// ReconstructAll is Reconstruct for every product with history in the scope,
// ordered as the repository returns them.
func (s *Service) ReconstructAll(ctx context.Context, sc scope.Scope, r period.Range) ([]StockLine, error) {
	if sc.IsEmpty() {
		return nil, nil
	}
	rows, err := s.repo.Turnover(ctx, TurnoverFilter{
		ClubIDs: sc.IDs(),
		From:    r.Start,
		To:      r.End,
	})
	if err != nil {
		return nil, fmt.Errorf("turnover: %w", err)
	}

	index := make(map[id.ID]int, len(rows))
	lines := make([]StockLine, 0, len(rows))
	for _, t := range rows {
		i, ok := index[t.ProductID]
		if !ok {
			i = len(lines)
			index[t.ProductID] = i
			lines = append(lines, StockLine{ProductID: t.ProductID})
		}
		lines[i].add(t)
	}
	return lines, nil
}

// Drift is a balance that disagrees with its movements.
type Drift struct {
	ClubID    id.ID `json:"club"`
	ProductID id.ID `json:"productId"`
	Recorded  int64 `json:"recorded"`
	Expected  int64 `json:"expected"`
	// Missing is set when movements exist but the record does not.
	Missing bool `json:"missing"`
}

// VerifyBalances compares every balance of a club with the sum of its movements.
func (s *Service) VerifyBalances(ctx context.Context, clubID id.ID) ([]Drift, error) {
	sums, err := s.repo.SumMovements(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("sum movements: %w", err)
	}
	records, err := s.repo.ListRecords(ctx, RecordFilter{ClubIDs: []id.ID{clubID}})
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	var drifts []Drift
	seen := make(map[id.ID]struct{}, len(records))
	for _, r := range records {
		seen[r.ProductID] = struct{}{}
		if expected := sums[r.ProductID]; expected != r.Quantity {
			drifts = append(drifts, Drift{ClubID: clubID, ProductID: r.ProductID, Recorded: r.Quantity, Expected: expected})
		}
	}
	for productID, expected := range sums {
		if _, ok := seen[productID]; ok {
			continue
		}
		drifts = append(drifts, Drift{ClubID: clubID, ProductID: productID, Expected: expected, Missing: true})
	}
	return drifts, nil
}

// RepairBalances rewrites drifted balances of a club to their movement sums
// and returns what was fixed.
func (s *Service) RepairBalances(ctx context.Context, clubID id.ID) ([]Drift, error) {
	var fixed []Drift
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		drifts, err := s.VerifyBalances(ctx, clubID)
		if err != nil {
			return err
		}
		for _, d := range drifts {
			if err := s.repo.SetRecord(ctx, d.ClubID, d.ProductID, d.Expected); err != nil {
				return fmt.Errorf("set record %s: %w", d.ProductID, err)
			}
		}
		fixed = drifts
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(fixed) > 0 {
		changes.Notify(ctx, s.changes, clubID)
		logger.Warn(ctx, "inventory drift repaired", "club", clubID, "count", len(fixed))
	}
	return fixed, nil
}

// WriteSnapshots stores the balance of every pair of a club as of asOf.
func (s *Service) WriteSnapshots(ctx context.Context, clubID id.ID, asOf time.Time) (int64, error) {
	var written int64
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		rows, err := s.repo.Turnover(ctx, TurnoverFilter{
			ClubIDs: []id.ID{clubID},
			From:    asOf,
			To:      asOf,
		})
		if err != nil {
			return fmt.Errorf("turnover: %w", err)
		}
		snaps := make([]entity.InventorySnapshot, 0, len(rows))
		for _, t := range rows {
			snaps = append(snaps, entity.InventorySnapshot{
				ClubID:    t.ClubID,
				ProductID: t.ProductID,
				AsOf:      asOf,
				Quantity:  t.Opening,
			})
		}
		if len(snaps) == 0 {
			return nil
		}
		written, err = s.repo.SaveSnapshots(ctx, snaps)
		if err != nil {
			return fmt.Errorf("save snapshots: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	logger.Info(ctx, "inventory snapshots written", "club", clubID, "as_of", asOf, "count", written)
	return written, nil
}
