package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// BatchWriter runs bulk writes inside the transaction carried by ctx.
// Snapshot generation copies thousands of rows at once; product
// duplication queues one insert per target club.
type BatchWriter struct {
	txManager *TxManager
}

// NewBatchWriter creates a batch writer.
func NewBatchWriter(txManager *TxManager) *BatchWriter {
	return &BatchWriter{txManager: txManager}
}

// CopyRows bulk-inserts rows with the COPY protocol.
func (b *BatchWriter) CopyRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	t := b.txManager.GetTx(ctx)
	if t == nil {
		return 0, fmt.Errorf("copy into %s requires a transaction", table)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := t.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", table, err)
	}
	return n, nil
}

// Statement is one queued query.
type Statement struct {
	SQL  string
	Args []any
}

// Exec sends all statements in one round-trip and fails on the first error.
func (b *BatchWriter) Exec(ctx context.Context, stmts []Statement) error {
	t := b.txManager.GetTx(ctx)
	if t == nil {
		return fmt.Errorf("batch exec requires a transaction")
	}
	if len(stmts) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, s := range stmts {
		batch.Queue(s.SQL, s.Args...)
	}

	results := t.SendBatch(ctx, batch)
	defer results.Close()

	for i := range stmts {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch statement %d: %w", i, err)
		}
	}
	return nil
}
