package report_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubledger/internal/core/id"
	"clubledger/internal/core/period"
)

func TestReportRepo_SalesQuery(t *testing.T) {
	r := NewReportRepo(nil)
	a, b := id.New(), id.New()
	loc := time.UTC
	rng := period.DayRange(time.Date(2024, 5, 20, 10, 0, 0, 0, loc), loc)

	sql, args, err := r.salesQuery([]id.ID{a, b}, rng).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, number, club_id, total, created_at FROM sales WHERE club_id IN ($1,$2) AND status = $3 AND created_at BETWEEN $4 AND $5 ORDER BY created_at, id",
		sql)
	assert.Equal(t, "completed", args[2])
	assert.Equal(t, rng.Start, args[3])
}

func TestReportRepo_SaleItemsQuery_JoinsCategory(t *testing.T) {
	r := NewReportRepo(nil)
	rng := period.DayRange(time.Now(), time.UTC)

	sql, _, err := r.saleItemsQuery([]id.ID{id.New()}, rng).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "LEFT JOIN products p ON p.id = i.product_id AND p.club_id = s.club_id")
	assert.Contains(t, sql, "COALESCE(p.category, '') AS category")
}
