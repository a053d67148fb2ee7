package register_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubledger/internal/core/entity"
	"clubledger/internal/core/id"
	"clubledger/internal/domain/registers/inventory"
)

func TestInventoryRepo_MovementsQuery(t *testing.T) {
	r := NewInventoryRepo(nil)
	club, product := id.New(), id.New()
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	sql, args, err := r.movementsQuery(inventory.MovementFilter{
		ClubIDs:   []id.ID{club},
		ProductID: &product,
		Types:     []entity.MovementType{entity.MovementSale, entity.MovementGift},
		From:      &from,
		Limit:     20,
		Offset:    40,
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE club_id IN ($1) AND product_id = $2 AND type IN ($3,$4) AND created_at >= $5")
	assert.Contains(t, sql, "ORDER BY created_at DESC, id DESC LIMIT 20 OFFSET 40")
	assert.Len(t, args, 5)
	assert.Equal(t, "sale", args[2])
}

func TestInventoryRepo_RecordsQuery(t *testing.T) {
	r := NewInventoryRepo(nil)
	a, b := id.New(), id.New()
	below := int64(5)

	sql, args, err := r.recordsQuery(inventory.RecordFilter{ClubIDs: []id.ID{a, b}, Below: &below}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "JOIN products p ON p.id = r.product_id AND p.club_id = r.club_id")
	assert.Contains(t, sql, "WHERE r.club_id IN ($1,$2) AND r.quantity < $3")
	assert.Contains(t, sql, "ORDER BY r.quantity, p.name")
	assert.Equal(t, int64(5), args[2])
}

func TestMovementColumns(t *testing.T) {
	assert.Subset(t, movementCols, []string{"id", "club_id", "product_id", "type", "direction", "quantity", "sale_id"})
	assert.NotContains(t, movementCols, "")
}
