package document_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubledger/internal/core/id"
	"clubledger/internal/core/types"
	"clubledger/internal/domain/documents/sale"
)

func TestSaleRepo_ItemsInsert(t *testing.T) {
	r := NewSaleRepo(nil)
	saleID := id.New()
	s := sale.NewSale(id.New())
	s.AddItem(sale.Item{ProductID: id.New(), ProductName: "Cola", Quantity: 2, UnitPrice: types.NewMoneyFromInt(25)})
	s.AddItem(sale.Item{ProductID: id.New(), ProductName: "Shake", Quantity: 1, UnitPrice: types.NewMoneyFromInt(80), Type: sale.ItemPrepared})

	sql, args, err := r.itemsInsert(saleID, s.Items).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "INSERT INTO sale_items (line_id,sale_id,line_no,product_id,product_name,quantity,unit_price,type,custom_price,extras,amount) VALUES")
	assert.Len(t, args, 2*len(itemCols))
	assert.Equal(t, saleID, args[1])
	assert.Equal(t, []sale.Extra{}, args[9], "nil extras are stored as an empty array")
}
