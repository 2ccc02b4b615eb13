package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/catalog"
	"github.com/pharmaops/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/clause"
)

func TestListOrder_By(t *testing.T) {
	tests := []struct {
		name  string
		order listOrder
		field string
		dir   string
		want  clause.OrderByColumn
	}{
		{"catalog default is alphabetical", productOrder, "", "", clause.OrderByColumn{Column: clause.Column{Name: "name"}}},
		{"ledger default is newest first", saleOrder, "", "", clause.OrderByColumn{Column: clause.Column{Name: "sale_date"}, Desc: true}},
		{"whitelisted column", productOrder, " current_stock ", "DESC", clause.OrderByColumn{Column: clause.Column{Name: "current_stock"}, Desc: true}},
		{"explicit asc on ledger", transactionOrder, "amount", "asc", clause.OrderByColumn{Column: clause.Column{Name: "amount"}}},
		{"unknown column falls back", purchaseOrder, "pharmacy_id", "asc", clause.OrderByColumn{Column: clause.Column{Name: "purchase_date"}}},
		{"injection in column", supplierOrder, "name; DROP TABLE suppliers;--", "", clause.OrderByColumn{Column: clause.Column{Name: "name"}}},
		{"injection in direction", purchaseOrder, "total_amount", "ASC; DROP TABLE purchases", clause.OrderByColumn{Column: clause.Column{Name: "total_amount"}, Desc: true}},
		{"case sensitive columns", productOrder, "SKU", "asc", clause.OrderByColumn{Column: clause.Column{Name: "name"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.order.by(tt.field, tt.dir))
		})
	}
}

func TestListOrder_AppliedToProductListing(t *testing.T) {
	db := newSQLiteDatabase(t).DB
	ctx := context.Background()
	pharmacyID := uuid.New()
	seedProduct(t, db, pharmacyID, "B-2", "", 5)
	seedProduct(t, db, pharmacyID, "A-1", "", 9)
	seedProduct(t, db, pharmacyID, "C-3", "", 1)

	repo := NewGormProductRepository(db)
	filter := catalog.ProductFilter{Filter: shared.Filter{Page: 1, PageSize: 10, OrderBy: "current_stock", OrderDir: "desc"}}
	items, _, err := repo.FindAllForPharmacy(ctx, pharmacyID, filter)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"A-1", "B-2", "C-3"}, []string{items[0].SKU, items[1].SKU, items[2].SKU})

	filter.OrderBy = "1; DELETE FROM products"
	items, _, err = repo.FindAllForPharmacy(ctx, pharmacyID, filter)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}
