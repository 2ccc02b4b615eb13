package report

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/catalog"
	"github.com/pharmaops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(name, category string, stock, reorder int, cost, retail int64) catalog.Product {
	return catalog.Product{
		PharmacyEntity: shared.NewPharmacyEntity(uuid.New()),
		SKU:            "SKU-" + name,
		Name:           name,
		Category:       category,
		CurrentStock:   stock,
		ReorderLevel:   reorder,
		CostPrice:      decimal.NewFromInt(cost),
		RetailPrice:    decimal.NewFromInt(retail),
	}
}

func TestBuildStockLevels(t *testing.T) {
	products := []catalog.Product{
		product("Zinc", "Supplements", 50, 10, 1, 2),
		product("Aspirin", "Analgesics", 5, 10, 1, 2),
		product("Ibuprofen", "Analgesics", 0, 10, 1, 2),
		product("Amoxicillin", "Antibiotics", 5, 10, 1, 2),
	}

	levels := BuildStockLevels(products)
	require.Len(t, levels, 4)

	assert.Equal(t, "Ibuprofen", levels[0].Name)
	assert.Equal(t, catalog.StockStatusOutOfStock, levels[0].Status)
	assert.Equal(t, "Amoxicillin", levels[1].Name)
	assert.Equal(t, catalog.StockStatusLow, levels[1].Status)
	assert.Equal(t, "Aspirin", levels[2].Name)
	assert.Equal(t, "Zinc", levels[3].Name)
	assert.Equal(t, catalog.StockStatusNormal, levels[3].Status)
}

func TestBuildExpiryReport(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	opts := DefaultOptions()
	productID := uuid.New()

	batches := []BatchRow{
		{BatchID: uuid.New(), ProductID: productID, ProductName: "Aspirin", BatchNumber: "B-LATE", ExpiryDate: now.AddDate(0, 0, 100), CurrentQuantity: 10},
		{BatchID: uuid.New(), ProductID: productID, ProductName: "Aspirin", BatchNumber: "B-SOON", ExpiryDate: now.AddDate(0, 0, 10), CurrentQuantity: 100},
		{BatchID: uuid.New(), ProductID: productID, ProductName: "Aspirin", BatchNumber: "B-OLD", ExpiryDate: now.AddDate(0, 0, -2), CurrentQuantity: 3},
		{BatchID: uuid.New(), ProductID: productID, ProductName: "Aspirin", BatchNumber: "B-FAR", ExpiryDate: now.AddDate(0, 0, 400), CurrentQuantity: 3},
		{BatchID: uuid.New(), ProductID: productID, ProductName: "Aspirin", BatchNumber: "B-EMPTY", ExpiryDate: now.AddDate(0, 0, 1), CurrentQuantity: 0},
	}

	t.Run("classifies and sorts batches", func(t *testing.T) {
		entries := BuildExpiryReport(batches, nil, now, 180, opts)
		require.Len(t, entries, 3)

		assert.Equal(t, "B-OLD", entries[0].BatchNumber)
		assert.Equal(t, ExpiryStatusExpired, entries[0].Status)
		assert.Equal(t, "B-SOON", entries[1].BatchNumber)
		assert.Equal(t, 10, entries[1].DaysToExpiry)
		assert.Equal(t, ExpiryStatusExpiringSoon, entries[1].Status)
		assert.Equal(t, "B-LATE", entries[2].BatchNumber)
		assert.Equal(t, ExpiryStatusNormal, entries[2].Status)
	})

	t.Run("threshold narrows the window", func(t *testing.T) {
		entries := BuildExpiryReport(batches, nil, now, 30, opts)
		require.Len(t, entries, 2)
		assert.Equal(t, "B-SOON", entries[1].BatchNumber)
	})

	t.Run("falls back to product expiry without batches", func(t *testing.T) {
		expiry := now.AddDate(0, 0, 20)
		untracked := product("Syrup", "Liquids", 8, 2, 1, 2)
		untracked.ExpiryDate = &expiry
		tracked := product("Aspirin", "Analgesics", 100, 2, 1, 2)
		tracked.ID = productID
		tracked.ExpiryDate = &expiry

		entries := BuildExpiryReport(batches, []catalog.Product{untracked, tracked}, now, 30, opts)
		require.Len(t, entries, 3)

		var fallback []ExpiryEntry
		for _, e := range entries {
			if e.Source == ExpirySourceProduct {
				fallback = append(fallback, e)
			}
		}
		require.Len(t, fallback, 1)
		assert.Equal(t, "Syrup", fallback[0].ProductName)
		assert.Equal(t, 8, fallback[0].Quantity)
		assert.Nil(t, fallback[0].BatchID)
	})
}

func TestClassifyExpiry(t *testing.T) {
	tests := []struct {
		days int
		want ExpiryStatus
	}{
		{-5, ExpiryStatusExpired},
		{0, ExpiryStatusExpired},
		{1, ExpiryStatusExpiringSoon},
		{30, ExpiryStatusExpiringSoon},
		{31, ExpiryStatusNormal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyExpiry(tt.days, 30), "days=%d", tt.days)
	}
}

func TestBuildInventorySummary(t *testing.T) {
	now := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	low := product("Aspirin", "Analgesics", 5, 10, 2, 3)
	normal := product("Zinc", "Supplements", 20, 10, 1, 2)
	aID, bID, cID := uuid.New(), uuid.New(), uuid.New()

	in := SummaryInput{
		Products: []catalog.Product{low, normal},
		ActiveBatches: []BatchRow{
			{ProductID: low.ID, ExpiryDate: now.AddDate(0, 0, 30), CurrentQuantity: 3},
			{ProductID: low.ID, ExpiryDate: now.AddDate(0, 0, 60), CurrentQuantity: 2},
			{ProductID: normal.ID, ExpiryDate: now.AddDate(0, 0, 120), CurrentQuantity: 20},
		},
		Suppliers: 3,
		Sales: []SaleRecord{
			{ID: aID, InvoiceNumber: "S-1", Date: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), TotalAmount: decimal.NewFromInt(10),
				Lines: []SaleLineRow{{ProductID: low.ID, ProductName: "Aspirin", Quantity: 4, TotalPrice: decimal.NewFromInt(10)}}},
			{ID: bID, InvoiceNumber: "S-0", Date: time.Date(2026, 5, 31, 23, 59, 0, 0, time.UTC), TotalAmount: decimal.NewFromInt(6),
				Lines: []SaleLineRow{{ProductID: normal.ID, ProductName: "Zinc", Quantity: 4, TotalPrice: decimal.NewFromInt(6)}}},
		},
		Purchases: []PurchaseRecord{
			{ID: cID, InvoiceNumber: "P-1", Date: time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC), TotalAmount: decimal.NewFromInt(50), SupplierName: "Acme"},
		},
	}

	s := BuildInventorySummary(in, now, DefaultOptions())

	assert.Equal(t, 2, s.TotalProducts)
	assert.Equal(t, 1, s.LowStockProducts)
	assert.Equal(t, 1, s.ExpiringProducts)
	assert.Equal(t, int64(3), s.TotalSuppliers)
	assert.Equal(t, 1, s.MonthPurchaseCount)
	assert.Equal(t, 1, s.MonthSaleCount)
	assert.True(t, s.InventoryValue.Equal(decimal.NewFromInt(30)))

	require.Len(t, s.TopSelling, 2)
	// equal quantities fall back to name order
	assert.Equal(t, "Aspirin", s.TopSelling[0].ProductName)
	assert.Equal(t, "Zinc", s.TopSelling[1].ProductName)

	require.Len(t, s.RecentActivity, 3)
	assert.Equal(t, "P-1", s.RecentActivity[0].InvoiceNumber)
	assert.Equal(t, MovementIn, s.RecentActivity[0].Kind)
	assert.Equal(t, "S-1", s.RecentActivity[1].InvoiceNumber)
	assert.Equal(t, "S-0", s.RecentActivity[2].InvoiceNumber)
}

func TestBuildInventoryMovement(t *testing.T) {
	p := product("Aspirin", "Analgesics", 55, 10, 1, 2)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []MovementRow{
		{Date: base.AddDate(0, 0, 2), Kind: MovementOut, ProductID: p.ID, ProductName: p.Name, Quantity: -40, Reference: "S-1"},
		{Date: base, Kind: MovementIn, ProductID: p.ID, ProductName: p.Name, Quantity: 100, Reference: "P-1", Counterparty: "Acme"},
	}

	t.Run("sorts by date and rolls up", func(t *testing.T) {
		m := BuildInventoryMovement(rows, []catalog.Product{p}, true)
		require.Len(t, m.Movements, 2)
		assert.Equal(t, "P-1", m.Movements[0].Reference)
		assert.Equal(t, "Acme", m.Movements[0].Counterparty)

		require.Len(t, m.Rollup, 1)
		r := m.Rollup[0]
		assert.Equal(t, 100, r.Purchased)
		assert.Equal(t, 40, r.Sold)
		assert.Equal(t, 60, r.Net)
		assert.Equal(t, 55, r.CurrentStock)
		require.NotNil(t, r.Drift)
		assert.Equal(t, -5, *r.Drift)
	})

	t.Run("no drift for bounded windows", func(t *testing.T) {
		m := BuildInventoryMovement(rows, []catalog.Product{p}, false)
		assert.Nil(t, m.Rollup[0].Drift)
	})
}

func TestBuildInventoryValuation(t *testing.T) {
	products := []catalog.Product{
		product("Aspirin", "Analgesics", 10, 1, 2, 3),
		product("Ibuprofen", "Analgesics", 5, 1, 4, 6),
		product("Sample", "Promo", 7, 1, 0, 1),
	}

	v := BuildInventoryValuation(products)
	require.Len(t, v.Products, 3)

	assert.True(t, v.Products[0].CostValue.Equal(decimal.NewFromInt(20)))
	assert.True(t, v.Products[0].RetailValue.Equal(decimal.NewFromInt(30)))
	assert.True(t, v.Products[0].PotentialProfit.Equal(decimal.NewFromInt(10)))
	assert.True(t, v.Products[0].ProfitMargin.Equal(decimal.NewFromInt(50)))
	assert.True(t, v.Products[2].ProfitMargin.IsZero(), "zero cost must not divide")

	require.Len(t, v.Categories, 2)
	assert.Equal(t, "Analgesics", v.Categories[0].Category)
	assert.Equal(t, 2, v.Categories[0].ProductCount)
	assert.True(t, v.Categories[0].CostValue.Equal(decimal.NewFromInt(40)))
	assert.True(t, v.Categories[0].ProfitMargin.Equal(decimal.NewFromInt(50)))

	assert.Equal(t, 22, v.Totals.TotalStock)
	assert.True(t, v.Totals.RetailValue.Equal(decimal.NewFromInt(67)))
}

func TestFilter_Validate(t *testing.T) {
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, shared.HasCode(Filter{}.Validate(), shared.CodeValidation))
	assert.True(t, shared.HasCode(Filter{PharmacyID: uuid.New(), From: &from, To: &to}.Validate(), shared.CodeValidation))
	assert.NoError(t, Filter{PharmacyID: uuid.New(), From: &to, To: &from}.Validate())
}
