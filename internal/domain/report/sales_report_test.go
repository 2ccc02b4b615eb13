package report

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSalesReport(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	products := make([]uuid.UUID, 7)
	for i := range products {
		products[i] = uuid.New()
	}
	var lines []SaleLineRow
	for i, id := range products {
		lines = append(lines, SaleLineRow{ProductID: id, ProductName: string(rune('A' + i)), Quantity: i + 1, TotalPrice: decimal.NewFromInt(int64(i + 1))})
	}
	sales := []SaleRecord{
		{ID: uuid.New(), InvoiceNumber: "S-1", Date: base, TotalAmount: decimal.NewFromInt(10), Lines: lines[:3]},
		{ID: uuid.New(), InvoiceNumber: "S-2", Date: base.AddDate(0, 0, 1), TotalAmount: decimal.NewFromInt(25), Lines: lines[3:]},
	}

	r := BuildSalesReport(sales, DefaultOptions())

	assert.Equal(t, "S-2", r.Sales[0].InvoiceNumber)
	assert.Equal(t, 4, r.Sales[0].ItemCount)
	assert.Equal(t, 2, r.Summary.Count)
	assert.True(t, r.Summary.TotalAmount.Equal(decimal.NewFromInt(35)))
	assert.True(t, r.Summary.Average.Equal(decimal.NewFromFloat(17.5)))

	require.Len(t, r.TopProducts, 5)
	assert.Equal(t, "G", r.TopProducts[0].ProductName)
	assert.Equal(t, 7, r.TopProducts[0].Quantity)
	assert.Equal(t, "C", r.TopProducts[4].ProductName)
}

func TestBuildSalesReport_Empty(t *testing.T) {
	r := BuildSalesReport(nil, DefaultOptions())
	assert.Equal(t, 0, r.Summary.Count)
	assert.True(t, r.Summary.Average.IsZero())
	assert.Empty(t, r.TopProducts)
}

func TestBuildPurchaseReport(t *testing.T) {
	acme, beta := uuid.New(), uuid.New()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	purchases := []PurchaseRecord{
		{ID: uuid.New(), Date: base, SupplierID: acme, SupplierName: "Acme", TotalAmount: decimal.NewFromInt(100)},
		{ID: uuid.New(), Date: base.AddDate(0, 0, 3), SupplierID: beta, SupplierName: "Beta", TotalAmount: decimal.NewFromInt(150)},
		{ID: uuid.New(), Date: base.AddDate(0, 0, 1), SupplierID: acme, SupplierName: "Acme", TotalAmount: decimal.NewFromInt(80)},
	}

	r := BuildPurchaseReport(purchases, DefaultOptions())

	assert.Equal(t, "Beta", r.Purchases[0].SupplierName)
	assert.Equal(t, 3, r.Summary.Count)
	assert.True(t, r.Summary.TotalAmount.Equal(decimal.NewFromInt(330)))
	assert.True(t, r.Summary.Average.Equal(decimal.NewFromInt(110)))

	require.Len(t, r.TopSuppliers, 2)
	assert.Equal(t, "Acme", r.TopSuppliers[0].SupplierName)
	assert.Equal(t, 2, r.TopSuppliers[0].PurchaseCount)
	assert.True(t, r.TopSuppliers[0].TotalAmount.Equal(decimal.NewFromInt(180)))
}

func TestBuildFinancialReport(t *testing.T) {
	purchaseID := uuid.New()
	saleID := uuid.New()
	txs := []finance.Transaction{
		{Date: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(200), Type: finance.TransactionTypeIncome, SaleID: &saleID},
		{Date: time.Date(2026, 1, 5, 15, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(50), Type: finance.TransactionTypeExpense, PurchaseID: &purchaseID},
		{Date: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(30), Type: finance.TransactionTypeExpense, Description: "Rent"},
		{Date: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(20), Type: finance.TransactionTypeExpense},
	}

	r := BuildFinancialReport(txs)

	assert.True(t, r.TotalIncome.Equal(decimal.NewFromInt(200)))
	assert.True(t, r.TotalExpenses.Equal(decimal.NewFromInt(100)))
	assert.True(t, r.NetProfit.Equal(decimal.NewFromInt(100)))
	assert.True(t, r.ProfitMargin.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 1, r.IncomeCount)
	assert.Equal(t, 3, r.ExpenseCount)

	require.Len(t, r.Monthly, 2)
	assert.Equal(t, "2026-01", r.Monthly[0].Period)
	assert.True(t, r.Monthly[0].Profit.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, "2026-02", r.Monthly[1].Period)
	assert.True(t, r.Monthly[1].Profit.Equal(decimal.NewFromInt(-50)))

	require.Len(t, r.Daily, 3)
	assert.Equal(t, "2026-01-05", r.Daily[0].Period)

	require.Len(t, r.ExpenseByCategory, 3)
	assert.Equal(t, "Inventory Purchase", r.ExpenseByCategory[0].Category)
	assert.Equal(t, "Rent", r.ExpenseByCategory[1].Category)
	assert.Equal(t, "Other Expenses", r.ExpenseByCategory[2].Category)
}

func TestBuildFinancialReport_NoIncome(t *testing.T) {
	r := BuildFinancialReport([]finance.Transaction{
		{Date: time.Now(), Amount: decimal.NewFromInt(10), Type: finance.TransactionTypeExpense},
	})
	assert.True(t, r.ProfitMargin.IsZero())
	assert.True(t, r.NetProfit.Equal(decimal.NewFromInt(-10)))
}
