package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/catalog"
	"github.com/pharmaops/backend/internal/domain/finance"
	"github.com/pharmaops/backend/internal/domain/inventory"
	"github.com/pharmaops/backend/internal/domain/partner"
	"github.com/pharmaops/backend/internal/domain/report"
	"github.com/pharmaops/backend/internal/domain/shared"
	"github.com/pharmaops/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedProduct(t *testing.T, db *gorm.DB, pharmacyID uuid.UUID, sku, category string, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(pharmacyID, catalog.ProductDetails{
		SKU:         sku,
		Name:        "Product " + sku,
		Category:    category,
		CostPrice:   decimal.NewFromInt(2),
		RetailPrice: decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	p.CurrentStock = stock
	require.NoError(t, NewGormProductRepository(db).Save(context.Background(), p))
	return p
}

func seedSupplier(t *testing.T, db *gorm.DB, pharmacyID uuid.UUID, name string) *partner.Supplier {
	t.Helper()
	s, err := partner.NewSupplier(pharmacyID, partner.SupplierDetails{Name: name})
	require.NoError(t, err)
	require.NoError(t, NewGormSupplierRepository(db).Save(context.Background(), s))
	return s
}

func seedPurchase(t *testing.T, db *gorm.DB, pharmacyID, supplierID uuid.UUID, date time.Time, lines ...trade.PurchaseLine) *trade.Purchase {
	t.Helper()
	p, err := trade.NewPurchase(pharmacyID, trade.PurchaseHeader{
		SupplierID:    supplierID,
		InvoiceNumber: "PO-" + uuid.NewString()[:8],
		PurchaseDate:  date,
		PaymentStatus: trade.PaymentStatusPaid,
	})
	require.NoError(t, err)
	require.NoError(t, p.ReplaceItems(lines, nil))
	require.NoError(t, NewGormPurchaseRepository(db).Create(context.Background(), p))
	return p
}

func seedSale(t *testing.T, db *gorm.DB, pharmacyID uuid.UUID, date time.Time, lines ...trade.SaleLine) *trade.Sale {
	t.Helper()
	s, err := trade.NewSale(pharmacyID, trade.SaleHeader{
		InvoiceNumber: "INV-" + uuid.NewString()[:8],
		SaleDate:      date,
		PaymentStatus: trade.PaymentStatusPaid,
	})
	require.NoError(t, err)
	require.NoError(t, s.ReplaceItems(lines, nil))
	require.NoError(t, NewGormSaleRepository(db).Create(context.Background(), s))
	return s
}

func TestGormProductRepository_SQLite(t *testing.T) {
	ctx := context.Background()

	t.Run("save never overwrites current stock", func(t *testing.T) {
		db := newSQLiteDatabase(t).DB
		repo := NewGormProductRepository(db)
		p := seedProduct(t, db, uuid.New(), "PARA-500", "Analgesic", 10)

		p.CurrentStock = 999
		p.Name = "Paracetamol 500mg"
		require.NoError(t, repo.Save(ctx, p))

		found, err := repo.FindByIDForPharmacy(ctx, p.PharmacyID, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, found.CurrentStock)
		assert.Equal(t, "Paracetamol 500mg", found.Name)
	})

	t.Run("adjust stock refuses to go negative", func(t *testing.T) {
		db := newSQLiteDatabase(t).DB
		repo := NewGormProductRepository(db)
		p := seedProduct(t, db, uuid.New(), "IBU-200", "", 5)

		require.NoError(t, repo.AdjustStock(ctx, p.PharmacyID, p.ID, -5))
		err := repo.AdjustStock(ctx, p.PharmacyID, p.ID, -1)
		assert.True(t, shared.HasCode(err, shared.CodeInsufficientStock))

		found, err := repo.FindByIDForUpdate(ctx, p.PharmacyID, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, found.CurrentStock)
	})

	t.Run("foreign pharmacy reads are not found", func(t *testing.T) {
		db := newSQLiteDatabase(t).DB
		repo := NewGormProductRepository(db)
		p := seedProduct(t, db, uuid.New(), "CET-10", "", 1)

		_, err := repo.FindByIDForPharmacy(ctx, uuid.New(), p.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("sku lookup honours scope and exclusion", func(t *testing.T) {
		db := newSQLiteDatabase(t).DB
		repo := NewGormProductRepository(db)
		p := seedProduct(t, db, uuid.New(), "AMOX-250", "", 0)
		other := uuid.New()

		exists, err := repo.ExistsBySKU(ctx, nil, " amox-250 ", nil)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsBySKU(ctx, &other, "AMOX-250", nil)
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = repo.ExistsBySKU(ctx, nil, "AMOX-250", &p.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("duplicate sku in one pharmacy is a duplicate key", func(t *testing.T) {
		db := newSQLiteDatabase(t).DB
		pharmacyID := uuid.New()
		seedProduct(t, db, pharmacyID, "DUP-1", "", 0)

		p, err := catalog.NewProduct(pharmacyID, catalog.ProductDetails{SKU: "DUP-1", Name: "Again"})
		require.NoError(t, err)
		err = NewGormProductRepository(db).Save(ctx, p)
		assert.True(t, shared.HasCode(err, shared.CodeDuplicateKey))
	})

	t.Run("lists with search and low stock", func(t *testing.T) {
		db := newSQLiteDatabase(t).DB
		pharmacyID := uuid.New()
		seedProduct(t, db, pharmacyID, "LOW-1", "A", 0)
		seedProduct(t, db, pharmacyID, "HIGH-1", "A", 50)
		seedProduct(t, db, uuid.New(), "LOW-2", "A", 0)

		filter := catalog.ProductFilter{Filter: shared.DefaultFilter(), LowStock: true}
		items, total, err := NewGormProductRepository(db).FindAllForPharmacy(ctx, pharmacyID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, items, 1)
		assert.Equal(t, "LOW-1", items[0].SKU)

		filter = catalog.ProductFilter{Filter: shared.Filter{Search: "high"}}
		items, total, err = NewGormProductRepository(db).FindAllForPharmacy(ctx, pharmacyID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "HIGH-1", items[0].SKU)
	})

	t.Run("movements and recompute follow the item history", func(t *testing.T) {
		db := newSQLiteDatabase(t).DB
		repo := NewGormProductRepository(db)
		pharmacyID := uuid.New()
		p := seedProduct(t, db, pharmacyID, "MOV-1", "", 7)
		supplier := seedSupplier(t, db, pharmacyID, "Acme Pharma")

		moved, err := repo.HasMovements(ctx, p.ID)
		require.NoError(t, err)
		assert.False(t, moved)

		seedPurchase(t, db, pharmacyID, supplier.ID, time.Now(), trade.PurchaseLine{ProductID: p.ID, Quantity: 10, UnitPrice: decimal.NewFromInt(2)})
		seedSale(t, db, pharmacyID, time.Now(), trade.SaleLine{ProductID: p.ID, Quantity: 3, UnitPrice: decimal.NewFromInt(5)})

		moved, err = repo.HasMovements(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, moved)

		stock, err := repo.RecomputeStock(ctx, pharmacyID, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 7, stock)
	})
}

func TestGormBatchItemRepository_SQLite(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDatabase(t).DB
	repo := NewGormBatchItemRepository(db)
	pharmacyID, productID := uuid.New(), uuid.New()
	now := time.Now().UTC()

	late, err := inventory.NewBatchItem(pharmacyID, productID, uuid.New(), "B-LATE", now.AddDate(1, 0, 0), 10)
	require.NoError(t, err)
	early, err := inventory.NewBatchItem(pharmacyID, productID, uuid.New(), "B-EARLY", now.AddDate(0, 2, 0), 4)
	require.NoError(t, err)
	require.NoError(t, repo.CreateBatch(ctx, []inventory.BatchItem{*late, *early}))

	batches, err := repo.FindByProduct(ctx, pharmacyID, productID)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "B-EARLY", batches[0].BatchNumber)

	require.NoError(t, repo.AdjustQuantity(ctx, early.ID, -4))
	assert.True(t, shared.HasCode(repo.AdjustQuantity(ctx, early.ID, -1), shared.CodeInsufficientBatchQuantity))
	assert.True(t, shared.HasCode(repo.AdjustQuantity(ctx, late.ID, 1), shared.CodeInvalidState))

	batches, err = repo.FindByProduct(ctx, pharmacyID, productID)
	require.NoError(t, err)
	require.Len(t, batches, 1, "empty batches drop out of the FEFO list")

	locked, err := repo.FindByIDForUpdate(ctx, pharmacyID, early.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, locked.CurrentQuantity)
	assert.Equal(t, 4, locked.InitialQuantity)

	referenced, err := repo.IsReferencedBySales(ctx, []uuid.UUID{early.ID})
	require.NoError(t, err)
	assert.False(t, referenced)

	require.NoError(t, repo.DeleteByPurchaseItems(ctx, []uuid.UUID{late.PurchaseItemID}))
	remaining, err := repo.FindByPurchaseItems(ctx, []uuid.UUID{late.PurchaseItemID, early.PurchaseItemID})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, early.ID, remaining[0].ID)
}

func TestGormPurchaseRepository_SQLite(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDatabase(t).DB
	repo := NewGormPurchaseRepository(db)
	pharmacyID := uuid.New()
	supplier := seedSupplier(t, db, pharmacyID, "Acme Pharma")
	a := seedProduct(t, db, pharmacyID, "A-1", "", 0)
	b := seedProduct(t, db, pharmacyID, "B-1", "", 0)

	p := seedPurchase(t, db, pharmacyID, supplier.ID, time.Now().UTC(),
		trade.PurchaseLine{ProductID: a.ID, Quantity: 5, UnitPrice: decimal.NewFromInt(3)},
		trade.PurchaseLine{ProductID: b.ID, Quantity: 2, UnitPrice: decimal.NewFromInt(4)},
	)

	found, err := repo.FindByIDForPharmacy(ctx, pharmacyID, p.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 2)
	assert.Equal(t, a.ID, found.Items[0].ProductID, "items keep their input order")
	assert.True(t, decimal.NewFromInt(23).Equal(found.TotalAmount))

	require.NoError(t, p.ReplaceItems([]trade.PurchaseLine{{ProductID: b.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(4)}}, nil))
	p.Notes = "short delivery"
	require.NoError(t, repo.ReplaceItems(ctx, p))
	require.NoError(t, repo.UpdateHeader(ctx, p))

	locked, err := repo.FindByIDForUpdate(ctx, pharmacyID, p.ID)
	require.NoError(t, err)
	require.Len(t, locked.Items, 1)
	assert.Equal(t, "short delivery", locked.Notes)
	assert.True(t, decimal.NewFromInt(4).Equal(locked.TotalAmount))

	list, total, err := repo.FindAllForPharmacy(ctx, pharmacyID, trade.ListFilter{SupplierID: &supplier.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Items, 1)

	require.NoError(t, repo.Delete(ctx, pharmacyID, p.ID))
	_, err = repo.FindByIDForPharmacy(ctx, pharmacyID, p.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, pharmacyID, p.ID), shared.ErrNotFound)
}

func TestGormTransactionRepository_SQLite(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDatabase(t).DB
	repo := NewGormTransactionRepository(db)
	pharmacyID, saleID := uuid.New(), uuid.New()

	_, err := finance.SyncTransaction(ctx, repo, finance.LedgerEntry{
		Kind: finance.OwnerSale, OwnerID: saleID, PharmacyID: pharmacyID,
		Date: time.Now().UTC(), Amount: decimal.NewFromInt(40), Description: "Sale INV-1", Payable: true,
	})
	require.NoError(t, err)

	manual, err := finance.NewManualTransaction(pharmacyID, finance.TransactionDetails{
		Amount: decimal.NewFromInt(15), Type: finance.TransactionTypeExpense, Description: "Rent",
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, manual))

	linked, err := repo.FindByOwner(ctx, finance.OwnerSale, saleID)
	require.NoError(t, err)
	assert.Equal(t, finance.TransactionTypeIncome, linked.Type)

	_, err = repo.FindByOwner(ctx, finance.OwnerPurchase, saleID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	all, total, err := repo.FindAllForPharmacy(ctx, pharmacyID, finance.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	manualOnly, total, err := repo.FindAllForPharmacy(ctx, pharmacyID, finance.TransactionFilter{ManualOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, manual.ID, manualOnly[0].ID)

	require.NoError(t, repo.Delete(ctx, pharmacyID, manual.ID))
	assert.ErrorIs(t, repo.Delete(ctx, pharmacyID, manual.ID), shared.ErrNotFound)
}

func TestGormReportRepository_SQLite(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDatabase(t).DB
	repo := NewGormReportRepository(db)
	pharmacyID := uuid.New()
	supplier := seedSupplier(t, db, pharmacyID, "Acme Pharma")
	pain := seedProduct(t, db, pharmacyID, "PAIN-1", "Analgesic", 0)
	vit := seedProduct(t, db, pharmacyID, "VIT-1", "Vitamin", 0)
	day := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	seedPurchase(t, db, pharmacyID, supplier.ID, day,
		trade.PurchaseLine{ProductID: pain.ID, Quantity: 10, UnitPrice: decimal.NewFromInt(2)})
	seedSale(t, db, pharmacyID, day.Add(time.Hour),
		trade.SaleLine{ProductID: pain.ID, Quantity: 2, UnitPrice: decimal.NewFromInt(5)},
		trade.SaleLine{ProductID: vit.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(8)})
	seedSale(t, db, pharmacyID, day.Add(2*time.Hour),
		trade.SaleLine{ProductID: vit.ID, Quantity: 3, UnitPrice: decimal.NewFromInt(8)})

	t.Run("sales keep only matching lines under a category filter", func(t *testing.T) {
		sales, err := repo.ListSales(ctx, report.Filter{PharmacyID: pharmacyID, Category: "Analgesic"})
		require.NoError(t, err)
		require.Len(t, sales, 1)
		assert.Equal(t, 2, sales[0].ItemCount)
		require.Len(t, sales[0].Lines, 1)
		assert.Equal(t, pain.ID, sales[0].Lines[0].ProductID)
		assert.Equal(t, "Product PAIN-1", sales[0].Lines[0].ProductName)
	})

	t.Run("purchases resolve supplier and item count", func(t *testing.T) {
		purchases, err := repo.ListPurchases(ctx, report.Filter{PharmacyID: pharmacyID})
		require.NoError(t, err)
		require.Len(t, purchases, 1)
		assert.Equal(t, "Acme Pharma", purchases[0].SupplierName)
		assert.Equal(t, 1, purchases[0].ItemCount)

		none, err := repo.ListPurchases(ctx, report.Filter{PharmacyID: pharmacyID, Category: "Vitamin"})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("movements are signed", func(t *testing.T) {
		rows, err := repo.ListMovements(ctx, report.Filter{PharmacyID: pharmacyID, ProductID: &pain.ID})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		sum := 0
		for _, r := range rows {
			sum += r.Quantity
		}
		assert.Equal(t, 8, sum)
	})

	t.Run("counts suppliers per pharmacy", func(t *testing.T) {
		n, err := repo.CountSuppliers(ctx, pharmacyID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		n, err = repo.CountSuppliers(ctx, uuid.New())
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
