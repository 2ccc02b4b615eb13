package integration

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	catalogapp "github.com/pharmaops/backend/internal/application/catalog"
	reportapp "github.com/pharmaops/backend/internal/application/report"
	tradeapp "github.com/pharmaops/backend/internal/application/trade"
	"github.com/pharmaops/backend/internal/domain/finance"
	"github.com/pharmaops/backend/internal/domain/partner"
	"github.com/pharmaops/backend/internal/domain/report"
	"github.com/pharmaops/backend/internal/domain/shared"
	"github.com/pharmaops/backend/internal/infrastructure/cache"
	"github.com/pharmaops/backend/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	code := m.Run()
	CleanupSharedContainer()
	os.Exit(code)
}

type pharmacy struct {
	db        *gorm.DB
	id        uuid.UUID
	supplier  uuid.UUID
	products  *catalogapp.ProductService
	purchases *tradeapp.PurchaseService
	sales     *tradeapp.SaleService
	reports   *reportapp.ReportService
}

func newPharmacy(t *testing.T, db *gorm.DB, reportCache cache.ReportCache) *pharmacy {
	t.Helper()
	id := uuid.New()
	supplier, err := partner.NewSupplier(id, partner.SupplierDetails{Name: "MedSupply Ltd"})
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormSupplierRepository(db).Save(context.Background(), supplier))

	scope := persistence.NewGormTransactionScope(db)
	p := &pharmacy{
		db:        db,
		id:        id,
		supplier:  supplier.ID,
		products:  catalogapp.NewProductService(persistence.NewGormProductRepository(db), nil),
		purchases: tradeapp.NewPurchaseService(scope, persistence.NewGormPurchaseRepository(db), nil),
		sales: tradeapp.NewSaleService(scope, persistence.NewGormSaleRepository(db),
			persistence.NewGormBatchItemRepository(db), nil),
		reports: reportapp.NewReportService(persistence.NewGormReportRepository(db), nil),
	}
	if reportCache != nil {
		p.reports.SetCache(reportCache)
		p.products.SetReportInvalidator(reportCache)
		p.purchases.SetReportInvalidator(reportCache)
		p.sales.SetReportInvalidator(reportCache)
	}
	return p
}

func (p *pharmacy) product(t *testing.T, sku string) uuid.UUID {
	t.Helper()
	resp, err := p.products.Create(context.Background(), p.id, catalogapp.CreateProductRequest{
		SKU:          sku,
		Name:         "Product " + sku,
		Category:     "Analgesic",
		ReorderLevel: 2,
		CostPrice:    decimal.NewFromInt(2),
		RetailPrice:  decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	return resp.ID
}

func (p *pharmacy) receive(t *testing.T, productID uuid.UUID, qty int, batch string, expiry time.Time) *tradeapp.PurchaseResponse {
	t.Helper()
	resp, err := p.purchases.Create(context.Background(), p.id, tradeapp.CreatePurchaseRequest{
		SupplierID:    p.supplier,
		InvoiceNumber: "PO-" + uuid.NewString()[:8],
		PurchaseDate:  time.Now().UTC(),
		PaymentStatus: "PAID",
		Items: []tradeapp.PurchaseItemInput{{
			ProductID:   productID,
			Quantity:    qty,
			UnitPrice:   decimal.NewFromInt(2),
			BatchNumber: batch,
			ExpiryDate:  &expiry,
		}},
	})
	require.NoError(t, err)
	return resp
}

func (p *pharmacy) sell(ctx context.Context, productID uuid.UUID, qty int) (*tradeapp.SaleResponse, error) {
	return p.sales.Create(ctx, p.id, tradeapp.CreateSaleRequest{
		InvoiceNumber: "INV-" + uuid.NewString(),
		SaleDate:      time.Now().UTC(),
		PaymentStatus: "PAID",
		Items: []tradeapp.SaleItemInput{{
			ProductID: productID,
			Quantity:  qty,
			UnitPrice: decimal.NewFromInt(5),
		}},
	})
}

func (p *pharmacy) stock(t *testing.T, productID uuid.UUID) int {
	t.Helper()
	resp, err := p.products.GetByID(context.Background(), p.id, productID)
	require.NoError(t, err)
	return resp.CurrentStock
}

func TestLedger_ConcurrentSalesNeverOversell(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	tdb := NewSharedTestDB(t)
	p := newPharmacy(t, tdb.DB, nil)
	productID := p.product(t, "PARA-500")
	p.receive(t, productID, 5, "", time.Now().UTC().AddDate(1, 0, 0))

	const sellers = 12
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		sold     int
		rejected int
		other    []error
	)
	for i := 0; i < sellers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.sell(context.Background(), productID, 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				sold++
			case shared.HasCode(err, shared.CodeInsufficientStock):
				rejected++
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	require.Empty(t, other)
	assert.Equal(t, 5, sold)
	assert.Equal(t, sellers-5, rejected)
	assert.Equal(t, 0, p.stock(t, productID))

	txs, total, err := persistence.NewGormTransactionRepository(tdb.DB).FindAllForPharmacy(context.Background(), p.id,
		finance.TransactionFilter{Filter: shared.Filter{Page: 1, PageSize: 100}})
	require.NoError(t, err)
	assert.Equal(t, int64(6), total, "one expense for the purchase and one income per sale")
	income := 0
	for _, tx := range txs {
		if tx.Type == finance.TransactionTypeIncome {
			income++
		}
	}
	assert.Equal(t, 5, income)
}

func TestLedger_BatchStockAndReports(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	tdb := NewSharedTestDB(t)
	p := newPharmacy(t, tdb.DB, cache.NewInMemoryReportCache(time.Minute))
	ctx := context.Background()

	productID := p.product(t, "AMOX-250")
	soon := time.Now().UTC().AddDate(0, 0, 10).Truncate(24 * time.Hour)
	p.receive(t, productID, 4, "LOT-A", soon)
	p.receive(t, productID, 6, "LOT-B", soon.AddDate(1, 0, 0))

	summary, err := p.reports.InventorySummary(ctx, report.Filter{PharmacyID: p.id})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalProducts)
	assert.Equal(t, 1, summary.ExpiringProducts)
	assert.True(t, decimal.NewFromInt(20).Equal(summary.InventoryValue), summary.InventoryValue.String())

	_, err = p.sell(ctx, productID, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, p.stock(t, productID))

	// the sale invalidated the cached summary
	summary, err = p.reports.InventorySummary(ctx, report.Filter{PharmacyID: p.id})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.MonthSaleCount)
	assert.True(t, decimal.NewFromInt(14).Equal(summary.InventoryValue), summary.InventoryValue.String())

	expiry, err := p.reports.Expiry(ctx, report.Filter{PharmacyID: p.id}, 30)
	require.NoError(t, err)
	require.Len(t, expiry, 1)
	assert.Equal(t, "LOT-A", expiry[0].BatchNumber)

	sales, err := p.reports.Sales(ctx, report.Filter{PharmacyID: p.id})
	require.NoError(t, err)
	assert.Equal(t, 1, sales.Summary.Count)
	assert.True(t, decimal.NewFromInt(15).Equal(sales.Summary.TotalAmount))

	other := newPharmacy(t, tdb.DB, nil)
	levels, err := other.reports.StockLevels(ctx, report.Filter{PharmacyID: other.id})
	require.NoError(t, err)
	assert.Empty(t, levels, "reports never cross pharmacies")
}

func TestLedger_DeletePurchaseRestoresStock(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	tdb := NewSharedTestDB(t)
	p := newPharmacy(t, tdb.DB, nil)
	ctx := context.Background()

	productID := p.product(t, "IBU-200")
	purchase := p.receive(t, productID, 8, "LOT-1", time.Now().UTC().AddDate(1, 0, 0))
	assert.Equal(t, 8, p.stock(t, productID))

	_, err := p.sell(ctx, productID, 5)
	require.NoError(t, err)

	err = p.purchases.Delete(ctx, p.id, purchase.ID)
	assert.True(t, shared.HasCode(err, shared.CodeInsufficientStock), "stock already sold cannot be unreceived: %v", err)
	assert.Equal(t, 3, p.stock(t, productID))
}
