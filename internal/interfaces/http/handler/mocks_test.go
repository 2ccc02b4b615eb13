package handler

import (
	"context"

	"github.com/google/uuid"
	catalogapp "github.com/pharmaops/backend/internal/application/catalog"
	financeapp "github.com/pharmaops/backend/internal/application/finance"
	partnerapp "github.com/pharmaops/backend/internal/application/partner"
	tradeapp "github.com/pharmaops/backend/internal/application/trade"
	"github.com/pharmaops/backend/internal/domain/report"
	"github.com/pharmaops/backend/internal/infrastructure/storage"
	"github.com/stretchr/testify/mock"
)

type mockProductService struct {
	mock.Mock
}

func (m *mockProductService) Create(ctx context.Context, pharmacyID uuid.UUID, req catalogapp.CreateProductRequest) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, pharmacyID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

func (m *mockProductService) GetByID(ctx context.Context, pharmacyID, productID uuid.UUID) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, pharmacyID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

func (m *mockProductService) List(ctx context.Context, pharmacyID uuid.UUID, filter catalogapp.ProductListFilter) ([]catalogapp.ProductResponse, int64, error) {
	args := m.Called(ctx, pharmacyID, filter)
	return args.Get(0).([]catalogapp.ProductResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockProductService) Update(ctx context.Context, pharmacyID, productID uuid.UUID, req catalogapp.UpdateProductRequest) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, pharmacyID, productID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

func (m *mockProductService) Delete(ctx context.Context, pharmacyID, productID uuid.UUID) error {
	return m.Called(ctx, pharmacyID, productID).Error(0)
}

type mockSupplierService struct {
	mock.Mock
}

func (m *mockSupplierService) Create(ctx context.Context, pharmacyID uuid.UUID, req partnerapp.CreateSupplierRequest) (*partnerapp.SupplierResponse, error) {
	args := m.Called(ctx, pharmacyID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.SupplierResponse), args.Error(1)
}

func (m *mockSupplierService) GetByID(ctx context.Context, pharmacyID, supplierID uuid.UUID) (*partnerapp.SupplierResponse, error) {
	args := m.Called(ctx, pharmacyID, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.SupplierResponse), args.Error(1)
}

func (m *mockSupplierService) List(ctx context.Context, pharmacyID uuid.UUID, filter partnerapp.SupplierListFilter) ([]partnerapp.SupplierResponse, int64, error) {
	args := m.Called(ctx, pharmacyID, filter)
	return args.Get(0).([]partnerapp.SupplierResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockSupplierService) Update(ctx context.Context, pharmacyID, supplierID uuid.UUID, req partnerapp.UpdateSupplierRequest) (*partnerapp.SupplierResponse, error) {
	args := m.Called(ctx, pharmacyID, supplierID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.SupplierResponse), args.Error(1)
}

func (m *mockSupplierService) Delete(ctx context.Context, pharmacyID, supplierID uuid.UUID) error {
	return m.Called(ctx, pharmacyID, supplierID).Error(0)
}

type mockTransactionService struct {
	mock.Mock
}

func (m *mockTransactionService) Create(ctx context.Context, pharmacyID uuid.UUID, req financeapp.CreateTransactionRequest) (*financeapp.TransactionResponse, error) {
	args := m.Called(ctx, pharmacyID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*financeapp.TransactionResponse), args.Error(1)
}

func (m *mockTransactionService) GetByID(ctx context.Context, pharmacyID, id uuid.UUID) (*financeapp.TransactionResponse, error) {
	args := m.Called(ctx, pharmacyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*financeapp.TransactionResponse), args.Error(1)
}

func (m *mockTransactionService) List(ctx context.Context, pharmacyID uuid.UUID, filter financeapp.TransactionListFilter) ([]financeapp.TransactionResponse, int64, error) {
	args := m.Called(ctx, pharmacyID, filter)
	return args.Get(0).([]financeapp.TransactionResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockTransactionService) Update(ctx context.Context, pharmacyID, id uuid.UUID, req financeapp.UpdateTransactionRequest) (*financeapp.TransactionResponse, error) {
	args := m.Called(ctx, pharmacyID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*financeapp.TransactionResponse), args.Error(1)
}

func (m *mockTransactionService) Delete(ctx context.Context, pharmacyID, id uuid.UUID) error {
	return m.Called(ctx, pharmacyID, id).Error(0)
}

type mockPurchaseService struct {
	mock.Mock
}

func (m *mockPurchaseService) Create(ctx context.Context, pharmacyID uuid.UUID, req tradeapp.CreatePurchaseRequest) (*tradeapp.PurchaseResponse, error) {
	args := m.Called(ctx, pharmacyID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.PurchaseResponse), args.Error(1)
}

func (m *mockPurchaseService) GetByID(ctx context.Context, pharmacyID, purchaseID uuid.UUID) (*tradeapp.PurchaseResponse, error) {
	args := m.Called(ctx, pharmacyID, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.PurchaseResponse), args.Error(1)
}

func (m *mockPurchaseService) List(ctx context.Context, pharmacyID uuid.UUID, filter tradeapp.ListFilter) ([]tradeapp.PurchaseListItemResponse, int64, error) {
	args := m.Called(ctx, pharmacyID, filter)
	return args.Get(0).([]tradeapp.PurchaseListItemResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockPurchaseService) Update(ctx context.Context, pharmacyID, purchaseID uuid.UUID, req tradeapp.UpdatePurchaseRequest) (*tradeapp.PurchaseResponse, error) {
	args := m.Called(ctx, pharmacyID, purchaseID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.PurchaseResponse), args.Error(1)
}

func (m *mockPurchaseService) Delete(ctx context.Context, pharmacyID, purchaseID uuid.UUID) error {
	return m.Called(ctx, pharmacyID, purchaseID).Error(0)
}

type mockSaleService struct {
	mock.Mock
}

func (m *mockSaleService) Create(ctx context.Context, pharmacyID uuid.UUID, req tradeapp.CreateSaleRequest) (*tradeapp.SaleResponse, error) {
	args := m.Called(ctx, pharmacyID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.SaleResponse), args.Error(1)
}

func (m *mockSaleService) GetByID(ctx context.Context, pharmacyID, saleID uuid.UUID) (*tradeapp.SaleResponse, error) {
	args := m.Called(ctx, pharmacyID, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.SaleResponse), args.Error(1)
}

func (m *mockSaleService) List(ctx context.Context, pharmacyID uuid.UUID, filter tradeapp.ListFilter) ([]tradeapp.SaleListItemResponse, int64, error) {
	args := m.Called(ctx, pharmacyID, filter)
	return args.Get(0).([]tradeapp.SaleListItemResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockSaleService) ListBatches(ctx context.Context, pharmacyID, productID uuid.UUID) ([]tradeapp.BatchResponse, error) {
	args := m.Called(ctx, pharmacyID, productID)
	return args.Get(0).([]tradeapp.BatchResponse), args.Error(1)
}

func (m *mockSaleService) Update(ctx context.Context, pharmacyID, saleID uuid.UUID, req tradeapp.UpdateSaleRequest) (*tradeapp.SaleResponse, error) {
	args := m.Called(ctx, pharmacyID, saleID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.SaleResponse), args.Error(1)
}

func (m *mockSaleService) Delete(ctx context.Context, pharmacyID, saleID uuid.UUID) error {
	return m.Called(ctx, pharmacyID, saleID).Error(0)
}

type mockReportService struct {
	mock.Mock
}

func (m *mockReportService) InventorySummary(ctx context.Context, f report.Filter) (*report.InventorySummary, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.InventorySummary), args.Error(1)
}

func (m *mockReportService) StockLevels(ctx context.Context, f report.Filter) ([]report.StockLevel, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]report.StockLevel), args.Error(1)
}

func (m *mockReportService) Expiry(ctx context.Context, f report.Filter, days int) ([]report.ExpiryEntry, error) {
	args := m.Called(ctx, f, days)
	return args.Get(0).([]report.ExpiryEntry), args.Error(1)
}

func (m *mockReportService) InventoryMovement(ctx context.Context, f report.Filter) (*report.InventoryMovement, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.InventoryMovement), args.Error(1)
}

func (m *mockReportService) InventoryValuation(ctx context.Context, f report.Filter) (*report.InventoryValuation, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.InventoryValuation), args.Error(1)
}

func (m *mockReportService) Sales(ctx context.Context, f report.Filter) (*report.SalesReport, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.SalesReport), args.Error(1)
}

func (m *mockReportService) Purchases(ctx context.Context, f report.Filter) (*report.PurchaseReport, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.PurchaseReport), args.Error(1)
}

func (m *mockReportService) Financial(ctx context.Context, f report.Filter) (*report.FinancialReport, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.FinancialReport), args.Error(1)
}

type mockExportArchive struct {
	mock.Mock
}

func (m *mockExportArchive) Key(pharmacyID, filename string) string {
	return "exports/" + pharmacyID + "/" + filename
}

func (m *mockExportArchive) Store(ctx context.Context, key, contentType string, body []byte) (*storage.ArchivedObject, error) {
	args := m.Called(ctx, key, contentType, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.ArchivedObject), args.Error(1)
}
