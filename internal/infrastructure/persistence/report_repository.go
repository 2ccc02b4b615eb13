package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/catalog"
	"github.com/pharmaops/backend/internal/domain/finance"
	"github.com/pharmaops/backend/internal/domain/report"
	"github.com/pharmaops/backend/internal/domain/trade"
	"github.com/pharmaops/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReportRepository implements report.Repository using GORM.
// It only reads and never opens a transaction.
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// ListProducts returns the pharmacy's products narrowed by category and product
func (r *GormReportRepository) ListProducts(ctx context.Context, f report.Filter) ([]catalog.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.ProductModel{}).Scopes(pharmacyScope(f.PharmacyID))
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.ProductID != nil {
		query = query.Where("id = ?", *f.ProductID)
	}

	var rows []models.ProductModel
	if err := query.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, nil
}

// ListActiveBatches returns batches with remaining quantity joined with their product
func (r *GormReportRepository) ListActiveBatches(ctx context.Context, f report.Filter) ([]report.BatchRow, error) {
	type batchRow struct {
		BatchID         uuid.UUID
		ProductID       uuid.UUID
		ProductName     string
		SKU             string
		Category        string
		BatchNumber     string
		ExpiryDate      time.Time
		InitialQuantity int
		CurrentQuantity int
	}

	query := r.db.WithContext(ctx).Table("batch_items bi").
		Select(`bi.id AS batch_id, bi.product_id, p.name AS product_name, p.sku AS sku,
			p.category AS category, bi.batch_number, bi.expiry_date,
			bi.initial_quantity, bi.current_quantity`).
		Joins("JOIN products p ON p.id = bi.product_id").
		Where("bi.pharmacy_id = ? AND bi.current_quantity > 0", f.PharmacyID)
	if f.Category != "" {
		query = query.Where("p.category = ?", f.Category)
	}
	if f.ProductID != nil {
		query = query.Where("bi.product_id = ?", *f.ProductID)
	}

	var rows []batchRow
	if err := query.Order("bi.expiry_date ASC, bi.id ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]report.BatchRow, len(rows))
	for i, row := range rows {
		out[i] = report.BatchRow(row)
	}
	return out, nil
}

type movementRow struct {
	Date         time.Time
	RecordID     uuid.UUID
	Reference    string
	Counterparty string
	ProductID    uuid.UUID
	ProductName  string
	SKU          string
	Category     string
	Quantity     int
	UnitPrice    decimal.Decimal
}

// ListMovements returns purchase lines (positive) and sale lines (negative) in date order
func (r *GormReportRepository) ListMovements(ctx context.Context, f report.Filter) ([]report.MovementRow, error) {
	var in []movementRow
	purchases := r.db.WithContext(ctx).Table("purchase_items pi").
		Select(`pu.purchase_date AS date, pu.id AS record_id, pu.invoice_number AS reference,
			COALESCE(s.name, '') AS counterparty, pi.product_id, p.name AS product_name,
			p.sku AS sku, p.category AS category, pi.quantity, pi.unit_price`).
		Joins("JOIN purchases pu ON pu.id = pi.purchase_id").
		Joins("JOIN products p ON p.id = pi.product_id").
		Joins("LEFT JOIN suppliers s ON s.id = pu.supplier_id").
		Where("pu.pharmacy_id = ?", f.PharmacyID)
	purchases = applyLineFilter(purchases, f, "pu.purchase_date", "pi.product_id")
	if err := purchases.Scan(&in).Error; err != nil {
		return nil, err
	}

	var out []movementRow
	sales := r.db.WithContext(ctx).Table("sale_items si").
		Select(`sa.sale_date AS date, sa.id AS record_id, sa.invoice_number AS reference,
			sa.customer_name AS counterparty, si.product_id, p.name AS product_name,
			p.sku AS sku, p.category AS category, si.quantity, si.unit_price`).
		Joins("JOIN sales sa ON sa.id = si.sale_id").
		Joins("JOIN products p ON p.id = si.product_id").
		Where("sa.pharmacy_id = ?", f.PharmacyID)
	sales = applyLineFilter(sales, f, "sa.sale_date", "si.product_id")
	if err := sales.Scan(&out).Error; err != nil {
		return nil, err
	}

	rows := make([]report.MovementRow, 0, len(in)+len(out))
	for _, m := range in {
		rows = append(rows, m.toReport(report.MovementIn, m.Quantity))
	}
	for _, m := range out {
		rows = append(rows, m.toReport(report.MovementOut, -m.Quantity))
	}
	return rows, nil
}

func (m movementRow) toReport(kind report.MovementKind, qty int) report.MovementRow {
	return report.MovementRow{
		Date:         m.Date,
		Kind:         kind,
		RecordID:     m.RecordID,
		Reference:    m.Reference,
		Counterparty: m.Counterparty,
		ProductID:    m.ProductID,
		ProductName:  m.ProductName,
		SKU:          m.SKU,
		Category:     m.Category,
		Quantity:     qty,
		UnitPrice:    m.UnitPrice,
	}
}

// applyLineFilter adds the date window on dateCol and the category and
// product constraints on the joined product alias p.
func applyLineFilter(query *gorm.DB, f report.Filter, dateCol, productCol string) *gorm.DB {
	if f.From != nil {
		query = query.Where(dateCol+" >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where(dateCol+" <= ?", *f.To)
	}
	if f.Category != "" {
		query = query.Where("p.category = ?", f.Category)
	}
	if f.ProductID != nil {
		query = query.Where(productCol+" = ?", *f.ProductID)
	}
	return query
}

// ListSales returns sales in the window with their lines. With a category or
// product filter only sales holding a matching line are returned and Lines
// carries just the matching lines.
func (r *GormReportRepository) ListSales(ctx context.Context, f report.Filter) ([]report.SaleRecord, error) {
	query := r.db.WithContext(ctx).Model(&models.SaleModel{}).Scopes(pharmacyScope(f.PharmacyID))
	query = applyDateWindow(query, f, "sale_date")
	if matching := r.matchingLines(ctx, "sale_items", "sale_id", f); matching != nil {
		query = query.Where("id IN (?)", matching)
	}

	var sales []models.SaleModel
	if err := query.Order("sale_date DESC, id ASC").Find(&sales).Error; err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return []report.SaleRecord{}, nil
	}

	ids := make([]uuid.UUID, len(sales))
	for i := range sales {
		ids[i] = sales[i].ID
	}

	type lineRow struct {
		SaleID      uuid.UUID
		ProductID   uuid.UUID
		ProductName string
		Category    string
		Quantity    int
		TotalPrice  decimal.Decimal
	}
	var lines []lineRow
	if err := r.db.WithContext(ctx).Table("sale_items si").
		Select("si.sale_id, si.product_id, COALESCE(p.name, '') AS product_name, COALESCE(p.category, '') AS category, si.quantity, si.total_price").
		Joins("LEFT JOIN products p ON p.id = si.product_id").
		Where("si.sale_id IN ?", ids).
		Order("si.created_at ASC").
		Scan(&lines).Error; err != nil {
		return nil, err
	}

	bySale := make(map[uuid.UUID][]report.SaleLineRow, len(sales))
	counts := make(map[uuid.UUID]int, len(sales))
	for _, l := range lines {
		counts[l.SaleID]++
		if f.Category != "" && l.Category != f.Category {
			continue
		}
		if f.ProductID != nil && l.ProductID != *f.ProductID {
			continue
		}
		bySale[l.SaleID] = append(bySale[l.SaleID], report.SaleLineRow{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			TotalPrice:  l.TotalPrice,
		})
	}

	out := make([]report.SaleRecord, len(sales))
	for i, s := range sales {
		out[i] = report.SaleRecord{
			ID:            s.ID,
			InvoiceNumber: s.InvoiceNumber,
			Date:          s.SaleDate,
			CustomerName:  s.CustomerName,
			TotalAmount:   s.TotalAmount,
			PaymentStatus: s.PaymentStatus,
			ItemCount:     counts[s.ID],
			Lines:         bySale[s.ID],
		}
	}
	return out, nil
}

// ListPurchases returns purchases in the window with supplier names and item counts
func (r *GormReportRepository) ListPurchases(ctx context.Context, f report.Filter) ([]report.PurchaseRecord, error) {
	type purchaseRow struct {
		ID            uuid.UUID
		InvoiceNumber string
		PurchaseDate  time.Time
		SupplierID    uuid.UUID
		SupplierName  string
		TotalAmount   decimal.Decimal
		PaymentStatus trade.PaymentStatus
		ItemCount     int
	}

	query := r.db.WithContext(ctx).Table("purchases pu").
		Select(`pu.id, pu.invoice_number, pu.purchase_date, pu.supplier_id,
			COALESCE(s.name, 'Unknown Supplier') AS supplier_name, pu.total_amount, pu.payment_status,
			(SELECT COUNT(*) FROM purchase_items pi WHERE pi.purchase_id = pu.id) AS item_count`).
		Joins("LEFT JOIN suppliers s ON s.id = pu.supplier_id").
		Where("pu.pharmacy_id = ?", f.PharmacyID)
	query = applyDateWindow(query, f, "pu.purchase_date")
	if matching := r.matchingLines(ctx, "purchase_items", "purchase_id", f); matching != nil {
		query = query.Where("pu.id IN (?)", matching)
	}

	var rows []purchaseRow
	if err := query.Order("pu.purchase_date DESC, pu.id ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]report.PurchaseRecord, len(rows))
	for i, row := range rows {
		out[i] = report.PurchaseRecord{
			ID:            row.ID,
			InvoiceNumber: row.InvoiceNumber,
			Date:          row.PurchaseDate,
			SupplierID:    row.SupplierID,
			SupplierName:  row.SupplierName,
			TotalAmount:   row.TotalAmount,
			PaymentStatus: row.PaymentStatus,
			ItemCount:     row.ItemCount,
		}
	}
	return out, nil
}

// matchingLines builds the subquery of owner ids holding a line that passes
// the category or product filter. It returns nil when neither is set.
func (r *GormReportRepository) matchingLines(ctx context.Context, table, ownerCol string, f report.Filter) *gorm.DB {
	if f.Category == "" && f.ProductID == nil {
		return nil
	}
	sub := r.db.WithContext(ctx).Table(table + " l").
		Select("l." + ownerCol).
		Joins("JOIN products p ON p.id = l.product_id")
	if f.Category != "" {
		sub = sub.Where("p.category = ?", f.Category)
	}
	if f.ProductID != nil {
		sub = sub.Where("l.product_id = ?", *f.ProductID)
	}
	return sub
}

func applyDateWindow(query *gorm.DB, f report.Filter, col string) *gorm.DB {
	if f.From != nil {
		query = query.Where(col+" >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where(col+" <= ?", *f.To)
	}
	return query
}

// ListTransactions returns ledger entries in the window, oldest first
func (r *GormReportRepository) ListTransactions(ctx context.Context, f report.Filter) ([]finance.Transaction, error) {
	query := r.db.WithContext(ctx).Model(&models.TransactionModel{}).Scopes(pharmacyScope(f.PharmacyID))
	query = applyDateWindow(query, f, "date")

	var rows []models.TransactionModel
	if err := query.Order("date ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	txs := make([]finance.Transaction, len(rows))
	for i := range rows {
		txs[i] = *rows[i].ToDomain()
	}
	return txs, nil
}

// CountSuppliers returns the number of suppliers of the pharmacy
func (r *GormReportRepository) CountSuppliers(ctx context.Context, pharmacyID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SupplierModel{}).Scopes(pharmacyScope(pharmacyID)).Count(&count).Error
	return count, err
}

var _ report.Repository = (*GormReportRepository)(nil)
