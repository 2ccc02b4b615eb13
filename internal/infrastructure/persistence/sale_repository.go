package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/shared"
	"github.com/pharmaops/backend/internal/domain/trade"
	"github.com/pharmaops/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

func orderedSaleItems(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

// FindByIDForPharmacy loads a sale with its items
func (r *GormSaleRepository) FindByIDForPharmacy(ctx context.Context, pharmacyID, id uuid.UUID) (*trade.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).
		Preload("Items", orderedSaleItems).
		Where("pharmacy_id = ? AND id = ?", pharmacyID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err, "sale")
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate locks the sale header and loads its items
func (r *GormSaleRepository) FindByIDForUpdate(ctx context.Context, pharmacyID, id uuid.UUID) (*trade.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("pharmacy_id = ? AND id = ?", pharmacyID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err, "sale")
	}
	if err := r.db.WithContext(ctx).
		Where("sale_id = ?", model.ID).
		Order("created_at ASC").
		Find(&model.Items).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForPharmacy lists sales with the total count
func (r *GormSaleRepository) FindAllForPharmacy(ctx context.Context, pharmacyID uuid.UUID, filter trade.ListFilter) ([]trade.Sale, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SaleModel{}).Scopes(pharmacyScope(pharmacyID))
	if filter.Search != "" {
		pattern := likePattern(strings.ToLower(filter.Search))
		query = query.Where("LOWER(invoice_number) LIKE ? OR LOWER(customer_name) LIKE ?", pattern, pattern)
	}
	if filter.From != nil {
		query = query.Where("sale_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("sale_date <= ?", *filter.To)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.SaleModel
	if err := query.
		Preload("Items", orderedSaleItems).
		Order(saleOrder.by(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	sales := make([]trade.Sale, len(rows))
	for i := range rows {
		sales[i] = *rows[i].ToDomain()
	}
	return sales, total, nil
}

// Create inserts the header and items
func (r *GormSaleRepository) Create(ctx context.Context, sale *trade.Sale) error {
	header := models.SaleModelFromDomain(sale)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(header).Error; err != nil {
		return translateError(err, "sale")
	}
	return r.insertItems(ctx, sale.Items)
}

// UpdateHeader writes the header fields only
func (r *GormSaleRepository) UpdateHeader(ctx context.Context, sale *trade.Sale) error {
	result := r.db.WithContext(ctx).
		Model(&models.SaleModel{}).
		Where("pharmacy_id = ? AND id = ?", sale.PharmacyID, sale.ID).
		Updates(map[string]any{
			"invoice_number":   sale.InvoiceNumber,
			"sale_date":        sale.SaleDate,
			"customer_name":    sale.CustomerName,
			"customer_contact": sale.CustomerContact,
			"total_amount":     sale.TotalAmount,
			"discount":         sale.Discount,
			"tax":              sale.Tax,
			"payment_status":   sale.PaymentStatus,
			"payment_method":   sale.PaymentMethod,
			"notes":            sale.Notes,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("sale")
	}
	return nil
}

// ReplaceItems deletes the stored items and inserts sale.Items
func (r *GormSaleRepository) ReplaceItems(ctx context.Context, sale *trade.Sale) error {
	if err := r.db.WithContext(ctx).
		Where("sale_id = ?", sale.ID).
		Delete(&models.SaleItemModel{}).Error; err != nil {
		return err
	}
	return r.insertItems(ctx, sale.Items)
}

// Delete removes the items and header
func (r *GormSaleRepository) Delete(ctx context.Context, pharmacyID, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("sale_id = ?", id).
		Delete(&models.SaleItemModel{}).Error; err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&models.SaleModel{}, "pharmacy_id = ? AND id = ?", pharmacyID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("sale")
	}
	return nil
}

func (r *GormSaleRepository) insertItems(ctx context.Context, items []trade.SaleItem) error {
	if len(items) == 0 {
		return nil
	}
	rows := models.SaleItemModelsFromDomain(items)
	return translateError(r.db.WithContext(ctx).Create(&rows).Error, "sale item")
}

var _ trade.SaleRepository = (*GormSaleRepository)(nil)
