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

// GormPurchaseRepository implements PurchaseRepository using GORM
type GormPurchaseRepository struct {
	db *gorm.DB
}

// NewGormPurchaseRepository creates a new GormPurchaseRepository
func NewGormPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

func orderedPurchaseItems(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

// FindByIDForPharmacy loads a purchase with its items
func (r *GormPurchaseRepository) FindByIDForPharmacy(ctx context.Context, pharmacyID, id uuid.UUID) (*trade.Purchase, error) {
	var model models.PurchaseModel
	if err := r.db.WithContext(ctx).
		Preload("Items", orderedPurchaseItems).
		Where("pharmacy_id = ? AND id = ?", pharmacyID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err, "purchase")
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate locks the purchase header and loads its items
func (r *GormPurchaseRepository) FindByIDForUpdate(ctx context.Context, pharmacyID, id uuid.UUID) (*trade.Purchase, error) {
	var model models.PurchaseModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("pharmacy_id = ? AND id = ?", pharmacyID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err, "purchase")
	}
	if err := r.db.WithContext(ctx).
		Where("purchase_id = ?", model.ID).
		Order("created_at ASC").
		Find(&model.Items).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForPharmacy lists purchases with the total count
func (r *GormPurchaseRepository) FindAllForPharmacy(ctx context.Context, pharmacyID uuid.UUID, filter trade.ListFilter) ([]trade.Purchase, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PurchaseModel{}).Scopes(pharmacyScope(pharmacyID))
	if filter.Search != "" {
		query = query.Where("LOWER(invoice_number) LIKE ?", likePattern(strings.ToLower(filter.Search)))
	}
	if filter.From != nil {
		query = query.Where("purchase_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("purchase_date <= ?", *filter.To)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.PurchaseModel
	if err := query.
		Preload("Items", orderedPurchaseItems).
		Order(purchaseOrder.by(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	purchases := make([]trade.Purchase, len(rows))
	for i := range rows {
		purchases[i] = *rows[i].ToDomain()
	}
	return purchases, total, nil
}

// Create inserts the header and items
func (r *GormPurchaseRepository) Create(ctx context.Context, purchase *trade.Purchase) error {
	header := models.PurchaseModelFromDomain(purchase)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(header).Error; err != nil {
		return translateError(err, "purchase")
	}
	return r.insertItems(ctx, purchase.Items)
}

// UpdateHeader writes the header fields only
func (r *GormPurchaseRepository) UpdateHeader(ctx context.Context, purchase *trade.Purchase) error {
	result := r.db.WithContext(ctx).
		Model(&models.PurchaseModel{}).
		Where("pharmacy_id = ? AND id = ?", purchase.PharmacyID, purchase.ID).
		Updates(map[string]any{
			"supplier_id":    purchase.SupplierID,
			"invoice_number": purchase.InvoiceNumber,
			"purchase_date":  purchase.PurchaseDate,
			"total_amount":   purchase.TotalAmount,
			"payment_status": purchase.PaymentStatus,
			"payment_method": purchase.PaymentMethod,
			"notes":          purchase.Notes,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("purchase")
	}
	return nil
}

// ReplaceItems deletes the stored items and inserts purchase.Items
func (r *GormPurchaseRepository) ReplaceItems(ctx context.Context, purchase *trade.Purchase) error {
	if err := r.db.WithContext(ctx).
		Where("purchase_id = ?", purchase.ID).
		Delete(&models.PurchaseItemModel{}).Error; err != nil {
		return err
	}
	return r.insertItems(ctx, purchase.Items)
}

// Delete removes the items and header
func (r *GormPurchaseRepository) Delete(ctx context.Context, pharmacyID, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("purchase_id = ?", id).
		Delete(&models.PurchaseItemModel{}).Error; err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&models.PurchaseModel{}, "pharmacy_id = ? AND id = ?", pharmacyID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("purchase")
	}
	return nil
}

func (r *GormPurchaseRepository) insertItems(ctx context.Context, items []trade.PurchaseItem) error {
	if len(items) == 0 {
		return nil
	}
	rows := models.PurchaseItemModelsFromDomain(items)
	return translateError(r.db.WithContext(ctx).Create(&rows).Error, "purchase item")
}

var _ trade.PurchaseRepository = (*GormPurchaseRepository)(nil)
