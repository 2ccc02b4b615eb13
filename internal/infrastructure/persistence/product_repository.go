package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/catalog"
	"github.com/pharmaops/backend/internal/domain/inventory"
	"github.com/pharmaops/backend/internal/domain/shared"
	"github.com/pharmaops/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByIDForPharmacy finds a product by ID within a pharmacy
func (r *GormProductRepository) FindByIDForPharmacy(ctx context.Context, pharmacyID, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("pharmacy_id = ? AND id = ?", pharmacyID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err, "product")
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a product and takes a row lock on it
func (r *GormProductRepository) FindByIDForUpdate(ctx context.Context, pharmacyID, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("pharmacy_id = ? AND id = ?", pharmacyID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err, "product")
	}
	return model.ToDomain(), nil
}

// FindAllForPharmacy lists a pharmacy's products with the total count
func (r *GormProductRepository) FindAllForPharmacy(ctx context.Context, pharmacyID uuid.UUID, filter catalog.ProductFilter) ([]catalog.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ProductModel{}).Scopes(pharmacyScope(pharmacyID))
	if filter.Search != "" {
		pattern := likePattern(strings.ToLower(filter.Search))
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", pattern, pattern)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.LowStock {
		query = query.Where("current_stock <= reorder_level")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ProductModel
	if err := query.
		Order(productOrder.by(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, total, nil
}

// ExistsBySKU checks for a SKU collision, optionally within one pharmacy
func (r *GormProductRepository) ExistsBySKU(ctx context.Context, pharmacyID *uuid.UUID, sku string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.ProductModel{}).Where("sku = ?", strings.ToUpper(strings.TrimSpace(sku)))
	if pharmacyID != nil {
		query = query.Scopes(pharmacyScope(*pharmacyID))
	}
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save inserts a product or updates its catalog fields. current_stock of an
// existing row is never overwritten.
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"sku", "name", "description", "category", "reorder_level",
				"cost_price", "retail_price", "expiry_date", "updated_at",
			}),
		}).
		Create(model).Error
	return translateError(err, "product")
}

// AdjustStock adds delta to current_stock with a conditional update so the
// counter can never go below zero
func (r *GormProductRepository) AdjustStock(ctx context.Context, pharmacyID, id uuid.UUID, delta int) error {
	if delta == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("pharmacy_id = ? AND id = ? AND current_stock + ? >= 0", pharmacyID, id, delta).
		Updates(map[string]any{
			"current_stock": gorm.Expr("current_stock + ?", delta),
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeInsufficientStock, "insufficient stock for product "+id.String())
	}
	return nil
}

// HasMovements reports whether any purchase or sale item references the product
func (r *GormProductRepository) HasMovements(ctx context.Context, id uuid.UUID) (bool, error) {
	var purchases, sales int64
	if err := r.db.WithContext(ctx).Model(&models.PurchaseItemModel{}).Where("product_id = ?", id).Count(&purchases).Error; err != nil {
		return false, err
	}
	if purchases > 0 {
		return true, nil
	}
	if err := r.db.WithContext(ctx).Model(&models.SaleItemModel{}).Where("product_id = ?", id).Count(&sales).Error; err != nil {
		return false, err
	}
	return sales > 0, nil
}

// Delete deletes a product within a pharmacy
func (r *GormProductRepository) Delete(ctx context.Context, pharmacyID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ProductModel{}, "pharmacy_id = ? AND id = ?", pharmacyID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("product")
	}
	return nil
}

// RecomputeStock sums the product's purchase lines minus its sale lines
func (r *GormProductRepository) RecomputeStock(ctx context.Context, pharmacyID, productID uuid.UUID) (int, error) {
	var in, out int64
	if err := r.db.WithContext(ctx).
		Table("purchase_items AS pi").
		Joins("JOIN purchases pu ON pu.id = pi.purchase_id").
		Where("pu.pharmacy_id = ? AND pi.product_id = ?", pharmacyID, productID).
		Select("COALESCE(SUM(pi.quantity), 0)").
		Scan(&in).Error; err != nil {
		return 0, err
	}
	if err := r.db.WithContext(ctx).
		Table("sale_items AS si").
		Joins("JOIN sales sa ON sa.id = si.sale_id").
		Where("sa.pharmacy_id = ? AND si.product_id = ?", pharmacyID, productID).
		Select("COALESCE(SUM(si.quantity), 0)").
		Scan(&out).Error; err != nil {
		return 0, err
	}
	return int(in - out), nil
}

// Ensure GormProductRepository implements the catalog and reconciler interfaces
var (
	_ catalog.ProductRepository = (*GormProductRepository)(nil)
	_ inventory.StockReconciler = (*GormProductRepository)(nil)
)
