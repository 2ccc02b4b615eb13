package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/inventory"
	"github.com/pharmaops/backend/internal/domain/shared"
	"github.com/pharmaops/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBatchItemRepository implements BatchItemRepository using GORM
type GormBatchItemRepository struct {
	db *gorm.DB
}

// NewGormBatchItemRepository creates a new GormBatchItemRepository
func NewGormBatchItemRepository(db *gorm.DB) *GormBatchItemRepository {
	return &GormBatchItemRepository{db: db}
}

// FindByIDForUpdate loads a batch within a pharmacy and locks its row
func (r *GormBatchItemRepository) FindByIDForUpdate(ctx context.Context, pharmacyID, id uuid.UUID) (*inventory.BatchItem, error) {
	var model models.BatchItemModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("pharmacy_id = ? AND id = ?", pharmacyID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err, "batch item")
	}
	return model.ToDomain(), nil
}

// FindByProduct lists a product's batches with stock, earliest expiry first
func (r *GormBatchItemRepository) FindByProduct(ctx context.Context, pharmacyID, productID uuid.UUID) ([]inventory.BatchItem, error) {
	var rows []models.BatchItemModel
	if err := r.db.WithContext(ctx).
		Where("pharmacy_id = ? AND product_id = ? AND current_quantity > 0", pharmacyID, productID).
		Order("expiry_date ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return batchesToDomain(rows), nil
}

// FindByPurchaseItems lists the batches created by the given purchase lines
func (r *GormBatchItemRepository) FindByPurchaseItems(ctx context.Context, purchaseItemIDs []uuid.UUID) ([]inventory.BatchItem, error) {
	if len(purchaseItemIDs) == 0 {
		return []inventory.BatchItem{}, nil
	}
	var rows []models.BatchItemModel
	if err := r.db.WithContext(ctx).
		Where("purchase_item_id IN ?", purchaseItemIDs).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return batchesToDomain(rows), nil
}

// CreateBatch inserts new batches
func (r *GormBatchItemRepository) CreateBatch(ctx context.Context, batches []inventory.BatchItem) error {
	if len(batches) == 0 {
		return nil
	}
	rows := make([]models.BatchItemModel, len(batches))
	for i := range batches {
		rows[i] = *models.BatchItemModelFromDomain(&batches[i])
	}
	return translateError(r.db.WithContext(ctx).Create(&rows).Error, "batch item")
}

// AdjustQuantity adds delta to current_quantity, keeping it within
// [0, initial_quantity]
func (r *GormBatchItemRepository) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) error {
	if delta == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.BatchItemModel{}).
		Where("id = ? AND current_quantity + ? >= 0 AND current_quantity + ? <= initial_quantity", id, delta, delta).
		Updates(map[string]any{
			"current_quantity": gorm.Expr("current_quantity + ?", delta),
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if delta < 0 {
			return shared.NewDomainError(shared.CodeInsufficientBatchQuantity, "insufficient quantity in batch "+id.String())
		}
		return shared.NewDomainError(shared.CodeInvalidState, "batch "+id.String()+" cannot exceed its initial quantity")
	}
	return nil
}

// IsReferencedBySales reports whether any sale item points at one of the batches
func (r *GormBatchItemRepository) IsReferencedBySales(ctx context.Context, batchIDs []uuid.UUID) (bool, error) {
	if len(batchIDs) == 0 {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SaleItemModel{}).
		Where("batch_item_id IN ?", batchIDs).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteByPurchaseItems removes the batches created by the given purchase lines
func (r *GormBatchItemRepository) DeleteByPurchaseItems(ctx context.Context, purchaseItemIDs []uuid.UUID) error {
	if len(purchaseItemIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("purchase_item_id IN ?", purchaseItemIDs).
		Delete(&models.BatchItemModel{}).Error
}

func batchesToDomain(rows []models.BatchItemModel) []inventory.BatchItem {
	out := make([]inventory.BatchItem, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ inventory.BatchItemRepository = (*GormBatchItemRepository)(nil)
