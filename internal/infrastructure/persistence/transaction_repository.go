package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/finance"
	"github.com/pharmaops/backend/internal/domain/shared"
	"github.com/pharmaops/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTransactionRepository implements TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByIDForPharmacy finds a ledger entry within a pharmacy
func (r *GormTransactionRepository) FindByIDForPharmacy(ctx context.Context, pharmacyID, id uuid.UUID) (*finance.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("pharmacy_id = ? AND id = ?", pharmacyID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err, "transaction")
	}
	return model.ToDomain(), nil
}

// FindByOwner finds the entry mirroring a purchase or sale
func (r *GormTransactionRepository) FindByOwner(ctx context.Context, kind finance.OwnerKind, ownerID uuid.UUID) (*finance.Transaction, error) {
	column := "sale_id"
	if kind == finance.OwnerPurchase {
		column = "purchase_id"
	}
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where(column+" = ?", ownerID).
		First(&model).Error; err != nil {
		return nil, translateError(err, "transaction")
	}
	return model.ToDomain(), nil
}

// FindAllForPharmacy lists ledger entries with the total count
func (r *GormTransactionRepository) FindAllForPharmacy(ctx context.Context, pharmacyID uuid.UUID, filter finance.TransactionFilter) ([]finance.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.TransactionModel{}).Scopes(pharmacyScope(pharmacyID))
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.ManualOnly {
		query = query.Where("purchase_id IS NULL AND sale_id IS NULL")
	}
	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date <= ?", *filter.To)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(description) LIKE ?", likePattern(strings.ToLower(filter.Search)))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.TransactionModel
	if err := query.
		Order(transactionOrder.by(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	txs := make([]finance.Transaction, len(rows))
	for i := range rows {
		txs[i] = *rows[i].ToDomain()
	}
	return txs, total, nil
}

// Create inserts a ledger entry
func (r *GormTransactionRepository) Create(ctx context.Context, tx *finance.Transaction) error {
	return translateError(r.db.WithContext(ctx).Create(models.TransactionModelFromDomain(tx)).Error, "transaction")
}

// Update writes the mutable fields of a ledger entry. Links are immutable.
func (r *GormTransactionRepository) Update(ctx context.Context, tx *finance.Transaction) error {
	result := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("pharmacy_id = ? AND id = ?", tx.PharmacyID, tx.ID).
		Updates(map[string]any{
			"date":        tx.Date,
			"amount":      tx.Amount,
			"type":        tx.Type,
			"description": tx.Description,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("transaction")
	}
	return nil
}

// Delete removes a ledger entry
func (r *GormTransactionRepository) Delete(ctx context.Context, pharmacyID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TransactionModel{}, "pharmacy_id = ? AND id = ?", pharmacyID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("transaction")
	}
	return nil
}

var _ finance.TransactionRepository = (*GormTransactionRepository)(nil)
