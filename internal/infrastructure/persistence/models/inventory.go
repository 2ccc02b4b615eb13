package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/inventory"
)

// BatchItemModel is the persistence model for the BatchItem domain entity.
type BatchItemModel struct {
	PharmacyModel
	ProductID       uuid.UUID `gorm:"type:uuid;not null;index:idx_batch_items_product_expiry,priority:1"`
	PurchaseItemID  uuid.UUID `gorm:"type:uuid;not null;index"`
	BatchNumber     string    `gorm:"type:varchar(100);not null"`
	ExpiryDate      time.Time `gorm:"not null;index:idx_batch_items_product_expiry,priority:2"`
	InitialQuantity int       `gorm:"not null"`
	CurrentQuantity int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BatchItemModel) TableName() string {
	return "batch_items"
}

// ToDomain converts the persistence model to a domain BatchItem entity.
func (m *BatchItemModel) ToDomain() *inventory.BatchItem {
	return &inventory.BatchItem{
		PharmacyEntity:  m.ToPharmacyEntity(),
		ProductID:       m.ProductID,
		PurchaseItemID:  m.PurchaseItemID,
		BatchNumber:     m.BatchNumber,
		ExpiryDate:      m.ExpiryDate,
		InitialQuantity: m.InitialQuantity,
		CurrentQuantity: m.CurrentQuantity,
	}
}

// FromDomain populates the persistence model from a domain BatchItem entity.
func (m *BatchItemModel) FromDomain(b *inventory.BatchItem) {
	m.FromDomainPharmacyEntity(b.PharmacyEntity)
	m.ProductID = b.ProductID
	m.PurchaseItemID = b.PurchaseItemID
	m.BatchNumber = b.BatchNumber
	m.ExpiryDate = b.ExpiryDate
	m.InitialQuantity = b.InitialQuantity
	m.CurrentQuantity = b.CurrentQuantity
}

// BatchItemModelFromDomain creates a new persistence model from a domain BatchItem entity.
func BatchItemModelFromDomain(b *inventory.BatchItem) *BatchItemModel {
	m := &BatchItemModel{}
	m.FromDomain(b)
	return m
}
