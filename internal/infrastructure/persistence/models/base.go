package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// PharmacyModel is the base of every pharmacy-owned row
type PharmacyModel struct {
	BaseModel
	PharmacyID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// FromDomainPharmacyEntity populates PharmacyModel from a domain PharmacyEntity
func (m *PharmacyModel) FromDomainPharmacyEntity(e shared.PharmacyEntity) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.PharmacyID = e.PharmacyID
}

// ToPharmacyEntity converts PharmacyModel to domain PharmacyEntity
func (m *PharmacyModel) ToPharmacyEntity() shared.PharmacyEntity {
	return shared.PharmacyEntity{
		BaseEntity: m.BaseModel.ToDomain(),
		PharmacyID: m.PharmacyID,
	}
}

// All returns every model in dependency order, for AutoMigrate
func All() []any {
	return []any{
		&ProductModel{},
		&SupplierModel{},
		&PurchaseModel{},
		&PurchaseItemModel{},
		&BatchItemModel{},
		&SaleModel{},
		&SaleItemModel{},
		&TransactionModel{},
	}
}
