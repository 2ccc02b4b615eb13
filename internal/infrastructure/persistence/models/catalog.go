package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product domain entity.
// SKU is unique per pharmacy at the database level; the stricter global
// scope is enforced by the catalog service.
type ProductModel struct {
	BaseModel
	PharmacyID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_products_pharmacy_sku,priority:1"`
	SKU          string          `gorm:"column:sku;type:varchar(64);not null;uniqueIndex:idx_products_pharmacy_sku,priority:2;index"`
	Name         string          `gorm:"type:varchar(200);not null"`
	Description  string          `gorm:"type:text"`
	Category     string          `gorm:"type:varchar(100);index"`
	CurrentStock int             `gorm:"not null;default:0"`
	ReorderLevel int             `gorm:"not null;default:0"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RetailPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ExpiryDate   *time.Time
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		SKU:          m.SKU,
		Name:         m.Name,
		Description:  m.Description,
		Category:     m.Category,
		CurrentStock: m.CurrentStock,
		ReorderLevel: m.ReorderLevel,
		CostPrice:    m.CostPrice,
		RetailPrice:  m.RetailPrice,
		ExpiryDate:   m.ExpiryDate,
	}
	p.BaseEntity = m.BaseModel.ToDomain()
	p.PharmacyID = m.PharmacyID
	return p
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.PharmacyID = p.PharmacyID
	m.SKU = p.SKU
	m.Name = p.Name
	m.Description = p.Description
	m.Category = p.Category
	m.CurrentStock = p.CurrentStock
	m.ReorderLevel = p.ReorderLevel
	m.CostPrice = p.CostPrice
	m.RetailPrice = p.RetailPrice
	m.ExpiryDate = p.ExpiryDate
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
