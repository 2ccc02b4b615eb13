package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// PurchaseModel is the persistence model for the Purchase aggregate.
type PurchaseModel struct {
	PharmacyModel
	SupplierID    uuid.UUID           `gorm:"type:uuid;not null;index"`
	InvoiceNumber string              `gorm:"type:varchar(100);not null"`
	PurchaseDate  time.Time           `gorm:"not null;index"`
	TotalAmount   decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentStatus trade.PaymentStatus `gorm:"type:varchar(20);not null"`
	PaymentMethod string              `gorm:"type:varchar(50)"`
	Notes         string              `gorm:"type:text"`
	Items         []PurchaseItemModel `gorm:"foreignKey:PurchaseID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseModel) TableName() string {
	return "purchases"
}

// ToDomain converts the persistence model to a domain Purchase.
func (m *PurchaseModel) ToDomain() *trade.Purchase {
	p := &trade.Purchase{
		PharmacyEntity: m.ToPharmacyEntity(),
		SupplierID:     m.SupplierID,
		InvoiceNumber:  m.InvoiceNumber,
		PurchaseDate:   m.PurchaseDate,
		TotalAmount:    m.TotalAmount,
		PaymentStatus:  m.PaymentStatus,
		PaymentMethod:  m.PaymentMethod,
		Notes:          m.Notes,
		Items:          make([]trade.PurchaseItem, len(m.Items)),
	}
	for i := range m.Items {
		p.Items[i] = *m.Items[i].ToDomain()
	}
	return p
}

// FromDomain populates the header fields. Items are persisted separately.
func (m *PurchaseModel) FromDomain(p *trade.Purchase) {
	m.FromDomainPharmacyEntity(p.PharmacyEntity)
	m.SupplierID = p.SupplierID
	m.InvoiceNumber = p.InvoiceNumber
	m.PurchaseDate = p.PurchaseDate
	m.TotalAmount = p.TotalAmount
	m.PaymentStatus = p.PaymentStatus
	m.PaymentMethod = p.PaymentMethod
	m.Notes = p.Notes
}

// PurchaseModelFromDomain creates a header model from a domain Purchase.
func PurchaseModelFromDomain(p *trade.Purchase) *PurchaseModel {
	m := &PurchaseModel{}
	m.FromDomain(p)
	return m
}

// PurchaseItemModel is the persistence model for a purchase line.
type PurchaseItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	PurchaseID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BatchNumber string          `gorm:"type:varchar(100)"`
	ExpiryDate  *time.Time
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseItemModel) TableName() string {
	return "purchase_items"
}

// ToDomain converts the persistence model to a domain PurchaseItem.
func (m *PurchaseItemModel) ToDomain() *trade.PurchaseItem {
	return &trade.PurchaseItem{
		ID:          m.ID,
		PurchaseID:  m.PurchaseID,
		ProductID:   m.ProductID,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		TotalPrice:  m.TotalPrice,
		BatchNumber: m.BatchNumber,
		ExpiryDate:  m.ExpiryDate,
	}
}

// PurchaseItemModelsFromDomain converts the items of a purchase. CreatedAt
// is staggered so reads return lines in their original order.
func PurchaseItemModelsFromDomain(items []trade.PurchaseItem) []PurchaseItemModel {
	now := time.Now()
	out := make([]PurchaseItemModel, len(items))
	for i, it := range items {
		out[i] = PurchaseItemModel{
			CreatedAt:   now.Add(time.Duration(i) * time.Microsecond),
			ID:          it.ID,
			PurchaseID:  it.PurchaseID,
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
			BatchNumber: it.BatchNumber,
			ExpiryDate:  it.ExpiryDate,
		}
	}
	return out
}

// SaleModel is the persistence model for the Sale aggregate.
type SaleModel struct {
	PharmacyModel
	InvoiceNumber   string              `gorm:"type:varchar(100);not null"`
	SaleDate        time.Time           `gorm:"not null;index"`
	CustomerName    string              `gorm:"type:varchar(200)"`
	CustomerContact string              `gorm:"type:varchar(100)"`
	TotalAmount     decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Discount        decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Tax             decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentStatus   trade.PaymentStatus `gorm:"type:varchar(20);not null"`
	PaymentMethod   string              `gorm:"type:varchar(50)"`
	Notes           string              `gorm:"type:text"`
	Items           []SaleItemModel     `gorm:"foreignKey:SaleID;references:ID"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the persistence model to a domain Sale.
func (m *SaleModel) ToDomain() *trade.Sale {
	s := &trade.Sale{
		PharmacyEntity:  m.ToPharmacyEntity(),
		InvoiceNumber:   m.InvoiceNumber,
		SaleDate:        m.SaleDate,
		CustomerName:    m.CustomerName,
		CustomerContact: m.CustomerContact,
		TotalAmount:     m.TotalAmount,
		Discount:        m.Discount,
		Tax:             m.Tax,
		PaymentStatus:   m.PaymentStatus,
		PaymentMethod:   m.PaymentMethod,
		Notes:           m.Notes,
		Items:           make([]trade.SaleItem, len(m.Items)),
	}
	for i := range m.Items {
		s.Items[i] = *m.Items[i].ToDomain()
	}
	return s
}

// FromDomain populates the header fields. Items are persisted separately.
func (m *SaleModel) FromDomain(s *trade.Sale) {
	m.FromDomainPharmacyEntity(s.PharmacyEntity)
	m.InvoiceNumber = s.InvoiceNumber
	m.SaleDate = s.SaleDate
	m.CustomerName = s.CustomerName
	m.CustomerContact = s.CustomerContact
	m.TotalAmount = s.TotalAmount
	m.Discount = s.Discount
	m.Tax = s.Tax
	m.PaymentStatus = s.PaymentStatus
	m.PaymentMethod = s.PaymentMethod
	m.Notes = s.Notes
}

// SaleModelFromDomain creates a header model from a domain Sale.
func SaleModelFromDomain(s *trade.Sale) *SaleModel {
	m := &SaleModel{}
	m.FromDomain(s)
	return m
}

// SaleItemModel is the persistence model for a sale line.
type SaleItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	BatchItemID *uuid.UUID      `gorm:"type:uuid;index"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Discount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SaleItemModel) TableName() string {
	return "sale_items"
}

// ToDomain converts the persistence model to a domain SaleItem.
func (m *SaleItemModel) ToDomain() *trade.SaleItem {
	return &trade.SaleItem{
		ID:          m.ID,
		SaleID:      m.SaleID,
		ProductID:   m.ProductID,
		BatchItemID: m.BatchItemID,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		TotalPrice:  m.TotalPrice,
		Discount:    m.Discount,
	}
}

// SaleItemModelsFromDomain converts the items of a sale.
func SaleItemModelsFromDomain(items []trade.SaleItem) []SaleItemModel {
	now := time.Now()
	out := make([]SaleItemModel, len(items))
	for i, it := range items {
		out[i] = SaleItemModel{
			CreatedAt:   now.Add(time.Duration(i) * time.Microsecond),
			ID:          it.ID,
			SaleID:      it.SaleID,
			ProductID:   it.ProductID,
			BatchItemID: it.BatchItemID,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
			Discount:    it.Discount,
		}
	}
	return out
}
