package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// TransactionModel is the persistence model for a ledger entry. The unique
// indexes keep at most one entry per purchase and per sale.
type TransactionModel struct {
	PharmacyModel
	Date        time.Time               `gorm:"not null;index"`
	Amount      decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Type        finance.TransactionType `gorm:"type:varchar(20);not null;index"`
	Description string                  `gorm:"type:text"`
	PurchaseID  *uuid.UUID              `gorm:"type:uuid;uniqueIndex"`
	SaleID      *uuid.UUID              `gorm:"type:uuid;uniqueIndex"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction.
func (m *TransactionModel) ToDomain() *finance.Transaction {
	return &finance.Transaction{
		PharmacyEntity: m.ToPharmacyEntity(),
		Date:           m.Date,
		Amount:         m.Amount,
		Type:           m.Type,
		Description:    m.Description,
		PurchaseID:     m.PurchaseID,
		SaleID:         m.SaleID,
	}
}

// FromDomain populates the persistence model from a domain Transaction.
func (m *TransactionModel) FromDomain(t *finance.Transaction) {
	m.FromDomainPharmacyEntity(t.PharmacyEntity)
	m.Date = t.Date
	m.Amount = t.Amount
	m.Type = t.Type
	m.Description = t.Description
	m.PurchaseID = t.PurchaseID
	m.SaleID = t.SaleID
}

// TransactionModelFromDomain creates a new persistence model from a domain Transaction.
func TransactionModelFromDomain(t *finance.Transaction) *TransactionModel {
	m := &TransactionModel{}
	m.FromDomain(t)
	return m
}
