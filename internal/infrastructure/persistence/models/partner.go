package models

import (
	"github.com/pharmaops/backend/internal/domain/partner"
)

// SupplierModel is the persistence model for the Supplier domain entity.
type SupplierModel struct {
	PharmacyModel
	Name          string                 `gorm:"type:varchar(200);not null"`
	ContactPerson string                 `gorm:"type:varchar(100)"`
	Phone         string                 `gorm:"type:varchar(50)"`
	Email         string                 `gorm:"type:varchar(200)"`
	Address       string                 `gorm:"type:text"`
	Status        partner.SupplierStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier entity.
func (m *SupplierModel) ToDomain() *partner.Supplier {
	return &partner.Supplier{
		PharmacyEntity: m.ToPharmacyEntity(),
		Name:           m.Name,
		ContactPerson:  m.ContactPerson,
		Phone:          m.Phone,
		Email:          m.Email,
		Address:        m.Address,
		Status:         m.Status,
	}
}

// FromDomain populates the persistence model from a domain Supplier entity.
func (m *SupplierModel) FromDomain(s *partner.Supplier) {
	m.FromDomainPharmacyEntity(s.PharmacyEntity)
	m.Name = s.Name
	m.ContactPerson = s.ContactPerson
	m.Phone = s.Phone
	m.Email = s.Email
	m.Address = s.Address
	m.Status = s.Status
}

// SupplierModelFromDomain creates a new persistence model from a domain Supplier entity.
func SupplierModelFromDomain(s *partner.Supplier) *SupplierModel {
	m := &SupplierModel{}
	m.FromDomain(s)
	return m
}
