package partner

import (
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/shared"
)

// SupplierStatus represents the status of a supplier
type SupplierStatus string

const (
	SupplierStatusActive   SupplierStatus = "ACTIVE"
	SupplierStatusInactive SupplierStatus = "INACTIVE"
)

// IsValid checks if the status is a known value
func (s SupplierStatus) IsValid() bool {
	return s == SupplierStatusActive || s == SupplierStatusInactive
}

// Supplier is a vendor a pharmacy buys stock from
type Supplier struct {
	shared.PharmacyEntity
	Name          string
	ContactPerson string
	Phone         string
	Email         string
	Address       string
	Status        SupplierStatus
}

// SupplierDetails holds the editable supplier fields
type SupplierDetails struct {
	Name          string
	ContactPerson string
	Phone         string
	Email         string
	Address       string
	Status        SupplierStatus
}

// NewSupplier creates an active supplier unless a status is given
func NewSupplier(pharmacyID uuid.UUID, d SupplierDetails) (*Supplier, error) {
	if err := shared.RequirePharmacy(pharmacyID); err != nil {
		return nil, err
	}
	s := &Supplier{PharmacyEntity: shared.NewPharmacyEntity(pharmacyID)}
	if err := s.apply(d); err != nil {
		return nil, err
	}
	return s, nil
}

// Update replaces the supplier's editable fields
func (s *Supplier) Update(d SupplierDetails) error {
	if err := s.apply(d); err != nil {
		return err
	}
	s.Touch()
	return nil
}

func (s *Supplier) apply(d SupplierDetails) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return shared.NewValidationError("supplier name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("supplier name cannot exceed 200 characters")
	}
	if d.Email != "" {
		if _, err := mail.ParseAddress(d.Email); err != nil {
			return shared.NewValidationError("invalid supplier email %q", d.Email)
		}
	}
	status := d.Status
	if status == "" {
		status = SupplierStatusActive
	}
	if !status.IsValid() {
		return shared.NewValidationError("invalid supplier status %q", status)
	}

	s.Name = name
	s.ContactPerson = d.ContactPerson
	s.Phone = d.Phone
	s.Email = d.Email
	s.Address = d.Address
	s.Status = status
	return nil
}
