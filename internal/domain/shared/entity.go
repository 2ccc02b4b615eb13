package shared

import (
	"time"

	"github.com/google/uuid"
)

// Now is the ledger clock. Every stored timestamp is UTC.
var Now = func() time.Time { return time.Now().UTC() }

// BaseEntity carries identity and audit timestamps
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewBaseEntity() BaseEntity {
	now := Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// Touch records a modification
func (e *BaseEntity) Touch() {
	e.UpdatedAt = Now()
}

// PharmacyEntity is owned by exactly one pharmacy. Repositories filter every
// query on PharmacyID.
type PharmacyEntity struct {
	BaseEntity
	PharmacyID uuid.UUID
}

func NewPharmacyEntity(pharmacyID uuid.UUID) PharmacyEntity {
	return PharmacyEntity{BaseEntity: NewBaseEntity(), PharmacyID: pharmacyID}
}

// RequirePharmacy rejects a missing pharmacy scope
func RequirePharmacy(pharmacyID uuid.UUID) error {
	if pharmacyID == uuid.Nil {
		return NewValidationError("pharmacy id is required")
	}
	return nil
}
