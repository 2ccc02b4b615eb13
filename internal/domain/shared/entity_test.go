package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPharmacyEntity_Timestamps(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	restore := Now
	Now = func() time.Time { return fixed }
	t.Cleanup(func() { Now = restore })

	pharmacyID := uuid.New()
	e := NewPharmacyEntity(pharmacyID)
	assert.Equal(t, pharmacyID, e.PharmacyID)
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, fixed, e.CreatedAt)

	Now = func() time.Time { return fixed.Add(time.Hour) }
	e.Touch()
	assert.Equal(t, fixed, e.CreatedAt)
	assert.Equal(t, fixed.Add(time.Hour), e.UpdatedAt)
}

func TestRequirePharmacy(t *testing.T) {
	assert.True(t, HasCode(RequirePharmacy(uuid.Nil), CodeValidation))
	assert.NoError(t, RequirePharmacy(uuid.New()))
}
