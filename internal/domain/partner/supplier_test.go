package partner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSupplier(t *testing.T) {
	pharmacyID := uuid.New()

	t.Run("defaults to active", func(t *testing.T) {
		s, err := NewSupplier(pharmacyID, SupplierDetails{Name: " MedSupply Co ", Email: "sales@medsupply.test"})
		require.NoError(t, err)
		assert.Equal(t, "MedSupply Co", s.Name)
		assert.Equal(t, SupplierStatusActive, s.Status)
		assert.Equal(t, pharmacyID, s.PharmacyID)
	})

	tests := []struct {
		name string
		d    SupplierDetails
	}{
		{"empty name", SupplierDetails{Name: ""}},
		{"bad email", SupplierDetails{Name: "A", Email: "not-an-email"}},
		{"bad status", SupplierDetails{Name: "A", Status: "BLOCKED"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSupplier(pharmacyID, tt.d)
			assert.True(t, shared.HasCode(err, shared.CodeValidation))
		})
	}
}

func TestSupplier_Update(t *testing.T) {
	s, err := NewSupplier(uuid.New(), SupplierDetails{Name: "A"})
	require.NoError(t, err)

	require.NoError(t, s.Update(SupplierDetails{Name: "B", Status: SupplierStatusInactive}))
	assert.Equal(t, "B", s.Name)
	assert.Equal(t, SupplierStatusInactive, s.Status)
}
