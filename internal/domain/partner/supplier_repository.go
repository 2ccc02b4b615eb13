package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/shared"
)

// SupplierRepository defines the interface for supplier persistence
type SupplierRepository interface {
	FindByIDForPharmacy(ctx context.Context, pharmacyID, id uuid.UUID) (*Supplier, error)
	FindAllForPharmacy(ctx context.Context, pharmacyID uuid.UUID, filter shared.Filter) ([]Supplier, int64, error)
	Save(ctx context.Context, supplier *Supplier) error
	// HasPurchases reports whether any purchase references the supplier
	HasPurchases(ctx context.Context, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, pharmacyID, id uuid.UUID) error
}
