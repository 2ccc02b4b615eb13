package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/shared"
)

// ProductFilter narrows product listings
type ProductFilter struct {
	shared.Filter
	Category string
	LowStock bool
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByIDForPharmacy finds a product owned by the pharmacy
	FindByIDForPharmacy(ctx context.Context, pharmacyID, id uuid.UUID) (*Product, error)

	// FindByIDForUpdate finds a product and locks its row until the
	// enclosing transaction ends
	FindByIDForUpdate(ctx context.Context, pharmacyID, id uuid.UUID) (*Product, error)

	// FindAllForPharmacy lists products with the total matching count
	FindAllForPharmacy(ctx context.Context, pharmacyID uuid.UUID, filter ProductFilter) ([]Product, int64, error)

	// ExistsBySKU checks for a SKU collision. A nil pharmacyID searches all
	// pharmacies; excludeID skips the product being updated.
	ExistsBySKU(ctx context.Context, pharmacyID *uuid.UUID, sku string, excludeID *uuid.UUID) (bool, error)

	// Save creates or updates catalog fields; it never writes current_stock
	// of an existing row
	Save(ctx context.Context, product *Product) error

	// AdjustStock atomically adds delta to current_stock, failing with
	// INSUFFICIENT_STOCK when the result would be negative
	AdjustStock(ctx context.Context, pharmacyID, id uuid.UUID, delta int) error

	// HasMovements reports whether any purchase or sale item references the product
	HasMovements(ctx context.Context, id uuid.UUID) (bool, error)

	// Delete removes a product
	Delete(ctx context.Context, pharmacyID, id uuid.UUID) error
}
