package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/shared"
)

// ListFilter narrows purchase and sale listings
type ListFilter struct {
	shared.Filter
	PaymentStatus PaymentStatus
	SupplierID    *uuid.UUID
}

// PurchaseRepository defines persistence for purchases and their items
type PurchaseRepository interface {
	// FindByIDForPharmacy loads a purchase with its items
	FindByIDForPharmacy(ctx context.Context, pharmacyID, id uuid.UUID) (*Purchase, error)
	// FindByIDForUpdate loads a purchase with its items and locks the header row
	FindByIDForUpdate(ctx context.Context, pharmacyID, id uuid.UUID) (*Purchase, error)
	FindAllForPharmacy(ctx context.Context, pharmacyID uuid.UUID, filter ListFilter) ([]Purchase, int64, error)
	// Create inserts the header and items
	Create(ctx context.Context, purchase *Purchase) error
	// UpdateHeader writes the header fields only
	UpdateHeader(ctx context.Context, purchase *Purchase) error
	// ReplaceItems deletes the stored items and inserts purchase.Items
	ReplaceItems(ctx context.Context, purchase *Purchase) error
	// Delete removes the items and header
	Delete(ctx context.Context, pharmacyID, id uuid.UUID) error
}

// SaleRepository defines persistence for sales and their items
type SaleRepository interface {
	FindByIDForPharmacy(ctx context.Context, pharmacyID, id uuid.UUID) (*Sale, error)
	FindByIDForUpdate(ctx context.Context, pharmacyID, id uuid.UUID) (*Sale, error)
	FindAllForPharmacy(ctx context.Context, pharmacyID uuid.UUID, filter ListFilter) ([]Sale, int64, error)
	Create(ctx context.Context, sale *Sale) error
	UpdateHeader(ctx context.Context, sale *Sale) error
	ReplaceItems(ctx context.Context, sale *Sale) error
	Delete(ctx context.Context, pharmacyID, id uuid.UUID) error
}
