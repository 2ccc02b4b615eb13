package inventory

import (
	"context"

	"github.com/google/uuid"
)

// BatchItemRepository defines persistence for batch items
type BatchItemRepository interface {
	// FindByIDForUpdate loads a batch owned by the pharmacy and locks its row
	FindByIDForUpdate(ctx context.Context, pharmacyID, id uuid.UUID) (*BatchItem, error)

	// FindByProduct lists a product's batches with stock, earliest expiry first
	FindByProduct(ctx context.Context, pharmacyID, productID uuid.UUID) ([]BatchItem, error)

	// FindByPurchaseItems lists the batches created by the given purchase lines
	FindByPurchaseItems(ctx context.Context, purchaseItemIDs []uuid.UUID) ([]BatchItem, error)

	// CreateBatch inserts new batches
	CreateBatch(ctx context.Context, batches []BatchItem) error

	// AdjustQuantity atomically adds delta to current_quantity, failing when
	// the result leaves [0, initial_quantity]
	AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) error

	// IsReferencedBySales reports whether any sale item points at one of the batches
	IsReferencedBySales(ctx context.Context, batchIDs []uuid.UUID) (bool, error)

	// DeleteByPurchaseItems removes the batches created by the given purchase lines
	DeleteByPurchaseItems(ctx context.Context, purchaseItemIDs []uuid.UUID) error
}

// StockReconciler recomputes a product's stock from its purchase and sale
// history. The materialized Product.CurrentStock is expected to match.
type StockReconciler interface {
	RecomputeStock(ctx context.Context, pharmacyID, productID uuid.UUID) (int, error)
}
