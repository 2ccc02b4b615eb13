package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/shared"
)

// BatchItem is a dated lot of a product received on one purchase line.
// InitialQuantity is fixed at receipt; CurrentQuantity moves with sales and
// sale reversals and always stays within [0, InitialQuantity].
type BatchItem struct {
	shared.PharmacyEntity
	ProductID       uuid.UUID
	PurchaseItemID  uuid.UUID
	BatchNumber     string
	ExpiryDate      time.Time
	InitialQuantity int
	CurrentQuantity int
}

// NewBatchItem creates a full batch for a received purchase line
func NewBatchItem(pharmacyID, productID, purchaseItemID uuid.UUID, batchNumber string, expiry time.Time, quantity int) (*BatchItem, error) {
	if batchNumber == "" {
		return nil, shared.NewValidationError("batch number cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewValidationError("batch quantity must be positive")
	}
	return &BatchItem{
		PharmacyEntity:  shared.NewPharmacyEntity(pharmacyID),
		ProductID:       productID,
		PurchaseItemID:  purchaseItemID,
		BatchNumber:     batchNumber,
		ExpiryDate:      expiry,
		InitialQuantity: quantity,
		CurrentQuantity: quantity,
	}, nil
}

// ApplyDelta moves CurrentQuantity by delta within the batch bounds.
// Going below zero is an INSUFFICIENT_BATCH_QUANTITY error; going above the
// initial quantity is an INVALID_STATE error.
func (b *BatchItem) ApplyDelta(delta int) error {
	next := b.CurrentQuantity + delta
	if next < 0 {
		return shared.NewDomainError(shared.CodeInsufficientBatchQuantity,
			fmt.Sprintf("batch %s has %d units, %d requested", b.BatchNumber, b.CurrentQuantity, -delta))
	}
	if next > b.InitialQuantity {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("batch %s cannot exceed its initial quantity %d", b.BatchNumber, b.InitialQuantity))
	}
	b.CurrentQuantity = next
	return nil
}

// Deduct removes quantity from the batch
func (b *BatchItem) Deduct(quantity int) error {
	return b.ApplyDelta(-quantity)
}

// Restore returns quantity to the batch
func (b *BatchItem) Restore(quantity int) error {
	return b.ApplyDelta(quantity)
}

// DaysToExpiry returns the whole days until expiry, rounded up
func (b *BatchItem) DaysToExpiry(now time.Time) int {
	return DaysUntil(b.ExpiryDate, now)
}

// DaysUntil returns ceil((t - now) / 24h). Past instants give zero or
// negative values.
func DaysUntil(t, now time.Time) int {
	const day = 24 * time.Hour
	d := t.Sub(now)
	days := d / day
	if d%day > 0 {
		days++
	}
	return int(days)
}
