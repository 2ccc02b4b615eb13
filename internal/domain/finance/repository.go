package finance

import (
	"context"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/shared"
)

// TransactionFilter narrows ledger listings
type TransactionFilter struct {
	shared.Filter
	Type       TransactionType
	ManualOnly bool
}

// TransactionRepository defines persistence for ledger entries
type TransactionRepository interface {
	FindByIDForPharmacy(ctx context.Context, pharmacyID, id uuid.UUID) (*Transaction, error)
	// FindByOwner returns the entry mirroring a purchase or sale, or NOT_FOUND
	FindByOwner(ctx context.Context, kind OwnerKind, ownerID uuid.UUID) (*Transaction, error)
	FindAllForPharmacy(ctx context.Context, pharmacyID uuid.UUID, filter TransactionFilter) ([]Transaction, int64, error)
	Create(ctx context.Context, tx *Transaction) error
	Update(ctx context.Context, tx *Transaction) error
	Delete(ctx context.Context, pharmacyID, id uuid.UUID) error
}
