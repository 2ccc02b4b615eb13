package trade

import (
	"context"

	"github.com/pharmaops/backend/internal/domain/catalog"
	"github.com/pharmaops/backend/internal/domain/finance"
	"github.com/pharmaops/backend/internal/domain/inventory"
	"github.com/pharmaops/backend/internal/domain/partner"
	"github.com/pharmaops/backend/internal/domain/trade"
)

// TransactionScope runs a stock mutation as one unit of work.
// Every repository handed to fn shares the same database transaction, which
// commits when fn returns nil and rolls back otherwise.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories a mutation touches.
// Reads that feed a decision inside the mutation must go through these, not
// through repositories bound to the pool.
type TransactionalRepositories interface {
	Products() catalog.ProductRepository
	Suppliers() partner.SupplierRepository
	Batches() inventory.BatchItemRepository
	Purchases() trade.PurchaseRepository
	Sales() trade.SaleRepository
	Transactions() finance.TransactionRepository
}
