package trade

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/finance"
	"github.com/pharmaops/backend/internal/domain/inventory"
	"github.com/pharmaops/backend/internal/domain/report"
	"github.com/pharmaops/backend/internal/domain/shared"
	"github.com/pharmaops/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// stockEngine holds what the purchase and sale services share: the unit of
// work, the post-commit cache hook and instrumentation.
type stockEngine struct {
	scope       TransactionScope
	logger      *zap.Logger
	invalidator report.Invalidator
	metrics     *telemetry.LedgerMetrics
	now         func() time.Time
}

func newStockEngine(scope TransactionScope, logger *zap.Logger) stockEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return stockEngine{scope: scope, logger: logger, now: time.Now}
}

// apply locks and adjusts every product, then every batch, touched by plan.
// Rows are visited in ascending id order so concurrent mutations lock in the
// same order. Each check runs against the locked row and the conditional
// update re-checks it in SQL.
func (e *stockEngine) apply(ctx context.Context, repos TransactionalRepositories, pharmacyID uuid.UUID, plan *inventory.StockPlan) error {
	products := repos.Products()
	for _, id := range plan.ProductIDs() {
		product, err := products.FindByIDForUpdate(ctx, pharmacyID, id)
		if err != nil {
			return err
		}
		delta := plan.ProductDelta(id)
		if err := product.ApplyStockDelta(delta); err != nil {
			e.logger.Warn("Stock check rejected",
				zap.String("pharmacy_id", pharmacyID.String()),
				zap.String("product_id", id.String()),
				zap.Int("current_stock", product.CurrentStock),
				zap.Int("delta", delta))
			return err
		}
		if err := products.AdjustStock(ctx, pharmacyID, id, delta); err != nil {
			return err
		}
	}

	batches := repos.Batches()
	for _, bd := range plan.BatchDeltas() {
		batch, err := batches.FindByIDForUpdate(ctx, pharmacyID, bd.ID)
		if err != nil {
			return err
		}
		if foreign, ok := bd.ForeignProduct(batch.ProductID); ok {
			return shared.NewValidationError("batch %s does not belong to product %s", batch.BatchNumber, foreign)
		}
		if err := batch.ApplyDelta(bd.Quantity); err != nil {
			e.logger.Warn("Batch check rejected",
				zap.String("pharmacy_id", pharmacyID.String()),
				zap.String("batch_id", bd.ID.String()),
				zap.Int("current_quantity", batch.CurrentQuantity),
				zap.Int("delta", bd.Quantity))
			return err
		}
		if err := batches.AdjustQuantity(ctx, bd.ID, bd.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// syncLedger reconciles the owner's ledger entry inside the unit of work
func (e *stockEngine) syncLedger(ctx context.Context, repos TransactionalRepositories, entry finance.LedgerEntry) (finance.SyncAction, error) {
	action, err := finance.SyncTransaction(ctx, repos.Transactions(), entry)
	if err != nil {
		return "", err
	}
	e.metrics.RecordLedgerSync(ctx, string(action))
	return action, nil
}

// committed runs after a successful unit of work. A failed invalidation
// leaves reports stale until their TTL expires; the mutation itself stands.
func (e *stockEngine) committed(ctx context.Context, pharmacyID uuid.UUID) {
	if e.invalidator == nil {
		return
	}
	if err := e.invalidator.InvalidatePharmacy(ctx, pharmacyID); err != nil {
		e.logger.Error("Failed to invalidate report cache",
			zap.String("pharmacy_id", pharmacyID.String()),
			zap.Error(err))
	}
}

// finish records the outcome of a mutation on its metrics and span, then
// ends the span
func (e *stockEngine) finish(ctx context.Context, span trace.Span, operation string, start time.Time, err error) {
	e.metrics.RecordMutation(ctx, operation, time.Since(start), err)
	if err != nil {
		telemetry.RecordError(span, err)
		var de *shared.DomainError
		if errors.As(err, &de) {
			telemetry.SetAttributes(span, telemetry.SpanAttrErrorCode, de.Code)
		}
	}
	span.End()
}
