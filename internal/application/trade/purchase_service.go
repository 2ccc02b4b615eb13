package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/finance"
	"github.com/pharmaops/backend/internal/domain/inventory"
	"github.com/pharmaops/backend/internal/domain/report"
	"github.com/pharmaops/backend/internal/domain/shared"
	"github.com/pharmaops/backend/internal/domain/trade"
	"github.com/pharmaops/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PurchaseService records stock receipts. Each mutation is one unit of work
// covering the purchase rows, product stock, batches and the ledger entry.
type PurchaseService struct {
	stockEngine
	purchaseRepo trade.PurchaseRepository
}

// NewPurchaseService creates a new PurchaseService. purchaseRepo serves
// reads outside any unit of work.
func NewPurchaseService(scope TransactionScope, purchaseRepo trade.PurchaseRepository, logger *zap.Logger) *PurchaseService {
	return &PurchaseService{
		stockEngine:  newStockEngine(scope, logger),
		purchaseRepo: purchaseRepo,
	}
}

// SetReportInvalidator sets the hook that drops cached reports after a commit
func (e *stockEngine) SetReportInvalidator(invalidator report.Invalidator) {
	e.invalidator = invalidator
}

// SetLedgerMetrics sets the stock and ledger instruments
func (e *stockEngine) SetLedgerMetrics(metrics *telemetry.LedgerMetrics) {
	e.metrics = metrics
}

// Create records a purchase, adds its quantities to stock, opens a batch for
// every line carrying a batch number and expiry date, and mirrors the
// purchase in the ledger when it is settled.
func (s *PurchaseService) Create(ctx context.Context, pharmacyID uuid.UUID, req CreatePurchaseRequest) (_ *PurchaseResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase", "create",
		telemetry.SpanAttrPharmacyID, pharmacyID,
		telemetry.SpanAttrItemCount, len(req.Items))
	start := time.Now()
	defer func() { s.finish(ctx, span, "purchase.create", start, err) }()

	status, err := trade.ParsePaymentStatus(req.PaymentStatus, trade.PaymentStatusPending)
	if err != nil {
		return nil, shared.NewValidationError("%v", err)
	}
	purchase, err := trade.NewPurchase(pharmacyID, trade.PurchaseHeader{
		SupplierID:    req.SupplierID,
		InvoiceNumber: req.InvoiceNumber,
		PurchaseDate:  req.PurchaseDate,
		PaymentStatus: status,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	})
	if err != nil {
		return nil, err
	}
	if err := purchase.ReplaceItems(toPurchaseLines(req.Items), req.TotalAmount); err != nil {
		return nil, err
	}

	var action finance.SyncAction
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.Suppliers().FindByIDForPharmacy(ctx, pharmacyID, purchase.SupplierID); err != nil {
			return err
		}
		plan := inventory.NewStockPlan()
		for _, item := range purchase.Items {
			plan.Receive(item.ProductID, item.Quantity)
		}
		if err := s.apply(ctx, repos, pharmacyID, plan); err != nil {
			return err
		}
		if err := repos.Purchases().Create(ctx, purchase); err != nil {
			return err
		}
		if err := s.openBatches(ctx, repos, purchase); err != nil {
			return err
		}
		a, err := s.syncLedger(ctx, repos, purchaseLedgerEntry(purchase))
		action = a
		return err
	})
	if err != nil {
		return nil, err
	}
	s.committed(ctx, pharmacyID)
	telemetry.SetAttributes(span, telemetry.SpanAttrPurchaseID, purchase.ID, telemetry.SpanAttrLedgerSync, string(action))

	s.logger.Info("Purchase created",
		zap.String("pharmacy_id", pharmacyID.String()),
		zap.String("purchase_id", purchase.ID.String()),
		zap.String("invoice_number", purchase.InvoiceNumber),
		zap.Int("item_count", len(purchase.Items)),
		zap.String("ledger_sync", string(action)))

	response := ToPurchaseResponse(purchase)
	return &response, nil
}

// GetByID retrieves a purchase with its items
func (s *PurchaseService) GetByID(ctx context.Context, pharmacyID, purchaseID uuid.UUID) (*PurchaseResponse, error) {
	if err := shared.RequirePharmacy(pharmacyID); err != nil {
		return nil, err
	}
	purchase, err := s.purchaseRepo.FindByIDForPharmacy(ctx, pharmacyID, purchaseID)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseResponse(purchase)
	return &response, nil
}

// List retrieves purchases with filtering and pagination
func (s *PurchaseService) List(ctx context.Context, pharmacyID uuid.UUID, filter ListFilter) ([]PurchaseListItemResponse, int64, error) {
	if err := shared.RequirePharmacy(pharmacyID); err != nil {
		return nil, 0, err
	}
	purchases, total, err := s.purchaseRepo.FindAllForPharmacy(ctx, pharmacyID, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	items := make([]PurchaseListItemResponse, len(purchases))
	for i := range purchases {
		items[i] = ToPurchaseListItemResponse(&purchases[i])
	}
	return items, total, nil
}

// Update patches the header and, when items are supplied, replaces the
// lines. Stored lines are reversed and new lines applied as one net change
// per product.
func (s *PurchaseService) Update(ctx context.Context, pharmacyID, purchaseID uuid.UUID, req UpdatePurchaseRequest) (_ *PurchaseResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase", "update",
		telemetry.SpanAttrPharmacyID, pharmacyID,
		telemetry.SpanAttrPurchaseID, purchaseID)
	start := time.Now()
	defer func() { s.finish(ctx, span, "purchase.update", start, err) }()

	if err := shared.RequirePharmacy(pharmacyID); err != nil {
		return nil, err
	}

	var (
		purchase *trade.Purchase
		action   finance.SyncAction
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.Purchases().FindByIDForUpdate(ctx, pharmacyID, purchaseID)
		if err != nil {
			return err
		}
		header, err := patchPurchaseHeader(p, req)
		if err != nil {
			return err
		}
		if header.SupplierID != p.SupplierID {
			if _, err := repos.Suppliers().FindByIDForPharmacy(ctx, pharmacyID, header.SupplierID); err != nil {
				return err
			}
		}
		if err := p.SetHeader(header); err != nil {
			return err
		}

		switch {
		case req.Items != nil:
			if err := s.replaceItems(ctx, repos, p, *req.Items, req.TotalAmount); err != nil {
				return err
			}
		case req.TotalAmount != nil:
			if err := p.SetTotal(*req.TotalAmount); err != nil {
				return err
			}
		}

		if err := repos.Purchases().UpdateHeader(ctx, p); err != nil {
			return err
		}
		a, err := s.syncLedger(ctx, repos, purchaseLedgerEntry(p))
		if err != nil {
			return err
		}
		purchase, action = p, a
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.committed(ctx, pharmacyID)
	telemetry.SetAttributes(span, telemetry.SpanAttrLedgerSync, string(action))

	s.logger.Info("Purchase updated",
		zap.String("pharmacy_id", pharmacyID.String()),
		zap.String("purchase_id", purchase.ID.String()),
		zap.Bool("items_replaced", req.Items != nil),
		zap.Int("item_count", len(purchase.Items)),
		zap.String("ledger_sync", string(action)))

	response := ToPurchaseResponse(purchase)
	return &response, nil
}

// Delete removes a purchase after taking its quantities back out of stock.
// It fails with INSUFFICIENT_STOCK when that stock has since been sold and
// with CONFLICT when a sale references one of its batches.
func (s *PurchaseService) Delete(ctx context.Context, pharmacyID, purchaseID uuid.UUID) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase", "delete",
		telemetry.SpanAttrPharmacyID, pharmacyID,
		telemetry.SpanAttrPurchaseID, purchaseID)
	start := time.Now()
	defer func() { s.finish(ctx, span, "purchase.delete", start, err) }()

	if err := shared.RequirePharmacy(pharmacyID); err != nil {
		return err
	}

	var purchase *trade.Purchase
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.Purchases().FindByIDForUpdate(ctx, pharmacyID, purchaseID)
		if err != nil {
			return err
		}
		itemIDs := p.ItemIDs()
		if err := ensureBatchesUnsold(ctx, repos, p, itemIDs); err != nil {
			return err
		}

		plan := inventory.NewStockPlan()
		for _, item := range p.Items {
			plan.ReverseReceipt(item.ProductID, item.Quantity)
		}
		if err := s.apply(ctx, repos, pharmacyID, plan); err != nil {
			return err
		}

		entry := purchaseLedgerEntry(p)
		entry.Payable = false
		if _, err := s.syncLedger(ctx, repos, entry); err != nil {
			return err
		}
		if err := repos.Batches().DeleteByPurchaseItems(ctx, itemIDs); err != nil {
			return err
		}
		if err := repos.Purchases().Delete(ctx, pharmacyID, purchaseID); err != nil {
			return err
		}
		purchase = p
		return nil
	})
	if err != nil {
		return err
	}
	s.committed(ctx, pharmacyID)

	s.logger.Info("Purchase deleted",
		zap.String("pharmacy_id", pharmacyID.String()),
		zap.String("purchase_id", purchaseID.String()),
		zap.String("invoice_number", purchase.InvoiceNumber),
		zap.Int("item_count", len(purchase.Items)))
	return nil
}

// replaceItems swaps the stored lines of p for items inside the unit of work
func (s *PurchaseService) replaceItems(ctx context.Context, repos TransactionalRepositories, p *trade.Purchase, items []PurchaseItemInput, total *decimal.Decimal) error {
	stored := p.Items
	storedIDs := p.ItemIDs()
	if err := ensureBatchesUnsold(ctx, repos, p, storedIDs); err != nil {
		return err
	}
	if err := p.ReplaceItems(toPurchaseLines(items), total); err != nil {
		return err
	}

	plan := inventory.NewStockPlan()
	for _, item := range stored {
		plan.ReverseReceipt(item.ProductID, item.Quantity)
	}
	for _, item := range p.Items {
		plan.Receive(item.ProductID, item.Quantity)
	}
	if err := s.apply(ctx, repos, p.PharmacyID, plan); err != nil {
		return err
	}

	if err := repos.Batches().DeleteByPurchaseItems(ctx, storedIDs); err != nil {
		return err
	}
	if err := repos.Purchases().ReplaceItems(ctx, p); err != nil {
		return err
	}
	return s.openBatches(ctx, repos, p)
}

// openBatches creates a full batch for every line that tracks one
func (s *PurchaseService) openBatches(ctx context.Context, repos TransactionalRepositories, p *trade.Purchase) error {
	var batches []inventory.BatchItem
	for _, item := range p.Items {
		if !item.TracksBatch() {
			continue
		}
		batch, err := inventory.NewBatchItem(p.PharmacyID, item.ProductID, item.ID, item.BatchNumber, *item.ExpiryDate, item.Quantity)
		if err != nil {
			return err
		}
		batches = append(batches, *batch)
	}
	if len(batches) == 0 {
		return nil
	}
	return repos.Batches().CreateBatch(ctx, batches)
}

// ensureBatchesUnsold refuses to drop the batches of a purchase once a sale
// draws on them
func ensureBatchesUnsold(ctx context.Context, repos TransactionalRepositories, p *trade.Purchase, itemIDs []uuid.UUID) error {
	if len(itemIDs) == 0 {
		return nil
	}
	batches, err := repos.Batches().FindByPurchaseItems(ctx, itemIDs)
	if err != nil {
		return err
	}
	if len(batches) == 0 {
		return nil
	}
	batchIDs := make([]uuid.UUID, len(batches))
	for i := range batches {
		batchIDs[i] = batches[i].ID
	}
	referenced, err := repos.Batches().IsReferencedBySales(ctx, batchIDs)
	if err != nil {
		return err
	}
	if referenced {
		return shared.NewConflictError("purchase %s has batches referenced by sales", p.InvoiceNumber)
	}
	return nil
}

func patchPurchaseHeader(p *trade.Purchase, req UpdatePurchaseRequest) (trade.PurchaseHeader, error) {
	h := trade.PurchaseHeader{
		SupplierID:    p.SupplierID,
		InvoiceNumber: p.InvoiceNumber,
		PurchaseDate:  p.PurchaseDate,
		PaymentStatus: p.PaymentStatus,
		PaymentMethod: p.PaymentMethod,
		Notes:         p.Notes,
	}
	if req.SupplierID != nil {
		h.SupplierID = *req.SupplierID
	}
	if req.InvoiceNumber != nil {
		h.InvoiceNumber = *req.InvoiceNumber
	}
	if req.PurchaseDate != nil {
		h.PurchaseDate = *req.PurchaseDate
	}
	if req.PaymentStatus != nil {
		status, err := trade.ParsePaymentStatus(*req.PaymentStatus, p.PaymentStatus)
		if err != nil {
			return h, shared.NewValidationError("%v", err)
		}
		h.PaymentStatus = status
	}
	if req.PaymentMethod != nil {
		h.PaymentMethod = *req.PaymentMethod
	}
	if req.Notes != nil {
		h.Notes = *req.Notes
	}
	return h, nil
}

// purchaseLedgerEntry mirrors a purchase as an EXPENSE, payable only while
// the purchase is settled
func purchaseLedgerEntry(p *trade.Purchase) finance.LedgerEntry {
	return finance.LedgerEntry{
		Kind:        finance.OwnerPurchase,
		OwnerID:     p.ID,
		PharmacyID:  p.PharmacyID,
		Date:        p.PurchaseDate,
		Amount:      p.TotalAmount,
		Description: "Purchase " + p.InvoiceNumber,
		Payable:     p.IsSettled(),
	}
}
