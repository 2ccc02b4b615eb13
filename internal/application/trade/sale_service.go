package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/finance"
	"github.com/pharmaops/backend/internal/domain/inventory"
	"github.com/pharmaops/backend/internal/domain/shared"
	"github.com/pharmaops/backend/internal/domain/trade"
	"github.com/pharmaops/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// SaleService records stock issues. A sale never drives a product or batch
// below zero, and every sale is mirrored in the ledger as INCOME whatever
// its payment status.
type SaleService struct {
	stockEngine
	saleRepo  trade.SaleRepository
	batchRepo inventory.BatchItemRepository
}

// NewSaleService creates a new SaleService. saleRepo and batchRepo serve
// reads outside any unit of work.
func NewSaleService(scope TransactionScope, saleRepo trade.SaleRepository, batchRepo inventory.BatchItemRepository, logger *zap.Logger) *SaleService {
	return &SaleService{
		stockEngine: newStockEngine(scope, logger),
		saleRepo:    saleRepo,
		batchRepo:   batchRepo,
	}
}

// Create records a sale, deducting every line from its product and, when a
// batch is referenced, from that batch.
func (s *SaleService) Create(ctx context.Context, pharmacyID uuid.UUID, req CreateSaleRequest) (_ *SaleResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "create",
		telemetry.SpanAttrPharmacyID, pharmacyID,
		telemetry.SpanAttrItemCount, len(req.Items))
	start := time.Now()
	defer func() { s.finish(ctx, span, "sale.create", start, err) }()

	status, err := trade.ParsePaymentStatus(req.PaymentStatus, trade.PaymentStatusPaid)
	if err != nil {
		return nil, shared.NewValidationError("%v", err)
	}
	sale, err := trade.NewSale(pharmacyID, trade.SaleHeader{
		InvoiceNumber:   req.InvoiceNumber,
		SaleDate:        req.SaleDate,
		CustomerName:    req.CustomerName,
		CustomerContact: req.CustomerContact,
		Discount:        req.Discount,
		Tax:             req.Tax,
		PaymentStatus:   status,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
	})
	if err != nil {
		return nil, err
	}
	if err := sale.ReplaceItems(toSaleLines(req.Items), req.TotalAmount); err != nil {
		return nil, err
	}

	var action finance.SyncAction
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		plan := inventory.NewStockPlan()
		for _, item := range sale.Items {
			plan.Fulfill(item.ProductID, item.BatchItemID, item.Quantity)
		}
		if err := s.apply(ctx, repos, pharmacyID, plan); err != nil {
			return err
		}
		if err := repos.Sales().Create(ctx, sale); err != nil {
			return err
		}
		a, err := s.syncLedger(ctx, repos, saleLedgerEntry(sale))
		action = a
		return err
	})
	if err != nil {
		return nil, err
	}
	s.committed(ctx, pharmacyID)
	telemetry.SetAttributes(span, telemetry.SpanAttrSaleID, sale.ID, telemetry.SpanAttrLedgerSync, string(action))

	s.logger.Info("Sale created",
		zap.String("pharmacy_id", pharmacyID.String()),
		zap.String("sale_id", sale.ID.String()),
		zap.String("invoice_number", sale.InvoiceNumber),
		zap.Int("item_count", len(sale.Items)),
		zap.String("ledger_sync", string(action)))

	response := ToSaleResponse(sale)
	return &response, nil
}

// GetByID retrieves a sale with its items
func (s *SaleService) GetByID(ctx context.Context, pharmacyID, saleID uuid.UUID) (*SaleResponse, error) {
	if err := shared.RequirePharmacy(pharmacyID); err != nil {
		return nil, err
	}
	sale, err := s.saleRepo.FindByIDForPharmacy(ctx, pharmacyID, saleID)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// List retrieves sales with filtering and pagination
func (s *SaleService) List(ctx context.Context, pharmacyID uuid.UUID, filter ListFilter) ([]SaleListItemResponse, int64, error) {
	if err := shared.RequirePharmacy(pharmacyID); err != nil {
		return nil, 0, err
	}
	sales, total, err := s.saleRepo.FindAllForPharmacy(ctx, pharmacyID, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	items := make([]SaleListItemResponse, len(sales))
	for i := range sales {
		items[i] = ToSaleListItemResponse(&sales[i])
	}
	return items, total, nil
}

// ListBatches lists the batches of a product that still hold stock,
// earliest expiry first, for choosing the batch a sale line draws on
func (s *SaleService) ListBatches(ctx context.Context, pharmacyID, productID uuid.UUID) ([]BatchResponse, error) {
	if err := shared.RequirePharmacy(pharmacyID); err != nil {
		return nil, err
	}
	batches, err := s.batchRepo.FindByProduct(ctx, pharmacyID, productID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]BatchResponse, len(batches))
	for i := range batches {
		out[i] = ToBatchResponse(&batches[i], now)
	}
	return out, nil
}

// Update patches the header and, when items are supplied, replaces the
// lines. Stock and batch checks apply to the net change per row, so
// resubmitting the stored lines changes nothing.
func (s *SaleService) Update(ctx context.Context, pharmacyID, saleID uuid.UUID, req UpdateSaleRequest) (_ *SaleResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "update",
		telemetry.SpanAttrPharmacyID, pharmacyID,
		telemetry.SpanAttrSaleID, saleID)
	start := time.Now()
	defer func() { s.finish(ctx, span, "sale.update", start, err) }()

	if err := shared.RequirePharmacy(pharmacyID); err != nil {
		return nil, err
	}

	var (
		sale   *trade.Sale
		action finance.SyncAction
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		current, err := repos.Sales().FindByIDForUpdate(ctx, pharmacyID, saleID)
		if err != nil {
			return err
		}
		header, err := patchSaleHeader(current, req)
		if err != nil {
			return err
		}
		amountsChanged := req.Discount != nil || req.Tax != nil
		if err := current.SetHeader(header); err != nil {
			return err
		}

		if req.Items != nil {
			stored := current.Items
			if err := current.ReplaceItems(toSaleLines(*req.Items), req.TotalAmount); err != nil {
				return err
			}
			plan := inventory.NewStockPlan()
			for _, item := range stored {
				plan.ReverseFulfillment(item.ProductID, item.BatchItemID, item.Quantity)
			}
			for _, item := range current.Items {
				plan.Fulfill(item.ProductID, item.BatchItemID, item.Quantity)
			}
			if err := s.apply(ctx, repos, pharmacyID, plan); err != nil {
				return err
			}
			if err := repos.Sales().ReplaceItems(ctx, current); err != nil {
				return err
			}
		} else if req.TotalAmount != nil {
			if err := current.SetTotal(*req.TotalAmount); err != nil {
				return err
			}
		} else if amountsChanged {
			if err := current.RecomputeTotal(); err != nil {
				return err
			}
		}

		if err := repos.Sales().UpdateHeader(ctx, current); err != nil {
			return err
		}
		a, err := s.syncLedger(ctx, repos, saleLedgerEntry(current))
		if err != nil {
			return err
		}
		sale, action = current, a
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.committed(ctx, pharmacyID)
	telemetry.SetAttributes(span, telemetry.SpanAttrLedgerSync, string(action))

	s.logger.Info("Sale updated",
		zap.String("pharmacy_id", pharmacyID.String()),
		zap.String("sale_id", sale.ID.String()),
		zap.Bool("items_replaced", req.Items != nil),
		zap.Int("item_count", len(sale.Items)),
		zap.String("ledger_sync", string(action)))

	response := ToSaleResponse(sale)
	return &response, nil
}

// Delete removes a sale and returns its quantities to the products and
// batches they were drawn from
func (s *SaleService) Delete(ctx context.Context, pharmacyID, saleID uuid.UUID) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "delete",
		telemetry.SpanAttrPharmacyID, pharmacyID,
		telemetry.SpanAttrSaleID, saleID)
	start := time.Now()
	defer func() { s.finish(ctx, span, "sale.delete", start, err) }()

	if err := shared.RequirePharmacy(pharmacyID); err != nil {
		return err
	}

	var sale *trade.Sale
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		current, err := repos.Sales().FindByIDForUpdate(ctx, pharmacyID, saleID)
		if err != nil {
			return err
		}
		plan := inventory.NewStockPlan()
		for _, item := range current.Items {
			plan.ReverseFulfillment(item.ProductID, item.BatchItemID, item.Quantity)
		}
		if err := s.apply(ctx, repos, pharmacyID, plan); err != nil {
			return err
		}

		entry := saleLedgerEntry(current)
		entry.Payable = false
		if _, err := s.syncLedger(ctx, repos, entry); err != nil {
			return err
		}
		if err := repos.Sales().Delete(ctx, pharmacyID, saleID); err != nil {
			return err
		}
		sale = current
		return nil
	})
	if err != nil {
		return err
	}
	s.committed(ctx, pharmacyID)

	s.logger.Info("Sale deleted",
		zap.String("pharmacy_id", pharmacyID.String()),
		zap.String("sale_id", saleID.String()),
		zap.String("invoice_number", sale.InvoiceNumber),
		zap.Int("item_count", len(sale.Items)))
	return nil
}

func patchSaleHeader(s *trade.Sale, req UpdateSaleRequest) (trade.SaleHeader, error) {
	h := trade.SaleHeader{
		InvoiceNumber:   s.InvoiceNumber,
		SaleDate:        s.SaleDate,
		CustomerName:    s.CustomerName,
		CustomerContact: s.CustomerContact,
		Discount:        s.Discount,
		Tax:             s.Tax,
		PaymentStatus:   s.PaymentStatus,
		PaymentMethod:   s.PaymentMethod,
		Notes:           s.Notes,
	}
	if req.InvoiceNumber != nil {
		h.InvoiceNumber = *req.InvoiceNumber
	}
	if req.SaleDate != nil {
		h.SaleDate = *req.SaleDate
	}
	if req.CustomerName != nil {
		h.CustomerName = *req.CustomerName
	}
	if req.CustomerContact != nil {
		h.CustomerContact = *req.CustomerContact
	}
	if req.Discount != nil {
		h.Discount = *req.Discount
	}
	if req.Tax != nil {
		h.Tax = *req.Tax
	}
	if req.PaymentStatus != nil {
		status, err := trade.ParsePaymentStatus(*req.PaymentStatus, s.PaymentStatus)
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

// saleLedgerEntry mirrors a sale as INCOME. Sales are payable in every
// payment status, unlike purchases.
func saleLedgerEntry(s *trade.Sale) finance.LedgerEntry {
	return finance.LedgerEntry{
		Kind:        finance.OwnerSale,
		OwnerID:     s.ID,
		PharmacyID:  s.PharmacyID,
		Date:        s.SaleDate,
		Amount:      s.TotalAmount,
		Description: "Sale " + s.InvoiceNumber,
		Payable:     true,
	}
}
