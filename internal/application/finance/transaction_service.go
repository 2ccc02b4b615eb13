package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/finance"
	"github.com/pharmaops/backend/internal/domain/report"
	"github.com/pharmaops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TransactionService manages the ledger. Entries mirroring a purchase or
// sale are written by the trade services; this service creates and edits
// free-standing entries only.
type TransactionService struct {
	txRepo      finance.TransactionRepository
	invalidator report.Invalidator
	logger      *zap.Logger
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(txRepo finance.TransactionRepository, logger *zap.Logger) *TransactionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransactionService{txRepo: txRepo, logger: logger}
}

// SetReportInvalidator sets the hook that drops cached reports after a write
func (s *TransactionService) SetReportInvalidator(invalidator report.Invalidator) {
	s.invalidator = invalidator
}

// TransactionResponse represents a ledger entry in API responses
type TransactionResponse struct {
	ID          uuid.UUID       `json:"id"`
	PharmacyID  uuid.UUID       `json:"pharmacy_id"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	PurchaseID  *uuid.UUID      `json:"purchase_id,omitempty"`
	SaleID      *uuid.UUID      `json:"sale_id,omitempty"`
	Linked      bool            `json:"linked"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreateTransactionRequest represents a request to record a manual entry.
// Links to purchases or sales are never accepted from clients.
type CreateTransactionRequest struct {
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Type        string          `json:"type" binding:"required,oneof=INCOME EXPENSE"`
	Description string          `json:"description" binding:"max=500"`
}

// UpdateTransactionRequest represents a request to edit a manual entry
type UpdateTransactionRequest struct {
	Date        *time.Time       `json:"date"`
	Amount      *decimal.Decimal `json:"amount"`
	Type        *string          `json:"type" binding:"omitempty,oneof=INCOME EXPENSE"`
	Description *string          `json:"description" binding:"omitempty,max=500"`
}

// TransactionListFilter defines filtering options for ledger list queries
type TransactionListFilter struct {
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search     string     `form:"search"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Type       string     `form:"type" binding:"omitempty,oneof=INCOME EXPENSE"`
	ManualOnly bool       `form:"manual_only"`
	From       *time.Time `form:"start_date" time_format:"2006-01-02" time_utc:"1"`
	To         *time.Time `form:"end_date" time_format:"2006-01-02" time_utc:"1"`
}

func (f TransactionListFilter) toDomain() finance.TransactionFilter {
	page := f.Page
	if page <= 0 {
		page = 1
	}
	return finance.TransactionFilter{
		Filter: shared.Filter{
			Page:     page,
			PageSize: f.PageSize,
			Search:   f.Search,
			OrderBy:  f.OrderBy,
			OrderDir: f.OrderDir,
			From:     f.From,
			To:       shared.EndOfDay(f.To),
		},
		Type:       finance.TransactionType(f.Type),
		ManualOnly: f.ManualOnly,
	}
}

// ToTransactionResponse converts a domain Transaction to TransactionResponse
func ToTransactionResponse(t *finance.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		PharmacyID:  t.PharmacyID,
		Date:        t.Date,
		Amount:      t.Amount,
		Type:        string(t.Type),
		Description: t.Description,
		PurchaseID:  t.PurchaseID,
		SaleID:      t.SaleID,
		Linked:      t.IsLinked(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// Create records a manual ledger entry
func (s *TransactionService) Create(ctx context.Context, pharmacyID uuid.UUID, req CreateTransactionRequest) (*TransactionResponse, error) {
	tx, err := finance.NewManualTransaction(pharmacyID, finance.TransactionDetails{
		Date:        req.Date,
		Amount:      req.Amount,
		Type:        finance.TransactionType(req.Type),
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}
	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, err
	}
	s.invalidate(ctx, pharmacyID)

	s.logger.Info("Transaction created",
		zap.String("pharmacy_id", pharmacyID.String()),
		zap.String("transaction_id", tx.ID.String()),
		zap.String("type", string(tx.Type)),
		zap.String("amount", tx.Amount.String()))

	response := ToTransactionResponse(tx)
	return &response, nil
}

// GetByID retrieves a ledger entry by ID
func (s *TransactionService) GetByID(ctx context.Context, pharmacyID, id uuid.UUID) (*TransactionResponse, error) {
	if err := shared.RequirePharmacy(pharmacyID); err != nil {
		return nil, err
	}
	tx, err := s.txRepo.FindByIDForPharmacy(ctx, pharmacyID, id)
	if err != nil {
		return nil, err
	}
	response := ToTransactionResponse(tx)
	return &response, nil
}

// List retrieves ledger entries with filtering and pagination
func (s *TransactionService) List(ctx context.Context, pharmacyID uuid.UUID, filter TransactionListFilter) ([]TransactionResponse, int64, error) {
	if err := shared.RequirePharmacy(pharmacyID); err != nil {
		return nil, 0, err
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, 0, shared.NewValidationError("start date must not be after end date")
	}
	txs, total, err := s.txRepo.FindAllForPharmacy(ctx, pharmacyID, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	out := make([]TransactionResponse, len(txs))
	for i := range txs {
		out[i] = ToTransactionResponse(&txs[i])
	}
	return out, total, nil
}

// Update edits a manual entry. Linked entries return CONFLICT.
func (s *TransactionService) Update(ctx context.Context, pharmacyID, id uuid.UUID, req UpdateTransactionRequest) (*TransactionResponse, error) {
	if err := shared.RequirePharmacy(pharmacyID); err != nil {
		return nil, err
	}
	tx, err := s.txRepo.FindByIDForPharmacy(ctx, pharmacyID, id)
	if err != nil {
		return nil, err
	}

	d := finance.TransactionDetails{
		Date:        tx.Date,
		Amount:      tx.Amount,
		Type:        tx.Type,
		Description: tx.Description,
	}
	if req.Date != nil {
		d.Date = *req.Date
	}
	if req.Amount != nil {
		d.Amount = *req.Amount
	}
	if req.Type != nil {
		d.Type = finance.TransactionType(*req.Type)
	}
	if req.Description != nil {
		d.Description = *req.Description
	}
	if err := tx.UpdateManual(d); err != nil {
		return nil, err
	}
	if err := s.txRepo.Update(ctx, tx); err != nil {
		return nil, err
	}
	s.invalidate(ctx, pharmacyID)

	response := ToTransactionResponse(tx)
	return &response, nil
}

// Delete removes a manual entry. Linked entries return CONFLICT.
func (s *TransactionService) Delete(ctx context.Context, pharmacyID, id uuid.UUID) error {
	if err := shared.RequirePharmacy(pharmacyID); err != nil {
		return err
	}
	tx, err := s.txRepo.FindByIDForPharmacy(ctx, pharmacyID, id)
	if err != nil {
		return err
	}
	if err := tx.EnsureDeletable(); err != nil {
		return err
	}
	if err := s.txRepo.Delete(ctx, pharmacyID, id); err != nil {
		return err
	}
	s.invalidate(ctx, pharmacyID)

	s.logger.Info("Transaction deleted",
		zap.String("pharmacy_id", pharmacyID.String()),
		zap.String("transaction_id", id.String()))
	return nil
}

func (s *TransactionService) invalidate(ctx context.Context, pharmacyID uuid.UUID) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidatePharmacy(ctx, pharmacyID); err != nil {
		s.logger.Error("Failed to invalidate report cache",
			zap.String("pharmacy_id", pharmacyID.String()),
			zap.Error(err))
	}
}
