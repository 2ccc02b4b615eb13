package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/partner"
	"github.com/pharmaops/backend/internal/domain/report"
	"github.com/pharmaops/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SupplierService handles supplier business operations
type SupplierService struct {
	supplierRepo partner.SupplierRepository
	invalidator  report.Invalidator
	logger       *zap.Logger
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(supplierRepo partner.SupplierRepository, logger *zap.Logger) *SupplierService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupplierService{supplierRepo: supplierRepo, logger: logger}
}

// SetReportInvalidator sets the hook that drops cached reports after a write
func (s *SupplierService) SetReportInvalidator(invalidator report.Invalidator) {
	s.invalidator = invalidator
}

// Create creates a new supplier
func (s *SupplierService) Create(ctx context.Context, pharmacyID uuid.UUID, req CreateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := partner.NewSupplier(pharmacyID, partner.SupplierDetails{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		Status:        partner.SupplierStatus(req.Status),
	})
	if err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	s.invalidate(ctx, pharmacyID)

	s.logger.Info("Supplier created",
		zap.String("pharmacy_id", pharmacyID.String()),
		zap.String("supplier_id", supplier.ID.String()))

	response := ToSupplierResponse(supplier)
	return &response, nil
}

// GetByID retrieves a supplier by ID
func (s *SupplierService) GetByID(ctx context.Context, pharmacyID, supplierID uuid.UUID) (*SupplierResponse, error) {
	if err := shared.RequirePharmacy(pharmacyID); err != nil {
		return nil, err
	}
	supplier, err := s.supplierRepo.FindByIDForPharmacy(ctx, pharmacyID, supplierID)
	if err != nil {
		return nil, err
	}
	response := ToSupplierResponse(supplier)
	return &response, nil
}

// List retrieves suppliers with filtering and pagination
func (s *SupplierService) List(ctx context.Context, pharmacyID uuid.UUID, filter SupplierListFilter) ([]SupplierResponse, int64, error) {
	if err := shared.RequirePharmacy(pharmacyID); err != nil {
		return nil, 0, err
	}
	suppliers, total, err := s.supplierRepo.FindAllForPharmacy(ctx, pharmacyID, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	out := make([]SupplierResponse, len(suppliers))
	for i := range suppliers {
		out[i] = ToSupplierResponse(&suppliers[i])
	}
	return out, total, nil
}

// Update updates a supplier
func (s *SupplierService) Update(ctx context.Context, pharmacyID, supplierID uuid.UUID, req UpdateSupplierRequest) (*SupplierResponse, error) {
	if err := shared.RequirePharmacy(pharmacyID); err != nil {
		return nil, err
	}
	supplier, err := s.supplierRepo.FindByIDForPharmacy(ctx, pharmacyID, supplierID)
	if err != nil {
		return nil, err
	}
	if err := supplier.Update(req.apply(supplier)); err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	s.invalidate(ctx, pharmacyID)
	response := ToSupplierResponse(supplier)
	return &response, nil
}

// Delete deletes a supplier no purchase references
func (s *SupplierService) Delete(ctx context.Context, pharmacyID, supplierID uuid.UUID) error {
	if err := shared.RequirePharmacy(pharmacyID); err != nil {
		return err
	}
	supplier, err := s.supplierRepo.FindByIDForPharmacy(ctx, pharmacyID, supplierID)
	if err != nil {
		return err
	}
	used, err := s.supplierRepo.HasPurchases(ctx, supplierID)
	if err != nil {
		return err
	}
	if used {
		return shared.NewConflictError("supplier %s is referenced by purchases", supplier.Name)
	}
	if err := s.supplierRepo.Delete(ctx, pharmacyID, supplierID); err != nil {
		return err
	}
	s.invalidate(ctx, pharmacyID)

	s.logger.Info("Supplier deleted",
		zap.String("pharmacy_id", pharmacyID.String()),
		zap.String("supplier_id", supplierID.String()))
	return nil
}

func (s *SupplierService) invalidate(ctx context.Context, pharmacyID uuid.UUID) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidatePharmacy(ctx, pharmacyID); err != nil {
		s.logger.Error("Failed to invalidate report cache",
			zap.String("pharmacy_id", pharmacyID.String()),
			zap.Error(err))
	}
}
