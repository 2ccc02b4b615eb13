package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/catalog"
	"github.com/pharmaops/backend/internal/domain/report"
	"github.com/pharmaops/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductService handles product catalog operations
type ProductService struct {
	productRepo    catalog.ProductRepository
	invalidator    report.Invalidator
	logger         *zap.Logger
	pharmacyScoped bool
}

// NewProductService creates a new ProductService. SKUs are unique across
// all pharmacies unless SetPharmacyScopedSKUs(true) is called.
func NewProductService(productRepo catalog.ProductRepository, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{productRepo: productRepo, logger: logger}
}

// SetPharmacyScopedSKUs limits SKU uniqueness to a single pharmacy
func (s *ProductService) SetPharmacyScopedSKUs(scoped bool) {
	s.pharmacyScoped = scoped
}

// SetReportInvalidator sets the hook that drops cached reports after a write
func (s *ProductService) SetReportInvalidator(invalidator report.Invalidator) {
	s.invalidator = invalidator
}

// Create creates a new product with zero stock
func (s *ProductService) Create(ctx context.Context, pharmacyID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(pharmacyID, catalog.ProductDetails{
		SKU:          req.SKU,
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		ReorderLevel: req.ReorderLevel,
		CostPrice:    req.CostPrice,
		RetailPrice:  req.RetailPrice,
		ExpiryDate:   req.ExpiryDate,
	})
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueSKU(ctx, product, nil); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.invalidate(ctx, pharmacyID)

	s.logger.Info("Product created",
		zap.String("pharmacy_id", pharmacyID.String()),
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU))

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, pharmacyID, productID uuid.UUID) (*ProductResponse, error) {
	if err := shared.RequirePharmacy(pharmacyID); err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByIDForPharmacy(ctx, pharmacyID, productID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products with filtering and pagination
func (s *ProductService) List(ctx context.Context, pharmacyID uuid.UUID, filter ProductListFilter) ([]ProductResponse, int64, error) {
	if err := shared.RequirePharmacy(pharmacyID); err != nil {
		return nil, 0, err
	}
	products, total, err := s.productRepo.FindAllForPharmacy(ctx, pharmacyID, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out, total, nil
}

// Update changes catalog fields. Stock is left as it is.
func (s *ProductService) Update(ctx context.Context, pharmacyID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	if err := shared.RequirePharmacy(pharmacyID); err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByIDForPharmacy(ctx, pharmacyID, productID)
	if err != nil {
		return nil, err
	}
	if err := product.Update(req.apply(product)); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueSKU(ctx, product, &product.ID); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.invalidate(ctx, pharmacyID)

	response := ToProductResponse(product)
	return &response, nil
}

// Delete removes a product that no purchase or sale references
func (s *ProductService) Delete(ctx context.Context, pharmacyID, productID uuid.UUID) error {
	if err := shared.RequirePharmacy(pharmacyID); err != nil {
		return err
	}
	product, err := s.productRepo.FindByIDForPharmacy(ctx, pharmacyID, productID)
	if err != nil {
		return err
	}
	used, err := s.productRepo.HasMovements(ctx, productID)
	if err != nil {
		return err
	}
	if used {
		return shared.NewConflictError("product %s is referenced by purchases or sales", product.SKU)
	}
	if err := s.productRepo.Delete(ctx, pharmacyID, productID); err != nil {
		return err
	}
	s.invalidate(ctx, pharmacyID)

	s.logger.Info("Product deleted",
		zap.String("pharmacy_id", pharmacyID.String()),
		zap.String("product_id", productID.String()),
		zap.String("sku", product.SKU))
	return nil
}

func (s *ProductService) ensureUniqueSKU(ctx context.Context, product *catalog.Product, excludeID *uuid.UUID) error {
	var scope *uuid.UUID
	if s.pharmacyScoped {
		scope = &product.PharmacyID
	}
	exists, err := s.productRepo.ExistsBySKU(ctx, scope, product.SKU, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError(shared.CodeDuplicateKey, "product with SKU "+product.SKU+" already exists")
	}
	return nil
}

func (s *ProductService) invalidate(ctx context.Context, pharmacyID uuid.UUID) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidatePharmacy(ctx, pharmacyID); err != nil {
		s.logger.Error("Failed to invalidate report cache",
			zap.String("pharmacy_id", pharmacyID.String()),
			zap.Error(err))
	}
}
