package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/catalog"
	"github.com/pharmaops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a new product.
// Stock is never accepted here; it starts at zero and moves only with
// purchases and sales.
type CreateProductRequest struct {
	SKU          string          `json:"sku" binding:"required,min=1,max=64"`
	Name         string          `json:"name" binding:"required,min=1,max=200"`
	Description  string          `json:"description" binding:"max=2000"`
	Category     string          `json:"category" binding:"max=100"`
	ReorderLevel int             `json:"reorder_level" binding:"gte=0"`
	CostPrice    decimal.Decimal `json:"cost_price" binding:"gte=0"`
	RetailPrice  decimal.Decimal `json:"retail_price" binding:"gte=0"`
	ExpiryDate   *time.Time      `json:"expiry_date"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	SKU          *string          `json:"sku" binding:"omitempty,min=1,max=64"`
	Name         *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description  *string          `json:"description" binding:"omitempty,max=2000"`
	Category     *string          `json:"category" binding:"omitempty,max=100"`
	ReorderLevel *int             `json:"reorder_level" binding:"omitempty,gte=0"`
	CostPrice    *decimal.Decimal `json:"cost_price" binding:"omitempty,gte=0"`
	RetailPrice  *decimal.Decimal `json:"retail_price" binding:"omitempty,gte=0"`
	ExpiryDate   *time.Time       `json:"expiry_date"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID           uuid.UUID       `json:"id"`
	PharmacyID   uuid.UUID       `json:"pharmacy_id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	CurrentStock int             `json:"current_stock"`
	ReorderLevel int             `json:"reorder_level"`
	StockStatus  string          `json:"stock_status"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	RetailPrice  decimal.Decimal `json:"retail_price"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductListFilter represents filter options for product lists
type ProductListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Category string `form:"category"`
	LowStock bool   `form:"low_stock"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		PharmacyID:   p.PharmacyID,
		SKU:          p.SKU,
		Name:         p.Name,
		Description:  p.Description,
		Category:     p.Category,
		CurrentStock: p.CurrentStock,
		ReorderLevel: p.ReorderLevel,
		StockStatus:  string(p.StockStatus()),
		CostPrice:    p.CostPrice,
		RetailPrice:  p.RetailPrice,
		ExpiryDate:   p.ExpiryDate,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (f ProductListFilter) toDomain() catalog.ProductFilter {
	page := f.Page
	if page <= 0 {
		page = 1
	}
	return catalog.ProductFilter{
		Filter: shared.Filter{
			Page:     page,
			PageSize: f.PageSize,
			Search:   f.Search,
			OrderBy:  f.OrderBy,
			OrderDir: f.OrderDir,
		},
		Category: catalog.NormalizeLabel(f.Category),
		LowStock: f.LowStock,
	}
}

func (r UpdateProductRequest) apply(p *catalog.Product) catalog.ProductDetails {
	d := catalog.ProductDetails{
		SKU:          p.SKU,
		Name:         p.Name,
		Description:  p.Description,
		Category:     p.Category,
		ReorderLevel: p.ReorderLevel,
		CostPrice:    p.CostPrice,
		RetailPrice:  p.RetailPrice,
		ExpiryDate:   p.ExpiryDate,
	}
	if r.SKU != nil {
		d.SKU = *r.SKU
	}
	if r.Name != nil {
		d.Name = *r.Name
	}
	if r.Description != nil {
		d.Description = *r.Description
	}
	if r.Category != nil {
		d.Category = *r.Category
	}
	if r.ReorderLevel != nil {
		d.ReorderLevel = *r.ReorderLevel
	}
	if r.CostPrice != nil {
		d.CostPrice = *r.CostPrice
	}
	if r.RetailPrice != nil {
		d.RetailPrice = *r.RetailPrice
	}
	if r.ExpiryDate != nil {
		d.ExpiryDate = r.ExpiryDate
	}
	return d
}
