package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// StockStatus classifies a product's on-hand quantity
type StockStatus string

const (
	StockStatusOutOfStock StockStatus = "OUT_OF_STOCK"
	StockStatusLow        StockStatus = "LOW"
	StockStatusNormal     StockStatus = "NORMAL"
)

// ClassifyStock returns OUT_OF_STOCK at zero, LOW at or below the reorder
// level and NORMAL otherwise.
func ClassifyStock(stock, reorderLevel int) StockStatus {
	switch {
	case stock <= 0:
		return StockStatusOutOfStock
	case stock <= reorderLevel:
		return StockStatusLow
	default:
		return StockStatusNormal
	}
}

// Product is a catalog entry of a pharmacy.
// CurrentStock is a materialized counter owned by the stock mutation engine;
// catalog edits never change it.
type Product struct {
	shared.PharmacyEntity
	SKU          string
	Name         string
	Description  string
	Category     string
	CurrentStock int
	ReorderLevel int
	CostPrice    decimal.Decimal
	RetailPrice  decimal.Decimal
	ExpiryDate   *time.Time // product-level fallback when no batch is tracked
}

// ProductDetails holds the caller-editable catalog fields
type ProductDetails struct {
	SKU          string
	Name         string
	Description  string
	Category     string
	ReorderLevel int
	CostPrice    decimal.Decimal
	RetailPrice  decimal.Decimal
	ExpiryDate   *time.Time
}

// NewProduct creates a product with zero stock
func NewProduct(pharmacyID uuid.UUID, d ProductDetails) (*Product, error) {
	if err := shared.RequirePharmacy(pharmacyID); err != nil {
		return nil, err
	}
	p := &Product{PharmacyEntity: shared.NewPharmacyEntity(pharmacyID)}
	if err := p.apply(d); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces the catalog fields, leaving CurrentStock untouched
func (p *Product) Update(d ProductDetails) error {
	if err := p.apply(d); err != nil {
		return err
	}
	p.Touch()
	return nil
}

func (p *Product) apply(d ProductDetails) error {
	sku := strings.ToUpper(strings.TrimSpace(d.SKU))
	name := NormalizeLabel(d.Name)
	switch {
	case sku == "":
		return shared.NewValidationError("product sku cannot be empty")
	case len(sku) > 64:
		return shared.NewValidationError("product sku cannot exceed 64 characters")
	case name == "":
		return shared.NewValidationError("product name cannot be empty")
	case d.ReorderLevel < 0:
		return shared.NewValidationError("reorder level cannot be negative")
	case d.CostPrice.IsNegative() || d.RetailPrice.IsNegative():
		return shared.NewValidationError("product prices cannot be negative")
	}

	p.SKU = sku
	p.Name = name
	p.Description = d.Description
	p.Category = NormalizeLabel(d.Category)
	p.ReorderLevel = d.ReorderLevel
	p.CostPrice = d.CostPrice
	p.RetailPrice = d.RetailPrice
	p.ExpiryDate = d.ExpiryDate
	return nil
}

// NormalizeLabel trims s and puts it in Unicode NFC form so that composed
// and decomposed spellings of a name or category compare equal
func NormalizeLabel(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// ApplyStockDelta adds delta to CurrentStock, refusing to go below zero
func (p *Product) ApplyStockDelta(delta int) error {
	if p.CurrentStock+delta < 0 {
		return shared.NewDomainError(shared.CodeInsufficientStock,
			"insufficient stock for product "+p.SKU)
	}
	p.CurrentStock += delta
	return nil
}

// StockStatus classifies the product's current stock
func (p *Product) StockStatus() StockStatus {
	return ClassifyStock(p.CurrentStock, p.ReorderLevel)
}

// IsLowStock reports whether stock is at or below the reorder level
func (p *Product) IsLowStock() bool {
	return p.CurrentStock <= p.ReorderLevel
}

// CostValue is cost price times stock on hand
func (p *Product) CostValue() decimal.Decimal {
	return p.CostPrice.Mul(decimal.NewFromInt(int64(p.CurrentStock)))
}

// RetailValue is retail price times stock on hand
func (p *Product) RetailValue() decimal.Decimal {
	return p.RetailPrice.Mul(decimal.NewFromInt(int64(p.CurrentStock)))
}
