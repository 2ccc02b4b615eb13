package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/inventory"
	"github.com/pharmaops/backend/internal/domain/shared"
	"github.com/pharmaops/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// ==================== Purchase DTOs ====================

// CreatePurchaseRequest represents a request to record a stock receipt
type CreatePurchaseRequest struct {
	SupplierID    uuid.UUID           `json:"supplier_id" binding:"required"`
	InvoiceNumber string              `json:"invoice_number" binding:"required,min=1,max=100"`
	PurchaseDate  time.Time           `json:"purchase_date"`
	TotalAmount   *decimal.Decimal    `json:"total_amount"`
	PaymentStatus string              `json:"payment_status" binding:"omitempty,oneof=PAID PARTIAL PENDING UNPAID CANCELLED"`
	PaymentMethod string              `json:"payment_method" binding:"max=50"`
	Notes         string              `json:"notes"`
	Items         []PurchaseItemInput `json:"items" binding:"dive"`
}

// PurchaseItemInput represents one received line. A batch is tracked only
// when both batch_number and expiry_date are present.
type PurchaseItemInput struct {
	ProductID   uuid.UUID        `json:"product_id" binding:"required"`
	Quantity    int              `json:"quantity" binding:"gte=0"`
	UnitPrice   decimal.Decimal  `json:"unit_price" binding:"gte=0"`
	TotalPrice  *decimal.Decimal `json:"total_price"`
	BatchNumber string           `json:"batch_number" binding:"max=100"`
	ExpiryDate  *time.Time       `json:"expiry_date"`
}

// UpdatePurchaseRequest patches a purchase. A non-nil Items replaces every
// stored line.
type UpdatePurchaseRequest struct {
	SupplierID    *uuid.UUID           `json:"supplier_id"`
	InvoiceNumber *string              `json:"invoice_number" binding:"omitempty,min=1,max=100"`
	PurchaseDate  *time.Time           `json:"purchase_date"`
	TotalAmount   *decimal.Decimal     `json:"total_amount"`
	PaymentStatus *string              `json:"payment_status" binding:"omitempty,oneof=PAID PARTIAL PENDING UNPAID CANCELLED"`
	PaymentMethod *string              `json:"payment_method" binding:"omitempty,max=50"`
	Notes         *string              `json:"notes"`
	Items         *[]PurchaseItemInput `json:"items" binding:"omitempty,dive"`
}

// PurchaseItemResponse represents a purchase line in API responses
type PurchaseItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	BatchNumber string          `json:"batch_number,omitempty"`
	ExpiryDate  *time.Time      `json:"expiry_date,omitempty"`
}

// PurchaseResponse represents a purchase with its lines
type PurchaseResponse struct {
	ID            uuid.UUID              `json:"id"`
	PharmacyID    uuid.UUID              `json:"pharmacy_id"`
	SupplierID    uuid.UUID              `json:"supplier_id"`
	InvoiceNumber string                 `json:"invoice_number"`
	PurchaseDate  time.Time              `json:"purchase_date"`
	TotalAmount   decimal.Decimal        `json:"total_amount"`
	PaymentStatus string                 `json:"payment_status"`
	PaymentMethod string                 `json:"payment_method,omitempty"`
	Notes         string                 `json:"notes,omitempty"`
	Items         []PurchaseItemResponse `json:"items"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// PurchaseListItemResponse represents a purchase header in list responses
type PurchaseListItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	SupplierID    uuid.UUID       `json:"supplier_id"`
	InvoiceNumber string          `json:"invoice_number"`
	PurchaseDate  time.Time       `json:"purchase_date"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentStatus string          `json:"payment_status"`
	ItemCount     int             `json:"item_count"`
}

// ToPurchaseResponse converts a domain Purchase to its response
func ToPurchaseResponse(p *trade.Purchase) PurchaseResponse {
	items := make([]PurchaseItemResponse, len(p.Items))
	for i, it := range p.Items {
		items[i] = PurchaseItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
			BatchNumber: it.BatchNumber,
			ExpiryDate:  it.ExpiryDate,
		}
	}
	return PurchaseResponse{
		ID:            p.ID,
		PharmacyID:    p.PharmacyID,
		SupplierID:    p.SupplierID,
		InvoiceNumber: p.InvoiceNumber,
		PurchaseDate:  p.PurchaseDate,
		TotalAmount:   p.TotalAmount,
		PaymentStatus: string(p.PaymentStatus),
		PaymentMethod: p.PaymentMethod,
		Notes:         p.Notes,
		Items:         items,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ToPurchaseListItemResponse converts a purchase to its list entry
func ToPurchaseListItemResponse(p *trade.Purchase) PurchaseListItemResponse {
	return PurchaseListItemResponse{
		ID:            p.ID,
		SupplierID:    p.SupplierID,
		InvoiceNumber: p.InvoiceNumber,
		PurchaseDate:  p.PurchaseDate,
		TotalAmount:   p.TotalAmount,
		PaymentStatus: string(p.PaymentStatus),
		ItemCount:     len(p.Items),
	}
}

func toPurchaseLines(items []PurchaseItemInput) []trade.PurchaseLine {
	lines := make([]trade.PurchaseLine, len(items))
	for i, it := range items {
		lines[i] = trade.PurchaseLine{
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
			BatchNumber: it.BatchNumber,
			ExpiryDate:  it.ExpiryDate,
		}
	}
	return lines
}

// ==================== Sale DTOs ====================

// CreateSaleRequest represents a request to record a sale
type CreateSaleRequest struct {
	InvoiceNumber   string           `json:"invoice_number" binding:"required,min=1,max=100"`
	SaleDate        time.Time        `json:"sale_date"`
	CustomerName    string           `json:"customer_name" binding:"max=200"`
	CustomerContact string           `json:"customer_contact" binding:"max=100"`
	Discount        decimal.Decimal  `json:"discount" binding:"gte=0"`
	Tax             decimal.Decimal  `json:"tax" binding:"gte=0"`
	TotalAmount     *decimal.Decimal `json:"total_amount"`
	PaymentStatus   string           `json:"payment_status" binding:"omitempty,oneof=PAID PARTIAL PENDING UNPAID CANCELLED"`
	PaymentMethod   string           `json:"payment_method" binding:"max=50"`
	Notes           string           `json:"notes"`
	Items           []SaleItemInput  `json:"items" binding:"dive"`
}

// SaleItemInput represents one sold line, optionally drawn from a batch
type SaleItemInput struct {
	ProductID   uuid.UUID        `json:"product_id" binding:"required"`
	BatchItemID *uuid.UUID       `json:"batch_item_id"`
	Quantity    int              `json:"quantity" binding:"gte=0"`
	UnitPrice   decimal.Decimal  `json:"unit_price" binding:"gte=0"`
	TotalPrice  *decimal.Decimal `json:"total_price"`
	Discount    decimal.Decimal  `json:"discount" binding:"gte=0"`
}

// UpdateSaleRequest patches a sale. A non-nil Items replaces every stored line.
type UpdateSaleRequest struct {
	InvoiceNumber   *string          `json:"invoice_number" binding:"omitempty,min=1,max=100"`
	SaleDate        *time.Time       `json:"sale_date"`
	CustomerName    *string          `json:"customer_name" binding:"omitempty,max=200"`
	CustomerContact *string          `json:"customer_contact" binding:"omitempty,max=100"`
	Discount        *decimal.Decimal `json:"discount"`
	Tax             *decimal.Decimal `json:"tax"`
	TotalAmount     *decimal.Decimal `json:"total_amount"`
	PaymentStatus   *string          `json:"payment_status" binding:"omitempty,oneof=PAID PARTIAL PENDING UNPAID CANCELLED"`
	PaymentMethod   *string          `json:"payment_method" binding:"omitempty,max=50"`
	Notes           *string          `json:"notes"`
	Items           *[]SaleItemInput `json:"items" binding:"omitempty,dive"`
}

// SaleItemResponse represents a sale line in API responses
type SaleItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	BatchItemID *uuid.UUID      `json:"batch_item_id,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Discount    decimal.Decimal `json:"discount"`
}

// SaleResponse represents a sale with its lines
type SaleResponse struct {
	ID              uuid.UUID          `json:"id"`
	PharmacyID      uuid.UUID          `json:"pharmacy_id"`
	InvoiceNumber   string             `json:"invoice_number"`
	SaleDate        time.Time          `json:"sale_date"`
	CustomerName    string             `json:"customer_name,omitempty"`
	CustomerContact string             `json:"customer_contact,omitempty"`
	TotalAmount     decimal.Decimal    `json:"total_amount"`
	Discount        decimal.Decimal    `json:"discount"`
	Tax             decimal.Decimal    `json:"tax"`
	PaymentStatus   string             `json:"payment_status"`
	PaymentMethod   string             `json:"payment_method,omitempty"`
	Notes           string             `json:"notes,omitempty"`
	Items           []SaleItemResponse `json:"items"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// SaleListItemResponse represents a sale header in list responses
type SaleListItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	SaleDate      time.Time       `json:"sale_date"`
	CustomerName  string          `json:"customer_name,omitempty"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentStatus string          `json:"payment_status"`
	ItemCount     int             `json:"item_count"`
}

// ToSaleResponse converts a domain Sale to its response
func ToSaleResponse(s *trade.Sale) SaleResponse {
	items := make([]SaleItemResponse, len(s.Items))
	for i, it := range s.Items {
		items[i] = SaleItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			BatchItemID: it.BatchItemID,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
			Discount:    it.Discount,
		}
	}
	return SaleResponse{
		ID:              s.ID,
		PharmacyID:      s.PharmacyID,
		InvoiceNumber:   s.InvoiceNumber,
		SaleDate:        s.SaleDate,
		CustomerName:    s.CustomerName,
		CustomerContact: s.CustomerContact,
		TotalAmount:     s.TotalAmount,
		Discount:        s.Discount,
		Tax:             s.Tax,
		PaymentStatus:   string(s.PaymentStatus),
		PaymentMethod:   s.PaymentMethod,
		Notes:           s.Notes,
		Items:           items,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// ToSaleListItemResponse converts a sale to its list entry
func ToSaleListItemResponse(s *trade.Sale) SaleListItemResponse {
	return SaleListItemResponse{
		ID:            s.ID,
		InvoiceNumber: s.InvoiceNumber,
		SaleDate:      s.SaleDate,
		CustomerName:  s.CustomerName,
		TotalAmount:   s.TotalAmount,
		PaymentStatus: string(s.PaymentStatus),
		ItemCount:     len(s.Items),
	}
}

func toSaleLines(items []SaleItemInput) []trade.SaleLine {
	lines := make([]trade.SaleLine, len(items))
	for i, it := range items {
		lines[i] = trade.SaleLine{
			ProductID:   it.ProductID,
			BatchItemID: it.BatchItemID,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
			Discount:    it.Discount,
		}
	}
	return lines
}

// ==================== Shared DTOs ====================

// ListFilter represents query filters for purchase and sale listings
type ListFilter struct {
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search        string     `form:"search"`
	OrderBy       string     `form:"order_by"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	From          *time.Time `form:"start_date" time_format:"2006-01-02" time_utc:"1"`
	To            *time.Time `form:"end_date" time_format:"2006-01-02" time_utc:"1"`
	PaymentStatus string     `form:"payment_status" binding:"omitempty,oneof=PAID PARTIAL PENDING UNPAID CANCELLED"`
	SupplierID    string     `form:"supplier_id" binding:"omitempty,uuid"`
}

func (f ListFilter) toDomain() trade.ListFilter {
	df := trade.ListFilter{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
			Search:   f.Search,
			OrderBy:  f.OrderBy,
			OrderDir: f.OrderDir,
			From:     f.From,
			To:       shared.EndOfDay(f.To),
		},
		PaymentStatus: trade.PaymentStatus(f.PaymentStatus),
	}
	if id, err := uuid.Parse(f.SupplierID); err == nil {
		df.SupplierID = &id
	}
	if df.Page <= 0 {
		df.Page = 1
	}
	return df
}

// BatchResponse represents a batch available for sale
type BatchResponse struct {
	ID              uuid.UUID `json:"id"`
	ProductID       uuid.UUID `json:"product_id"`
	BatchNumber     string    `json:"batch_number"`
	ExpiryDate      time.Time `json:"expiry_date"`
	InitialQuantity int       `json:"initial_quantity"`
	CurrentQuantity int       `json:"current_quantity"`
	DaysToExpiry    int       `json:"days_to_expiry"`
}

// ToBatchResponse converts a batch, computing days to expiry from now
func ToBatchResponse(b *inventory.BatchItem, now time.Time) BatchResponse {
	return BatchResponse{
		ID:              b.ID,
		ProductID:       b.ProductID,
		BatchNumber:     b.BatchNumber,
		ExpiryDate:      b.ExpiryDate,
		InitialQuantity: b.InitialQuantity,
		CurrentQuantity: b.CurrentQuantity,
		DaysToExpiry:    b.DaysToExpiry(now),
	}
}
