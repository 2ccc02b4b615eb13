// Package report holds the read models and pure aggregation builders behind
// the inventory, sales, purchase and financial reports. Builders never touch
// storage; the application layer loads rows through Repository and passes
// them in.
package report

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/catalog"
	"github.com/pharmaops/backend/internal/domain/finance"
	"github.com/pharmaops/backend/internal/domain/shared"
	"github.com/pharmaops/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Filter scopes a report. PharmacyID is mandatory.
type Filter struct {
	PharmacyID uuid.UUID
	From       *time.Time
	To         *time.Time
	Category   string
	ProductID  *uuid.UUID
}

// Validate checks the scoping and date window
func (f Filter) Validate() error {
	if err := shared.RequirePharmacy(f.PharmacyID); err != nil {
		return err
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return shared.NewValidationError("start date must not be after end date")
	}
	return nil
}

// HasDateWindow reports whether the filter limits the time range
func (f Filter) HasDateWindow() bool {
	return f.From != nil || f.To != nil
}

// Options carries the tunable thresholds of the builders
type Options struct {
	ExpiringWindowDays int
	ExpiringSoonDays   int
	TopN               int
}

// DefaultOptions returns the stock thresholds
func DefaultOptions() Options {
	return Options{ExpiringWindowDays: 90, ExpiringSoonDays: 30, TopN: 5}
}

// BatchRow is an active batch joined with its product
type BatchRow struct {
	BatchID         uuid.UUID
	ProductID       uuid.UUID
	ProductName     string
	SKU             string
	Category        string
	BatchNumber     string
	ExpiryDate      time.Time
	InitialQuantity int
	CurrentQuantity int
}

// MovementKind tags a stock movement
type MovementKind string

const (
	MovementIn  MovementKind = "PURCHASE"
	MovementOut MovementKind = "SALE"
)

// MovementRow is one purchase or sale line affecting stock
type MovementRow struct {
	Date         time.Time
	Kind         MovementKind
	RecordID     uuid.UUID
	Reference    string
	Counterparty string
	ProductID    uuid.UUID
	ProductName  string
	SKU          string
	Category     string
	Quantity     int // signed: positive in, negative out
	UnitPrice    decimal.Decimal
}

// SaleLineRow is a sale line with its product name resolved
type SaleLineRow struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	TotalPrice  decimal.Decimal
}

// SaleRecord is a sale header with its lines
type SaleRecord struct {
	ID            uuid.UUID           `json:"id"`
	InvoiceNumber string              `json:"invoice_number"`
	Date          time.Time           `json:"date"`
	CustomerName  string              `json:"customer_name,omitempty"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	PaymentStatus trade.PaymentStatus `json:"payment_status"`
	ItemCount     int                 `json:"item_count"`
	Lines         []SaleLineRow       `json:"-"`
}

// PurchaseRecord is a purchase header with its supplier resolved
type PurchaseRecord struct {
	ID            uuid.UUID           `json:"id"`
	InvoiceNumber string              `json:"invoice_number"`
	Date          time.Time           `json:"date"`
	SupplierID    uuid.UUID           `json:"supplier_id"`
	SupplierName  string              `json:"supplier_name"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	PaymentStatus trade.PaymentStatus `json:"payment_status"`
	ItemCount     int                 `json:"item_count"`
}

// Repository loads the read rows the builders aggregate. All methods are
// pharmacy-scoped and run outside any write transaction.
type Repository interface {
	ListProducts(ctx context.Context, f Filter) ([]catalog.Product, error)
	ListActiveBatches(ctx context.Context, f Filter) ([]BatchRow, error)
	ListMovements(ctx context.Context, f Filter) ([]MovementRow, error)
	ListSales(ctx context.Context, f Filter) ([]SaleRecord, error)
	ListPurchases(ctx context.Context, f Filter) ([]PurchaseRecord, error)
	ListTransactions(ctx context.Context, f Filter) ([]finance.Transaction, error)
	CountSuppliers(ctx context.Context, pharmacyID uuid.UUID) (int64, error)
}

// percentOf returns part/whole*100 rounded to 2 places, or 0 for a zero whole
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(2)
}

func averageOf(total decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count))).Round(2)
}

// ranked is a keyed accumulator used for top-N rankings
type ranked struct {
	id    uuid.UUID
	name  string
	score decimal.Decimal
}

// sortRanked orders by score descending, then name and id so equal scores
// always come out in the same order.
func sortRanked(items []ranked) {
	sort.SliceStable(items, func(i, j int) bool {
		if c := items[i].score.Cmp(items[j].score); c != 0 {
			return c > 0
		}
		if items[i].name != items[j].name {
			return items[i].name < items[j].name
		}
		return items[i].id.String() < items[j].id.String()
	})
}

func limit(n, topN int) int {
	if topN > 0 && n > topN {
		return topN
	}
	return n
}

// Invalidator drops every cached report of a pharmacy. Mutations call it
// after their unit of work commits.
type Invalidator interface {
	InvalidatePharmacy(ctx context.Context, pharmacyID uuid.UUID) error
}
