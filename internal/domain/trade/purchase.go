package trade

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Purchase is a stock receipt from a supplier. It owns its items.
type Purchase struct {
	shared.PharmacyEntity
	SupplierID    uuid.UUID
	InvoiceNumber string
	PurchaseDate  time.Time
	TotalAmount   decimal.Decimal
	PaymentStatus PaymentStatus
	PaymentMethod string
	Notes         string
	Items         []PurchaseItem
}

// PurchaseItem is one received product line
type PurchaseItem struct {
	ID          uuid.UUID
	PurchaseID  uuid.UUID
	ProductID   uuid.UUID
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
	BatchNumber string
	ExpiryDate  *time.Time
}

// TracksBatch reports whether the line carries the data needed for a batch
func (i *PurchaseItem) TracksBatch() bool {
	return i.BatchNumber != "" && i.ExpiryDate != nil
}

// PurchaseLine is the input for a purchase item
type PurchaseLine struct {
	ProductID   uuid.UUID
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  *decimal.Decimal
	BatchNumber string
	ExpiryDate  *time.Time
}

// PurchaseHeader holds the patchable purchase fields
type PurchaseHeader struct {
	SupplierID    uuid.UUID
	InvoiceNumber string
	PurchaseDate  time.Time
	PaymentStatus PaymentStatus
	PaymentMethod string
	Notes         string
}

// NewPurchase creates a purchase header without items
func NewPurchase(pharmacyID uuid.UUID, h PurchaseHeader) (*Purchase, error) {
	if err := shared.RequirePharmacy(pharmacyID); err != nil {
		return nil, err
	}
	p := &Purchase{PharmacyEntity: shared.NewPharmacyEntity(pharmacyID)}
	if err := p.SetHeader(h); err != nil {
		return nil, err
	}
	return p, nil
}

// SetHeader replaces the header fields
func (p *Purchase) SetHeader(h PurchaseHeader) error {
	if h.SupplierID == uuid.Nil {
		return shared.NewValidationError("supplier id is required")
	}
	invoice := strings.TrimSpace(h.InvoiceNumber)
	if invoice == "" {
		return shared.NewValidationError("invoice number cannot be empty")
	}
	if !h.PaymentStatus.IsValid() {
		return shared.NewValidationError("invalid payment status %q", h.PaymentStatus)
	}
	date := h.PurchaseDate
	if date.IsZero() {
		date = time.Now()
	}

	p.SupplierID = h.SupplierID
	p.InvoiceNumber = invoice
	p.PurchaseDate = date
	p.PaymentStatus = h.PaymentStatus
	p.PaymentMethod = h.PaymentMethod
	p.Notes = h.Notes
	p.Touch()
	return nil
}

// ReplaceItems builds the item list from lines. Zero-quantity lines are
// dropped. Line totals default to quantity x unit price and the purchase
// total is recomputed unless an explicit total is supplied.
func (p *Purchase) ReplaceItems(lines []PurchaseLine, total *decimal.Decimal) error {
	items := make([]PurchaseItem, 0, len(lines))
	sum := decimal.Zero
	for i, l := range lines {
		switch {
		case l.ProductID == uuid.Nil:
			return shared.NewValidationError("item %d: product id is required", i+1)
		case l.Quantity < 0:
			return shared.NewValidationError("item %d: quantity cannot be negative", i+1)
		case l.UnitPrice.IsNegative():
			return shared.NewValidationError("item %d: unit price cannot be negative", i+1)
		case l.TotalPrice != nil && l.TotalPrice.IsNegative():
			return shared.NewValidationError("item %d: total price cannot be negative", i+1)
		}
		if l.Quantity == 0 {
			continue
		}
		lineTotal := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		if l.TotalPrice != nil {
			lineTotal = *l.TotalPrice
		}
		items = append(items, PurchaseItem{
			ID:          uuid.New(),
			PurchaseID:  p.ID,
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TotalPrice:  lineTotal,
			BatchNumber: strings.TrimSpace(l.BatchNumber),
			ExpiryDate:  l.ExpiryDate,
		})
		sum = sum.Add(lineTotal)
	}
	p.Items = items
	if total != nil {
		return p.SetTotal(*total)
	}
	p.TotalAmount = sum
	return nil
}

// SetTotal overrides the purchase total
func (p *Purchase) SetTotal(total decimal.Decimal) error {
	if total.IsNegative() {
		return shared.NewValidationError("total amount cannot be negative")
	}
	p.TotalAmount = total
	return nil
}

// IsSettled reports whether the purchase must be mirrored in the ledger
func (p *Purchase) IsSettled() bool {
	return p.PaymentStatus.IsSettled()
}

// ItemIDs returns the ids of all items
func (p *Purchase) ItemIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(p.Items))
	for i := range p.Items {
		ids[i] = p.Items[i].ID
	}
	return ids
}
