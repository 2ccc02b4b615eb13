package trade

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Sale is a stock issue to a customer. It owns its items.
type Sale struct {
	shared.PharmacyEntity
	InvoiceNumber   string
	SaleDate        time.Time
	CustomerName    string
	CustomerContact string
	TotalAmount     decimal.Decimal
	Discount        decimal.Decimal
	Tax             decimal.Decimal
	PaymentStatus   PaymentStatus
	PaymentMethod   string
	Notes           string
	Items           []SaleItem
}

// SaleItem is one sold product line, optionally traced to a batch
type SaleItem struct {
	ID          uuid.UUID
	SaleID      uuid.UUID
	ProductID   uuid.UUID
	BatchItemID *uuid.UUID
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
	Discount    decimal.Decimal
}

// SaleLine is the input for a sale item
type SaleLine struct {
	ProductID   uuid.UUID
	BatchItemID *uuid.UUID
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  *decimal.Decimal
	Discount    decimal.Decimal
}

// SaleHeader holds the patchable sale fields
type SaleHeader struct {
	InvoiceNumber   string
	SaleDate        time.Time
	CustomerName    string
	CustomerContact string
	Discount        decimal.Decimal
	Tax             decimal.Decimal
	PaymentStatus   PaymentStatus
	PaymentMethod   string
	Notes           string
}

// NewSale creates a sale header without items
func NewSale(pharmacyID uuid.UUID, h SaleHeader) (*Sale, error) {
	if err := shared.RequirePharmacy(pharmacyID); err != nil {
		return nil, err
	}
	s := &Sale{PharmacyEntity: shared.NewPharmacyEntity(pharmacyID)}
	if err := s.SetHeader(h); err != nil {
		return nil, err
	}
	return s, nil
}

// SetHeader replaces the header fields
func (s *Sale) SetHeader(h SaleHeader) error {
	invoice := strings.TrimSpace(h.InvoiceNumber)
	switch {
	case invoice == "":
		return shared.NewValidationError("invoice number cannot be empty")
	case !h.PaymentStatus.IsValid():
		return shared.NewValidationError("invalid payment status %q", h.PaymentStatus)
	case h.Discount.IsNegative() || h.Tax.IsNegative():
		return shared.NewValidationError("discount and tax cannot be negative")
	}
	date := h.SaleDate
	if date.IsZero() {
		date = time.Now()
	}

	s.InvoiceNumber = invoice
	s.SaleDate = date
	s.CustomerName = h.CustomerName
	s.CustomerContact = h.CustomerContact
	s.Discount = h.Discount
	s.Tax = h.Tax
	s.PaymentStatus = h.PaymentStatus
	s.PaymentMethod = h.PaymentMethod
	s.Notes = h.Notes
	s.Touch()
	return nil
}

// ReplaceItems builds the item list from lines. Zero-quantity lines are
// dropped. Line totals default to quantity x unit price - line discount and
// the sale total to the line sum - discount + tax, unless supplied.
func (s *Sale) ReplaceItems(lines []SaleLine, total *decimal.Decimal) error {
	items := make([]SaleItem, 0, len(lines))
	for i, l := range lines {
		switch {
		case l.ProductID == uuid.Nil:
			return shared.NewValidationError("item %d: product id is required", i+1)
		case l.Quantity < 0:
			return shared.NewValidationError("item %d: quantity cannot be negative", i+1)
		case l.UnitPrice.IsNegative() || l.Discount.IsNegative():
			return shared.NewValidationError("item %d: price and discount cannot be negative", i+1)
		case l.TotalPrice != nil && l.TotalPrice.IsNegative():
			return shared.NewValidationError("item %d: total price cannot be negative", i+1)
		}
		if l.Quantity == 0 {
			continue
		}
		lineTotal := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Sub(l.Discount)
		if l.TotalPrice != nil {
			lineTotal = *l.TotalPrice
		}
		if lineTotal.IsNegative() {
			return shared.NewValidationError("item %d: discount exceeds line amount", i+1)
		}
		items = append(items, SaleItem{
			ID:          uuid.New(),
			SaleID:      s.ID,
			ProductID:   l.ProductID,
			BatchItemID: l.BatchItemID,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TotalPrice:  lineTotal,
			Discount:    l.Discount,
		})
	}
	s.Items = items
	if total != nil {
		return s.SetTotal(*total)
	}
	return s.RecomputeTotal()
}

// RecomputeTotal sets the total from the items, discount and tax
func (s *Sale) RecomputeTotal() error {
	sum := decimal.Zero
	for _, it := range s.Items {
		sum = sum.Add(it.TotalPrice)
	}
	return s.SetTotal(sum.Sub(s.Discount).Add(s.Tax))
}

// SetTotal overrides the sale total
func (s *Sale) SetTotal(total decimal.Decimal) error {
	if total.IsNegative() {
		return shared.NewValidationError("total amount cannot be negative")
	}
	s.TotalAmount = total
	return nil
}
