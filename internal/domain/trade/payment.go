package trade

import "fmt"

// PaymentStatus is the settlement state of a purchase or sale
type PaymentStatus string

const (
	PaymentStatusPaid      PaymentStatus = "PAID"
	PaymentStatusPartial   PaymentStatus = "PARTIAL"
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusUnpaid    PaymentStatus = "UNPAID"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// IsValid checks if the status is a known value
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPaid, PaymentStatusPartial, PaymentStatusPending,
		PaymentStatusUnpaid, PaymentStatusCancelled:
		return true
	}
	return false
}

// IsSettled reports PAID or PARTIAL. A purchase is mirrored in the ledger
// only when settled; sales are always mirrored.
func (s PaymentStatus) IsSettled() bool {
	return s == PaymentStatusPaid || s == PaymentStatusPartial
}

// ParsePaymentStatus validates s, defaulting empty input to def
func ParsePaymentStatus(s string, def PaymentStatus) (PaymentStatus, error) {
	if s == "" {
		return def, nil
	}
	status := PaymentStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid payment status %q", s)
	}
	return status, nil
}
