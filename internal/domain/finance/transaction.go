package finance

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a ledger entry
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// IsValid checks if the type is a known value
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Transaction is a ledger entry. It mirrors at most one purchase or sale;
// with neither link set it is a free-standing manual entry.
type Transaction struct {
	shared.PharmacyEntity
	Date        time.Time
	Amount      decimal.Decimal
	Type        TransactionType
	Description string
	PurchaseID  *uuid.UUID
	SaleID      *uuid.UUID
}

// TransactionDetails holds the fields of a manual ledger entry
type TransactionDetails struct {
	Date        time.Time
	Amount      decimal.Decimal
	Type        TransactionType
	Description string
}

// NewManualTransaction creates a free-standing ledger entry
func NewManualTransaction(pharmacyID uuid.UUID, d TransactionDetails) (*Transaction, error) {
	if err := shared.RequirePharmacy(pharmacyID); err != nil {
		return nil, err
	}
	tx := &Transaction{PharmacyEntity: shared.NewPharmacyEntity(pharmacyID)}
	if err := tx.apply(d); err != nil {
		return nil, err
	}
	return tx, nil
}

// UpdateManual edits a free-standing entry. Linked entries are owned by
// their purchase or sale and refuse direct edits.
func (t *Transaction) UpdateManual(d TransactionDetails) error {
	if t.IsLinked() {
		return shared.NewConflictError("transaction is linked to a %s and can only change through it", t.ownerLabel())
	}
	if err := t.apply(d); err != nil {
		return err
	}
	t.Touch()
	return nil
}

// EnsureDeletable refuses deletion of linked entries
func (t *Transaction) EnsureDeletable() error {
	if t.IsLinked() {
		return shared.NewConflictError("transaction is linked to a %s; delete the %s instead", t.ownerLabel(), t.ownerLabel())
	}
	return nil
}

func (t *Transaction) apply(d TransactionDetails) error {
	switch {
	case !d.Type.IsValid():
		return shared.NewValidationError("invalid transaction type %q", d.Type)
	case !d.Amount.IsPositive():
		return shared.NewValidationError("transaction amount must be positive")
	}
	date := d.Date
	if date.IsZero() {
		date = time.Now()
	}
	t.Date = date
	t.Amount = d.Amount
	t.Type = d.Type
	t.Description = strings.TrimSpace(d.Description)
	return nil
}

// IsLinked reports whether the entry mirrors a purchase or sale
func (t *Transaction) IsLinked() bool {
	return t.PurchaseID != nil || t.SaleID != nil
}

func (t *Transaction) ownerLabel() string {
	if t.PurchaseID != nil {
		return "purchase"
	}
	return "sale"
}

// ExpenseCategory groups an expense for reporting: purchase-linked entries
// are inventory purchases, manual ones use their description.
func (t *Transaction) ExpenseCategory() string {
	if t.PurchaseID != nil {
		return "Inventory Purchase"
	}
	if t.Description != "" {
		return t.Description
	}
	return "Other Expenses"
}
