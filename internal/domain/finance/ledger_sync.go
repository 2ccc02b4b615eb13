package finance

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OwnerKind identifies the record a linked transaction mirrors
type OwnerKind string

const (
	OwnerPurchase OwnerKind = "PURCHASE"
	OwnerSale     OwnerKind = "SALE"
)

// TransactionType returns EXPENSE for purchases and INCOME for sales
func (k OwnerKind) TransactionType() TransactionType {
	if k == OwnerPurchase {
		return TransactionTypeExpense
	}
	return TransactionTypeIncome
}

// LedgerEntry describes the desired ledger state of one purchase or sale
type LedgerEntry struct {
	Kind        OwnerKind
	OwnerID     uuid.UUID
	PharmacyID  uuid.UUID
	Date        time.Time
	Amount      decimal.Decimal
	Description string
	Payable     bool
}

// SyncAction is what SyncTransaction did
type SyncAction string

const (
	SyncCreated   SyncAction = "CREATED"
	SyncUpdated   SyncAction = "UPDATED"
	SyncDeleted   SyncAction = "DELETED"
	SyncUnchanged SyncAction = "UNCHANGED"
)

// SyncTransaction keeps exactly one transaction for a payable owner and none
// otherwise. repo must be scoped to the caller's unit of work.
func SyncTransaction(ctx context.Context, repo TransactionRepository, e LedgerEntry) (SyncAction, error) {
	existing, err := repo.FindByOwner(ctx, e.Kind, e.OwnerID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return "", err
	}
	if errors.Is(err, shared.ErrNotFound) {
		existing = nil
	}

	switch {
	case e.Payable && existing == nil:
		tx := &Transaction{
			PharmacyEntity: shared.NewPharmacyEntity(e.PharmacyID),
			Date:           e.Date,
			Amount:         e.Amount,
			Type:           e.Kind.TransactionType(),
			Description:    e.Description,
		}
		id := e.OwnerID
		if e.Kind == OwnerPurchase {
			tx.PurchaseID = &id
		} else {
			tx.SaleID = &id
		}
		if err := repo.Create(ctx, tx); err != nil {
			return "", err
		}
		return SyncCreated, nil

	case e.Payable:
		existing.Date = e.Date
		existing.Amount = e.Amount
		existing.Description = e.Description
		existing.Touch()
		if err := repo.Update(ctx, existing); err != nil {
			return "", err
		}
		return SyncUpdated, nil

	case existing != nil:
		if err := repo.Delete(ctx, existing.PharmacyID, existing.ID); err != nil {
			return "", err
		}
		return SyncDeleted, nil
	}
	return SyncUnchanged, nil
}
