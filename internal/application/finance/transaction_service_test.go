package finance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/finance"
	"github.com/pharmaops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByIDForPharmacy(ctx context.Context, pharmacyID, id uuid.UUID) (*finance.Transaction, error) {
	args := m.Called(ctx, pharmacyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByOwner(ctx context.Context, kind finance.OwnerKind, ownerID uuid.UUID) (*finance.Transaction, error) {
	args := m.Called(ctx, kind, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindAllForPharmacy(ctx context.Context, pharmacyID uuid.UUID, filter finance.TransactionFilter) ([]finance.Transaction, int64, error) {
	args := m.Called(ctx, pharmacyID, filter)
	return args.Get(0).([]finance.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *finance.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockTransactionRepository) Update(ctx context.Context, tx *finance.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockTransactionRepository) Delete(ctx context.Context, pharmacyID, id uuid.UUID) error {
	return m.Called(ctx, pharmacyID, id).Error(0)
}

type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) InvalidatePharmacy(ctx context.Context, pharmacyID uuid.UUID) error {
	return m.Called(ctx, pharmacyID).Error(0)
}

func manualEntry(t *testing.T, pharmacyID uuid.UUID) *finance.Transaction {
	t.Helper()
	tx, err := finance.NewManualTransaction(pharmacyID, finance.TransactionDetails{
		Date:        time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.NewFromInt(120),
		Type:        finance.TransactionTypeExpense,
		Description: "Rent",
	})
	require.NoError(t, err)
	return tx
}

func linkedEntry(t *testing.T, pharmacyID uuid.UUID) *finance.Transaction {
	t.Helper()
	tx := manualEntry(t, pharmacyID)
	purchaseID := uuid.New()
	tx.PurchaseID = &purchaseID
	return tx
}

func TestTransactionService_Create(t *testing.T) {
	ctx := context.Background()
	pharmacyID := uuid.New()

	t.Run("manual entry is never linked", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		inv := new(MockInvalidator)
		svc := NewTransactionService(repo, nil)
		svc.SetReportInvalidator(inv)
		repo.On("Create", ctx, mock.MatchedBy(func(tx *finance.Transaction) bool {
			return tx.PurchaseID == nil && tx.SaleID == nil && tx.PharmacyID == pharmacyID
		})).Return(nil)
		inv.On("InvalidatePharmacy", ctx, pharmacyID).Return(nil)

		resp, err := svc.Create(ctx, pharmacyID, CreateTransactionRequest{
			Amount:      decimal.NewFromInt(75),
			Type:        "INCOME",
			Description: "Consultation fees",
		})
		require.NoError(t, err)
		assert.False(t, resp.Linked)
		assert.Equal(t, "INCOME", resp.Type)
		assert.False(t, resp.Date.IsZero())
		repo.AssertExpectations(t)
		inv.AssertExpectations(t)
	})

	t.Run("non-positive amount is rejected", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		svc := NewTransactionService(repo, nil)

		_, err := svc.Create(ctx, pharmacyID, CreateTransactionRequest{Amount: decimal.Zero, Type: "EXPENSE"})
		assert.True(t, shared.HasCode(err, shared.CodeValidation))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestTransactionService_Update(t *testing.T) {
	ctx := context.Background()
	pharmacyID := uuid.New()

	t.Run("manual entry is edited", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		svc := NewTransactionService(repo, nil)
		tx := manualEntry(t, pharmacyID)
		repo.On("FindByIDForPharmacy", ctx, pharmacyID, tx.ID).Return(tx, nil)
		repo.On("Update", ctx, tx).Return(nil)

		amount := decimal.NewFromInt(150)
		resp, err := svc.Update(ctx, pharmacyID, tx.ID, UpdateTransactionRequest{Amount: &amount})
		require.NoError(t, err)
		assert.True(t, amount.Equal(resp.Amount))
		assert.Equal(t, "Rent", resp.Description)
		repo.AssertExpectations(t)
	})

	t.Run("linked entry is a conflict", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		svc := NewTransactionService(repo, nil)
		tx := linkedEntry(t, pharmacyID)
		repo.On("FindByIDForPharmacy", ctx, pharmacyID, tx.ID).Return(tx, nil)

		amount := decimal.NewFromInt(1)
		_, err := svc.Update(ctx, pharmacyID, tx.ID, UpdateTransactionRequest{Amount: &amount})
		assert.True(t, shared.HasCode(err, shared.CodeConflict))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestTransactionService_Delete(t *testing.T) {
	ctx := context.Background()
	pharmacyID := uuid.New()

	t.Run("linked entry is a conflict", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		svc := NewTransactionService(repo, nil)
		tx := linkedEntry(t, pharmacyID)
		repo.On("FindByIDForPharmacy", ctx, pharmacyID, tx.ID).Return(tx, nil)

		err := svc.Delete(ctx, pharmacyID, tx.ID)
		assert.True(t, shared.HasCode(err, shared.CodeConflict))
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("manual entry is deleted", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		svc := NewTransactionService(repo, nil)
		tx := manualEntry(t, pharmacyID)
		repo.On("FindByIDForPharmacy", ctx, pharmacyID, tx.ID).Return(tx, nil)
		repo.On("Delete", ctx, pharmacyID, tx.ID).Return(nil)

		require.NoError(t, svc.Delete(ctx, pharmacyID, tx.ID))
		repo.AssertExpectations(t)
	})
}

func TestTransactionService_List(t *testing.T) {
	ctx := context.Background()
	pharmacyID := uuid.New()
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)

	t.Run("date-only end covers the whole day", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		svc := NewTransactionService(repo, nil)
		repo.On("FindAllForPharmacy", ctx, pharmacyID, mock.MatchedBy(func(f finance.TransactionFilter) bool {
			return f.Page == 1 && f.ManualOnly && f.Type == finance.TransactionTypeExpense &&
				f.To != nil && f.To.Equal(to.Add(24*time.Hour-time.Nanosecond))
		})).Return([]finance.Transaction{*manualEntry(t, pharmacyID)}, int64(1), nil)

		items, total, err := svc.List(ctx, pharmacyID, TransactionListFilter{
			Type:       "EXPENSE",
			ManualOnly: true,
			From:       &from,
			To:         &to,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, items, 1)
		repo.AssertExpectations(t)
	})

	t.Run("inverted window is rejected", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		svc := NewTransactionService(repo, nil)

		_, _, err := svc.List(ctx, pharmacyID, TransactionListFilter{From: &to, To: &from})
		assert.True(t, shared.HasCode(err, shared.CodeValidation))
	})
}
