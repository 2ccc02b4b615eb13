package trade

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPurchase(t *testing.T, status PaymentStatus) *Purchase {
	t.Helper()
	p, err := NewPurchase(uuid.New(), PurchaseHeader{
		SupplierID:    uuid.New(),
		InvoiceNumber: "INV-001",
		PaymentStatus: status,
	})
	require.NoError(t, err)
	return p
}

func TestPaymentStatus(t *testing.T) {
	tests := []struct {
		status  PaymentStatus
		valid   bool
		settled bool
	}{
		{PaymentStatusPaid, true, true},
		{PaymentStatusPartial, true, true},
		{PaymentStatusPending, true, false},
		{PaymentStatusUnpaid, true, false},
		{PaymentStatusCancelled, true, false},
		{PaymentStatus("REFUNDED"), false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.status.IsValid())
			assert.Equal(t, tt.settled, tt.status.IsSettled())
		})
	}
}

func TestParsePaymentStatus(t *testing.T) {
	s, err := ParsePaymentStatus("", PaymentStatusPending)
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPending, s)

	_, err = ParsePaymentStatus("nope", PaymentStatusPaid)
	assert.Error(t, err)
}

func TestNewPurchase(t *testing.T) {
	t.Run("defaults purchase date", func(t *testing.T) {
		p := newTestPurchase(t, PaymentStatusPaid)
		assert.WithinDuration(t, time.Now(), p.PurchaseDate, time.Minute)
		assert.True(t, p.IsSettled())
	})

	tests := []struct {
		name string
		h    PurchaseHeader
	}{
		{"missing supplier", PurchaseHeader{InvoiceNumber: "X", PaymentStatus: PaymentStatusPaid}},
		{"missing invoice", PurchaseHeader{SupplierID: uuid.New(), PaymentStatus: PaymentStatusPaid}},
		{"bad status", PurchaseHeader{SupplierID: uuid.New(), InvoiceNumber: "X", PaymentStatus: "LATER"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPurchase(uuid.New(), tt.h)
			assert.True(t, shared.HasCode(err, shared.CodeValidation))
		})
	}
}

func TestPurchase_ReplaceItems(t *testing.T) {
	productID := uuid.New()
	expiry := time.Now().Add(240 * time.Hour)

	t.Run("computes totals and skips zero quantities", func(t *testing.T) {
		p := newTestPurchase(t, PaymentStatusPaid)
		override := decimal.NewFromInt(7)
		err := p.ReplaceItems([]PurchaseLine{
			{ProductID: productID, Quantity: 10, UnitPrice: decimal.NewFromFloat(1.5), BatchNumber: "B1", ExpiryDate: &expiry},
			{ProductID: productID, Quantity: 0, UnitPrice: decimal.NewFromInt(9)},
			{ProductID: uuid.New(), Quantity: 2, UnitPrice: decimal.NewFromInt(5), TotalPrice: &override},
		}, nil)
		require.NoError(t, err)

		require.Len(t, p.Items, 2)
		assert.True(t, p.Items[0].TotalPrice.Equal(decimal.NewFromInt(15)))
		assert.True(t, p.Items[0].TracksBatch())
		assert.False(t, p.Items[1].TracksBatch())
		assert.True(t, p.TotalAmount.Equal(decimal.NewFromInt(22)))
		assert.Equal(t, p.ID, p.Items[0].PurchaseID)
	})

	t.Run("explicit total wins", func(t *testing.T) {
		p := newTestPurchase(t, PaymentStatusPaid)
		total := decimal.NewFromInt(100)
		require.NoError(t, p.ReplaceItems([]PurchaseLine{{ProductID: productID, Quantity: 1, UnitPrice: decimal.NewFromInt(3)}}, &total))
		assert.True(t, p.TotalAmount.Equal(total))
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		p := newTestPurchase(t, PaymentStatusPaid)
		err := p.ReplaceItems([]PurchaseLine{{ProductID: productID, Quantity: -1}}, nil)
		assert.True(t, shared.HasCode(err, shared.CodeValidation))
	})

	t.Run("batch needs both number and expiry", func(t *testing.T) {
		item := PurchaseItem{BatchNumber: "B1"}
		assert.False(t, item.TracksBatch())
	})
}
