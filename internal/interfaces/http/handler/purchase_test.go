package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	tradeapp "github.com/pharmaops/backend/internal/application/trade"
	"github.com/pharmaops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPurchaseRouter(pharmacyID uuid.UUID, svc *mockPurchaseService) *gin.Engine {
	return newTestRouter(pharmacyID, NewPurchaseHandler(svc).RegisterRoutes)
}

func TestPurchaseHandler_Create(t *testing.T) {
	pharmacyID := uuid.New()
	supplierID := uuid.New()
	productID := uuid.New()

	body := `{
		"supplier_id": "` + supplierID.String() + `",
		"invoice_number": "INV-1001",
		"items": [
			{"product_id": "` + productID.String() + `", "quantity": 50, "unit_price": "2.10",
			 "batch_number": "B-77", "expiry_date": "2027-03-01T00:00:00Z"}
		]
	}`

	t.Run("records purchase", func(t *testing.T) {
		svc := new(mockPurchaseService)
		svc.On("Create", mock.Anything, pharmacyID, mock.MatchedBy(func(r tradeapp.CreatePurchaseRequest) bool {
			return r.SupplierID == supplierID && len(r.Items) == 1 &&
				r.Items[0].Quantity == 50 && r.Items[0].BatchNumber == "B-77" && r.Items[0].ExpiryDate != nil
		})).Return(&tradeapp.PurchaseResponse{
			ID:            uuid.New(),
			InvoiceNumber: "INV-1001",
			TotalAmount:   decimal.RequireFromString("105"),
			PaymentStatus: "PENDING",
		}, nil)

		w := perform(newPurchaseRouter(pharmacyID, svc), http.MethodPost, "/api/v1/purchases", body)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "PENDING", decode(t, w).Data.(map[string]any)["payment_status"])
		svc.AssertExpectations(t)
	})

	t.Run("unknown supplier", func(t *testing.T) {
		svc := new(mockPurchaseService)
		svc.On("Create", mock.Anything, pharmacyID, mock.Anything).Return(nil, shared.NewNotFoundError("supplier"))

		w := perform(newPurchaseRouter(pharmacyID, svc), http.MethodPost, "/api/v1/purchases", body)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("negative quantity is rejected before the service", func(t *testing.T) {
		svc := new(mockPurchaseService)
		bad := `{"supplier_id":"` + supplierID.String() + `","invoice_number":"INV-1",
			"items":[{"product_id":"` + productID.String() + `","quantity":-1}]}`

		w := perform(newPurchaseRouter(pharmacyID, svc), http.MethodPost, "/api/v1/purchases", bad)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, shared.CodeValidation, decode(t, w).Error.Code)
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed json", func(t *testing.T) {
		svc := new(mockPurchaseService)
		w := perform(newPurchaseRouter(pharmacyID, svc), http.MethodPost, "/api/v1/purchases", `{"supplier_id":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPurchaseHandler_List(t *testing.T) {
	pharmacyID := uuid.New()
	supplierID := uuid.New()

	t.Run("binds window and supplier", func(t *testing.T) {
		svc := new(mockPurchaseService)
		svc.On("List", mock.Anything, pharmacyID, mock.MatchedBy(func(f tradeapp.ListFilter) bool {
			return f.SupplierID == supplierID.String() &&
				f.PaymentStatus == "PAID" &&
				f.From != nil && f.From.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) &&
				f.To != nil && f.To.Equal(time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC))
		})).Return([]tradeapp.PurchaseListItemResponse{}, int64(0), nil)

		w := perform(newPurchaseRouter(pharmacyID, svc), http.MethodGet,
			"/api/v1/purchases?supplier_id="+supplierID.String()+"&payment_status=PAID&start_date=2026-01-01&end_date=2026-01-31", "")

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("invalid supplier id", func(t *testing.T) {
		svc := new(mockPurchaseService)
		w := perform(newPurchaseRouter(pharmacyID, svc), http.MethodGet, "/api/v1/purchases?supplier_id=nope", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown payment status", func(t *testing.T) {
		svc := new(mockPurchaseService)
		w := perform(newPurchaseRouter(pharmacyID, svc), http.MethodGet, "/api/v1/purchases?payment_status=OWED", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPurchaseHandler_UpdateAndDelete(t *testing.T) {
	pharmacyID := uuid.New()
	id := uuid.New()

	svc := new(mockPurchaseService)
	svc.On("Update", mock.Anything, pharmacyID, id, mock.MatchedBy(func(r tradeapp.UpdatePurchaseRequest) bool {
		return r.Items != nil && len(*r.Items) == 0 && r.Notes != nil
	})).Return(nil, shared.NewDomainError(shared.CodeInsufficientStock, "insufficient stock for PARA-500"))
	svc.On("Delete", mock.Anything, pharmacyID, id).Return(nil)
	router := newPurchaseRouter(pharmacyID, svc)

	w := perform(router, http.MethodPut, "/api/v1/purchases/"+id.String(), `{"items":[],"notes":"returned"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, shared.CodeInsufficientStock, decode(t, w).Error.Code)

	w = perform(router, http.MethodDelete, "/api/v1/purchases/"+id.String(), "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	svc.AssertExpectations(t)
}
