package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/shared"
	"github.com/pharmaops/backend/internal/infrastructure/auth"
	"github.com/pharmaops/backend/internal/interfaces/http/dto"
	"github.com/pharmaops/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// withPharmacy simulates an authenticated request for pharmacyID
func withPharmacy(pharmacyID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.PrincipalKey, &auth.Principal{ID: uuid.New(), PharmacyID: pharmacyID})
		c.Set(middleware.PharmacyIDKey, pharmacyID.String())
		c.Next()
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBaseHandlerSuccess(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.Success(c, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode(t, w).Success)
}

func TestBaseHandlerSuccessWithMeta(t *testing.T) {
	h := &BaseHandler{}

	t.Run("explicit paging", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		h.SuccessWithMeta(c, []string{"a", "b"}, 100, 2, 10)

		resp := decode(t, w)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(100), resp.Meta.Total)
		assert.Equal(t, 2, resp.Meta.Page)
		assert.Equal(t, 10, resp.Meta.PageSize)
		assert.Equal(t, 10, resp.Meta.TotalPages)
	})

	t.Run("zero paging falls back to defaults", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		h.SuccessWithMeta(c, []string{}, 45, 0, 0)

		resp := decode(t, w)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, 1, resp.Meta.Page)
		assert.Equal(t, 20, resp.Meta.PageSize)
		assert.Equal(t, 3, resp.Meta.TotalPages)
	})
}

func TestBaseHandlerCreatedAndNoContent(t *testing.T) {
	h := &BaseHandler{}
	router := gin.New()
	router.POST("/items", func(c *gin.Context) { h.Created(c, map[string]string{"id": "1"}) })
	router.DELETE("/items", func(c *gin.Context) { h.NoContent(c) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/items", nil))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/items", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestBaseHandlerHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", shared.NewNotFoundError("product"), http.StatusNotFound, shared.CodeNotFound},
		{"validation", shared.NewValidationError("quantity must be positive"), http.StatusBadRequest, shared.CodeValidation},
		{"duplicate", shared.NewDomainError(shared.CodeDuplicateKey, "sku taken"), http.StatusBadRequest, shared.CodeDuplicateKey},
		{"stock", shared.NewDomainError(shared.CodeInsufficientStock, "short"), http.StatusBadRequest, shared.CodeInsufficientStock},
		{"wrapped domain", errors.Join(errors.New("context"), shared.NewConflictError("in use")), http.StatusBadRequest, shared.CodeConflict},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Set(middleware.RequestIDKey, "req-1")

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
		})
	}
}

func TestBaseHandlerInternalErrorHidesMessage(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h.HandleError(c, errors.New("pq: password authentication failed"))

	assert.NotContains(t, w.Body.String(), "password")
}

func TestBaseHandlerPathID(t *testing.T) {
	h := &BaseHandler{}
	id := uuid.New()
	router := gin.New()
	router.GET("/products/:id", func(c *gin.Context) {
		got, ok := h.pathID(c, "id", "product")
		if !ok {
			return
		}
		h.Success(c, got.String())
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/"+id.String(), nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id.String(), decode(t, w).Data)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, shared.CodeValidation, decode(t, w).Error.Code)
}

func TestBaseHandlerPharmacyID(t *testing.T) {
	h := &BaseHandler{}
	handler := func(c *gin.Context) {
		if _, ok := h.pharmacyID(c); ok {
			h.NoContent(c)
		}
	}

	router := gin.New()
	router.GET("/anon", handler)
	router.GET("/auth", withPharmacy(uuid.New()), handler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/anon", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

// newTestRouter mounts routes under /api/v1 for an authenticated pharmacy
func newTestRouter(pharmacyID uuid.UUID, register func(rg *gin.RouterGroup)) *gin.Engine {
	router := gin.New()
	api := router.Group("/api/v1")
	if pharmacyID != uuid.Nil {
		api.Use(withPharmacy(pharmacyID))
	}
	register(api)
	return router
}

func perform(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
