package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/pharmaops/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type productInput struct {
	SKU          string           `json:"sku" binding:"required,max=8"`
	Email        string           `json:"email" binding:"omitempty,email"`
	ReorderLevel int              `json:"reorder_level" binding:"gte=0"`
	CostPrice    decimal.Decimal  `json:"cost_price" binding:"gte=0"`
	Discount     *decimal.Decimal `json:"discount" binding:"omitempty,gte=0"`
}

func newValidationRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	SetupValidator()

	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req productInput
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(req))
	})
	return router
}

func TestHandleValidationError(t *testing.T) {
	router := newValidationRouter()

	t.Run("lists fields by json name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"email":"nope","reorder_level":-1}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

		fields := map[string]string{}
		for _, d := range resp.Error.Details {
			fields[d.Field] = d.Message
		}
		assert.Equal(t, "This field is required", fields["sku"])
		assert.Equal(t, "Invalid email format", fields["email"])
		assert.Equal(t, "Must be greater than or equal to 0", fields["reorder_level"])
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"sku":`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeBadRequest)
	})

	t.Run("valid input passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"sku":"PARA-1","reorder_level":5}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetValidationMessage(t *testing.T) {
	type input struct {
		Name  string `binding:"min=5"`
		Count int    `binding:"max=3"`
		Kind  string `binding:"oneof=INCOME EXPENSE"`
		Ref   string `binding:"uuid"`
	}
	v := validator.New()
	v.SetTagName("binding")

	err := v.Struct(input{Name: "ab", Count: 9, Kind: "OTHER", Ref: "x"})
	require.Error(t, err)

	got := map[string]string{}
	for _, e := range err.(validator.ValidationErrors) {
		got[e.Field()] = getValidationMessage(e)
	}
	assert.Equal(t, "Must be at least 5 characters", got["Name"])
	assert.Equal(t, "Must be at most 3", got["Count"])
	assert.Equal(t, "Must be one of: INCOME EXPENSE", got["Kind"])
	assert.Equal(t, "Invalid UUID format", got["Ref"])
}

func TestSetupValidator_DecimalAmounts(t *testing.T) {
	router := newValidationRouter()
	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, post(`{"sku":"A1","cost_price":"2.50"}`).Code)
	assert.Equal(t, http.StatusOK, post(`{"sku":"A1","cost_price":"0","discount":"1.25"}`).Code)

	w := post(`{"sku":"A1","cost_price":"-0.01","discount":"-3"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	fields := map[string]bool{}
	for _, d := range resp.Error.Details {
		fields[d.Field] = true
	}
	assert.True(t, fields["cost_price"])
	assert.True(t, fields["discount"])
}
