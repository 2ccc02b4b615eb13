package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	tradeapp "github.com/pharmaops/backend/internal/application/trade"
)

// SaleService is the dispensing surface the sale endpoints need
type SaleService interface {
	Create(ctx context.Context, pharmacyID uuid.UUID, req tradeapp.CreateSaleRequest) (*tradeapp.SaleResponse, error)
	GetByID(ctx context.Context, pharmacyID, saleID uuid.UUID) (*tradeapp.SaleResponse, error)
	List(ctx context.Context, pharmacyID uuid.UUID, filter tradeapp.ListFilter) ([]tradeapp.SaleListItemResponse, int64, error)
	ListBatches(ctx context.Context, pharmacyID, productID uuid.UUID) ([]tradeapp.BatchResponse, error)
	Update(ctx context.Context, pharmacyID, saleID uuid.UUID, req tradeapp.UpdateSaleRequest) (*tradeapp.SaleResponse, error)
	Delete(ctx context.Context, pharmacyID, saleID uuid.UUID) error
}

// SaleHandler handles sale endpoints and the batch lookup for a product
type SaleHandler struct {
	BaseHandler
	saleService SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// RegisterRoutes mounts the sale endpoints
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sales := rg.Group("/sales")
	sales.POST("", h.Create)
	sales.GET("", h.List)
	sales.GET("/:id", h.GetByID)
	sales.PUT("/:id", h.Update)
	sales.DELETE("/:id", h.Delete)

	rg.GET("/products/:id/batches", h.ListBatches)
}

// Create godoc
// @Summary      Record a sale
// @Description  Dispenses stock for each line and records the linked income
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.CreateSaleRequest true "Sale"
// @Success      201 {object} APIResponse[tradeapp.SaleResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
	pharmacyID, ok := h.pharmacyID(c)
	if !ok {
		return
	}

	var req tradeapp.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	sale, err := h.saleService.Create(c.Request.Context(), pharmacyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// GetByID godoc
// @Summary      Get sale by ID
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Success      200 {object} APIResponse[tradeapp.SaleResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales/{id} [get]
func (h *SaleHandler) GetByID(c *gin.Context) {
	pharmacyID, ok := h.pharmacyID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "sale")
	if !ok {
		return
	}

	sale, err := h.saleService.GetByID(c.Request.Context(), pharmacyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// List godoc
// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Param        payment_status query string false "Payment status"
// @Param        start_date     query string false "From date (YYYY-MM-DD)"
// @Param        end_date       query string false "To date (YYYY-MM-DD), inclusive"
// @Success      200 {object} APIResponse[[]tradeapp.SaleListItemResponse]
// @Security     BearerAuth
// @Router       /sales [get]
func (h *SaleHandler) List(c *gin.Context) {
	pharmacyID, ok := h.pharmacyID(c)
	if !ok {
		return
	}

	var filter tradeapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	sales, total, err := h.saleService.List(c.Request.Context(), pharmacyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, sales, total, filter.Page, filter.PageSize)
}

// ListBatches godoc
// @Summary      List sellable batches of a product
// @Description  Batches with remaining quantity, earliest expiry first
// @Tags         sales
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[[]tradeapp.BatchResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id}/batches [get]
func (h *SaleHandler) ListBatches(c *gin.Context) {
	pharmacyID, ok := h.pharmacyID(c)
	if !ok {
		return
	}
	productID, ok := h.pathID(c, "id", "product")
	if !ok {
		return
	}

	batches, err := h.saleService.ListBatches(c.Request.Context(), pharmacyID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batches)
}

// Update godoc
// @Summary      Update a sale
// @Description  Sending items restores the old lines and dispenses the new ones
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id      path string true "Sale ID" format(uuid)
// @Param        request body tradeapp.UpdateSaleRequest true "Changes"
// @Success      200 {object} APIResponse[tradeapp.SaleResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales/{id} [put]
func (h *SaleHandler) Update(c *gin.Context) {
	pharmacyID, ok := h.pharmacyID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "sale")
	if !ok {
		return
	}

	var req tradeapp.UpdateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	sale, err := h.saleService.Update(c.Request.Context(), pharmacyID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Delete godoc
// @Summary      Delete a sale
// @Description  Returns the dispensed stock and removes the linked income
// @Tags         sales
// @Param        id path string true "Sale ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales/{id} [delete]
func (h *SaleHandler) Delete(c *gin.Context) {
	pharmacyID, ok := h.pharmacyID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "sale")
	if !ok {
		return
	}

	if err := h.saleService.Delete(c.Request.Context(), pharmacyID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
