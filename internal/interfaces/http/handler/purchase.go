package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	tradeapp "github.com/pharmaops/backend/internal/application/trade"
)

// PurchaseService is the stock receipt surface the purchase endpoints need
type PurchaseService interface {
	Create(ctx context.Context, pharmacyID uuid.UUID, req tradeapp.CreatePurchaseRequest) (*tradeapp.PurchaseResponse, error)
	GetByID(ctx context.Context, pharmacyID, purchaseID uuid.UUID) (*tradeapp.PurchaseResponse, error)
	List(ctx context.Context, pharmacyID uuid.UUID, filter tradeapp.ListFilter) ([]tradeapp.PurchaseListItemResponse, int64, error)
	Update(ctx context.Context, pharmacyID, purchaseID uuid.UUID, req tradeapp.UpdatePurchaseRequest) (*tradeapp.PurchaseResponse, error)
	Delete(ctx context.Context, pharmacyID, purchaseID uuid.UUID) error
}

// PurchaseHandler handles purchase endpoints. Every write moves stock and
// the linked expense entry in one transaction.
type PurchaseHandler struct {
	BaseHandler
	purchaseService PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(purchaseService PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

// RegisterRoutes mounts the purchase endpoints
func (h *PurchaseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	purchases := rg.Group("/purchases")
	purchases.POST("", h.Create)
	purchases.GET("", h.List)
	purchases.GET("/:id", h.GetByID)
	purchases.PUT("/:id", h.Update)
	purchases.DELETE("/:id", h.Delete)
}

// Create godoc
// @Summary      Record a purchase
// @Description  Receives stock for each line and records the linked expense
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.CreatePurchaseRequest true "Purchase"
// @Success      201 {object} APIResponse[tradeapp.PurchaseResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchases [post]
func (h *PurchaseHandler) Create(c *gin.Context) {
	pharmacyID, ok := h.pharmacyID(c)
	if !ok {
		return
	}

	var req tradeapp.CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	purchase, err := h.purchaseService.Create(c.Request.Context(), pharmacyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, purchase)
}

// GetByID godoc
// @Summary      Get purchase by ID
// @Tags         purchases
// @Produce      json
// @Param        id path string true "Purchase ID" format(uuid)
// @Success      200 {object} APIResponse[tradeapp.PurchaseResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchases/{id} [get]
func (h *PurchaseHandler) GetByID(c *gin.Context) {
	pharmacyID, ok := h.pharmacyID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "purchase")
	if !ok {
		return
	}

	purchase, err := h.purchaseService.GetByID(c.Request.Context(), pharmacyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, purchase)
}

// List godoc
// @Summary      List purchases
// @Tags         purchases
// @Produce      json
// @Param        supplier_id    query string false "Supplier ID" format(uuid)
// @Param        payment_status query string false "Payment status"
// @Param        start_date     query string false "From date (YYYY-MM-DD)"
// @Param        end_date       query string false "To date (YYYY-MM-DD), inclusive"
// @Success      200 {object} APIResponse[[]tradeapp.PurchaseListItemResponse]
// @Security     BearerAuth
// @Router       /purchases [get]
func (h *PurchaseHandler) List(c *gin.Context) {
	pharmacyID, ok := h.pharmacyID(c)
	if !ok {
		return
	}

	var filter tradeapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	purchases, total, err := h.purchaseService.List(c.Request.Context(), pharmacyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, purchases, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update a purchase
// @Description  Sending items replaces every line and reconciles stock
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Param        id      path string true "Purchase ID" format(uuid)
// @Param        request body tradeapp.UpdatePurchaseRequest true "Changes"
// @Success      200 {object} APIResponse[tradeapp.PurchaseResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchases/{id} [put]
func (h *PurchaseHandler) Update(c *gin.Context) {
	pharmacyID, ok := h.pharmacyID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "purchase")
	if !ok {
		return
	}

	var req tradeapp.UpdatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	purchase, err := h.purchaseService.Update(c.Request.Context(), pharmacyID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, purchase)
}

// Delete godoc
// @Summary      Delete a purchase
// @Description  Reverses the received stock; fails if it was already sold
// @Tags         purchases
// @Param        id path string true "Purchase ID" format(uuid)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchases/{id} [delete]
func (h *PurchaseHandler) Delete(c *gin.Context) {
	pharmacyID, ok := h.pharmacyID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "purchase")
	if !ok {
		return
	}

	if err := h.purchaseService.Delete(c.Request.Context(), pharmacyID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
