package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	financeapp "github.com/pharmaops/backend/internal/application/finance"
)

// TransactionService is the ledger surface the transaction endpoints need
type TransactionService interface {
	Create(ctx context.Context, pharmacyID uuid.UUID, req financeapp.CreateTransactionRequest) (*financeapp.TransactionResponse, error)
	GetByID(ctx context.Context, pharmacyID, id uuid.UUID) (*financeapp.TransactionResponse, error)
	List(ctx context.Context, pharmacyID uuid.UUID, filter financeapp.TransactionListFilter) ([]financeapp.TransactionResponse, int64, error)
	Update(ctx context.Context, pharmacyID, id uuid.UUID, req financeapp.UpdateTransactionRequest) (*financeapp.TransactionResponse, error)
	Delete(ctx context.Context, pharmacyID, id uuid.UUID) error
}

// TransactionHandler handles the financial ledger endpoints. Entries linked
// to a purchase or sale are read-only here.
type TransactionHandler struct {
	BaseHandler
	transactionService TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// RegisterRoutes mounts the transaction endpoints
func (h *TransactionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	transactions := rg.Group("/transactions")
	transactions.POST("", h.Create)
	transactions.GET("", h.List)
	transactions.GET("/:id", h.GetByID)
	transactions.PUT("/:id", h.Update)
	transactions.DELETE("/:id", h.Delete)
}

// Create godoc
// @Summary      Record a manual transaction
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        request body financeapp.CreateTransactionRequest true "Transaction"
// @Success      201 {object} APIResponse[financeapp.TransactionResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	pharmacyID, ok := h.pharmacyID(c)
	if !ok {
		return
	}

	var req financeapp.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	tx, err := h.transactionService.Create(c.Request.Context(), pharmacyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tx)
}

// GetByID godoc
// @Summary      Get transaction by ID
// @Tags         transactions
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} APIResponse[financeapp.TransactionResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id} [get]
func (h *TransactionHandler) GetByID(c *gin.Context) {
	pharmacyID, ok := h.pharmacyID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "transaction")
	if !ok {
		return
	}

	tx, err := h.transactionService.GetByID(c.Request.Context(), pharmacyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// List godoc
// @Summary      List transactions
// @Tags         transactions
// @Produce      json
// @Param        type        query string false "INCOME or EXPENSE"
// @Param        manual_only query bool   false "Only entries without a purchase or sale link"
// @Param        start_date  query string false "From date (YYYY-MM-DD)"
// @Param        end_date    query string false "To date (YYYY-MM-DD), inclusive"
// @Success      200 {object} APIResponse[[]financeapp.TransactionResponse]
// @Security     BearerAuth
// @Router       /transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	pharmacyID, ok := h.pharmacyID(c)
	if !ok {
		return
	}

	var filter financeapp.TransactionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	txs, total, err := h.transactionService.List(c.Request.Context(), pharmacyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, txs, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update a manual transaction
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id      path string true "Transaction ID" format(uuid)
// @Param        request body financeapp.UpdateTransactionRequest true "Changes"
// @Success      200 {object} APIResponse[financeapp.TransactionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	pharmacyID, ok := h.pharmacyID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "transaction")
	if !ok {
		return
	}

	var req financeapp.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	tx, err := h.transactionService.Update(c.Request.Context(), pharmacyID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// Delete godoc
// @Summary      Delete a manual transaction
// @Tags         transactions
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	pharmacyID, ok := h.pharmacyID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "transaction")
	if !ok {
		return
	}

	if err := h.transactionService.Delete(c.Request.Context(), pharmacyID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
