package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	reportapp "github.com/pharmaops/backend/internal/application/report"
	"github.com/pharmaops/backend/internal/domain/report"
	"github.com/pharmaops/backend/internal/infrastructure/export"
	"github.com/pharmaops/backend/internal/infrastructure/storage"
)

// ReportService is the read-only reporting surface
type ReportService interface {
	InventorySummary(ctx context.Context, f report.Filter) (*report.InventorySummary, error)
	StockLevels(ctx context.Context, f report.Filter) ([]report.StockLevel, error)
	Expiry(ctx context.Context, f report.Filter, days int) ([]report.ExpiryEntry, error)
	InventoryMovement(ctx context.Context, f report.Filter) (*report.InventoryMovement, error)
	InventoryValuation(ctx context.Context, f report.Filter) (*report.InventoryValuation, error)
	Sales(ctx context.Context, f report.Filter) (*report.SalesReport, error)
	Purchases(ctx context.Context, f report.Filter) (*report.PurchaseReport, error)
	Financial(ctx context.Context, f report.Filter) (*report.FinancialReport, error)
}

// ExportArchive keeps a copy of an export and returns a download link
type ExportArchive interface {
	Key(pharmacyID, filename string) string
	Store(ctx context.Context, key, contentType string, body []byte) (*storage.ArchivedObject, error)
}

// ReportHandler serves the inventory, trade and financial reports. Every
// report accepts start_date, end_date, category and product_id.
type ReportHandler struct {
	BaseHandler
	reportService ReportService
	archive       ExportArchive
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// SetArchive enables archive=true on the export endpoints
func (h *ReportHandler) SetArchive(archive ExportArchive) {
	h.archive = archive
}

// RegisterRoutes mounts the report endpoints
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	reports.GET("/inventory-summary", h.InventorySummary)
	reports.GET("/stock-levels", h.StockLevels)
	reports.GET("/stock-levels/export", h.ExportStockLevels)
	reports.GET("/expiry", h.Expiry)
	reports.GET("/expiry/export", h.ExportExpiry)
	reports.GET("/inventory-movement", h.InventoryMovement)
	reports.GET("/inventory-valuation", h.InventoryValuation)
	reports.GET("/inventory-valuation/export", h.ExportInventoryValuation)
	reports.GET("/sales", h.Sales)
	reports.GET("/purchases", h.Purchases)
	reports.GET("/financial", h.Financial)
}

// filter binds the shared report query; the response has been written when
// ok is false
func (h *ReportHandler) filter(c *gin.Context) (reportapp.ReportQuery, report.Filter, bool) {
	pharmacyID, ok := h.pharmacyID(c)
	if !ok {
		return reportapp.ReportQuery{}, report.Filter{}, false
	}
	var q reportapp.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return q, report.Filter{}, false
	}
	f, err := q.Filter(pharmacyID)
	if err != nil {
		h.HandleError(c, err)
		return q, f, false
	}
	return q, f, true
}

// InventorySummary godoc
// @Summary      Inventory dashboard counters
// @Tags         reports
// @Produce      json
// @Success      200 {object} APIResponse[report.InventorySummary]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/inventory-summary [get]
func (h *ReportHandler) InventorySummary(c *gin.Context) {
	_, f, ok := h.filter(c)
	if !ok {
		return
	}
	result, err := h.reportService.InventorySummary(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// StockLevels godoc
// @Summary      Stock level per product
// @Tags         reports
// @Produce      json
// @Success      200 {object} APIResponse[[]report.StockLevel]
// @Security     BearerAuth
// @Router       /reports/stock-levels [get]
func (h *ReportHandler) StockLevels(c *gin.Context) {
	_, f, ok := h.filter(c)
	if !ok {
		return
	}
	result, err := h.reportService.StockLevels(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ExportStockLevels godoc
// @Summary      Stock levels as an Excel workbook
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        archive query bool false "Store the workbook and return a download link"
// @Success      200 {file} binary
// @Security     BearerAuth
// @Router       /reports/stock-levels/export [get]
func (h *ReportHandler) ExportStockLevels(c *gin.Context) {
	_, f, ok := h.filter(c)
	if !ok {
		return
	}
	levels, err := h.reportService.StockLevels(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.workbook(c, "stock-levels", f.PharmacyID, func() (*export.Workbook, error) {
		return export.StockLevels(levels)
	})
}

// Expiry godoc
// @Summary      Lots expiring within a horizon
// @Tags         reports
// @Produce      json
// @Param        days query int false "Horizon in days" default(180)
// @Success      200 {object} APIResponse[[]report.ExpiryEntry]
// @Security     BearerAuth
// @Router       /reports/expiry [get]
func (h *ReportHandler) Expiry(c *gin.Context) {
	q, f, ok := h.filter(c)
	if !ok {
		return
	}
	result, err := h.reportService.Expiry(c.Request.Context(), f, q.Days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ExportExpiry godoc
// @Summary      Expiry report as an Excel workbook
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        days query int false "Horizon in days" default(180)
// @Param        archive query bool false "Store the workbook and return a download link"
// @Success      200 {file} binary
// @Security     BearerAuth
// @Router       /reports/expiry/export [get]
func (h *ReportHandler) ExportExpiry(c *gin.Context) {
	q, f, ok := h.filter(c)
	if !ok {
		return
	}
	entries, err := h.reportService.Expiry(c.Request.Context(), f, q.Days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.workbook(c, "expiry", f.PharmacyID, func() (*export.Workbook, error) {
		return export.Expiry(entries)
	})
}

// InventoryMovement godoc
// @Summary      Stock movements with a per-product rollup
// @Tags         reports
// @Produce      json
// @Success      200 {object} APIResponse[report.InventoryMovement]
// @Security     BearerAuth
// @Router       /reports/inventory-movement [get]
func (h *ReportHandler) InventoryMovement(c *gin.Context) {
	_, f, ok := h.filter(c)
	if !ok {
		return
	}
	result, err := h.reportService.InventoryMovement(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// InventoryValuation godoc
// @Summary      Stock valued at cost and retail
// @Tags         reports
// @Produce      json
// @Success      200 {object} APIResponse[report.InventoryValuation]
// @Security     BearerAuth
// @Router       /reports/inventory-valuation [get]
func (h *ReportHandler) InventoryValuation(c *gin.Context) {
	_, f, ok := h.filter(c)
	if !ok {
		return
	}
	result, err := h.reportService.InventoryValuation(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ExportInventoryValuation godoc
// @Summary      Valuation as an Excel workbook
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        archive query bool false "Store the workbook and return a download link"
// @Success      200 {file} binary
// @Security     BearerAuth
// @Router       /reports/inventory-valuation/export [get]
func (h *ReportHandler) ExportInventoryValuation(c *gin.Context) {
	_, f, ok := h.filter(c)
	if !ok {
		return
	}
	valuation, err := h.reportService.InventoryValuation(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.workbook(c, "inventory-valuation", f.PharmacyID, func() (*export.Workbook, error) {
		return export.Valuation(valuation)
	})
}

// Sales godoc
// @Summary      Sales in the window with top products
// @Tags         reports
// @Produce      json
// @Success      200 {object} APIResponse[report.SalesReport]
// @Security     BearerAuth
// @Router       /reports/sales [get]
func (h *ReportHandler) Sales(c *gin.Context) {
	_, f, ok := h.filter(c)
	if !ok {
		return
	}
	result, err := h.reportService.Sales(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Purchases godoc
// @Summary      Purchases in the window with top suppliers
// @Tags         reports
// @Produce      json
// @Success      200 {object} APIResponse[report.PurchaseReport]
// @Security     BearerAuth
// @Router       /reports/purchases [get]
func (h *ReportHandler) Purchases(c *gin.Context) {
	_, f, ok := h.filter(c)
	if !ok {
		return
	}
	result, err := h.reportService.Purchases(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Financial godoc
// @Summary      Income and expenses by period
// @Tags         reports
// @Produce      json
// @Success      200 {object} APIResponse[report.FinancialReport]
// @Security     BearerAuth
// @Router       /reports/financial [get]
func (h *ReportHandler) Financial(c *gin.Context) {
	_, f, ok := h.filter(c)
	if !ok {
		return
	}
	result, err := h.reportService.Financial(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// workbook streams the export as an attachment, or with archive=true stores
// it and answers with a presigned link
func (h *ReportHandler) workbook(c *gin.Context, name string, pharmacyID uuid.UUID, build func() (*export.Workbook, error)) {
	archive := c.Query("archive") == "true"
	if archive && h.archive == nil {
		h.BadRequest(c, "export archive is not configured")
		return
	}

	wb, err := build()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer func() { _ = wb.Close() }()

	filename := fmt.Sprintf("%s-%s-%s.xlsx", name, pharmacyID.String()[:8], time.Now().UTC().Format("20060102"))
	if archive {
		var buf bytes.Buffer
		if _, err := wb.WriteTo(&buf); err != nil {
			h.HandleError(c, err)
			return
		}
		key := h.archive.Key(pharmacyID.String(), fmt.Sprintf("%s-%s.xlsx", name, time.Now().UTC().Format("20060102T150405")))
		obj, err := h.archive.Store(c.Request.Context(), key, export.ContentType, buf.Bytes())
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, obj)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", export.ContentType)
	c.Status(http.StatusOK)
	if _, err := wb.WriteTo(c.Writer); err != nil {
		_ = c.Error(err)
	}
}
