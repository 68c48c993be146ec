package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inventory_api/internal/sales"
)

// salesHandler holds the sales service and implements HTTP handlers for sales operations.
type salesHandler struct {
	salesService *sales.Service
	logger       *zap.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(salesService *sales.Service, logger *zap.Logger) *salesHandler {
	return &salesHandler{
		salesService: salesService,
		logger:       logger,
	}
}

// saleErrorStatus maps service errors onto HTTP statuses. Unknown errors are
// never echoed back to the client.
func saleErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, sales.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, sales.ErrProductNotFound), errors.Is(err, sales.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, sales.ErrSizeNotAvailable), errors.Is(err, sales.ErrInsufficientStock):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, "failed to process sale"
	}
}

// handleCreateSale handles the POST /sales endpoint.
func (h *salesHandler) handleCreateSale(ctx *gin.Context) {
	var req sales.CreateSaleRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	sale, err := h.salesService.CreateSale(ctx.Request.Context(), req)
	if err != nil {
		status, msg := saleErrorStatus(err)
		h.logger.Warn("sale rejected", zap.Int("status", status), zap.Error(err))
		ctx.JSON(status, gin.H{"error": msg})
		return
	}

	ctx.JSON(http.StatusCreated, sale)
}

// handleGetSales handles the GET /sales endpoint.
func (h *salesHandler) handleGetSales(ctx *gin.Context) {
	salesResults, err := h.salesService.GetSales(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve sales"})
		return
	}

	ctx.JSON(http.StatusOK, salesResults)
}

func (h *salesHandler) handleGetSale(ctx *gin.Context) {
	sale, err := h.salesService.GetSale(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		status, msg := saleErrorStatus(err)
		ctx.JSON(status, gin.H{"error": msg})
		return
	}

	ctx.JSON(http.StatusOK, sale)
}
