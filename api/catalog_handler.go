package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inventory_api/internal/catalog"
)

type catalogHandler struct {
	catalogService *catalog.Service
	logger         *zap.Logger
}

func NewCatalogHandler(catalogService *catalog.Service, logger *zap.Logger) *catalogHandler {
	return &catalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

func catalogErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, catalog.ErrInvalidProduct), errors.Is(err, catalog.ErrInvalidBranch):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, catalog.ErrProductNotFound), errors.Is(err, catalog.ErrBranchNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, catalog.ErrProductExists),
		errors.Is(err, catalog.ErrSizeNotAvailable),
		errors.Is(err, catalog.ErrNegativeStock):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func (h *catalogHandler) fail(ctx *gin.Context, err error) {
	status, msg := catalogErrorStatus(err)
	ctx.JSON(status, gin.H{"error": msg})
}

// bind decodes the JSON body and answers 400 on failure.
func (h *catalogHandler) bind(ctx *gin.Context, dst any) bool {
	if err := ctx.ShouldBindJSON(dst); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.String("path", ctx.FullPath()), zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return false
	}
	return true
}

func (h *catalogHandler) handleListProducts(ctx *gin.Context) {
	products, err := h.catalogService.ListProducts(ctx.Request.Context(), ctx.Query("search"))
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, products)
}

func (h *catalogHandler) handleGetProduct(ctx *gin.Context) {
	product, err := h.catalogService.GetProduct(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, product)
}

func (h *catalogHandler) handleCreateProduct(ctx *gin.Context) {
	var in catalog.ProductInput
	if !h.bind(ctx, &in) {
		return
	}

	product, err := h.catalogService.CreateProduct(ctx.Request.Context(), in)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, product)
}

func (h *catalogHandler) handleUpdateProduct(ctx *gin.Context) {
	var in catalog.ProductUpdate
	if !h.bind(ctx, &in) {
		return
	}

	product, err := h.catalogService.UpdateProduct(ctx.Request.Context(), ctx.Param("id"), in)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, product)
}

func (h *catalogHandler) handleDeleteProduct(ctx *gin.Context) {
	if err := h.catalogService.DeleteProduct(ctx.Request.Context(), ctx.Param("id")); err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (h *catalogHandler) handleAdjustStock(ctx *gin.Context) {
	var in catalog.StockAdjustment
	if !h.bind(ctx, &in) {
		return
	}

	size, err := h.catalogService.AdjustStock(ctx.Request.Context(), ctx.Param("id"), in)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, size)
}

func (h *catalogHandler) handleListBranches(ctx *gin.Context) {
	branches, err := h.catalogService.ListBranches(ctx.Request.Context())
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, branches)
}

func (h *catalogHandler) handleGetBranch(ctx *gin.Context) {
	branch, err := h.catalogService.GetBranch(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, branch)
}

func (h *catalogHandler) handleCreateBranch(ctx *gin.Context) {
	var in catalog.BranchInput
	if !h.bind(ctx, &in) {
		return
	}

	branch, err := h.catalogService.CreateBranch(ctx.Request.Context(), in)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, branch)
}

func (h *catalogHandler) handleUpdateBranch(ctx *gin.Context) {
	var in catalog.BranchInput
	if !h.bind(ctx, &in) {
		return
	}

	branch, err := h.catalogService.UpdateBranch(ctx.Request.Context(), ctx.Param("id"), in)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, branch)
}

func (h *catalogHandler) handleDeleteBranch(ctx *gin.Context) {
	if err := h.catalogService.DeleteBranch(ctx.Request.Context(), ctx.Param("id")); err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "branch deleted"})
}
