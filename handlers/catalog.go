package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"storepos/api"
	"storepos/controllers"
	"storepos/middleware"
	"storepos/models"
	"storepos/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// POSHandler serves the till endpoints that are not bound to a session.
type POSHandler struct {
	svc     *service.POSService
	timeout time.Duration
	logger  *zap.Logger
}

func NewPOSHandler(svc *service.POSService, timeout time.Duration, logger *zap.Logger) *POSHandler {
	return &POSHandler{svc: svc, timeout: timeout, logger: logger}
}

func (h *POSHandler) upstream(c *gin.Context) (context.Context, context.CancelFunc) {
	ctx := api.WithToken(c.Request.Context(), middleware.AccessToken(c))
	return context.WithTimeout(ctx, h.timeout)
}

func (h *POSHandler) GetProducts(c *gin.Context) {
	ctx, cancel := h.upstream(c)
	defer cancel()

	products, err := h.svc.ListProducts(ctx, middleware.CashierID(c))
	if err != nil {
		controllers.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetSales lists the cashier's recent sales from the local journal.
func (h *POSHandler) GetSales(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	sales, err := h.svc.RecentSales(c.Request.Context(), middleware.CashierID(c), limit)
	if err != nil {
		controllers.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

// ProcessReturn returns units of an invoiced sale to stock.
func (h *POSHandler) ProcessReturn(c *gin.Context) {
	var req models.ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	ctx, cancel := h.upstream(c)
	defer cancel()

	msg, err := h.svc.ProcessSaleReturn(ctx, middleware.CashierID(c), req)
	if err != nil {
		controllers.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}
