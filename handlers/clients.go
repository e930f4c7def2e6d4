package handlers

import (
	"net/http"

	"storepos/controllers"
	"storepos/middleware"
	"storepos/service"

	"github.com/gin-gonic/gin"
)

// GetCustomer looks a customer up by phone for the customer fields.
func (h *POSHandler) GetCustomer(c *gin.Context) {
	ctx, cancel := h.upstream(c)
	defer cancel()

	found, err := h.svc.LookupCustomer(ctx, middleware.CashierID(c), c.Query("phone"))
	if err != nil {
		controllers.RespondError(c, h.logger, err)
		return
	}
	if !found.Found {
		c.JSON(http.StatusOK, gin.H{"customer": found, "message": "New customer, will be created during sale"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": found})
}

// SettleCredit pays down a customer's old credit without a sale.
func (h *POSHandler) SettleCredit(c *gin.Context) {
	var in service.SettleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	ctx, cancel := h.upstream(c)
	defer cancel()

	res, err := h.svc.SettleCredit(ctx, middleware.CashierID(c), in)
	if err != nil {
		controllers.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
