package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"storepos/api"
	"storepos/checkout"
	"storepos/middleware"
	"storepos/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CashierController serves the till's checkout session.
type CashierController struct {
	svc     *service.POSService
	timeout time.Duration
	logger  *zap.Logger
}

func NewCashierController(svc *service.POSService, timeout time.Duration, logger *zap.Logger) *CashierController {
	return &CashierController{svc: svc, timeout: timeout, logger: logger}
}

// SessionView is a session with its derived totals.
type SessionView struct {
	*checkout.Session
	Totals checkout.Totals `json:"totals"`
}

func view(s *checkout.Session) SessionView {
	return SessionView{Session: s, Totals: s.Totals()}
}

// upstreamContext carries the cashier's token and the request deadline.
func upstreamContext(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx := api.WithToken(c.Request.Context(), middleware.AccessToken(c))
	return context.WithTimeout(ctx, timeout)
}

type openSessionRequest struct {
	Channel     string                    `json:"channel"`
	Reservation *checkout.ReservationSeed `json:"reservation"`
}

func (cc *CashierController) OpenSession(c *gin.Context) {
	var req openSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	channel, err := checkout.ParseChannel(req.Channel)
	if err != nil {
		RespondError(c, cc.logger, err)
		return
	}

	sess, err := cc.svc.Open(c.Request.Context(), middleware.CashierID(c), channel, req.Reservation)
	if err != nil {
		RespondError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusCreated, view(sess))
}

func (cc *CashierController) GetSession(c *gin.Context) {
	sess, err := cc.svc.Get(c.Request.Context(), middleware.CashierID(c), c.Param("id"))
	if err != nil {
		RespondError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusOK, view(sess))
}

func (cc *CashierController) DiscardSession(c *gin.Context) {
	if err := cc.svc.Discard(c.Request.Context(), middleware.CashierID(c), c.Param("id")); err != nil {
		RespondError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Checkout discarded"})
}

func (cc *CashierController) AddLine(c *gin.Context) {
	var in service.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	sess, err := cc.svc.AddLine(c.Request.Context(), middleware.CashierID(c), c.Param("id"), in)
	if err != nil {
		RespondError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusOK, view(sess))
}

type lineRequest struct {
	ProductID int64  `json:"product_id"`
	SizeLabel string `json:"size_label"`
	Quantity  int    `json:"quantity"`
}

func (cc *CashierController) UpdateLine(c *gin.Context) {
	var req lineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	sess, err := cc.svc.UpdateQuantity(c.Request.Context(), middleware.CashierID(c), c.Param("id"), req.ProductID, req.SizeLabel, req.Quantity)
	if err != nil {
		RespondError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusOK, view(sess))
}

func (cc *CashierController) RemoveLine(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Query("product_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product_id"})
		return
	}
	sess, err := cc.svc.RemoveLine(c.Request.Context(), middleware.CashierID(c), c.Param("id"), productID, c.Query("size_label"))
	if err != nil {
		RespondError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusOK, view(sess))
}

func (cc *CashierController) ReturnLine(c *gin.Context) {
	var req lineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	sess, left, err := cc.svc.ProcessReturn(c.Request.Context(), middleware.CashierID(c), c.Param("id"), req.ProductID, req.SizeLabel, req.Quantity)
	if err != nil {
		RespondError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": view(sess), "remaining": left})
}

type verifyRequest struct {
	Code string `json:"code"`
}

// VerifyReservation answers 422 with the storefront's message and the
// unverified session when the code is rejected.
func (cc *CashierController) VerifyReservation(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	ctx, cancel := upstreamContext(c, cc.timeout)
	defer cancel()

	sess, err := cc.svc.VerifyReservation(ctx, middleware.CashierID(c), c.Param("id"), req.Code)
	if err != nil {
		if sess != nil {
			c.JSON(HTTPStatus(err), gin.H{"error": api.Message(err), "session": view(sess)})
			return
		}
		RespondError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusOK, view(sess))
}

func (cc *CashierController) SetCustomer(c *gin.Context) {
	var in service.CustomerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	ctx, cancel := upstreamContext(c, cc.timeout)
	defer cancel()

	sess, found, err := cc.svc.SetCustomer(ctx, middleware.CashierID(c), c.Param("id"), in)
	if err != nil {
		RespondError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": view(sess), "customer": found})
}

func (cc *CashierController) SetPayment(c *gin.Context) {
	var in checkout.PaymentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	sess, split, err := cc.svc.PreviewPayment(c.Request.Context(), middleware.CashierID(c), c.Param("id"), in)
	if err != nil {
		RespondError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": view(sess), "payment": split, "ledger": checkout.Reconcile(split)})
}

func (cc *CashierController) Checkout(c *gin.Context) {
	ctx, cancel := upstreamContext(c, cc.timeout)
	defer cancel()

	res, err := cc.svc.Checkout(ctx, middleware.CashierID(c), c.Param("id"))
	if err != nil {
		RespondError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}
