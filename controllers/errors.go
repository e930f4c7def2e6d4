package controllers

import (
	"context"
	"errors"
	"net/http"

	"storepos/api"
	"storepos/checkout"
	"storepos/service"
	"storepos/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var badRequest = []error{
	checkout.ErrInvalidQuantity,
	checkout.ErrInvalidReturnQuantity,
	checkout.ErrEmptyCode,
	checkout.ErrUnknownPaymentMode,
	checkout.ErrNegativeAmount,
	checkout.ErrInvalidCreditPortion,
	checkout.ErrInvalidSettleAmount,
	checkout.ErrUnknownChannel,
	service.ErrPhoneTooShort,
	service.ErrPhoneRequired,
	service.ErrInvalidReturn,
	service.ErrInvalidLine,
}

var conflict = []error{
	store.ErrVersionConflict,
	checkout.ErrCheckoutInFlight,
	checkout.ErrVerificationInFlight,
	checkout.ErrNotVerifying,
	checkout.ErrAlreadyVerified,
	checkout.ErrSessionClosed,
}

var unprocessable = []error{
	checkout.ErrOutOfStock,
	checkout.ErrNotEnoughStock,
	checkout.ErrUnknownSize,
	checkout.ErrLineNotFound,
	checkout.ErrNoReservation,
	checkout.ErrReservationUnverified,
	checkout.ErrEmptyCart,
	checkout.ErrCustomerRequired,
	checkout.ErrSettleNotAllowed,
	checkout.ErrNothingToSettle,
}

// HTTPStatus maps a service error to the status the till expects.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, api.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, api.ErrRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, api.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return http.StatusBadGateway
	case isAny(err, badRequest):
		return http.StatusBadRequest
	case isAny(err, conflict):
		return http.StatusConflict
	case isAny(err, unprocessable):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// RespondError writes {"error": msg}. Internal errors are logged and hidden.
func RespondError(c *gin.Context, logger *zap.Logger, err error) {
	status := HTTPStatus(err)
	msg := api.Message(err)
	switch status {
	case http.StatusNotFound:
		msg = "Checkout session not found"
	case http.StatusBadGateway:
		msg = api.ErrUnavailable.Error()
	case http.StatusInternalServerError:
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		msg = "Internal server error"
	}
	c.JSON(status, gin.H{"error": msg})
}
