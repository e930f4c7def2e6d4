package service

import (
	"context"
	"errors"

	"storepos/api"
	"storepos/checkout"

	"go.uber.org/zap"
)

// VerifyReservation checks the reservation code with the storefront and
// applies the advance as a discount. The session is marked as verifying for
// the duration of the call so a second submission is rejected.
//
// On a storefront rejection the session returns to unverified with the
// storefront's message, and the rejection is returned alongside the session.
func (s *POSService) VerifyReservation(ctx context.Context, cashierID, id, code string) (*checkout.Session, error) {
	var reservationID int64
	_, err := s.mutate(ctx, cashierID, id, func(sess *checkout.Session) error {
		if err := sess.BeginVerification(code); err != nil {
			return err
		}
		reservationID = sess.Reservation.ReservationID
		return nil
	})
	if err != nil {
		return nil, err
	}

	advance, callErr := s.front.VerifyReservation(ctx, reservationID, code)
	callErr = s.upstream(cashierID, callErr)

	wctx, cancel := detached(ctx)
	defer cancel()
	sess, err := s.settle(wctx, cashierID, id, func(sess *checkout.Session) error {
		if callErr != nil {
			return sess.Reservation.Fail(api.Message(callErr))
		}
		return sess.Reservation.Confirm(advance, s.advancePerUnit, s.now())
	})
	if errors.Is(err, checkout.ErrNotVerifying) {
		s.logger.Warn("dropping stale verification result", zap.String("session_id", id))
	}

	switch {
	case callErr == nil && err == nil:
		s.metrics.Verification("verified")
		s.logger.Info("reservation verified",
			zap.String("session_id", id),
			zap.Int64("reservation_id", reservationID),
			zap.String("discount", sess.Reservation.DiscountAmount.String()))
	case errors.Is(callErr, api.ErrRejected):
		s.metrics.Verification("rejected")
	default:
		s.metrics.Verification("error")
	}

	if err != nil {
		return nil, err
	}
	return sess, callErr
}
