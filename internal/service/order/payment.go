package order

import (
	"context"
	"fmt"

	"toolhub-service/internal/domain/order"
	xerrors "toolhub-service/internal/pkg/errors"
	"toolhub-service/internal/pkg/gateway"

	"go.uber.org/zap"
)

// VerifyPayment settles a pending order from the gateway callback the
// client relays after paying. Every attempt is recorded, valid or not,
// before the result goes back to the caller. Re-verifying an already
// settled payment with the same payment id succeeds without changing
// anything.
func (s *OrderService) VerifyPayment(ctx context.Context, userID int64, userEmail string, req *order.VerifyPaymentRequest) (*order.Order, error) {
	o, err := s.orderRepo.FindByGatewayOrderID(ctx, req.GatewayOrderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, xerrors.ErrForbidden
	}

	verified := gateway.VerifySignature(
		req.GatewayOrderID, req.GatewayPaymentID, req.Signature, s.gateway.Secret(),
	)

	attempt := &order.PaymentAttempt{
		OrderID:          o.ID,
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		Verified:         verified,
	}
	// The attempt row is the audit trail; without it the verification
	// must not proceed.
	if err := s.orderRepo.RecordPaymentAttempt(ctx, attempt); err != nil {
		s.logger.Error("failed to record payment attempt",
			zap.Int64("order_id", o.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to record payment attempt: %w", err)
	}

	if !verified {
		s.logger.Warn("payment signature verification failed",
			zap.Int64("order_id", o.ID),
			zap.String("gateway_order_id", req.GatewayOrderID),
		)
		return nil, fmt.Errorf("%w: payment signature verification failed", xerrors.ErrUnauthorized)
	}

	// Idempotent re-verify of a settled payment
	if o.Status == order.StatusSuccess &&
		o.GatewayPaymentID.Valid && o.GatewayPaymentID.String == req.GatewayPaymentID {
		return o, nil
	}
	if o.Status != order.StatusPending {
		return nil, fmt.Errorf("%w: order is not pending", xerrors.ErrConflict)
	}

	if err := s.orderRepo.MarkVerified(ctx, o.ID, order.StatusSuccess, req.GatewayPaymentID); err != nil {
		return nil, err
	}
	o.Status = order.StatusSuccess
	o.GatewayPaymentID.String = req.GatewayPaymentID
	o.GatewayPaymentID.Valid = true

	if err := s.profiles.UpdatePlan(ctx, o.UserID, o.PlanName, o.PlanExpiryDate); err != nil {
		s.logger.Error("failed to apply plan to profile",
			zap.Int64("order_id", o.ID),
			zap.Error(err),
		)
		return nil, err
	}

	s.notifyPaymentStatus(o, userEmail)

	s.logger.Info("payment verified",
		zap.Int64("order_id", o.ID),
		zap.Int64("user_id", o.UserID),
		zap.String("gateway_payment_id", req.GatewayPaymentID),
	)

	return o, nil
}
