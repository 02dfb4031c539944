package order

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"toolhub-service/internal/domain/coupon"
	"toolhub-service/internal/domain/order"
	"toolhub-service/internal/domain/plan"
	wstypes "toolhub-service/internal/domain/websocket"
	xerrors "toolhub-service/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Repository is the persistence surface the order service needs.
type Repository interface {
	Create(ctx context.Context, o *order.Order) error
	FindByID(ctx context.Context, id int64) (*order.Order, error)
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*order.Order, error)
	ListByUser(ctx context.Context, userID int64, filters *order.OrderListFilters) ([]order.Order, int64, error)
	MarkVerified(ctx context.Context, id int64, status order.Status, gatewayPaymentID string) error
	RecordPaymentAttempt(ctx context.Context, a *order.PaymentAttempt) error
	GetStats(ctx context.Context) (*order.OrderStats, error)
}

// PlanReader resolves the plan being purchased.
type PlanReader interface {
	FindByID(ctx context.Context, id int64) (*plan.Plan, error)
}

// CouponValidator evaluates a coupon against an order amount.
type CouponValidator interface {
	Validate(ctx context.Context, code string, orderAmount float64) (*coupon.ValidateCouponResponse, error)
}

// GatewayClient registers paid orders with the payment gateway.
type GatewayClient interface {
	CreateOrder(ctx context.Context, amount float64, currency, receipt string) (string, error)
	Secret() string
}

// ProfileUpdater writes the purchased plan onto the buyer's profile.
type ProfileUpdater interface {
	UpdatePlan(ctx context.Context, id int64, planName string, expiry sql.NullTime) error
}

// Notifier pushes payment results to connected clients.
type Notifier interface {
	BroadcastPaymentStatus(identityID int64, status *wstypes.PaymentStatusData)
}

type OrderService struct {
	orderRepo Repository
	planRepo  PlanReader
	coupons   CouponValidator
	gateway   GatewayClient
	profiles  ProfileUpdater
	notifier  Notifier
	logger    *zap.Logger
}

func NewOrderService(
	orderRepo Repository,
	planRepo PlanReader,
	coupons CouponValidator,
	gateway GatewayClient,
	profiles ProfileUpdater,
	notifier Notifier,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		planRepo:  planRepo,
		coupons:   coupons,
		gateway:   gateway,
		profiles:  profiles,
		notifier:  notifier,
		logger:    logger,
	}
}

// Checkout prices a plan purchase, applies an optional coupon, and
// either settles the order immediately (fully discounted) or registers
// it with the payment gateway for the client to complete.
func (s *OrderService) Checkout(ctx context.Context, userID int64, userEmail string, req *order.CheckoutRequest) (*order.CheckoutResponse, error) {
	p, err := s.planRepo.FindByID(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, fmt.Errorf("%w: plan is not available", xerrors.ErrNotFound)
	}

	o := &order.Order{
		OrderReference: ulid.Make().String(),
		UserID:         userID,
		PlanID:         p.ID,
		PlanName:       p.Name,
		OriginalAmount: p.Price,
		FinalAmount:    p.Price,
	}

	if req.CouponCode != "" {
		result, err := s.coupons.Validate(ctx, req.CouponCode, p.Price)
		if err != nil {
			return nil, err
		}
		o.DiscountAmount = result.DiscountAmount
		o.FinalAmount = result.FinalAmount
		o.CouponID = sql.NullInt64{Int64: result.Coupon.ID, Valid: true}
		o.CouponCode = sql.NullString{String: result.Coupon.Code, Valid: true}
	}

	now := time.Now()
	o.PlanActivationDate = now
	o.PlanExpiryDate = p.ExpiryFrom(now)

	if o.FinalAmount <= 0 {
		return s.settleFreeOrder(ctx, o, userEmail)
	}

	gatewayOrderID, err := s.gateway.CreateOrder(ctx, o.FinalAmount, string(p.Currency), o.OrderReference)
	if err != nil {
		s.logger.Error("gateway order creation failed",
			zap.String("order_reference", o.OrderReference),
			zap.Error(err),
		)
		return nil, err
	}

	o.PaymentMethod = order.PaymentMethodGateway
	o.GatewayOrderID = sql.NullString{String: gatewayOrderID, Valid: true}
	o.Status = order.StatusPending

	if err := s.orderRepo.Create(ctx, o); err != nil {
		s.logger.Error("failed to persist order", zap.Error(err))
		return nil, err
	}

	s.logger.Info("order created",
		zap.Int64("order_id", o.ID),
		zap.Int64("user_id", userID),
		zap.String("gateway_order_id", gatewayOrderID),
		zap.Float64("amount_due", o.FinalAmount),
	)

	return &order.CheckoutResponse{
		Order:          o,
		GatewayOrderID: gatewayOrderID,
		AmountDue:      o.FinalAmount,
		Currency:       string(p.Currency),
	}, nil
}

// settleFreeOrder completes a fully discounted purchase without the
// gateway round-trip.
func (s *OrderService) settleFreeOrder(ctx context.Context, o *order.Order, userEmail string) (*order.CheckoutResponse, error) {
	o.PaymentMethod = order.PaymentMethodFree
	o.Status = order.StatusSuccess
	o.FinalAmount = 0

	if err := s.orderRepo.Create(ctx, o); err != nil {
		s.logger.Error("failed to persist free order", zap.Error(err))
		return nil, err
	}

	if err := s.profiles.UpdatePlan(ctx, o.UserID, o.PlanName, o.PlanExpiryDate); err != nil {
		s.logger.Error("failed to apply plan to profile",
			zap.Int64("order_id", o.ID),
			zap.Error(err),
		)
		return nil, err
	}

	s.notifyPaymentStatus(o, userEmail)

	s.logger.Info("free order settled",
		zap.Int64("order_id", o.ID),
		zap.Int64("user_id", o.UserID),
		zap.String("plan", o.PlanName),
	)

	return &order.CheckoutResponse{
		Order:     o,
		AmountDue: 0,
	}, nil
}

// notifyPaymentStatus pushes the result to the buyer's open sockets.
// Delivery is best-effort; the order outcome never depends on it.
func (s *OrderService) notifyPaymentStatus(o *order.Order, userEmail string) {
	if s.notifier == nil {
		return
	}
	s.notifier.BroadcastPaymentStatus(o.UserID, &wstypes.PaymentStatusData{
		OrderID:        o.ID,
		OrderReference: o.OrderReference,
		Status:         string(o.Status),
		UserEmail:      userEmail,
		PlanName:       o.PlanName,
	})
}

// GetOrder retrieves an order, enforcing ownership for non-admins
func (s *OrderService) GetOrder(ctx context.Context, userID int64, isAdmin bool, orderID int64) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.UserID != userID {
		return nil, xerrors.ErrForbidden
	}

	return o, nil
}

// ListOrders retrieves a user's order history
func (s *OrderService) ListOrders(ctx context.Context, userID int64, filters *order.OrderListFilters) (*order.OrderListResponse, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}
	if filters.PageSize > 100 {
		filters.PageSize = 100
	}

	orders, total, err := s.orderRepo.ListByUser(ctx, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	totalPages := int(total) / filters.PageSize
	if int(total)%filters.PageSize > 0 {
		totalPages++
	}

	return &order.OrderListResponse{
		Orders:     orders,
		Total:      total,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalPages: totalPages,
	}, nil
}

// GetStats retrieves order statistics
func (s *OrderService) GetStats(ctx context.Context) (*order.OrderStats, error) {
	return s.orderRepo.GetStats(ctx)
}
