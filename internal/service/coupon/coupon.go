package coupon

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"toolhub-service/internal/domain/coupon"
	xerrors "toolhub-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// Repository is the persistence surface the coupon service needs.
type Repository interface {
	Create(ctx context.Context, c *coupon.Coupon) error
	FindByID(ctx context.Context, id int64) (*coupon.Coupon, error)
	FindActiveByCode(ctx context.Context, code string) (*coupon.Coupon, error)
	List(ctx context.Context, filters *coupon.CouponListFilters) ([]coupon.Coupon, int64, error)
	Update(ctx context.Context, id int64, c *coupon.Coupon) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
	GetStats(ctx context.Context) (*coupon.CouponStats, error)
}

type CouponService struct {
	couponRepo Repository
	logger     *zap.Logger
}

func NewCouponService(couponRepo Repository, logger *zap.Logger) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		logger:     logger,
	}
}

// CreateCoupon creates a new coupon. Codes are stored uppercase so
// redemption is case-insensitive.
func (s *CouponService) CreateCoupon(ctx context.Context, adminID int64, req *coupon.CreateCouponRequest) (*coupon.Coupon, error) {
	if req.DiscountType == coupon.DiscountTypePercentage && req.DiscountValue > 100 {
		return nil, fmt.Errorf("%w: percentage discount cannot exceed 100", xerrors.ErrInvalidInput)
	}
	if !req.ExpiresAt.After(time.Now()) {
		return nil, fmt.Errorf("%w: expiry must be in the future", xerrors.ErrInvalidInput)
	}

	c := &coupon.Coupon{
		Code:           strings.ToUpper(strings.TrimSpace(req.Code)),
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		MinOrderAmount: req.MinOrderAmount,
		ExpiresAt:      req.ExpiresAt,
		IsActive:       true,
		CreatedBy:      adminID,
	}
	if req.MaxDiscountAmount != nil {
		c.MaxDiscountAmount = sql.NullFloat64{Float64: *req.MaxDiscountAmount, Valid: true}
	}
	if req.MaxUses != nil {
		c.MaxUses = sql.NullInt32{Int32: *req.MaxUses, Valid: true}
	}

	if err := s.couponRepo.Create(ctx, c); err != nil {
		s.logger.Error("failed to create coupon", zap.Error(err))
		return nil, err
	}

	s.logger.Info("coupon created",
		zap.Int64("coupon_id", c.ID),
		zap.String("code", c.Code),
	)

	return c, nil
}

// Validate checks a coupon against an order amount and computes the
// discount it would yield. It does not consume a use; that happens
// when the order is created.
func (s *CouponService) Validate(ctx context.Context, code string, orderAmount float64) (*coupon.ValidateCouponResponse, error) {
	if orderAmount <= 0 {
		return nil, fmt.Errorf("%w: order amount must be positive", xerrors.ErrInvalidInput)
	}

	c, err := s.couponRepo.FindActiveByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid coupon code", xerrors.ErrNotFound)
		}
		return nil, err
	}

	if c.ExpiredAt(time.Now()) {
		return nil, xerrors.ErrExpired
	}
	if c.UsesExhausted() {
		return nil, xerrors.ErrUsageLimitReached
	}
	if orderAmount < c.MinOrderAmount {
		return nil, fmt.Errorf("%w: order amount below coupon minimum of %.2f",
			xerrors.ErrInvalidInput, c.MinOrderAmount)
	}

	discount := c.Discount(orderAmount)

	return &coupon.ValidateCouponResponse{
		Coupon:         c,
		DiscountAmount: discount,
		FinalAmount:    orderAmount - discount,
	}, nil
}

// GetCoupon retrieves a coupon by ID
func (s *CouponService) GetCoupon(ctx context.Context, id int64) (*coupon.Coupon, error) {
	return s.couponRepo.FindByID(ctx, id)
}

// ListCoupons retrieves coupons with filters (admin view)
func (s *CouponService) ListCoupons(ctx context.Context, filters *coupon.CouponListFilters) (*coupon.CouponListResponse, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}
	if filters.PageSize > 100 {
		filters.PageSize = 100
	}

	coupons, total, err := s.couponRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}

	totalPages := int(total) / filters.PageSize
	if int(total)%filters.PageSize > 0 {
		totalPages++
	}

	return &coupon.CouponListResponse{
		Coupons:    coupons,
		Total:      total,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalPages: totalPages,
	}, nil
}

// UpdateCoupon updates a coupon's editable fields. The code and
// discount type are immutable once issued.
func (s *CouponService) UpdateCoupon(ctx context.Context, id int64, req *coupon.UpdateCouponRequest) (*coupon.Coupon, error) {
	c, err := s.couponRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DiscountValue != nil {
		if c.DiscountType == coupon.DiscountTypePercentage && *req.DiscountValue > 100 {
			return nil, fmt.Errorf("%w: percentage discount cannot exceed 100", xerrors.ErrInvalidInput)
		}
		c.DiscountValue = *req.DiscountValue
	}
	if req.MaxDiscountAmount != nil {
		c.MaxDiscountAmount = sql.NullFloat64{Float64: *req.MaxDiscountAmount, Valid: true}
	}
	if req.MinOrderAmount != nil {
		c.MinOrderAmount = *req.MinOrderAmount
	}
	if req.ExpiresAt != nil {
		c.ExpiresAt = *req.ExpiresAt
	}
	if req.MaxUses != nil {
		if int(*req.MaxUses) < c.CurrentUses {
			return nil, fmt.Errorf("%w: max uses cannot drop below current uses (%d)",
				xerrors.ErrInvalidInput, c.CurrentUses)
		}
		c.MaxUses = sql.NullInt32{Int32: *req.MaxUses, Valid: true}
	}

	if err := s.couponRepo.Update(ctx, id, c); err != nil {
		s.logger.Error("failed to update coupon", zap.Error(err))
		return nil, err
	}

	s.logger.Info("coupon updated", zap.Int64("coupon_id", id))

	return s.couponRepo.FindByID(ctx, id)
}

// ActivateCoupon makes a coupon redeemable again
func (s *CouponService) ActivateCoupon(ctx context.Context, id int64) error {
	if err := s.couponRepo.SetActive(ctx, id, true); err != nil {
		return err
	}

	s.logger.Info("coupon activated", zap.Int64("coupon_id", id))
	return nil
}

// DeactivateCoupon stops further redemptions
func (s *CouponService) DeactivateCoupon(ctx context.Context, id int64) error {
	if err := s.couponRepo.SetActive(ctx, id, false); err != nil {
		return err
	}

	s.logger.Info("coupon deactivated", zap.Int64("coupon_id", id))
	return nil
}

// DeleteCoupon removes an unused coupon
func (s *CouponService) DeleteCoupon(ctx context.Context, id int64) error {
	if err := s.couponRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("coupon deleted", zap.Int64("coupon_id", id))
	return nil
}

// GetStats retrieves coupon statistics
func (s *CouponService) GetStats(ctx context.Context) (*coupon.CouponStats, error) {
	return s.couponRepo.GetStats(ctx)
}
