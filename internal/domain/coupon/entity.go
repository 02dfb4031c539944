package coupon

import (
	"database/sql"
	"time"
)

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

type Coupon struct {
	ID   int64  `json:"id" db:"id"`
	Code string `json:"code" db:"code"`

	// Discount
	DiscountType      DiscountType    `json:"discount_type" db:"discount_type"`
	DiscountValue     float64         `json:"discount_value" db:"discount_value"`
	MaxDiscountAmount sql.NullFloat64 `json:"max_discount_amount,omitempty" db:"max_discount_amount"`
	MinOrderAmount    float64         `json:"min_order_amount" db:"min_order_amount"`

	// Validity
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	IsActive  bool      `json:"is_active" db:"is_active"`

	// Usage limits
	MaxUses     sql.NullInt32 `json:"max_uses,omitempty" db:"max_uses"`
	CurrentUses int           `json:"current_uses" db:"current_uses"`

	// Metadata
	CreatedBy int64     `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ExpiredAt reports whether the redemption window has passed.
func (c *Coupon) ExpiredAt(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// UsesExhausted reports whether the usage cap has been consumed.
func (c *Coupon) UsesExhausted() bool {
	return c.MaxUses.Valid && c.CurrentUses >= int(c.MaxUses.Int32)
}

// IsExpired reports whether the coupon can no longer be redeemed,
// either by date or by exhausting its usage cap.
func (c *Coupon) IsExpired(now time.Time) bool {
	return c.ExpiredAt(now) || c.UsesExhausted()
}

// Discount computes the discount for an order amount. Percentage
// discounts are capped at MaxDiscountAmount when set; no discount
// ever exceeds the order amount itself.
func (c *Coupon) Discount(orderAmount float64) float64 {
	var discount float64

	switch c.DiscountType {
	case DiscountTypePercentage:
		discount = orderAmount * c.DiscountValue / 100
		if c.MaxDiscountAmount.Valid && discount > c.MaxDiscountAmount.Float64 {
			discount = c.MaxDiscountAmount.Float64
		}
	case DiscountTypeFixed:
		discount = c.DiscountValue
	}

	if discount > orderAmount {
		discount = orderAmount
	}

	return discount
}

type CouponStats struct {
	TotalCoupons  int64 `json:"total_coupons"`
	ActiveCoupons int64 `json:"active_coupons"`
	TotalUses     int64 `json:"total_uses"`
}
