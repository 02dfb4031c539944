package coupon

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCouponDiscount(t *testing.T) {
	tests := []struct {
		name        string
		coupon      Coupon
		orderAmount float64
		want        float64
	}{
		{
			name: "percentage discount",
			coupon: Coupon{
				DiscountType:  DiscountTypePercentage,
				DiscountValue: 20,
			},
			orderAmount: 100,
			want:        20,
		},
		{
			name: "percentage capped at max discount",
			coupon: Coupon{
				DiscountType:      DiscountTypePercentage,
				DiscountValue:     20,
				MaxDiscountAmount: sql.NullFloat64{Float64: 30, Valid: true},
			},
			orderAmount: 200,
			want:        30,
		},
		{
			name: "percentage below cap keeps computed value",
			coupon: Coupon{
				DiscountType:      DiscountTypePercentage,
				DiscountValue:     10,
				MaxDiscountAmount: sql.NullFloat64{Float64: 50, Valid: true},
			},
			orderAmount: 200,
			want:        20,
		},
		{
			name: "fixed discount",
			coupon: Coupon{
				DiscountType:  DiscountTypeFixed,
				DiscountValue: 25,
			},
			orderAmount: 100,
			want:        25,
		},
		{
			name: "fixed discount never exceeds order amount",
			coupon: Coupon{
				DiscountType:  DiscountTypeFixed,
				DiscountValue: 50,
			},
			orderAmount: 30,
			want:        30,
		},
		{
			name: "full percentage discount",
			coupon: Coupon{
				DiscountType:  DiscountTypePercentage,
				DiscountValue: 100,
			},
			orderAmount: 499,
			want:        499,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.coupon.Discount(tt.orderAmount))
		})
	}
}

func TestCouponIsExpired(t *testing.T) {
	now := time.Now()

	t.Run("valid coupon", func(t *testing.T) {
		c := Coupon{ExpiresAt: now.Add(time.Hour)}
		assert.False(t, c.IsExpired(now))
	})

	t.Run("past expiry date", func(t *testing.T) {
		c := Coupon{ExpiresAt: now.Add(-time.Hour)}
		assert.True(t, c.IsExpired(now))
	})

	t.Run("exactly at expiry", func(t *testing.T) {
		c := Coupon{ExpiresAt: now}
		assert.True(t, c.IsExpired(now))
	})

	t.Run("usage cap exhausted", func(t *testing.T) {
		c := Coupon{
			ExpiresAt:   now.Add(time.Hour),
			MaxUses:     sql.NullInt32{Int32: 5, Valid: true},
			CurrentUses: 5,
		}
		assert.True(t, c.IsExpired(now))
	})

	t.Run("usage below cap", func(t *testing.T) {
		c := Coupon{
			ExpiresAt:   now.Add(time.Hour),
			MaxUses:     sql.NullInt32{Int32: 5, Valid: true},
			CurrentUses: 4,
		}
		assert.False(t, c.IsExpired(now))
	})

	t.Run("no usage cap", func(t *testing.T) {
		c := Coupon{
			ExpiresAt:   now.Add(time.Hour),
			CurrentUses: 1000,
		}
		assert.False(t, c.IsExpired(now))
	})
}
