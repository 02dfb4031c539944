package coupon

import "time"

type CreateCouponRequest struct {
	Code              string       `json:"code" binding:"required,min=3,max=50"`
	DiscountType      DiscountType `json:"discount_type" binding:"required,oneof=percentage fixed"`
	DiscountValue     float64      `json:"discount_value" binding:"required,gt=0"`
	MaxDiscountAmount *float64     `json:"max_discount_amount" binding:"omitempty,gt=0"`
	MinOrderAmount    float64      `json:"min_order_amount" binding:"min=0"`
	ExpiresAt         time.Time    `json:"expires_at" binding:"required"`
	MaxUses           *int32       `json:"max_uses" binding:"omitempty,min=1"`
}

type UpdateCouponRequest struct {
	DiscountValue     *float64   `json:"discount_value" binding:"omitempty,gt=0"`
	MaxDiscountAmount *float64   `json:"max_discount_amount" binding:"omitempty,gt=0"`
	MinOrderAmount    *float64   `json:"min_order_amount" binding:"omitempty,min=0"`
	ExpiresAt         *time.Time `json:"expires_at"`
	MaxUses           *int32     `json:"max_uses" binding:"omitempty,min=1"`
}

type ValidateCouponRequest struct {
	Code        string  `json:"code" binding:"required"`
	OrderAmount float64 `json:"order_amount" binding:"required,gt=0"`
}

type ValidateCouponResponse struct {
	Coupon         *Coupon `json:"coupon"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalAmount    float64 `json:"final_amount"`
}

type CouponListFilters struct {
	IsActive *bool  `form:"is_active"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

type CouponListResponse struct {
	Coupons    []Coupon `json:"coupons"`
	Total      int64    `json:"total"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalPages int      `json:"total_pages"`
}
