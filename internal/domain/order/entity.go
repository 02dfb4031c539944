package order

import (
	"database/sql"
	"time"
)

type PaymentMethod string

const (
	PaymentMethodGateway PaymentMethod = "gateway"
	PaymentMethodFree    PaymentMethod = "free"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

type Order struct {
	ID             int64  `json:"id" db:"id"`
	OrderReference string `json:"order_reference" db:"order_reference"`

	// Parties
	UserID   int64  `json:"user_id" db:"user_id"`
	PlanID   int64  `json:"plan_id" db:"plan_id"`
	PlanName string `json:"plan_name" db:"plan_name"`

	// Amounts
	OriginalAmount float64 `json:"original_amount" db:"original_amount"`
	DiscountAmount float64 `json:"discount_amount" db:"discount_amount"`
	FinalAmount    float64 `json:"final_amount" db:"final_amount"`

	// Coupon snapshot
	CouponID   sql.NullInt64  `json:"coupon_id,omitempty" db:"coupon_id"`
	CouponCode sql.NullString `json:"coupon_code,omitempty" db:"coupon_code"`

	// Payment
	PaymentMethod    PaymentMethod  `json:"payment_method" db:"payment_method"`
	GatewayOrderID   sql.NullString `json:"gateway_order_id,omitempty" db:"gateway_order_id"`
	GatewayPaymentID sql.NullString `json:"gateway_payment_id,omitempty" db:"gateway_payment_id"`
	Status           Status         `json:"status" db:"status"`

	// Plan window
	PlanActivationDate time.Time    `json:"plan_activation_date" db:"plan_activation_date"`
	PlanExpiryDate     sql.NullTime `json:"plan_expiry_date,omitempty" db:"plan_expiry_date"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PaymentAttempt records every verification attempt, successful or not.
type PaymentAttempt struct {
	ID               int64     `json:"id" db:"id"`
	OrderID          int64     `json:"order_id" db:"order_id"`
	GatewayOrderID   string    `json:"gateway_order_id" db:"gateway_order_id"`
	GatewayPaymentID string    `json:"gateway_payment_id" db:"gateway_payment_id"`
	Verified         bool      `json:"verified" db:"verified"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

type OrderStats struct {
	TotalOrders      int64   `json:"total_orders"`
	SuccessfulOrders int64   `json:"successful_orders"`
	PendingOrders    int64   `json:"pending_orders"`
	FailedOrders     int64   `json:"failed_orders"`
	TotalRevenue     float64 `json:"total_revenue"`
}
