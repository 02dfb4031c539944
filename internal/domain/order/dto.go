package order

type CheckoutRequest struct {
	PlanID     int64  `json:"plan_id" binding:"required"`
	CouponCode string `json:"coupon_code"`
}

// CheckoutResponse carries what the client needs to complete payment
// with the gateway. GatewayOrderID is empty for free orders.
type CheckoutResponse struct {
	Order          *Order  `json:"order"`
	GatewayOrderID string  `json:"gateway_order_id,omitempty"`
	AmountDue      float64 `json:"amount_due"`
	Currency       string  `json:"currency"`
}

type VerifyPaymentRequest struct {
	GatewayOrderID   string `json:"gateway_order_id" binding:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" binding:"required"`
	Signature        string `json:"signature" binding:"required"`
}

type OrderListFilters struct {
	Status   *Status `form:"status"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}

type OrderListResponse struct {
	Orders     []Order `json:"orders"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	TotalPages int     `json:"total_pages"`
}
