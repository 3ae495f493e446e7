package order

import "time"

const (
	EventOrderCreated   = "OrderCreated"
	EventOrderPaid      = "OrderPaid"
	EventOrderDelivered = "OrderDelivered"
)

type OrderCreated struct {
	OrderID         string          `json:"order_id"`
	UserID          string          `json:"user_id"`
	Items           []Item          `json:"items"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	TotalPrice      float64         `json:"total_price"`
	CreatedAt       time.Time       `json:"created_at"`
}

type OrderPaid struct {
	OrderID       string        `json:"order_id"`
	UserID        string        `json:"user_id"`
	PaymentResult PaymentResult `json:"payment_result"`
	TotalPrice    float64       `json:"total_price"`
	PaidAt        time.Time     `json:"paid_at"`
}

type OrderDelivered struct {
	OrderID     string    `json:"order_id"`
	UserID      string    `json:"user_id"`
	DeliveredAt time.Time `json:"delivered_at"`
}
