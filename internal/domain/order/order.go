package order

import (
	"time"

	"github.com/example/ec-storefront/internal/apperr"
)

const AggregateType = "Order"

var (
	ErrOrderNotFound          = apperr.New(apperr.CodeNotFound, "Order not found")
	ErrEmptyOrder             = apperr.New(apperr.CodeValidation, "No order items")
	ErrInvalidItem            = apperr.New(apperr.CodeValidation, "order items need a product, a quantity of at least 1 and a non-negative price")
	ErrInvalidShippingAddress = apperr.New(apperr.CodeValidation, "shipping address, city, postal code and country are required")
	ErrPaymentMethodRequired  = apperr.New(apperr.CodeValidation, "payment method is required")
	ErrNegativePrice          = apperr.New(apperr.CodeValidation, "prices must not be negative")
	ErrOrderAlreadyPaid       = apperr.New(apperr.CodeConflict, "Order is already paid")
	ErrOrderAlreadyDelivered  = apperr.New(apperr.CodeConflict, "Order is already delivered")
	ErrOrderNotPaid           = apperr.New(apperr.CodeValidation, "Order must be paid before delivery")
	ErrOrderBusy              = apperr.New(apperr.CodeConflict, "Order is being updated by another request, please try again")
)

// Item is one purchased line, copied from the product at checkout.
type Item struct {
	Name    string  `json:"name" bson:"name"`
	Qty     int     `json:"qty" bson:"qty"`
	Image   string  `json:"image" bson:"image"`
	Price   float64 `json:"price" bson:"price"`
	Product string  `json:"product" bson:"product"`
}

type ShippingAddress struct {
	Address    string `json:"address" bson:"address"`
	City       string `json:"city" bson:"city"`
	PostalCode string `json:"postalCode" bson:"postalCode"`
	Country    string `json:"country" bson:"country"`
}

func (a ShippingAddress) complete() bool {
	return a.Address != "" && a.City != "" && a.PostalCode != "" && a.Country != ""
}

// PaymentResult is the payment provider's confirmation, stored as received.
type PaymentResult struct {
	ID           string `json:"id" bson:"id"`
	Status       string `json:"status" bson:"status"`
	UpdateTime   string `json:"update_time" bson:"update_time"`
	EmailAddress string `json:"email_address" bson:"email_address"`
}

// Order is the stored order document.
type Order struct {
	ID              string          `json:"_id" bson:"_id"`
	User            string          `json:"user" bson:"user"`
	OrderItems      []Item          `json:"orderItems" bson:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress" bson:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod" bson:"paymentMethod"`
	PaymentResult   *PaymentResult  `json:"paymentResult,omitempty" bson:"paymentResult,omitempty"`
	ItemsPrice      float64         `json:"itemsPrice" bson:"itemsPrice"`
	TaxPrice        float64         `json:"taxPrice" bson:"taxPrice"`
	ShippingPrice   float64         `json:"shippingPrice" bson:"shippingPrice"`
	TotalPrice      float64         `json:"totalPrice" bson:"totalPrice"`
	IsPaid          bool            `json:"isPaid" bson:"isPaid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
	IsDelivered     bool            `json:"isDelivered" bson:"isDelivered"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty" bson:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt" bson:"updatedAt"`
	Version         int64           `json:"__v" bson:"__v"`
}

// Policy holds the configurable rules of the order lifecycle.
type Policy struct {
	RequirePaymentBeforeDelivery bool
}

// Paid returns a copy of o marked as paid with result.
func (o Order) Paid(result PaymentResult, at time.Time) (Order, error) {
	if o.IsPaid {
		return o, ErrOrderAlreadyPaid
	}
	paidAt := at
	o.IsPaid = true
	o.PaidAt = &paidAt
	o.PaymentResult = &result
	o.UpdatedAt = at
	return o, nil
}

// Delivered returns a copy of o marked as delivered.
func (o Order) Delivered(at time.Time, policy Policy) (Order, error) {
	if o.IsDelivered {
		return o, ErrOrderAlreadyDelivered
	}
	if policy.RequirePaymentBeforeDelivery && !o.IsPaid {
		return o, ErrOrderNotPaid
	}
	deliveredAt := at
	o.IsDelivered = true
	o.DeliveredAt = &deliveredAt
	o.UpdatedAt = at
	return o, nil
}

// OwnedBy reports whether userID placed the order.
func (o Order) OwnedBy(userID string) bool {
	return o.User == userID
}
