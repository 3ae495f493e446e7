package command

import "github.com/example/ec-storefront/internal/domain/order"

// Actor is the authenticated caller of a command.
type Actor struct {
	UserID  string
	Name    string
	IsAdmin bool
}

// Order Commands
type CreateOrder struct {
	OrderItems      []order.Item          `json:"orderItems"`
	ShippingAddress order.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                `json:"paymentMethod"`
	ItemsPrice      float64               `json:"itemsPrice"`
	TaxPrice        float64               `json:"taxPrice"`
	ShippingPrice   float64               `json:"shippingPrice"`
	TotalPrice      float64               `json:"totalPrice"`
}

// PayOrder carries the payment provider's capture response.
type PayOrder struct {
	OrderID    string `json:"-"`
	ID         string `json:"id"`
	Status     string `json:"status"`
	UpdateTime string `json:"update_time"`
	Payer      struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
}

type DeliverOrder struct {
	OrderID string `json:"-"`
}

// Product Commands
type UpdateProduct struct {
	ProductID    string  `json:"-"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Description  string  `json:"description"`
	Image        string  `json:"image"`
	Brand        string  `json:"brand"`
	Category     string  `json:"category"`
	CountInStock int     `json:"countInStock"`
}

type DeleteProduct struct {
	ProductID string `json:"-"`
}

type CreateReview struct {
	ProductID string `json:"-"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// User Commands
type RegisterUser struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
