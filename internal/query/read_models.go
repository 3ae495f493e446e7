package query

import (
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/domain/user"
)

// ProductPage is one page of a catalog search.
type ProductPage struct {
	Products []product.Product `json:"products"`
	Page     int               `json:"page"`
	Pages    int               `json:"pages"`
}

// UserSummary is the user reference populated into orders.
type UserSummary struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// OrderDetails is an order whose user id is replaced by the user summary.
type OrderDetails struct {
	order.Order
	User *UserSummary `json:"user"`
}

// UserProfile is the public view of a user. It never carries the password.
type UserProfile struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

// NewUserProfile builds the public view of u.
func NewUserProfile(u user.User) UserProfile {
	return UserProfile{ID: u.ID, Name: u.Name, Email: u.Email, IsAdmin: u.IsAdmin}
}
