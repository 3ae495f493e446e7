package state

import "github.com/example/ec-storefront/internal/domain/order"

// CartItem is one line of the cart. Product is the product id and the
// identity of the line.
type CartItem struct {
	Product      string  `json:"product"`
	Name         string  `json:"name"`
	Image        string  `json:"image"`
	Price        float64 `json:"price"`
	CountInStock int     `json:"countInStock"`
	Qty          int     `json:"qty"`
}

type CartState struct {
	CartItems       []CartItem            `json:"cartItems"`
	ShippingAddress order.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                `json:"paymentMethod"`
}

// OrderItems converts the cart lines into order items.
func (s CartState) OrderItems() []order.Item {
	items := make([]order.Item, len(s.CartItems))
	for i, c := range s.CartItems {
		items[i] = order.Item{Name: c.Name, Qty: c.Qty, Image: c.Image, Price: c.Price, Product: c.Product}
	}
	return items
}

// ItemsPrice sums price times quantity over all lines.
func (s CartState) ItemsPrice() float64 {
	var total float64
	for _, c := range s.CartItems {
		total += c.Price * float64(c.Qty)
	}
	return total
}

// ReduceCart adds an item by replacing the line with the same product in
// place, or appending when there is none.
func ReduceCart(s CartState, a Action) CartState {
	switch a.Type {
	case CartAddItem:
		item, ok := a.Payload.(CartItem)
		if !ok {
			return s
		}
		items := make([]CartItem, 0, len(s.CartItems)+1)
		replaced := false
		for _, existing := range s.CartItems {
			if existing.Product == item.Product {
				items = append(items, item)
				replaced = true
				continue
			}
			items = append(items, existing)
		}
		if !replaced {
			items = append(items, item)
		}
		s.CartItems = items
		return s

	case CartRemoveItem:
		id, ok := a.Payload.(string)
		if !ok {
			return s
		}
		items := make([]CartItem, 0, len(s.CartItems))
		for _, existing := range s.CartItems {
			if existing.Product != id {
				items = append(items, existing)
			}
		}
		s.CartItems = items
		return s

	case CartSaveShippingAddress:
		if addr, ok := a.Payload.(order.ShippingAddress); ok {
			s.ShippingAddress = addr
		}
		return s

	case CartSavePaymentMethod:
		if method, ok := a.Payload.(string); ok {
			s.PaymentMethod = method
		}
		return s

	case CartReset:
		return CartState{CartItems: []CartItem{}}
	}
	return s
}
