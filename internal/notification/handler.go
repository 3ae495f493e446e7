package notification

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/user"
	"github.com/example/ec-storefront/internal/email"
	"github.com/example/ec-storefront/internal/event"
	"github.com/example/ec-storefront/internal/infrastructure/store"
)

// Handler processes events for sending notifications
type Handler struct {
	sender email.Sender
	store  store.DocumentStore
}

// NewHandler creates a new notification handler
func NewHandler(sender email.Sender, ds store.DocumentStore) *Handler {
	return &Handler{
		sender: sender,
		store:  ds,
	}
}

// HandleEvent processes an event from Kafka. Events other than order
// creation and delivery are ignored.
func (h *Handler) HandleEvent(ctx context.Context, e event.Event) error {
	switch e.EventType {
	case order.EventOrderCreated:
		return h.handleOrderCreated(ctx, e)
	case order.EventOrderDelivered:
		return h.handleOrderDelivered(ctx, e)
	}
	return nil
}

func (h *Handler) handleOrderCreated(ctx context.Context, e event.Event) error {
	var created order.OrderCreated
	if err := e.Decode(&created); err != nil {
		return fmt.Errorf("decode %s: %w", e.EventType, err)
	}

	log.Printf("[Notifier] Processing OrderCreated event for order %s, user %s", created.OrderID, created.UserID)

	customer, ok := h.lookupUser(ctx, created.UserID)
	if !ok {
		return nil
	}

	items := make([]email.OrderItem, len(created.Items))
	for i, item := range created.Items {
		name := item.Name
		if name == "" {
			name = item.Product
		}
		items[i] = email.OrderItem{Name: name, Qty: item.Qty, Price: item.Price}
	}

	a := created.ShippingAddress
	summary := email.OrderSummary{
		OrderID:      created.OrderID,
		CustomerName: customer.Name,
		Items:        items,
		TotalPrice:   created.TotalPrice,
		ShipTo:       fmt.Sprintf("%s, %s %s, %s", a.Address, a.City, a.PostalCode, a.Country),
	}
	if err := h.sender.SendOrderConfirmation(customer.Email, summary); err != nil {
		log.Printf("[Notifier] Failed to send email to %s: %v", customer.Email, err)
		return err
	}

	log.Printf("[Notifier] Order confirmation email sent to %s for order %s", customer.Email, created.OrderID)
	return nil
}

func (h *Handler) handleOrderDelivered(ctx context.Context, e event.Event) error {
	var delivered order.OrderDelivered
	if err := e.Decode(&delivered); err != nil {
		return fmt.Errorf("decode %s: %w", e.EventType, err)
	}

	customer, ok := h.lookupUser(ctx, delivered.UserID)
	if !ok {
		return nil
	}

	summary := email.OrderSummary{OrderID: delivered.OrderID, CustomerName: customer.Name}
	if err := h.sender.SendDeliveryNotice(customer.Email, summary); err != nil {
		log.Printf("[Notifier] Failed to send email to %s: %v", customer.Email, err)
		return err
	}

	log.Printf("[Notifier] Delivery notice sent to %s for order %s", customer.Email, delivered.OrderID)
	return nil
}

// lookupUser loads the recipient. Missing users are logged and skipped.
func (h *Handler) lookupUser(ctx context.Context, userID string) (user.User, bool) {
	var u user.User
	if err := h.store.Get(ctx, store.CollectionUsers, userID, &u); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Printf("[Notifier] User not found: %s", userID)
		} else {
			log.Printf("[Notifier] Error getting user %s: %v", userID, err)
		}
		return user.User{}, false
	}
	return u, true
}
