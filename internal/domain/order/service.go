package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/ec-storefront/internal/event"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/google/uuid"
)

// maxWriteAttempts bounds the reload-and-retry loop on version conflicts.
const maxWriteAttempts = 5

// CreateInput is the checkout payload.
type CreateInput struct {
	Items           []Item
	ShippingAddress ShippingAddress
	PaymentMethod   string
	ItemsPrice      float64
	TaxPrice        float64
	ShippingPrice   float64
	TotalPrice      float64
}

func (in CreateInput) validate() error {
	if len(in.Items) == 0 {
		return ErrEmptyOrder
	}
	for _, item := range in.Items {
		if item.Product == "" || item.Qty < 1 || item.Price < 0 {
			return ErrInvalidItem
		}
	}
	if !in.ShippingAddress.complete() {
		return ErrInvalidShippingAddress
	}
	if in.PaymentMethod == "" {
		return ErrPaymentMethodRequired
	}
	if in.ItemsPrice < 0 || in.TaxPrice < 0 || in.ShippingPrice < 0 || in.TotalPrice < 0 {
		return ErrNegativePrice
	}
	return nil
}

type Service struct {
	store     store.DocumentStore
	publisher event.Publisher
	policy    Policy
	now       func() time.Time
}

func NewService(ds store.DocumentStore, pub event.Publisher, policy Policy) *Service {
	return &Service{store: ds, publisher: pub, policy: policy, now: time.Now}
}

func (s *Service) Create(ctx context.Context, in CreateInput, ownerID string) (*Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	o := Order{
		ID:              uuid.New().String(),
		User:            ownerID,
		OrderItems:      in.Items,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		ItemsPrice:      in.ItemsPrice,
		TaxPrice:        in.TaxPrice,
		ShippingPrice:   in.ShippingPrice,
		TotalPrice:      in.TotalPrice,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.store.Insert(ctx, store.CollectionOrders, o.ID, o); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	s.publish(ctx, o, EventOrderCreated, OrderCreated{
		OrderID:         o.ID,
		UserID:          o.User,
		Items:           o.OrderItems,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		TotalPrice:      o.TotalPrice,
		CreatedAt:       now,
	})
	return &o, nil
}

// MarkPaid records result on the order. The result is not verified with
// the payment provider.
func (s *Service) MarkPaid(ctx context.Context, orderID string, result PaymentResult) (*Order, error) {
	o, err := s.update(ctx, orderID, func(current Order) (Order, error) {
		return current.Paid(result, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, *o, EventOrderPaid, OrderPaid{
		OrderID:       o.ID,
		UserID:        o.User,
		PaymentResult: result,
		TotalPrice:    o.TotalPrice,
		PaidAt:        *o.PaidAt,
	})
	return o, nil
}

func (s *Service) MarkDelivered(ctx context.Context, orderID string) (*Order, error) {
	o, err := s.update(ctx, orderID, func(current Order) (Order, error) {
		return current.Delivered(s.now(), s.policy)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, *o, EventOrderDelivered, OrderDelivered{
		OrderID:     o.ID,
		UserID:      o.User,
		DeliveredAt: *o.DeliveredAt,
	})
	return o, nil
}

// Get loads an order by id.
func (s *Service) Get(ctx context.Context, orderID string) (*Order, error) {
	var o Order
	if err := s.store.Get(ctx, store.CollectionOrders, orderID, &o); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order %s: %w", orderID, err)
	}
	return &o, nil
}

// update applies transition to the stored order with compare-and-swap,
// reloading on version conflicts.
func (s *Service) update(ctx context.Context, orderID string, transition func(Order) (Order, error)) (*Order, error) {
	var updated Order
	err := store.Retry(ctx, maxWriteAttempts, func() error {
		current, err := s.Get(ctx, orderID)
		if err != nil {
			return err
		}
		next, err := transition(*current)
		if err != nil {
			return err
		}
		next.Version = current.Version + 1

		if err := s.store.Replace(ctx, store.CollectionOrders, orderID, current.Version, next); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		updated = next
		return nil
	})
	if errors.Is(err, store.ErrVersionConflict) {
		return nil, fmt.Errorf("%w: %w", ErrOrderBusy, err)
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Service) publish(ctx context.Context, o Order, eventType string, data any) {
	if err := event.Emit(ctx, s.publisher, o.ID, AggregateType, eventType, o.Version, data); err != nil {
		log.Printf("[Order] Failed to publish %s for order %s: %v", eventType, o.ID, err)
	}
}
