package query

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/domain/user"
	"github.com/example/ec-storefront/internal/infrastructure/store"
)

const (
	DefaultPageSize  = 8
	DefaultTopLimit  = 3
	tracerName       = "github.com/example/ec-storefront/internal/query"
	productNameField = "name"
)

type Handler struct {
	store  store.DocumentStore
	tracer trace.Tracer
}

func NewHandler(ds store.DocumentStore) *Handler {
	return &Handler{store: ds, tracer: otel.Tracer(tracerName)}
}

// Products

// SearchProducts returns one page of products whose name contains keyword,
// ignoring case. Pages are numbered from 1; smaller values mean page 1.
func (h *Handler) SearchProducts(ctx context.Context, keyword string, page, pageSize int) (result *ProductPage, err error) {
	ctx, span := h.tracer.Start(ctx, "query.SearchProducts", trace.WithAttributes(
		attribute.String("keyword", keyword),
		attribute.Int("page", page),
	))
	defer func() { endSpan(span, err) }()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	q := store.Query{
		Search: &store.Search{Field: productNameField, Term: keyword},
		Limit:  int64(pageSize),
	}

	total, err := h.store.Count(ctx, store.CollectionProducts, q)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	result = &ProductPage{
		Products: []product.Product{},
		Page:     page,
		Pages:    pageCount(total, pageSize),
	}
	// Pages past the end are empty; checking first also keeps the skip
	// below total, so it cannot overflow.
	if page > result.Pages {
		return result, nil
	}

	q.Skip = int64(pageSize) * int64(page-1)
	if err := h.store.Find(ctx, store.CollectionProducts, q, &result.Products); err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	return result, nil
}

// TopProducts returns the best rated products, highest first.
func (h *Handler) TopProducts(ctx context.Context, limit int) (result []product.Product, err error) {
	ctx, span := h.tracer.Start(ctx, "query.TopProducts")
	defer func() { endSpan(span, err) }()

	if limit < 1 {
		limit = DefaultTopLimit
	}

	products := []product.Product{}
	q := store.Query{SortBy: "rating", Descending: true, Limit: int64(limit)}
	if err := h.store.Find(ctx, store.CollectionProducts, q, &products); err != nil {
		return nil, fmt.Errorf("find top products: %w", err)
	}
	return products, nil
}

func (h *Handler) GetProduct(ctx context.Context, id string) (result *product.Product, err error) {
	ctx, span := h.tracer.Start(ctx, "query.GetProduct", trace.WithAttributes(attribute.String("product.id", id)))
	defer func() { endSpan(span, err) }()

	var p product.Product
	if err := h.store.Get(ctx, store.CollectionProducts, id, &p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, product.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return &p, nil
}

// Orders

// GetOrder returns the order with its user's name and email populated.
func (h *Handler) GetOrder(ctx context.Context, id string) (result *OrderDetails, err error) {
	ctx, span := h.tracer.Start(ctx, "query.GetOrder", trace.WithAttributes(attribute.String("order.id", id)))
	defer func() { endSpan(span, err) }()

	var o order.Order
	if err := h.store.Get(ctx, store.CollectionOrders, id, &o); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}

	return &OrderDetails{Order: o, User: h.userSummary(ctx, o.User, true, nil)}, nil
}

func (h *Handler) ListOrdersByUser(ctx context.Context, userID string) (result []order.Order, err error) {
	ctx, span := h.tracer.Start(ctx, "query.ListOrdersByUser", trace.WithAttributes(attribute.String("user.id", userID)))
	defer func() { endSpan(span, err) }()

	orders := []order.Order{}
	q := store.Query{Equals: map[string]string{"user": userID}}
	if err := h.store.Find(ctx, store.CollectionOrders, q, &orders); err != nil {
		return nil, fmt.Errorf("find orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// ListAllOrders returns all orders (for admin use) with user id and name
// populated.
func (h *Handler) ListAllOrders(ctx context.Context) (result []OrderDetails, err error) {
	ctx, span := h.tracer.Start(ctx, "query.ListAllOrders")
	defer func() { endSpan(span, err) }()

	var orders []order.Order
	if err := h.store.Find(ctx, store.CollectionOrders, store.Query{}, &orders); err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}

	cache := make(map[string]*UserSummary)
	details := make([]OrderDetails, 0, len(orders))
	for _, o := range orders {
		details = append(details, OrderDetails{Order: o, User: h.userSummary(ctx, o.User, false, cache)})
	}
	return details, nil
}

// Users

func (h *Handler) GetUser(ctx context.Context, id string) (result *UserProfile, err error) {
	ctx, span := h.tracer.Start(ctx, "query.GetUser", trace.WithAttributes(attribute.String("user.id", id)))
	defer func() { endSpan(span, err) }()

	var u user.User
	if err := h.store.Get(ctx, store.CollectionUsers, id, &u); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	profile := NewUserProfile(u)
	return &profile, nil
}

// userSummary resolves a user reference. A user that cannot be loaded is
// reported by id only.
func (h *Handler) userSummary(ctx context.Context, userID string, withEmail bool, cache map[string]*UserSummary) *UserSummary {
	if s, ok := cache[userID]; ok {
		return s
	}

	summary := &UserSummary{ID: userID}
	var u user.User
	if err := h.store.Get(ctx, store.CollectionUsers, userID, &u); err != nil {
		log.Printf("[Query] Could not populate user %s: %v", userID, err)
	} else {
		summary.Name = u.Name
		if withEmail {
			summary.Email = u.Email
		}
	}

	if cache != nil {
		cache[userID] = summary
	}
	return summary
}

func pageCount(total int64, pageSize int) int {
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
