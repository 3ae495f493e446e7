package command

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/example/ec-storefront/internal/apperr"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/domain/user"
)

const tracerName = "github.com/example/ec-storefront/internal/command"

var (
	ErrAdminOnly = apperr.New(apperr.CodeForbidden, "Not authorized as an admin")
	ErrNotOwner  = apperr.New(apperr.CodeForbidden, "Not authorized to access this order")
	ErrNoActor   = apperr.New(apperr.CodeUnauthorized, "Not authorized, no token")
)

type Handler struct {
	productSvc *product.Service
	orderSvc   *order.Service
	userSvc    *user.Service
	tracer     trace.Tracer
}

func NewHandler(
	productSvc *product.Service,
	orderSvc *order.Service,
	userSvc *user.Service,
) *Handler {
	return &Handler{
		productSvc: productSvc,
		orderSvc:   orderSvc,
		userSvc:    userSvc,
		tracer:     otel.Tracer(tracerName),
	}
}

// CreateOrder places an order owned by the actor.
func (h *Handler) CreateOrder(ctx context.Context, actor Actor, cmd CreateOrder) (o *order.Order, err error) {
	ctx, span := h.start(ctx, "command.CreateOrder", actor)
	defer func() { endSpan(span, err) }()

	if actor.UserID == "" {
		return nil, ErrNoActor
	}
	return h.orderSvc.Create(ctx, order.CreateInput{
		Items:           cmd.OrderItems,
		ShippingAddress: cmd.ShippingAddress,
		PaymentMethod:   cmd.PaymentMethod,
		ItemsPrice:      cmd.ItemsPrice,
		TaxPrice:        cmd.TaxPrice,
		ShippingPrice:   cmd.ShippingPrice,
		TotalPrice:      cmd.TotalPrice,
	}, actor.UserID)
}

// PayOrder marks an order paid. Only its owner or an admin may pay it.
func (h *Handler) PayOrder(ctx context.Context, actor Actor, cmd PayOrder) (o *order.Order, err error) {
	ctx, span := h.start(ctx, "command.PayOrder", actor, attribute.String("order.id", cmd.OrderID))
	defer func() { endSpan(span, err) }()

	current, err := h.orderSvc.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && !current.OwnedBy(actor.UserID) {
		return nil, ErrNotOwner
	}

	return h.orderSvc.MarkPaid(ctx, cmd.OrderID, order.PaymentResult{
		ID:           cmd.ID,
		Status:       cmd.Status,
		UpdateTime:   cmd.UpdateTime,
		EmailAddress: cmd.Payer.EmailAddress,
	})
}

// DeliverOrder marks an order delivered (admin only).
func (h *Handler) DeliverOrder(ctx context.Context, actor Actor, cmd DeliverOrder) (o *order.Order, err error) {
	ctx, span := h.start(ctx, "command.DeliverOrder", actor, attribute.String("order.id", cmd.OrderID))
	defer func() { endSpan(span, err) }()

	if !actor.IsAdmin {
		return nil, ErrAdminOnly
	}
	return h.orderSvc.MarkDelivered(ctx, cmd.OrderID)
}

// CreateSampleProduct inserts the placeholder product (admin only).
func (h *Handler) CreateSampleProduct(ctx context.Context, actor Actor) (p *product.Product, err error) {
	ctx, span := h.start(ctx, "command.CreateSampleProduct", actor)
	defer func() { endSpan(span, err) }()

	if !actor.IsAdmin {
		return nil, ErrAdminOnly
	}
	return h.productSvc.CreateSample(ctx, actor.UserID)
}

// UpdateProduct updates a product (admin only).
func (h *Handler) UpdateProduct(ctx context.Context, actor Actor, cmd UpdateProduct) (p *product.Product, err error) {
	ctx, span := h.start(ctx, "command.UpdateProduct", actor, attribute.String("product.id", cmd.ProductID))
	defer func() { endSpan(span, err) }()

	if !actor.IsAdmin {
		return nil, ErrAdminOnly
	}
	return h.productSvc.Update(ctx, cmd.ProductID, product.Fields{
		Name:         cmd.Name,
		Price:        cmd.Price,
		Description:  cmd.Description,
		Image:        cmd.Image,
		Brand:        cmd.Brand,
		Category:     cmd.Category,
		CountInStock: cmd.CountInStock,
	})
}

// DeleteProduct deletes a product (admin only).
func (h *Handler) DeleteProduct(ctx context.Context, actor Actor, cmd DeleteProduct) (err error) {
	ctx, span := h.start(ctx, "command.DeleteProduct", actor, attribute.String("product.id", cmd.ProductID))
	defer func() { endSpan(span, err) }()

	if !actor.IsAdmin {
		return ErrAdminOnly
	}
	return h.productSvc.Delete(ctx, cmd.ProductID)
}

// CreateReview adds the actor's review to a product.
func (h *Handler) CreateReview(ctx context.Context, actor Actor, cmd CreateReview) (p *product.Product, err error) {
	ctx, span := h.start(ctx, "command.CreateReview", actor, attribute.String("product.id", cmd.ProductID))
	defer func() { endSpan(span, err) }()

	if actor.UserID == "" {
		return nil, ErrNoActor
	}
	reviewer := product.Reviewer{ID: actor.UserID, Name: actor.Name}
	return h.productSvc.AddReview(ctx, cmd.ProductID, reviewer, cmd.Rating, cmd.Comment)
}

// RegisterUser creates a customer account.
func (h *Handler) RegisterUser(ctx context.Context, cmd RegisterUser) (u *user.User, err error) {
	ctx, span := h.tracer.Start(ctx, "command.RegisterUser")
	defer func() { endSpan(span, err) }()

	return h.userSvc.Register(ctx, cmd.Email, cmd.Password, cmd.Name)
}

// Login checks credentials and returns the matching user.
func (h *Handler) Login(ctx context.Context, cmd Login) (u *user.User, err error) {
	ctx, span := h.tracer.Start(ctx, "command.Login")
	defer func() { endSpan(span, err) }()

	return h.userSvc.Authenticate(ctx, cmd.Email, cmd.Password)
}

func (h *Handler) start(ctx context.Context, name string, actor Actor, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("actor.id", actor.UserID), attribute.Bool("actor.admin", actor.IsAdmin))
	return h.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
