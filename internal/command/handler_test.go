package command

import (
	"context"
	"testing"

	"github.com/example/ec-storefront/internal/apperr"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/domain/user"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	customer = Actor{UserID: "user-1", Name: "John"}
	stranger = Actor{UserID: "user-2", Name: "Jane"}
	admin    = Actor{UserID: "admin-1", Name: "Admin", IsAdmin: true}
)

func newTestHandler() (*Handler, *mocks.MockStore, *mocks.MockPublisher) {
	ds := mocks.NewMockStore()
	pub := mocks.NewMockPublisher()

	productSvc := product.NewService(ds, pub, product.DefaultMaxAttempts)
	orderSvc := order.NewService(ds, pub, order.Policy{})
	userSvc := user.NewService(ds, pub)

	return NewHandler(productSvc, orderSvc, userSvc), ds, pub
}

func validOrder() CreateOrder {
	return CreateOrder{
		OrderItems:      []order.Item{{Name: "Airpods", Qty: 1, Price: 89.99, Product: "p1"}},
		ShippingAddress: order.ShippingAddress{Address: "1 Main St", City: "Boston", PostalCode: "02101", Country: "USA"},
		PaymentMethod:   "PayPal",
		ItemsPrice:      89.99,
		TotalPrice:      89.99,
	}
}

// ============================================
// Order Command Tests
// ============================================

func TestHandler_CreateOrder_Success(t *testing.T) {
	handler, ds, pub := newTestHandler()

	o, err := handler.CreateOrder(context.Background(), customer, validOrder())

	require.NoError(t, err)
	assert.Equal(t, customer.UserID, o.User)
	assert.Len(t, ds.InsertCalls, 1)
	assert.Equal(t, []string{order.EventOrderCreated}, pub.EventTypes())
}

func TestHandler_CreateOrder_NoActor(t *testing.T) {
	handler, ds, _ := newTestHandler()

	_, err := handler.CreateOrder(context.Background(), Actor{}, validOrder())

	assert.ErrorIs(t, err, ErrNoActor)
	assert.Empty(t, ds.InsertCalls)
}

func TestHandler_CreateOrder_EmptyItems(t *testing.T) {
	handler, _, _ := newTestHandler()
	cmd := validOrder()
	cmd.OrderItems = nil

	_, err := handler.CreateOrder(context.Background(), customer, cmd)

	assert.ErrorIs(t, err, order.ErrEmptyOrder)
}

func TestHandler_PayOrder_ByOwner(t *testing.T) {
	handler, _, _ := newTestHandler()
	ctx := context.Background()
	created, err := handler.CreateOrder(ctx, customer, validOrder())
	require.NoError(t, err)

	cmd := PayOrder{OrderID: created.ID, ID: "PAY-1", Status: "COMPLETED", UpdateTime: "2024-01-01T00:00:00Z"}
	cmd.Payer.EmailAddress = "john@example.com"
	paid, err := handler.PayOrder(ctx, customer, cmd)

	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.Equal(t, order.PaymentResult{
		ID: "PAY-1", Status: "COMPLETED", UpdateTime: "2024-01-01T00:00:00Z", EmailAddress: "john@example.com",
	}, *paid.PaymentResult)
}

func TestHandler_PayOrder_ByAdmin(t *testing.T) {
	handler, _, _ := newTestHandler()
	ctx := context.Background()
	created, err := handler.CreateOrder(ctx, customer, validOrder())
	require.NoError(t, err)

	_, err = handler.PayOrder(ctx, admin, PayOrder{OrderID: created.ID, ID: "PAY-1"})

	assert.NoError(t, err)
}

func TestHandler_PayOrder_ByStranger(t *testing.T) {
	handler, ds, _ := newTestHandler()
	ctx := context.Background()
	created, err := handler.CreateOrder(ctx, customer, validOrder())
	require.NoError(t, err)

	_, err = handler.PayOrder(ctx, stranger, PayOrder{OrderID: created.ID})

	assert.ErrorIs(t, err, ErrNotOwner)
	assert.ErrorIs(t, err, apperr.Forbidden)
	assert.Empty(t, ds.ReplaceCalls)
}

func TestHandler_PayOrder_NotFound(t *testing.T) {
	handler, _, _ := newTestHandler()

	_, err := handler.PayOrder(context.Background(), customer, PayOrder{OrderID: "missing"})

	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestHandler_DeliverOrder_AdminOnly(t *testing.T) {
	handler, _, pub := newTestHandler()
	ctx := context.Background()
	created, err := handler.CreateOrder(ctx, customer, validOrder())
	require.NoError(t, err)

	_, err = handler.DeliverOrder(ctx, customer, DeliverOrder{OrderID: created.ID})
	assert.ErrorIs(t, err, ErrAdminOnly)

	delivered, err := handler.DeliverOrder(ctx, admin, DeliverOrder{OrderID: created.ID})
	require.NoError(t, err)
	assert.True(t, delivered.IsDelivered)
	assert.Equal(t, []string{order.EventOrderCreated, order.EventOrderDelivered}, pub.EventTypes())
}

// ============================================
// Product Command Tests
// ============================================

func TestHandler_CreateSampleProduct(t *testing.T) {
	handler, _, _ := newTestHandler()
	ctx := context.Background()

	_, err := handler.CreateSampleProduct(ctx, customer)
	assert.ErrorIs(t, err, ErrAdminOnly)

	p, err := handler.CreateSampleProduct(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, product.SampleName, p.Name)
	assert.Equal(t, admin.UserID, p.User)
}

func TestHandler_UpdateProduct(t *testing.T) {
	handler, _, _ := newTestHandler()
	ctx := context.Background()
	sample, err := handler.CreateSampleProduct(ctx, admin)
	require.NoError(t, err)

	cmd := UpdateProduct{ProductID: sample.ID, Name: "Airpods", Price: 89.99, Description: "Wireless", CountInStock: 3}
	_, err = handler.UpdateProduct(ctx, customer, cmd)
	assert.ErrorIs(t, err, ErrAdminOnly)

	updated, err := handler.UpdateProduct(ctx, admin, cmd)
	require.NoError(t, err)
	assert.Equal(t, "Airpods", updated.Name)
	assert.Equal(t, "Wireless", updated.Description)
}

func TestHandler_DeleteProduct(t *testing.T) {
	handler, ds, _ := newTestHandler()
	ctx := context.Background()
	ds.Seed(store.CollectionProducts, "p1", product.Product{ID: "p1"})

	assert.ErrorIs(t, handler.DeleteProduct(ctx, customer, DeleteProduct{ProductID: "p1"}), ErrAdminOnly)
	require.NoError(t, handler.DeleteProduct(ctx, admin, DeleteProduct{ProductID: "p1"}))
	assert.ErrorIs(t, handler.DeleteProduct(ctx, admin, DeleteProduct{ProductID: "p1"}), product.ErrProductNotFound)
}

func TestHandler_CreateReview_UsesActorName(t *testing.T) {
	handler, ds, _ := newTestHandler()
	ctx := context.Background()
	ds.Seed(store.CollectionProducts, "p1", product.Product{ID: "p1"})

	p, err := handler.CreateReview(ctx, customer, CreateReview{ProductID: "p1", Rating: 5, Comment: "Great"})

	require.NoError(t, err)
	require.Len(t, p.Reviews, 1)
	assert.Equal(t, "John", p.Reviews[0].Name)
	assert.Equal(t, "user-1", p.Reviews[0].User)

	_, err = handler.CreateReview(ctx, customer, CreateReview{ProductID: "p1", Rating: 4, Comment: "Again"})
	assert.ErrorIs(t, err, product.ErrAlreadyReviewed)
}

// ============================================
// User Command Tests
// ============================================

func TestHandler_RegisterAndLogin(t *testing.T) {
	handler, _, _ := newTestHandler()
	ctx := context.Background()

	registered, err := handler.RegisterUser(ctx, RegisterUser{Name: "John", Email: "john@example.com", Password: "password123"})
	require.NoError(t, err)

	u, err := handler.Login(ctx, Login{Email: "john@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)

	_, err = handler.Login(ctx, Login{Email: "john@example.com", Password: "nope-nope"})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
}
