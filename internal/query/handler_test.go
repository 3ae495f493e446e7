package query

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/example/ec-storefront/internal/apperr"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/domain/user"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueryHandler() (*Handler, *store.MemoryStore) {
	ds := store.NewMemoryStore()
	return NewHandler(ds), ds
}

func seedProducts(t *testing.T, ds *store.MemoryStore, products ...product.Product) {
	t.Helper()
	for _, p := range products {
		require.NoError(t, ds.Insert(context.Background(), store.CollectionProducts, p.ID, p))
	}
}

func seedUser(t *testing.T, ds *store.MemoryStore, u user.User) {
	t.Helper()
	require.NoError(t, ds.Insert(context.Background(), store.CollectionUsers, u.ID, u))
}

func seedOrder(t *testing.T, ds *store.MemoryStore, o order.Order) {
	t.Helper()
	require.NoError(t, ds.Insert(context.Background(), store.CollectionOrders, o.ID, o))
}

func ids(products []product.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

// ============================================
// Product Query Tests
// ============================================

func TestHandler_SearchProducts_SecondPage(t *testing.T) {
	handler, ds := newTestQueryHandler()
	seedProducts(t, ds,
		product.Product{ID: "p1", Name: "one"},
		product.Product{ID: "p2", Name: "two"},
		product.Product{ID: "p3", Name: "three"},
		product.Product{ID: "p4", Name: "four"},
	)

	page, err := handler.SearchProducts(context.Background(), "", 2, 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"p3", "p4"}, ids(page.Products))
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.Pages)
}

func TestHandler_SearchProducts_KeywordIsCaseInsensitive(t *testing.T) {
	handler, ds := newTestQueryHandler()
	seedProducts(t, ds,
		product.Product{ID: "p1", Name: "iPhone 11 Pro 256GB Memory"},
		product.Product{ID: "p2", Name: "Cannon EOS 80D DSLR Camera"},
		product.Product{ID: "p3", Name: "Amazon Echo Dot 3rd Generation"},
	)

	page, err := handler.SearchProducts(context.Background(), "IPHONE", 1, 8)

	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids(page.Products))
	assert.Equal(t, 1, page.Pages)
}

func TestHandler_SearchProducts_KeywordIsLiteral(t *testing.T) {
	handler, ds := newTestQueryHandler()
	seedProducts(t, ds,
		product.Product{ID: "p1", Name: "Sony Playstation 4 Pro"},
		product.Product{ID: "p2", Name: "Cable (2m)"},
	)

	page, err := handler.SearchProducts(context.Background(), "(2m)", 1, 8)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, ids(page.Products))

	page, err = handler.SearchProducts(context.Background(), ".*", 1, 8)
	require.NoError(t, err)
	assert.Empty(t, page.Products)
	assert.Equal(t, 0, page.Pages)
}

func TestHandler_SearchProducts_PageBelowOneIsFirstPage(t *testing.T) {
	handler, ds := newTestQueryHandler()
	seedProducts(t, ds, product.Product{ID: "p1", Name: "a"}, product.Product{ID: "p2", Name: "b"})

	page, err := handler.SearchProducts(context.Background(), "", 0, 1)

	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, []string{"p1"}, ids(page.Products))
	assert.Equal(t, 2, page.Pages)
}

func TestHandler_SearchProducts_DefaultPageSize(t *testing.T) {
	handler, ds := newTestQueryHandler()
	for i := 0; i < 10; i++ {
		seedProducts(t, ds, product.Product{ID: fmt.Sprintf("p%02d", i), Name: "item"})
	}

	page, err := handler.SearchProducts(context.Background(), "", 1, 0)

	require.NoError(t, err)
	assert.Len(t, page.Products, DefaultPageSize)
	assert.Equal(t, 2, page.Pages)
}

func TestHandler_SearchProducts_PastLastPage(t *testing.T) {
	handler, ds := newTestQueryHandler()
	seedProducts(t, ds,
		product.Product{ID: "p1", Name: "one"},
		product.Product{ID: "p2", Name: "two"},
		product.Product{ID: "p3", Name: "three"},
	)

	for _, requested := range []int{3, math.MaxInt/2 + 2, math.MaxInt} {
		page, err := handler.SearchProducts(context.Background(), "", requested, 2)

		require.NoError(t, err)
		assert.Empty(t, page.Products, "page %d", requested)
		assert.Equal(t, requested, page.Page)
		assert.Equal(t, 2, page.Pages)
	}
}

func TestHandler_SearchProducts_EmptyCatalog(t *testing.T) {
	handler, _ := newTestQueryHandler()

	page, err := handler.SearchProducts(context.Background(), "", 1, 8)

	require.NoError(t, err)
	assert.NotNil(t, page.Products)
	assert.Empty(t, page.Products)
	assert.Equal(t, 0, page.Pages)

	data, err := json.Marshal(page)
	require.NoError(t, err)
	assert.JSONEq(t, `{"products":[],"page":1,"pages":0}`, string(data))
}

func TestHandler_TopProducts(t *testing.T) {
	handler, ds := newTestQueryHandler()
	seedProducts(t, ds,
		product.Product{ID: "p1", Rating: 3},
		product.Product{ID: "p2", Rating: 5},
		product.Product{ID: "p3", Rating: 4.5},
		product.Product{ID: "p4", Rating: 1},
	)

	top, err := handler.TopProducts(context.Background(), 0)

	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p3", "p1"}, ids(top))
}

func TestHandler_TopProducts_FewerThanLimit(t *testing.T) {
	handler, ds := newTestQueryHandler()
	seedProducts(t, ds, product.Product{ID: "p1", Rating: 2})

	top, err := handler.TopProducts(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids(top))
}

func TestHandler_GetProduct(t *testing.T) {
	handler, ds := newTestQueryHandler()
	seedProducts(t, ds, product.Product{ID: "p1", Name: "Airpods"})

	p, err := handler.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Airpods", p.Name)

	_, err = handler.GetProduct(context.Background(), "missing")
	assert.ErrorIs(t, err, product.ErrProductNotFound)
	assert.ErrorIs(t, err, apperr.NotFound)
}

// ============================================
// Order Query Tests
// ============================================

func TestHandler_GetOrder_PopulatesUser(t *testing.T) {
	handler, ds := newTestQueryHandler()
	seedUser(t, ds, user.User{ID: "u1", Name: "John", Email: "john@example.com", Password: "hash"})
	seedOrder(t, ds, order.Order{ID: "o1", User: "u1", TotalPrice: 12.5, CreatedAt: time.Now()})

	details, err := handler.GetOrder(context.Background(), "o1")

	require.NoError(t, err)
	assert.Equal(t, &UserSummary{ID: "u1", Name: "John", Email: "john@example.com"}, details.User)

	data, err := json.Marshal(details)
	require.NoError(t, err)
	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, map[string]any{"_id": "u1", "name": "John", "email": "john@example.com"}, wire["user"])
	assert.Equal(t, 12.5, wire["totalPrice"])
	assert.NotContains(t, string(data), "hash")
}

func TestHandler_GetOrder_NotFound(t *testing.T) {
	handler, _ := newTestQueryHandler()

	_, err := handler.GetOrder(context.Background(), "missing")

	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestHandler_GetOrder_MissingUserKeepsID(t *testing.T) {
	handler, ds := newTestQueryHandler()
	seedOrder(t, ds, order.Order{ID: "o1", User: "deleted-user"})

	details, err := handler.GetOrder(context.Background(), "o1")

	require.NoError(t, err)
	assert.Equal(t, "deleted-user", details.User.ID)
	assert.Empty(t, details.User.Name)
}

func TestHandler_ListOrdersByUser(t *testing.T) {
	handler, ds := newTestQueryHandler()
	seedOrder(t, ds, order.Order{ID: "o1", User: "u1"})
	seedOrder(t, ds, order.Order{ID: "o2", User: "u2"})
	seedOrder(t, ds, order.Order{ID: "o3", User: "u1"})

	orders, err := handler.ListOrdersByUser(context.Background(), "u1")

	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "o1", orders[0].ID)
	assert.Equal(t, "o3", orders[1].ID)
}

func TestHandler_ListOrdersByUser_None(t *testing.T) {
	handler, _ := newTestQueryHandler()

	orders, err := handler.ListOrdersByUser(context.Background(), "u1")

	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestHandler_ListAllOrders_PopulatesNameOnly(t *testing.T) {
	handler, ds := newTestQueryHandler()
	seedUser(t, ds, user.User{ID: "u1", Name: "John", Email: "john@example.com"})
	seedUser(t, ds, user.User{ID: "u2", Name: "Jane", Email: "jane@example.com"})
	seedOrder(t, ds, order.Order{ID: "o1", User: "u1"})
	seedOrder(t, ds, order.Order{ID: "o2", User: "u2"})
	seedOrder(t, ds, order.Order{ID: "o3", User: "u1"})

	orders, err := handler.ListAllOrders(context.Background())

	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, &UserSummary{ID: "u1", Name: "John"}, orders[0].User)
	assert.Equal(t, &UserSummary{ID: "u2", Name: "Jane"}, orders[1].User)
	assert.Same(t, orders[0].User, orders[2].User)
}

// ============================================
// User Query Tests
// ============================================

func TestHandler_GetUser_OmitsPassword(t *testing.T) {
	handler, ds := newTestQueryHandler()
	seedUser(t, ds, user.User{ID: "u1", Name: "Admin", Email: "admin@example.com", Password: "secret-hash", IsAdmin: true})

	profile, err := handler.GetUser(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, UserProfile{ID: "u1", Name: "Admin", Email: "admin@example.com", IsAdmin: true}, *profile)

	_, err = handler.GetUser(context.Background(), "missing")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 0, pageCount(0, 8))
	assert.Equal(t, 1, pageCount(8, 8))
	assert.Equal(t, 2, pageCount(9, 8))
}
