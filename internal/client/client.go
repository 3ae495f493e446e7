// Package client calls the storefront API and reports each outcome as a
// state action, so results can be dispatched straight into a state.Store.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/example/ec-storefront/internal/client/state"
	"github.com/example/ec-storefront/internal/command"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/query"
)

// Client is an HTTP client for the storefront API. It remembers the token
// of the last successful login.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return http.StatusText(e.Status)
	}
	return e.Message
}

// Login authenticates and stores the token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) state.Action {
	var info state.UserInfo
	if err := c.do(ctx, http.MethodPost, "/api/users/login", command.Login{Email: email, Password: password}, &info); err != nil {
		return state.Fail(state.UserLoginFail, err)
	}
	c.setToken(info.Token)
	return state.Success(state.UserLoginSuccess, info)
}

// Register creates an account and logs in with it.
func (c *Client) Register(ctx context.Context, name, email, password string) state.Action {
	var info state.UserInfo
	body := command.RegisterUser{Name: name, Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/users", body, &info); err != nil {
		return state.Fail(state.UserLoginFail, err)
	}
	c.setToken(info.Token)
	return state.Success(state.UserLoginSuccess, info)
}

// Logout ends the server session and returns the actions that clear every
// per-user slice of state.
func (c *Client) Logout(ctx context.Context) []state.Action {
	_ = c.do(ctx, http.MethodPost, "/api/users/logout", nil, nil)
	c.setToken("")
	return state.LogoutActions()
}

func (c *Client) ListProducts(ctx context.Context, keyword string, page int) state.Action {
	q := url.Values{}
	q.Set("keyword", keyword)
	q.Set("pageNumber", strconv.Itoa(page))

	var result query.ProductPage
	if err := c.do(ctx, http.MethodGet, "/api/products?"+q.Encode(), nil, &result); err != nil {
		return state.Fail(state.ProductListFail, err)
	}
	return state.Success(state.ProductListSuccess, result)
}

func (c *Client) CreateReview(ctx context.Context, productID string, rating int, comment string) state.Action {
	body := command.CreateReview{Rating: rating, Comment: comment}
	if err := c.do(ctx, http.MethodPost, "/api/products/"+url.PathEscape(productID)+"/reviews", body, nil); err != nil {
		return state.Fail(state.ProductCreateReviewFail, err)
	}
	return state.Success(state.ProductCreateReviewSuccess, nil)
}

// CreateOrder places an order for the cart contents.
func (c *Client) CreateOrder(ctx context.Context, cart state.CartState, taxPrice, shippingPrice float64) state.Action {
	itemsPrice := cart.ItemsPrice()
	body := command.CreateOrder{
		OrderItems:      cart.OrderItems(),
		ShippingAddress: cart.ShippingAddress,
		PaymentMethod:   cart.PaymentMethod,
		ItemsPrice:      itemsPrice,
		TaxPrice:        taxPrice,
		ShippingPrice:   shippingPrice,
		TotalPrice:      itemsPrice + taxPrice + shippingPrice,
	}

	var created order.Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", body, &created); err != nil {
		return state.Fail(state.OrderCreateFail, err)
	}
	return state.Success(state.OrderCreateSuccess, created)
}

func (c *Client) OrderDetails(ctx context.Context, orderID string) state.Action {
	var details query.OrderDetails
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(orderID), nil, &details); err != nil {
		return state.Fail(state.OrderDetailsFail, err)
	}
	return state.Success(state.OrderDetailsSuccess, details)
}

// PayOrder forwards the payment provider's result.
func (c *Client) PayOrder(ctx context.Context, orderID string, result order.PaymentResult) state.Action {
	body := command.PayOrder{ID: result.ID, Status: result.Status, UpdateTime: result.UpdateTime}
	body.Payer.EmailAddress = result.EmailAddress
	if err := c.do(ctx, http.MethodPut, "/api/orders/"+url.PathEscape(orderID)+"/pay", body, nil); err != nil {
		return state.Fail(state.OrderPayFail, err)
	}
	return state.Success(state.OrderPaySuccess, nil)
}

func (c *Client) DeliverOrder(ctx context.Context, orderID string) state.Action {
	if err := c.do(ctx, http.MethodPut, "/api/orders/"+url.PathEscape(orderID)+"/deliver", nil, nil); err != nil {
		return state.Fail(state.OrderDeliverFail, err)
	}
	return state.Success(state.OrderDeliverSuccess, nil)
}

func (c *Client) ListMyOrders(ctx context.Context) state.Action {
	var orders []order.Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/myorders", nil, &orders); err != nil {
		return state.Fail(state.OrderListMyFail, err)
	}
	return state.Success(state.OrderListMySuccess, orders)
}

func (c *Client) ListOrders(ctx context.Context) state.Action {
	var orders []query.OrderDetails
	if err := c.do(ctx, http.MethodGet, "/api/orders", nil, &orders); err != nil {
		return state.Fail(state.OrderListFail, err)
	}
	return state.Success(state.OrderListSuccess, orders)
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(data)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		if json.NewDecoder(resp.Body).Decode(&msg) == nil {
			apiErr.Message = msg.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
