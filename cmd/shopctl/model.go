package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/ec-storefront/internal/client"
	"github.com/example/ec-storefront/internal/client/state"
	"github.com/example/ec-storefront/internal/domain/order"
)

const requestTimeout = 10 * time.Second

// actionMsg carries the SUCCESS or FAIL action of a finished API call.
type actionMsg struct {
	actions []state.Action
}

type checkout struct {
	address       order.ShippingAddress
	paymentMethod string
	taxRate       float64
	shippingPrice float64
}

type model struct {
	api      *client.Client
	store    *state.Store
	root     state.Root
	checkout checkout

	keyword  string
	page     int
	selected int
	status   string
}

func newModel(api *client.Client, store *state.Store, keyword string, co checkout) model {
	store.Dispatch(state.Action{Type: state.CartSaveShippingAddress, Payload: co.address})
	root := store.Dispatch(state.Action{Type: state.CartSavePaymentMethod, Payload: co.paymentMethod})
	return model{
		api:      api,
		store:    store,
		root:     root,
		checkout: co,
		keyword:  keyword,
		page:     1,
		status:   "Ready",
	}
}

func (m model) Init() tea.Cmd {
	return m.request(state.ProductListRequest, func(ctx context.Context) state.Action {
		return m.api.ListProducts(ctx, m.keyword, m.page)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	case actionMsg:
		for _, a := range msg.actions {
			m.root = m.store.Dispatch(a)
			if a.Error != "" {
				m.status = fmt.Sprintf("%s: %s", a.Type, a.Error)
			} else {
				m.status = string(a.Type)
			}
		}
		if m.selected >= len(m.root.ProductList.Products) {
			m.selected = 0
		}
	}
	return m, nil
}

func (m model) handleKey(key string) (tea.Model, tea.Cmd) {
	products := m.root.ProductList.Products
	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up":
		if m.selected > 0 {
			m.selected--
		}
	case "down":
		if m.selected < len(products)-1 {
			m.selected++
		}
	case "right", "left":
		next := m.page + 1
		if key == "left" {
			next = m.page - 1
		}
		if next < 1 || next > m.root.ProductList.Pages {
			return m, nil
		}
		m.page = next
		cmd := m.request(state.ProductListRequest, func(ctx context.Context) state.Action {
			return m.api.ListProducts(ctx, m.keyword, next)
		})
		return m, cmd
	case "a":
		if len(products) == 0 {
			return m, nil
		}
		p := products[m.selected]
		qty := 1
		for _, item := range m.root.Cart.CartItems {
			if item.Product == p.ID {
				qty = item.Qty + 1
			}
		}
		if qty > p.CountInStock {
			m.status = fmt.Sprintf("Only %d of %s in stock", p.CountInStock, p.Name)
			return m, nil
		}
		m.root = m.store.Dispatch(state.Action{Type: state.CartAddItem, Payload: state.CartItem{
			Product: p.ID, Name: p.Name, Image: p.Image, Price: p.Price, CountInStock: p.CountInStock, Qty: qty,
		}})
	case "x":
		if len(products) == 0 {
			return m, nil
		}
		m.root = m.store.Dispatch(state.Action{Type: state.CartRemoveItem, Payload: products[m.selected].ID})
	case "o":
		if len(m.root.Cart.CartItems) == 0 {
			m.status = "Cart is empty"
			return m, nil
		}
		cart := m.root.Cart
		tax := cart.ItemsPrice() * m.checkout.taxRate
		cmd := m.request(state.OrderCreateRequest, func(ctx context.Context) state.Action {
			return m.api.CreateOrder(ctx, cart, tax, m.checkout.shippingPrice)
		}, state.Action{Type: state.CartReset})
		return m, cmd
	case "m":
		cmd := m.request(state.OrderListMyRequest, m.api.ListMyOrders)
		return m, cmd
	case "l":
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			return actionMsg{actions: m.api.Logout(ctx)}
		}
	}
	return m, nil
}

// request dispatches the REQUEST action now and returns a command that
// performs call. When the call succeeds the optional followUps are
// dispatched after its result.
func (m *model) request(t state.ActionType, call func(context.Context) state.Action, followUps ...state.Action) tea.Cmd {
	m.root = m.store.Dispatch(state.Action{Type: t})
	m.status = "Loading..."
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		result := call(ctx)
		actions := []state.Action{result}
		if result.Error == "" {
			actions = append(actions, followUps...)
		}
		return actionMsg{actions: actions}
	}
}

func (m model) View() string {
	b := &strings.Builder{}
	user := "guest"
	if info := m.root.UserLogin.UserInfo; info != nil {
		user = info.Name
	}
	fmt.Fprintf(b, "Storefront (%s)\n\n", user)

	list := m.root.ProductList
	fmt.Fprintf(b, "Products (page %d of %d):\n", max(list.Page, 1), max(list.Pages, 1))
	if list.Loading {
		fmt.Fprintln(b, "  loading...")
	}
	for i, p := range list.Products {
		marker := " "
		if i == m.selected {
			marker = ">"
		}
		fmt.Fprintf(b, " %s %-40s $%8.2f  rating %.1f (%d)\n", marker, p.Name, p.Price, p.Rating, p.NumReviews)
	}

	fmt.Fprintln(b, "\nCart:")
	cart := m.root.Cart
	if len(cart.CartItems) == 0 {
		fmt.Fprintln(b, "  (empty)")
	}
	for _, item := range cart.CartItems {
		fmt.Fprintf(b, "  %d x %s\n", item.Qty, item.Name)
	}
	fmt.Fprintf(b, "  items: $%.2f\n", cart.ItemsPrice())

	if o := m.root.OrderCreate.Order; o != nil {
		fmt.Fprintf(b, "\nLast order: %s total $%.2f\n", o.ID, o.TotalPrice)
	}
	if orders := m.root.OrderListMy.Orders; len(orders) > 0 {
		fmt.Fprintln(b, "\nMy orders:")
		for _, o := range orders {
			fmt.Fprintf(b, "  %s  $%.2f  paid=%v delivered=%v\n", o.ID, o.TotalPrice, o.IsPaid, o.IsDelivered)
		}
	}

	fmt.Fprintf(b, "\nStatus: %s\n", m.status)
	fmt.Fprintln(b, "\nControls: up/down select, left/right page, a add, x remove, o order, m my orders, l logout, q quit")
	return b.String()
}
