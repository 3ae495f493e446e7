package api

import (
	"net/http"
	"strconv"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/command"
	"github.com/example/ec-storefront/internal/query"
)

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
	pageSize     int
	topLimit     int
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler, pageSize, topLimit int) *Handlers {
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
		pageSize:     pageSize,
		topLimit:     topLimit,
	}
}

// Product Handlers

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	page, err := strconv.Atoi(r.URL.Query().Get("pageNumber"))
	if err != nil {
		page = 1
	}

	result, err := h.queryHandler.SearchProducts(r.Context(), keyword, page, h.pageSize)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handlers) GetTopProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.queryHandler.TopProducts(r.Context(), h.topLimit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.queryHandler.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.cmdHandler.CreateSampleProduct(r.Context(), actorFrom(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var cmd command.UpdateProduct
	if err := decodeJSON(r, &cmd); err != nil {
		respondError(w, r, err)
		return
	}
	cmd.ProductID = r.PathValue("id")

	product, err := h.cmdHandler.UpdateProduct(r.Context(), actorFrom(r), cmd)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	cmd := command.DeleteProduct{ProductID: r.PathValue("id")}
	if err := h.cmdHandler.DeleteProduct(r.Context(), actorFrom(r), cmd); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Product removed")
}

func (h *Handlers) CreateProductReview(w http.ResponseWriter, r *http.Request) {
	var cmd command.CreateReview
	if err := decodeJSON(r, &cmd); err != nil {
		respondError(w, r, err)
		return
	}
	cmd.ProductID = r.PathValue("id")

	if _, err := h.cmdHandler.CreateReview(r.Context(), actorFrom(r), cmd); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusCreated, "Review added")
}

// Order Handlers

func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var cmd command.CreateOrder
	if err := decodeJSON(r, &cmd); err != nil {
		respondError(w, r, err)
		return
	}

	order, err := h.cmdHandler.CreateOrder(r.Context(), actorFrom(r), cmd)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

func (h *Handlers) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.queryHandler.ListOrdersByUser(r.Context(), middleware.UserIDFrom(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.queryHandler.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	// Users can only access their own orders (admins can access all)
	actor := actorFrom(r)
	if !actor.IsAdmin && !order.OwnedBy(actor.UserID) {
		respondError(w, r, command.ErrNotOwner)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func (h *Handlers) PayOrder(w http.ResponseWriter, r *http.Request) {
	var cmd command.PayOrder
	if err := decodeJSON(r, &cmd); err != nil {
		respondError(w, r, err)
		return
	}
	cmd.OrderID = r.PathValue("id")

	order, err := h.cmdHandler.PayOrder(r.Context(), actorFrom(r), cmd)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (h *Handlers) DeliverOrder(w http.ResponseWriter, r *http.Request) {
	cmd := command.DeliverOrder{OrderID: r.PathValue("id")}
	order, err := h.cmdHandler.DeliverOrder(r.Context(), actorFrom(r), cmd)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// Admin Handlers

func (h *Handlers) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.queryHandler.ListAllOrders(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// Health returns 200 while the process is serving.
func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// actorFrom builds the command actor from the JWT claims in the request.
func actorFrom(r *http.Request) command.Actor {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		return command.Actor{}
	}
	return command.Actor{
		UserID:  claims.UserID,
		Name:    claims.Name,
		IsAdmin: claims.IsAdmin(),
	}
}
