package handler

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/sheetal/scoops-api/internal/domain/order"
)

type itemRequest struct {
	ItemName string          `json:"item_name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type placeOrderRequest struct {
	Business int64         `json:"business"`
	Items    []itemRequest `json:"items"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type updateItemsRequest struct {
	Items []itemRequest `json:"items"`
}

func toItemInputs(items []itemRequest) []order.ItemInput {
	inputs := make([]order.ItemInput, len(items))
	for i, item := range items {
		inputs[i] = order.ItemInput{
			Name:     item.ItemName,
			Quantity: item.Quantity,
			Price:    item.Price,
		}
	}
	return inputs
}

// listOrders handles GET /api/orders/. Admins see everything and may filter
// by business; customers are scoped to their own business.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	u, err := h.caller(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	f := order.Filter{Status: order.Status(r.URL.Query().Get("status"))}
	// The business filter only exists for admins; for everyone else the
	// service pins the scope to the caller's own business, so the parameter
	// is ignored entirely rather than validated.
	if u.IsAdmin() {
		if raw := r.URL.Query().Get("business_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				writeBadRequest(w, r, "business_id must be an integer")
				return
			}
			f.BusinessID = &id
		}
	}

	list, err := h.orders.List(r.Context(), u, f)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toOrderViews(list))
}

// myOrders handles GET /api/orders/my-orders: the caller's business orders.
func (h *Handler) myOrders(w http.ResponseWriter, r *http.Request) {
	u, err := h.caller(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	list, err := h.orders.ListForCaller(r.Context(), u)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toOrderViews(list))
}

// placeOrder handles POST /api/orders/place. Identity is optional here; an
// admin caller gets the placement audit logged.
func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	u, err := h.caller(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var req placeOrderRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, r, "invalid JSON body")
		return
	}

	o, err := h.orders.PlaceOrder(r.Context(), order.PlaceOrderRequest{
		BusinessID: req.Business,
		Items:      toItemInputs(req.Items),
	}, u)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toOrderView(o))
}

// updateOrderStatus handles PATCH /api/orders/{id}/status. Admin-only.
func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	u, err := h.caller(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	orderID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeDomainError(w, r, order.ErrNotFound)
		return
	}

	var req statusRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, r, "invalid JSON body")
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), orderID, order.Status(req.Status), u)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toOrderView(o))
}

// updateOrderItems handles PATCH /api/orders/{id}: destructive replacement
// of the order's item set. Admin-only.
func (h *Handler) updateOrderItems(w http.ResponseWriter, r *http.Request) {
	u, err := h.caller(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	orderID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeDomainError(w, r, order.ErrNotFound)
		return
	}

	var req updateItemsRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, r, "invalid JSON body")
		return
	}

	o, err := h.orders.UpdateItems(r.Context(), orderID, toItemInputs(req.Items), u)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toOrderView(o))
}

// listLogs handles GET /api/admin/logs/. Admin-only, newest first.
func (h *Handler) listLogs(w http.ResponseWriter, r *http.Request) {
	u, err := h.caller(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	entries, err := h.orders.ListLogs(r.Context(), u)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toLogViews(entries))
}
