// Package handler adapts the HTTP surface to the domain services: it decodes
// request JSON, resolves the caller identity from the X-User-Id header, and
// maps domain errors to status codes. No business logic lives here.
package handler

import (
	"net/http"

	"github.com/sheetal/scoops-api/internal/domain/auth"
	"github.com/sheetal/scoops-api/internal/domain/order"
	"github.com/sheetal/scoops-api/internal/domain/user"
)

// IdentityHeader carries the out-of-band caller identifier on each request.
const IdentityHeader = "X-User-Id"

// Handler wires the HTTP routes to the auth service and the order engine.
type Handler struct {
	resolver auth.Resolver
	authSvc  *auth.Service
	orders   *order.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(resolver auth.Resolver, authSvc *auth.Service, orders *order.Service) *Handler {
	return &Handler{
		resolver: resolver,
		authSvc:  authSvc,
		orders:   orders,
	}
}

// Register mounts all API routes on the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/login", h.login)
	mux.HandleFunc("POST /api/auth/register", h.register)
	mux.HandleFunc("GET /api/auth/me", h.me)
	mux.HandleFunc("PATCH /api/auth/me", h.updateProfile)

	mux.HandleFunc("GET /api/businesses/{$}", h.listBusinesses)

	mux.HandleFunc("GET /api/orders/{$}", h.listOrders)
	mux.HandleFunc("GET /api/orders/my-orders", h.myOrders)
	mux.HandleFunc("POST /api/orders/place", h.placeOrder)
	mux.HandleFunc("PATCH /api/orders/{id}/status", h.updateOrderStatus)
	mux.HandleFunc("PATCH /api/orders/{id}", h.updateOrderItems)

	mux.HandleFunc("GET /api/admin/logs/{$}", h.listLogs)
}

// caller resolves the request identity. A nil user with a nil error means no
// identity was presented or it matched no user.
func (h *Handler) caller(r *http.Request) (*user.User, error) {
	return h.resolver.Resolve(r.Context(), r.Header.Get(IdentityHeader))
}
