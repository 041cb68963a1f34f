package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/sheetal/scoops-api/internal/domain/adminlog"
	"github.com/sheetal/scoops-api/internal/domain/auth"
	"github.com/sheetal/scoops-api/internal/domain/business"
	"github.com/sheetal/scoops-api/internal/domain/order"
	"github.com/sheetal/scoops-api/internal/domain/user"
)

// --- Response views ---
//
// Monetary amounts serialize as strings with two decimal places so clients
// never see float rounding artifacts.

type userView struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	Business     *int64    `json:"business"`
	BusinessName string    `json:"business_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type businessView struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person,omitempty"`
	Address       string    `json:"address,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type itemView struct {
	ID       int64  `json:"id"`
	ItemName string `json:"item_name"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
	Subtotal string `json:"subtotal"`
}

type orderView struct {
	ID           int64      `json:"id"`
	Business     int64      `json:"business"`
	BusinessName string     `json:"business_name"`
	OrderDate    time.Time  `json:"order_date"`
	Status       string     `json:"status"`
	TotalAmount  string     `json:"total_amount"`
	EmailSent    bool       `json:"email_sent"`
	Items        []itemView `json:"items"`
}

type logView struct {
	ID            int64     `json:"id"`
	AdminUsername string    `json:"admin_username"`
	Action        string    `json:"action"`
	ActionTime    time.Time `json:"action_time"`
}

func toUserView(u *user.User) userView {
	return userView{
		ID:           u.ID,
		Username:     u.Username,
		Role:         string(u.Role),
		Business:     u.BusinessID,
		BusinessName: u.BusinessName,
		CreatedAt:    u.CreatedAt,
	}
}

func toBusinessView(b *business.Business) businessView {
	return businessView{
		ID:            b.ID,
		Name:          b.Name,
		ContactPerson: b.ContactPerson,
		Address:       b.Address,
		Phone:         b.Phone,
		Email:         b.Email,
		CreatedAt:     b.CreatedAt,
	}
}

func toOrderView(o *order.Order) orderView {
	items := make([]itemView, len(o.Items))
	for i, item := range o.Items {
		items[i] = itemView{
			ID:       item.ID,
			ItemName: item.Name,
			Quantity: item.Quantity,
			Price:    item.Price.StringFixed(2),
			Subtotal: item.Subtotal().StringFixed(2),
		}
	}
	return orderView{
		ID:           o.ID,
		Business:     o.BusinessID,
		BusinessName: o.BusinessName,
		OrderDate:    o.OrderDate,
		Status:       string(o.Status),
		TotalAmount:  o.TotalAmount.StringFixed(2),
		EmailSent:    o.EmailSent,
		Items:        items,
	}
}

func toOrderViews(orders []order.Order) []orderView {
	views := make([]orderView, len(orders))
	for i := range orders {
		views[i] = toOrderView(&orders[i])
	}
	return views
}

func toLogViews(entries []adminlog.Entry) []logView {
	views := make([]logView, len(entries))
	for i, e := range entries {
		views[i] = logView{
			ID:            e.ID,
			AdminUsername: e.AdminUsername,
			Action:        e.Action,
			ActionTime:    e.ActionTime,
		}
	}
	return views
}

// --- Encoding and error mapping ---

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zctx.From(r.Context()).Error("encode response", zap.Error(err))
	}
}

// decode parses the request body into dst. Unknown fields are ignored, so
// clients sending extra keys are not rejected.
func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Wrap(err, "invalid request body")
	}
	return nil
}

// writeDomainError maps a domain error to its HTTP status. Validation
// failures are 400, missing identity 401, insufficient role 403, unknown
// entities 404; anything else is a 500 with a generic body.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		quantityErr *order.InvalidQuantityError
		priceErr    *order.InvalidPriceError
		statusErr   *order.InvalidStatusError
		businessErr *order.UnknownBusinessError
	)

	switch {
	case errors.Is(err, order.ErrEmptyItems),
		errors.As(err, &quantityErr),
		errors.As(err, &priceErr),
		errors.As(err, &statusErr),
		errors.As(err, &businessErr),
		errors.Is(err, auth.ErrMissingFields),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, auth.ErrUsernameTaken),
		errors.Is(err, auth.ErrNoBusiness):
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})

	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, auth.ErrInvalidCredentials):
		writeJSON(w, r, http.StatusUnauthorized, errorResponse{Error: err.Error()})

	case errors.Is(err, auth.ErrAccessDenied):
		writeJSON(w, r, http.StatusForbidden, errorResponse{Error: err.Error()})

	case errors.Is(err, order.ErrNotFound):
		writeJSON(w, r, http.StatusNotFound, errorResponse{Error: err.Error()})

	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func writeBadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: msg})
}
