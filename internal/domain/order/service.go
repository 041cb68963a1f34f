package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/sheetal/scoops-api/internal/domain/adminlog"
	"github.com/sheetal/scoops-api/internal/domain/auth"
	"github.com/sheetal/scoops-api/internal/domain/business"
	"github.com/sheetal/scoops-api/internal/domain/user"
)

// ItemInput is a requested line item: name, quantity and unit price.
type ItemInput struct {
	Name     string
	Quantity int
	Price    decimal.Decimal
}

// PlaceOrderRequest holds the input for placing an order.
type PlaceOrderRequest struct {
	BusinessID int64
	Items      []ItemInput
}

// Service is the order engine: it creates and mutates orders, keeps totals
// consistent with line items, enforces role checks and drives audit logging.
type Service struct {
	orders     Repository
	businesses business.Repository
	logs       adminlog.Repository
}

// NewService creates an order Service with the required dependencies.
func NewService(orders Repository, businesses business.Repository, logs adminlog.Repository) *Service {
	return &Service{
		orders:     orders,
		businesses: businesses,
		logs:       logs,
	}
}

// validateItems checks the input item list and converts it to order items,
// preserving input order.
func validateItems(inputs []ItemInput) ([]OrderItem, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyItems
	}

	items := make([]OrderItem, len(inputs))
	for i, in := range inputs {
		if in.Quantity < 1 {
			return nil, &InvalidQuantityError{ItemName: in.Name}
		}
		if !in.Price.IsPositive() {
			return nil, &InvalidPriceError{ItemName: in.Name}
		}
		items[i] = OrderItem{
			Name:     in.Name,
			Quantity: in.Quantity,
			Price:    in.Price,
		}
	}
	return items, nil
}

// PlaceOrder validates the items, creates the order with its items and exact
// decimal total in one transaction, and returns the populated order. Identity
// is optional: when the caller resolves to an admin, the placement is audit
// logged.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest, caller *user.User) (*Order, error) {
	items, err := validateItems(req.Items)
	if err != nil {
		return nil, err
	}

	b, err := s.businesses.GetByID(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, business.ErrNotFound) {
			return nil, &UnknownBusinessError{BusinessID: req.BusinessID}
		}
		return nil, errors.Wrap(err, "get business")
	}

	o := &Order{
		BusinessID:   b.ID,
		BusinessName: b.Name,
		Status:       StatusPending,
		EmailSent:    false,
		Items:        items,
		TotalAmount:  ComputeTotal(items),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	if caller.IsAdmin() {
		action := fmt.Sprintf("Placed order #%d for business #%d", o.ID, o.BusinessID)
		if _, err := s.logs.Record(ctx, caller, action); err != nil {
			return nil, errors.Wrap(err, "record admin log")
		}
	}

	return o, nil
}

// UpdateStatus transitions an order to a new status. Admin-only. Moving to
// Confirmed also sets email_sent, and nothing ever clears it again. The
// status change is recorded in the audit log even when the status did not
// actually change, atomically with the write itself.
func (s *Service) UpdateStatus(ctx context.Context, orderID int64, newStatus Status, caller *user.User) (*Order, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}

	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !newStatus.Valid() {
		return nil, &InvalidStatusError{Status: newStatus}
	}

	old := o.Status
	o.Status = newStatus
	if newStatus == StatusConfirmed {
		o.EmailSent = true
	}

	action := fmt.Sprintf("Changed order #%d status: %s → %s", o.ID, old, newStatus)
	if err := s.orders.UpdateStatus(ctx, o, caller, action); err != nil {
		return nil, errors.Wrap(err, "update order status")
	}
	return o, nil
}

// UpdateItems replaces an order's entire item set and recomputes the total.
// Admin-only. This is a destructive replace: existing item rows are deleted
// and recreated, so item IDs do not survive the update.
func (s *Service) UpdateItems(ctx context.Context, orderID int64, inputs []ItemInput, caller *user.User) (*Order, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}

	items, err := validateItems(inputs)
	if err != nil {
		return nil, err
	}

	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	o.Items = items
	o.TotalAmount = ComputeTotal(items)

	action := fmt.Sprintf("Updated items for order #%d", o.ID)
	if err := s.orders.ReplaceItems(ctx, o, caller, action); err != nil {
		return nil, errors.Wrap(err, "replace order items")
	}
	return o, nil
}

// List returns orders visible to the caller, newest first. Admins see every
// order and may filter by business; customers are pinned to their own
// business regardless of any business filter in the request. The status
// filter applies to both roles.
func (s *Service) List(ctx context.Context, caller *user.User, f Filter) ([]Order, error) {
	if caller == nil {
		return nil, auth.ErrUnauthenticated
	}

	if !caller.IsAdmin() {
		// A supplied business filter must not widen a customer's view.
		if caller.BusinessID == nil {
			return []Order{}, nil
		}
		f.BusinessID = caller.BusinessID
	}

	list, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return list, nil
}

// ListForCaller is the customer convenience view: the caller's own orders
// with no extra filters.
func (s *Service) ListForCaller(ctx context.Context, caller *user.User) ([]Order, error) {
	return s.List(ctx, caller, Filter{})
}

// ListLogs returns the audit trail, newest first. Admin-only.
func (s *Service) ListLogs(ctx context.Context, caller *user.User) ([]adminlog.Entry, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	entries, err := s.logs.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list admin logs")
	}
	return entries, nil
}
