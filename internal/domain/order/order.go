package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/sheetal/scoops-api/internal/domain/user"
)

// Status is the order lifecycle state. The usual flow is
// Pending -> Confirmed -> Completed, with Cancelled reachable from Pending
// and Confirmed. Transitions are not enforced: any valid status is accepted
// from any current status, matching the behavior the admin tooling relies on.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

// Statuses lists every valid status, in lifecycle order.
func Statuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}
}

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Sentinel errors for order operations.
var (
	ErrEmptyItems = errors.New("an order must have at least one item")
	ErrNotFound   = errors.New("order not found")
)

// InvalidQuantityError indicates a line item with quantity below 1.
type InvalidQuantityError struct {
	ItemName string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be at least 1 for item %q", e.ItemName)
}

// InvalidPriceError indicates a line item with a non-positive price.
type InvalidPriceError struct {
	ItemName string
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("price must be greater than zero for item %q", e.ItemName)
}

// InvalidStatusError indicates a status value outside the valid set.
type InvalidStatusError struct {
	Status Status
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid status %q, choose from %v", string(e.Status), Statuses())
}

// UnknownBusinessError indicates an order referencing a business that does
// not exist. This is an input validation failure, not a lookup miss.
type UnknownBusinessError struct {
	BusinessID int64
}

func (e *UnknownBusinessError) Error() string {
	return fmt.Sprintf("business #%d does not exist", e.BusinessID)
}

// OrderItem is a single line entry within an order. Item identity is not
// preserved across an item replacement: rows are deleted and recreated.
type OrderItem struct {
	ID       int64
	Name     string
	Quantity int
	Price    decimal.Decimal
}

// Subtotal is the derived line total: price × quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is a purchase request from a business. TotalAmount is derived from
// the items and never client-supplied; EmailSent is a one-way flag set by the
// transition to Confirmed.
type Order struct {
	ID           int64
	BusinessID   int64
	BusinessName string
	OrderDate    time.Time
	Status       Status
	TotalAmount  decimal.Decimal
	EmailSent    bool
	Items        []OrderItem
}

// ComputeTotal recomputes an order total as the exact decimal sum of line
// subtotals. Totals are always recomputed from scratch rather than adjusted
// incrementally, so repeated computation over the same items is idempotent.
func ComputeTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total.Round(2)
}

// Filter narrows an order listing. Zero values mean "no filter".
type Filter struct {
	Status     Status
	BusinessID *int64
}

// Repository defines persistence operations for orders. Composite writes are
// transactional: a partially created order, or a status change without its
// audit entry, must never be observable.
type Repository interface {
	// Create persists the order header, its items and the computed total as
	// one atomic unit, filling in o.ID, item IDs and o.OrderDate.
	Create(ctx context.Context, o *Order) error
	// Get returns an order with its items, or ErrNotFound.
	Get(ctx context.Context, id int64) (*Order, error)
	// List returns matching orders with items, newest first.
	List(ctx context.Context, f Filter) ([]Order, error)
	// UpdateStatus persists o's status and email_sent flag together with an
	// audit entry for admin in a single transaction.
	UpdateStatus(ctx context.Context, o *Order, admin *user.User, action string) error
	// ReplaceItems deletes the order's items, recreates them from o.Items,
	// persists the recomputed total and appends an audit entry for admin,
	// all in a single transaction.
	ReplaceItems(ctx context.Context, o *Order, admin *user.User, action string) error
}
