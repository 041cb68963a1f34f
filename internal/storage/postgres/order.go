package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sheetal/scoops-api/internal/domain/order"
	"github.com/sheetal/scoops-api/internal/domain/user"
)

const (
	insertOrderSQL = `INSERT INTO orders (business_id, status, total_amount, email_sent)
		VALUES ($1, $2, $3, $4)
		RETURNING id, order_date`

	insertItemSQL = `INSERT INTO order_items (order_id, item_name, quantity, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	getOrderSQL = `SELECT o.id, o.business_id, b.name, o.order_date, o.status, o.total_amount, o.email_sent
		FROM orders o
		JOIN businesses b ON b.id = o.business_id
		WHERE o.id = $1`

	listItemsSQL = `SELECT id, order_id, item_name, quantity, price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id`

	updateOrderStatusSQL = `UPDATE orders SET status = $2, email_sent = $3 WHERE id = $1`

	deleteItemsSQL = `DELETE FROM order_items WHERE order_id = $1`

	updateOrderTotalSQL = `UPDATE orders SET total_amount = $2 WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order header, its items and the computed total in one
// transaction. Item rows are inserted in input order so listing them by ID
// reproduces the request ordering.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning order tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	err = tx.QueryRow(ctx, insertOrderSQL,
		o.BusinessID, string(o.Status), o.TotalAmount, o.EmailSent,
	).Scan(&o.ID, &o.OrderDate)
	if err != nil {
		return fmt.Errorf("creating order: %w", err)
	}

	if err := insertItems(ctx, tx, o); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order #%d: %w", o.ID, err)
	}
	return nil
}

// Get returns an order with its items, or order.ErrNotFound.
func (r *OrderRepository) Get(ctx context.Context, id int64) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order #%d: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order #%d: %w", id, err)
	}

	if err := r.loadItems(ctx, []*order.Order{&o}); err != nil {
		return nil, err
	}
	return &o, nil
}

// List returns matching orders with their items, newest first.
func (r *OrderRepository) List(ctx context.Context, f order.Filter) ([]order.Order, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("o.status = $%d", len(args)))
	}
	if f.BusinessID != nil {
		args = append(args, *f.BusinessID)
		where = append(where, fmt.Sprintf("o.business_id = $%d", len(args)))
	}

	sql := `SELECT o.id, o.business_id, b.name, o.order_date, o.status, o.total_amount, o.email_sent
		FROM orders o
		JOIN businesses b ON b.id = o.business_id`
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	sql += " ORDER BY o.order_date DESC, o.id DESC"

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	list, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	refs := make([]*order.Order, len(list))
	for i := range list {
		refs[i] = &list[i]
	}
	if err := r.loadItems(ctx, refs); err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateStatus writes the order's status and email_sent flag and appends the
// audit entry in the same transaction: a status change without its log
// entry, or vice versa, can never be observed.
func (r *OrderRepository) UpdateStatus(ctx context.Context, o *order.Order, admin *user.User, action string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning status tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, updateOrderStatusSQL, o.ID, string(o.Status), o.EmailSent); err != nil {
		return fmt.Errorf("updating order #%d status: %w", o.ID, err)
	}
	if _, err := tx.Exec(ctx, insertLogSQL, admin.ID, action); err != nil {
		return fmt.Errorf("logging status change for order #%d: %w", o.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing status change for order #%d: %w", o.ID, err)
	}
	return nil
}

// ReplaceItems deletes and recreates the order's items, writes the
// recomputed total and appends the audit entry, all in one transaction.
func (r *OrderRepository) ReplaceItems(ctx context.Context, o *order.Order, admin *user.User, action string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning item replacement tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, deleteItemsSQL, o.ID); err != nil {
		return fmt.Errorf("deleting items for order #%d: %w", o.ID, err)
	}
	if err := insertItems(ctx, tx, o); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, updateOrderTotalSQL, o.ID, o.TotalAmount); err != nil {
		return fmt.Errorf("updating total for order #%d: %w", o.ID, err)
	}
	if _, err := tx.Exec(ctx, insertLogSQL, admin.ID, action); err != nil {
		return fmt.Errorf("logging item replacement for order #%d: %w", o.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing item replacement for order #%d: %w", o.ID, err)
	}
	return nil
}

func insertItems(ctx context.Context, tx pgx.Tx, o *order.Order) error {
	for i := range o.Items {
		item := &o.Items[i]
		err := tx.QueryRow(ctx, insertItemSQL,
			o.ID, item.Name, item.Quantity, item.Price,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("creating item %q for order #%d: %w", item.Name, o.ID, err)
		}
	}
	return nil
}

// loadItems fetches the items for all given orders in one query and attaches
// them in insertion order.
func (r *OrderRepository) loadItems(ctx context.Context, orders []*order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, len(orders))
	byID := make(map[int64]*order.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
		o.Items = []order.OrderItem{}
	}

	rows, err := r.pool.Query(ctx, listItemsSQL, ids)
	if err != nil {
		return fmt.Errorf("loading order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item    order.OrderItem
			orderID int64
		)
		if err := rows.Scan(&item.ID, &orderID, &item.Name, &item.Quantity, &item.Price); err != nil {
			return fmt.Errorf("scanning order item: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("loading order items: %w", err)
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o      order.Order
		status string
	)
	err := row.Scan(
		&o.ID, &o.BusinessID, &o.BusinessName, &o.OrderDate,
		&status, &o.TotalAmount, &o.EmailSent,
	)
	o.Status = order.Status(status)
	return o, err
}
