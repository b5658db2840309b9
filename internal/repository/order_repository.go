package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/fjod/freshbuy/internal/domain"
)

const orderSKUAttempts = 5

const orderColumns = `o.id, o.reference, o.sku, o.user_id, o.total_amount, o.status,
	o.cart_code, o.created_at, o.updated_at`

// OrderQuery filters and pages the admin order listing.
type OrderQuery struct {
	Status domain.OrderStatus
	SKU    string
	Limit  int
	Offset int
}

func scanOrder(row rowScanner, o *domain.Order) error {
	return row.Scan(
		&o.ID,
		&o.Reference,
		&o.SKU,
		&o.UserID,
		&o.TotalAmount,
		&o.Status,
		&o.CartCode,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
}

func newOrderSKU() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
}

// UpsertOrderSnapshot stores the snapshot as the order for (user, cart code).
// A pending order is reused with its total and lines overwritten; an order in any
// other status is left untouched and ErrOrderNotPending is returned.
func (r *Repository) UpsertOrderSnapshot(ctx context.Context, snap *domain.OrderSnapshot) (*domain.Order, error) {
	for attempt := 1; ; attempt++ {
		order, err := r.upsertOrderSnapshot(ctx, snap, newOrderSKU())
		if errors.Is(err, ErrDuplicateSKU) && attempt < orderSKUAttempts {
			continue
		}
		return order, err
	}
}

func (r *Repository) upsertOrderSnapshot(ctx context.Context, snap *domain.OrderSnapshot, sku string) (*domain.Order, error) {
	var order domain.Order
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		query := `INSERT INTO orders AS o (sku, user_id, total_amount, cart_code, status)
		          VALUES ($1, $2, $3, $4, 'pending')
		          ON CONFLICT (user_id, cart_code) DO UPDATE
		              SET total_amount = EXCLUDED.total_amount, updated_at = NOW()
		              WHERE o.status = 'pending'
		          RETURNING ` + orderColumns

		err := scanOrder(tx.QueryRowContext(ctx, query, sku, snap.UserID, snap.Total, snap.CartCode), &order)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotPending
		}
		if isUniqueViolation(err, "orders_sku_key") {
			return ErrDuplicateSKU
		}
		if err != nil {
			return fmt.Errorf("upsert order: %w", err)
		}

		productIDs := make([]int64, 0, len(snap.Lines))
		for _, line := range snap.Lines {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO order_items (order_id, product_id, quantity) VALUES ($1, $2, $3)
				 ON CONFLICT (order_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity`,
				order.ID, line.ProductID, line.Quantity,
			); err != nil {
				return fmt.Errorf("upsert order item: %w", err)
			}
			productIDs = append(productIDs, line.ProductID)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM order_items WHERE order_id = $1 AND NOT (product_id = ANY($2))`,
			order.ID, pq.Array(productIDs),
		); err != nil {
			return fmt.Errorf("prune order items: %w", err)
		}

		lines, err := listOrderLines(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		order.Lines = lines
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// SetOrderReference records the provider reference on an order.
func (r *Repository) SetOrderReference(ctx context.Context, orderID int64, reference string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET reference = $2, updated_at = NOW() WHERE id = $1`,
		orderID, reference,
	)
	if err != nil {
		return fmt.Errorf("set order reference: %w", err)
	}
	return expectAffected(res, ErrOrderNotFound)
}

func (r *Repository) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	var order domain.Order
	err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`, id), &order)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	lines, err := listOrderLines(ctx, r.db, order.ID)
	if err != nil {
		return nil, err
	}
	order.Lines = lines
	return &order, nil
}

// ListUserOrders returns one page of the user's orders, newest first, and the user's order count.
func (r *Repository) ListUserOrders(ctx context.Context, userID int64, limit, offset int) ([]*domain.Order, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	orders, err := r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders o WHERE o.user_id = $1
		 ORDER BY o.created_at DESC, o.id DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListOrders returns one page of all orders matching q, newest first, and the match count.
func (r *Repository) ListOrders(ctx context.Context, q OrderQuery) ([]*domain.Order, int, error) {
	var (
		conds []string
		args  []any
	)
	if q.Status != "" {
		args = append(args, string(q.Status))
		conds = append(conds, fmt.Sprintf("o.status = $%d", len(args)))
	}
	if q.SKU != "" {
		args = append(args, q.SKU)
		conds = append(conds, fmt.Sprintf("UPPER(o.sku) = UPPER($%d)", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders o`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	args = append(args, q.Limit, q.Offset)
	query := `SELECT ` + orderColumns + ` FROM orders o` + where +
		` ORDER BY o.created_at DESC, o.id DESC` +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	orders, err := r.queryOrders(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ChangeOrderStatus locks the order, lets check veto the change and stores the new status.
func (r *Repository) ChangeOrderStatus(ctx context.Context, id int64, status domain.OrderStatus, check func(*domain.Order) error) (*domain.Order, error) {
	var order *domain.Order
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		order, err = lockOrder(ctx, tx, "o.id = $1", id)
		if err != nil {
			return err
		}
		if err := check(order); err != nil {
			return err
		}
		if err := setOrderStatus(ctx, tx, order.ID, status); err != nil {
			return err
		}
		order.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// DeleteOrder locks the order, lets check veto the deletion and removes it with its lines.
func (r *Repository) DeleteOrder(ctx context.Context, id int64, check func(*domain.Order) error) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		order, err := lockOrder(ctx, tx, "o.id = $1", id)
		if err != nil {
			return err
		}
		if err := check(order); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, order.ID); err != nil {
			return fmt.Errorf("delete order: %w", err)
		}
		return nil
	})
}

func (r *Repository) queryOrders(ctx context.Context, query string, args ...any) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0)
	byID := make(map[int64]*domain.Order)
	ids := make([]int64, 0)
	for rows.Next() {
		o := &domain.Order{}
		if err := scanOrder(rows, o); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		o.Lines = make([]domain.OrderLine, 0)
		orders = append(orders, o)
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	if len(ids) == 0 {
		return orders, nil
	}

	lines, err := queryOrderLines(ctx, r.db, `WHERE oi.order_id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		o := byID[line.OrderID]
		o.Lines = append(o.Lines, line)
	}
	return orders, nil
}

func lockOrder(ctx context.Context, q queryer, where string, args ...any) (*domain.Order, error) {
	var order domain.Order
	err := scanOrder(q.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders o WHERE `+where+` FOR UPDATE`, args...), &order)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock order: %w", err)
	}
	return &order, nil
}

func setOrderStatus(ctx context.Context, q queryer, orderID int64, status domain.OrderStatus) error {
	res, err := q.ExecContext(ctx,
		`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`,
		orderID, string(status),
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return expectAffected(res, ErrOrderNotFound)
}

func listOrderLines(ctx context.Context, q queryer, orderID int64) ([]domain.OrderLine, error) {
	return queryOrderLines(ctx, q, `WHERE oi.order_id = $1`, orderID)
}

func queryOrderLines(ctx context.Context, q queryer, where string, args ...any) ([]domain.OrderLine, error) {
	query := `SELECT oi.id, oi.order_id, oi.quantity, ` + productColumns + `
	          FROM order_items oi
	          JOIN products p ON p.id = oi.product_id ` + where + `
	          ORDER BY oi.id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.OrderLine, 0)
	for rows.Next() {
		var line domain.OrderLine
		p := &line.Product
		err := rows.Scan(&line.ID, &line.OrderID, &line.Quantity,
			&p.ID, &p.Name, &p.Slug, &p.SKU, &p.Category, &p.Description, &p.Price,
			&p.Quantity, &p.Featured, &p.MinimumStock, &p.ImageURL, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return lines, nil
}
