package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fjod/freshbuy/internal/domain"
)

// OrderTx is the set of operations available while an order row is locked for payment verification.
type OrderTx interface {
	LockOrderByReference(ctx context.Context, reference string, userID int64) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error
	DeleteCartByCode(ctx context.Context, code string) error
	ListOrderLines(ctx context.Context, orderID int64) ([]domain.OrderLine, error)
	DecrementStock(ctx context.Context, productID int64, quantity int) (bool, error)
}

type orderTx struct {
	tx *sql.Tx
}

// InTx runs fn in a single database transaction. Row locks taken through the
// OrderTx are held until fn returns.
func (r *Repository) InTx(ctx context.Context, fn func(OrderTx) error) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		return fn(&orderTx{tx: tx})
	})
}

func (t *orderTx) LockOrderByReference(ctx context.Context, reference string, userID int64) (*domain.Order, error) {
	return lockOrder(ctx, t.tx, "o.reference = $1 AND o.user_id = $2", reference, userID)
}

func (t *orderTx) UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	return setOrderStatus(ctx, t.tx, orderID, status)
}

// DeleteCartByCode removes the cart and its lines. A missing cart is not an error.
func (t *orderTx) DeleteCartByCode(ctx context.Context, code string) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM carts WHERE cart_code = $1`, code); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

func (t *orderTx) ListOrderLines(ctx context.Context, orderID int64) ([]domain.OrderLine, error) {
	return listOrderLines(ctx, t.tx, orderID)
}

// DecrementStock lowers the product's stock by quantity unless that would take it below zero.
// It reports whether the decrement was applied.
func (t *orderTx) DecrementStock(ctx context.Context, productID int64, quantity int) (bool, error) {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE products SET quantity = quantity - $1 WHERE id = $2 AND quantity >= $1`,
		quantity, productID,
	)
	if err != nil {
		return false, fmt.Errorf("decrement stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
