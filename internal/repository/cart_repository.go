package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/freshbuy/internal/domain"
)

func (r *Repository) GetCartByCode(ctx context.Context, code string) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.db.QueryRowContext(ctx,
		`SELECT id, cart_code, created_at, updated_at FROM carts WHERE cart_code = $1`,
		code,
	).Scan(&cart.ID, &cart.Code, &cart.CreatedAt, &cart.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query cart: %w", err)
	}

	query := `SELECT ci.id, ci.quantity, ` + productColumns + `
	          FROM cart_items ci
	          JOIN products p ON p.id = ci.product_id
	          WHERE ci.cart_id = $1
	          ORDER BY ci.id`

	rows, err := r.db.QueryContext(ctx, query, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	cart.Lines = make([]domain.CartLine, 0)
	for rows.Next() {
		var line domain.CartLine
		p := &line.Product
		err := rows.Scan(&line.ID, &line.Quantity,
			&p.ID, &p.Name, &p.Slug, &p.SKU, &p.Category, &p.Description, &p.Price,
			&p.Quantity, &p.Featured, &p.MinimumStock, &p.ImageURL, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		cart.Lines = append(cart.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return &cart, nil
}

// AddItem creates the cart on first use and sets the quantity of the product's line,
// inserting the line when the product is not yet in the cart.
func (r *Repository) AddItem(ctx context.Context, code string, productID int64, quantity int) (int64, error) {
	var lineID int64
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check product: %w", err)
		}
		if !exists {
			return ErrProductNotFound
		}

		var cartID int64
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO carts (cart_code) VALUES ($1)
			 ON CONFLICT (cart_code) DO UPDATE SET updated_at = NOW()
			 RETURNING id`,
			code,
		).Scan(&cartID); err != nil {
			return fmt.Errorf("upsert cart: %w", err)
		}

		if err := tx.QueryRowContext(ctx,
			`INSERT INTO cart_items (cart_id, product_id, quantity) VALUES ($1, $2, $3)
			 ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity
			 RETURNING id`,
			cartID, productID, quantity,
		).Scan(&lineID); err != nil {
			return fmt.Errorf("upsert cart item: %w", err)
		}
		return nil
	})
	return lineID, err
}

func (r *Repository) IsProductInCart(ctx context.Context, code string, productID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
		     SELECT 1 FROM cart_items ci
		     JOIN carts c ON c.id = ci.cart_id
		     WHERE c.cart_code = $1 AND ci.product_id = $2
		 )`,
		code, productID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check cart item: %w", err)
	}
	return exists, nil
}

// UpdateLineQuantity locks a cart line and stores the quantity returned by next.
// It reports the code of the cart the line belongs to and the stored quantity.
func (r *Repository) UpdateLineQuantity(ctx context.Context, lineID int64, next func(current int) (int, error)) (string, int, error) {
	var (
		code     string
		quantity int
	)
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var current int
		err := tx.QueryRowContext(ctx,
			`SELECT ci.quantity, c.cart_code
			 FROM cart_items ci
			 JOIN carts c ON c.id = ci.cart_id
			 WHERE ci.id = $1
			 FOR UPDATE OF ci`,
			lineID,
		).Scan(&current, &code)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCartLineNotFound
		}
		if err != nil {
			return fmt.Errorf("lock cart item: %w", err)
		}

		quantity, err = next(current)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE cart_items SET quantity = $2 WHERE id = $1`, lineID, quantity,
		); err != nil {
			return fmt.Errorf("update cart item: %w", err)
		}
		_, err = tx.ExecContext(ctx, `UPDATE carts SET updated_at = NOW() WHERE cart_code = $1`, code)
		return err
	})
	if err != nil {
		return "", 0, err
	}
	return code, quantity, nil
}

// DeleteLine removes a cart line and returns the code of the cart it belonged to.
func (r *Repository) DeleteLine(ctx context.Context, lineID int64) (string, error) {
	var code string
	err := r.db.QueryRowContext(ctx,
		`DELETE FROM cart_items ci
		 USING carts c
		 WHERE ci.id = $1 AND c.id = ci.cart_id
		 RETURNING c.cart_code`,
		lineID,
	).Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrCartLineNotFound
	}
	if err != nil {
		return "", fmt.Errorf("delete cart item: %w", err)
	}
	return code, nil
}
