package repository

import (
	"context"
	"fmt"

	"github.com/fjod/freshbuy/internal/domain"
)

func (r *Repository) PaidRevenue(ctx context.Context) (domain.RevenueSummary, error) {
	var s domain.RevenueSummary
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total_amount), 0), COUNT(*) FROM orders WHERE status = 'success'`,
	).Scan(&s.Revenue, &s.Orders)
	if err != nil {
		return s, fmt.Errorf("query revenue: %w", err)
	}
	return s, nil
}

func (r *Repository) MonthlySales(ctx context.Context) ([]domain.MonthlySales, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date_trunc('month', created_at) AS month, SUM(total_amount), COUNT(*)
		 FROM orders
		 WHERE status = 'success'
		 GROUP BY month
		 ORDER BY month`,
	)
	if err != nil {
		return nil, fmt.Errorf("query monthly sales: %w", err)
	}
	defer rows.Close()

	result := make([]domain.MonthlySales, 0)
	for rows.Next() {
		var m domain.MonthlySales
		if err := rows.Scan(&m.Month, &m.Sales, &m.Orders); err != nil {
			return nil, fmt.Errorf("scan monthly sales: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func (r *Repository) CategoryCounts(ctx context.Context) ([]domain.CategoryCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, COUNT(*) AS products
		 FROM products
		 GROUP BY category
		 ORDER BY products DESC, category`,
	)
	if err != nil {
		return nil, fmt.Errorf("query category counts: %w", err)
	}
	defer rows.Close()

	result := make([]domain.CategoryCount, 0)
	for rows.Next() {
		var c domain.CategoryCount
		if err := rows.Scan(&c.Category, &c.Products); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// TopProducts ranks products by the quantity recorded across all order lines.
func (r *Repository) TopProducts(ctx context.Context, limit int) ([]domain.ProductSales, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.name, p.price, SUM(oi.quantity) AS sold
		 FROM order_items oi
		 JOIN products p ON p.id = oi.product_id
		 GROUP BY p.id, p.name, p.price
		 ORDER BY sold DESC, p.id
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query top products: %w", err)
	}
	defer rows.Close()

	result := make([]domain.ProductSales, 0)
	for rows.Next() {
		var s domain.ProductSales
		if err := rows.Scan(&s.Name, &s.Price, &s.Sold); err != nil {
			return nil, fmt.Errorf("scan top product: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *Repository) CountProducts(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func (r *Repository) CountOrders(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

func (r *Repository) LowStockProducts(ctx context.Context, below int) ([]*domain.Product, error) {
	return r.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products p WHERE p.quantity < $1 ORDER BY p.quantity, p.id`,
		below,
	)
}
