package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fjod/freshbuy/internal/domain"
)

var ErrDuplicateSlug = errors.New("slug already taken")

const productColumns = `p.id, p.name, p.slug, p.sku, p.category, p.description, p.price,
	p.quantity, p.featured, p.minimum_stock, p.image_url, p.created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// ProductQuery filters and pages a product listing.
type ProductQuery struct {
	Search string
	// SearchDescription matches Search against the description instead of the category.
	SearchDescription bool
	Category          string
	NewestFirst       bool
	Limit             int
	Offset            int
}

func scanProduct(row rowScanner, p *domain.Product) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.SKU,
		&p.Category,
		&p.Description,
		&p.Price,
		&p.Quantity,
		&p.Featured,
		&p.MinimumStock,
		&p.ImageURL,
		&p.CreatedAt,
	)
}

func productWriteError(err error) error {
	switch {
	case isUniqueViolation(err, "products_sku_key"):
		return ErrDuplicateSKU
	case isUniqueViolation(err, "products_slug_key"):
		return ErrDuplicateSlug
	}
	return err
}

func (r *Repository) CreateProduct(ctx context.Context, p *domain.Product) error {
	query := `INSERT INTO products (name, slug, sku, category, description, price, quantity, featured, minimum_stock, image_url)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		p.Name,
		p.Slug,
		p.SKU,
		p.Category,
		p.Description,
		p.Price,
		p.Quantity,
		p.Featured,
		p.MinimumStock,
		p.ImageURL,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if mapped := productWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *Repository) UpdateProduct(ctx context.Context, p *domain.Product) error {
	query := `UPDATE products
	          SET name = $2, slug = $3, category = $4, description = $5, price = $6,
	              quantity = $7, featured = $8, minimum_stock = $9, image_url = $10
	          WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.Slug,
		p.Category,
		p.Description,
		p.Price,
		p.Quantity,
		p.Featured,
		p.MinimumStock,
		p.ImageURL,
	)
	if err != nil {
		if mapped := productWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("update product: %w", err)
	}
	return expectAffected(res, ErrProductNotFound)
}

func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return expectAffected(res, ErrProductNotFound)
}

func (r *Repository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return r.getProductWhere(ctx, "p.id = $1", id)
}

func (r *Repository) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.getProductWhere(ctx, "p.slug = $1", slug)
}

func (r *Repository) getProductWhere(ctx context.Context, where string, arg any) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE ` + where

	var p domain.Product
	err := scanProduct(r.db.QueryRowContext(ctx, query, arg), &p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	return &p, nil
}

func (r *Repository) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE slug = $1 AND id <> $2)`,
		slug, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

// ListProducts returns one page of products matching q together with the total match count.
func (r *Repository) ListProducts(ctx context.Context, q ProductQuery) ([]*domain.Product, int, error) {
	var (
		conds []string
		args  []any
	)
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		other := "p.category"
		if q.SearchDescription {
			other = "p.description"
		}
		conds = append(conds, fmt.Sprintf("(p.name ILIKE $%d OR %s ILIKE $%d)", len(args), other, len(args)))
	}
	if q.Category != "" {
		args = append(args, q.Category)
		conds = append(conds, fmt.Sprintf("p.category = $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products p`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	order := " ORDER BY p.id DESC"
	if q.NewestFirst {
		order = " ORDER BY p.created_at DESC, p.id DESC"
	}
	args = append(args, q.Limit, q.Offset)
	query := `SELECT ` + productColumns + ` FROM products p` + where + order +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	products, err := r.queryProducts(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *Repository) FeaturedProducts(ctx context.Context) ([]*domain.Product, error) {
	return r.queryProducts(ctx, `SELECT `+productColumns+` FROM products p WHERE p.featured ORDER BY p.id`)
}

func (r *Repository) queryProducts(ctx context.Context, query string, args ...any) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]*domain.Product, 0)
	for rows.Next() {
		p := &domain.Product{}
		if err := scanProduct(rows, p); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}

func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
