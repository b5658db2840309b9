package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/freshbuy/internal/domain"
)

// UpsertShippingInfo stores the user's shipping details and reports whether a new record was created.
func (r *Repository) UpsertShippingInfo(ctx context.Context, info *domain.ShippingInfo) (bool, error) {
	query := `INSERT INTO shipping_info (user_id, first_name, last_name, email, address, city, state, zip_code)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          ON CONFLICT (user_id) DO UPDATE SET
	              first_name = EXCLUDED.first_name,
	              last_name = EXCLUDED.last_name,
	              email = EXCLUDED.email,
	              address = EXCLUDED.address,
	              city = EXCLUDED.city,
	              state = EXCLUDED.state,
	              zip_code = EXCLUDED.zip_code
	          RETURNING (xmax = 0)`

	var created bool
	err := r.db.QueryRowContext(ctx, query,
		info.UserID,
		info.FirstName,
		info.LastName,
		info.Email,
		info.Address,
		info.City,
		info.State,
		info.ZipCode,
	).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("upsert shipping info: %w", err)
	}
	return created, nil
}

func (r *Repository) GetShippingInfo(ctx context.Context, userID int64) (*domain.ShippingInfo, error) {
	info := domain.ShippingInfo{UserID: userID}
	err := r.db.QueryRowContext(ctx,
		`SELECT first_name, last_name, email, address, city, state, zip_code
		 FROM shipping_info WHERE user_id = $1`,
		userID,
	).Scan(&info.FirstName, &info.LastName, &info.Email, &info.Address, &info.City, &info.State, &info.ZipCode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShippingInfoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query shipping info: %w", err)
	}
	return &info, nil
}
