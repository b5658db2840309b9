package repository

import "errors"

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrCartNotFound         = errors.New("cart not found")
	ErrCartLineNotFound     = errors.New("cart item not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderNotPending      = errors.New("order for this cart has already been paid")
	ErrShippingInfoNotFound = errors.New("shipping information not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrDuplicateEmail       = errors.New("user with this email already exists")
	ErrDuplicateSKU         = errors.New("sku already taken")
)
