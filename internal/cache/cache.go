package cache

import (
	"context"
	"errors"

	"github.com/fjod/freshbuy/internal/domain"
)

// CartCache stores carts keyed by cart code.
//
// Every Delete advances the code's generation. A reader that loads a cart from the store
// reads Generation first and passes it to Fill, which refuses to store the cart if the code
// was invalidated in between.
type CartCache interface {
	Get(ctx context.Context, code string) (*domain.Cart, error)
	Generation(ctx context.Context, code string) (int64, error)
	Fill(ctx context.Context, code string, cart *domain.Cart, generation int64) error
	Delete(ctx context.Context, code string) error
}

var (
	ErrCacheMiss = errors.New("cache miss")
	// ErrStaleFill means the cart was invalidated after it was read and was not cached.
	ErrStaleFill = errors.New("cart invalidated during fill")
)
