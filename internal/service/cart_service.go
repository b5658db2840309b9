package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fjod/freshbuy/internal/cache"
	"github.com/fjod/freshbuy/internal/domain"
)

type CartStore interface {
	GetCartByCode(ctx context.Context, code string) (*domain.Cart, error)
	AddItem(ctx context.Context, code string, productID int64, quantity int) (int64, error)
	IsProductInCart(ctx context.Context, code string, productID int64) (bool, error)
	UpdateLineQuantity(ctx context.Context, lineID int64, next func(current int) (int, error)) (string, int, error)
	DeleteLine(ctx context.Context, lineID int64) (string, error)
}

type CartService struct {
	repo  CartStore
	cache cache.CartCache
	sfg   singleflight.Group // one store read per cart code on concurrent misses
}

func NewCartService(repo CartStore, cache cache.CartCache) *CartService {
	return &CartService{
		repo:  repo,
		cache: cache,
	}
}

func (s *CartService) GetCart(ctx context.Context, code string) (*domain.Cart, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, invalid("cart_code is required")
	}

	v, err, _ := s.sfg.Do(code, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, code)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			slog.WarnContext(ctx, "cache get error", "cart_code", code, "error", err)
		}

		// Read before the store so an invalidation during the load blocks the fill.
		gen, genErr := s.cache.Generation(ctx, code)

		cart, err = s.repo.GetCartByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if genErr != nil {
			return cart, nil
		}

		go func() {
			fillCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			err := s.cache.Fill(fillCtx, code, cart, gen)
			switch {
			case errors.Is(err, cache.ErrStaleFill):
				slog.Debug("cart changed during read, not cached", "cart_code", code)
			case err != nil:
				slog.Warn("cache fill error", "cart_code", code, "error", err)
			}
		}()

		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddItem puts the product in the cart with the given quantity, creating the cart
// on first use. A product already in the cart has its quantity replaced.
func (s *CartService) AddItem(ctx context.Context, code string, productID int64, quantity int) (int64, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, invalid("cart_code is required")
	}
	if productID <= 0 {
		return 0, invalid("product_id is required")
	}
	if err := checkLineQuantity(quantity); err != nil {
		return 0, err
	}

	lineID, err := s.repo.AddItem(ctx, code, productID, quantity)
	if err != nil {
		return 0, fmt.Errorf("add product %d to cart %s: %w", productID, code, err)
	}

	s.invalidateCache(code)
	return lineID, nil
}

func (s *CartService) IsProductInCart(ctx context.Context, code string, productID int64) (bool, error) {
	if strings.TrimSpace(code) == "" || productID <= 0 {
		return false, invalid("cart_code and product_id are required")
	}
	return s.repo.IsProductInCart(ctx, code, productID)
}

func (s *CartService) IncreaseQuantity(ctx context.Context, lineID int64) (int, error) {
	return s.adjust(ctx, lineID, 1)
}

// DecreaseQuantity lowers the line quantity by one. A line at the minimum must be deleted instead.
func (s *CartService) DecreaseQuantity(ctx context.Context, lineID int64) (int, error) {
	return s.adjust(ctx, lineID, -1)
}

func (s *CartService) adjust(ctx context.Context, lineID int64, delta int) (int, error) {
	if lineID <= 0 {
		return 0, invalid("item_id is required")
	}

	code, quantity, err := s.repo.UpdateLineQuantity(ctx, lineID, func(current int) (int, error) {
		next := current + delta
		if err := checkLineQuantity(next); err != nil {
			return 0, err
		}
		return next, nil
	})
	if err != nil {
		return 0, err
	}

	s.invalidateCache(code)
	return quantity, nil
}

func (s *CartService) DeleteLine(ctx context.Context, lineID int64) error {
	code, err := s.repo.DeleteLine(ctx, lineID)
	if err != nil {
		return err
	}

	s.invalidateCache(code)
	return nil
}

func checkLineQuantity(quantity int) error {
	if quantity < domain.MinLineQuantity || quantity > domain.MaxLineQuantity {
		return invalid("quantity must be between %d and %d", domain.MinLineQuantity, domain.MaxLineQuantity)
	}
	return nil
}

func (s *CartService) invalidateCache(code string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, code); err != nil {
		slog.Warn("cache invalidate error", "cart_code", code, "error", err)
	}
}
