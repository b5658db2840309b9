package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/freshbuy/internal/domain"
	"github.com/fjod/freshbuy/internal/repository"
)

// OrderDeletionMinAge is how old a pending order must be before an admin may delete it.
const OrderDeletionMinAge = 7 * 24 * time.Hour

const (
	reasonOnlyPendingDeletable = "Only pending orders can be deleted."
	reasonTooRecentToDelete    = "Orders can only be deleted after 7 days."
)

type OrderStore interface {
	ListUserOrders(ctx context.Context, userID int64, limit, offset int) ([]*domain.Order, int, error)
	ListOrders(ctx context.Context, q repository.OrderQuery) ([]*domain.Order, int, error)
	ChangeOrderStatus(ctx context.Context, id int64, status domain.OrderStatus, check func(*domain.Order) error) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id int64, check func(*domain.Order) error) error
}

type OrderService struct {
	repo OrderStore
	now  func() time.Time
}

func NewOrderService(repo OrderStore) *OrderService {
	return &OrderService{repo: repo, now: time.Now}
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID int64, page int) (*Page[*domain.Order], error) {
	orders, total, err := s.repo.ListUserOrders(ctx, userID, UserOrderPageSize, offsetOf(page, UserOrderPageSize))
	if err != nil {
		return nil, err
	}
	return newPage(orders, total, page, UserOrderPageSize), nil
}

// ListAllOrders pages through every order, optionally filtered by status ("all" for any)
// and by SKU, compared without regard to case.
func (s *OrderService) ListAllOrders(ctx context.Context, status, sku string, page int) (*Page[*domain.Order], error) {
	q := repository.OrderQuery{
		SKU:    strings.TrimSpace(sku),
		Limit:  AllOrderPageSize,
		Offset: offsetOf(page, AllOrderPageSize),
	}
	if status = strings.ToLower(strings.TrimSpace(status)); status != "" && status != "all" {
		st, ok := domain.ParseOrderStatus(status)
		if !ok {
			return nil, invalid("unknown order status %q", status)
		}
		q.Status = st
	}

	orders, total, err := s.repo.ListOrders(ctx, q)
	if err != nil {
		return nil, err
	}
	return newPage(orders, total, page, AllOrderPageSize), nil
}

func (s *OrderService) UpdateOrderStatus(ctx context.Context, id int64, status string) (*domain.Order, error) {
	to, ok := domain.ParseOrderStatus(strings.ToLower(strings.TrimSpace(status)))
	if !ok {
		return nil, invalid("unknown order status %q", status)
	}

	return s.repo.ChangeOrderStatus(ctx, id, to, func(o *domain.Order) error {
		if !domain.CanTransitionTo(o.Status, to) {
			return &InvalidStateError{Reason: fmt.Sprintf("cannot change order status from %s to %s", o.Status, to)}
		}
		return nil
	})
}

// DeleteOrder removes an order that is still pending and at least OrderDeletionMinAge old.
func (s *OrderService) DeleteOrder(ctx context.Context, id int64) error {
	return s.repo.DeleteOrder(ctx, id, func(o *domain.Order) error {
		return deletable(o, s.now())
	})
}

func deletable(o *domain.Order, now time.Time) error {
	if o.Status != domain.OrderStatusPending {
		return &InvalidStateError{Reason: reasonOnlyPendingDeletable}
	}
	if o.Age(now) < OrderDeletionMinAge {
		return &InvalidStateError{Reason: reasonTooRecentToDelete}
	}
	return nil
}
