package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/fjod/freshbuy/internal/audit"
	"github.com/fjod/freshbuy/internal/cache"
	"github.com/fjod/freshbuy/internal/domain"
	"github.com/fjod/freshbuy/internal/metrics"
	"github.com/fjod/freshbuy/internal/paystack"
	"github.com/fjod/freshbuy/internal/publisher"
	"github.com/fjod/freshbuy/internal/repository"
)

const (
	operationInitialize = "initialize"
	operationVerify     = "verify"

	sideEffectTimeout = 5 * time.Second
)

// CheckoutStore is the persistence the checkout workflow needs.
type CheckoutStore interface {
	GetCartByCode(ctx context.Context, code string) (*domain.Cart, error)
	UpsertOrderSnapshot(ctx context.Context, snap *domain.OrderSnapshot) (*domain.Order, error)
	SetOrderReference(ctx context.Context, orderID int64, reference string) error
	InTx(ctx context.Context, fn func(repository.OrderTx) error) error
}

type PaymentProvider interface {
	Initialize(ctx context.Context, req paystack.InitializeRequest) (*paystack.Authorization, error)
	Verify(ctx context.Context, reference string) (*paystack.Transaction, error)
}

type OrderEventPublisher interface {
	PublishOrderPaid(ctx context.Context, e publisher.OrderPaidEvent) error
}

// CheckoutService turns carts into orders and reconciles them with the payment provider.
type CheckoutService struct {
	store       CheckoutStore
	provider    PaymentProvider
	pricing     domain.Pricing
	callbackURL string

	cache   cache.CartCache
	audit   audit.PaymentLog
	events  OrderEventPublisher
	metrics *metrics.CheckoutMetrics
}

type CheckoutOption func(*CheckoutService)

// WithCartCache makes verification drop the cached copy of the cart it deletes.
func WithCartCache(c cache.CartCache) CheckoutOption {
	return func(s *CheckoutService) { s.cache = c }
}

func WithPaymentLog(l audit.PaymentLog) CheckoutOption {
	return func(s *CheckoutService) { s.audit = l }
}

func WithOrderEvents(p OrderEventPublisher) CheckoutOption {
	return func(s *CheckoutService) { s.events = p }
}

func WithCheckoutMetrics(m *metrics.CheckoutMetrics) CheckoutOption {
	return func(s *CheckoutService) { s.metrics = m }
}

func NewCheckoutService(store CheckoutStore, provider PaymentProvider, pricing domain.Pricing, callbackURL string, opts ...CheckoutOption) *CheckoutService {
	s := &CheckoutService{
		store:       store,
		provider:    provider,
		pricing:     pricing,
		callbackURL: callbackURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// record writes a payment audit entry. Failures are logged and never reach the caller.
func (s *CheckoutService) record(ctx context.Context, e audit.Entry) {
	if s.audit == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	if err := s.audit.Record(ctx, e); err != nil {
		slog.WarnContext(ctx, "payment audit write failed",
			"operation", e.Operation, "reference", e.Reference, "error", err)
	}
}

func (s *CheckoutService) invalidateCart(ctx context.Context, code string) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, code); err != nil {
		slog.WarnContext(ctx, "cart cache invalidate failed", "cart_code", code, "error", err)
	}
}
