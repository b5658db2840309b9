package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fjod/freshbuy/internal/audit"
	"github.com/fjod/freshbuy/internal/domain"
	"github.com/fjod/freshbuy/internal/metrics"
	"github.com/fjod/freshbuy/internal/paystack"
	"github.com/fjod/freshbuy/internal/repository"
)

type InitializeResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
	OrderID          int64
	OrderSKU         string
	Total            decimal.Decimal
}

// Initialize snapshots the cart into the caller's order for that cart and opens a
// provider transaction for the order total.
func (s *CheckoutService) Initialize(ctx context.Context, user Principal, cartCode string) (*InitializeResult, error) {
	cartCode = strings.TrimSpace(cartCode)
	if cartCode == "" {
		return nil, invalid("cart_code is required")
	}
	if user.Email == "" {
		return nil, invalid("user email not found")
	}

	cart, err := s.store.GetCartByCode(ctx, cartCode)
	if err != nil {
		return nil, fmt.Errorf("load cart %s: %w", cartCode, err)
	}
	if len(cart.Lines) == 0 {
		return nil, invalid("cart %s is empty", cartCode)
	}

	quote := s.pricing.Quote(cart.Lines)
	order, err := s.store.UpsertOrderSnapshot(ctx, domain.NewOrderSnapshot(user.UserID, cart, quote))
	if errors.Is(err, repository.ErrOrderNotPending) {
		s.metrics.Observe(operationInitialize, metrics.OutcomeFailed)
		return nil, &InvalidStateError{Reason: err.Error()}
	}
	if err != nil {
		s.metrics.Observe(operationInitialize, metrics.OutcomeFailed)
		return nil, fmt.Errorf("save order for cart %s: %w", cartCode, err)
	}

	amount := domain.MinorUnits(quote.Total)
	entry := audit.Entry{
		Operation: audit.OperationInitialize,
		UserID:    user.UserID,
		OrderID:   order.ID,
		CartCode:  cartCode,
		Amount:    amount,
	}

	start := time.Now()
	auth, err := s.provider.Initialize(ctx, paystack.InitializeRequest{
		Email:       user.Email,
		Amount:      amount,
		CallbackURL: s.callbackURL,
	})
	s.metrics.ObserveProvider(operationInitialize, float64(time.Since(start).Milliseconds()))
	if err != nil {
		entry.Outcome = providerOutcome(err)
		entry.Detail = err.Error()
		s.record(ctx, entry)
		s.metrics.Observe(operationInitialize, metrics.OutcomeProviderError)
		slog.ErrorContext(ctx, "payment initialize failed", "order_id", order.ID, "error", err)
		return nil, fmt.Errorf("initialize payment for order %d: %w", order.ID, err)
	}

	if err := s.store.SetOrderReference(ctx, order.ID, auth.Reference); err != nil {
		entry.Reference = auth.Reference
		entry.Outcome = audit.OutcomeFailed
		entry.Detail = err.Error()
		s.record(ctx, entry)
		s.metrics.Observe(operationInitialize, metrics.OutcomeFailed)
		return nil, fmt.Errorf("store reference for order %d: %w", order.ID, err)
	}

	entry.Reference = auth.Reference
	entry.Outcome = audit.OutcomeSucceeded
	s.record(ctx, entry)
	s.metrics.Observe(operationInitialize, metrics.OutcomeSucceeded)
	slog.InfoContext(ctx, "payment initialized",
		"order_id", order.ID, "reference", auth.Reference, "amount_minor", amount)

	return &InitializeResult{
		AuthorizationURL: auth.AuthorizationURL,
		AccessCode:       auth.AccessCode,
		Reference:        auth.Reference,
		OrderID:          order.ID,
		OrderSKU:         order.SKU,
		Total:            quote.Total,
	}, nil
}

func providerOutcome(err error) string {
	if errors.Is(err, paystack.ErrTransport) {
		return audit.OutcomeTransportFailure
	}
	return audit.OutcomeProviderRejected
}
