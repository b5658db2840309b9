package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fjod/freshbuy/internal/audit"
	"github.com/fjod/freshbuy/internal/domain"
	"github.com/fjod/freshbuy/internal/metrics"
	"github.com/fjod/freshbuy/internal/paystack"
	"github.com/fjod/freshbuy/internal/publisher"
	"github.com/fjod/freshbuy/internal/repository"
)

const (
	MessageVerified        = "Payment verified successfully"
	MessageAlreadyVerified = "Payment already verified previously"
)

// StockWarning is an order line whose stock could not be decremented.
type StockWarning struct {
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
}

type VerifyResult struct {
	Message         string
	Reference       string
	Amount          decimal.Decimal
	Currency        string
	PaymentDate     string
	Status          string
	AlreadyVerified bool
	StockWarnings   []StockWarning
}

type finalized struct {
	order    *domain.Order
	lines    []domain.OrderLine
	already  bool
	warnings []StockWarning
}

// Verify confirms the payment with the provider and finalizes the order exactly once.
// Later calls for the same reference return the previously verified result.
func (s *CheckoutService) Verify(ctx context.Context, user Principal, reference string) (*VerifyResult, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, invalid("reference is required")
	}
	entry := audit.Entry{
		Operation: audit.OperationVerify,
		Reference: reference,
		UserID:    user.UserID,
	}

	start := time.Now()
	tx, err := s.provider.Verify(ctx, reference)
	s.metrics.ObserveProvider(operationVerify, float64(time.Since(start).Milliseconds()))
	if err != nil {
		entry.Detail = err.Error()
		var pe *paystack.ProviderError
		if errors.As(err, &pe) && pe.StatusCode < http.StatusInternalServerError {
			entry.Outcome = audit.OutcomeNotSuccessful
			s.record(ctx, entry)
			s.metrics.Observe(operationVerify, metrics.OutcomeNotSuccessful)
			return nil, fmt.Errorf("%w: %s", ErrPaymentNotSuccessful, reference)
		}
		entry.Outcome = providerOutcome(err)
		s.record(ctx, entry)
		s.metrics.Observe(operationVerify, metrics.OutcomeProviderError)
		slog.ErrorContext(ctx, "payment verify failed", "reference", reference, "error", err)
		return nil, fmt.Errorf("verify payment %s: %w", reference, err)
	}

	entry.Amount = tx.Amount
	if tx.Status != paystack.StatusSuccess {
		entry.Outcome = audit.OutcomeNotSuccessful
		entry.Detail = tx.Status
		s.record(ctx, entry)
		s.metrics.Observe(operationVerify, metrics.OutcomeNotSuccessful)
		return nil, fmt.Errorf("%w: provider reports %q", ErrPaymentNotSuccessful, tx.Status)
	}

	var res finalized
	err = s.store.InTx(ctx, func(otx repository.OrderTx) error {
		var err error
		res, err = finalize(ctx, otx, reference, user.UserID)
		return err
	})
	if err != nil {
		if !errors.Is(err, repository.ErrOrderNotFound) {
			entry.Outcome = audit.OutcomeFailed
			entry.Detail = err.Error()
			s.record(ctx, entry)
		}
		s.metrics.Observe(operationVerify, metrics.OutcomeFailed)
		return nil, fmt.Errorf("finalize order %s: %w", reference, err)
	}

	entry.OrderID = res.order.ID
	entry.CartCode = res.order.CartCode
	result := &VerifyResult{
		Message:         MessageVerified,
		Reference:       reference,
		Amount:          domain.FromMinorUnits(tx.Amount),
		Currency:        tx.Currency,
		PaymentDate:     tx.PaidAt,
		Status:          tx.Status,
		AlreadyVerified: res.already,
		StockWarnings:   res.warnings,
	}

	if res.already {
		result.Message = MessageAlreadyVerified
		entry.Outcome = audit.OutcomeAlreadyVerified
		s.record(ctx, entry)
		s.metrics.Observe(operationVerify, metrics.OutcomeAlreadyVerified)
		return result, nil
	}

	s.afterCommit(ctx, res, tx)

	entry.Outcome = audit.OutcomeSucceeded
	s.record(ctx, entry)
	s.metrics.Observe(operationVerify, metrics.OutcomeSucceeded)
	slog.InfoContext(ctx, "payment verified",
		"order_id", res.order.ID, "reference", reference, "stock_warnings", len(res.warnings))

	return result, nil
}

// finalize runs under the order row lock. It marks the order paid, drops the cart and
// takes the ordered quantities out of stock, skipping lines the stock cannot cover.
func finalize(ctx context.Context, otx repository.OrderTx, reference string, userID int64) (finalized, error) {
	order, err := otx.LockOrderByReference(ctx, reference, userID)
	if err != nil {
		return finalized{}, err
	}
	if order.Status.IsPaid() {
		return finalized{order: order, already: true}, nil
	}

	if err := otx.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusSuccess); err != nil {
		return finalized{}, err
	}
	order.Status = domain.OrderStatusSuccess

	if err := otx.DeleteCartByCode(ctx, order.CartCode); err != nil {
		return finalized{}, err
	}

	lines, err := otx.ListOrderLines(ctx, order.ID)
	if err != nil {
		return finalized{}, err
	}

	var warnings []StockWarning
	for _, line := range lines {
		applied, err := otx.DecrementStock(ctx, line.Product.ID, line.Quantity)
		if err != nil {
			return finalized{}, err
		}
		if !applied {
			warnings = append(warnings, StockWarning{
				ProductID:   line.Product.ID,
				ProductName: line.Product.Name,
				Requested:   line.Quantity,
				Available:   line.Product.Quantity,
			})
		}
	}

	return finalized{order: order, lines: lines, warnings: warnings}, nil
}

func (s *CheckoutService) afterCommit(ctx context.Context, res finalized, tx *paystack.Transaction) {
	s.invalidateCart(ctx, res.order.CartCode)

	if paid := domain.FromMinorUnits(tx.Amount); !paid.Equal(res.order.TotalAmount) {
		slog.WarnContext(ctx, "paid amount differs from order total",
			"order_id", res.order.ID, "paid", paid.StringFixed(2), "total", res.order.TotalAmount.StringFixed(2))
	}

	for _, w := range res.warnings {
		slog.WarnContext(ctx, "insufficient stock, decrement skipped",
			"order_id", res.order.ID,
			"product_id", w.ProductID,
			"requested", w.Requested,
			"available", w.Available)
	}
	s.metrics.AddStockSkipped(len(res.warnings))

	if s.events == nil {
		return
	}
	event := publisher.OrderPaidEvent{
		OrderID:     res.order.ID,
		SKU:         res.order.SKU,
		Reference:   tx.Reference,
		UserID:      res.order.UserID,
		CartCode:    res.order.CartCode,
		TotalAmount: res.order.TotalAmount,
		Currency:    tx.Currency,
		PaidAt:      tx.PaidAt,
		Lines:       make([]publisher.OrderPaidLine, 0, len(res.lines)),
	}
	for _, line := range res.lines {
		event.Lines = append(event.Lines, publisher.OrderPaidLine{ProductID: line.Product.ID, Quantity: line.Quantity})
	}
	for _, w := range res.warnings {
		event.StockSkipped = append(event.StockSkipped, w.ProductID)
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	if err := s.events.PublishOrderPaid(pubCtx, event); err != nil {
		slog.WarnContext(ctx, "order paid event not published", "order_id", res.order.ID, "error", err)
	}
}
