package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/freshbuy/internal/service"
)

type CheckoutAPI interface {
	Initialize(ctx context.Context, user service.Principal, cartCode string) (*service.InitializeResult, error)
	Verify(ctx context.Context, user service.Principal, reference string) (*service.VerifyResult, error)
}

// CheckoutHandler serves payment initialization and verification. Its timeout must cover
// the provider round trip.
type CheckoutHandler struct {
	svc     CheckoutAPI
	timeout time.Duration
}

func NewCheckoutHandler(svc CheckoutAPI, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{svc: svc, timeout: timeout}
}

type InitializePaymentRequestDTO struct {
	CartCode string `json:"cart_code"`
}

type InitializePaymentResponseDTO struct {
	AuthorizationURL string      `json:"authorization_url"`
	AccessCode       string      `json:"access_code"`
	Reference        string      `json:"reference"`
	OrderID          int64       `json:"order_id"`
	OrderSKU         string      `json:"order_sku"`
	TotalAmount      json.Number `json:"total_amount"`
}

type StockWarningDTO struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

type VerifyPaymentResponseDTO struct {
	Message       string            `json:"message"`
	Reference     string            `json:"reference"`
	Amount        json.Number       `json:"amount,omitempty"`
	Currency      string            `json:"currency,omitempty"`
	PaymentDate   string            `json:"payment_date,omitempty"`
	Status        string            `json:"status"`
	StockWarnings []StockWarningDTO `json:"stock_warnings,omitempty"`
}

// POST /initialize_payment
func (h *CheckoutHandler) InitializePayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req InitializePaymentRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.svc.Initialize(ctx, p, req.CartCode)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, InitializePaymentResponseDTO{
		AuthorizationURL: res.AuthorizationURL,
		AccessCode:       res.AccessCode,
		Reference:        res.Reference,
		OrderID:          res.OrderID,
		OrderSKU:         res.OrderSKU,
		TotalAmount:      amountNumber(res.Total),
	})
}

// GET /verify_payment/{reference}
func (h *CheckoutHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, ok := principal(w, r)
	if !ok {
		return
	}

	res, err := h.svc.Verify(ctx, p, chi.URLParam(r, "reference"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	resp := VerifyPaymentResponseDTO{
		Message:   res.Message,
		Reference: res.Reference,
		Status:    res.Status,
	}
	if !res.AlreadyVerified {
		resp.Amount = amountNumber(res.Amount)
		resp.Currency = res.Currency
		resp.PaymentDate = res.PaymentDate
	}
	for _, sw := range res.StockWarnings {
		resp.StockWarnings = append(resp.StockWarnings, StockWarningDTO{
			ProductID:   sw.ProductID,
			ProductName: sw.ProductName,
			Requested:   sw.Requested,
			Available:   sw.Available,
		})
	}
	respondJSON(w, http.StatusOK, resp)
}
