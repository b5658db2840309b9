package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/freshbuy/internal/domain"
)

type ShippingAPI interface {
	SaveShippingInfo(ctx context.Context, userID int64, info domain.ShippingInfo) (*domain.ShippingInfo, bool, error)
	GetShippingInfo(ctx context.Context, userID int64) (*domain.ShippingInfo, error)
}

type ShippingHandler struct {
	svc     ShippingAPI
	timeout time.Duration
}

func NewShippingHandler(svc ShippingAPI, timeout time.Duration) *ShippingHandler {
	return &ShippingHandler{svc: svc, timeout: timeout}
}

type ShippingRequestDTO struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
}

type ShippingResponseDTO struct {
	Message      string              `json:"message"`
	ShippingInfo domain.ShippingInfo `json:"shipping_info"`
}

// POST /create_or_update_shipping_info
func (h *ShippingHandler) Save(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req ShippingRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	info, created, err := h.svc.SaveShippingInfo(ctx, p.UserID, domain.ShippingInfo{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		ZipCode:   req.ZipCode,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	msg := "Shipping address updated successfully"
	if created {
		msg = "Shipping address created successfully"
	}
	respondJSON(w, http.StatusOK, ShippingResponseDTO{Message: msg, ShippingInfo: *info})
}

// GET /get_shipping_address
func (h *ShippingHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, ok := principal(w, r)
	if !ok {
		return
	}
	info, err := h.svc.GetShippingInfo(ctx, p.UserID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}
