package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/freshbuy/internal/domain"
	"github.com/fjod/freshbuy/internal/service"
)

type OrderAPI interface {
	ListUserOrders(ctx context.Context, userID int64, page int) (*service.Page[*domain.Order], error)
	ListAllOrders(ctx context.Context, status, sku string, page int) (*service.Page[*domain.Order], error)
	UpdateOrderStatus(ctx context.Context, id int64, status string) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
}

type OrdersHandler struct {
	svc     OrderAPI
	timeout time.Duration
}

func NewOrdersHandler(svc OrderAPI, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{svc: svc, timeout: timeout}
}

type UpdateOrderStatusRequestDTO struct {
	Status string `json:"status"`
}

// GET /get_user_orders?page=
func (h *OrdersHandler) GetUserOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, ok := principal(w, r)
	if !ok {
		return
	}
	page, ok := pageParam(w, r)
	if !ok {
		return
	}

	res, err := h.svc.ListUserOrders(ctx, p.UserID, page)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, service.MapPage(res, toOrderDTO))
}

// GET /get_all_orders?status=&sku=&page=
func (h *OrdersHandler) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	page, ok := pageParam(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	res, err := h.svc.ListAllOrders(ctx, q.Get("status"), q.Get("sku"), page)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, service.MapPage(res, toOrderDTO))
}

// PUT /update_order_status/{id}
func (h *OrdersHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.svc.UpdateOrderStatus(ctx, id, req.Status)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderDTO(order))
}

// DELETE /delete_order/{id}
func (h *OrdersHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteOrder(ctx, id); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
