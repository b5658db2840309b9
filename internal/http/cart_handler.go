package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/freshbuy/internal/domain"
)

type CartAPI interface {
	GetCart(ctx context.Context, code string) (*domain.Cart, error)
	AddItem(ctx context.Context, code string, productID int64, quantity int) (int64, error)
	IsProductInCart(ctx context.Context, code string, productID int64) (bool, error)
	IncreaseQuantity(ctx context.Context, lineID int64) (int, error)
	DecreaseQuantity(ctx context.Context, lineID int64) (int, error)
	DeleteLine(ctx context.Context, lineID int64) error
}

type CartHandler struct {
	svc     CartAPI
	timeout time.Duration
}

func NewCartHandler(svc CartAPI, timeout time.Duration) *CartHandler {
	return &CartHandler{svc: svc, timeout: timeout}
}

type AddItemRequestDTO struct {
	CartCode  string `json:"cart_code"`
	ProductID int64  `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

type CartItemRequestDTO struct {
	ItemID int64 `json:"item_id"`
}

type CartItemResponseDTO struct {
	Data struct {
		ID       int64 `json:"id"`
		Quantity int   `json:"quantity"`
	} `json:"data"`
	Message string `json:"message"`
}

// GET /get_cart/{cart_code}
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.svc.GetCart(ctx, chi.URLParam(r, "cart_code"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartDTO(cart))
}

// POST /add_to_cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	quantity := domain.MinLineQuantity
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	if _, err := h.svc.AddItem(ctx, req.CartCode, req.ProductID, quantity); err != nil {
		respondServiceError(w, r, err)
		return
	}
	cart, err := h.svc.GetCart(ctx, req.CartCode)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartDTO(cart))
}

// GET /check_product_in_cart?cart_code=&product_id=
func (h *CartHandler) CheckProductInCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	productID, err := strconv.ParseInt(q.Get("product_id"), 10, 64)
	if err != nil || q.Get("cart_code") == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "cart_code and product_id are required.")
		return
	}

	inCart, err := h.svc.IsProductInCart(ctx, q.Get("cart_code"), productID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"in_cart": inCart})
}

// PUT /increase_cartitem_quantity
func (h *CartHandler) IncreaseQuantity(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.svc.IncreaseQuantity)
}

// PUT /decrease_cartitem_quantity
func (h *CartHandler) DecreaseQuantity(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.svc.DecreaseQuantity)
}

func (h *CartHandler) adjust(w http.ResponseWriter, r *http.Request, op func(context.Context, int64) (int, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CartItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	quantity, err := op(ctx, req.ItemID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	var resp CartItemResponseDTO
	resp.Data.ID = req.ItemID
	resp.Data.Quantity = quantity
	resp.Message = "Cartitem updated successfully!"
	respondJSON(w, http.StatusOK, resp)
}

// DELETE /delete_cartitem/{id}
func (h *CartHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteLine(ctx, id); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
