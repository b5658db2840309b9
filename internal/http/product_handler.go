package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/fjod/freshbuy/internal/domain"
	"github.com/fjod/freshbuy/internal/service"
)

type CatalogAPI interface {
	CreateProduct(ctx context.Context, in service.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, in service.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	ListProducts(ctx context.Context, search string, page int) (*service.Page[*domain.Product], error)
	ListAllProducts(ctx context.Context, search, category string, page int) (*service.Page[*domain.Product], error)
	FeaturedProducts(ctx context.Context) ([]*domain.Product, error)
	GenerateDescription(ctx context.Context, productName string) (string, error)
}

type ProductHandler struct {
	svc     CatalogAPI
	timeout time.Duration
}

func NewProductHandler(svc CatalogAPI, timeout time.Duration) *ProductHandler {
	return &ProductHandler{svc: svc, timeout: timeout}
}

// ProductRequestDTO is the body of create and update requests. Omitted fields keep their value on update.
type ProductRequestDTO struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	Category     *string          `json:"category"`
	Price        *decimal.Decimal `json:"price"`
	Quantity     *int             `json:"quantity"`
	MinimumStock *int             `json:"minimumStock"`
	Featured     *bool            `json:"featured"`
	Image        *string          `json:"image"`
}

func (d ProductRequestDTO) input() service.ProductInput {
	return service.ProductInput{
		Name:         d.Name,
		Description:  d.Description,
		Category:     d.Category,
		Price:        d.Price,
		Quantity:     d.Quantity,
		MinimumStock: d.MinimumStock,
		Featured:     d.Featured,
		ImageURL:     d.Image,
	}
}

// POST /add_product
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ProductRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.svc.CreateProduct(ctx, req.input())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

// PUT|PATCH /update_product/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req ProductRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.svc.UpdateProduct(ctx, id, req.input())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// DELETE /delete_product/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteProduct(ctx, id); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /get_product/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	product, err := h.svc.GetProduct(ctx, id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// GET /get_product_by_slug/{slug}
func (h *ProductHandler) GetProductBySlug(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	product, err := h.svc.GetProductBySlug(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// GET /get_products?search=&page=
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	page, ok := pageParam(w, r)
	if !ok {
		return
	}
	res, err := h.svc.ListProducts(ctx, r.URL.Query().Get("search"), page)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// GET /get_all_products?search=&category=&page=
func (h *ProductHandler) ListAllProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	page, ok := pageParam(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	res, err := h.svc.ListAllProducts(ctx, q.Get("search"), q.Get("category"), page)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// GET /get_featured_products
func (h *ProductHandler) FeaturedProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.svc.FeaturedProducts(ctx)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if products == nil {
		products = []*domain.Product{}
	}
	respondJSON(w, http.StatusOK, products)
}

// POST /generate_product_description
func (h *ProductHandler) GenerateDescription(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	text, err := h.svc.GenerateDescription(ctx, req.Name)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"name": req.Name, "description": text})
}
