package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/freshbuy/internal/domain"
	"github.com/fjod/freshbuy/internal/repository"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func testCart() *domain.Cart {
	return &domain.Cart{
		ID:   3,
		Code: "ABC123",
		Lines: []domain.CartLine{
			{ID: 1, Product: domain.Product{ID: 10, Name: "Yam", Price: decimal.RequireFromString("2.50")}, Quantity: 2},
			{ID: 2, Product: domain.Product{ID: 11, Name: "Okra", Price: decimal.RequireFromString("1.25")}, Quantity: 4},
		},
	}
}

func TestGetCart_Success(t *testing.T) {
	handler := NewCartHandler(&mockCart{cart: testCart()}, 5*time.Second)

	rec := httptest.NewRecorder()
	handler.GetCart(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/get_cart/ABC123", nil), "cart_code", "ABC123"))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp CartDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ABC123", resp.CartCode)
	require.Len(t, resp.CartItems, 2)
	assert.True(t, resp.CartItems[0].SubTotal.Equal(decimal.RequireFromString("5.00")))
	assert.True(t, resp.CartTotal.Equal(decimal.RequireFromString("10.00")))
}

func TestGetCart_NotFound(t *testing.T) {
	handler := NewCartHandler(&mockCart{err: repository.ErrCartNotFound}, 5*time.Second)

	rec := httptest.NewRecorder()
	handler.GetCart(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/get_cart/NOPE", nil), "cart_code", "NOPE"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Code)
}

func TestAddItem_DefaultsQuantityToOne(t *testing.T) {
	mock := &mockCart{cart: testCart()}
	handler := NewCartHandler(mock, 5*time.Second)

	rec := httptest.NewRecorder()
	handler.AddItem(rec, httptest.NewRequest(http.MethodPost, "/add_to_cart", strings.NewReader(`{"cart_code":"ABC123","product_id":10}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.AddItem(rec, httptest.NewRequest(http.MethodPost, "/add_to_cart", strings.NewReader(`{"cart_code":"ABC123","product_id":10,"quantity":3}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []int{1, 3}, mock.added)
}

func TestCheckProductInCart(t *testing.T) {
	handler := NewCartHandler(&mockCart{inCart: true}, 5*time.Second)

	rec := httptest.NewRecorder()
	handler.CheckProductInCart(rec, httptest.NewRequest(http.MethodGet, "/check_product_in_cart?cart_code=ABC123&product_id=10", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"in_cart":true}`, rec.Body.String())

	rec = httptest.NewRecorder()
	handler.CheckProductInCart(rec, httptest.NewRequest(http.MethodGet, "/check_product_in_cart?cart_code=ABC123", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIncreaseQuantity(t *testing.T) {
	handler := NewCartHandler(&mockCart{quantity: 4}, 5*time.Second)

	rec := httptest.NewRecorder()
	handler.IncreaseQuantity(rec, httptest.NewRequest(http.MethodPut, "/increase_cartitem_quantity", strings.NewReader(`{"item_id":9}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"id":9,"quantity":4},"message":"Cartitem updated successfully!"}`, rec.Body.String())
}

func TestDeleteItem(t *testing.T) {
	handler := NewCartHandler(&mockCart{}, 5*time.Second)

	rec := httptest.NewRecorder()
	handler.DeleteItem(rec, withURLParam(httptest.NewRequest(http.MethodDelete, "/delete_cartitem/9", nil), "id", "9"))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	handler.DeleteItem(rec, withURLParam(httptest.NewRequest(http.MethodDelete, "/delete_cartitem/x", nil), "id", "x"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
