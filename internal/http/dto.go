package http

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fjod/freshbuy/internal/domain"
)

type UserDTO struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

type CartLineDTO struct {
	ID       int64           `json:"id"`
	Product  domain.Product  `json:"product"`
	Quantity int             `json:"quantity"`
	SubTotal decimal.Decimal `json:"sub_total"`
}

type CartDTO struct {
	ID        int64           `json:"id"`
	CartCode  string          `json:"cart_code"`
	CartItems []CartLineDTO   `json:"cartitems"`
	CartTotal decimal.Decimal `json:"cart_total"`
}

func toCartDTO(c *domain.Cart) CartDTO {
	dto := CartDTO{
		ID:        c.ID,
		CartCode:  c.Code,
		CartItems: make([]CartLineDTO, 0, len(c.Lines)),
		CartTotal: c.Total(),
	}
	for _, l := range c.Lines {
		dto.CartItems = append(dto.CartItems, CartLineDTO{
			ID:       l.ID,
			Product:  l.Product,
			Quantity: l.Quantity,
			SubTotal: l.SubTotal(),
		})
	}
	return dto
}

type OrderLineDTO struct {
	ID       int64          `json:"id"`
	Product  domain.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

type OrderDTO struct {
	ID          int64           `json:"id"`
	Reference   *string         `json:"reference"`
	SKU         string          `json:"sku"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      string          `json:"status"`
	OrderItems  []OrderLineDTO  `json:"orderitems"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func toOrderDTO(o *domain.Order) OrderDTO {
	dto := OrderDTO{
		ID:          o.ID,
		Reference:   o.Reference,
		SKU:         o.SKU,
		TotalAmount: o.TotalAmount,
		Status:      o.Status.String(),
		OrderItems:  make([]OrderLineDTO, 0, len(o.Lines)),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	for _, l := range o.Lines {
		dto.OrderItems = append(dto.OrderItems, OrderLineDTO{ID: l.ID, Product: l.Product, Quantity: l.Quantity})
	}
	return dto
}

type LowStockDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
}

type RecentOrderDTO struct {
	ID          int64           `json:"id"`
	SKU         string          `json:"sku"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

type DashboardDTO struct {
	TotalProducts    int              `json:"total_products"`
	TotalOrders      int              `json:"total_orders"`
	TotalRevenue     decimal.Decimal  `json:"total_revenue"`
	LowStockProducts []LowStockDTO    `json:"low_stock_products"`
	RecentOrders     []RecentOrderDTO `json:"recent_orders"`
}

// amountNumber renders money as a JSON number with two decimals.
func amountNumber(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}
