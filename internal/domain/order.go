package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID          int64
	Reference   *string
	SKU         string
	UserID      int64
	TotalAmount decimal.Decimal
	Status      OrderStatus
	CartCode    string
	Lines       []OrderLine
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type OrderLine struct {
	ID       int64
	OrderID  int64
	Product  Product
	Quantity int
}

// Age returns how long the order has existed at the given instant.
func (o *Order) Age(now time.Time) time.Duration {
	return now.Sub(o.CreatedAt)
}

// OrderSnapshot is the state captured from a cart when checkout is initialized.
type OrderSnapshot struct {
	UserID   int64
	CartCode string
	Total    decimal.Decimal
	Lines    []SnapshotLine
}

type SnapshotLine struct {
	ProductID int64
	Quantity  int
}

func NewOrderSnapshot(userID int64, cart *Cart, quote Quote) *OrderSnapshot {
	lines := make([]SnapshotLine, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		lines = append(lines, SnapshotLine{
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
		})
	}
	return &OrderSnapshot{
		UserID:   userID,
		CartCode: cart.Code,
		Total:    quote.Total,
		Lines:    lines,
	}
}
