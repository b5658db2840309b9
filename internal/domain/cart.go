package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// A cart line holds between MinLineQuantity and MaxLineQuantity units.
const (
	MinLineQuantity = 1
	MaxLineQuantity = 99
)

type Cart struct {
	ID        int64      `json:"id"`
	Code      string     `json:"cart_code"`
	Lines     []CartLine `json:"cartitems"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartLine struct {
	ID       int64   `json:"id"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

func (l CartLine) SubTotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.SubTotal())
	}
	return total
}

func (c *Cart) HasProduct(productID int64) bool {
	for _, line := range c.Lines {
		if line.Product.ID == productID {
			return true
		}
	}
	return false
}
