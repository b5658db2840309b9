package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LowStockThreshold is the stock level under which a product is reported as running low.
const LowStockThreshold = 10

type RevenueSummary struct {
	Revenue decimal.Decimal
	Orders  int
}

type MonthlySales struct {
	Month  time.Time
	Sales  decimal.Decimal
	Orders int
}

type CategoryCount struct {
	Category string
	Products int
}

type ProductSales struct {
	Name  string
	Price decimal.Decimal
	Sold  int
}
