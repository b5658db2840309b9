package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var Categories = []string{
	"vegetables",
	"fruits",
	"grains",
	"cereals",
	"pulses",
	"spices",
	"herbs",
	"dairy",
	"oils",
}

const DefaultMinimumStock = 10

type Product struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	SKU          string          `json:"sku"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	Featured     bool            `json:"featured"`
	MinimumStock int             `json:"minimumStock"`
	ImageURL     string          `json:"image"`
	CreatedAt    time.Time       `json:"created_at"`
}

func IsValidCategory(category string) bool {
	if category == "" {
		return true
	}
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
