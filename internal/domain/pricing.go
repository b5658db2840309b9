package domain

import "github.com/shopspring/decimal"

// Quote is the computed price breakdown of a cart at checkout time.
type Quote struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// Pricing holds the tax and shipping rules applied to a cart subtotal.
type Pricing struct {
	TaxRate               decimal.Decimal
	ShippingFee           decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

func DefaultPricing() Pricing {
	return Pricing{
		TaxRate:               decimal.RequireFromString("0.08"),
		ShippingFee:           decimal.RequireFromString("9.99"),
		FreeShippingThreshold: decimal.RequireFromString("50.00"),
	}
}

// Quote prices the given lines. The shipping fee applies when the subtotal does not
// exceed the free shipping threshold. Only the final total is rounded to cents.
func (p Pricing) Quote(lines []CartLine) Quote {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.SubTotal())
	}

	tax := subtotal.Mul(p.TaxRate)
	shipping := decimal.Zero
	if subtotal.LessThanOrEqual(p.FreeShippingThreshold) {
		shipping = p.ShippingFee
	}

	return Quote{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping).Round(2),
	}
}

// MinorUnits converts a major-unit amount to the provider's integer representation (cents).
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Round(2).Shift(2).IntPart()
}

// FromMinorUnits converts a provider integer amount back to major units.
func FromMinorUnits(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}
