// Package pricing derives the checkout price breakdown from cart lines.
//
// Compute is pure: the same lines under the same policy always yield the same
// breakdown regardless of line order. Components are rounded to cents and the
// grand total is the exact sum of the rounded components.
package pricing

import (
	"github.com/shopspring/decimal"
)

const centPlaces = 2

// Line is the minimal view of a priced line item.
type Line struct {
	UnitPrice float64
	Quantity  int
}

// Policy holds the shipping and tax rules.
type Policy struct {
	FreeShippingThreshold decimal.Decimal // shipping is free strictly above this
	FlatShippingFee       decimal.Decimal
	TaxRate               decimal.Decimal
}

// DefaultPolicy: free shipping over 100, otherwise 10; 15% tax.
var DefaultPolicy = Policy{
	FreeShippingThreshold: decimal.NewFromInt(100),
	FlatShippingFee:       decimal.NewFromInt(10),
	TaxRate:               decimal.RequireFromString("0.15"),
}

// NewPolicy builds a Policy from configuration values.
func NewPolicy(freeShippingThreshold, flatShippingFee, taxRate float64) Policy {
	return Policy{
		FreeShippingThreshold: decimal.NewFromFloat(freeShippingThreshold),
		FlatShippingFee:       decimal.NewFromFloat(flatShippingFee),
		TaxRate:               decimal.NewFromFloat(taxRate),
	}
}

// Breakdown is the derived itemized total.
type Breakdown struct {
	ItemsPrice    decimal.Decimal
	ShippingPrice decimal.Decimal
	TaxPrice      decimal.Decimal
	TotalPrice    decimal.Decimal
}

// Compute prices lines under p.
func (p Policy) Compute(lines []Line) Breakdown {
	items := decimal.Zero
	for _, l := range lines {
		items = items.Add(decimal.NewFromFloat(l.UnitPrice).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	shipping := p.FlatShippingFee
	if items.GreaterThan(p.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	itemsRounded := items.Round(centPlaces)
	shippingRounded := shipping.Round(centPlaces)
	tax := p.TaxRate.Mul(items).Round(centPlaces)

	return Breakdown{
		ItemsPrice:    itemsRounded,
		ShippingPrice: shippingRounded,
		TaxPrice:      tax,
		TotalPrice:    itemsRounded.Add(shippingRounded).Add(tax),
	}
}

// Compute prices lines under DefaultPolicy.
func Compute(lines []Line) Breakdown {
	return DefaultPolicy.Compute(lines)
}

// FromFloats rebuilds a Breakdown from client-submitted amounts.
func FromFloats(items, shipping, tax, total float64) Breakdown {
	return Breakdown{
		ItemsPrice:    decimal.NewFromFloat(items),
		ShippingPrice: decimal.NewFromFloat(shipping),
		TaxPrice:      decimal.NewFromFloat(tax),
		TotalPrice:    decimal.NewFromFloat(total),
	}
}

// Matches reports whether b and other agree to the cent on every component.
func (b Breakdown) Matches(other Breakdown) bool {
	return b.ItemsPrice.Round(centPlaces).Equal(other.ItemsPrice.Round(centPlaces)) &&
		b.ShippingPrice.Round(centPlaces).Equal(other.ShippingPrice.Round(centPlaces)) &&
		b.TaxPrice.Round(centPlaces).Equal(other.TaxPrice.Round(centPlaces)) &&
		b.TotalPrice.Round(centPlaces).Equal(other.TotalPrice.Round(centPlaces))
}

// Strings renders the four components with two decimals, in
// items, shipping, tax, total order.
func (b Breakdown) Strings() (items, shipping, tax, total string) {
	return b.ItemsPrice.StringFixed(centPlaces),
		b.ShippingPrice.StringFixed(centPlaces),
		b.TaxPrice.StringFixed(centPlaces),
		b.TotalPrice.StringFixed(centPlaces)
}

// Floats returns the four components as float64 for JSON payloads.
func (b Breakdown) Floats() (items, shipping, tax, total float64) {
	return b.ItemsPrice.InexactFloat64(),
		b.ShippingPrice.InexactFloat64(),
		b.TaxPrice.InexactFloat64(),
		b.TotalPrice.InexactFloat64()
}
