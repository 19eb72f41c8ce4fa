package domain

import "github.com/shopspring/decimal"

// priceTolerance is the largest difference accepted between a computed price
// and a recorded payment amount.
var priceTolerance = decimal.New(1, -2)

// CalculatePrice returns basePrice * multiplier rounded to two places, half
// away from zero, and never below zero.
func CalculatePrice(basePrice, multiplier decimal.Decimal) decimal.Decimal {
	price := basePrice.Mul(multiplier).Round(2)
	if price.IsNegative() {
		return decimal.Zero
	}

	return price
}

// PriceMatches reports whether amount is within one cent of price.
func PriceMatches(price, amount decimal.Decimal) bool {
	return price.Sub(amount).Abs().LessThanOrEqual(priceTolerance)
}
