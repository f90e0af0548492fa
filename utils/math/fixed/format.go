// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fixed

import "github.com/shopspring/decimal"

const (
	// PriceScale is the fixed-point scale of every price: 1.0 == 1_000_000.
	PriceScale = 1_000_000
	// PriceDecimals is log10(PriceScale).
	PriceDecimals = 6
)

// FormatPrice renders a PriceScale price with all six decimals.
func FormatPrice(p int64) string {
	return decimal.New(p, -PriceDecimals).StringFixed(PriceDecimals)
}

// Format renders x as a decimal with the given number of fractional digits.
func Format(x Int128, decimals int32) string {
	return decimal.NewFromBigInt(x.Big(), -decimals).StringFixed(decimals)
}
