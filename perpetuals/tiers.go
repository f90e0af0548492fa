// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package perpetuals

import (
	"fmt"

	"github.com/luxfi/risk/perpetuals/config"
	"github.com/luxfi/risk/utils/math/fixed"
)

// UnitNotional is the notional of one quote unit when base sizes carry six
// decimals: 1e6 base units times a 1e6-scaled price.
const UnitNotional = 1_000_000 * PriceScale

// LeverageTiers is a notional-bracketed leverage schedule, sorted by
// strictly increasing MaxNotional.
type LeverageTiers []config.LeverageTier

// DefaultLeverageTiers returns a tiered leverage schedule: up to 1001x for
// tiny positions, stepping down to 1x above 250M quote units.
func DefaultLeverageTiers() LeverageTiers {
	notional := func(v int64) fixed.Int128 {
		n, _ := fixed.NewInt128(v).Mul(fixed.NewInt128(UnitNotional))
		return n
	}
	return LeverageTiers{
		{MaxNotional: notional(200), MaxLeverage: 1001, MaintenanceMarginBps: 10},        // 0.1%
		{MaxNotional: notional(2_000), MaxLeverage: 500, MaintenanceMarginBps: 20},       // 0.2%
		{MaxNotional: notional(10_000), MaxLeverage: 250, MaintenanceMarginBps: 25},      // 0.25%
		{MaxNotional: notional(50_000), MaxLeverage: 200, MaintenanceMarginBps: 50},      // 0.5%
		{MaxNotional: notional(500_000), MaxLeverage: 100, MaintenanceMarginBps: 100},    // 1%
		{MaxNotional: notional(1_000_000), MaxLeverage: 75, MaintenanceMarginBps: 150},   // 1.5%
		{MaxNotional: notional(2_500_000), MaxLeverage: 50, MaintenanceMarginBps: 200},   // 2%
		{MaxNotional: notional(5_000_000), MaxLeverage: 25, MaintenanceMarginBps: 250},   // 2.5%
		{MaxNotional: notional(12_500_000), MaxLeverage: 20, MaintenanceMarginBps: 300},  // 3%
		{MaxNotional: notional(25_000_000), MaxLeverage: 10, MaintenanceMarginBps: 500},  // 5%
		{MaxNotional: notional(75_000_000), MaxLeverage: 5, MaintenanceMarginBps: 1000},  // 10%
		{MaxNotional: notional(125_000_000), MaxLeverage: 4, MaintenanceMarginBps: 1250}, // 12.5%
		{MaxNotional: notional(200_000_000), MaxLeverage: 3, MaintenanceMarginBps: 1500}, // 15%
		{MaxNotional: notional(250_000_000), MaxLeverage: 2, MaintenanceMarginBps: 2500}, // 25%
		{MaxNotional: fixed.MaxInt128, MaxLeverage: 1, MaintenanceMarginBps: 5000},       // 50%, unlimited
	}
}

// Find returns the first tier whose MaxNotional covers notional.
func (ts LeverageTiers) Find(notional fixed.Int128) (config.LeverageTier, error) {
	for _, tier := range ts {
		if notional.Cmp(tier.MaxNotional) <= 0 {
			return tier, nil
		}
	}
	return config.LeverageTier{}, fmt.Errorf("%w: %s", ErrNoTier, notional)
}

// Limits returns the leverage cap and maintenance margin that apply to a
// position of the given notional. Without tiers the market values apply.
// With tiers the leverage cap is the lower of the market and tier caps.
func (ts LeverageTiers) Limits(notional fixed.Int128, marketLeverage, marketMMBps uint16) (uint16, uint16, error) {
	if len(ts) == 0 {
		return marketLeverage, marketMMBps, nil
	}
	tier, err := ts.Find(notional)
	if err != nil {
		return 0, 0, err
	}
	return min(marketLeverage, tier.MaxLeverage), tier.MaintenanceMarginBps, nil
}
