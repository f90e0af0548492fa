// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package perpetuals

import (
	"fmt"

	"github.com/luxfi/risk/utils/math/fixed"
)

// FundingOwed returns base * (marketIndex - lastIndex), the funding a
// position owes since its last checkpoint. Positive means the position pays.
func FundingOwed(base int64, lastIndex, marketIndex fixed.Int128) (fixed.Int128, error) {
	if base == 0 {
		return fixed.Int128{}, nil
	}
	diff, err := marketIndex.Sub(lastIndex)
	if err != nil {
		return fixed.Int128{}, err
	}
	return fixed.NewInt128(base).Mul(diff)
}

// SettleFunding charges the funding owed since lastIndex against collateral
// and advances the checkpoint to marketIndex.
//
// Collateral is floored at zero. Any shortfall beyond it is left for the
// equity and liquidation checks to observe.
func SettleFunding(base int64, collateral uint64, lastIndex, marketIndex fixed.Int128) (FundingSettlement, error) {
	settlement := FundingSettlement{
		Collateral: collateral,
		Checkpoint: marketIndex,
	}
	if base == 0 {
		return settlement, nil
	}
	delta, err := FundingOwed(base, lastIndex, marketIndex)
	if err != nil {
		return FundingSettlement{}, err
	}
	if delta.IsZero() {
		return settlement, nil
	}
	remaining, err := uint64Int128(collateral).Sub(delta)
	if err != nil {
		return FundingSettlement{}, err
	}
	if remaining.Sign() < 0 {
		remaining = fixed.Int128{}
	}
	if settlement.Collateral, err = remaining.Uint64(); err != nil {
		return FundingSettlement{}, err
	}
	settlement.FundingDelta = delta
	return settlement, nil
}

// ValidateFundingParams checks a market's funding cap and interval.
func ValidateFundingParams(maxRate, intervalSecs int64) error {
	if maxRate < 0 {
		return fmt.Errorf("%w: max funding rate %d is negative", ErrInvalidFundingParams, maxRate)
	}
	if intervalSecs <= 0 {
		return fmt.Errorf("%w: funding interval %ds must be positive", ErrInvalidFundingParams, intervalSecs)
	}
	return nil
}

// UpdateFundingIndex advances the market funding index by one period.
//
//	premium = (mark - index) * PriceScale / index
//	rate    = clamp(premium, -maxRate, maxRate)
//	cum    += index * rate / PriceScale
//
// Divisions truncate toward zero.
func UpdateFundingIndex(
	market MarketFunding,
	markPrice int64,
	indexPrice int64,
	now int64,
	maxRate int64,
	intervalSecs int64,
) (MarketFunding, error) {
	if err := ValidateFundingParams(maxRate, intervalSecs); err != nil {
		return MarketFunding{}, err
	}
	elapsed, err := fixed.NewInt128(now).Sub(fixed.NewInt128(market.LastFundingTimestamp))
	if err != nil {
		return MarketFunding{}, err
	}
	if elapsed.Cmp(fixed.NewInt128(intervalSecs)) < 0 {
		return MarketFunding{}, fmt.Errorf("%w: %ss elapsed, interval is %ds", ErrFundingTooSoon, elapsed, intervalSecs)
	}
	if indexPrice <= 0 {
		return MarketFunding{}, fmt.Errorf("%w: index price %d", ErrInvalidPrice, indexPrice)
	}

	index := fixed.NewInt128(indexPrice)
	spread, err := fixed.NewInt128(markPrice).Sub(index)
	if err != nil {
		return MarketFunding{}, err
	}
	premium, err := fixed.SignedMulDiv(spread, priceScale, index)
	if err != nil {
		return MarketFunding{}, err
	}
	rate := clamp(premium, fixed.NewInt128(-maxRate), fixed.NewInt128(maxRate))
	increment, err := fixed.SignedMulDiv(index, rate, priceScale)
	if err != nil {
		return MarketFunding{}, err
	}
	cum, err := market.CumulativeFunding.Add(increment)
	if err != nil {
		return MarketFunding{}, err
	}
	rate64, err := rate.Int64()
	if err != nil {
		return MarketFunding{}, err
	}
	return MarketFunding{
		CumulativeFunding:    cum,
		FundingRate:          rate64,
		LastFundingTimestamp: now,
	}, nil
}

func clamp(x, lo, hi fixed.Int128) fixed.Int128 {
	switch {
	case x.Lt(lo):
		return lo
	case hi.Lt(x):
		return hi
	default:
		return x
	}
}
