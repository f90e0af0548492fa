// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package perpetuals

import (
	"github.com/luxfi/risk/utils/math/fixed"
	safemath "github.com/luxfi/risk/utils/math"
)

// ApplyTrade applies a signed trade of delta base units at price to state.
//
// Buys are positive, sells negative. A zero delta returns state unchanged.
// Trades against the position realize PnL on the closed size at the current
// entry price. A trade larger than the position closes it in full and opens
// the remainder in the other direction at price.
func ApplyTrade(state PositionState, delta, price int64) (TradeResult, error) {
	result := TradeResult{
		NewBasePosition: state.BasePosition,
		NewEntryPrice:   state.EntryPrice,
		NewRealizedPnL:  state.RealizedPnL,
		Kind:            TradeNoop,
	}
	if delta == 0 {
		return result, nil
	}

	old := state.BasePosition
	newBase, err := fixed.Checked(safemath.AddSigned(old, delta))
	if err != nil {
		return TradeResult{}, err
	}
	result.NewBasePosition = newBase

	switch {
	case old == 0:
		result.NewEntryPrice = price
		result.Kind = TradeOpen
		return result, nil

	case (old > 0) == (delta > 0):
		entry, err := weightedEntry(old, state.EntryPrice, delta, price, newBase)
		if err != nil {
			return TradeResult{}, err
		}
		result.NewEntryPrice = entry
		result.Kind = TradeIncrease
		return result, nil
	}

	closeSize := min(safemath.AbsUint64(old), safemath.AbsUint64(delta))
	pnl, err := closePnL(closeSize, state.EntryPrice, price, old)
	if err != nil {
		return TradeResult{}, err
	}
	realized, err := state.RealizedPnL.Add(pnl)
	if err != nil {
		return TradeResult{}, err
	}
	result.PnLDelta = pnl
	result.NewRealizedPnL = realized

	switch {
	case newBase == 0:
		result.NewEntryPrice = 0
		result.Kind = TradeClose
	case (newBase > 0) == (old > 0):
		result.Kind = TradeReduce
	default:
		result.NewEntryPrice = price
		result.Kind = TradeFlip
	}
	return result, nil
}

// weightedEntry returns (|old|*entry + |delta|*price) / |newBase|, truncated
// toward zero.
func weightedEntry(old, entry, delta, price, newBase int64) (int64, error) {
	oldNotional, err := absInt128(old).Mul(fixed.NewInt128(entry))
	if err != nil {
		return 0, err
	}
	addNotional, err := absInt128(delta).Mul(fixed.NewInt128(price))
	if err != nil {
		return 0, err
	}
	total, err := oldNotional.Add(addNotional)
	if err != nil {
		return 0, err
	}
	avg, err := total.Quo(absInt128(newBase))
	if err != nil {
		return 0, err
	}
	return avg.Int64()
}

// closePnL returns size * (price - entry) * sign(old).
func closePnL(size uint64, entry, price, old int64) (fixed.Int128, error) {
	diff, err := fixed.NewInt128(price).Sub(fixed.NewInt128(entry))
	if err != nil {
		return fixed.Int128{}, err
	}
	pnl, err := uint64Int128(size).Mul(diff)
	if err != nil {
		return fixed.Int128{}, err
	}
	if old < 0 {
		return pnl.Neg()
	}
	return pnl, nil
}
