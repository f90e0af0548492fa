// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package perpetuals

import "github.com/luxfi/risk/utils/math/fixed"

// LiquidationSettlement splits a liquidated position's collateral between
// the liquidator, the insurance fund and the trader.
type LiquidationSettlement struct {
	LiquidatorFee       uint64
	InsurancePenalty    uint64
	RemainingCollateral uint64
	BadDebt             uint64 // Shortfall once collateral is exhausted
	InsuranceDraw       uint64 // Part of BadDebt covered by the insurance fund
	InsuranceBalance    uint64 // Insurance fund after the draw and the penalty
	Emergency           bool   // BadDebt exceeded the insurance fund
}

// SettleLiquidation charges the liquidation fee and penalty on the closed
// notional and absorbs any resulting bad debt from the insurance fund.
//
//	fee       = floor(closedNotional * feeBps / 10000)
//	penalty   = floor(closedNotional * penaltyBps / 10000)
//	remaining = collateral + pnl - fee - penalty
//
// A negative remainder becomes bad debt. The insurance fund covers as much of
// it as it holds, and Emergency is set when it cannot cover all of it.
func SettleLiquidation(
	collateral uint64,
	pnl fixed.Int128,
	closedNotional fixed.Int128,
	feeBps uint16,
	penaltyBps uint16,
	insurance uint64,
) (LiquidationSettlement, error) {
	fee, err := bpsOf(closedNotional, feeBps)
	if err != nil {
		return LiquidationSettlement{}, err
	}
	penalty, err := bpsOf(closedNotional, penaltyBps)
	if err != nil {
		return LiquidationSettlement{}, err
	}

	remaining, err := uint64Int128(collateral).Add(pnl)
	if err != nil {
		return LiquidationSettlement{}, err
	}
	if remaining, err = remaining.Sub(fee); err != nil {
		return LiquidationSettlement{}, err
	}
	if remaining, err = remaining.Sub(penalty); err != nil {
		return LiquidationSettlement{}, err
	}

	var s LiquidationSettlement
	if s.LiquidatorFee, err = fee.Uint64(); err != nil {
		return LiquidationSettlement{}, err
	}
	if s.InsurancePenalty, err = penalty.Uint64(); err != nil {
		return LiquidationSettlement{}, err
	}

	if remaining.Sign() < 0 {
		if s.BadDebt, err = remaining.Abs().Uint64(); err != nil {
			return LiquidationSettlement{}, err
		}
		s.InsuranceDraw = min(s.BadDebt, insurance)
		s.Emergency = s.BadDebt > insurance
		remaining = fixed.Int128{}
	}
	if s.RemainingCollateral, err = remaining.Uint64(); err != nil {
		return LiquidationSettlement{}, err
	}

	balance, err := fixed.NewUint128(insurance - s.InsuranceDraw).Add(fixed.NewUint128(s.InsurancePenalty))
	if err != nil {
		return LiquidationSettlement{}, err
	}
	if s.InsuranceBalance, err = balance.Uint64(); err != nil {
		return LiquidationSettlement{}, err
	}
	return s, nil
}

func bpsOf(notional fixed.Int128, bps uint16) (fixed.Int128, error) {
	return fixed.SignedMulDivFloor(notional, fixed.NewInt128(int64(bps)), bpsDenom)
}
