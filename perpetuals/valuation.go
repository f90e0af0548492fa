// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package perpetuals

import (
	"github.com/luxfi/risk/utils/math/fixed"
	safemath "github.com/luxfi/risk/utils/math"
)

var (
	one        = fixed.NewInt128(1)
	bpsDenom   = fixed.NewInt128(BasisPointDenom)
	priceScale = fixed.NewInt128(PriceScale)
)

func absInt128(x int64) fixed.Int128 {
	// |MinInt64| fits comfortably in 128 bits.
	i, _ := fixed.NewUint128(safemath.AbsUint64(x)).Int128()
	return i
}

func uint64Int128(x uint64) fixed.Int128 {
	i, _ := fixed.NewUint128(x).Int128()
	return i
}

// NotionalValue returns |base| * |price|.
func NotionalValue(base, price int64) (fixed.Int128, error) {
	return absInt128(base).Mul(absInt128(price))
}

// UnrealizedPnL returns base * (mark - entry). The sign of base carries the
// direction, so a favorable move is positive for either side.
func UnrealizedPnL(base, entry, mark int64) (fixed.Int128, error) {
	if base == 0 {
		return fixed.Int128{}, nil
	}
	diff, err := fixed.NewInt128(mark).Sub(fixed.NewInt128(entry))
	if err != nil {
		return fixed.Int128{}, err
	}
	return fixed.NewInt128(base).Mul(diff)
}

// InitialMargin returns ceil(notional / leverage).
func InitialMargin(notional fixed.Int128, leverage uint16) (fixed.Int128, error) {
	if leverage == 0 {
		return fixed.Int128{}, ErrInvalidLeverage
	}
	return fixed.CeilDiv(notional, fixed.NewInt128(int64(leverage)))
}

// MaintenanceMargin returns ceil(notional * mmBps / 10000).
func MaintenanceMargin(notional fixed.Int128, mmBps uint16) (fixed.Int128, error) {
	return fixed.SignedMulDivCeil(notional, fixed.NewInt128(int64(mmBps)), bpsDenom)
}

// ComputeEquity returns collateral + realized + unrealized - fundingOwed.
// A negative result is bad debt.
func ComputeEquity(
	collateral uint64,
	realized fixed.Int128,
	base int64,
	entry int64,
	mark int64,
	fundingOwed fixed.Int128,
) (fixed.Int128, error) {
	upnl, err := UnrealizedPnL(base, entry, mark)
	if err != nil {
		return fixed.Int128{}, err
	}
	equity, err := uint64Int128(collateral).Add(realized)
	if err != nil {
		return fixed.Int128{}, err
	}
	if equity, err = equity.Add(upnl); err != nil {
		return fixed.Int128{}, err
	}
	return equity.Sub(fundingOwed)
}
