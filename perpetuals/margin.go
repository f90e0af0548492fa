// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package perpetuals

import (
	"github.com/luxfi/risk/utils/math/fixed"
	safemath "github.com/luxfi/risk/utils/math"
)

// CanIncreasePosition reports whether equity after a trade covers the
// initial margin. Sitting exactly on the requirement is allowed.
func CanIncreasePosition(equityAfter, initialMargin fixed.Int128) bool {
	return equityAfter.Cmp(initialMargin) >= 0
}

// IsLiquidatable reports whether equity is strictly below maintenance margin.
func IsLiquidatable(equity, maintenanceMargin fixed.Int128) bool {
	return equity.Lt(maintenanceMargin)
}

// LiquidationCloseSize returns how many base units to close so that a
// liquidatable position is brought back toward its maintenance requirement.
//
// Non-positive equity closes the whole position. Otherwise the deficit
// (maintenance - equity) is divided by the maintenance cost of one unit at
// markPrice, rounded up, clamped to |base| and floored at one unit. A
// position that is not under-margined returns zero.
func LiquidationCloseSize(base, markPrice int64, equity, maintenanceMargin fixed.Int128, mmBps uint16) (int64, error) {
	if base == 0 {
		return 0, nil
	}
	abs := safemath.AbsUint64(base)
	full, err := fixed.Checked(safemath.Int64(abs))
	if err != nil {
		return 0, err
	}
	if equity.Sign() <= 0 {
		return full, nil
	}

	deficit, err := maintenanceMargin.Sub(equity)
	if err != nil {
		return 0, err
	}
	if deficit.Sign() <= 0 {
		return 0, nil
	}

	costPerUnit, err := fixed.SignedMulDivCeil(absInt128(markPrice), fixed.NewInt128(int64(mmBps)), bpsDenom)
	if err != nil {
		return 0, err
	}
	if costPerUnit.IsZero() {
		return full, nil
	}

	size, err := fixed.CeilDiv(deficit, costPerUnit)
	if err != nil {
		return 0, err
	}
	if absInt128(base).Lt(size) {
		return full, nil
	}
	closeSize, err := size.Int64()
	if err != nil {
		return 0, err
	}
	return max(closeSize, 1), nil
}
