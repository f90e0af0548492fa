// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package perpetuals

import (
	"errors"

	"github.com/luxfi/risk/utils/math/fixed"
)

var (
	ErrCalculationOverflow  = fixed.ErrCalculationOverflow
	ErrInvalidLeverage      = errors.New("invalid leverage")
	ErrInvalidPrice         = errors.New("invalid price")
	ErrZeroTradeSize        = errors.New("trade size must be non-zero")
	ErrExceedsMaxLeverage   = errors.New("exceeds maximum leverage")
	ErrInsufficientMargin   = errors.New("insufficient margin")
	ErrNotLiquidatable      = errors.New("position is not liquidatable")
	ErrNoOpenPosition       = errors.New("no open position")
	ErrFundingTooSoon       = errors.New("funding interval has not elapsed")
	ErrInvalidFundingParams = errors.New("invalid funding parameters")
	ErrNoTier               = errors.New("no leverage tier covers notional")
)
