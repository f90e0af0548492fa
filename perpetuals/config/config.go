// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config defines the risk parameters of a perpetuals market.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/luxfi/risk/utils/math/fixed"
	"github.com/luxfi/risk/utils/wrappers"
)

const maxBps = 10_000

var (
	ErrInvalidConfig    = errors.New("invalid risk config")
	errZeroLeverage     = errors.New("max leverage must be positive")
	errBpsRange         = errors.New("basis points exceed 10000")
	errFeesExceedAll    = errors.New("liquidation fee plus penalty exceed 10000 bps")
	errNegativeRate     = errors.New("max funding rate must not be negative")
	errShortInterval    = errors.New("funding interval must be at least one second")
	errTierNotional     = errors.New("tier max notional must be positive")
	errTiersNotIncrease = errors.New("tiers must be sorted by strictly increasing max notional")
)

// LeverageTier caps leverage and sets maintenance margin for positions whose
// notional is at most MaxNotional.
type LeverageTier struct {
	MaxNotional          fixed.Int128 `json:"maxNotional"`
	MaxLeverage          uint16       `json:"maxLeverage"`
	MaintenanceMarginBps uint16       `json:"maintenanceMarginBps"`
}

// Config contains the risk parameters of one market.
type Config struct {
	// MaxLeverage is the market-wide leverage cap (e.g., 20 = 20x)
	MaxLeverage uint16 `json:"maxLeverage"`
	// MaintenanceMarginBps is the maintenance margin in basis points (500 = 5%)
	MaintenanceMarginBps uint16 `json:"maintenanceMarginBps"`

	// Liquidation configuration

	// LiquidationFeeBps is paid to the liquidator out of the closed notional
	LiquidationFeeBps uint16 `json:"liquidationFeeBps"`
	// LiquidationPenaltyBps is paid to the insurance fund out of the closed notional
	LiquidationPenaltyBps uint16 `json:"liquidationPenaltyBps"`

	// Funding configuration
	MaxFundingRate  int64         `json:"maxFundingRate"` // Per-period cap (scaled by 1e6)
	FundingInterval time.Duration `json:"fundingInterval"`

	// LeverageTiers optionally replaces the flat caps above by notional
	// bracket. Empty disables tiering.
	LeverageTiers []LeverageTier `json:"leverageTiers"`
}

// DefaultConfig returns the default risk configuration.
func DefaultConfig() Config {
	return Config{
		MaxLeverage:          20,  // 20x
		MaintenanceMarginBps: 500, // 5%

		LiquidationFeeBps:     250, // 2.5%
		LiquidationPenaltyBps: 250, // 2.5%

		MaxFundingRate:  1_000, // 0.1% per period
		FundingInterval: 8 * time.Hour,
	}
}

// Parse overlays the JSON in b onto DefaultConfig and verifies the result.
func Parse(b []byte) (Config, error) {
	c := DefaultConfig()
	if len(b) > 0 {
		if err := json.Unmarshal(b, &c); err != nil {
			return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return c, c.Verify()
}

// FundingIntervalSecs returns FundingInterval in whole seconds.
func (c Config) FundingIntervalSecs() int64 {
	return int64(c.FundingInterval / time.Second)
}

// Verify reports every invalid parameter in c.
func (c Config) Verify() error {
	var errs wrappers.Errs
	if c.MaxLeverage == 0 {
		errs.Add(errZeroLeverage)
	}
	if c.MaintenanceMarginBps > maxBps {
		errs.Add(fmt.Errorf("%w: maintenance margin %d", errBpsRange, c.MaintenanceMarginBps))
	}
	if int(c.LiquidationFeeBps)+int(c.LiquidationPenaltyBps) > maxBps {
		errs.Add(errFeesExceedAll)
	}
	if c.MaxFundingRate < 0 {
		errs.Add(errNegativeRate)
	}
	if c.FundingInterval < time.Second {
		errs.Add(errShortInterval)
	}
	for i, tier := range c.LeverageTiers {
		if tier.MaxLeverage == 0 {
			errs.Add(fmt.Errorf("tier %d: %w", i, errZeroLeverage))
		}
		if tier.MaintenanceMarginBps > maxBps {
			errs.Add(fmt.Errorf("tier %d: %w", i, errBpsRange))
		}
		if tier.MaxNotional.Sign() <= 0 {
			errs.Add(fmt.Errorf("tier %d: %w", i, errTierNotional))
		}
		if i > 0 && tier.MaxNotional.Cmp(c.LeverageTiers[i-1].MaxNotional) <= 0 {
			errs.Add(fmt.Errorf("tier %d: %w", i, errTiersNotIncrease))
		}
	}
	if errs.Errored() {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errs.All())
	}
	return nil
}
