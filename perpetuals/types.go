// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package perpetuals implements the risk arithmetic of a perpetual futures
// market: trade application, funding settlement, margin requirements and
// liquidation sizing. Every function is pure integer math over position
// snapshots. Callers own persistence and sequencing.
package perpetuals

import "github.com/luxfi/risk/utils/math/fixed"

const (
	// PriceScale is the fixed-point scale of every price (1e6).
	PriceScale = fixed.PriceScale
	// BasisPointDenom is 100% expressed in basis points.
	BasisPointDenom = 10_000
)

// Side represents the position side, derived from the sign of the base size.
type Side uint8

const (
	Flat Side = iota
	Long
	Short
)

func (s Side) String() string {
	switch s {
	case Flat:
		return "flat"
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "unknown"
	}
}

// SideOf returns the side of a signed base size.
func SideOf(base int64) Side {
	switch {
	case base > 0:
		return Long
	case base < 0:
		return Short
	default:
		return Flat
	}
}

// PositionState is a snapshot of a trader's position in one market.
//
// EntryPrice is zero iff BasePosition is zero. Quote quantities (collateral,
// PnL, notional, margin) share one unit: base units times a PriceScale price.
type PositionState struct {
	BasePosition   int64        `json:"basePosition"`   // Signed base units, positive = long
	EntryPrice     int64        `json:"entryPrice"`     // Average entry price (scaled by 1e6)
	RealizedPnL    fixed.Int128 `json:"realizedPnl"`    // PnL locked in by closes
	LastCumFunding fixed.Int128 `json:"lastCumFunding"` // Market funding index at last settlement
	Collateral     uint64       `json:"collateral"`     // Collateral backing the position
}

func (p PositionState) Side() Side {
	return SideOf(p.BasePosition)
}

func (p PositionState) IsFlat() bool {
	return p.BasePosition == 0
}

// TradeKind classifies how a trade changed a position.
type TradeKind uint8

const (
	TradeNoop TradeKind = iota
	TradeOpen
	TradeIncrease
	TradeReduce
	TradeClose
	TradeFlip
)

func (k TradeKind) String() string {
	switch k {
	case TradeNoop:
		return "noop"
	case TradeOpen:
		return "open"
	case TradeIncrease:
		return "increase"
	case TradeReduce:
		return "reduce"
	case TradeClose:
		return "close"
	case TradeFlip:
		return "flip"
	default:
		return "unknown"
	}
}

// TradeResult is the outcome of applying one trade to a position.
type TradeResult struct {
	NewBasePosition int64
	NewEntryPrice   int64
	NewRealizedPnL  fixed.Int128
	PnLDelta        fixed.Int128 // PnL realized by this trade alone
	Kind            TradeKind
}

// Apply returns p with the position fields of r written over it.
func (r TradeResult) Apply(p PositionState) PositionState {
	p.BasePosition = r.NewBasePosition
	p.EntryPrice = r.NewEntryPrice
	p.RealizedPnL = r.NewRealizedPnL
	return p
}

// MarketFunding is the market-wide funding state.
type MarketFunding struct {
	CumulativeFunding    fixed.Int128 `json:"cumulativeFunding"`
	FundingRate          int64        `json:"fundingRate"`          // Last period rate (scaled by 1e6)
	LastFundingTimestamp int64        `json:"lastFundingTimestamp"` // Unix seconds
}

// FundingSettlement is the result of settling a position's funding.
type FundingSettlement struct {
	Collateral   uint64
	Checkpoint   fixed.Int128
	FundingDelta fixed.Int128 // Positive when the position paid
}
