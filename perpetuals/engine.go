// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package perpetuals

import (
	"errors"
	"fmt"
	"time"

	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/risk/perpetuals/config"
	"github.com/luxfi/risk/utils/math/fixed"
)

// PriceSource supplies PriceScale prices. Staleness and availability checks
// belong to the implementation or the caller.
type PriceSource interface {
	Price(at time.Time) (int64, error)
}

// Engine sequences the pure position functions for one market: funding is
// settled before every trade and liquidation check. It holds no position
// state and is safe for concurrent use.
type Engine struct {
	config  config.Config
	tiers   LeverageTiers
	log     log.Logger
	metrics *metrics
}

// TradeRequest is a signed trade against a position snapshot.
type TradeRequest struct {
	Position    PositionState
	Delta       int64 // Positive buys, negative sells
	Price       int64
	Leverage    uint16
	MarketIndex fixed.Int128 // Current market cumulative funding
}

// TradeOutcome is the position after a trade and the figures that admitted it.
type TradeOutcome struct {
	Position      PositionState
	Trade         TradeResult
	Funding       FundingSettlement
	InitialMargin fixed.Int128
	EquityAfter   fixed.Int128
}

// MarginFigures describes a position's margin at a mark price.
type MarginFigures struct {
	Notional             fixed.Int128
	InitialMargin        fixed.Int128
	MaintenanceMargin    fixed.Int128
	MaintenanceMarginBps uint16
	MaxLeverage          uint16
	FundingOwed          fixed.Int128
	Equity               fixed.Int128
	Liquidatable         bool
}

// LiquidationRequest asks to liquidate a position at a mark price.
type LiquidationRequest struct {
	Position         PositionState
	MarkPrice        int64
	MarketIndex      fixed.Int128
	InsuranceBalance uint64
}

// LiquidationOutcome is the position after liquidation and where its
// collateral went.
type LiquidationOutcome struct {
	Position           PositionState
	Trade              TradeResult
	Funding            FundingSettlement
	CloseSize          int64
	Full               bool
	Equity             fixed.Int128 // Equity that triggered the liquidation
	MaintenanceMargin  fixed.Int128
	Settlement         LiquidationSettlement
	ReturnedCollateral uint64 // Paid back to the trader on a full close
}

// NewEngine returns an engine for cfg. A nil logger discards logs and a nil
// registerer registers metrics on a private registry.
func NewEngine(cfg config.Config, logger log.Logger, registerer prometheus.Registerer) (*Engine, error) {
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	if registerer == nil {
		registerer = prometheus.NewRegistry()
	}
	m, err := newMetrics(registerer)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	return &Engine{
		config:  cfg,
		tiers:   LeverageTiers(cfg.LeverageTiers),
		log:     logger,
		metrics: m,
	}, nil
}

func (e *Engine) Config() config.Config {
	return e.config
}

// ExecuteTrade settles funding and applies req.Delta at req.Price.
//
// Trades that grow the position, or flip it, must respect the market and
// tier leverage caps and leave equity at or above the initial margin of the
// new notional at req.Leverage. Reductions and closes skip those checks and
// report a zero InitialMargin.
func (e *Engine) ExecuteTrade(req TradeRequest) (TradeOutcome, error) {
	out, err := e.executeTrade(req)
	if err != nil {
		e.reject("trade", err)
		return TradeOutcome{}, err
	}
	e.metrics.trade(out.Trade.Kind)
	e.log.Debug("trade applied",
		"kind", out.Trade.Kind,
		"base", out.Position.BasePosition,
		"entry", fixed.FormatPrice(out.Position.EntryPrice),
		"pnlDelta", out.Trade.PnLDelta,
		"equityAfter", out.EquityAfter,
	)
	return out, nil
}

func (e *Engine) executeTrade(req TradeRequest) (TradeOutcome, error) {
	switch {
	case req.Price <= 0:
		return TradeOutcome{}, fmt.Errorf("%w: %d", ErrInvalidPrice, req.Price)
	case req.Delta == 0:
		return TradeOutcome{}, ErrZeroTradeSize
	case req.Leverage == 0:
		return TradeOutcome{}, fmt.Errorf("%w: zero", ErrInvalidLeverage)
	}

	pos, funding, err := e.settle(req.Position, req.MarketIndex)
	if err != nil {
		return TradeOutcome{}, err
	}
	trade, err := ApplyTrade(pos, req.Delta, req.Price)
	if err != nil {
		return TradeOutcome{}, err
	}
	equityAfter, err := ComputeEquity(
		pos.Collateral,
		trade.NewRealizedPnL,
		trade.NewBasePosition,
		trade.NewEntryPrice,
		req.Price,
		fixed.Int128{},
	)
	if err != nil {
		return TradeOutcome{}, err
	}

	out := TradeOutcome{
		Position:    trade.Apply(pos),
		Trade:       trade,
		Funding:     funding,
		EquityAfter: equityAfter,
	}
	grows := absInt128(pos.BasePosition).Lt(absInt128(trade.NewBasePosition))
	if !grows && trade.Kind != TradeFlip {
		return out, nil
	}

	if req.Leverage > e.config.MaxLeverage {
		return TradeOutcome{}, fmt.Errorf("%w: %w: %dx above market cap %dx",
			ErrInvalidLeverage, ErrExceedsMaxLeverage, req.Leverage, e.config.MaxLeverage)
	}
	notional, err := NotionalValue(trade.NewBasePosition, req.Price)
	if err != nil {
		return TradeOutcome{}, err
	}
	maxLeverage, _, err := e.tiers.Limits(notional, e.config.MaxLeverage, e.config.MaintenanceMarginBps)
	if err != nil {
		return TradeOutcome{}, err
	}
	if req.Leverage > maxLeverage {
		return TradeOutcome{}, fmt.Errorf("%w: %w: %dx above tier cap %dx",
			ErrInvalidLeverage, ErrExceedsMaxLeverage, req.Leverage, maxLeverage)
	}
	if out.InitialMargin, err = InitialMargin(notional, req.Leverage); err != nil {
		return TradeOutcome{}, err
	}
	if !CanIncreasePosition(equityAfter, out.InitialMargin) {
		return TradeOutcome{}, fmt.Errorf("%w: equity %s below initial margin %s",
			ErrInsufficientMargin, equityAfter, out.InitialMargin)
	}
	return out, nil
}

// Evaluate computes pos's margin figures at markPrice without settling
// funding. Unsettled funding is charged against equity.
func (e *Engine) Evaluate(pos PositionState, markPrice int64, marketIndex fixed.Int128, leverage uint16) (MarginFigures, error) {
	if markPrice <= 0 {
		return MarginFigures{}, fmt.Errorf("%w: %d", ErrInvalidPrice, markPrice)
	}
	notional, err := NotionalValue(pos.BasePosition, markPrice)
	if err != nil {
		return MarginFigures{}, err
	}
	maxLeverage, mmBps, err := e.tiers.Limits(notional, e.config.MaxLeverage, e.config.MaintenanceMarginBps)
	if err != nil {
		return MarginFigures{}, err
	}
	im, err := InitialMargin(notional, leverage)
	if err != nil {
		return MarginFigures{}, err
	}
	mm, err := MaintenanceMargin(notional, mmBps)
	if err != nil {
		return MarginFigures{}, err
	}
	owed, err := FundingOwed(pos.BasePosition, pos.LastCumFunding, marketIndex)
	if err != nil {
		return MarginFigures{}, err
	}
	equity, err := ComputeEquity(pos.Collateral, pos.RealizedPnL, pos.BasePosition, pos.EntryPrice, markPrice, owed)
	if err != nil {
		return MarginFigures{}, err
	}
	return MarginFigures{
		Notional:             notional,
		InitialMargin:        im,
		MaintenanceMargin:    mm,
		MaintenanceMarginBps: mmBps,
		MaxLeverage:          maxLeverage,
		FundingOwed:          owed,
		Equity:               equity,
		Liquidatable:         !pos.IsFlat() && IsLiquidatable(equity, mm),
	}, nil
}

// Liquidate settles funding, checks eligibility and closes as much of the
// position as LiquidationCloseSize requires at req.MarkPrice.
//
// The position's realized PnL is swept into collateral together with the
// liquidation fee and penalty, so the resulting snapshot carries zero
// realized PnL. A full close leaves a flat position with no collateral, and
// whatever remains is reported as ReturnedCollateral.
func (e *Engine) Liquidate(req LiquidationRequest) (LiquidationOutcome, error) {
	out, err := e.liquidate(req)
	if err != nil {
		e.reject("liquidate", err)
		return LiquidationOutcome{}, err
	}

	e.metrics.liquidation(out.Full)
	if out.Settlement.BadDebt > 0 {
		e.metrics.badDebt.Add(float64(out.Settlement.BadDebt))
	}
	if out.Settlement.Emergency {
		e.metrics.emergencies.Inc()
		e.log.Warn("bad debt exceeds insurance fund",
			"badDebt", out.Settlement.BadDebt,
			"insuranceDraw", out.Settlement.InsuranceDraw,
		)
	}
	e.log.Info("position liquidated",
		"closeSize", out.CloseSize,
		"full", out.Full,
		"markPrice", fixed.FormatPrice(req.MarkPrice),
		"equity", out.Equity,
		"maintenanceMargin", out.MaintenanceMargin,
		"liquidatorFee", out.Settlement.LiquidatorFee,
		"insurancePenalty", out.Settlement.InsurancePenalty,
		"badDebt", out.Settlement.BadDebt,
	)
	return out, nil
}

func (e *Engine) liquidate(req LiquidationRequest) (LiquidationOutcome, error) {
	if req.MarkPrice <= 0 {
		return LiquidationOutcome{}, fmt.Errorf("%w: %d", ErrInvalidPrice, req.MarkPrice)
	}
	if req.Position.IsFlat() {
		return LiquidationOutcome{}, ErrNoOpenPosition
	}

	pos, funding, err := e.settle(req.Position, req.MarketIndex)
	if err != nil {
		return LiquidationOutcome{}, err
	}

	notional, err := NotionalValue(pos.BasePosition, req.MarkPrice)
	if err != nil {
		return LiquidationOutcome{}, err
	}
	_, mmBps, err := e.tiers.Limits(notional, e.config.MaxLeverage, e.config.MaintenanceMarginBps)
	if err != nil {
		return LiquidationOutcome{}, err
	}
	mm, err := MaintenanceMargin(notional, mmBps)
	if err != nil {
		return LiquidationOutcome{}, err
	}
	equity, err := ComputeEquity(pos.Collateral, pos.RealizedPnL, pos.BasePosition, pos.EntryPrice, req.MarkPrice, fixed.Int128{})
	if err != nil {
		return LiquidationOutcome{}, err
	}
	if !IsLiquidatable(equity, mm) {
		return LiquidationOutcome{}, fmt.Errorf("%w: equity %s, maintenance margin %s", ErrNotLiquidatable, equity, mm)
	}

	size, err := LiquidationCloseSize(pos.BasePosition, req.MarkPrice, equity, mm, mmBps)
	if err != nil {
		return LiquidationOutcome{}, err
	}
	delta := size
	if pos.BasePosition > 0 {
		delta = -size
	}
	trade, err := ApplyTrade(pos, delta, req.MarkPrice)
	if err != nil {
		return LiquidationOutcome{}, err
	}
	closed, err := NotionalValue(size, req.MarkPrice)
	if err != nil {
		return LiquidationOutcome{}, err
	}
	settlement, err := SettleLiquidation(
		pos.Collateral,
		trade.NewRealizedPnL,
		closed,
		e.config.LiquidationFeeBps,
		e.config.LiquidationPenaltyBps,
		req.InsuranceBalance,
	)
	if err != nil {
		return LiquidationOutcome{}, err
	}

	out := LiquidationOutcome{
		Trade:             trade,
		Funding:           funding,
		CloseSize:         size,
		Full:              trade.NewBasePosition == 0,
		Equity:            equity,
		MaintenanceMargin: mm,
		Settlement:        settlement,
	}
	if out.Full {
		out.Position = PositionState{LastCumFunding: funding.Checkpoint}
		out.ReturnedCollateral = settlement.RemainingCollateral
		return out, nil
	}
	out.Position = trade.Apply(pos)
	out.Position.RealizedPnL = fixed.Int128{}
	out.Position.Collateral = settlement.RemainingCollateral
	return out, nil
}

// UpdateFunding advances market's funding index using the configured cap
// and interval.
func (e *Engine) UpdateFunding(market MarketFunding, markPrice, indexPrice int64, now time.Time) (MarketFunding, error) {
	next, err := UpdateFundingIndex(
		market,
		markPrice,
		indexPrice,
		now.Unix(),
		e.config.MaxFundingRate,
		e.config.FundingIntervalSecs(),
	)
	if err != nil {
		e.reject("update_funding", err)
		return MarketFunding{}, err
	}
	e.metrics.fundingUpdates.Inc()
	e.log.Debug("funding index updated",
		"rate", next.FundingRate,
		"cumulativeFunding", next.CumulativeFunding,
	)
	return next, nil
}

// MarkPrice reads a price from src and rejects non-positive values.
func (*Engine) MarkPrice(src PriceSource, at time.Time) (int64, error) {
	p, err := src.Price(at)
	if err != nil {
		return 0, err
	}
	if p <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidPrice, p)
	}
	return p, nil
}

// settle charges unsettled funding against pos and advances its checkpoint.
func (e *Engine) settle(pos PositionState, marketIndex fixed.Int128) (PositionState, FundingSettlement, error) {
	funding, err := SettleFunding(pos.BasePosition, pos.Collateral, pos.LastCumFunding, marketIndex)
	if err != nil {
		return PositionState{}, FundingSettlement{}, err
	}
	pos.Collateral = funding.Collateral
	pos.LastCumFunding = funding.Checkpoint
	if !funding.FundingDelta.IsZero() {
		e.metrics.fundingSettlements.Inc()
		e.log.Debug("funding settled",
			"fundingDelta", funding.FundingDelta,
			"collateral", funding.Collateral,
		)
	}
	return pos, funding, nil
}

func (e *Engine) reject(op string, err error) {
	reason := rejectionReason(err)
	e.metrics.reject(reason)
	e.log.Warn("operation rejected",
		"op", op,
		"reason", reason,
		"error", err,
	)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidPrice):
		return "invalid_price"
	case errors.Is(err, ErrZeroTradeSize):
		return "zero_size"
	case errors.Is(err, ErrExceedsMaxLeverage):
		return "max_leverage"
	case errors.Is(err, ErrInvalidLeverage):
		return "invalid_leverage"
	case errors.Is(err, ErrInsufficientMargin):
		return "insufficient_margin"
	case errors.Is(err, ErrNotLiquidatable):
		return "not_liquidatable"
	case errors.Is(err, ErrNoOpenPosition):
		return "no_position"
	case errors.Is(err, ErrFundingTooSoon):
		return "funding_too_soon"
	case errors.Is(err, ErrInvalidFundingParams):
		return "invalid_funding_params"
	case errors.Is(err, ErrNoTier):
		return "no_tier"
	case errors.Is(err, ErrCalculationOverflow):
		return "overflow"
	default:
		return "other"
	}
}
