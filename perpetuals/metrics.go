// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package perpetuals

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/risk/utils/wrappers"
)

const (
	kindLabel   = "kind"
	reasonLabel = "reason"
)

type metrics struct {
	tradesApplied      *prometheus.CounterVec
	liquidations       *prometheus.CounterVec
	rejections         *prometheus.CounterVec
	fundingSettlements prometheus.Counter
	fundingUpdates     prometheus.Counter
	badDebt            prometheus.Counter
	emergencies        prometheus.Counter
}

func newMetrics(registerer prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		tradesApplied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trades_applied",
				Help: "number of trades applied to positions",
			},
			[]string{kindLabel},
		),
		liquidations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "liquidations",
				Help: "number of positions liquidated",
			},
			[]string{kindLabel},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rejections",
				Help: "number of operations rejected",
			},
			[]string{reasonLabel},
		),
		fundingSettlements: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "funding_settlements",
			Help: "number of non-zero funding settlements",
		}),
		fundingUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "funding_updates",
			Help: "number of funding index updates",
		}),
		badDebt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bad_debt",
			Help: "cumulative bad debt left by liquidations",
		}),
		emergencies: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "insurance_emergencies",
			Help: "number of liquidations whose bad debt exceeded the insurance fund",
		}),
	}

	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(m.tradesApplied),
		registerer.Register(m.liquidations),
		registerer.Register(m.rejections),
		registerer.Register(m.fundingSettlements),
		registerer.Register(m.fundingUpdates),
		registerer.Register(m.badDebt),
		registerer.Register(m.emergencies),
	)
	return m, errs.Err
}

func (m *metrics) trade(kind TradeKind) {
	if kind == TradeNoop {
		return
	}
	m.tradesApplied.With(prometheus.Labels{
		kindLabel: kind.String(),
	}).Inc()
}

func (m *metrics) liquidation(full bool) {
	kind := "partial"
	if full {
		kind = "full"
	}
	m.liquidations.With(prometheus.Labels{
		kindLabel: kind,
	}).Inc()
}

func (m *metrics) reject(reason string) {
	m.rejections.With(prometheus.Labels{
		reasonLabel: reason,
	}).Inc()
}
