// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package oracle

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/risk/perpetuals"
	"github.com/luxfi/risk/perpetuals/config"
)

var _ perpetuals.PriceSource = (*TWAP)(nil)

var t0 = time.Unix(1_700_000_000, 0)

func price(v int64) int64 {
	return v * perpetuals.PriceScale
}

func newTWAP(t *testing.T) *TWAP {
	t.Helper()

	twap, err := NewTWAP("BTC-PERP", DefaultWindow)
	require.NoError(t, err)
	return twap
}

func TestNewTWAP(t *testing.T) {
	require := require.New(t)

	_, err := NewTWAP("BTC-PERP", 0)
	require.ErrorIs(err, ErrInvalidWindow)

	twap, err := NewTWAP("BTC-PERP", time.Minute)
	require.NoError(err)
	require.Equal(MinWindow, twap.Window())
	require.Equal("BTC-PERP", twap.Market())

	_, err = twap.LastPrice()
	require.ErrorIs(err, ErrNoObservations)
	_, err = twap.PriceAt(t0)
	require.ErrorIs(err, ErrNoObservations)
}

func TestRecord(t *testing.T) {
	require := require.New(t)

	twap := newTWAP(t)
	require.ErrorIs(twap.Record(0, t0), ErrInvalidPrice)
	require.ErrorIs(twap.Record(-1, t0), ErrInvalidPrice)

	require.NoError(twap.Record(price(100), t0))
	require.NoError(twap.Record(price(101), t0))
	require.ErrorIs(twap.Record(price(102), t0.Add(-time.Second)), ErrOutOfOrder)
	require.Equal(2, twap.Len())

	last, err := twap.LastPrice()
	require.NoError(err)
	require.Equal(price(101), last)
}

func TestPriceAt(t *testing.T) {
	require := require.New(t)

	twap := newTWAP(t)
	require.NoError(twap.Record(price(100), t0))
	require.NoError(twap.Record(price(200), t0.Add(10*time.Minute)))

	// 10 minutes at 100 and 10 minutes at 200.
	p, err := twap.PriceAt(t0.Add(20 * time.Minute))
	require.NoError(err)
	require.Equal(price(150), p)

	// 10 minutes at 100 then 19 minutes at 200.
	p, err = twap.PriceAt(t0.Add(29 * time.Minute))
	require.NoError(err)
	require.Equal((price(100)*600+price(200)*1140)/1740, p)

	// Zero weight on the latest observation.
	p, err = twap.PriceAt(t0.Add(10 * time.Minute))
	require.NoError(err)
	require.Equal(price(100), p)

	// Only one observation inside the window.
	p, err = twap.PriceAt(t0.Add(35 * time.Minute))
	require.NoError(err)
	require.Equal(price(200), p)

	// Nothing inside the window falls back to the latest earlier price.
	p, err = twap.PriceAt(t0.Add(50 * time.Minute))
	require.NoError(err)
	require.Equal(price(200), p)

	_, err = twap.PriceAt(t0.Add(-time.Second))
	require.ErrorIs(err, ErrNoObservations)

	p, err = twap.Price(t0.Add(20 * time.Minute))
	require.NoError(err)
	require.Equal(price(150), p)
}

func TestPriceAtSameTimestamp(t *testing.T) {
	require := require.New(t)

	twap := newTWAP(t)
	require.NoError(twap.Record(price(100), t0))
	require.NoError(twap.Record(price(300), t0))

	p, err := twap.PriceAt(t0)
	require.NoError(err)
	require.Equal(price(300), p)
}

func TestRecordNow(t *testing.T) {
	require := require.New(t)

	twap := newTWAP(t)
	clock := twap.Clock()
	clock.Set(t0)
	require.NoError(twap.RecordNow(price(100)))

	clock.Advance(10 * time.Minute)
	require.NoError(twap.RecordNow(price(200)))

	clock.Advance(10 * time.Minute)
	p, err := twap.CurrentPrice()
	require.NoError(err)
	require.Equal(price(150), p)
}

func TestPrune(t *testing.T) {
	require := require.New(t)

	twap := newTWAP(t)
	require.NoError(twap.Record(price(100), t0))
	require.NoError(twap.Record(price(110), t0.Add(30*time.Minute)))
	require.Equal(2, twap.Len())

	// The first observation is now older than twice the window.
	require.NoError(twap.Record(price(120), t0.Add(61*time.Minute)))
	require.Equal(2, twap.Len())

	twap.Clear()
	require.Zero(twap.Len())
}

func TestMaxObservations(t *testing.T) {
	require := require.New(t)

	twap := newTWAP(t)
	for i := range MaxObservations + 10 {
		require.NoError(twap.Record(price(int64(i+1)), t0.Add(time.Duration(i)*time.Second)))
	}
	require.Equal(MaxObservations, twap.Len())

	last, err := twap.LastPrice()
	require.NoError(err)
	require.Equal(price(MaxObservations+10), last)
}

func TestVolatility(t *testing.T) {
	require := require.New(t)

	twap := newTWAP(t)
	require.NoError(twap.Record(price(100), t0))

	_, err := twap.Volatility(t0)
	require.ErrorIs(err, ErrInsufficientHistory)

	require.NoError(twap.Record(price(110), t0.Add(time.Minute)))
	require.NoError(twap.Record(price(90), t0.Add(2*time.Minute)))

	// (110 - 90) / 100
	vol, err := twap.Volatility(t0.Add(3 * time.Minute))
	require.NoError(err)
	require.Equal(uint64(2_000), vol)
}

func TestSet(t *testing.T) {
	require := require.New(t)

	s := NewSet(0)
	_, err := s.Get("ETH-PERP")
	require.ErrorIs(err, ErrNoObservations)

	require.NoError(s.Record("ETH-PERP", price(3_000), t0))
	twap, err := s.Get("ETH-PERP")
	require.NoError(err)
	require.Equal(DefaultWindow, twap.Window())
	require.Same(twap, s.GetOrCreate("ETH-PERP"))

	p, err := twap.PriceAt(t0.Add(time.Minute))
	require.NoError(err)
	require.Equal(price(3_000), p)
}

func TestSetConcurrentMarkets(t *testing.T) {
	require := require.New(t)

	s := NewSet(time.Hour)

	const markets = 8
	var eg errgroup.Group
	for m := range markets {
		market := fmt.Sprintf("M%d-PERP", m)
		eg.Go(func() error {
			for i := range 100 {
				if err := s.Record(market, price(int64(m+1)), t0.Add(time.Duration(i)*time.Second)); err != nil {
					return err
				}
				if _, err := s.GetOrCreate(market).PriceAt(t0.Add(time.Duration(i) * time.Second)); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(eg.Wait())

	for m := range markets {
		twap, err := s.Get(fmt.Sprintf("M%d-PERP", m))
		require.NoError(err)
		p, err := twap.PriceAt(t0.Add(time.Hour))
		require.NoError(err)
		require.Equal(price(int64(m+1)), p)
	}
}

func TestEngineMarkPrice(t *testing.T) {
	require := require.New(t)

	e, err := perpetuals.NewEngine(config.DefaultConfig(), nil, nil)
	require.NoError(err)

	twap := newTWAP(t)
	_, err = e.MarkPrice(twap, t0)
	require.ErrorIs(err, ErrNoObservations)

	require.NoError(twap.Record(price(100), t0))
	require.NoError(twap.Record(price(200), t0.Add(10*time.Minute)))
	mark, err := e.MarkPrice(twap, t0.Add(20*time.Minute))
	require.NoError(err)
	require.Equal(price(150), mark)
}
