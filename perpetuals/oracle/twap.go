// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package oracle provides time-weighted mark prices for perpetuals markets.
package oracle

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/luxfi/risk/utils/math/fixed"
	"github.com/luxfi/risk/utils/timer/mockable"
)

const (
	// DefaultWindow is the default averaging window.
	DefaultWindow = 30 * time.Minute

	// MinWindow is the shortest allowed averaging window.
	MinWindow = 5 * time.Minute

	// MaxObservations is the maximum number of observations kept per market.
	MaxObservations = 1000
)

var (
	// ErrNoObservations indicates no price observations are available.
	ErrNoObservations = errors.New("no price observations available")

	// ErrInsufficientHistory indicates not enough history for the calculation.
	ErrInsufficientHistory = errors.New("insufficient price history")

	// ErrInvalidWindow indicates a non-positive window duration.
	ErrInvalidWindow = errors.New("TWAP window must be positive")

	// ErrInvalidPrice indicates a non-positive observation.
	ErrInvalidPrice = errors.New("price must be positive")

	// ErrOutOfOrder indicates an observation older than the latest one.
	ErrOutOfOrder = errors.New("observation is older than the latest one")

	bpsDenom = fixed.NewInt128(10_000)
)

// Observation is a single price observation.
type Observation struct {
	Price     int64     // Price scaled by 1e6
	Timestamp time.Time // When the price was observed
}

// TWAP is a time-weighted average price over a rolling window of
// observations. It is safe for concurrent use.
type TWAP struct {
	mu           sync.RWMutex
	observations []Observation
	window       time.Duration
	market       string
	clock        mockable.Clock
}

// NewTWAP returns a TWAP for market averaging over window. Windows shorter
// than MinWindow are raised to it.
func NewTWAP(market string, window time.Duration) (*TWAP, error) {
	if window <= 0 {
		return nil, ErrInvalidWindow
	}
	return &TWAP{
		observations: make([]Observation, 0, 64),
		window:       max(window, MinWindow),
		market:       market,
	}, nil
}

// Record adds an observation. Observations must arrive in timestamp order.
func (t *TWAP) Record(price int64, timestamp time.Time) error {
	if price <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPrice, price)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if n := len(t.observations); n > 0 && timestamp.Before(t.observations[n-1].Timestamp) {
		return fmt.Errorf("%w: %s before %s", ErrOutOfOrder, timestamp, t.observations[n-1].Timestamp)
	}
	t.observations = append(t.observations, Observation{
		Price:     price,
		Timestamp: timestamp,
	})
	t.prune(timestamp)
	return nil
}

// RecordNow adds an observation at the current time.
func (t *TWAP) RecordNow(price int64) error {
	return t.Record(price, t.clock.Time())
}

// prune drops observations older than twice the window and caps the history
// at MaxObservations. Must be called with the lock held.
func (t *TWAP) prune(now time.Time) {
	cutoff := now.Add(-2 * t.window)

	start := 0
	for start < len(t.observations) && !t.observations[start].Timestamp.After(cutoff) {
		start++
	}
	if excess := len(t.observations) - start - MaxObservations; excess > 0 {
		start += excess
	}
	if start > 0 {
		n := copy(t.observations, t.observations[start:])
		t.observations = t.observations[:n]
	}
}

// CurrentPrice returns the time-weighted average price at the current time.
func (t *TWAP) CurrentPrice() (int64, error) {
	return t.PriceAt(t.clock.Time())
}

// Price returns the time-weighted average price at at.
func (t *TWAP) Price(at time.Time) (int64, error) {
	return t.PriceAt(at)
}

// PriceAt returns the average of the observations in (at-window, at],
// each weighted by the whole seconds it stood until the next observation
// or at. With no observation inside the window the latest one before at is
// returned.
func (t *TWAP) PriceAt(at time.Time) (int64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	windowStart := at.Add(-t.window)

	var (
		relevant []Observation
		fallback *Observation
	)
	for i, obs := range t.observations {
		if obs.Timestamp.After(at) {
			break
		}
		if obs.Timestamp.After(windowStart) {
			relevant = append(relevant, obs)
		} else {
			fallback = &t.observations[i]
		}
	}

	switch len(relevant) {
	case 0:
		if fallback == nil {
			return 0, ErrNoObservations
		}
		return fallback.Price, nil
	case 1:
		return relevant[0].Price, nil
	}

	var (
		weighted fixed.Int128
		total    int64
	)
	for i, obs := range relevant {
		until := at
		if i+1 < len(relevant) {
			until = relevant[i+1].Timestamp
		}
		secs := int64(until.Sub(obs.Timestamp) / time.Second)
		if secs <= 0 {
			continue
		}
		w, err := fixed.NewInt128(obs.Price).Mul(fixed.NewInt128(secs))
		if err != nil {
			return 0, err
		}
		if weighted, err = weighted.Add(w); err != nil {
			return 0, err
		}
		total += secs
	}
	if total == 0 {
		return relevant[len(relevant)-1].Price, nil
	}

	avg, err := weighted.Quo(fixed.NewInt128(total))
	if err != nil {
		return 0, err
	}
	return avg.Int64()
}

// LastPrice returns the most recent observed price.
func (t *TWAP) LastPrice() (int64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.observations) == 0 {
		return 0, ErrNoObservations
	}
	return t.observations[len(t.observations)-1].Price, nil
}

// Volatility returns (max - min) * 10000 / mean of the observations in
// (at-window, at], in basis points.
func (t *TWAP) Volatility(at time.Time) (uint64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	windowStart := at.Add(-t.window)

	var (
		lo, hi int64
		sum    fixed.Int128
		count  int64
		err    error
	)
	for _, obs := range t.observations {
		if !obs.Timestamp.After(windowStart) || obs.Timestamp.After(at) {
			continue
		}
		if count == 0 || obs.Price < lo {
			lo = obs.Price
		}
		if count == 0 || obs.Price > hi {
			hi = obs.Price
		}
		if sum, err = sum.Add(fixed.NewInt128(obs.Price)); err != nil {
			return 0, err
		}
		count++
	}
	if count < 2 {
		return 0, ErrInsufficientHistory
	}

	mean, err := sum.Quo(fixed.NewInt128(count))
	if err != nil {
		return 0, err
	}
	vol, err := fixed.SignedMulDiv(fixed.NewInt128(hi-lo), bpsDenom, mean)
	if err != nil {
		return 0, err
	}
	return vol.Uint64()
}

// Len returns the number of retained observations.
func (t *TWAP) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.observations)
}

// Clock returns the clock read by RecordNow and CurrentPrice.
func (t *TWAP) Clock() *mockable.Clock {
	return &t.clock
}

func (t *TWAP) Window() time.Duration {
	return t.window
}

func (t *TWAP) Market() string {
	return t.market
}

// Clear removes all observations.
func (t *TWAP) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observations = t.observations[:0]
}

// Set holds one TWAP per market, all sharing a window.
type Set struct {
	mu     sync.RWMutex
	twaps  map[string]*TWAP
	window time.Duration
}

// NewSet returns an empty Set. A non-positive window selects DefaultWindow.
func NewSet(window time.Duration) *Set {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Set{
		twaps:  make(map[string]*TWAP),
		window: max(window, MinWindow),
	}
}

// GetOrCreate returns the TWAP for market, creating it if needed.
func (s *Set) GetOrCreate(market string) *TWAP {
	s.mu.Lock()
	defer s.mu.Unlock()

	if twap, ok := s.twaps[market]; ok {
		return twap
	}
	twap := &TWAP{
		observations: make([]Observation, 0, 64),
		window:       s.window,
		market:       market,
	}
	s.twaps[market] = twap
	return twap
}

// Record records a price for market.
func (s *Set) Record(market string, price int64, timestamp time.Time) error {
	return s.GetOrCreate(market).Record(price, timestamp)
}

// Get returns the TWAP for market.
func (s *Set) Get(market string) (*TWAP, error) {
	s.mu.RLock()
	twap, ok := s.twaps[market]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: market %q", ErrNoObservations, market)
	}
	return twap, nil
}
