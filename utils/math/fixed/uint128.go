// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fixed

import (
	"fmt"
	"math"
	"math/big"

	"github.com/holiman/uint256"
)

// MaxUint128 is 2^128 - 1.
var MaxUint128 = Uint128{v: uint256.Int{math.MaxUint64, math.MaxUint64, 0, 0}}

// Uint128 is a non-negative 128-bit value. The zero value is 0.
//
// Values are held in a 256-bit word with the upper half always clear, so the
// full 128x128 product of two values is exact before it is narrowed.
type Uint128 struct {
	v uint256.Int
}

func NewUint128(x uint64) Uint128 {
	return Uint128{v: uint256.Int{x, 0, 0, 0}}
}

// Uint128FromBig converts b, failing if it is negative or wider than 128 bits.
func Uint128FromBig(b *big.Int) (Uint128, error) {
	if b.Sign() < 0 || b.BitLen() > 128 {
		return Uint128{}, fmt.Errorf("%w: %s does not fit in 128 bits", ErrCalculationOverflow, b)
	}
	var u Uint128
	u.v.SetFromBig(b)
	return u, nil
}

func (x Uint128) fits() bool {
	return x.v[2] == 0 && x.v[3] == 0
}

func (x Uint128) Add(y Uint128) (Uint128, error) {
	var z Uint128
	z.v.Add(&x.v, &y.v)
	if !z.fits() {
		return Uint128{}, ErrCalculationOverflow
	}
	return z, nil
}

func (x Uint128) Sub(y Uint128) (Uint128, error) {
	if x.v.Lt(&y.v) {
		return Uint128{}, ErrCalculationOverflow
	}
	var z Uint128
	z.v.Sub(&x.v, &y.v)
	return z, nil
}

func (x Uint128) Mul(y Uint128) (Uint128, error) {
	var z Uint128
	z.v.Mul(&x.v, &y.v)
	if !z.fits() {
		return Uint128{}, ErrCalculationOverflow
	}
	return z, nil
}

// Cmp returns -1, 0 or +1 as x is less than, equal to or greater than y.
func (x Uint128) Cmp(y Uint128) int {
	return x.v.Cmp(&y.v)
}

func (x Uint128) IsZero() bool {
	return x.v.IsZero()
}

// IsUint64 reports whether x fits in a uint64.
func (x Uint128) IsUint64() bool {
	return x.v.IsUint64()
}

// Uint64 narrows x, failing if it does not fit.
func (x Uint128) Uint64() (uint64, error) {
	if !x.v.IsUint64() {
		return 0, ErrCalculationOverflow
	}
	return x.v.Uint64(), nil
}

// Int128 reinterprets x as signed, failing if x > MaxInt128.
func (x Uint128) Int128() (Int128, error) {
	if x.v[1]>>63 != 0 {
		return Int128{}, fmt.Errorf("%w: %s exceeds the signed 128-bit range", ErrCalculationOverflow, x)
	}
	return Int128{v: x.v}, nil
}

func (x Uint128) Big() *big.Int {
	return x.v.ToBig()
}

func (x Uint128) String() string {
	return x.v.Dec()
}
