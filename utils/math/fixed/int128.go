// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fixed

import (
	"bytes"
	"fmt"
	"math"
	"math/big"

	"github.com/holiman/uint256"
)

var (
	// MaxInt128 is 2^127 - 1.
	MaxInt128 = Int128{v: uint256.Int{math.MaxUint64, math.MaxInt64, 0, 0}}
	// MinInt128 is -2^127.
	MinInt128 = Int128{v: uint256.Int{0, 1 << 63, math.MaxUint64, math.MaxUint64}}
)

// Int128 is a signed 128-bit value. The zero value is 0.
//
// The two's complement representation is kept sign-extended across the
// backing 256-bit word, so equal values compare equal with ==.
type Int128 struct {
	v uint256.Int
}

func NewInt128(x int64) Int128 {
	ext := uint64(x >> 63)
	return Int128{v: uint256.Int{uint64(x), ext, ext, ext}}
}

// Int128FromBig converts b, failing if it is outside the signed 128-bit range.
func Int128FromBig(b *big.Int) (Int128, error) {
	mag, err := Uint128FromBig(new(big.Int).Abs(b))
	if err != nil {
		return Int128{}, err
	}
	if b.Sign() < 0 {
		if mag.v[1] == 1<<63 && mag.v[0] == 0 {
			return MinInt128, nil
		}
		i, err := mag.Int128()
		if err != nil {
			return Int128{}, err
		}
		return i.Neg()
	}
	return mag.Int128()
}

func (x Int128) fits() bool {
	ext := uint64(int64(x.v[1]) >> 63)
	return x.v[2] == ext && x.v[3] == ext
}

func checkedInt128(z uint256.Int) (Int128, error) {
	i := Int128{v: z}
	if !i.fits() {
		return Int128{}, ErrCalculationOverflow
	}
	return i, nil
}

func (x Int128) Add(y Int128) (Int128, error) {
	var z uint256.Int
	z.Add(&x.v, &y.v)
	return checkedInt128(z)
}

func (x Int128) Sub(y Int128) (Int128, error) {
	var z uint256.Int
	z.Sub(&x.v, &y.v)
	return checkedInt128(z)
}

// Mul returns x*y. Both operands are at most 2^127 in magnitude, so the
// 256-bit product is exact before the range check.
func (x Int128) Mul(y Int128) (Int128, error) {
	var z uint256.Int
	z.Mul(&x.v, &y.v)
	return checkedInt128(z)
}

func (x Int128) Neg() (Int128, error) {
	if x == MinInt128 {
		return Int128{}, ErrCalculationOverflow
	}
	var z Int128
	z.v.Neg(&x.v)
	return z, nil
}

// Quo returns x/y truncated toward zero.
func (x Int128) Quo(y Int128) (Int128, error) {
	if y.IsZero() {
		return Int128{}, ErrDivisionByZero
	}
	var z uint256.Int
	z.SDiv(&x.v, &y.v)
	return checkedInt128(z)
}

// Rem returns the remainder of Quo. Its sign follows x.
func (x Int128) Rem(y Int128) (Int128, error) {
	if y.IsZero() {
		return Int128{}, ErrDivisionByZero
	}
	var z Int128
	z.v.SMod(&x.v, &y.v)
	return z, nil
}

// Abs returns |x|. It is total: |MinInt128| fits in a Uint128.
func (x Int128) Abs() Uint128 {
	if x.Sign() >= 0 {
		return Uint128{v: x.v}
	}
	var u Uint128
	u.v.Neg(&x.v)
	return u
}

// Sign returns -1, 0 or +1.
func (x Int128) Sign() int {
	return x.v.Sign()
}

// Cmp returns -1, 0 or +1 as x is less than, equal to or greater than y.
func (x Int128) Cmp(y Int128) int {
	switch {
	case x.v.Slt(&y.v):
		return -1
	case x.v.Sgt(&y.v):
		return 1
	default:
		return 0
	}
}

func (x Int128) Lt(y Int128) bool {
	return x.v.Slt(&y.v)
}

func (x Int128) IsZero() bool {
	return x.v.IsZero()
}

// IsInt64 reports whether x fits in an int64.
func (x Int128) IsInt64() bool {
	ext := uint64(int64(x.v[0]) >> 63)
	return x.v[1] == ext && x.v[2] == ext && x.v[3] == ext
}

// Int64 narrows x, failing if it does not fit.
func (x Int128) Int64() (int64, error) {
	if !x.IsInt64() {
		return 0, fmt.Errorf("%w: %s exceeds int64", ErrCalculationOverflow, x)
	}
	return int64(x.v[0]), nil
}

// Uint64 narrows x, failing if it is negative or does not fit.
func (x Int128) Uint64() (uint64, error) {
	if x.Sign() < 0 || !x.v.IsUint64() {
		return 0, fmt.Errorf("%w: %s exceeds uint64", ErrCalculationOverflow, x)
	}
	return x.v.Uint64(), nil
}

func (x Int128) Big() *big.Int {
	b := x.Abs().Big()
	if x.Sign() < 0 {
		b.Neg(b)
	}
	return b
}

func (x Int128) String() string {
	return x.Big().String()
}

func (x Int128) MarshalJSON() ([]byte, error) {
	return []byte(`"` + x.String() + `"`), nil
}

// UnmarshalJSON accepts a decimal integer, quoted or bare.
func (x *Int128) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("invalid 128-bit integer %q", s)
	}
	v, err := Int128FromBig(n)
	if err != nil {
		return err
	}
	*x = v
	return nil
}
