// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fixed

import (
	"math/bits"

	"github.com/holiman/uint256"
)

// MulDiv returns (a*b)/d truncated toward zero. The product is never
// narrowed before the division, so a*b may exceed 128 bits provided the
// quotient does not.
func MulDiv(a, b, d Uint128) (Uint128, error) {
	q, _, err := mulDivRem(a, b, d)
	return q, err
}

func mulDivRem(a, b, d Uint128) (Uint128, Uint128, error) {
	if d.IsZero() {
		return Uint128{}, Uint128{}, ErrDivisionByZero
	}
	if a.v.IsUint64() && b.v.IsUint64() && d.v.IsUint64() {
		hi, lo := bits.Mul64(a.v.Uint64(), b.v.Uint64())
		if dd := d.v.Uint64(); hi < dd {
			q, r := bits.Div64(hi, lo, dd)
			return NewUint128(q), NewUint128(r), nil
		}
	}
	return wideMulDivRem(a, b, d)
}

// wideMulDivRem forms the full 256-bit product and divides it by d.
func wideMulDivRem(a, b, d Uint128) (Uint128, Uint128, error) {
	if d.IsZero() {
		return Uint128{}, Uint128{}, ErrDivisionByZero
	}
	var p, q, r uint256.Int
	p.Mul(&a.v, &b.v)
	q.Div(&p, &d.v)
	r.Mod(&p, &d.v)
	if q.BitLen() > 128 {
		return Uint128{}, Uint128{}, ErrCalculationOverflow
	}
	return Uint128{v: q}, Uint128{v: r}, nil
}

// signedMulDivRem divides |a|*|b| by |d| and reports whether the exact
// result is negative, from the parity of negative operands.
func signedMulDivRem(a, b, d Int128) (q Uint128, r Uint128, neg bool, err error) {
	if d.IsZero() {
		return Uint128{}, Uint128{}, false, ErrDivisionByZero
	}
	neg = ((a.Sign() < 0) != (b.Sign() < 0)) != (d.Sign() < 0)
	q, r, err = mulDivRem(a.Abs(), b.Abs(), d.Abs())
	return q, r, neg, err
}

// SignedMulDiv returns (a*b)/d truncated toward zero. A quotient magnitude
// above MaxInt128 is an overflow even when the result is negative.
func SignedMulDiv(a, b, d Int128) (Int128, error) {
	q, _, neg, err := signedMulDivRem(a, b, d)
	if err != nil {
		return Int128{}, err
	}
	s, err := q.Int128()
	if err != nil {
		return Int128{}, err
	}
	if neg {
		return s.Neg()
	}
	return s, nil
}

// SignedMulDivFloor returns (a*b)/d rounded toward negative infinity.
func SignedMulDivFloor(a, b, d Int128) (Int128, error) {
	q, r, neg, err := signedMulDivRem(a, b, d)
	if err != nil {
		return Int128{}, err
	}
	s, err := q.Int128()
	if err != nil {
		return Int128{}, err
	}
	if !neg {
		return s, nil
	}
	s, err = s.Neg()
	if err != nil {
		return Int128{}, err
	}
	if !r.IsZero() {
		return s.Sub(NewInt128(1))
	}
	return s, nil
}

// SignedMulDivCeil returns (a*b)/d rounded toward positive infinity.
func SignedMulDivCeil(a, b, d Int128) (Int128, error) {
	q, r, neg, err := signedMulDivRem(a, b, d)
	if err != nil {
		return Int128{}, err
	}
	s, err := q.Int128()
	if err != nil {
		return Int128{}, err
	}
	if neg {
		return s.Neg()
	}
	if !r.IsZero() {
		return s.Add(NewInt128(1))
	}
	return s, nil
}

// FloorDiv returns a/b rounded toward negative infinity.
func FloorDiv(a, b Int128) (Int128, error) {
	q, r, err := quoRem(a, b)
	if err != nil {
		return Int128{}, err
	}
	if !r.IsZero() && r.Sign() != b.Sign() {
		return q.Sub(NewInt128(1))
	}
	return q, nil
}

// CeilDiv returns a/b rounded toward positive infinity.
func CeilDiv(a, b Int128) (Int128, error) {
	q, r, err := quoRem(a, b)
	if err != nil {
		return Int128{}, err
	}
	if !r.IsZero() && r.Sign() == b.Sign() {
		return q.Add(NewInt128(1))
	}
	return q, nil
}

func quoRem(a, b Int128) (Int128, Int128, error) {
	q, err := a.Quo(b)
	if err != nil {
		return Int128{}, Int128{}, err
	}
	r, err := a.Rem(b)
	if err != nil {
		return Int128{}, Int128{}, err
	}
	return q, r, nil
}
