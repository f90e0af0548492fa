// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package math

import (
	"errors"
	stdmath "math"
)

// Unsigned is a constraint that permits any unsigned integer type.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Signed is a constraint that permits any signed integer type.
type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

var (
	ErrOverflow  = errors.New("overflow")
	ErrUnderflow = errors.New("underflow")
)

// MaxUint returns the maximum value of an unsigned integer of type T.
func MaxUint[T Unsigned]() T {
	return ^T(0)
}

// MaxInt returns the maximum value of a signed integer of type T.
func MaxInt[T Signed]() T {
	var mx T = 1
	for next := mx<<1 | 1; next > mx; next = mx<<1 | 1 {
		mx = next
	}
	return mx
}

// MinInt returns the minimum value of a signed integer of type T.
func MinInt[T Signed]() T {
	return -MaxInt[T]() - 1
}

// Add returns:
// 1) a + b
// 2) If there is overflow, an error
func Add[T Unsigned](a, b T) (T, error) {
	if a > MaxUint[T]()-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// Sub returns:
// 1) a - b
// 2) If there is underflow, an error
func Sub[T Unsigned](a, b T) (T, error) {
	if a < b {
		return 0, ErrUnderflow
	}
	return a - b, nil
}

// Mul returns:
// 1) a * b
// 2) If there is overflow, an error
func Mul[T Unsigned](a, b T) (T, error) {
	if b != 0 && a > MaxUint[T]()/b {
		return 0, ErrOverflow
	}
	return a * b, nil
}

func AbsDiff[T Unsigned](a, b T) T {
	return max(a, b) - min(a, b)
}

// AddSigned returns a + b, or an error if the result leaves the range of T.
func AddSigned[T Signed](a, b T) (T, error) {
	switch {
	case b > 0 && a > MaxInt[T]()-b:
		return 0, ErrOverflow
	case b < 0 && a < MinInt[T]()-b:
		return 0, ErrUnderflow
	}
	return a + b, nil
}

// SubSigned returns a - b, or an error if the result leaves the range of T.
func SubSigned[T Signed](a, b T) (T, error) {
	switch {
	case b < 0 && a > MaxInt[T]()+b:
		return 0, ErrOverflow
	case b > 0 && a < MinInt[T]()+b:
		return 0, ErrUnderflow
	}
	return a - b, nil
}

// MulSigned returns a * b, or an error if the result leaves the range of T.
func MulSigned[T Signed](a, b T) (T, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if (a == -1 && b == MinInt[T]()) || (b == -1 && a == MinInt[T]()) {
		return 0, ErrOverflow
	}
	p := a * b
	if p/b != a {
		if (a < 0) != (b < 0) {
			return 0, ErrUnderflow
		}
		return 0, ErrOverflow
	}
	return p, nil
}

// Neg returns -a. The minimum value of T has no positive counterpart.
func Neg[T Signed](a T) (T, error) {
	if a == MinInt[T]() {
		return 0, ErrOverflow
	}
	return -a, nil
}

// Abs returns |a|. The minimum value of T has no positive counterpart.
func Abs[T Signed](a T) (T, error) {
	if a < 0 {
		return Neg(a)
	}
	return a, nil
}

// AbsUint64 returns |a| as an unsigned value. It is total over int64.
func AbsUint64(a int64) uint64 {
	if a < 0 {
		return uint64(-(a + 1)) + 1
	}
	return uint64(a)
}

// Sign returns -1, 0 or +1 according to the sign of a.
func Sign[T Signed](a T) T {
	switch {
	case a > 0:
		return 1
	case a < 0:
		return -1
	default:
		return 0
	}
}

// Int64 narrows an unsigned value to int64.
func Int64(u uint64) (int64, error) {
	if u > stdmath.MaxInt64 {
		return 0, ErrOverflow
	}
	return int64(u), nil
}
