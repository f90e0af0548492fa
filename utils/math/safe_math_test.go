// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package math

import (
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaxInt(t *testing.T) {
	require := require.New(t)

	require.Equal(int8(stdmath.MaxInt8), MaxInt[int8]())
	require.Equal(int16(stdmath.MaxInt16), MaxInt[int16]())
	require.Equal(int32(stdmath.MaxInt32), MaxInt[int32]())
	require.Equal(int64(stdmath.MaxInt64), MaxInt[int64]())
	require.Equal(int64(stdmath.MinInt64), MinInt[int64]())
	require.Equal(uint64(stdmath.MaxUint64), MaxUint[uint64]())
}

func TestAdd(t *testing.T) {
	require := require.New(t)

	sum, err := Add(uint64(1), 2)
	require.NoError(err)
	require.Equal(uint64(3), sum)

	_, err = Add(MaxUint[uint64](), 1)
	require.ErrorIs(err, ErrOverflow)

	_, err = Sub(uint64(1), 2)
	require.ErrorIs(err, ErrUnderflow)

	_, err = Mul(MaxUint[uint64](), 2)
	require.ErrorIs(err, ErrOverflow)

	require.Equal(uint64(5), AbsDiff(uint64(10), 5))
	require.Equal(uint64(5), AbsDiff(uint64(5), 10))
}

func TestSignedArithmetic(t *testing.T) {
	tests := []struct {
		name    string
		op      func(a, b int64) (int64, error)
		a, b    int64
		want    int64
		wantErr error
	}{
		{"add", AddSigned[int64], 5, -7, -2, nil},
		{"add overflow", AddSigned[int64], stdmath.MaxInt64, 1, 0, ErrOverflow},
		{"add underflow", AddSigned[int64], stdmath.MinInt64, -1, 0, ErrUnderflow},
		{"sub", SubSigned[int64], -5, -7, 2, nil},
		{"sub overflow", SubSigned[int64], stdmath.MaxInt64, -1, 0, ErrOverflow},
		{"sub underflow", SubSigned[int64], stdmath.MinInt64, 1, 0, ErrUnderflow},
		{"mul", MulSigned[int64], -3, 7, -21, nil},
		{"mul zero", MulSigned[int64], 0, stdmath.MinInt64, 0, nil},
		{"mul min by -1", MulSigned[int64], stdmath.MinInt64, -1, 0, ErrOverflow},
		{"mul overflow", MulSigned[int64], stdmath.MaxInt64, 2, 0, ErrOverflow},
		{"mul underflow", MulSigned[int64], stdmath.MaxInt64, -2, 0, ErrUnderflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			got, err := tt.op(tt.a, tt.b)
			require.ErrorIs(err, tt.wantErr)
			require.Equal(tt.want, got)
		})
	}
}

func TestNegAbs(t *testing.T) {
	require := require.New(t)

	n, err := Neg(int64(4))
	require.NoError(err)
	require.Equal(int64(-4), n)

	_, err = Neg(int64(stdmath.MinInt64))
	require.ErrorIs(err, ErrOverflow)

	a, err := Abs(int64(-9))
	require.NoError(err)
	require.Equal(int64(9), a)

	_, err = Abs(int64(stdmath.MinInt64))
	require.ErrorIs(err, ErrOverflow)

	require.Equal(uint64(1)<<63, AbsUint64(stdmath.MinInt64))
	require.Equal(uint64(9), AbsUint64(-9))
	require.Equal(uint64(9), AbsUint64(9))

	require.Equal(int64(-1), Sign(int64(-3)))
	require.Equal(int64(0), Sign(int64(0)))
	require.Equal(int64(1), Sign(int64(3)))

	_, err = Int64(stdmath.MaxUint64)
	require.ErrorIs(err, ErrOverflow)
	v, err := Int64(12)
	require.NoError(err)
	require.Equal(int64(12), v)
}
