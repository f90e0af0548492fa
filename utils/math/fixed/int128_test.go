// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fixed

import (
	"encoding/json"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	safemath "github.com/luxfi/risk/utils/math"
)

func TestInt128Bounds(t *testing.T) {
	require := require.New(t)

	one := NewInt128(1)

	_, err := MaxInt128.Add(one)
	require.ErrorIs(err, ErrCalculationOverflow)
	_, err = MinInt128.Sub(one)
	require.ErrorIs(err, ErrCalculationOverflow)
	_, err = MinInt128.Neg()
	require.ErrorIs(err, ErrCalculationOverflow)
	_, err = MaxInt128.Mul(NewInt128(2))
	require.ErrorIs(err, ErrCalculationOverflow)
	_, err = MinInt128.Quo(NewInt128(-1))
	require.ErrorIs(err, ErrCalculationOverflow)

	v, err := MaxInt128.Neg()
	require.NoError(err)
	v, err = v.Sub(one)
	require.NoError(err)
	require.Equal(MinInt128, v)

	require.Equal("170141183460469231731687303715884105727", MaxInt128.String())
	require.Equal("-170141183460469231731687303715884105728", MinInt128.String())
	require.Equal("170141183460469231731687303715884105728", MinInt128.Abs().String())
	require.Equal("340282366920938463463374607431768211455", MaxUint128.String())

	_, err = MinInt128.Abs().Int128()
	require.ErrorIs(err, ErrCalculationOverflow)
}

func TestInt128Arithmetic(t *testing.T) {
	require := require.New(t)

	a, b := NewInt128(-21), NewInt128(4)

	s, err := a.Add(b)
	require.NoError(err)
	require.Equal(NewInt128(-17), s)

	s, err = a.Sub(b)
	require.NoError(err)
	require.Equal(NewInt128(-25), s)

	s, err = a.Mul(b)
	require.NoError(err)
	require.Equal(NewInt128(-84), s)

	q, err := a.Quo(b)
	require.NoError(err)
	require.Equal(NewInt128(-5), q)

	r, err := a.Rem(b)
	require.NoError(err)
	require.Equal(NewInt128(-1), r)

	r, err = NewInt128(21).Rem(NewInt128(-4))
	require.NoError(err)
	require.Equal(NewInt128(1), r)

	_, err = a.Quo(Int128{})
	require.ErrorIs(err, ErrDivisionByZero)
	_, err = a.Rem(Int128{})
	require.ErrorIs(err, ErrDivisionByZero)

	require.Equal(-1, a.Sign())
	require.Equal(0, Int128{}.Sign())
	require.Equal(1, b.Sign())
	require.Equal(-1, a.Cmp(b))
	require.Equal(1, b.Cmp(a))
	require.Equal(0, a.Cmp(NewInt128(-21)))
	require.True(MinInt128.Lt(MaxInt128))
	require.Equal(NewUint128(21), a.Abs())
}

func TestInt128Narrowing(t *testing.T) {
	require := require.New(t)

	i, err := NewInt128(math.MinInt64).Int64()
	require.NoError(err)
	require.Equal(int64(math.MinInt64), i)

	big64, err := NewInt128(math.MaxInt64).Add(NewInt128(1))
	require.NoError(err)
	require.False(big64.IsInt64())
	_, err = big64.Int64()
	require.ErrorIs(err, ErrCalculationOverflow)

	u, err := big64.Uint64()
	require.NoError(err)
	require.Equal(uint64(1)<<63, u)

	_, err = NewInt128(-1).Uint64()
	require.ErrorIs(err, ErrCalculationOverflow)

	_, err = MaxUint128.Uint64()
	require.ErrorIs(err, ErrCalculationOverflow)
	require.False(MaxUint128.IsUint64())
}

func TestInt128FromBig(t *testing.T) {
	require := require.New(t)

	lo, err := Int128FromBig(MinInt128.Big())
	require.NoError(err)
	require.Equal(MinInt128, lo)

	hi, err := Int128FromBig(MaxInt128.Big())
	require.NoError(err)
	require.Equal(MaxInt128, hi)

	tooBig := new(big.Int).Add(MaxInt128.Big(), big.NewInt(1))
	_, err = Int128FromBig(tooBig)
	require.ErrorIs(err, ErrCalculationOverflow)

	tooSmall := new(big.Int).Sub(MinInt128.Big(), big.NewInt(1))
	_, err = Int128FromBig(tooSmall)
	require.ErrorIs(err, ErrCalculationOverflow)

	_, err = Uint128FromBig(big.NewInt(-1))
	require.ErrorIs(err, ErrCalculationOverflow)
	_, err = Uint128FromBig(new(big.Int).Lsh(big.NewInt(1), 128))
	require.ErrorIs(err, ErrCalculationOverflow)
}

func TestInt128JSON(t *testing.T) {
	require := require.New(t)

	type wrapper struct {
		V Int128 `json:"v"`
	}

	b, err := json.Marshal(wrapper{V: NewInt128(-42)})
	require.NoError(err)
	require.JSONEq(`{"v":"-42"}`, string(b))

	var w wrapper
	require.NoError(json.Unmarshal([]byte(`{"v":"170141183460469231731687303715884105727"}`), &w))
	require.Equal(MaxInt128, w.V)

	require.NoError(json.Unmarshal([]byte(`{"v":1000000000000}`), &w))
	require.Equal(NewInt128(1_000_000_000_000), w.V)

	require.Error(json.Unmarshal([]byte(`{"v":"1.5"}`), &w))
	require.ErrorIs(json.Unmarshal([]byte(`{"v":"170141183460469231731687303715884105728"}`), &w), ErrCalculationOverflow)
}

func TestUint128Arithmetic(t *testing.T) {
	require := require.New(t)

	_, err := MaxUint128.Add(NewUint128(1))
	require.ErrorIs(err, ErrCalculationOverflow)
	_, err = NewUint128(1).Sub(NewUint128(2))
	require.ErrorIs(err, ErrCalculationOverflow)
	_, err = MaxUint128.Mul(NewUint128(2))
	require.ErrorIs(err, ErrCalculationOverflow)

	p, err := NewUint128(math.MaxUint64).Mul(NewUint128(math.MaxUint64))
	require.NoError(err)
	require.Equal(u128(math.MaxUint64-1, 1), p)
	require.Equal(1, p.Cmp(NewUint128(math.MaxUint64)))
}

func TestChecked(t *testing.T) {
	require := require.New(t)

	v, err := Checked(safemath.AddSigned(int64(2), 3))
	require.NoError(err)
	require.Equal(int64(5), v)

	_, err = Checked(safemath.AddSigned(int64(math.MaxInt64), 1))
	require.ErrorIs(err, ErrCalculationOverflow)
	require.ErrorIs(err, safemath.ErrOverflow)
}
