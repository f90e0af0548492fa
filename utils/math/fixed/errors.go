// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fixed

import (
	"errors"
	"fmt"
)

var (
	// ErrCalculationOverflow is returned whenever an intermediate or final
	// value leaves the representable range, including zero divisors.
	ErrCalculationOverflow = errors.New("calculation overflow")
	ErrDivisionByZero      = fmt.Errorf("%w: division by zero", ErrCalculationOverflow)
)

// Checked maps a native-width range error from utils/math onto
// ErrCalculationOverflow.
func Checked[T any](v T, err error) (T, error) {
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %w", ErrCalculationOverflow, err)
	}
	return v, nil
}
