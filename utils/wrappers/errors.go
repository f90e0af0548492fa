// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package wrappers provides error aggregation helpers.
package wrappers

import "errors"

// Errs collects errors during a series of checks.
//
// Err holds the first recorded error. All returns every recorded error
// joined together so validation can report each problem at once.
type Errs struct {
	Err  error
	errs []error
}

// Errored returns true if an error has been recorded.
func (errs *Errs) Errored() bool {
	return errs.Err != nil
}

// Add records every non-nil error.
func (errs *Errs) Add(errors ...error) {
	for _, err := range errors {
		if err == nil {
			continue
		}
		if errs.Err == nil {
			errs.Err = err
		}
		errs.errs = append(errs.errs, err)
	}
}

// Len returns the number of recorded errors.
func (errs *Errs) Len() int {
	return len(errs.errs)
}

// All returns the recorded errors joined, or nil if none were recorded.
func (errs *Errs) All() error {
	return errors.Join(errs.errs...)
}
