// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package token

import (
	"errors"
	"fmt"
)

// Sentinel errors for tokenization.
var (
	// ErrNumberOverflow is returned when a digit run does not fit in a uint64.
	ErrNumberOverflow = errors.New("number overflows uint64")
)

// ParseError describes a digit run that could not be converted to a number.
//
// ParseError unwraps to both ErrNumberOverflow and the underlying strconv
// error, so callers can use errors.Is with either.
type ParseError struct {
	// Column is the rune index where the digit run starts.
	Column int

	// Digits is the offending digit run.
	Digits string

	// Err is the strconv error that rejected the run.
	Err error
}

// Error returns a message naming the column and digits.
func (e *ParseError) Error() string {
	digits := e.Digits
	if len(digits) > 32 {
		digits = digits[:29] + "..."
	}
	return fmt.Sprintf("column %d: %q: %v", e.Column, digits, ErrNumberOverflow)
}

// Unwrap returns ErrNumberOverflow and the strconv cause.
func (e *ParseError) Unwrap() []error {
	return []error{ErrNumberOverflow, e.Err}
}
