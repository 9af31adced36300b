// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package index provides the ordered spatial index over a tokenized schematic.
//
// The index package contains Schematic, an immutable structure mapping
// (row, span) positions to tokens. Entries are stored in row-major,
// column-ascending order so that "tokens on row r" and "tokens on row r
// near column c" are binary-searched range lookups rather than scans.
//
// # Ownership Model
//
// A Schematic is built once by Build and never mutated afterwards. Slices
// returned by queries alias internal storage and MUST NOT be modified.
//
// # Thread Safety
//
// A built Schematic is safe for concurrent use. No method mutates state
// after Build returns, so no locks are taken.
package index

import (
	"errors"
	"fmt"
)

// Sentinel errors for schematic index operations.
var (
	// ErrNotBuilt is returned by aggregates on a zero-value Schematic.
	ErrNotBuilt = errors.New("schematic not built")

	// ErrAggregateOverflow is returned when a sum or product exceeds uint64.
	ErrAggregateOverflow = errors.New("aggregate overflows uint64")

	// ErrNilContext is returned when a nil context is passed.
	ErrNilContext = errors.New("context must not be nil")
)

// RowError attaches the row number to a tokenization failure.
//
// RowError unwraps to the underlying tokenizer error, so
// errors.Is(err, token.ErrNumberOverflow) works on build errors.
type RowError struct {
	// Row is the zero-based row that failed to tokenize.
	Row int

	// Err is the tokenizer error.
	Err error
}

// Error returns "row N: <cause>".
func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

// Unwrap returns the tokenizer error.
func (e *RowError) Unwrap() error {
	return e.Err
}
