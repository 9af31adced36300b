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
	"fmt"
	"math"
)

// Span is a half-open column interval [Start, End) on a single row.
//
// Columns are rune indices into the row. A span produced by the Scanner
// always satisfies Start >= 0 and End > Start.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of columns covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// IsEmpty reports whether the span covers no columns.
func (s Span) IsEmpty() bool {
	return s.End <= s.Start
}

// Contains reports whether col lies inside the span.
func (s Span) Contains(col int) bool {
	return col >= s.Start && col < s.End
}

// Overlaps reports whether two half-open spans share at least one column.
//
// [a, b) and [c, d) overlap iff a < d && b > c. Empty spans never overlap.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && s.End > other.Start
}

// Grow returns the span widened by n columns on each side.
//
// The left edge saturates at column 0 and the right edge at math.MaxInt,
// so spans touching the first column of a row never go negative.
func (s Span) Grow(n int) Span {
	start := s.Start - n
	if start < 0 || start > s.Start {
		start = 0
	}
	end := s.End + n
	if end < s.End {
		end = math.MaxInt
	}
	return Span{Start: start, End: end}
}

// Compare orders spans by Start, then by End.
//
// Returns -1, 0 or +1 in the manner of cmp.Compare.
func (s Span) Compare(other Span) int {
	switch {
	case s.Start < other.Start:
		return -1
	case s.Start > other.Start:
		return 1
	case s.End < other.End:
		return -1
	case s.End > other.End:
		return 1
	default:
		return 0
	}
}

// String renders the span as "[start,end)".
func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}
