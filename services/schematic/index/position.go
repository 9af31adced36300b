// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package index

import (
	"fmt"

	"github.com/AleutianAI/gearscan/services/schematic/token"
)

// Position locates a token: a row and the column span it covers there.
//
// Positions are totally ordered by Row, then Span.Start, then Span.End.
// That order is the index key.
type Position struct {
	Row  int        `json:"row"`
	Span token.Span `json:"span"`
}

// Compare orders positions row-major, then by span.
//
// Returns -1, 0 or +1 in the manner of cmp.Compare.
func (p Position) Compare(other Position) int {
	switch {
	case p.Row < other.Row:
		return -1
	case p.Row > other.Row:
		return 1
	default:
		return p.Span.Compare(other.Span)
	}
}

// String renders the position as "row:[start,end)".
func (p Position) String() string {
	return fmt.Sprintf("%d:%s", p.Row, p.Span)
}

// rowStart is the smallest possible key on a row. The empty span [0,0)
// sorts before every real span, so it bounds row range lookups.
func rowStart(row int) Position {
	return Position{Row: row}
}

// Entry is one (position, token) pair stored in the index.
type Entry struct {
	Pos   Position
	Token token.Token
}
