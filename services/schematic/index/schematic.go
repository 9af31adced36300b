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
	"context"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/gearscan/services/schematic/token"
)

// Schematic is the immutable (row, span) -> token index of one grid.
//
// Description:
//
//	entries holds every token of the grid sorted by Position. Because the
//	Scanner emits tokens left to right and rows are inserted in order,
//	construction is a pure append and the sort invariant holds without a
//	sort pass. gears duplicates the positions of '*' tokens so that the
//	gear-ratio pass does not have to filter the whole index.
//
// The zero value is an unbuilt Schematic: simple queries return empty
// results and aggregates return ErrNotBuilt.
//
// Thread Safety: Safe for concurrent use once built.
type Schematic struct {
	entries []Entry
	gears   []Position
	maxRow  int
	rows    int
	built   bool
}

// Stats summarizes a built schematic.
type Stats struct {
	Rows    int `json:"rows"`
	MaxRow  int `json:"max_row"`
	Entries int `json:"entries"`
	Numbers int `json:"numbers"`
	Symbols int `json:"symbols"`
	Gears   int `json:"gears"`
}

// Build tokenizes grid text and returns the built index.
//
// Description:
//
//	Splits the text into rows on '\n' (a trailing '\r' on each row is
//	dropped, and a single trailing newline does not start a new row), runs
//	the Scanner over every row in order and appends its tokens. An empty
//	grid builds successfully with MaxRow 0 and no entries.
//
// Inputs:
//
//	ctx - Context for tracing. Must not be nil.
//	text - The full grid text.
//
// Outputs:
//
//	*Schematic - The built index.
//	error - ErrNilContext, or a *RowError wrapping a *token.ParseError when a
//	        digit run overflows uint64.
func Build(ctx context.Context, text string) (*Schematic, error) {
	return BuildRows(ctx, SplitRows(text))
}

// BuildRows builds the index from pre-split rows. Row i is rows[i].
func BuildRows(ctx context.Context, rows []string) (*Schematic, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	start := time.Now()
	ctx, span := startOperationSpan(ctx, "Build")
	defer span.End()
	span.SetAttributes(attribute.Int("schematic.rows", len(rows)))

	s := &Schematic{rows: len(rows)}
	for row, line := range rows {
		if err := s.insertRow(row, line); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			recordOperationMetrics(ctx, "Build", time.Since(start), false)
			return nil, err
		}
	}
	s.built = true

	span.SetAttributes(
		attribute.Int("schematic.entries", len(s.entries)),
		attribute.Int("schematic.gears", len(s.gears)),
	)
	recordOperationMetrics(ctx, "Build", time.Since(start), true)
	recordEntries(ctx, len(s.entries))
	return s, nil
}

// SplitRows splits grid text into rows the way Build does.
func SplitRows(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	rows := strings.Split(text, "\n")
	for i, r := range rows {
		rows[i] = strings.TrimSuffix(r, "\r")
	}
	return rows
}

// insertRow appends the tokens of one row and records its gears.
func (s *Schematic) insertRow(row int, line string) error {
	if row > s.maxRow {
		s.maxRow = row
	}

	sc := token.NewScanner(line)
	for sc.Scan() {
		pos := Position{Row: row, Span: sc.Span()}
		tok := sc.Token()
		if tok.IsGear() {
			s.gears = append(s.gears, pos)
		}
		s.entries = append(s.entries, Entry{Pos: pos, Token: tok})
	}
	if err := sc.Err(); err != nil {
		return &RowError{Row: row, Err: err}
	}
	return nil
}

// Built reports whether the schematic was produced by Build.
func (s *Schematic) Built() bool { return s.built }

// MaxRow returns the largest row index seen, or 0 for an empty grid.
func (s *Schematic) MaxRow() int { return s.maxRow }

// Len returns the number of stored tokens.
func (s *Schematic) Len() int { return len(s.entries) }

// Entries returns every entry in index order.
//
// The returned slice aliases internal storage and must not be modified.
func (s *Schematic) Entries() []Entry {
	return s.entries[:len(s.entries):len(s.entries)]
}

// Gears returns a copy of the gear positions in index order.
func (s *Schematic) Gears() []Position {
	out := make([]Position, len(s.gears))
	copy(out, s.gears)
	return out
}

// Stats returns counts over the stored tokens.
func (s *Schematic) Stats() Stats {
	st := Stats{
		Rows:    s.rows,
		MaxRow:  s.maxRow,
		Entries: len(s.entries),
		Gears:   len(s.gears),
	}
	for _, e := range s.entries {
		if e.Token.IsNumber() {
			st.Numbers++
		} else {
			st.Symbols++
		}
	}
	return st
}

// lowerBound returns the index of the first entry whose position is >= p.
func (s *Schematic) lowerBound(p Position) int {
	return sort.Search(len(s.entries), func(i int) bool {
		return s.entries[i].Pos.Compare(p) >= 0
	})
}

// Lookup returns the token stored at exactly pos.
func (s *Schematic) Lookup(pos Position) (token.Token, bool) {
	i := s.lowerBound(pos)
	if i < len(s.entries) && s.entries[i].Pos == pos {
		return s.entries[i].Token, true
	}
	return token.Token{}, false
}

// Row returns the entries on row in column order.
//
// Description:
//
//	A bounded range lookup between (row, [0,0)) and (row+1, [0,0)). Rows
//	outside [0, MaxRow] and rows without tokens yield an empty slice.
//
// The returned slice aliases internal storage and must not be modified.
func (s *Schematic) Row(row int) []Entry {
	if row < 0 || row > s.maxRow {
		return nil
	}
	lo := s.lowerBound(rowStart(row))
	hi := s.lowerBound(rowStart(row + 1))
	return s.entries[lo:hi:hi]
}

// overlapping returns the entries on row whose span overlaps window.
//
// Spans on one row are disjoint and sorted, so both their starts and their
// ends ascend; the result is the contiguous run of entries that end after
// window.Start and begin before window.End.
func (s *Schematic) overlapping(row int, window token.Span) []Entry {
	if window.IsEmpty() {
		return nil
	}
	entries := s.Row(row)
	first := sort.Search(len(entries), func(i int) bool {
		return entries[i].Pos.Span.End > window.Start
	})
	last := sort.Search(len(entries), func(i int) bool {
		return entries[i].Pos.Span.Start >= window.End
	})
	if first >= last {
		return nil
	}
	return entries[first:last:last]
}
