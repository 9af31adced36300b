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
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/gearscan/services/schematic/token"
)

const exampleGrid = `467..114..
...*......
..35..633.
......#...
617*......
.....+.58.
..592.....
......755.
...$.*....
.664.598..`

// mustBuild builds grid or fails the test.
func mustBuild(t *testing.T, grid string) *Schematic {
	t.Helper()
	s, err := Build(context.Background(), grid)
	require.NoError(t, err)
	return s
}

// pos is shorthand for a Position literal.
func pos(row, start, end int) Position {
	return Position{Row: row, Span: token.Span{Start: start, End: end}}
}

// values extracts number values from entries.
func values(entries []Entry) []uint64 {
	out := make([]uint64, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Token.Value)
	}
	return out
}

func TestBuild_Example(t *testing.T) {
	s := mustBuild(t, exampleGrid)

	assert.True(t, s.Built())
	assert.Equal(t, 9, s.MaxRow())
	assert.Equal(t, 16, s.Len())
	assert.Equal(t, []Position{pos(1, 3, 4), pos(4, 3, 4), pos(8, 5, 6)}, s.Gears())

	st := s.Stats()
	assert.Equal(t, Stats{Rows: 10, MaxRow: 9, Entries: 16, Numbers: 10, Symbols: 6, Gears: 3}, st)
}

func TestBuild_EntriesSorted(t *testing.T) {
	s := mustBuild(t, exampleGrid)
	entries := s.Entries()
	for i := 1; i < len(entries); i++ {
		assert.Equal(t, -1, entries[i-1].Pos.Compare(entries[i].Pos),
			"entries %v and %v out of order", entries[i-1].Pos, entries[i].Pos)
	}
}

func TestBuild_GearsPresentInIndex(t *testing.T) {
	s := mustBuild(t, exampleGrid)
	for _, g := range s.Gears() {
		tok, ok := s.Lookup(g)
		require.True(t, ok, "gear %v missing from index", g)
		assert.True(t, tok.IsGear())
	}
}

func TestBuild_EmptyGrid(t *testing.T) {
	s := mustBuild(t, "")

	assert.True(t, s.Built())
	assert.Equal(t, 0, s.MaxRow())
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Gears())

	p1, err := s.SumEligibleNumbers(context.Background())
	require.NoError(t, err)
	assert.Zero(t, p1)

	p2, err := s.SumGearRatios(context.Background())
	require.NoError(t, err)
	assert.Zero(t, p2)
}

func TestBuild_RowSplitting(t *testing.T) {
	t.Run("trailing newline is not a row", func(t *testing.T) {
		s := mustBuild(t, "1*\n..\n")
		assert.Equal(t, 1, s.MaxRow())
		assert.Equal(t, 2, s.Stats().Rows)
	})

	t.Run("CRLF rows", func(t *testing.T) {
		s := mustBuild(t, "12.\r\n.*.\r\n")
		assert.Equal(t, 1, s.MaxRow())
		assert.Equal(t, []Position{pos(1, 1, 2)}, s.Gears())
		_, ok := s.Lookup(pos(0, 0, 2))
		assert.True(t, ok)
	})

	t.Run("token-free rows still count toward max row", func(t *testing.T) {
		s := mustBuild(t, "....\n....\n..7.")
		assert.Equal(t, 2, s.MaxRow())
		assert.Empty(t, s.Row(0))
		assert.Len(t, s.Row(2), 1)
	})
}

func TestBuild_Overflow(t *testing.T) {
	_, err := Build(context.Background(), "1.\n.99999999999999999999*")
	require.Error(t, err)

	assert.True(t, errors.Is(err, token.ErrNumberOverflow))

	var rowErr *RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 1, rowErr.Row)

	var parseErr *token.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 1, parseErr.Column)
}

func TestBuild_NilContext(t *testing.T) {
	//nolint:staticcheck // nil context is the case under test
	_, err := Build(nil, exampleGrid)
	assert.ErrorIs(t, err, ErrNilContext)
}

func TestSchematic_ZeroValueNotBuilt(t *testing.T) {
	var s Schematic

	assert.False(t, s.Built())
	assert.Empty(t, s.Row(0))
	assert.False(t, s.IsEligible(pos(0, 0, 1)))

	_, err := s.SumEligibleNumbers(context.Background())
	assert.ErrorIs(t, err, ErrNotBuilt)

	_, err = s.SumGearRatios(context.Background())
	assert.ErrorIs(t, err, ErrNotBuilt)

	_, err = s.GearRatios(context.Background())
	assert.ErrorIs(t, err, ErrNotBuilt)
}

func TestSchematic_Row(t *testing.T) {
	s := mustBuild(t, exampleGrid)

	row := s.Row(2)
	require.Len(t, row, 2)
	assert.Equal(t, Entry{Pos: pos(2, 2, 4), Token: token.Number(35)}, row[0])
	assert.Equal(t, Entry{Pos: pos(2, 6, 9), Token: token.Number(633)}, row[1])

	assert.Nil(t, s.Row(-1))
	assert.Nil(t, s.Row(10))
}

func TestSchematic_Lookup(t *testing.T) {
	s := mustBuild(t, exampleGrid)

	tok, ok := s.Lookup(pos(0, 0, 3))
	require.True(t, ok)
	assert.Equal(t, token.Number(467), tok)

	_, ok = s.Lookup(pos(0, 0, 2))
	assert.False(t, ok, "partial span must not match")
}

func TestSchematic_AnySymbolInWindow(t *testing.T) {
	s := mustBuild(t, exampleGrid)

	tests := []struct {
		name   string
		row    int
		window token.Span
		want   bool
	}{
		{"gear exactly", 1, token.Span{Start: 3, End: 4}, true},
		{"window ends at gear", 1, token.Span{Start: 0, End: 3}, false},
		{"window starts after gear", 1, token.Span{Start: 4, End: 9}, false},
		{"wide window", 3, token.Span{Start: 0, End: 10}, true},
		{"numbers only", 2, token.Span{Start: 0, End: 10}, false},
		{"empty window", 1, token.Span{Start: 3, End: 3}, false},
		{"row out of range", 42, token.Span{Start: 0, End: 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.AnySymbolInWindow(tt.row, tt.window))
		})
	}
}

func TestSchematic_EligibleNumbersByRow(t *testing.T) {
	s := mustBuild(t, exampleGrid)

	want := map[int][]uint64{
		0: {467},
		1: nil,
		2: {35, 633},
		3: nil,
		4: {617},
		5: nil,
		6: {592},
		7: {755},
		8: nil,
		9: {664, 598},
	}

	for row := 0; row <= s.MaxRow(); row++ {
		assert.Equal(t, want[row], s.EligibleNumbers(row), "row %d", row)
	}
}

func TestSchematic_SumEligibleNumbers(t *testing.T) {
	s := mustBuild(t, exampleGrid)

	got, err := s.SumEligibleNumbers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(4361), got)
}

func TestSchematic_NumbersAround(t *testing.T) {
	s := mustBuild(t, exampleGrid)

	tests := []struct {
		gear Position
		want []uint64
	}{
		{pos(1, 3, 4), []uint64{467, 35}},
		{pos(4, 3, 4), []uint64{617}},
		{pos(8, 5, 6), []uint64{755, 598}},
	}

	for _, tt := range tests {
		t.Run(tt.gear.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, values(s.NumbersAround(tt.gear)))
		})
	}
}

func TestSchematic_GearRatios(t *testing.T) {
	s := mustBuild(t, exampleGrid)

	ratios, err := s.GearRatios(context.Background())
	require.NoError(t, err)
	require.Len(t, ratios, 3)

	assert.Equal(t, uint64(16345), ratios[0].Ratio)
	assert.True(t, ratios[0].Counted())
	assert.Equal(t, uint64(0), ratios[1].Ratio)
	assert.False(t, ratios[1].Counted())
	assert.Equal(t, uint64(451490), ratios[2].Ratio)

	sum, err := s.SumGearRatios(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(467835), sum)
}

func TestSchematic_NoSymbols(t *testing.T) {
	s := mustBuild(t, "123..45\n.......\n6.7.8.9")

	p1, err := s.SumEligibleNumbers(context.Background())
	require.NoError(t, err)
	assert.Zero(t, p1)

	p2, err := s.SumGearRatios(context.Background())
	require.NoError(t, err)
	assert.Zero(t, p2)
}

func TestSchematic_EligibilityWindowMatchesSymbolColumn(t *testing.T) {
	// A symbol at column c makes the number at [start, end) eligible
	// exactly when start-1 <= c <= end.
	const width = 9
	span := token.Span{Start: 3, End: 6}

	for _, rowOffset := range []int{-1, 0, 1} {
		for c := 0; c < width; c++ {
			if rowOffset == 0 && span.Contains(c) {
				continue // the number itself occupies these cells
			}

			grid := make([][]byte, 3)
			for i := range grid {
				grid[i] = []byte(strings.Repeat(".", width))
			}
			copy(grid[1][span.Start:], "123")
			grid[1+rowOffset][c] = '#'

			lines := make([]string, len(grid))
			for i, g := range grid {
				lines[i] = string(g)
			}
			s, err := BuildRows(context.Background(), lines)
			require.NoError(t, err)

			want := span.Start-1 <= c && c <= span.End
			assert.Equal(t, want, s.IsEligible(pos(1, span.Start, span.End)),
				"symbol at row offset %d col %d", rowOffset, c)
		}
	}
}

func TestSchematic_GridBoundaries(t *testing.T) {
	t.Run("number at first column of first row", func(t *testing.T) {
		s := mustBuild(t, "12.\n..#")
		assert.Equal(t, []uint64{12}, s.EligibleNumbers(0))
	})

	t.Run("number at last column of last row", func(t *testing.T) {
		s := mustBuild(t, "#...\n..34")
		assert.Empty(t, s.EligibleNumbers(1), "diagonal distance 2 is not adjacent")

		s = mustBuild(t, ".#.\n.34")
		assert.Equal(t, []uint64{34}, s.EligibleNumbers(1))
	})

	t.Run("single row grid", func(t *testing.T) {
		s := mustBuild(t, "5*5")
		p1, err := s.SumEligibleNumbers(context.Background())
		require.NoError(t, err)
		assert.Equal(t, uint64(10), p1)

		p2, err := s.SumGearRatios(context.Background())
		require.NoError(t, err)
		assert.Equal(t, uint64(25), p2)
	})

	t.Run("gear at row 0 column 0", func(t *testing.T) {
		s := mustBuild(t, "*2\n3.")
		assert.Equal(t, []uint64{2, 3}, values(s.NumbersAround(pos(0, 0, 1))))
	})
}

func TestSchematic_GearCountsOtherThanTwo(t *testing.T) {
	tests := []struct {
		name  string
		grid  string
		count int
	}{
		{"zero", "...\n.*.\n...", 0},
		{"one", "1..\n.*.\n...", 1},
		{"three", "1.2\n.*.\n3..", 3},
		{"four", "1.2\n3*4\n...", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustBuild(t, tt.grid)
			ratios, err := s.GearRatios(context.Background())
			require.NoError(t, err)
			require.Len(t, ratios, 1)
			assert.Len(t, ratios[0].Numbers, tt.count)
			assert.Zero(t, ratios[0].Ratio)

			sum, err := s.SumGearRatios(context.Background())
			require.NoError(t, err)
			assert.Zero(t, sum)
		})
	}
}

func TestSchematic_NumberCountedOncePerGear(t *testing.T) {
	// 123 touches the gear through all three of its digits.
	s := mustBuild(t, "123\n.*.\n.4.")

	around := s.NumbersAround(pos(1, 1, 2))
	assert.Equal(t, []uint64{123, 4}, values(around))

	sum, err := s.SumGearRatios(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(492), sum)
}

func TestSchematic_AggregateOverflow(t *testing.T) {
	t.Run("sum of eligible numbers", func(t *testing.T) {
		s := mustBuild(t, "18446744073709551615*1")
		_, err := s.SumEligibleNumbers(context.Background())
		assert.ErrorIs(t, err, ErrAggregateOverflow)
	})

	t.Run("gear ratio product", func(t *testing.T) {
		s := mustBuild(t, "4294967296*4294967296")
		_, err := s.SumGearRatios(context.Background())
		assert.ErrorIs(t, err, ErrAggregateOverflow)
	})
}

func TestSchematic_ConcurrentReads(t *testing.T) {
	s := mustBuild(t, exampleGrid)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p1, err := s.SumEligibleNumbers(context.Background())
			if err != nil {
				errs <- err
				return
			}
			p2, err := s.SumGearRatios(context.Background())
			if err != nil {
				errs <- err
				return
			}
			if p1 != 4361 || p2 != 467835 {
				errs <- errors.New("unexpected aggregate under concurrency")
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
