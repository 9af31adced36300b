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
	"math/bits"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/gearscan/services/schematic/token"
)

// =============================================================================
// Windows
// =============================================================================

// eligibilityWindow is the column window a number's own span must reach to
// touch a symbol: the number's span grown by one column on each side.
func eligibilityWindow(number token.Span) token.Span {
	return number.Grow(1)
}

// gearBox is the column window around a gear's single-cell span in which a
// number's span must overlap to be adjacent to the gear.
func gearBox(gear token.Span) token.Span {
	return gear.Grow(1)
}

// adjacentRows returns the inclusive row range [row-1, row+1] clamped to
// [0, MaxRow].
func (s *Schematic) adjacentRows(row int) (lo, hi int) {
	lo, hi = row-1, row+1
	if lo < 0 {
		lo = 0
	}
	if hi > s.maxRow || hi < row {
		hi = s.maxRow
	}
	return lo, hi
}

// =============================================================================
// Part 1: symbol-adjacent numbers
// =============================================================================

// AnySymbolInWindow reports whether a symbol on row overlaps window.
func (s *Schematic) AnySymbolInWindow(row int, window token.Span) bool {
	for _, e := range s.overlapping(row, window) {
		if e.Token.IsSymbol() {
			return true
		}
	}
	return false
}

// IsEligible reports whether the number at pos touches any symbol.
//
// Description:
//
//	Checks the row above, the row itself and the row below (clamped to the
//	grid) for a symbol overlapping the number's span grown by one column.
//	Together these cover all eight neighbours of every digit. Returns false
//	when pos does not hold a number.
func (s *Schematic) IsEligible(pos Position) bool {
	tok, ok := s.Lookup(pos)
	if !ok || !tok.IsNumber() {
		return false
	}

	window := eligibilityWindow(pos.Span)
	lo, hi := s.adjacentRows(pos.Row)
	for r := lo; r <= hi; r++ {
		if s.AnySymbolInWindow(r, window) {
			return true
		}
	}
	return false
}

// EligibleNumbers returns the values of eligible numbers on row, in column order.
func (s *Schematic) EligibleNumbers(row int) []uint64 {
	var out []uint64
	for _, e := range s.Row(row) {
		if e.Token.IsNumber() && s.IsEligible(e.Pos) {
			out = append(out, e.Token.Value)
		}
	}
	return out
}

// SumEligibleNumbers returns the sum of every eligible number in the grid.
//
// Description:
//
//	Walks rows 0..MaxRow in order, summing each row's eligible numbers.
//
// Outputs:
//
//	uint64 - The sum.
//	error - ErrNilContext, ErrNotBuilt, or ErrAggregateOverflow.
func (s *Schematic) SumEligibleNumbers(ctx context.Context) (uint64, error) {
	if ctx == nil {
		return 0, ErrNilContext
	}
	if !s.built {
		return 0, ErrNotBuilt
	}

	start := time.Now()
	ctx, span := startOperationSpan(ctx, "SumEligibleNumbers")
	defer span.End()

	var total uint64
	for row := 0; row <= s.maxRow; row++ {
		for _, v := range s.EligibleNumbers(row) {
			sum, carry := bits.Add64(total, v, 0)
			if carry != 0 {
				span.SetStatus(codes.Error, ErrAggregateOverflow.Error())
				recordOperationMetrics(ctx, "SumEligibleNumbers", time.Since(start), false)
				return 0, ErrAggregateOverflow
			}
			total = sum
		}
	}

	setOperationSpanResult(span, total, true)
	recordOperationMetrics(ctx, "SumEligibleNumbers", time.Since(start), true)
	return total, nil
}

// =============================================================================
// Part 2: gear ratios
// =============================================================================

// GearRatio is the evaluation of one gear.
type GearRatio struct {
	// Gear is the position of the '*' token.
	Gear Position

	// Numbers are the adjacent number entries, in index order.
	Numbers []Entry

	// Ratio is the product of the two numbers, or 0 unless exactly two.
	Ratio uint64
}

// Counted reports whether the gear contributes to the ratio sum.
func (g GearRatio) Counted() bool {
	return len(g.Numbers) == 2
}

// NumbersAround returns the number entries adjacent to the box at pos.
//
// Description:
//
//	For rows pos.Row-1..pos.Row+1 (clamped), collects each number whose span
//	[ns, ne) overlaps the gear box [qs, qe), i.e. ns < qe && ne > qs, where
//	the box is pos.Span grown by one column. Each number entry is returned at
//	most once, however many of its digits touch the box.
func (s *Schematic) NumbersAround(pos Position) []Entry {
	box := gearBox(pos.Span)
	lo, hi := s.adjacentRows(pos.Row)

	var out []Entry
	for r := lo; r <= hi; r++ {
		for _, e := range s.overlapping(r, box) {
			if e.Token.IsNumber() {
				out = append(out, e)
			}
		}
	}
	return out
}

// EvaluateGear computes the ratio for the gear at pos.
//
// Returns ErrAggregateOverflow if the product does not fit in a uint64.
func (s *Schematic) EvaluateGear(pos Position) (GearRatio, error) {
	g := GearRatio{Gear: pos, Numbers: s.NumbersAround(pos)}
	if len(g.Numbers) != 2 {
		return g, nil
	}
	hi, lo := bits.Mul64(g.Numbers[0].Token.Value, g.Numbers[1].Token.Value)
	if hi != 0 {
		return g, ErrAggregateOverflow
	}
	g.Ratio = lo
	return g, nil
}

// GearRatios evaluates every gear in index order.
func (s *Schematic) GearRatios(ctx context.Context) ([]GearRatio, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if !s.built {
		return nil, ErrNotBuilt
	}

	out := make([]GearRatio, 0, len(s.gears))
	for _, pos := range s.gears {
		g, err := s.EvaluateGear(pos)
		if err != nil {
			return nil, err
		}
		recordGear(ctx, g.Counted())
		out = append(out, g)
	}
	return out, nil
}

// SumGearRatios returns the sum of ratios over all gears with exactly two
// adjacent numbers.
//
// Outputs:
//
//	uint64 - The sum.
//	error - ErrNilContext, ErrNotBuilt, or ErrAggregateOverflow.
func (s *Schematic) SumGearRatios(ctx context.Context) (uint64, error) {
	if ctx == nil {
		return 0, ErrNilContext
	}
	if !s.built {
		return 0, ErrNotBuilt
	}

	start := time.Now()
	ctx, span := startOperationSpan(ctx, "SumGearRatios")
	defer span.End()
	span.SetAttributes(attribute.Int("schematic.gears", len(s.gears)))

	fail := func(err error) (uint64, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		recordOperationMetrics(ctx, "SumGearRatios", time.Since(start), false)
		return 0, err
	}

	ratios, err := s.GearRatios(ctx)
	if err != nil {
		return fail(err)
	}

	var total uint64
	for _, g := range ratios {
		sum, carry := bits.Add64(total, g.Ratio, 0)
		if carry != 0 {
			return fail(ErrAggregateOverflow)
		}
		total = sum
	}

	setOperationSpanResult(span, total, true)
	recordOperationMetrics(ctx, "SumGearRatios", time.Since(start), true)
	return total, nil
}
