// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/AleutianAI/gearscan/services/schematic/index"
)

// GridRenderer draws a schematic with each token styled by its role in
// the two answers.
type GridRenderer struct {
	theme *Theme
}

// NewGridRenderer creates a renderer using theme.
func NewGridRenderer(theme *Theme) *GridRenderer {
	return &GridRenderer{theme: theme}
}

// Render returns rows with each token styled by its classification.
//
// Description:
//
//	rows must be the text sch was built from (index.SplitRows of the same
//	input). Columns are rune indices, matching token spans. Each row is
//	terminated by '\n'.
//
// Inputs:
//
//	ctx - Context for the gear evaluation span.
//	sch - The built schematic.
//	rows - The source rows.
//
// Outputs:
//
//	string - The rendered grid.
//	error - Any error from evaluating gears.
func (g *GridRenderer) Render(ctx context.Context, sch *index.Schematic, rows []string) (string, error) {
	ratios, err := sch.GearRatios(ctx)
	if err != nil {
		return "", fmt.Errorf("evaluate gears: %w", err)
	}
	counted := make(map[index.Position]bool, len(ratios))
	for _, r := range ratios {
		counted[r.Gear] = r.Counted()
	}

	var b strings.Builder
	for row, line := range rows {
		src := []rune(line)
		col := 0
		for _, e := range sch.Row(row) {
			if e.Pos.Span.Start > col {
				b.WriteString(g.theme.Gap.Render(string(src[col:e.Pos.Span.Start])))
			}
			text := string(src[e.Pos.Span.Start:e.Pos.Span.End])
			b.WriteString(g.styleFor(sch, e, counted).Render(text))
			col = e.Pos.Span.End
		}
		if col < len(src) {
			b.WriteString(g.theme.Gap.Render(string(src[col:])))
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// Legend describes the styles used by Render.
func (g *GridRenderer) Legend() string {
	t := g.theme
	return strings.Join([]string{
		t.Eligible.Render("123") + " part number",
		t.Ineligible.Render("123") + " not a part",
		t.Gear.Render("*") + " gear",
		t.LoneGear.Render("*") + " not a gear",
		t.Symbol.Render("#") + " symbol",
	}, "  ")
}

func (g *GridRenderer) styleFor(sch *index.Schematic, e index.Entry, counted map[index.Position]bool) lipgloss.Style {
	switch {
	case e.Token.IsNumber():
		if sch.IsEligible(e.Pos) {
			return g.theme.Eligible
		}
		return g.theme.Ineligible
	case e.Token.IsGear():
		if counted[e.Pos] {
			return g.theme.Gear
		}
		return g.theme.LoneGear
	default:
		return g.theme.Symbol
	}
}
