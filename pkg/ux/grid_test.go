// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/gearscan/services/schematic/index"
)

const sampleGrid = `467..114..
...*......
..35..633.
......#...
617*......
.....+.58.
..592.....
......755.
...$.*....
.664.598..`

func buildSample(t *testing.T, text string) (*index.Schematic, []string) {
	t.Helper()
	sch, err := index.Build(context.Background(), text)
	require.NoError(t, err)
	return sch, index.SplitRows(text)
}

func TestGridRenderer_PlainIsLossless(t *testing.T) {
	sch, rows := buildSample(t, sampleGrid)
	var buf bytes.Buffer
	r := NewGridRenderer(NewTheme(&buf, false))

	out, err := r.Render(context.Background(), sch, rows)
	require.NoError(t, err)
	assert.Equal(t, sampleGrid+"\n", out)
}

func TestGridRenderer_PlainMultiByte(t *testing.T) {
	text := "é12\n.*3"
	sch, rows := buildSample(t, text)
	r := NewGridRenderer(NewTheme(&bytes.Buffer{}, false))

	out, err := r.Render(context.Background(), sch, rows)
	require.NoError(t, err)
	assert.Equal(t, text+"\n", out)
}

func TestGridRenderer_ColorStylesTokens(t *testing.T) {
	sch, rows := buildSample(t, "467..114\n...*....\n..35....")
	theme := NewTheme(&bytes.Buffer{}, true)
	r := NewGridRenderer(theme)

	out, err := r.Render(context.Background(), sch, rows)
	require.NoError(t, err)

	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, theme.Eligible.Render("467"))
	assert.Contains(t, out, theme.Ineligible.Render("114"))
	assert.Contains(t, out, theme.Gear.Render("*"))
	assert.Equal(t, "467..114\n...*....\n..35....\n", stripANSI(out))
}

func TestGridRenderer_LoneGear(t *testing.T) {
	sch, rows := buildSample(t, "1*..")
	theme := NewTheme(&bytes.Buffer{}, true)

	out, err := NewGridRenderer(theme).Render(context.Background(), sch, rows)
	require.NoError(t, err)
	assert.Contains(t, out, theme.LoneGear.Render("*"))
}

func TestGridRenderer_Unbuilt(t *testing.T) {
	r := NewGridRenderer(NewTheme(&bytes.Buffer{}, false))
	_, err := r.Render(context.Background(), &index.Schematic{}, nil)
	assert.ErrorIs(t, err, index.ErrNotBuilt)
}

func TestGridRenderer_Legend(t *testing.T) {
	r := NewGridRenderer(NewTheme(&bytes.Buffer{}, false))
	legend := r.Legend()
	assert.Contains(t, legend, "part number")
	assert.Contains(t, legend, "not a gear")
}

func TestParseColorMode(t *testing.T) {
	for in, want := range map[string]ColorMode{
		"":       ColorAuto,
		"auto":   ColorAuto,
		"ALWAYS": ColorAlways,
		"never":  ColorNever,
	} {
		got, err := ParseColorMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseColorMode("sometimes")
	assert.Error(t, err)
}

func TestShouldColor(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, ShouldColor(&buf, ColorAlways))
	assert.False(t, ShouldColor(&buf, ColorNever))
	assert.False(t, ShouldColor(&buf, ColorAuto), "buffers are not terminals")

	t.Setenv("NO_COLOR", "1")
	assert.False(t, ShouldColor(&buf, ColorAuto))
	assert.True(t, ShouldColor(&buf, ColorAlways))
}

func TestIsTerminal_NonFile(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}

func TestIcon_Render(t *testing.T) {
	theme := NewTheme(&bytes.Buffer{}, false)
	assert.Equal(t, "✓", IconSuccess.Render(theme))
	assert.Equal(t, "⚙", IconGear.Render(theme))
	assert.Equal(t, "?", Icon("?").Render(theme))
}

// stripANSI removes CSI escape sequences.
func stripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b && i+1 < len(s) && s[i+1] == '[' {
			i += 2
			for i < len(s) && (s[i] < 0x40 || s[i] > 0x7e) {
				i++
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
