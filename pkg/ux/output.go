// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides terminal output styling for the gearscan CLI.
package ux

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// gearscan palette, brass and machine-shop tones
var (
	ColorBrass   = lipgloss.Color("#D4A017") // Brass - gears that count
	ColorCopper  = lipgloss.Color("#B87333") // Copper - gears that don't
	ColorSteel   = lipgloss.Color("#4682B4") // Steel blue - symbols
	ColorOil     = lipgloss.Color("#2C4A54") // Slate - gaps, muted text
	ColorSuccess = lipgloss.Color("#2CD7C7") // Teal - eligible numbers
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
)

// ColorMode selects when output is coloured.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode validates a --color flag value.
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(s)); m {
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	case "":
		return ColorAuto, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q (want auto, always or never)", s)
	}
}

// IsTerminal reports whether w is a terminal, Cygwin ptys included.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ShouldColor decides whether output to w gets ANSI styling.
//
// ColorAuto colours only terminals, and honours NO_COLOR.
func ShouldColor(w io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		return IsTerminal(w)
	}
}

// Theme holds the styles used by the CLI, bound to one output.
type Theme struct {
	Color bool

	Title      lipgloss.Style
	Muted      lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style
	Error      lipgloss.Style
	Eligible   lipgloss.Style
	Ineligible lipgloss.Style
	Gear       lipgloss.Style
	LoneGear   lipgloss.Style
	Symbol     lipgloss.Style
	Gap        lipgloss.Style
}

// NewTheme builds styles for w. Without colour every style renders its
// input unchanged.
func NewTheme(w io.Writer, color bool) *Theme {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}

	return &Theme{
		Color:      color,
		Title:      r.NewStyle().Bold(true).Foreground(ColorBrass),
		Muted:      r.NewStyle().Foreground(ColorOil),
		Success:    r.NewStyle().Foreground(ColorSuccess),
		Warning:    r.NewStyle().Foreground(ColorWarning),
		Error:      r.NewStyle().Foreground(ColorError),
		Eligible:   r.NewStyle().Bold(true).Foreground(ColorSuccess),
		Ineligible: r.NewStyle().Foreground(ColorOil),
		Gear:       r.NewStyle().Bold(true).Foreground(ColorBrass),
		LoneGear:   r.NewStyle().Foreground(ColorCopper),
		Symbol:     r.NewStyle().Foreground(ColorSteel).TabWidth(lipgloss.NoTabConversion),
		Gap:        r.NewStyle().Foreground(ColorOil),
	}
}

// Icon provides themed status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconGear    Icon = "⚙"
)

// Render returns the icon styled by t.
func (i Icon) Render(t *Theme) string {
	switch i {
	case IconSuccess:
		return t.Success.Render(string(i))
	case IconWarning:
		return t.Warning.Render(string(i))
	case IconError:
		return t.Error.Render(string(i))
	case IconGear:
		return t.Gear.Render(string(i))
	default:
		return string(i)
	}
}
