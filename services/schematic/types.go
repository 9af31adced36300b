// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package schematic

import (
	"github.com/AleutianAI/gearscan/services/schematic/index"
	"github.com/AleutianAI/gearscan/services/schematic/token"
)

// =============================================================================
// Requests
// =============================================================================

// AnalyzeRequest is the request body for POST /v1/schematic/analyze.
type AnalyzeRequest struct {
	// Grid is the full schematic text, rows separated by '\n'.
	// Required; an empty string is a valid (empty) grid.
	Grid *string `json:"grid" binding:"required"`
}

// TokensRequest is the request body for POST /v1/schematic/tokens.
type TokensRequest struct {
	// Grid is the full schematic text. Required; may be empty.
	Grid *string `json:"grid" binding:"required"`

	// Rows optionally restricts the response to these row indices.
	Rows []int `json:"rows,omitempty" binding:"omitempty,max=1024,dive,min=0"`
}

// =============================================================================
// Responses
// =============================================================================

// Report is the result of analyzing one grid.
type Report struct {
	// Part1 is the sum of all numbers adjacent to at least one symbol.
	Part1 uint64 `json:"part1"`

	// Part2 is the sum of gear ratios over gears with exactly two numbers.
	Part2 uint64 `json:"part2"`

	// Gears lists every '*' in row-major order with its evaluation.
	Gears []GearReport `json:"gears"`

	// Stats summarizes the token index.
	Stats ReportStats `json:"stats"`
}

// GearReport is the evaluation of one '*' token.
type GearReport struct {
	Row     int      `json:"row"`
	Col     int      `json:"col"`
	Numbers []uint64 `json:"numbers"`
	Ratio   uint64   `json:"ratio"`
	Counted bool     `json:"counted"`
}

// ReportStats extends the index statistics with the eligible-number count.
type ReportStats struct {
	index.Stats

	// Eligible is the number of numbers that touch at least one symbol.
	Eligible int `json:"eligible"`
}

// TokenView is the JSON form of one indexed token.
type TokenView struct {
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Kind   string `json:"kind"`
	Value  uint64 `json:"value,omitempty"`
	Symbol string `json:"symbol,omitempty"`
	Char   string `json:"char,omitempty"`
}

// RowTokens are the tokens of one row in column order.
type RowTokens struct {
	Row    int         `json:"row"`
	Tokens []TokenView `json:"tokens"`
}

// TokensResponse is the response body for POST /v1/schematic/tokens.
type TokensResponse struct {
	Rows []RowTokens `json:"rows"`
}

// HealthResponse is the response body for GET /v1/schematic/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is returned for any failed request.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is a stable machine-readable error code.
	Code string `json:"code,omitempty"`
}

// newTokenView converts an index entry to its JSON form.
func newTokenView(e index.Entry) TokenView {
	v := TokenView{
		Start: e.Pos.Span.Start,
		End:   e.Pos.Span.End,
		Kind:  e.Token.Kind.String(),
	}
	switch {
	case e.Token.IsNumber():
		v.Value = e.Token.Value
	case e.Token.Kind == token.KindSymbol:
		v.Symbol = e.Token.Symbol.String()
		v.Char = string(e.Token.Char)
	}
	return v
}
