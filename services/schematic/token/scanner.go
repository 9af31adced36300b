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
	"strconv"
	"strings"
)

// Scanner yields the tokens of one row, left to right.
//
// Description:
//
//	Scanner follows the bufio.Scanner shape: call Scan until it returns
//	false, reading Span and Token after each successful call, then check
//	Err. Each step skips a run of periods, then emits either the maximal
//	digit run at the cursor as a Number or the single rune at the cursor
//	as a Symbol.
//
// Example:
//
//	sc := token.NewScanner("467..114..")
//	for sc.Scan() {
//	    fmt.Println(sc.Span(), sc.Token())
//	}
//	if err := sc.Err(); err != nil {
//	    return err
//	}
//
// Thread Safety: Not safe for concurrent use.
type Scanner struct {
	line []rune
	pos  int

	span Span
	tok  Token
	err  error
	done bool
}

// NewScanner creates a Scanner over line.
func NewScanner(line string) *Scanner {
	return &Scanner{line: []rune(line)}
}

// Scan advances to the next token.
//
// Returns false when the row is exhausted or a digit run overflows. The
// scanner cannot be restarted once Scan has returned false.
func (s *Scanner) Scan() bool {
	if s.done {
		return false
	}

	for s.pos < len(s.line) && s.line[s.pos] == gapRune {
		s.pos++
	}
	if s.pos >= len(s.line) {
		s.done = true
		return false
	}

	start := s.pos
	r := s.line[start]
	if !isDigit(r) {
		s.pos++
		s.span = Span{Start: start, End: s.pos}
		s.tok = SymbolFor(r)
		return true
	}

	for s.pos < len(s.line) && isDigit(s.line[s.pos]) {
		s.pos++
	}
	digits := string(s.line[start:s.pos])
	v, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		s.err = &ParseError{Column: start, Digits: digits, Err: err}
		s.done = true
		return false
	}

	s.span = Span{Start: start, End: s.pos}
	s.tok = Number(v)
	return true
}

// Span returns the span of the most recent token.
func (s *Scanner) Span() Span { return s.span }

// Token returns the most recent token.
func (s *Scanner) Token() Token { return s.tok }

// Err returns the first error encountered, or nil at a clean end of row.
func (s *Scanner) Err() error { return s.err }

// Tokenize scans a whole row and returns its entries in column order.
//
// Returns a *ParseError if a digit run overflows.
func Tokenize(line string) ([]Entry, error) {
	var entries []Entry
	sc := NewScanner(line)
	for sc.Scan() {
		entries = append(entries, Entry{Span: sc.Span(), Token: sc.Token()})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Reconstruct rebuilds a row of the given width from its entries.
//
// Description:
//
//	Columns covered by an entry are copied from line (the text the entries
//	were scanned from); every other column becomes '.'. For a row scanned
//	by Scanner, Reconstruct(runeCount(line), entries, line) == line.
//
// Inputs:
//
//	width - Number of columns in the output.
//	entries - Entries in column order, as returned by Tokenize.
//	line - Source text for the covered columns.
func Reconstruct(width int, entries []Entry, line string) string {
	src := []rune(line)
	out := []rune(strings.Repeat(string(gapRune), width))
	for _, e := range entries {
		for col := e.Span.Start; col < e.Span.End && col < width && col < len(src); col++ {
			out[col] = src[col]
		}
	}
	return string(out)
}
