// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package token splits schematic rows into column-ranged tokens.
//
// A schematic row is made of digits, periods and symbol characters. The
// Scanner walks a row left to right and yields one token per maximal digit
// run (a Number) and one token per symbol character (a Symbol). Periods are
// gaps and never produce tokens.
//
// # Columns
//
// Columns are rune indices, not byte offsets. Any rune that is not an ASCII
// digit or '.' is a symbol; only '*' is a gear.
//
// # Thread Safety
//
// Span and Token are plain values. A Scanner is single-use and must not be
// shared between goroutines.
package token

import (
	"fmt"
	"strconv"
)

// Kind distinguishes numbers from symbols.
type Kind uint8

const (
	// KindNumber is a maximal run of ASCII digits.
	KindNumber Kind = iota + 1

	// KindSymbol is a single non-digit, non-period rune.
	KindSymbol
)

// String returns "number", "symbol" or "unknown".
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindSymbol:
		return "symbol"
	default:
		return "unknown"
	}
}

// SymbolKind classifies symbol tokens.
type SymbolKind uint8

const (
	// SymbolNone is the symbol kind carried by number tokens.
	SymbolNone SymbolKind = iota

	// SymbolNonGear is every symbol rune other than '*'.
	SymbolNonGear

	// SymbolGear is the '*' rune.
	SymbolGear
)

// String returns "gear", "non-gear" or "".
func (k SymbolKind) String() string {
	switch k {
	case SymbolGear:
		return "gear"
	case SymbolNonGear:
		return "non-gear"
	default:
		return ""
	}
}

// GearRune is the only rune that produces a gear symbol.
const GearRune = '*'

// gapRune separates tokens and is never emitted.
const gapRune = '.'

// Token is a tagged value: either Number(Value) or Symbol(Symbol).
//
// Char holds the source rune for symbols and is zero for numbers.
type Token struct {
	Kind   Kind
	Value  uint64
	Symbol SymbolKind
	Char   rune
}

// Number returns a number token holding v.
func Number(v uint64) Token {
	return Token{Kind: KindNumber, Value: v}
}

// Gear returns the '*' symbol token.
func Gear() Token {
	return Token{Kind: KindSymbol, Symbol: SymbolGear, Char: GearRune}
}

// NonGear returns a non-gear symbol token for r.
func NonGear(r rune) Token {
	return Token{Kind: KindSymbol, Symbol: SymbolNonGear, Char: r}
}

// SymbolFor classifies r as a gear or non-gear symbol token.
func SymbolFor(r rune) Token {
	if r == GearRune {
		return Gear()
	}
	return NonGear(r)
}

// IsNumber reports whether the token is a number.
func (t Token) IsNumber() bool { return t.Kind == KindNumber }

// IsSymbol reports whether the token is a symbol of any kind.
func (t Token) IsSymbol() bool { return t.Kind == KindSymbol }

// IsGear reports whether the token is the '*' symbol.
func (t Token) IsGear() bool { return t.Kind == KindSymbol && t.Symbol == SymbolGear }

// NumberValue returns the value and true for number tokens.
func (t Token) NumberValue() (uint64, bool) {
	if t.Kind != KindNumber {
		return 0, false
	}
	return t.Value, true
}

// String renders the token as "Number(467)", "Gear" or "NonGear(#)".
func (t Token) String() string {
	switch {
	case t.IsNumber():
		return "Number(" + strconv.FormatUint(t.Value, 10) + ")"
	case t.IsGear():
		return "Gear"
	case t.IsSymbol():
		return fmt.Sprintf("NonGear(%c)", t.Char)
	default:
		return "Invalid"
	}
}

// Entry pairs a token with the span it occupies on its row.
type Entry struct {
	Span  Span
	Token Token
}

// isDigit reports whether r is an ASCII digit.
func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
