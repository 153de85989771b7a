package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// maxDecimalDigits is the longest digit run after a lone separator
	// that is still read as a fraction (cents)
	maxDecimalDigits = 2

	displayDecimals    = 2
	displayDecimalMark = ","
)

// ParseNumber resolves a raw feed value into a finite number.
// The boolean is false when the value is absent or not a number.
//
// Text is read with the "last separator wins" rule: when both '.' and ','
// occur, the later one is the decimal separator and the other groups thousands.
// A lone separator kind is decimal only when at most two digits follow its
// last occurrence ("1,23" is 1.23, "1,234" is 1234). Currency symbols, spaces
// and other noise are ignored
func ParseNumber(v Value) (float64, bool) {
	switch v.kind {
	case KindNumber:
		if !isFinite(v.num) {
			return 0, false
		}

		return v.num, true
	case KindText:
		return ParseString(v.text)
	default:
		return 0, false
	}
}

// ParseString is ParseNumber for textual input
func ParseString(s string) (float64, bool) {
	canonical, ok := canonicalize(stripNoise(strings.TrimSpace(s)))
	if !ok {
		return 0, false
	}

	f, err := strconv.ParseFloat(canonical, 64)
	if err != nil || !isFinite(f) {
		return 0, false
	}

	return f, true
}

// FormatNumber renders the value for display: two decimal places,
// a comma as the decimal mark and no grouping ("24100,50").
// Text is parsed with ParseNumber first
func FormatNumber(v Value) (string, bool) {
	f, ok := ParseNumber(v)
	if !ok {
		return "", false
	}

	// decimal rounds the shortest representation, so 1.005 renders as 1,01
	fixed := decimal.NewFromFloat(f).StringFixed(displayDecimals)

	return strings.Replace(fixed, ".", displayDecimalMark, 1), true
}

// stripNoise keeps digits and separators, and a minus sign
// only when it precedes everything that is kept
func stripNoise(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for _, r := range s {
		switch {
		case isDigit(r), r == '.', r == ',':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		}
	}

	return b.String()
}

// canonicalize rewrites stripped text into a form strconv understands
func canonicalize(s string) (string, bool) {
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	if strings.IndexFunc(s, isDigit) < 0 {
		return "", false // "", "-", ".", "," and friends
	}

	var (
		lastDot   = strings.LastIndexByte(s, '.')
		lastComma = strings.LastIndexByte(s, ',')
		sep       = -1 // index of the decimal separator, if any
	)

	switch {
	case lastDot >= 0 && lastComma >= 0:
		sep = max(lastDot, lastComma)
	case lastComma >= 0:
		if len(s)-lastComma-1 <= maxDecimalDigits {
			sep = lastComma
		}
	case lastDot >= 0:
		if len(s)-lastDot-1 <= maxDecimalDigits {
			sep = lastDot
		}
	}

	intPart, fracPart := s, ""
	if sep >= 0 {
		intPart, fracPart = s[:sep], s[sep+1:]
	}

	intPart = dropSeparators(intPart)
	if intPart == "" {
		intPart = "0"
	}

	var b strings.Builder

	if negative {
		b.WriteByte('-')
	}

	b.WriteString(intPart)

	if fracPart != "" {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}

	return b.String(), true
}

func dropSeparators(s string) string {
	return strings.NewReplacer(".", "", ",", "").Replace(s)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
