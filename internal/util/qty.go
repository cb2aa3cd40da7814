package util

import (
	"math"
	"strconv"
	"strings"
)

// intParser reports whether it could read v as a whole quantity.
type intParser func(v any) (int, bool)

var intParsers = []intParser{parseNativeInt, parseNumericText}

// ToInt reads a spreadsheet quantity. Fractions are truncated toward zero,
// so "3.0" and 3.7 both give 3. Blank or unreadable values give fallback.
func ToInt(v any, fallback int) int {
	for _, parse := range intParsers {
		if n, ok := parse(v); ok {
			return n
		}
	}
	return fallback
}

func parseNativeInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case float64:
		return floatToInt(n)
	case float32:
		return floatToInt(float64(n))
	}
	return 0, false
}

func parseNumericText(v any) (int, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, "\u00A0", " "))
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return floatToInt(f)
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}
