package util

import (
	"strings"
	"time"
)

type timeParser func(s string) (time.Time, bool)

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Tried in order after native time values.
var timeParsers = []timeParser{
	layoutsParser(isoLayouts...),
	layoutsParser("2006-01-02 15:04:05"),
}

// ParseTime reads a timestamp cell. ok is false for empty or unreadable
// values; callers pick their own default.
func ParseTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return x, true
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return *x, true
	}

	s := ToStr(v)
	if s == "" {
		return time.Time{}, false
	}
	for _, parse := range timeParsers {
		if t, ok := parse(s); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func layoutsParser(layouts ...string) timeParser {
	return func(s string) (time.Time, bool) {
		s = strings.TrimSpace(s)
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}
}
