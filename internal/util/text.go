package util

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var reSpaces = regexp.MustCompile(`\s+`)

// ToStr renders a cell value as trimmed text. Whole floats print without a
// fraction so numeric invoice ids survive the round trip.
func ToStr(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		if x {
			return "True"
		}
		return "False"
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	case []byte:
		return strings.TrimSpace(string(x))
	}
	return ""
}

func IsBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// CSVField keeps a value on one comma-delimited field.
func CSVField(input string) string {
	return strings.ReplaceAll(input, ",", " ")
}

// SplitFirstSpace splits on the first space; the right part is empty when
// there is none.
func SplitFirstSpace(input string) (string, string) {
	left, right, found := strings.Cut(input, " ")
	if !found {
		return input, ""
	}
	return left, right
}
