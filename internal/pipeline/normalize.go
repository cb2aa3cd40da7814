package pipeline

import (
	"regexp"

	"yusaek/internal/util"
)

const CodePrefix = "YUSAS"

var (
	reLongCode  = regexp.MustCompile(`YUSAS(\d{5})`)
	reShortCode = regexp.MustCompile(`S(\d{5})`)
)

// NormalizeCode extracts the canonical product code from a scanned or
// exported value. "" means no code was recognized.
func NormalizeCode(raw any) string {
	s := util.ToStr(raw)
	if s == "" {
		return ""
	}
	if m := reLongCode.FindStringSubmatch(s); m != nil {
		return CodePrefix + m[1]
	}
	if m := reShortCode.FindStringSubmatch(s); m != nil {
		return CodePrefix + m[1]
	}
	return ""
}

// ScanCode is NormalizeCode with the raw text as fallback.
func ScanCode(raw string) string {
	if code := NormalizeCode(raw); code != "" {
		return code
	}
	return raw
}
