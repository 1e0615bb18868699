package ocr

import "strings"

// snippet shortens s for logging.
func snippet(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}

// normalizeOCRText collapses all whitespace runs to single spaces.
func normalizeOCRText(t string) string {
	return strings.Join(strings.Fields(t), " ")
}
