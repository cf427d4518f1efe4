package model

import "unicode/utf16"

// CodeUnits returns the length of s in UTF-16 code units. Message length
// limits are expressed in code units so that they match what the messaging
// platform counts.
func CodeUnits(s string) int {
	n := 0
	for _, r := range s {
		if w := utf16.RuneLen(r); w > 0 {
			n += w
		} else {
			n++
		}
	}
	return n
}

// TruncateCodeUnits cuts s to at most max UTF-16 code units without
// splitting a rune.
func TruncateCodeUnits(s string, max int) string {
	if max <= 0 {
		return ""
	}
	n := 0
	for i, r := range s {
		w := utf16.RuneLen(r)
		if w < 0 {
			w = 1
		}
		if n+w > max {
			return s[:i]
		}
		n += w
	}
	return s
}
