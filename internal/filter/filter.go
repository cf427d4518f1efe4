// Package filter decides which raw messages are worth sending to the oracle.
package filter

import (
	"regexp"
	"strings"

	"github.com/sells-group/leadscout/internal/model"
)

// Reason explains why a message was rejected. The empty Reason means the
// message should be classified.
type Reason string

const (
	ReasonNone     Reason = ""
	ReasonEmpty    Reason = "empty"
	ReasonTooShort Reason = "too_short"
	ReasonCommand  Reason = "command"
	ReasonBareURL  Reason = "bare_url"
)

// bareURL matches a message consisting of a single link and nothing else.
var bareURL = regexp.MustCompile(`^https?://\S*$`)

// ShouldClassify reports whether text should be sent to the oracle.
func ShouldClassify(text string, minLength int) bool {
	return Check(text, minLength) == ReasonNone
}

// Check returns the rejection reason for text, or ReasonNone. Length and
// command prefixes are judged on the text as received; only the empty and
// bare-link checks ignore surrounding whitespace.
func Check(text string, minLength int) Reason {
	trimmed := strings.TrimSpace(text)
	switch {
	case trimmed == "":
		return ReasonEmpty
	case model.CodeUnits(text) < minLength:
		return ReasonTooShort
	case strings.HasPrefix(text, "/"), strings.HasPrefix(text, "!"):
		return ReasonCommand
	case bareURL.MatchString(trimmed):
		return ReasonBareURL
	}
	return ReasonNone
}
