package filter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldClassify(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		min    int
		want   bool
		reason Reason
	}{
		{"empty", "", 1, false, ReasonEmpty},
		{"whitespace only", " \n\t ", 1, false, ReasonEmpty},
		{"too short", "OKEY snacks", 20, false, ReasonTooShort},
		{"exactly min length", strings.Repeat("a", 20), 20, true, ReasonNone},
		{"slash command", "/start please send the catalogue", 5, false, ReasonCommand},
		{"bang command", "!ban this user immediately please", 5, false, ReasonCommand},
		{"bare https url", "https://example.com/catalogue/snacks", 5, false, ReasonBareURL},
		{"bare http url", "http://x.com", 5, false, ReasonBareURL},
		{"url with text", "https://x.com more text", 5, true, ReasonNone},
		{"padded short text", "abc" + strings.Repeat(" ", 20), 20, true, ReasonNone},
		{"indented command", "  /start please send the catalogue", 5, true, ReasonNone},
		{"padded bare url", "  https://x.com/catalogue \n", 5, false, ReasonBareURL},
		{"lead", "OKEY - corn snacks. Contact: +998901194777", 20, true, ReasonNone},
		{"cyrillic lead", "OKEY - кукурузные снеки. Контакт: +998901194777", 20, true, ReasonNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldClassify(tt.text, tt.min))
			assert.Equal(t, tt.reason, Check(tt.text, tt.min))
		})
	}
}

func TestShouldClassify_ShorterThanMinAlwaysRejected(t *testing.T) {
	for n := 0; n < 30; n++ {
		text := strings.Repeat("x", n)
		assert.False(t, ShouldClassify(text, n+1), "length %d", n)
	}
}

func TestShouldClassify_CountsCodeUnits(t *testing.T) {
	// 10 Cyrillic letters are 20 bytes but only 10 code units.
	text := strings.Repeat("я", 10)
	assert.False(t, ShouldClassify(text, 11))
	assert.True(t, ShouldClassify(text, 10))
}
