package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/model"
)

func TestLatest(t *testing.T) {
	leads := []model.Lead{{Name: "a"}, {Name: "b"}, {Name: "c"}}

	assert.Equal(t, leads, latest(leads, 0))
	assert.Equal(t, leads, latest(leads, 5))
	assert.Equal(t, []model.Lead{{Name: "b"}, {Name: "c"}}, latest(leads, 2))
}

func TestPrintLeads(t *testing.T) {
	var buf bytes.Buffer
	err := printLeads(&buf, []model.Lead{
		{
			Name:        "OKEY",
			Phone:       "+998901194777",
			Category:    "Снеки",
			Channel:     "Food\nB2B",
			MessageLink: "https://t.me/food_b2b/42",
			DateAdded:   time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local),
		},
		{Name: "Korzinka", Phone: "+998712000000", Category: "Напитки", MessageLink: model.LinkUnavailable},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "DATE"))
	assert.Contains(t, lines[1], "14.03.2025, 09:26:53")
	assert.Contains(t, lines[1], "Food B2B")
	assert.Contains(t, lines[2], "Korzinka")
	assert.Contains(t, lines[2], "N/A")
}

func TestOneLine(t *testing.T) {
	assert.Equal(t, "a b c", oneLine("  a\n b\t\tc "))
}
