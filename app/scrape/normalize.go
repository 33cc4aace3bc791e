package scrape

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// normalizeText applies Unicode NFC and collapses runs of whitespace, so
// titles and descriptions scraped from different pages compare stably.
func normalizeText(s string) string {
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(s), " ")
}
