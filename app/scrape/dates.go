package scrape

import (
	"strings"
	"time"
)

// Date formats observed on itch.io pages. Profile cells use the short and
// long month forms, game info tables use the day-first form inside an
// abbr title attribute.
var dateLayouts = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"02 January 2006 @ 15:04 MST",
	"02 January 2006 @ 15:04",
	"02 January 2006",
}

// parseDateText parses a publish date in any of the known page formats,
// tolerating a "Published" prefix. Returns nil when nothing matches.
func parseDateText(text string) *time.Time {
	text = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "Published"))
	if text == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, text); err == nil {
			return &parsed
		}
	}

	return nil
}
