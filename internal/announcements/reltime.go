package announcements

import (
	"regexp"
	"strconv"
	"time"
)

var (
	agoRe      = regexp.MustCompile(`\b\d+\s?[smhd] ago\b`)
	agoPartsRe = regexp.MustCompile(`(\d+)\s?([smhd])`)
)

// DatetimeLayout is how announcement timestamps are written to the stores.
const DatetimeLayout = "2006-01-02 15:04:05"

// FindAgo returns the "7m ago" fragment of line, or "0m ago" when there is none.
func FindAgo(line string) string {
	if m := agoRe.FindString(line); m != "" {
		return m
	}
	return "0m ago"
}

// AnnouncementTime subtracts a relative age like "7m ago" or "2 h ago" from scrapedAt.
// Units are s, m, h and d; anything unparsable is a zero offset.
func AnnouncementTime(scrapedAt time.Time, ago string) time.Time {
	m := agoPartsRe.FindStringSubmatch(ago)
	if m == nil {
		return scrapedAt
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return scrapedAt
	}

	var unit time.Duration
	switch m[2] {
	case "s":
		unit = time.Second
	case "m":
		unit = time.Minute
	case "h":
		unit = time.Hour
	case "d":
		unit = 24 * time.Hour
	}
	return scrapedAt.Add(-time.Duration(n) * unit)
}
