package resultstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// IST is the exchange timezone; a store's day is its IST calendar date.
var IST = time.FixedZone("IST", 19800)

const (
	TagSentiment    = "process_sentiment_analysis"
	TagScreener     = "screener_announcements"
	TagChartPattern = "chart_pattern"
	TagSignals      = "smart_signals"

	chartPatternDir = "chart_pattern_detect"
	dayLayout       = "2006-01-02"
	storeExt        = ".csv"
)

// legacyTags are earlier spellings of a tag still found in output directories.
// Latest reads them; new stores are always written under the current tag.
var legacyTags = map[string]string{
	TagSentiment: "process_sentiment_anaylsis",
}

var knownTags = map[string]bool{
	TagSentiment:    true,
	TagScreener:     true,
	TagChartPattern: true,
	TagSignals:      true,
}

// KnownTag reports whether tag names one of the day stores.
func KnownTag(tag string) bool {
	return knownTags[tag]
}

// Day formats t as the IST date stamp used in store file names.
func Day(t time.Time) string {
	return t.In(IST).Format(dayLayout)
}

// ParseDay parses a YYYY-MM-DD stamp as an IST date.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(dayLayout, s, IST)
}

// Layout maps (tag, day) to store files under a root output directory.
type Layout struct {
	Root string
}

func NewLayout(root string) Layout {
	return Layout{Root: root}
}

func (l Layout) Dir(tag string) string {
	if tag == TagChartPattern {
		return filepath.Join(l.Root, chartPatternDir)
	}
	return l.Root
}

// PathFor returns <root>/<tag>_<YYYY-MM-DD>.csv for the IST day containing t.
func (l Layout) PathFor(tag string, t time.Time) string {
	return filepath.Join(l.Dir(tag), fmt.Sprintf("%s_%s%s", tag, Day(t), storeExt))
}

// Latest returns the most recent store for tag by its date stamp. ok is false when none exist.
func (l Layout) Latest(tag string) (path string, day time.Time, ok bool, err error) {
	entries, err := os.ReadDir(l.Dir(tag))
	if err != nil {
		if os.IsNotExist(err) {
			return "", time.Time{}, false, nil
		}
		return "", time.Time{}, false, err
	}

	best, bestName := "", ""
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		stamp, legacy, match := storeStamp(tag, e.Name())
		if !match {
			continue
		}
		// the current spelling wins over a legacy file of the same day
		if stamp > best || (stamp == best && !legacy) {
			best, bestName = stamp, e.Name()
		}
	}
	if best == "" {
		return "", time.Time{}, false, nil
	}

	day, err = ParseDay(best)
	if err != nil {
		return "", time.Time{}, false, err
	}
	return filepath.Join(l.Dir(tag), bestName), day, true, nil
}

// storeStamp matches name against tag and then its legacy spelling, if any.
func storeStamp(tag, name string) (stamp string, legacy, ok bool) {
	if stamp, ok = dayStamp(tag, name); ok {
		return stamp, false, true
	}
	if old, has := legacyTags[tag]; has {
		if stamp, ok = dayStamp(old, name); ok {
			return stamp, true, true
		}
	}
	return "", false, false
}

// dayStamp extracts the date from "<tag>_<YYYY-MM-DD>.csv". Names of other tags sharing a
// prefix (screener_announcements vs screener_bse_announcements) never match.
func dayStamp(tag, name string) (string, bool) {
	prefix := tag + "_"
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, storeExt) {
		return "", false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, prefix), storeExt)
	if _, err := time.Parse(dayLayout, stamp); err != nil {
		return "", false
	}
	return stamp, true
}
