package announcements

import (
	"testing"
	"time"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases and squeezes", "Board  Meeting\n\nOUTCOME", "board meeting outcome"},
		{"strips urls and emails", "See https://bse.in/x.pdf or mail cs@acme.com now", "see or mail now"},
		{"strips dates and ordinals", "Held on 19th May, 12-05-2024 approved", "held on may approved"},
		{"keeps percent and dots", "Profit up 25% (YoY), Rs 0.50/share!", "profit up 25% yoy rs 0.50share"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExcerpt(t *testing.T) {
	if got := Excerpt("héllo world", 5); got != "héllo" {
		t.Errorf("Excerpt = %q", got)
	}
	if got := Excerpt("short", 100); got != "short" {
		t.Errorf("Excerpt = %q", got)
	}
	if got := Excerpt("unbounded", 0); got != "unbounded" {
		t.Errorf("Excerpt = %q", got)
	}
}

func TestAnnouncementTime(t *testing.T) {
	scraped := time.Date(2025, 5, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  string
		want time.Time
	}{
		{"7m ago", scraped.Add(-7 * time.Minute)},
		{"30s ago", scraped.Add(-30 * time.Second)},
		{"2 h ago", scraped.Add(-2 * time.Hour)},
		{"3d ago", scraped.Add(-72 * time.Hour)},
		{"just now", scraped},
		{"", scraped},
	}
	for _, tt := range tests {
		if got := AnnouncementTime(scraped, tt.ago); !got.Equal(tt.want) {
			t.Errorf("AnnouncementTime(%q) = %v, want %v", tt.ago, got, tt.want)
		}
	}
}

func TestFindAgo(t *testing.T) {
	if got := FindAgo("Outcome of Board Meeting 12m ago"); got != "12m ago" {
		t.Errorf("FindAgo = %q", got)
	}
	if got := FindAgo("Outcome of Board Meeting"); got != "0m ago" {
		t.Errorf("FindAgo default = %q", got)
	}
}

func TestSplitBSESubject(t *testing.T) {
	company, headline := splitBSESubject("ACME INDUSTRIES LTD - 500001 - Financial Results for Q4")
	if company != "ACME INDUSTRIES LTD" {
		t.Errorf("company = %q", company)
	}
	if headline != "Financial Results for Q4" {
		t.Errorf("headline = %q", headline)
	}

	company, headline = splitBSESubject("Some notice")
	if company != "Unknown" || headline != "Some notice" {
		t.Errorf("got %q / %q", company, headline)
	}
}
