package resultstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout_PathFor(t *testing.T) {
	l := NewLayout("out")
	// 20:00 UTC is already the next day in IST
	ts := time.Date(2025, 5, 14, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, filepath.Join("out", "process_sentiment_analysis_2025-05-15.csv"), l.PathFor(TagSentiment, ts))
	assert.Equal(t, filepath.Join("out", "chart_pattern_detect", "chart_pattern_2025-05-15.csv"), l.PathFor(TagChartPattern, ts))
}

func TestLayout_Latest(t *testing.T) {
	root := t.TempDir()
	l := NewLayout(root)

	_, _, ok, err := l.Latest(TagSentiment)
	require.NoError(t, err)
	assert.False(t, ok)

	for _, name := range []string{
		"process_sentiment_analysis_2025-05-13.csv",
		"process_sentiment_analysis_2025-05-15.csv",
		"process_sentiment_analysis_2025-05-14.csv",
		"process_sentiment_analysis_latest.csv",
		"screener_announcements_2025-06-01.csv",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("x"), 0o644))
	}

	path, day, ok, err := l.Latest(TagSentiment)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "process_sentiment_analysis_2025-05-15.csv"), path)
	assert.Equal(t, "2025-05-15", Day(day))

	_, _, ok, err = l.Latest(TagChartPattern)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLayout_LatestReadsLegacySentimentName(t *testing.T) {
	root := t.TempDir()
	l := NewLayout(root)

	for _, name := range []string{
		"process_sentiment_anaylsis_2025-05-14.csv",
		"process_sentiment_anaylsis_2025-05-16.csv",
		"process_sentiment_analysis_2025-05-15.csv",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("x"), 0o644))
	}

	path, day, ok, err := l.Latest(TagSentiment)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "process_sentiment_anaylsis_2025-05-16.csv"), path)
	assert.Equal(t, "2025-05-16", Day(day))

	// same day in both spellings: the current name is preferred
	require.NoError(t, os.WriteFile(filepath.Join(root, "process_sentiment_analysis_2025-05-16.csv"), []byte("x"), 0o644))
	path, _, ok, err = l.Latest(TagSentiment)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "process_sentiment_analysis_2025-05-16.csv"), path)

	// legacy names never leak into other tags
	_, _, ok, err = l.Latest(TagScreener)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKnownTag(t *testing.T) {
	assert.True(t, KnownTag(TagSignals))
	assert.False(t, KnownTag("../etc"))
}
