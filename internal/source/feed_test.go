package source

import (
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/require"

	"github.com/outagewatch/outagewatch/internal/status"
)

func feedItems(titles ...string) []*gofeed.Item {
	items := make([]*gofeed.Item, 0, len(titles))
	for _, title := range titles {
		items = append(items, &gofeed.Item{Title: title})
	}
	return items
}

func TestSummarizeFeed_WorstEntryWins(t *testing.T) {
	t.Parallel()

	items := feedItems(
		"Scheduled maintenance complete",
		"Investigating elevated error rates",
		"Major outage affecting API requests",
	)
	level, details := summarizeFeed(items, feedEntryWindow)
	require.Equal(t, status.LevelMajor, level)
	require.Len(t, details, 3)
}

func TestSummarizeFeed_ResolvedEntriesAreOK(t *testing.T) {
	t.Parallel()

	items := feedItems(
		"Resolved: elevated error rates",
		"All services operating normally",
	)
	level, _ := summarizeFeed(items, feedEntryWindow)
	require.Equal(t, status.LevelOK, level)
}

func TestSummarizeFeed_EmptyFeedIsOK(t *testing.T) {
	t.Parallel()

	level, details := summarizeFeed(nil, feedEntryWindow)
	require.Equal(t, status.LevelOK, level)
	require.Empty(t, details)
}

func TestSummarizeFeed_OnlyRecentWindowCounts(t *testing.T) {
	t.Parallel()

	// An old outage entry past the window must not color the current level.
	items := feedItems(
		"Operating normally",
		"Operating normally",
		"Operating normally",
		"Operating normally",
		"Operating normally",
		"Major outage affecting checkout",
	)
	level, _ := summarizeFeed(items, feedEntryWindow)
	require.Equal(t, status.LevelOK, level)
}

func TestSummarizeFeed_DetailsCapped(t *testing.T) {
	t.Parallel()

	items := feedItems("a", "b", "c", "d", "e")
	_, details := summarizeFeed(items, feedEntryWindow)
	require.Len(t, details, status.MaxDetails)
}

func TestSummarizeFeed_SkipsNilItems(t *testing.T) {
	t.Parallel()

	items := []*gofeed.Item{nil, {Title: "Investigating connectivity issues"}}
	level, details := summarizeFeed(items, feedEntryWindow)
	require.Equal(t, status.LevelDegraded, level)
	require.Len(t, details, 1)
}

func TestFormatFeedEntry_PreferredTimestamp(t *testing.T) {
	t.Parallel()

	published := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	item := &gofeed.Item{Title: "Incident update", PublishedParsed: &published}
	require.Equal(t, "Incident update (2026-03-14 09:30 UTC)", formatFeedEntry(item))

	require.Equal(t, "Incident update (yesterday)", formatFeedEntry(&gofeed.Item{
		Title:     "Incident update",
		Published: "yesterday",
	}))

	require.Equal(t, "untitled entry", formatFeedEntry(&gofeed.Item{}))
}
