package source

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mmcdole/gofeed"

	"github.com/outagewatch/outagewatch/internal/classify"
	"github.com/outagewatch/outagewatch/internal/fetch"
	"github.com/outagewatch/outagewatch/internal/status"
)

// feedEntryWindow is how many recent entries are inspected per cycle.
const feedEntryWindow = 5

// FeedParser handles RSS and Atom incident feeds. Entry titles are run
// through the shared classifier and the most severe classification within
// the recent window wins.
type FeedParser struct {
	client *fetch.Client
	window int
}

// NewFeedParser builds a FeedParser.
func NewFeedParser(client *fetch.Client) *FeedParser {
	return &FeedParser{client: client, window: feedEntryWindow}
}

// Kind implements Parser.
func (p *FeedParser) Kind() status.SourceKind {
	return status.KindFeed
}

// Summarize fetches and classifies the provider's feed.
func (p *FeedParser) Summarize(ctx context.Context, prov status.ProviderDescriptor) (Summary, error) {
	res, err := p.client.Fetch(ctx, prov.URL)
	if err != nil {
		return Summary{}, err
	}
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(res.Body))
	if err != nil {
		return Summary{}, &status.ParseError{URL: prov.URL, Err: err}
	}
	level, details := summarizeFeed(feed.Items, p.window)
	return Summary{Level: level, Details: details, FetchedAt: res.FetchedAt}, nil
}

// summarizeFeed classifies the most recent entries and keeps the worst
// result. An empty feed is ok: absence of data is not itself a signal.
func summarizeFeed(items []*gofeed.Item, window int) (status.Level, []string) {
	if len(items) > window {
		items = items[:window]
	}

	level := status.LevelOK
	details := make([]string, 0, status.MaxDetails)
	for _, item := range items {
		if item == nil {
			continue
		}
		entryLevel := classify.Classify(item.Title)
		if entryLevel.Rank() < level.Rank() {
			level = entryLevel
		}
		if len(details) < status.MaxDetails {
			details = append(details, formatFeedEntry(item))
		}
	}
	return level, details
}

func formatFeedEntry(item *gofeed.Item) string {
	title := item.Title
	if title == "" {
		title = "untitled entry"
	}
	if item.PublishedParsed != nil {
		return fmt.Sprintf("%s (%s)", title, item.PublishedParsed.UTC().Format("2006-01-02 15:04 MST"))
	}
	if item.Published != "" {
		return fmt.Sprintf("%s (%s)", title, item.Published)
	}
	return title
}
