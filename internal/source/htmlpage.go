package source

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/outagewatch/outagewatch/internal/fetch"
	"github.com/outagewatch/outagewatch/internal/status"
)

// htmlScanLimit bounds how much of the page text is searched. Status pages
// often keep a "past incidents" history further down; matching there would
// resurrect resolved trouble.
const htmlScanLimit = 4000

// Phrase tables for human-oriented status pages. This vocabulary is
// intentionally independent of the feed classifier's: on these pages
// "partial outage" is an explicit major banner, not a degraded hint.
var (
	htmlOKPhrases = []string{
		"all systems operational",
		"no known issues",
		"operating normally",
		"all services available",
	}

	htmlMajorPhrases = []string{
		"major outage",
		"partial outage",
		"service disruption",
		"system outage",
	}

	htmlDegradedPhrases = []string{
		"degraded performance",
		"partially degraded",
		"investigating",
		"identified",
		"monitoring",
		"maintenance in progress",
	}
)

// HTMLPageParser strips markup from a status page and searches a bounded
// leading slice for known phrases. Missing or ambiguous phrasing yields
// info, never a fabricated level.
type HTMLPageParser struct {
	client    *fetch.Client
	scanLimit int
}

// NewHTMLPageParser builds an HTMLPageParser.
func NewHTMLPageParser(client *fetch.Client) *HTMLPageParser {
	return &HTMLPageParser{client: client, scanLimit: htmlScanLimit}
}

// Kind implements Parser.
func (p *HTMLPageParser) Kind() status.SourceKind {
	return status.KindHTMLPage
}

// Summarize fetches the page and scans its leading text.
func (p *HTMLPageParser) Summarize(ctx context.Context, prov status.ProviderDescriptor) (Summary, error) {
	res, err := p.client.Fetch(ctx, prov.URL)
	if err != nil {
		return Summary{}, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if err != nil {
		return Summary{}, &status.ParseError{URL: prov.URL, Err: err}
	}
	level, details := summarizeHTMLText(pageText(doc), p.scanLimit)
	return Summary{Level: level, Details: details, FetchedAt: res.FetchedAt}, nil
}

func pageText(doc *goquery.Document) string {
	doc.Find("script, style, noscript").Remove()
	text := doc.Find("body").Text()
	if strings.TrimSpace(text) == "" {
		text = doc.Text()
	}
	return strings.Join(strings.Fields(text), " ")
}

func summarizeHTMLText(text string, scanLimit int) (status.Level, []string) {
	lower := strings.ToLower(text)
	if runes := []rune(lower); len(runes) > scanLimit {
		lower = string(runes[:scanLimit])
	}

	if phrase, ok := firstPhrase(lower, htmlMajorPhrases); ok {
		return status.LevelMajor, []string{"page reports: " + phrase}
	}
	if phrase, ok := firstPhrase(lower, htmlDegradedPhrases); ok {
		return status.LevelDegraded, []string{"page reports: " + phrase}
	}
	if phrase, ok := firstPhrase(lower, htmlOKPhrases); ok {
		return status.LevelOK, []string{"page reports: " + phrase}
	}
	return status.LevelInfo, []string{"page format unrecognized; check the status page directly"}
}

func firstPhrase(lower string, phrases []string) (string, bool) {
	for _, phrase := range phrases {
		if strings.Contains(lower, phrase) {
			return phrase, true
		}
	}
	return "", false
}
