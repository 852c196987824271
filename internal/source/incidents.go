package source

import (
	"context"
	"strings"

	"github.com/outagewatch/outagewatch/internal/fetch"
	"github.com/outagewatch/outagewatch/internal/status"
)

// incidentEndFields are the termination markers recognized on an incident
// object. Presence of either key, with any value, marks the incident
// resolved; an incident carrying neither is active.
var incidentEndFields = []string{"end", "resolved"}

// incidentMajorKeywords escalate an active incident batch to major when they
// appear in an incident's severity or impact text. This vocabulary is
// deliberately separate from the feed classifier's; the upstream sources
// genuinely differ.
var incidentMajorKeywords = []string{"major", "critical", "outage", "unavailable"}

// IncidentsParser handles bare JSON arrays of incident objects, the shape
// cloud-provider incident feeds use.
type IncidentsParser struct {
	client *fetch.Client
}

// NewIncidentsParser builds an IncidentsParser.
func NewIncidentsParser(client *fetch.Client) *IncidentsParser {
	return &IncidentsParser{client: client}
}

// Kind implements Parser.
func (p *IncidentsParser) Kind() status.SourceKind {
	return status.KindIncidents
}

// Summarize fetches the incident array and reports on active incidents.
func (p *IncidentsParser) Summarize(ctx context.Context, prov status.ProviderDescriptor) (Summary, error) {
	var incidents []map[string]any
	fetchedAt, err := p.client.FetchJSON(ctx, prov.URL, &incidents)
	if err != nil {
		return Summary{}, err
	}
	level, details := summarizeIncidents(incidents)
	return Summary{Level: level, Details: details, FetchedAt: fetchedAt}, nil
}

// summarizeIncidents: no active incidents is ok; any active incident
// degrades, escalated to major by high-severity wording.
func summarizeIncidents(incidents []map[string]any) (status.Level, []string) {
	level := status.LevelOK
	details := make([]string, 0, status.MaxDetails)

	for _, inc := range incidents {
		if !incidentActive(inc) {
			continue
		}
		if level == status.LevelOK {
			level = status.LevelDegraded
		}
		if incidentSeverityMajor(inc) {
			level = status.LevelMajor
		}
		if len(details) < status.MaxDetails {
			details = append(details, incidentHeadline(inc))
		}
	}
	return level, details
}

func incidentActive(inc map[string]any) bool {
	for _, field := range incidentEndFields {
		if _, ok := inc[field]; ok {
			return false
		}
	}
	return true
}

func incidentSeverityMajor(inc map[string]any) bool {
	for _, field := range []string{"severity", "impact"} {
		text, ok := inc[field].(string)
		if !ok {
			continue
		}
		lower := strings.ToLower(text)
		for _, kw := range incidentMajorKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

func incidentHeadline(inc map[string]any) string {
	for _, field := range []string{"external_desc", "summary", "name", "title"} {
		if text, ok := inc[field].(string); ok && text != "" {
			return firstLine(text)
		}
	}
	return "active incident"
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
