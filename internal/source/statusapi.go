package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/outagewatch/outagewatch/internal/fetch"
	"github.com/outagewatch/outagewatch/internal/status"
)

// statusAPIPayload is the statuspage.io summary shape. Only the fields the
// decision rules need are decoded; everything else is ignored.
type statusAPIPayload struct {
	Status struct {
		Indicator string `json:"indicator"`
	} `json:"status"`
	Incidents []statusAPIIncident `json:"incidents"`
}

type statusAPIIncident struct {
	Name      string `json:"name"`
	Impact    string `json:"impact"`
	UpdatedAt string `json:"updated_at"`
}

// StatusAPIParser handles JSON status APIs with a top-level indicator and an
// incident list.
type StatusAPIParser struct {
	client *fetch.Client
}

// NewStatusAPIParser builds a StatusAPIParser.
func NewStatusAPIParser(client *fetch.Client) *StatusAPIParser {
	return &StatusAPIParser{client: client}
}

// Kind implements Parser.
func (p *StatusAPIParser) Kind() status.SourceKind {
	return status.KindStatusAPI
}

// Summarize fetches and normalizes the provider's summary document.
func (p *StatusAPIParser) Summarize(ctx context.Context, prov status.ProviderDescriptor) (Summary, error) {
	var payload statusAPIPayload
	fetchedAt, err := p.client.FetchJSON(ctx, prov.URL, &payload)
	if err != nil {
		return Summary{}, err
	}
	level, details := summarizeStatusAPI(payload)
	return Summary{Level: level, Details: details, FetchedAt: fetchedAt}, nil
}

// summarizeStatusAPI applies the decision rules: a major/critical indicator
// or incident impact wins, a "minor" indicator or any open incident degrades,
// otherwise the provider is healthy.
func summarizeStatusAPI(payload statusAPIPayload) (status.Level, []string) {
	indicator := strings.ToLower(payload.Status.Indicator)

	level := status.LevelOK
	switch {
	case indicator == "major" || indicator == "critical" || anyMajorImpact(payload.Incidents):
		level = status.LevelMajor
	case indicator == "minor" || len(payload.Incidents) > 0:
		level = status.LevelDegraded
	}

	details := make([]string, 0, status.MaxDetails)
	for _, inc := range payload.Incidents {
		if len(details) == status.MaxDetails {
			break
		}
		details = append(details, formatIncident(inc))
	}
	return level, details
}

func anyMajorImpact(incidents []statusAPIIncident) bool {
	for _, inc := range incidents {
		impact := strings.ToLower(inc.Impact)
		if impact == "major" || impact == "critical" {
			return true
		}
	}
	return false
}

func formatIncident(inc statusAPIIncident) string {
	name := inc.Name
	if name == "" {
		name = "unnamed incident"
	}
	impact := inc.Impact
	if impact == "" {
		impact = "unspecified"
	}
	if inc.UpdatedAt == "" {
		return fmt.Sprintf("%s — %s", name, impact)
	}
	return fmt.Sprintf("%s — %s — %s", name, impact, inc.UpdatedAt)
}
