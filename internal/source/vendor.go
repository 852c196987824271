package source

import (
	"context"
	"strings"

	"github.com/outagewatch/outagewatch/internal/fetch"
	"github.com/outagewatch/outagewatch/internal/status"
)

// indicatorFields are the keys searched for an explicit vendor indicator, in
// order. The "status" key may hold either the indicator string itself or a
// nested object carrying one.
var indicatorFields = []string{"indicator", "status", "state"}

// VendorJSONParser handles payment-processor status documents. Only an
// explicit indicator from a known vocabulary escalates beyond ok, so
// unrelated fields never raise a false alarm.
type VendorJSONParser struct {
	client *fetch.Client
}

// NewVendorJSONParser builds a VendorJSONParser.
func NewVendorJSONParser(client *fetch.Client) *VendorJSONParser {
	return &VendorJSONParser{client: client}
}

// Kind implements Parser.
func (p *VendorJSONParser) Kind() status.SourceKind {
	return status.KindVendorJSON
}

// Summarize fetches the vendor document and maps its indicator, if any.
func (p *VendorJSONParser) Summarize(ctx context.Context, prov status.ProviderDescriptor) (Summary, error) {
	var payload map[string]any
	fetchedAt, err := p.client.FetchJSON(ctx, prov.URL, &payload)
	if err != nil {
		return Summary{}, err
	}
	level, details := summarizeVendorJSON(payload)
	return Summary{Level: level, Details: details, FetchedAt: fetchedAt}, nil
}

func summarizeVendorJSON(payload map[string]any) (status.Level, []string) {
	indicator, ok := findIndicator(payload)
	if !ok {
		return status.LevelOK, nil
	}

	var level status.Level
	switch indicator {
	case "major", "critical":
		level = status.LevelMajor
	case "minor", "degraded":
		level = status.LevelDegraded
	default:
		// Unrecognized vocabulary is treated as healthy, never a false alarm.
		return status.LevelOK, nil
	}

	details := []string{"indicator: " + indicator}
	if msg := findMessage(payload); msg != "" {
		details = append(details, firstLine(msg))
	}
	return level, status.TrimDetails(details)
}

func findIndicator(payload map[string]any) (string, bool) {
	for _, field := range indicatorFields {
		switch v := payload[field].(type) {
		case string:
			return strings.ToLower(strings.TrimSpace(v)), true
		case map[string]any:
			for _, inner := range indicatorFields {
				if s, ok := v[inner].(string); ok {
					return strings.ToLower(strings.TrimSpace(s)), true
				}
			}
			if s, ok := v["description"].(string); ok {
				return strings.ToLower(strings.TrimSpace(s)), true
			}
		}
	}
	return "", false
}

func findMessage(payload map[string]any) string {
	for _, field := range []string{"message", "description", "largestatus"} {
		if s, ok := payload[field].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
