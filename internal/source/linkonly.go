package source

import (
	"context"

	"github.com/outagewatch/outagewatch/internal/clock"
	"github.com/outagewatch/outagewatch/internal/status"
)

const defaultLinkOnlyNote = "no machine-readable source; check the status page"

// LinkOnlyParser covers providers with no machine-readable source at all.
// It never touches the network and always reports info.
type LinkOnlyParser struct {
	clk clock.Clock
}

// NewLinkOnlyParser builds a LinkOnlyParser.
func NewLinkOnlyParser(clk clock.Clock) *LinkOnlyParser {
	return &LinkOnlyParser{clk: clk}
}

// Kind implements Parser.
func (p *LinkOnlyParser) Kind() status.SourceKind {
	return status.KindLinkOnly
}

// Summarize returns the static note for the provider.
func (p *LinkOnlyParser) Summarize(_ context.Context, prov status.ProviderDescriptor) (Summary, error) {
	note := prov.Note
	if note == "" {
		note = defaultLinkOnlyNote
	}
	return Summary{
		Level:     status.LevelInfo,
		Details:   []string{note},
		FetchedAt: p.clk.Now(),
	}, nil
}
