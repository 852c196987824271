// Package source implements the per-kind parsers that normalize upstream
// payloads into severity levels, plus the registry that dispatches on a
// provider's kind.
package source

import (
	"context"
	"time"

	"github.com/outagewatch/outagewatch/internal/clock"
	"github.com/outagewatch/outagewatch/internal/fetch"
	"github.com/outagewatch/outagewatch/internal/status"
)

// Summary is a parser's normalized view of one provider: exactly one level,
// at most status.MaxDetails short detail lines, and the fetch timestamp.
type Summary struct {
	Level     status.Level
	Details   []string
	FetchedAt time.Time
}

// Parser maps one source kind's payload onto the common level contract.
// Implementations must tolerate structurally unexpected input by degrading
// to unknown/info instead of faulting; only fetch and decode failures are
// returned as errors, and the scheduler converts those to unknown.
type Parser interface {
	Kind() status.SourceKind
	Summarize(ctx context.Context, p status.ProviderDescriptor) (Summary, error)
}

// Registry dispatches providers to parsers by kind.
type Registry struct {
	parsers map[status.SourceKind]Parser
}

// NewRegistry builds a registry with every built-in parser wired to the
// shared fetch client.
func NewRegistry(client *fetch.Client, clk clock.Clock) *Registry {
	r := &Registry{parsers: make(map[status.SourceKind]Parser)}
	r.Register(NewStatusAPIParser(client))
	r.Register(NewFeedParser(client))
	r.Register(NewIncidentsParser(client))
	r.Register(NewVendorJSONParser(client))
	r.Register(NewHTMLPageParser(client))
	r.Register(NewLinkOnlyParser(clk))
	return r
}

// Register adds or replaces the parser for its kind.
func (r *Registry) Register(p Parser) {
	r.parsers[p.Kind()] = p
}

// Lookup returns the parser for kind, failing loudly on an unrecognized tag.
func (r *Registry) Lookup(kind status.SourceKind) (Parser, error) {
	p, ok := r.parsers[kind]
	if !ok {
		return nil, &status.UnsupportedKindError{Kind: kind}
	}
	return p, nil
}
