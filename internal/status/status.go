// Package status defines the domain types shared across the poll pipeline:
// severity levels, source kinds, the static provider/entity descriptors, and
// the per-cycle result records.
package status

import "time"

// Level is the normalized severity of a health signal, from most to least
// severe: major, degraded, unknown, info, ok. Unknown is reserved for
// fetch/parse failure; info marks sources with no machine-readable signal.
type Level string

const (
	LevelMajor    Level = "major"
	LevelDegraded Level = "degraded"
	LevelUnknown  Level = "unknown"
	LevelInfo     Level = "info"
	LevelOK       Level = "ok"
)

// levelRanks orders levels for display, 0 being the most severe.
var levelRanks = map[Level]int{
	LevelMajor:    0,
	LevelDegraded: 1,
	LevelUnknown:  2,
	LevelInfo:     3,
	LevelOK:       4,
}

// Rank returns the sort rank of the level; unrecognized values rank with
// unknown so a malformed level never floats above real trouble.
func (l Level) Rank() int {
	if r, ok := levelRanks[l]; ok {
		return r
	}
	return levelRanks[LevelUnknown]
}

// String returns the level's wire representation.
func (l Level) String() string {
	return string(l)
}

// ParseLevel reports whether raw names a known level.
func ParseLevel(raw string) (Level, bool) {
	switch Level(raw) {
	case LevelMajor, LevelDegraded, LevelUnknown, LevelInfo, LevelOK:
		return Level(raw), true
	default:
		return "", false
	}
}

// Levels lists every level in severity order.
func Levels() []Level {
	return []Level{LevelMajor, LevelDegraded, LevelUnknown, LevelInfo, LevelOK}
}

// SourceKind selects which parser interprets a provider's payload.
type SourceKind string

const (
	// KindStatusAPI is a statuspage.io-style JSON API with a top-level
	// indicator plus an incident list.
	KindStatusAPI SourceKind = "statusapi"
	// KindFeed is an RSS or Atom incident feed.
	KindFeed SourceKind = "feed"
	// KindIncidents is a bare JSON array of incident objects.
	KindIncidents SourceKind = "incidents"
	// KindVendorJSON is a vendor-specific status document that only carries
	// signal through an explicit indicator string.
	KindVendorJSON SourceKind = "vendorjson"
	// KindHTMLPage is a human-oriented status page scanned for known phrases.
	KindHTMLPage SourceKind = "htmlpage"
	// KindLinkOnly has no machine-readable source at all.
	KindLinkOnly SourceKind = "linkonly"
)

// ParseKind reports whether raw names a known source kind.
func ParseKind(raw string) (SourceKind, bool) {
	switch SourceKind(raw) {
	case KindStatusAPI, KindFeed, KindIncidents, KindVendorJSON, KindHTMLPage, KindLinkOnly:
		return SourceKind(raw), true
	default:
		return "", false
	}
}

// MaxDetails caps the detail lines carried by a single result.
const MaxDetails = 3

// TrimDetails bounds a detail list to MaxDetails entries.
func TrimDetails(details []string) []string {
	if len(details) > MaxDetails {
		return details[:MaxDetails]
	}
	return details
}

// ProviderDescriptor is one row of the static provider table. Loaded once at
// startup and never mutated.
type ProviderDescriptor struct {
	// Name is the display name, unique within a poll set.
	Name string `json:"name" yaml:"name"`
	// Kind selects the parser.
	Kind SourceKind `json:"kind" yaml:"kind"`
	// URL is the machine-readable source; empty for link-only kinds.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
	// StatusPageURL is the human-facing status page, for navigation.
	StatusPageURL string `json:"status_page_url,omitempty" yaml:"status_page_url,omitempty"`
	// Note is free text surfaced for link-only kinds.
	Note string `json:"note,omitempty" yaml:"note,omitempty"`
}

// SourceResult is the normalized outcome for one provider in one cycle.
// Results are rebuilt wholesale every cycle; nothing merges across cycles.
type SourceResult struct {
	Descriptor ProviderDescriptor `json:"descriptor"`
	Level      Level              `json:"level"`
	Details    []string           `json:"details"`
	FetchedAt  time.Time          `json:"fetched_at"`
}

// CrowdEntityDescriptor is one row of the static crowd allowlist.
type CrowdEntityDescriptor struct {
	Name string `json:"name" yaml:"name"`
	// Slug is the path segment identifying the entity on the upstream
	// report aggregator (lowercase, hyphen-separated).
	Slug string `json:"slug" yaml:"slug"`
	// Threshold is the report count at or above which an alert fires.
	Threshold int `json:"threshold" yaml:"threshold"`
	// Group partitions entities so the operator can check one batch at a
	// time, e.g. "payments" vs "telecoms".
	Group string `json:"group" yaml:"group"`
}

// CrowdCheckResult records the outcome of checking one entity, success or not.
type CrowdCheckResult struct {
	Descriptor CrowdEntityDescriptor `json:"descriptor"`
	OK         bool                  `json:"ok"`
	MirrorUsed string                `json:"mirror_used,omitempty"`
	FetchedAt  time.Time             `json:"fetched_at"`
	Err        string                `json:"error,omitempty"`
	// Headline is the representative feed entry for diagnostics: the entry
	// carrying the maximum report count, or the newest entry when no title
	// matched a count pattern.
	Headline string `json:"headline,omitempty"`
	// ReportCount is the maximum count seen, or -1 when no title carried one.
	ReportCount int `json:"report_count"`
}

// CrowdAlert is emitted when an entity's report count reaches its threshold.
type CrowdAlert struct {
	Name        string    `json:"name"`
	ReportCount int       `json:"report_count"`
	Threshold   int       `json:"threshold"`
	Headline    string    `json:"headline"`
	ObservedAt  time.Time `json:"observed_at"`
	SourceLink  string    `json:"source_link,omitempty"`
	FeedURL     string    `json:"feed_url,omitempty"`
}

// CrowdRun is one complete on-demand pass over a crowd group.
type CrowdRun struct {
	ID     string             `json:"id"`
	Group  string             `json:"group"`
	At     time.Time          `json:"at"`
	Alerts []CrowdAlert       `json:"alerts"`
	Checks []CrowdCheckResult `json:"checks"`
}
