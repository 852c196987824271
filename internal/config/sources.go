package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/outagewatch/outagewatch/internal/status"
)

// SourceSet holds the static provider and crowd entity tables. The tables
// are loaded once at startup and never mutated.
type SourceSet struct {
	Providers []status.ProviderDescriptor    `yaml:"providers"`
	Crowd     []status.CrowdEntityDescriptor `yaml:"crowd"`
}

// LoadSources reads the source tables from a YAML file, or returns the
// built-in tables when path is empty.
func LoadSources(path string) (SourceSet, error) {
	if path == "" {
		set := DefaultSources()
		return set, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return SourceSet{}, fmt.Errorf("read sources: %w", err)
	}
	var set SourceSet
	if err := yaml.Unmarshal(raw, &set); err != nil {
		return SourceSet{}, fmt.Errorf("parse sources: %w", err)
	}
	if err := set.Validate(); err != nil {
		return SourceSet{}, err
	}
	return set, nil
}

// Validate checks every row of both tables.
func (s SourceSet) Validate() error {
	seen := make(map[string]struct{}, len(s.Providers))
	for i, p := range s.Providers {
		if p.Name == "" {
			return fmt.Errorf("providers[%d]: name required", i)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("providers[%d]: duplicate name %q", i, p.Name)
		}
		seen[p.Name] = struct{}{}
		if _, ok := status.ParseKind(string(p.Kind)); !ok {
			return fmt.Errorf("providers[%d] (%s): unknown kind %q", i, p.Name, p.Kind)
		}
		if p.Kind != status.KindLinkOnly && p.URL == "" {
			return fmt.Errorf("providers[%d] (%s): url required for kind %q", i, p.Name, p.Kind)
		}
	}
	for i, e := range s.Crowd {
		if e.Name == "" || e.Slug == "" {
			return fmt.Errorf("crowd[%d]: name and slug required", i)
		}
		if e.Threshold <= 0 {
			return fmt.Errorf("crowd[%d] (%s): threshold must be > 0", i, e.Name)
		}
		if e.Group == "" {
			return fmt.Errorf("crowd[%d] (%s): group required", i, e.Name)
		}
	}
	return nil
}

// Groups returns the distinct crowd groups in first-seen order.
func (s SourceSet) Groups() []string {
	seen := make(map[string]struct{})
	var groups []string
	for _, e := range s.Crowd {
		if _, ok := seen[e.Group]; ok {
			continue
		}
		seen[e.Group] = struct{}{}
		groups = append(groups, e.Group)
	}
	return groups
}

// CrowdGroup returns the entities belonging to one group.
func (s SourceSet) CrowdGroup(group string) []status.CrowdEntityDescriptor {
	var out []status.CrowdEntityDescriptor
	for _, e := range s.Crowd {
		if e.Group == group {
			out = append(out, e)
		}
	}
	return out
}

// DefaultSources is the built-in monitoring table.
func DefaultSources() SourceSet {
	return SourceSet{
		Providers: []status.ProviderDescriptor{
			{
				Name:          "GitHub",
				Kind:          status.KindStatusAPI,
				URL:           "https://www.githubstatus.com/api/v2/summary.json",
				StatusPageURL: "https://www.githubstatus.com",
			},
			{
				Name:          "Cloudflare",
				Kind:          status.KindStatusAPI,
				URL:           "https://www.cloudflarestatus.com/api/v2/summary.json",
				StatusPageURL: "https://www.cloudflarestatus.com",
			},
			{
				Name:          "Fastly",
				Kind:          status.KindStatusAPI,
				URL:           "https://status.fastly.com/api/v2/summary.json",
				StatusPageURL: "https://status.fastly.com",
			},
			{
				Name:          "Square",
				Kind:          status.KindStatusAPI,
				URL:           "https://www.issquareup.com/api/v2/summary.json",
				StatusPageURL: "https://www.issquareup.com",
			},
			{
				Name:          "Google Cloud",
				Kind:          status.KindIncidents,
				URL:           "https://status.cloud.google.com/incidents.json",
				StatusPageURL: "https://status.cloud.google.com",
			},
			{
				Name:          "Microsoft Azure",
				Kind:          status.KindFeed,
				URL:           "https://azurestatuscdn.azureedge.net/en-us/status/feed/",
				StatusPageURL: "https://azure.status.microsoft",
			},
			{
				Name:          "Stripe",
				Kind:          status.KindVendorJSON,
				URL:           "https://status.stripe.com/current",
				StatusPageURL: "https://status.stripe.com",
			},
			{
				Name:          "PayPal",
				Kind:          status.KindVendorJSON,
				URL:           "https://www.paypal-status.com/api/v1/status",
				StatusPageURL: "https://www.paypal-status.com",
			},
			{
				Name:          "AWS",
				Kind:          status.KindHTMLPage,
				URL:           "https://health.aws.amazon.com/health/status",
				StatusPageURL: "https://health.aws.amazon.com/health/status",
			},
			{
				Name:          "AT&T",
				Kind:          status.KindLinkOnly,
				StatusPageURL: "https://www.att.com/outages/",
				Note:          "carrier publishes no machine-readable feed; check the outage page",
			},
			{
				Name:          "Verizon",
				Kind:          status.KindLinkOnly,
				StatusPageURL: "https://www.verizon.com/support/check-network-status/",
				Note:          "carrier publishes no machine-readable feed; check the outage page",
			},
			{
				Name:          "T-Mobile",
				Kind:          status.KindLinkOnly,
				StatusPageURL: "https://www.t-mobile.com/support/coverage",
				Note:          "carrier publishes no machine-readable feed; check the outage page",
			},
		},
		Crowd: []status.CrowdEntityDescriptor{
			{Name: "American Express", Slug: "american-express", Threshold: 30, Group: "payments"},
			{Name: "Visa", Slug: "visa", Threshold: 30, Group: "payments"},
			{Name: "Mastercard", Slug: "mastercard", Threshold: 30, Group: "payments"},
			{Name: "PayPal", Slug: "paypal", Threshold: 30, Group: "payments"},
			{Name: "Stripe", Slug: "stripe", Threshold: 25, Group: "payments"},
			{Name: "Square", Slug: "square", Threshold: 25, Group: "payments"},
			{Name: "AT&T", Slug: "att", Threshold: 30, Group: "telecoms"},
			{Name: "Verizon", Slug: "verizon", Threshold: 30, Group: "telecoms"},
			{Name: "T-Mobile", Slug: "t-mobile", Threshold: 30, Group: "telecoms"},
		},
	}
}
