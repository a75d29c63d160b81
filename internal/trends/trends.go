// Package trends supplies the topic intelligence the council debates over.
// Sources are consulted in order; when every live source comes back empty
// the bundled sample set keeps an iteration running offline.
package trends

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Trend is one topic candidate with provenance and a rough volume tier.
type Trend struct {
	Topic     string  `json:"topic" yaml:"topic"`
	Source    string  `json:"source" yaml:"source"`
	Volume    string  `json:"volume" yaml:"volume"`
	Relevance float64 `json:"relevance" yaml:"relevance"`
	URL       string  `json:"url,omitempty" yaml:"url,omitempty"`
}

// Source fetches up to limit trend candidates from one backend.
type Source interface {
	Name() string
	Fetch(ctx context.Context, limit int) ([]Trend, error)
}

// Logger matches logging.Logger's Printf signature.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Fetcher aggregates live sources with a sample fallback.
type Fetcher struct {
	sources []Source
	sample  *SampleSource
	logger  Logger
}

// FetcherOption customizes a Fetcher during construction.
type FetcherOption func(*Fetcher)

// WithLogger routes source failures to the given logger.
func WithLogger(l Logger) FetcherOption {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFetcher builds a fetcher over the given live sources. The sample
// source is always present as the offline fallback.
func NewFetcher(sample *SampleSource, sources []Source, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		sources: sources,
		sample:  sample,
		logger:  nopLogger{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchAll collects trends from every live source (when useAPIs is set),
// falling back to the sample set when nothing comes back. Results are
// deduplicated by normalized topic text and truncated to limit.
func (f *Fetcher) FetchAll(ctx context.Context, useAPIs bool, limit int) ([]Trend, error) {
	if limit < 1 {
		return nil, fmt.Errorf("trends: limit must be >= 1, got %d", limit)
	}

	var all []Trend
	if useAPIs {
		for _, source := range f.sources {
			fetched, err := source.Fetch(ctx, limit)
			if err != nil {
				// One dead source must not sink the iteration; the
				// sample set covers a full outage below.
				f.logger.Printf("trends: %s fetch failed: %v", source.Name(), err)
				continue
			}
			all = append(all, fetched...)
		}
	}

	if len(all) == 0 {
		sampled, err := f.sample.Fetch(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("trends: sample fallback: %w", err)
		}
		all = sampled
	}

	return Dedupe(all, limit), nil
}

// Dedupe removes duplicate topics (case-insensitive, whitespace-trimmed),
// keeping first occurrence order, and truncates to limit.
func Dedupe(all []Trend, limit int) []Trend {
	seen := make(map[string]bool, len(all))
	unique := make([]Trend, 0, len(all))
	for _, trend := range all {
		key := strings.ToLower(strings.TrimSpace(trend.Topic))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, trend)
	}
	if len(unique) > limit {
		unique = unique[:limit]
	}
	return unique
}

// FormatForContext renders trends as the one-line strings agents see:
// "topic (Source: s, Volume: v)".
func FormatForContext(all []Trend) []string {
	formatted := make([]string, 0, len(all))
	for _, trend := range all {
		source := trend.Source
		if source == "" {
			source = "unknown"
		}
		volume := trend.Volume
		if volume == "" {
			volume = "medium"
		}
		formatted = append(formatted, fmt.Sprintf("%s (Source: %s, Volume: %s)", trend.Topic, source, volume))
	}
	return formatted
}

// sortByRelevance orders trends best-first, stably.
func sortByRelevance(all []Trend) {
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Relevance > all[j].Relevance
	})
}
