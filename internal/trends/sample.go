package trends

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SampleSource serves trends from a local YAML file, shuffled so repeated
// offline runs do not debate an identical list. When the file is missing
// a small built-in set keeps the pipeline alive.
type SampleSource struct {
	path string
	rng  *rand.Rand
}

// SampleOption customizes a SampleSource.
type SampleOption func(*SampleSource)

// WithSampleRand injects a deterministic shuffle source for tests.
func WithSampleRand(rng *rand.Rand) SampleOption {
	return func(s *SampleSource) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// NewSampleSource builds a sample source reading from path.
func NewSampleSource(path string, opts ...SampleOption) *SampleSource {
	s := &SampleSource{
		path: path,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name identifies this source in logs.
func (s *SampleSource) Name() string { return "sample" }

type sampleFile struct {
	SampleTrends []Trend `yaml:"sample_trends"`
}

// Fetch returns up to limit sample trends in shuffled order.
func (s *SampleSource) Fetch(ctx context.Context, limit int) ([]Trend, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loaded, err := s.load()
	if err != nil {
		return nil, err
	}

	shuffled := make([]Trend, len(loaded))
	copy(shuffled, loaded)
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if len(shuffled) > limit {
		shuffled = shuffled[:limit]
	}
	return shuffled, nil
}

func (s *SampleSource) load() ([]Trend, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return builtinTrends(), nil
		}
		return nil, fmt.Errorf("trends: read sample file %s: %w", s.path, err)
	}

	var parsed sampleFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("trends: parse sample file %s: %w", s.path, err)
	}
	if len(parsed.SampleTrends) == 0 {
		return builtinTrends(), nil
	}
	return parsed.SampleTrends, nil
}

func builtinTrends() []Trend {
	return []Trend{
		{Topic: "AI Innovation", Source: "fallback", Volume: "high", Relevance: 0.9},
		{Topic: "Tech Startups", Source: "fallback", Volume: "medium", Relevance: 0.8},
		{Topic: "Digital Marketing", Source: "fallback", Volume: "high", Relevance: 0.85},
		{Topic: "Productivity Tools", Source: "fallback", Volume: "medium", Relevance: 0.75},
		{Topic: "Remote Work", Source: "fallback", Volume: "high", Relevance: 0.8},
	}
}
