// Package engagement fabricates post-performance metrics. The numbers
// exist only to drive the council's weight feedback rule, not to model
// any real platform.
package engagement

import (
	"math"
	"math/rand"
	"time"

	"github.com/tkaria/council/internal/config"
)

// Result is the simulated outcome for one published post.
type Result struct {
	Likes     int     `json:"likes"`
	Shares    int     `json:"shares"`
	Comments  int     `json:"comments"`
	Sentiment float64 `json:"sentiment"`
	// OverallScore is nominally 0-10. Only the upper bound is capped;
	// oversized counter ranges can push the raw sum past 10 before the
	// cap and there is deliberately no lower clamp.
	OverallScore float64 `json:"overall_score"`
	Platform     string  `json:"platform"`
}

// Simulator draws engagement numbers from the configured uniform ranges.
type Simulator struct {
	ranges config.EngagementConfig
	rng    *rand.Rand
}

// Option customizes a Simulator during construction.
type Option func(*Simulator)

// WithRand injects a deterministic random source for tests.
func WithRand(rng *rand.Rand) Option {
	return func(s *Simulator) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// NewSimulator builds a simulator over the given ranges.
func NewSimulator(ranges config.EngagementConfig, opts ...Option) *Simulator {
	s := &Simulator{
		ranges: ranges,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Simulate draws one engagement outcome for a post on the given platform.
func (s *Simulator) Simulate(platform string) Result {
	likes := s.intBetween(s.ranges.LikesMin, s.ranges.LikesMax)
	shares := s.intBetween(s.ranges.SharesMin, s.ranges.SharesMax)
	comments := s.intBetween(s.ranges.CommentsMin, s.ranges.CommentsMax)
	sentiment := s.floatBetween(s.ranges.SentimentMin, s.ranges.SentimentMax)

	return Result{
		Likes:        likes,
		Shares:       shares,
		Comments:     comments,
		Sentiment:    sentiment,
		OverallScore: Score(likes, shares, comments, sentiment),
		Platform:     platform,
	}
}

// Score computes the weighted overall score, capped at 10:
//
//	0.4*(likes/1000) + 0.3*(shares/100) + 0.2*(comments/50) + 0.1*(sentiment*10)
func Score(likes, shares, comments int, sentiment float64) float64 {
	score := float64(likes)/1000*0.4 +
		float64(shares)/100*0.3 +
		float64(comments)/50*0.2 +
		sentiment*10*0.1
	return math.Min(10, score)
}

func (s *Simulator) intBetween(min, max int) int {
	if max <= min {
		return min
	}
	return min + s.rng.Intn(max-min+1)
}

func (s *Simulator) floatBetween(min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + s.rng.Float64()*(max-min)
}
