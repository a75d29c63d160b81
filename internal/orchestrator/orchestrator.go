// Package orchestrator runs the campaign iteration pipeline: trends in,
// debate, arbitration, content out, simulated engagement, weight update.
package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tkaria/council/internal/content"
	"github.com/tkaria/council/internal/council"
	"github.com/tkaria/council/internal/engagement"
	"github.com/tkaria/council/internal/journal"
	"github.com/tkaria/council/internal/trends"
)

const defaultTrendLimit = 10

// TrendSource supplies deduplicated trend entries for an iteration.
type TrendSource interface {
	FetchAll(ctx context.Context, useAPIs bool, limit int) ([]trends.Trend, error)
}

// ContentGenerator produces the final post for an arbitrated decision.
type ContentGenerator interface {
	GenerateComplete(ctx context.Context, decision *council.Decision, campaign council.CampaignContext, platform content.Platform, imagePath string) (*content.Post, error)
}

// Logger is the minimal logging surface the orchestrator needs.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// WeightUpdate records one agent's weight move in a single iteration.
type WeightUpdate struct {
	OldWeight float64 `json:"old_weight"`
	NewWeight float64 `json:"new_weight"`
	Change    float64 `json:"change"`
	WasWinner bool    `json:"was_winner"`
}

// Iteration is the full record of one pipeline run.
type Iteration struct {
	ID            string                           `json:"id"`
	Timestamp     time.Time                        `json:"timestamp"`
	Context       council.CampaignContext          `json:"context"`
	Trends        []trends.Trend                   `json:"trends"`
	Proposals     map[council.AgentID]string       `json:"proposals"`
	Critiques     map[council.AgentID]string       `json:"critiques"`
	Decision      council.Decision                 `json:"decision"`
	Content       *content.Post                    `json:"content"`
	Engagement    engagement.Result                `json:"engagement"`
	WeightUpdates map[council.AgentID]WeightUpdate `json:"weight_updates"`
}

// RunOptions toggles the optional external stages of an iteration.
type RunOptions struct {
	UseAPITrends  bool
	GenerateImage bool
}

// Orchestrator owns the roster, the iteration history, and the
// collaborators each pipeline stage calls out to. History is only
// appended after a run completes every stage.
type Orchestrator struct {
	roster     *council.Roster
	trends     TrendSource
	content    ContentGenerator
	engagement *engagement.Simulator

	store      *Store
	journal    *journal.Journal
	logger     Logger
	now        func() time.Time
	newID      func() string
	trendLimit int
	imagesDir  string

	mu      sync.RWMutex
	history []*Iteration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStore persists each completed iteration to disk.
func WithStore(s *Store) Option {
	return func(o *Orchestrator) { o.store = s }
}

// WithJournal writes per-step progress lines to the session journal.
func WithJournal(j *journal.Journal) Option {
	return func(o *Orchestrator) { o.journal = j }
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithIDGenerator overrides iteration ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) { o.newID = fn }
}

// WithTrendLimit caps how many trends are fetched per iteration.
func WithTrendLimit(n int) Option {
	return func(o *Orchestrator) { o.trendLimit = n }
}

// WithImagesDir sets where generated post images are written.
func WithImagesDir(dir string) Option {
	return func(o *Orchestrator) { o.imagesDir = dir }
}

// New builds an Orchestrator over a loaded roster and its collaborators.
func New(roster *council.Roster, trendSource TrendSource, contentGen ContentGenerator, sim *engagement.Simulator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		roster:     roster,
		trends:     trendSource,
		content:    contentGen,
		engagement: sim,
		logger:     nopLogger{},
		now:        time.Now,
		newID:      uuid.NewString,
		trendLimit: defaultTrendLimit,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Roster exposes the loaded council for read-only consumers.
func (o *Orchestrator) Roster() *council.Roster { return o.roster }

// Weights returns the members' current voting weights. Agent weights
// mutate inside a run, so reads go through the orchestrator's lock; the
// TUI and the bridge must use this instead of touching agents directly.
func (o *Orchestrator) Weights() map[council.AgentID]float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.roster.Weights()
}

// RunCampaignIteration executes one strictly sequential pipeline run.
// Agent generation failures are absorbed into sentinel text upstream;
// trend and content collaborator failures abort the run, and a failed
// run leaves history untouched.
func (o *Orchestrator) RunCampaignIteration(ctx context.Context, campaign council.CampaignContext, opts RunOptions) (*Iteration, error) {
	started := o.now()
	iter := &Iteration{
		ID:            o.newID(),
		Timestamp:     started,
		Proposals:     make(map[council.AgentID]string),
		Critiques:     make(map[council.AgentID]string),
		WeightUpdates: make(map[council.AgentID]WeightUpdate),
	}
	o.stepf("iteration %s: fetching trends", iter.ID)

	fetched, err := o.trends.FetchAll(ctx, opts.UseAPITrends, o.trendLimit)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: fetch trends: %w", err)
	}
	campaign.Trends = trends.FormatForContext(fetched)
	iter.Trends = fetched
	iter.Context = campaign
	o.stepf("iteration %s: %d trends attached", iter.ID, len(fetched))

	for _, agent := range o.roster.Members {
		o.stepf("iteration %s: %s proposing", iter.ID, agent.Name())
		iter.Proposals[agent.ID()] = agent.Propose(ctx, campaign)
	}

	for _, agent := range o.roster.Members {
		o.stepf("iteration %s: %s critiquing", iter.ID, agent.Name())
		iter.Critiques[agent.ID()] = agent.Critique(ctx, campaign, iter.Proposals)
	}

	weights := o.Weights()
	iter.Decision = o.roster.Arbitrator.Decide(ctx, campaign, iter.Proposals, iter.Critiques, weights)
	o.stepf("iteration %s: arbitrator picked %s (confidence %s)", iter.ID, iter.Decision.Winner, iter.Decision.Confidence)

	platform := content.InferPlatform(iter.Decision.Implementation)
	var imagePath string
	if opts.GenerateImage {
		imagePath = filepath.Join(o.imagesDir, fmt.Sprintf("%s_post_%d.png", platform, started.Unix()))
	}
	post, err := o.content.GenerateComplete(ctx, &iter.Decision, campaign, platform, imagePath)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: generate content: %w", err)
	}
	iter.Content = post
	o.stepf("iteration %s: %s post drafted (%d chars)", iter.ID, post.Platform, post.CharCount)

	iter.Engagement = o.engagement.Simulate(string(post.Platform))
	o.stepf("iteration %s: engagement score %.1f", iter.ID, iter.Engagement.OverallScore)

	o.applyWeightUpdates(iter)

	if o.store != nil {
		path, err := o.store.Save(iter)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: persist iteration: %w", err)
		}
		o.stepf("iteration %s: saved to %s", iter.ID, path)
	}

	o.mu.Lock()
	o.history = append(o.history, iter)
	o.mu.Unlock()
	return iter, nil
}

// applyWeightUpdates rewards the declared winner on the full score and
// nudges everyone else on half of it, with the gentler learning rate.
// The write lock keeps concurrent Weights readers off the agents while
// they mutate.
func (o *Orchestrator) applyWeightUpdates(iter *Iteration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	score := iter.Engagement.OverallScore
	for _, agent := range o.roster.Members {
		old := agent.Weight()
		won := agent.ID() == iter.Decision.Winner
		if won {
			agent.UpdateWeight(score, council.WinnerLearningRate)
		} else {
			agent.UpdateWeight(score*council.LoserScoreFactor, council.LoserLearningRate)
		}
		iter.WeightUpdates[agent.ID()] = WeightUpdate{
			OldWeight: old,
			NewWeight: agent.Weight(),
			Change:    agent.Weight() - old,
			WasWinner: won,
		}
		o.stepf("iteration %s: %s weight %.2f -> %.2f", iter.ID, agent.ID(), old, agent.Weight())
	}
}

// Iterations returns the completed history, oldest first.
func (o *Orchestrator) Iterations() []*Iteration {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]*Iteration, len(o.history))
	copy(out, o.history)
	return out
}

// WeightHistory returns, per member, the post-update weight of every
// completed iteration in execution order.
func (o *Orchestrator) WeightHistory() map[council.AgentID][]float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make(map[council.AgentID][]float64, len(o.roster.Members))
	for _, agent := range o.roster.Members {
		series := make([]float64, 0, len(o.history))
		for _, iter := range o.history {
			if update, ok := iter.WeightUpdates[agent.ID()]; ok {
				series = append(series, update.NewWeight)
			}
		}
		out[agent.ID()] = series
	}
	return out
}

func (o *Orchestrator) stepf(format string, args ...any) {
	o.logger.Printf(format, args...)
	if o.journal != nil {
		o.journal.Info(format, args...)
	}
}
