package orchestrator

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tkaria/council/internal/config"
	"github.com/tkaria/council/internal/content"
	"github.com/tkaria/council/internal/council"
	"github.com/tkaria/council/internal/engagement"
	"github.com/tkaria/council/internal/llm"
	"github.com/tkaria/council/internal/trends"
)

type stubTrends struct {
	trends []trends.Trend
	err    error
}

func (s *stubTrends) FetchAll(ctx context.Context, useAPIs bool, limit int) ([]trends.Trend, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.trends, nil
}

func testProfiles() []council.Profile {
	return []council.Profile{
		{ID: "viral_hunter", Name: "Viral Hunter", Role: "Growth", Personality: "Bold", Goals: []string{"reach"}},
		{ID: "brand_guardian", Name: "Brand Guardian", Role: "Brand", Personality: "Careful", Goals: []string{"trust"}},
		{ID: "twitter_specialist", Name: "Twitter Specialist", Role: "Platform", Personality: "Fast", Goals: []string{"threads"}},
		{ID: "arbitrator", Name: "Arbitrator", Role: "Judge", Personality: "Fair", Goals: []string{"decide"}, Arbitrator: true},
	}
}

const decisionReply = `DECISION: Run the guardian's plan
WINNER: brand_guardian
CONFIDENCE: 8
REASONING: Safest bet.
IMPLEMENTATION: Platform: Twitter. One thread.`

// councilClient answers debate prompts with fixed strings and the
// arbitration prompt with a decision naming brand_guardian.
func councilClient() *llm.Mock {
	return llm.NewMock().Respond(func(system, user string) (string, error) {
		if strings.Contains(user, "TASK: As the Arbitrator") {
			return decisionReply, nil
		}
		return "fixed debate text", nil
	})
}

// exactScoreRanges collapses every sampling range to a point so the
// engagement score is exactly 9.0:
// 0.4*15 + 0.3*5 + 0.2*5 + 0.1*0.5*10.
func exactScoreRanges() config.EngagementConfig {
	return config.EngagementConfig{
		LikesMin: 15000, LikesMax: 15000,
		SharesMin: 500, SharesMax: 500,
		CommentsMin: 250, CommentsMax: 250,
		SentimentMin: 0.5, SentimentMax: 0.5,
	}
}

func sampleTrendList() []trends.Trend {
	return []trends.Trend{
		{Topic: "AI tooling", Source: "sample", Volume: "high", Relevance: 0.9},
		{Topic: "Remote work", Source: "sample", Volume: "medium", Relevance: 0.5},
	}
}

func testOrchestrator(t *testing.T, opts ...Option) *Orchestrator {
	t.Helper()
	roster, err := council.NewRoster(testProfiles(), councilClient())
	if err != nil {
		t.Fatalf("build roster: %v", err)
	}
	gen := content.NewGenerator(llm.NewMock().SetReply("Launch day. #AI"))
	sim := engagement.NewSimulator(exactScoreRanges())
	base := []Option{WithClock(func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	})}
	return New(roster, &stubTrends{trends: sampleTrendList()}, gen, sim, append(base, opts...)...)
}

func campaign() council.CampaignContext {
	return council.CampaignContext{
		BrandName:      "Acme",
		Industry:       "Robotics",
		TargetAudience: "Engineers",
		ProductInfo:    "Acme Copilot",
	}
}

func TestRunCampaignIteration(t *testing.T) {
	o := testOrchestrator(t)

	iter, err := o.RunCampaignIteration(context.Background(), campaign(), RunOptions{})
	if err != nil {
		t.Fatalf("RunCampaignIteration: %v", err)
	}

	if iter.ID == "" {
		t.Errorf("iteration ID not set")
	}
	if len(iter.Trends) != 2 {
		t.Errorf("trends = %d, want 2", len(iter.Trends))
	}
	if len(iter.Context.Trends) != 2 || !strings.Contains(iter.Context.Trends[0], "AI tooling") {
		t.Errorf("formatted trends not attached to context: %v", iter.Context.Trends)
	}
	if len(iter.Proposals) != 3 || len(iter.Critiques) != 3 {
		t.Errorf("proposals/critiques = %d/%d, want 3/3", len(iter.Proposals), len(iter.Critiques))
	}
	if _, ok := iter.Proposals["arbitrator"]; ok {
		t.Errorf("arbitrator must not propose")
	}
	if iter.Decision.Winner != council.AgentID("brand_guardian") {
		t.Errorf("winner = %q, want brand_guardian", iter.Decision.Winner)
	}
	if iter.Content == nil || iter.Content.Platform != content.PlatformTwitter {
		t.Errorf("content = %+v, want twitter post", iter.Content)
	}
	if iter.Engagement.OverallScore != 9.0 {
		t.Errorf("engagement score = %v, want 9.0", iter.Engagement.OverallScore)
	}

	// Winner boosted on the full score, the rest nudged down on half.
	winner := iter.WeightUpdates["brand_guardian"]
	if !winner.WasWinner {
		t.Errorf("brand_guardian not flagged as winner")
	}
	if want := 1.0 + 0.2*(9.0-7.0)/3.0; math.Abs(winner.NewWeight-want) > 1e-9 {
		t.Errorf("winner weight = %v, want %v", winner.NewWeight, want)
	}
	for _, id := range []council.AgentID{"viral_hunter", "twitter_specialist"} {
		update := iter.WeightUpdates[id]
		if update.WasWinner {
			t.Errorf("%s flagged as winner", id)
		}
		if math.Abs(update.NewWeight-0.99) > 1e-9 {
			t.Errorf("%s weight = %v, want 0.99", id, update.NewWeight)
		}
	}

	if got := len(o.Iterations()); got != 1 {
		t.Errorf("history length = %d, want 1", got)
	}
}

func TestHistoryGrowsPerRun(t *testing.T) {
	o := testOrchestrator(t)

	const runs = 3
	for i := 0; i < runs; i++ {
		if _, err := o.RunCampaignIteration(context.Background(), campaign(), RunOptions{}); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	if got := len(o.Iterations()); got != runs {
		t.Fatalf("history length = %d, want %d", got, runs)
	}
	history := o.WeightHistory()
	if len(history) != 3 {
		t.Fatalf("weight history agents = %d, want 3", len(history))
	}
	for id, series := range history {
		if len(series) != runs {
			t.Errorf("%s series length = %d, want %d", id, len(series), runs)
		}
	}
	// The repeat winner keeps climbing while the others keep slipping.
	guardian := history["brand_guardian"]
	if !(guardian[0] < guardian[1] && guardian[1] < guardian[2]) {
		t.Errorf("winner series not increasing: %v", guardian)
	}
	hunter := history["viral_hunter"]
	if !(hunter[0] > hunter[1] && hunter[1] > hunter[2]) {
		t.Errorf("loser series not decreasing: %v", hunter)
	}
}

func TestTrendFailureAbortsBeforeHistory(t *testing.T) {
	roster, err := council.NewRoster(testProfiles(), councilClient())
	if err != nil {
		t.Fatalf("build roster: %v", err)
	}
	gen := content.NewGenerator(llm.NewMock().SetReply("ok"))
	o := New(roster, &stubTrends{err: errors.New("reddit down")}, gen, engagement.NewSimulator(exactScoreRanges()))

	if _, err := o.RunCampaignIteration(context.Background(), campaign(), RunOptions{UseAPITrends: true}); err == nil {
		t.Fatalf("expected trend failure to propagate")
	}
	if got := len(o.Iterations()); got != 0 {
		t.Fatalf("history length = %d, want 0 after failed run", got)
	}
}

func TestContentFailureLeavesHistoryAndWeightsUntouched(t *testing.T) {
	roster, err := council.NewRoster(testProfiles(), councilClient())
	if err != nil {
		t.Fatalf("build roster: %v", err)
	}
	gen := content.NewGenerator(llm.NewMock().SetError(errors.New("model offline")))
	o := New(roster, &stubTrends{trends: sampleTrendList()}, gen, engagement.NewSimulator(exactScoreRanges()))

	if _, err := o.RunCampaignIteration(context.Background(), campaign(), RunOptions{}); err == nil {
		t.Fatalf("expected content failure to propagate")
	}
	if got := len(o.Iterations()); got != 0 {
		t.Fatalf("history length = %d, want 0", got)
	}
	for _, agent := range roster.Members {
		if agent.Weight() != 1.0 {
			t.Errorf("%s weight = %v, want untouched 1.0", agent.ID(), agent.Weight())
		}
	}
}

func TestAgentGenerationFailureDoesNotAbort(t *testing.T) {
	// The shared council client fails every call; agents absorb that
	// into sentinel text and the arbitrator collapses to "Unable to
	// decide", but the pipeline still completes.
	failing := llm.NewMock().SetError(errors.New("provider down"))
	roster, err := council.NewRoster(testProfiles(), failing)
	if err != nil {
		t.Fatalf("build roster: %v", err)
	}
	gen := content.NewGenerator(llm.NewMock().SetReply("ok"))
	o := New(roster, &stubTrends{trends: sampleTrendList()}, gen, engagement.NewSimulator(exactScoreRanges()))

	iter, err := o.RunCampaignIteration(context.Background(), campaign(), RunOptions{})
	if err != nil {
		t.Fatalf("RunCampaignIteration: %v", err)
	}
	if iter.Decision.Winner != council.WinnerNone {
		t.Errorf("winner = %q, want %q", iter.Decision.Winner, council.WinnerNone)
	}
	if !strings.Contains(iter.Proposals["viral_hunter"], "Error generating proposal") {
		t.Errorf("proposal sentinel missing: %q", iter.Proposals["viral_hunter"])
	}
	if got := len(o.Iterations()); got != 1 {
		t.Errorf("history length = %d, want 1", got)
	}
}

// Exercised under -race: the TUI renders weights on one goroutine while
// a run mutates them on another.
func TestWeightsReadableWhileIterationRuns(t *testing.T) {
	o := testOrchestrator(t)

	done := make(chan error, 1)
	go func() {
		for i := 0; i < 5; i++ {
			if _, err := o.RunCampaignIteration(context.Background(), campaign(), RunOptions{}); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	for {
		for id, weight := range o.Weights() {
			if weight < council.MinWeight || weight > council.MaxWeight {
				t.Fatalf("weight for %s = %v, out of bounds", id, weight)
			}
		}
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if got := len(o.Iterations()); got != 5 {
				t.Fatalf("history = %d, want 5", got)
			}
			return
		default:
		}
	}
}

func TestCompareIterations(t *testing.T) {
	o := testOrchestrator(t)
	for i := 0; i < 2; i++ {
		if _, err := o.RunCampaignIteration(context.Background(), campaign(), RunOptions{}); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	report, err := o.CompareIterations(0, 1)
	if err != nil {
		t.Fatalf("CompareIterations: %v", err)
	}
	if report.First.Winner != "brand_guardian" || report.Second.Winner != "brand_guardian" {
		t.Errorf("winners = %q/%q", report.First.Winner, report.Second.Winner)
	}
	if report.WinnerChanged {
		t.Errorf("winner_changed = true, want false")
	}
	if report.EngagementDiff != 0 {
		t.Errorf("engagement diff = %v, want 0 with pinned ranges", report.EngagementDiff)
	}
	if len(report.First.Weights) != 3 {
		t.Errorf("first weights = %d entries, want 3", len(report.First.Weights))
	}

	forward, err := o.CompareIterations(0, 1)
	if err != nil {
		t.Fatalf("CompareIterations(0,1): %v", err)
	}
	backward, err := o.CompareIterations(1, 0)
	if err != nil {
		t.Fatalf("CompareIterations(1,0): %v", err)
	}
	if forward.EngagementDiff != -backward.EngagementDiff {
		t.Errorf("diff not antisymmetric: %v vs %v", forward.EngagementDiff, backward.EngagementDiff)
	}
}

func TestCompareIterationsOutOfRange(t *testing.T) {
	o := testOrchestrator(t)
	if _, err := o.RunCampaignIteration(context.Background(), campaign(), RunOptions{}); err != nil {
		t.Fatalf("run: %v", err)
	}

	tests := []struct{ i, j int }{
		{0, 1},
		{5, 0},
		{-1, 0},
	}
	for _, tt := range tests {
		_, err := o.CompareIterations(tt.i, tt.j)
		var rangeErr *RangeError
		if !errors.As(err, &rangeErr) {
			t.Errorf("CompareIterations(%d, %d) err = %v, want RangeError", tt.i, tt.j, err)
			continue
		}
		if rangeErr.Length != 1 {
			t.Errorf("RangeError length = %d, want 1", rangeErr.Length)
		}
	}
}

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(filepath.Join(dir, "iterations"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	o := testOrchestrator(t, WithStore(store))
	iter, err := o.RunCampaignIteration(context.Background(), campaign(), RunOptions{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(store.Dir(), "iteration_20250601_120000_*.json"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("saved files = %v, want one timestamped record", matches)
	}

	loaded, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("loaded = %d, want 1", len(loaded))
	}
	if loaded[0].ID != iter.ID {
		t.Errorf("loaded ID = %q, want %q", loaded[0].ID, iter.ID)
	}
	if loaded[0].Decision.Winner != "brand_guardian" {
		t.Errorf("loaded winner = %q", loaded[0].Decision.Winner)
	}
	if loaded[0].Engagement.OverallScore != 9.0 {
		t.Errorf("loaded score = %v", loaded[0].Engagement.OverallScore)
	}
}

func TestStoreKeepsSameSecondIterations(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	// The pinned clock makes both runs share one timestamp, so only the
	// ID keeps their records apart.
	o := testOrchestrator(t, WithStore(store))
	for i := 0; i < 2; i++ {
		if _, err := o.RunCampaignIteration(context.Background(), campaign(), RunOptions{}); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	loaded, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded = %d, want 2", len(loaded))
	}
	if loaded[0].ID == loaded[1].ID {
		t.Errorf("both records carry ID %q", loaded[0].ID)
	}
}

func TestStoreLoadAllSkipsCorruptFiles(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := os.WriteFile(filepath.Join(store.Dir(), "iteration_20250101_000000.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	loaded, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("loaded = %d, want 0", len(loaded))
	}
}
