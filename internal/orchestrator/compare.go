package orchestrator

import (
	"fmt"

	"github.com/tkaria/council/internal/council"
)

// RangeError reports a comparison index outside the completed history.
// Callers branch on it rather than treating it as fatal.
type RangeError struct {
	Index  int
	Length int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("orchestrator: iteration %d out of range, history has %d", e.Index, e.Length)
}

// IterationSummary is one side of a comparison.
type IterationSummary struct {
	Index      int                         `json:"index"`
	Winner     council.AgentID             `json:"winner"`
	Engagement float64                     `json:"engagement"`
	Weights    map[council.AgentID]float64 `json:"weights"`
}

// ComparisonReport contrasts two completed iterations.
type ComparisonReport struct {
	First          IterationSummary `json:"iteration_1"`
	Second         IterationSummary `json:"iteration_2"`
	WinnerChanged  bool             `json:"winner_changed"`
	EngagementDiff float64          `json:"engagement_diff"`
}

// CompareIterations contrasts history entries i and j by zero-based
// index. The engagement diff is second minus first; indices are never
// clamped or wrapped.
func (o *Orchestrator) CompareIterations(i, j int) (*ComparisonReport, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return compareHistory(o.history, i, j)
}

// Analytics answers comparison queries over saved iterations, so the
// CLI can contrast runs from earlier processes.
type Analytics struct {
	history []*Iteration
}

// NewAnalytics wraps an already-loaded iteration slice.
func NewAnalytics(history []*Iteration) *Analytics {
	return &Analytics{history: history}
}

// CompareIterations mirrors the orchestrator's comparison over the
// loaded history.
func (a *Analytics) CompareIterations(i, j int) (*ComparisonReport, error) {
	return compareHistory(a.history, i, j)
}

func compareHistory(history []*Iteration, i, j int) (*ComparisonReport, error) {
	length := len(history)
	if i < 0 || i >= length {
		return nil, &RangeError{Index: i, Length: length}
	}
	if j < 0 || j >= length {
		return nil, &RangeError{Index: j, Length: length}
	}

	first := summarize(i, history[i])
	second := summarize(j, history[j])
	return &ComparisonReport{
		First:          first,
		Second:         second,
		WinnerChanged:  first.Winner != second.Winner,
		EngagementDiff: second.Engagement - first.Engagement,
	}, nil
}

func summarize(index int, iter *Iteration) IterationSummary {
	weights := make(map[council.AgentID]float64, len(iter.WeightUpdates))
	for id, update := range iter.WeightUpdates {
		weights[id] = update.NewWeight
	}
	return IterationSummary{
		Index:      index,
		Winner:     iter.Decision.Winner,
		Engagement: iter.Engagement.OverallScore,
		Weights:    weights,
	}
}
