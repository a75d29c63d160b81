// Package council implements the debating agents: persona-bound proposers
// and critics, the arbitrator that synthesizes their debate into a binding
// decision, and the per-agent voting-weight ledger.
package council

import "strings"

// AgentID is the stable identifier for a roster member. IDs form a closed
// set fixed at roster load time; every agent-keyed map in an iteration uses
// them as keys.
type AgentID string

// Sentinel winner values used when the arbitrator fails or names an agent
// that is not on the roster.
const (
	WinnerNone    AgentID = "none"
	WinnerUnknown AgentID = "unknown"
)

// Voting weights stay inside these bounds after every update.
const (
	MinWeight = 0.5
	MaxWeight = 2.0
)

// Learning rates applied by the orchestrator's feedback rule. The winner is
// reinforced harder than the rest of the council is nudged.
const (
	WinnerLearningRate = 0.2
	LoserLearningRate  = 0.1
	LoserScoreFactor   = 0.5
)

// IsSentinel reports whether the ID is one of the failure sentinels rather
// than a roster member.
func (id AgentID) IsSentinel() bool {
	return id == WinnerNone || id == WinnerUnknown
}

func normalizeID(raw string) AgentID {
	return AgentID(strings.ToLower(strings.TrimSpace(raw)))
}

// CampaignContext is the shared brief every agent sees for one iteration.
// It is assembled fresh per iteration and never mutated after the trend
// list is attached.
type CampaignContext struct {
	BrandName      string   `json:"brand_name"`
	Industry       string   `json:"industry"`
	TargetAudience string   `json:"target_audience"`
	ProductInfo    string   `json:"product_info"`
	Trends         []string `json:"trends,omitempty"`
}

// Profile is the static persona an agent is constructed from.
type Profile struct {
	ID          AgentID  `yaml:"id"`
	Name        string   `yaml:"name"`
	Role        string   `yaml:"role"`
	Personality string   `yaml:"personality"`
	Goals       []string `yaml:"goals"`
	// VotingWeight defaults to 1.0 when omitted.
	VotingWeight float64 `yaml:"voting_weight"`
	Color        string  `yaml:"color,omitempty"`
	Arbitrator   bool    `yaml:"arbitrator,omitempty"`
}

// PerformanceRecord captures one weight update: the score that drove it and
// the weight that resulted.
type PerformanceRecord struct {
	Score  float64 `json:"performance_score"`
	Weight float64 `json:"new_weight"`
}
