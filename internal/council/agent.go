package council

import (
	"context"
	"fmt"
	"strings"

	"github.com/tkaria/council/internal/llm"
)

const (
	proposalTemperature = 0.8
	critiqueTemperature = 0.7
	debateMaxTokens     = 800

	// Agents only ever see the five most relevant trends.
	maxTrendsInPrompt = 5
)

// Agent is one council member: a persona wrapped around a text-generation
// client, carrying a voting weight that the feedback rule adjusts after
// every iteration.
type Agent struct {
	profile Profile
	client  llm.Client

	weight  float64
	history []PerformanceRecord
}

// NewAgent constructs an agent from its profile. A zero voting weight in
// the profile means "use the default of 1.0".
func NewAgent(profile Profile, client llm.Client) *Agent {
	weight := profile.VotingWeight
	if weight == 0 {
		weight = 1.0
	}
	return &Agent{
		profile: profile,
		client:  client,
		weight:  weight,
	}
}

// ID returns the agent's stable identifier.
func (a *Agent) ID() AgentID { return a.profile.ID }

// Name returns the agent's display name.
func (a *Agent) Name() string { return a.profile.Name }

// Color returns the agent's display color, if configured.
func (a *Agent) Color() string { return a.profile.Color }

// Profile returns a copy of the agent's static persona.
func (a *Agent) Profile() Profile { return a.profile }

// Weight returns the current voting weight.
func (a *Agent) Weight() float64 { return a.weight }

// History returns a copy of the accumulated performance records, oldest
// first.
func (a *Agent) History() []PerformanceRecord {
	out := make([]PerformanceRecord, len(a.history))
	copy(out, a.history)
	return out
}

// Propose asks the agent for campaign post ideas grounded in the shared
// context. Generation failures are absorbed into a visibly-marked error
// string so one agent's failure can never stall the debate.
func (a *Agent) Propose(ctx context.Context, cctx CampaignContext) string {
	text, err := a.client.Complete(ctx, a.systemPrompt(), proposePrompt(cctx),
		llm.WithTemperature(proposalTemperature),
		llm.WithMaxTokens(debateMaxTokens),
	)
	if err != nil {
		return fmt.Sprintf("Error generating proposal: %v", err)
	}
	return text
}

// Critique asks the agent to attack the other members' proposals from its
// own perspective. The agent's own proposal is excluded from the prompt.
// Same local-failure contract as Propose.
func (a *Agent) Critique(ctx context.Context, cctx CampaignContext, proposals map[AgentID]string) string {
	text, err := a.client.Complete(ctx, a.systemPrompt(), a.critiquePrompt(cctx, proposals),
		llm.WithTemperature(critiqueTemperature),
		llm.WithMaxTokens(debateMaxTokens),
	)
	if err != nil {
		return fmt.Sprintf("Error generating critique: %v", err)
	}
	return text
}

// UpdateWeight applies the feedback rule for one performance score on a
// 0-10 scale and records the outcome:
//
//	score >= 7:  weight += rate * (score-7)/3
//	score <  5:  weight -= rate * (5-score)/5
//	otherwise:   unchanged
//
// The result is always clamped to [MinWeight, MaxWeight].
func (a *Agent) UpdateWeight(score, learningRate float64) {
	if score >= 7 {
		a.weight += learningRate * (score - 7) / 3
	} else if score < 5 {
		a.weight -= learningRate * (5 - score) / 5
	}

	if a.weight < MinWeight {
		a.weight = MinWeight
	}
	if a.weight > MaxWeight {
		a.weight = MaxWeight
	}

	a.history = append(a.history, PerformanceRecord{
		Score:  score,
		Weight: a.weight,
	})
}

func (a *Agent) systemPrompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a member of an AI Marketing Council.\n\n", a.profile.Name)
	fmt.Fprintf(&b, "ROLE: %s\n\n", a.profile.Role)
	fmt.Fprintf(&b, "PERSONALITY: %s\n\n", a.profile.Personality)
	b.WriteString("YOUR GOALS:\n")
	for _, goal := range a.profile.Goals {
		fmt.Fprintf(&b, "- %s\n", goal)
	}
	b.WriteString(`
INSTRUCTIONS:
- Advocate strongly for your perspective
- Provide specific, actionable recommendations
- Critique other agents' proposals when they conflict with your goals
- Be concise but thorough in your reasoning
- Always explain WHY you support or oppose an idea
- Stay in character at all times
`)
	return b.String()
}

func proposePrompt(cctx CampaignContext) string {
	var b strings.Builder
	b.WriteString("BRAND CONTEXT:\n")
	fmt.Fprintf(&b, "Brand: %s\n", orDefault(cctx.BrandName, "Unknown"))
	fmt.Fprintf(&b, "Industry: %s\n", orDefault(cctx.Industry, "Tech"))
	fmt.Fprintf(&b, "Target Audience: %s\n\n", orDefault(cctx.TargetAudience, "General"))
	b.WriteString("PRODUCT/CAMPAIGN:\n")
	fmt.Fprintf(&b, "%s\n\n", orDefault(cctx.ProductInfo, "No product info provided"))

	b.WriteString("TRENDING TOPICS:\n")
	trends := cctx.Trends
	if len(trends) > maxTrendsInPrompt {
		trends = trends[:maxTrendsInPrompt]
	}
	for _, trend := range trends {
		fmt.Fprintf(&b, "- %s\n", trend)
	}

	b.WriteString(`
TASK: Propose 2-3 specific social media post ideas for this campaign. For each idea:
1. Specify the platform (Twitter, Instagram, or LinkedIn)
2. Describe the content approach
3. Explain why it aligns with your goals
4. Rate its potential (1-10) from your perspective

Be specific and strategic.`)
	return b.String()
}

func (a *Agent) critiquePrompt(cctx CampaignContext, proposals map[AgentID]string) string {
	var sections []string
	for _, id := range sortedIDs(proposals) {
		if id == a.profile.ID {
			continue
		}
		sections = append(sections, fmt.Sprintf("--- %s PROPOSAL ---\n%s",
			strings.ToUpper(string(id)), proposals[id]))
	}

	var b strings.Builder
	b.WriteString("BRAND CONTEXT:\n")
	fmt.Fprintf(&b, "Brand: %s\n", orDefault(cctx.BrandName, "Unknown"))
	fmt.Fprintf(&b, "Product: %s\n\n", orDefault(cctx.ProductInfo, "N/A"))
	b.WriteString("OTHER AGENTS' PROPOSALS:\n")
	b.WriteString(strings.Join(sections, "\n\n"))
	fmt.Fprintf(&b, `

TASK: Critique these proposals from YOUR perspective (%s).

For each proposal:
1. Identify what conflicts with your goals
2. Point out risks or missed opportunities
3. Suggest improvements if applicable
4. Rate each proposal (1-10) from your perspective

Be direct and specific. This is a debate, not a collaboration.`, a.profile.Name)
	return b.String()
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
