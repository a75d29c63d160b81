package council

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tkaria/council/internal/llm"
)

const (
	decisionTemperature = 0.6
	decisionMaxTokens   = 1000
)

// Arbitrator is the one council member empowered to end the debate. It
// shares the Agent persona machinery but never proposes or critiques.
type Arbitrator struct {
	Agent
}

// NewArbitrator constructs the arbitrator from its profile.
func NewArbitrator(profile Profile, client llm.Client) *Arbitrator {
	return &Arbitrator{Agent: *NewAgent(profile, client)}
}

// Decision is the arbitrator's structured verdict for one iteration.
type Decision struct {
	// Decision describes the chosen action, possibly a hybrid of proposals.
	Decision string `json:"decision"`
	// Winner is a participating agent ID, or a sentinel on failure.
	Winner AgentID `json:"winner"`
	// WinnerText preserves the raw WINNER field before roster resolution.
	WinnerText string `json:"winner_text,omitempty"`
	// Confidence is the self-declared 1-10 confidence, kept as text since
	// the model is free to ignore the format.
	Confidence     string `json:"confidence"`
	Reasoning      string `json:"reasoning"`
	Implementation string `json:"implementation"`
	// Raw is the full unparsed response.
	Raw string `json:"full_response"`
}

// Decide synthesizes the full debate into a Decision. The transcript
// annotates each proposal with its author's current voting weight, then
// lists every critique, and the response is parsed field by field. A
// generation failure collapses into a fixed error decision (winner "none",
// confidence "0") so downstream stages never branch on a missing decision.
func (ar *Arbitrator) Decide(ctx context.Context, cctx CampaignContext, proposals, critiques map[AgentID]string, weights map[AgentID]float64) Decision {
	prompt := decidePrompt(cctx, proposals, critiques, weights)

	text, err := ar.client.Complete(ctx, ar.systemPrompt(), prompt,
		llm.WithTemperature(decisionTemperature),
		llm.WithMaxTokens(decisionMaxTokens),
	)
	if err != nil {
		return Decision{
			Decision:       "Unable to decide",
			Winner:         WinnerNone,
			Confidence:     "0",
			Reasoning:      err.Error(),
			Implementation: "N/A",
			Raw:            fmt.Sprintf("Error: %v", err),
		}
	}

	winnerText := extractField(text, fieldWinner)
	return Decision{
		Decision:       extractField(text, fieldDecision),
		Winner:         resolveWinner(winnerText, proposals),
		WinnerText:     winnerText,
		Confidence:     extractField(text, fieldConfidence),
		Reasoning:      extractField(text, fieldReasoning),
		Implementation: extractField(text, fieldImplementation),
		Raw:            text,
	}
}

// resolveWinner maps the free-text WINNER field onto the closed set of
// participating agent IDs. An exact (case-insensitive) match wins; failing
// that, a participating ID mentioned anywhere in the text is accepted.
// Anything else becomes the "unknown" sentinel so a typo can never mint a
// new agent.
func resolveWinner(raw string, proposals map[AgentID]string) AgentID {
	candidate := normalizeID(raw)
	if candidate == "" {
		return WinnerUnknown
	}
	if candidate.IsSentinel() {
		return candidate
	}
	if _, ok := proposals[candidate]; ok {
		return candidate
	}
	for _, id := range sortedIDs(proposals) {
		if strings.Contains(string(candidate), string(id)) {
			return id
		}
	}
	return WinnerUnknown
}

func decidePrompt(cctx CampaignContext, proposals, critiques map[AgentID]string, weights map[AgentID]float64) string {
	var b strings.Builder

	b.WriteString("BRAND CONTEXT:\n")
	fmt.Fprintf(&b, "Brand: %s\n", orDefault(cctx.BrandName, "Unknown"))
	fmt.Fprintf(&b, "Product: %s\n\n", orDefault(cctx.ProductInfo, "N/A"))

	b.WriteString("FULL DEBATE:\nPROPOSALS:\n")
	for _, id := range sortedIDs(proposals) {
		fmt.Fprintf(&b, "\n%s (weight: %.2f):\n%s\n",
			strings.ToUpper(string(id)), weights[id], proposals[id])
	}

	b.WriteString("\n\nCRITIQUES:\n")
	for _, id := range sortedIDs(critiques) {
		fmt.Fprintf(&b, "\n%s:\n%s\n", strings.ToUpper(string(id)), critiques[id])
	}

	b.WriteString("\nAGENT VOTING WEIGHTS (based on past performance):\n")
	for _, id := range sortedWeightIDs(weights) {
		fmt.Fprintf(&b, "- %s: %.2f\n", id, weights[id])
	}

	b.WriteString(`
TASK: As the Arbitrator, make the final decision.

Provide your response in this EXACT format:

DECISION: [Choose the best approach - can be one agent's proposal or a hybrid]

WINNER: [Agent ID of primary winner - e.g., viral_hunter, brand_guardian, etc.]

CONFIDENCE: [Your confidence in this decision, 1-10]

REASONING: [Detailed explanation of why this is the best choice, considering:
- Strategic alignment with brand goals
- Risk vs reward trade-off
- Agent voting weights
- Platform optimization
- Expected performance]

IMPLEMENTATION: [Specific details of the final post strategy:
- Platform: [Twitter/Instagram/LinkedIn]
- Content approach: [Brief description]
- Key message: [Main point to communicate]
- Tone: [Professional/Casual/Bold/etc.]
]
`)
	return b.String()
}

func sortedIDs(m map[AgentID]string) []AgentID {
	ids := make([]AgentID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedWeightIDs(m map[AgentID]float64) []AgentID {
	ids := make([]AgentID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
