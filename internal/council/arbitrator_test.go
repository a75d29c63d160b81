package council

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tkaria/council/internal/llm"
)

func arbitratorProfile() Profile {
	return Profile{
		ID:          "arbitrator",
		Name:        "The Arbitrator",
		Role:        "final decision-maker",
		Personality: "impartial",
		Goals:       []string{"choose the strongest strategy"},
		Arbitrator:  true,
	}
}

func TestDecideParsesStructuredResponse(t *testing.T) {
	client := llm.NewMock().Enqueue(sampleDecisionText)
	arb := NewArbitrator(arbitratorProfile(), client)

	proposals := map[AgentID]string{
		"viral_hunter":   "idea a",
		"brand_guardian": "idea b",
	}
	critiques := map[AgentID]string{
		"viral_hunter":   "critique a",
		"brand_guardian": "critique b",
	}
	weights := map[AgentID]float64{"viral_hunter": 1.25, "brand_guardian": 0.8}

	decision := arb.Decide(context.Background(), CampaignContext{BrandName: "Acme"}, proposals, critiques, weights)

	if decision.Winner != "viral_hunter" {
		t.Fatalf("winner = %q, want viral_hunter", decision.Winner)
	}
	if decision.Confidence != "8" {
		t.Fatalf("confidence = %q, want 8", decision.Confidence)
	}
	if !strings.Contains(decision.Implementation, "Platform: Twitter") {
		t.Fatalf("implementation = %q, want platform line", decision.Implementation)
	}
	if decision.Raw != sampleDecisionText {
		t.Fatalf("raw response not preserved")
	}
}

func TestDecidePromptAnnotatesWeightsAndCritiques(t *testing.T) {
	client := llm.NewMock().Enqueue(sampleDecisionText)
	arb := NewArbitrator(arbitratorProfile(), client)

	proposals := map[AgentID]string{"viral_hunter": "idea a"}
	critiques := map[AgentID]string{"viral_hunter": "critique a"}
	weights := map[AgentID]float64{"viral_hunter": 1.25}

	arb.Decide(context.Background(), CampaignContext{}, proposals, critiques, weights)

	prompt := client.Calls()[0].User
	for _, want := range []string{
		"VIRAL_HUNTER (weight: 1.25):",
		"CRITIQUES:",
		"- viral_hunter: 1.25",
		"Provide your response in this EXACT format:",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("decide prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestDecideCollapsesOnGenerationFailure(t *testing.T) {
	client := llm.NewMock().SetError(errors.New("backend down"))
	arb := NewArbitrator(arbitratorProfile(), client)

	decision := arb.Decide(context.Background(), CampaignContext{}, map[AgentID]string{"a": "x"}, nil, nil)

	if decision.Winner != WinnerNone {
		t.Fatalf("winner = %q, want %q", decision.Winner, WinnerNone)
	}
	if decision.Confidence != "0" {
		t.Fatalf("confidence = %q, want 0", decision.Confidence)
	}
	if decision.Decision != "Unable to decide" {
		t.Fatalf("decision = %q, want Unable to decide", decision.Decision)
	}
	if !strings.Contains(decision.Reasoning, "backend down") {
		t.Fatalf("reasoning = %q, want underlying error text", decision.Reasoning)
	}
}

func TestDecideMissingFieldsFallBackToSentinels(t *testing.T) {
	client := llm.NewMock().Enqueue("The council should post something nice.")
	arb := NewArbitrator(arbitratorProfile(), client)

	decision := arb.Decide(context.Background(), CampaignContext{}, map[AgentID]string{"a": "x"}, nil, nil)

	if decision.Decision != valueNotSpecified {
		t.Fatalf("decision = %q, want %q", decision.Decision, valueNotSpecified)
	}
	if decision.Winner != WinnerUnknown {
		t.Fatalf("winner = %q, want %q", decision.Winner, WinnerUnknown)
	}
}

func TestResolveWinner(t *testing.T) {
	proposals := map[AgentID]string{
		"viral_hunter":   "a",
		"brand_guardian": "b",
	}

	cases := []struct {
		raw  string
		want AgentID
	}{
		{"viral_hunter", "viral_hunter"},
		{"  Viral_Hunter  ", "viral_hunter"},
		{"viral_hunter (the growth lead)", "viral_hunter"},
		{"none", WinnerNone},
		{"unknown", WinnerUnknown},
		{"someone_else", WinnerUnknown},
		{"", WinnerUnknown},
		{valueNotSpecified, WinnerUnknown},
	}

	for _, tc := range cases {
		if got := resolveWinner(tc.raw, proposals); got != tc.want {
			t.Fatalf("resolveWinner(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
