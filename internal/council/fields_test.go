package council

import (
	"strings"
	"testing"
)

const sampleDecisionText = `Some preamble the model added anyway.

DECISION: Go with the thread-first launch angle

WINNER: viral_hunter

CONFIDENCE: 8

REASONING: The thread format fits the audience.
It also rides the current trend window.
- risk is acceptable

IMPLEMENTATION: Platform: Twitter
Content approach: three-part thread
Tone: Bold`

func TestExtractFieldSingleLine(t *testing.T) {
	if got := extractField(sampleDecisionText, fieldWinner); got != "viral_hunter" {
		t.Fatalf("WINNER = %q, want viral_hunter", got)
	}
	if got := extractField(sampleDecisionText, fieldConfidence); got != "8" {
		t.Fatalf("CONFIDENCE = %q, want 8", got)
	}
}

func TestExtractFieldMultilineAbsorbsUntilNextLabel(t *testing.T) {
	reasoning := extractField(sampleDecisionText, fieldReasoning)
	for _, want := range []string{"thread format fits", "trend window", "- risk is acceptable"} {
		if !strings.Contains(reasoning, want) {
			t.Fatalf("REASONING missing %q:\n%s", want, reasoning)
		}
	}
	if strings.Contains(reasoning, "IMPLEMENTATION") {
		t.Fatalf("REASONING absorbed the next field:\n%s", reasoning)
	}

	impl := extractField(sampleDecisionText, fieldImplementation)
	if !strings.Contains(impl, "three-part thread") || !strings.Contains(impl, "Tone: Bold") {
		t.Fatalf("IMPLEMENTATION = %q, want full multi-line value", impl)
	}
}

func TestExtractFieldMissingLabelYieldsSentinel(t *testing.T) {
	if got := extractField("no labels here at all", fieldDecision); got != valueNotSpecified {
		t.Fatalf("missing field = %q, want %q", got, valueNotSpecified)
	}
}

func TestExtractFieldIgnoresIndentedAndInlineMentions(t *testing.T) {
	text := "The WINNER: should not match mid-sentence\n  WINNER: padded\nnothing else"
	// Leading whitespace is trimmed before the prefix check, so the padded
	// line is a legitimate label; the mid-sentence mention is not.
	if got := extractField(text, fieldWinner); got != "padded" {
		t.Fatalf("WINNER = %q, want padded", got)
	}
}

func TestExtractFieldEmptyValue(t *testing.T) {
	if got := extractField("DECISION:\nWINNER: a", fieldDecision); got != "" {
		t.Fatalf("empty DECISION = %q, want empty string", got)
	}
}

