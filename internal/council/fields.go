package council

import "strings"

// The arbitrator is asked for a response with exactly these labeled fields.
// Parsing is best-effort by contract: a line that does not start with
// "LABEL:" simply never populates that field.
const (
	fieldDecision       = "DECISION"
	fieldWinner         = "WINNER"
	fieldConfidence     = "CONFIDENCE"
	fieldReasoning      = "REASONING"
	fieldImplementation = "IMPLEMENTATION"
)

var fieldLabels = []string{
	fieldDecision,
	fieldWinner,
	fieldConfidence,
	fieldReasoning,
	fieldImplementation,
}

// Fallback values for fields that never appear or cannot be read.
const (
	valueNotSpecified = "Not specified"
	valueParseError   = "Parse error"
)

// multilineFields absorb every following line until another recognized
// label starts a line.
var multilineFields = map[string]bool{
	fieldReasoning:      true,
	fieldImplementation: true,
}

// extractField scans text line by line for "name:" at the start of a line
// and returns the field's value, applying the multi-line absorption rule
// for REASONING and IMPLEMENTATION. Missing fields yield "Not specified".
func extractField(text, name string) (value string) {
	// The parser must never take down decision construction; any slip
	// degrades to the per-field sentinel instead.
	defer func() {
		if r := recover(); r != nil {
			value = valueParseError
		}
	}()

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, name+":") {
			continue
		}
		content := strings.TrimSpace(strings.SplitN(trimmed, ":", 2)[1])

		if multilineFields[name] {
			for j := i + 1; j < len(lines); j++ {
				if startsWithFieldLabel(lines[j]) {
					break
				}
				content += "\n" + lines[j]
			}
		}

		return strings.TrimSpace(content)
	}

	return valueNotSpecified
}

func startsWithFieldLabel(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, label := range fieldLabels {
		if strings.HasPrefix(trimmed, label+":") {
			return true
		}
	}
	return false
}
