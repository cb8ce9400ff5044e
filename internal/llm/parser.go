package llm

import (
	"regexp"
	"strconv"
	"strings"
)

// Fallback justifications used when a response does not follow the requested format.
const (
	MissingJustification  = "Justificativa não fornecida."
	UnparsedJustification = "Justificativa não identificada."
	justificationMarker   = "Justificativa:"
	constructMarker       = "Constructo:"
)

var (
	similarityPattern    = regexp.MustCompile(`Similaridade:\s*(\d+(?:\.\d+)?)%`)
	justificationPattern = regexp.MustCompile(`(?s)Justificativa:\s*(.*)`)
)

// ParseLabelResponse splits a "Constructo: X | Justificativa: Y" reply. A reply
// without the justification marker becomes the label as a whole, paired with
// MissingJustification. Parsing never fails.
func ParseLabelResponse(response string) (label, justification string) {
	if !strings.Contains(response, justificationMarker) {
		return strings.TrimSpace(response), MissingJustification
	}

	parts := strings.SplitN(response, justificationMarker, 3)
	label = strings.ReplaceAll(parts[0], constructMarker, "")
	label = strings.TrimSpace(label)
	label = strings.TrimSpace(strings.TrimSuffix(label, "|"))
	return label, strings.TrimSpace(parts[1])
}

// ParseSimilarityResponse extracts the percentage after "Similaridade:" and the
// text after "Justificativa:". Missing parts yield 0 and UnparsedJustification.
func ParseSimilarityResponse(response string) (score float64, justification string) {
	if m := similarityPattern.FindStringSubmatch(response); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			score = v
		}
	}

	justification = UnparsedJustification
	if m := justificationPattern.FindStringSubmatch(response); m != nil {
		justification = strings.TrimSpace(m[1])
	}
	return score, justification
}
