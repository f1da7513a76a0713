package triage

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Extraction defaults for fields the model omitted. Defaulting happens only
// after a successful parse; a response that fails to parse is never
// partially salvaged.
const (
	defaultScore   = 2
	defaultUrgency = "CLINIC"
)

// ExtractionError means the model responded, but neither parse strategy
// could recover a JSON object. Raw carries the full response for diagnosis.
type ExtractionError struct {
	Raw string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("model did not return valid JSON, raw output: %s", e.Raw)
}

// Extract parses a raw model response into an Intermediate result.
//
// Strategies, in order, first success wins:
//  1. parse the entire trimmed response as a JSON object
//  2. parse the inclusive substring between the first '{' and the last '}',
//     which recovers objects wrapped in prose or markdown fences
//
// If both fail it returns an *ExtractionError carrying the raw text.
func Extract(raw string) (*Intermediate, error) {
	text := strings.TrimSpace(raw)

	if out, ok := parseObject(text); ok {
		return out, nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end != -1 && end > start {
		if out, ok := parseObject(text[start : end+1]); ok {
			return out, nil
		}
	}

	return nil, &ExtractionError{Raw: text}
}

// rawResult mirrors the JSON contract the prompt mandates. Pointer fields
// distinguish "absent" from zero values so defaults apply only to missing keys.
type rawResult struct {
	Score       *json.Number `json:"score"`
	Urgency     *string      `json:"urgency"`
	Explanation *string      `json:"explanation"`
	RedFlags    []string     `json:"red_flags"`
}

func parseObject(candidate string) (*Intermediate, bool) {
	if !strings.HasPrefix(candidate, "{") {
		return nil, false
	}

	var r rawResult
	if err := json.Unmarshal([]byte(candidate), &r); err != nil {
		return nil, false
	}

	out := &Intermediate{
		Score:    defaultScore,
		Urgency:  defaultUrgency,
		RedFlags: []string{},
	}
	if r.Score != nil {
		out.Score = numberToInt(*r.Score, defaultScore)
	}
	if r.Urgency != nil {
		out.Urgency = *r.Urgency
	}
	if r.Explanation != nil {
		out.Explanation = strings.TrimSpace(*r.Explanation)
	}
	if r.RedFlags != nil {
		out.RedFlags = r.RedFlags
	}
	return out, true
}

// numberToInt accepts integral or fractional scores, truncating the latter.
func numberToInt(n json.Number, fallback int) int {
	if i, err := n.Int64(); err == nil {
		return int(i)
	}
	if f, err := n.Float64(); err == nil {
		return int(f)
	}
	return fallback
}
