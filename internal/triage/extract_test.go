package triage

import (
	"errors"
	"reflect"
	"testing"
)

func TestExtract_CleanJSON(t *testing.T) {
	t.Parallel()

	raw := `{"score": 3, "urgency": "URGENT", "explanation": "breathing trouble", "red_flags": ["dyspnea"]}`
	out, err := Extract(raw)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if out.Score != 3 {
		t.Errorf("score = %d, want 3", out.Score)
	}
	if out.Urgency != "URGENT" {
		t.Errorf("urgency = %q, want URGENT", out.Urgency)
	}
	if out.Explanation != "breathing trouble" {
		t.Errorf("explanation = %q, want %q", out.Explanation, "breathing trouble")
	}
	if !reflect.DeepEqual(out.RedFlags, []string{"dyspnea"}) {
		t.Errorf("red flags = %v, want [dyspnea]", out.RedFlags)
	}
}

func TestExtract_MarkdownFence(t *testing.T) {
	t.Parallel()

	raw := "```json\n{\"score\": 2, \"urgency\": \"CLINIC\", \"explanation\": \"see a doctor\", \"red_flags\": []}\n```"
	out, err := Extract(raw)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if out.Urgency != "CLINIC" {
		t.Errorf("urgency = %q, want CLINIC", out.Urgency)
	}
	if out.Score != 2 {
		t.Errorf("score = %d, want 2", out.Score)
	}
}

func TestExtract_ProseWrappedJSON(t *testing.T) {
	t.Parallel()

	raw := `Sure! Here is my assessment: {"score": 4, "urgency": "ER", "explanation": "go now", "red_flags": ["severe"]} Let me know if you need more.`
	out, err := Extract(raw)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if out.Urgency != "ER" {
		t.Errorf("urgency = %q, want ER", out.Urgency)
	}
	if out.Score != 4 {
		t.Errorf("score = %d, want 4", out.Score)
	}
}

func TestExtract_DefaultsForMissingFields(t *testing.T) {
	t.Parallel()

	out, err := Extract(`{}`)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if out.Score != defaultScore {
		t.Errorf("score = %d, want default %d", out.Score, defaultScore)
	}
	if out.Urgency != defaultUrgency {
		t.Errorf("urgency = %q, want default %q", out.Urgency, defaultUrgency)
	}
	if out.Explanation != "" {
		t.Errorf("explanation = %q, want empty", out.Explanation)
	}
	if out.RedFlags == nil || len(out.RedFlags) != 0 {
		t.Errorf("red flags = %v, want empty non-nil slice", out.RedFlags)
	}
}

func TestExtract_FractionalScoreTruncated(t *testing.T) {
	t.Parallel()

	out, err := Extract(`{"score": 3.7, "urgency": "URGENT"}`)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if out.Score != 3 {
		t.Errorf("score = %d, want 3", out.Score)
	}
}

func TestExtract_ExplanationTrimmed(t *testing.T) {
	t.Parallel()

	out, err := Extract(`{"explanation": "  rest at home  "}`)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if out.Explanation != "rest at home" {
		t.Errorf("explanation = %q, want %q", out.Explanation, "rest at home")
	}
}

func TestExtract_NoJSONReturnsExtractionError(t *testing.T) {
	t.Parallel()

	raw := "I am sorry, I cannot help with that."
	_, err := Extract(raw)
	if err == nil {
		t.Fatal("expected error for response with no JSON object")
	}

	var extractErr *ExtractionError
	if !errors.As(err, &extractErr) {
		t.Fatalf("error type = %T, want *ExtractionError", err)
	}
	if extractErr.Raw != raw {
		t.Errorf("Raw = %q, want %q", extractErr.Raw, raw)
	}
}

func TestExtract_MalformedBracesReturnsExtractionError(t *testing.T) {
	t.Parallel()

	_, err := Extract(`some text { this is not json } more text`)
	var extractErr *ExtractionError
	if !errors.As(err, &extractErr) {
		t.Fatalf("error type = %T, want *ExtractionError", err)
	}
}

func TestExtract_WhitespaceOnly(t *testing.T) {
	t.Parallel()

	_, err := Extract("   \n\t  ")
	var extractErr *ExtractionError
	if !errors.As(err, &extractErr) {
		t.Fatalf("error type = %T, want *ExtractionError", err)
	}
	if extractErr.Raw != "" {
		t.Errorf("Raw = %q, want trimmed empty string", extractErr.Raw)
	}
}

func TestExtract_NestedBracesInExplanation(t *testing.T) {
	t.Parallel()

	// First-{ to last-} spans the whole object even with braces in strings.
	raw := "prefix {\"score\": 1, \"urgency\": \"HOME\", \"explanation\": \"use {ice} packs\", \"red_flags\": []} suffix"
	out, err := Extract(raw)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if out.Explanation != "use {ice} packs" {
		t.Errorf("explanation = %q, want %q", out.Explanation, "use {ice} packs")
	}
}
