package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/linnemanlabs/careroute/internal/session"
	"github.com/linnemanlabs/careroute/internal/triage"
)

func testResult() *session.Result {
	return &session.Result{
		ID: "01JN123",
		Decision: &triage.Decision{
			Urgency:     triage.UrgencyER,
			Score:       4,
			Explanation: "Severe symptoms, go to the emergency room.",
			RedFlags:    []string{"Chest pain + shortness of breath / difficulty breathing"},
		},
		SymptomsText: "chest pain and shortness of breath",
		CreatedAt:    time.Date(2026, 8, 29, 14, 23, 0, 0, time.UTC),
		Duration:     3.4,
	}
}

func TestNotify_PostsToWebhook(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content-type = %q, want application/json", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(srv.URL)
	if err := n.Notify(context.Background(), testResult()); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	blocks, ok := got["blocks"].([]any)
	if !ok {
		t.Fatal("expected blocks array in payload")
	}

	// header, divider, fields, divider, explanation, divider, context = 7 blocks
	if len(blocks) != 7 {
		t.Errorf("blocks count = %d, want 7", len(blocks))
	}

	// Verify header contains urgency and the red circle emoji
	header := blocks[0].(map[string]any)
	headerText := header["text"].(map[string]any)["text"].(string)
	if !strings.Contains(headerText, "ER") {
		t.Errorf("header text = %q, want to contain ER", headerText)
	}
	if !strings.Contains(headerText, "\U0001f534") {
		t.Errorf("header should contain red circle for ER urgency")
	}
}

func TestNotify_NoOpWithoutURL(t *testing.T) {
	t.Parallel()

	n := New("")
	if err := n.Notify(context.Background(), testResult()); err != nil {
		t.Fatalf("Notify with empty URL should be no-op, got: %v", err)
	}
}

func TestNotify_TruncatesLongExplanation(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result := testResult()
	result.Decision.Explanation = strings.Repeat("x", 4000)

	n := New(srv.URL)
	if err := n.Notify(context.Background(), result); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	blocks := got["blocks"].([]any)
	explanationSection := blocks[4].(map[string]any)
	text := explanationSection["text"].(map[string]any)["text"].(string)

	// Text includes the "*Explanation*\n\n" prefix, so the explanation portion is what follows.
	if len(text) > maxExplanationLen+len("*Explanation*\n\n") {
		t.Errorf("explanation text length = %d, expected <= %d", len(text), maxExplanationLen+len("*Explanation*\n\n"))
	}
	if !strings.HasSuffix(text, "...") {
		t.Error("expected truncated explanation to end with ...")
	}
}

func TestUrgencyEmoji(t *testing.T) {
	t.Parallel()

	tests := []struct {
		urgency triage.Urgency
		want    string
	}{
		{triage.UrgencyER, "\U0001f534"},
		{triage.UrgencyUrgent, "\U0001f7e0"},
		{triage.UrgencyClinic, "\U0001f7e1"},
		{triage.UrgencyHome, "\U0001f7e2"},
		{triage.Urgency("UNKNOWN"), "\U0001f7e2"},
	}

	for _, tt := range tests {
		t.Run(string(tt.urgency), func(t *testing.T) {
			t.Parallel()
			if got := urgencyEmoji(tt.urgency); got != tt.want {
				t.Errorf("urgencyEmoji(%q) = %q, want %q", tt.urgency, got, tt.want)
			}
		})
	}
}

func FuzzSlackBuild(f *testing.F) {
	f.Add("ER", "Severe symptoms.", "chest pain", 4)
	f.Add("", "", "", 0)
	f.Add("<@U123> mention", "*bold* _italic_ ~strike~", "symptoms", 2)
	f.Add("urg\x00\x01\x02", "explanation\ttab", "text\nline", -5)
	f.Add(strings.Repeat("A", 5000), strings.Repeat("x", 10000), "s", 99)
	f.Add("HOME", "```code block``` and <http://example.com|link>", "sore throat", 1)

	f.Fuzz(func(t *testing.T, urgency, explanation, symptoms string, score int) {
		result := &session.Result{
			ID: "fuzz-id",
			Decision: &triage.Decision{
				Urgency:     triage.Urgency(urgency),
				Score:       score,
				Explanation: explanation,
				RedFlags:    []string{"flag"},
			},
			SymptomsText: symptoms,
			CreatedAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			Duration:     1.0,
		}

		// Must not panic
		msg := buildMessage(result)

		// Must produce valid JSON
		data, err := json.Marshal(msg)
		if err != nil {
			t.Fatalf("buildMessage produced non-marshalable output: %v", err)
		}

		// Must round-trip
		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("buildMessage JSON does not round-trip: %v", err)
		}

		blocks, ok := decoded["blocks"].([]any)
		if !ok {
			t.Fatal("expected blocks array")
		}
		if len(blocks) != 7 {
			t.Fatalf("blocks count = %d, want 7", len(blocks))
		}
	})
}

func TestNotify_NonOKStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("internal error"))
	}))
	defer srv.Close()

	n := New(srv.URL)
	err := n.Notify(context.Background(), testResult())
	if err == nil {
		t.Fatal("expected error on non-OK status")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error = %q, want to contain status code 500", err.Error())
	}
}
