package careapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/careroute/internal/session"
	"github.com/linnemanlabs/careroute/internal/triage"
)

// triageRequest is the POST /api/v1/triage payload. Vitals are tri-state:
// an absent field means "not reported", which is distinct from zero/false.
type triageRequest struct {
	Text    string        `json:"text"`
	Vitals  triage.Vitals `json:"vitals"`
	Address string        `json:"address"`
}

func (a *API) handleTriage(w http.ResponseWriter, r *http.Request) {
	var req triageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}

	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		http.Error(w, `{"error":"symptom text is required"}`, http.StatusBadRequest)
		return
	}

	result, err := a.svc.Triage(r.Context(), &session.Request{
		Symptoms: triage.SymptomInput{
			Text:   req.Text,
			Vitals: req.Vitals,
		},
		Address: strings.TrimSpace(req.Address),
	})
	if err != nil {
		a.writeTriageError(w, r, err)
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("careroute.session.id", result.ID),
		attribute.String("careroute.triage.urgency", string(result.Decision.Urgency)),
	)

	writeJSON(w, http.StatusOK, result)
}

// writeTriageError maps the pipeline error taxonomy to HTTP status codes.
// The user may retry by re-submitting; nothing is retried server-side.
func (a *API) writeTriageError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		classErr   *triage.ClassificationError
		extractErr *triage.ExtractionError
	)

	switch {
	case errors.Is(err, triage.ErrEmptySymptoms):
		http.Error(w, `{"error":"symptom text is required"}`, http.StatusBadRequest)
	case errors.As(err, &extractErr):
		a.logger.Error(r.Context(), err, "model response could not be parsed")
		http.Error(w, `{"error":"the model response could not be understood, please try again"}`, http.StatusBadGateway)
	case errors.As(err, &classErr):
		a.logger.Error(r.Context(), err, "classification call failed")
		http.Error(w, `{"error":"the triage model is unavailable, please try again"}`, http.StatusBadGateway)
	default:
		a.logger.Error(r.Context(), err, "triage failed")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// nothing to do with encode errors here
	_ = json.NewEncoder(w).Encode(v)
}
