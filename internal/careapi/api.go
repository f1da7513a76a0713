// Package careapi exposes the triage service over HTTP.
package careapi

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/careroute/internal/history"
	"github.com/linnemanlabs/careroute/internal/session"
)

// TriageService defines the business operations careapi needs.
type TriageService interface {
	Triage(ctx context.Context, req *session.Request) (*session.Result, error)
	History(ctx context.Context) ([]history.Record, error)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger log.Logger
	svc    TriageService
}

// New creates a new API handler.
func New(logger log.Logger, svc TriageService) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("triage service is required"))
	}
	return &API{
		logger: logger,
		svc:    svc,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/triage", a.handleTriage)
		r.Get("/history", a.handleHistory)
	})
}

func (a *API) handleHistory(w http.ResponseWriter, r *http.Request) {
	records, err := a.svc.History(r.Context())
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to load history")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.Int("careroute.history.records", len(records)))

	writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
	})
}
