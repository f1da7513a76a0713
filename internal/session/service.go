// Package session is the business boundary for one triage session: it runs
// the decision pipeline, then resolves the optional address, recommends
// facilities, records history, and notifies on emergencies. Only the
// pipeline can fail a session; everything after the decision degrades
// gracefully.
package session

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/careroute/internal/facilities"
	"github.com/linnemanlabs/careroute/internal/geo"
	"github.com/linnemanlabs/careroute/internal/history"
	"github.com/linnemanlabs/careroute/internal/triage"
)

// Geocoder resolves a free-form address.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*geo.Location, error)
}

// Recommender suggests nearby facilities for a decision. It returns an empty
// list on upstream failure, never an error.
type Recommender interface {
	Recommend(ctx context.Context, decision *triage.Decision, lat, lon float64, radiusM, maxResults int) []facilities.Recommendation
}

// Notifier is told about completed sessions (e.g. a Slack webhook for ER
// decisions).
type Notifier interface {
	Notify(ctx context.Context, result *Result) error
}

// Request is one user-submitted triage request.
type Request struct {
	Symptoms triage.SymptomInput
	Address  string
}

// Result is the outcome of one completed session. The decision inside is
// immutable; nothing downstream of the rules ever changes it.
type Result struct {
	ID               string                      `json:"id"`
	Decision         *triage.Decision            `json:"decision"`
	SymptomsText     string                      `json:"symptoms_text"`
	FormattedAddress string                      `json:"formatted_address,omitempty"`
	AddressError     string                      `json:"address_error,omitempty"`
	Recommendations  []facilities.Recommendation `json:"recommendations"`
	CreatedAt        time.Time                   `json:"created_at"`
	Duration         float64                     `json:"duration_seconds"`
}

// Options bound the facility search.
type Options struct {
	FacilityRadiusMeters int
	FacilityMaxResults   int
}

// Service composes the pipeline with its collaborators.
type Service struct {
	pipeline    *triage.Pipeline
	geocoder    Geocoder
	recommender Recommender
	store       history.Store
	notifier    Notifier
	logger      log.Logger
	opts        Options
}

// NewService creates a session service. geocoder, recommender, and notifier
// may be nil; the corresponding step is skipped.
func NewService(pipeline *triage.Pipeline, geocoder Geocoder, recommender Recommender, store history.Store, notifier Notifier, logger log.Logger, opts Options) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	if opts.FacilityRadiusMeters <= 0 {
		opts.FacilityRadiusMeters = facilities.DefaultRadiusMeters
	}
	if opts.FacilityMaxResults <= 0 {
		opts.FacilityMaxResults = facilities.DefaultMaxResults
	}
	return &Service{
		pipeline:    pipeline,
		geocoder:    geocoder,
		recommender: recommender,
		store:       store,
		notifier:    notifier,
		logger:      logger,
		opts:        opts,
	}
}

// Triage runs one synchronous session. A classification or extraction
// failure aborts with no partial result and no history write. A geocoding
// failure does not discard the decision: the result carries an
// address-specific message and an empty recommendation list instead.
func (s *Service) Triage(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()
	id := ulid.Make().String()

	L := s.logger.With("session_id", id)

	decision, err := s.pipeline.Run(ctx, req.Symptoms)
	if err != nil {
		return nil, err
	}

	result := &Result{
		ID:              id,
		Decision:        decision,
		SymptomsText:    req.Symptoms.Text,
		Recommendations: []facilities.Recommendation{},
		CreatedAt:       start.UTC(),
	}

	if req.Address != "" && s.geocoder != nil {
		loc, err := s.geocoder.Geocode(ctx, req.Address)
		if err != nil {
			L.Warn(ctx, "geocoding failed", "error", err)
			result.AddressError = err.Error()
		} else {
			result.FormattedAddress = loc.FormattedAddress
			if s.recommender != nil {
				result.Recommendations = s.recommender.Recommend(
					ctx, decision, loc.Lat, loc.Lon,
					s.opts.FacilityRadiusMeters, s.opts.FacilityMaxResults,
				)
			}
		}
	}

	names := make([]string, 0, len(result.Recommendations))
	for _, rec := range result.Recommendations {
		names = append(names, rec.Facility.Name)
	}
	if err := s.store.Append(ctx, req.Symptoms.Text, decision, names); err != nil {
		L.Error(ctx, err, "failed to append history record")
	}

	if s.notifier != nil && decision.Urgency == triage.UrgencyER {
		if err := s.notifier.Notify(ctx, result); err != nil {
			L.Error(ctx, err, "failed to send notification")
		}
	}

	result.Duration = time.Since(start).Seconds()

	L.Info(ctx, "session complete",
		"urgency", decision.Urgency,
		"score", decision.Score,
		"facilities", len(result.Recommendations),
		"duration", result.Duration,
	)
	return result, nil
}

// History returns the retained session records, most recent first.
func (s *Service) History(ctx context.Context) ([]history.Record, error) {
	return s.store.Load(ctx)
}
