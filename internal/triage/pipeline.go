package triage

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/linnemanlabs/go-core/log"
)

// ErrEmptySymptoms rejects inputs with no symptom text before any model call.
var ErrEmptySymptoms = errors.New("symptom text is required")

// PipelineHooks let the pipeline report events without depending on a metrics
// backend (wired to Prometheus by Metrics.Hooks).
type PipelineHooks struct {
	OnLLMCall           func(duration float64, failed bool)
	OnExtractionFailure func()
	OnRuleFired         func(rule string)
	OnDecision          func(d *Decision, duration float64)
}

// Pipeline is the public entry point of the triage core: one classification
// call followed by the safety rules. Invocation is synchronous and blocking;
// the only suspension point is the outbound model call, and cancellation, if
// wanted, happens at the transport via ctx.
type Pipeline struct {
	classifier *Classifier
	logger     log.Logger
	hooks      PipelineHooks
}

// NewPipeline composes a classifier over the given provider with the safety
// rule layer.
func NewPipeline(provider Provider, logger log.Logger, hooks PipelineHooks) *Pipeline {
	if logger == nil {
		logger = log.Nop()
	}
	return &Pipeline{
		classifier: NewClassifier(provider, logger, hooks),
		logger:     logger,
		hooks:      hooks,
	}
}

// Run produces the final Decision for a symptom input. On any classification
// or extraction failure there is no partial decision: the error is returned
// and the caller may retry by re-submitting.
func (p *Pipeline) Run(ctx context.Context, symptoms SymptomInput) (*Decision, error) {
	ctx, span := tracer.Start(ctx, "triage.run")
	defer span.End()

	if symptoms.Text == "" {
		return nil, ErrEmptySymptoms
	}

	start := time.Now()

	intermediate, err := p.classifier.Classify(ctx, symptoms)
	if err != nil {
		return nil, err
	}

	decision, fired := applyRules(symptoms, intermediate)
	for _, name := range fired {
		if p.hooks.OnRuleFired != nil {
			p.hooks.OnRuleFired(name)
		}
	}

	dur := time.Since(start).Seconds()
	if p.hooks.OnDecision != nil {
		p.hooks.OnDecision(&decision, dur)
	}

	span.SetAttributes(
		attribute.String("careroute.triage.urgency", string(decision.Urgency)),
		attribute.Int("careroute.triage.score", decision.Score),
		attribute.Int("careroute.triage.red_flags", len(decision.RedFlags)),
	)

	p.logger.Info(ctx, "triage decision",
		"urgency", decision.Urgency,
		"score", decision.Score,
		"red_flags", len(decision.RedFlags),
		"rules_fired", fired,
		"duration", dur,
	)

	return &decision, nil
}
