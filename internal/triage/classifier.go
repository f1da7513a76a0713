package triage

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/linnemanlabs/go-core/log"
)

var tracer = otel.Tracer("github.com/linnemanlabs/careroute/internal/triage")

// ClassificationError means the external model call itself failed (network,
// auth, quota). It is surfaced immediately; retry policy belongs to the
// caller, not here.
type ClassificationError struct {
	Err error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classification failed: %v", e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// Classifier produces the untrusted intermediate result for a symptom input:
// it renders the prompt, makes exactly one model call, and recovers the JSON
// object from the response. Repeated calls with identical input may yield
// different results; the model is generative and no determinism is attempted
// at this layer.
type Classifier struct {
	provider Provider
	logger   log.Logger
	hooks    PipelineHooks
}

// NewClassifier creates a classifier over the given LLM provider.
func NewClassifier(provider Provider, logger log.Logger, hooks PipelineHooks) *Classifier {
	if logger == nil {
		logger = log.Nop()
	}
	return &Classifier{
		provider: provider,
		logger:   logger,
		hooks:    hooks,
	}
}

// Classify makes one outbound model call and extracts the intermediate
// result. It fails with *ClassificationError when the call fails and with
// *ExtractionError when no JSON object can be recovered from the response.
func (c *Classifier) Classify(ctx context.Context, symptoms SymptomInput) (*Intermediate, error) {
	ctx, span := tracer.Start(ctx, "llm.call")
	defer span.End()
	span.SetAttributes(attribute.String("gen_ai.operation.name", "llm.call"))

	prompt := buildPrompt(symptoms)

	start := time.Now()
	raw, err := c.provider.Generate(ctx, prompt)
	dur := time.Since(start).Seconds()

	if c.hooks.OnLLMCall != nil {
		c.hooks.OnLLMCall(dur, err != nil)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error(ctx, err, "llm call failed", "duration", dur)
		return nil, &ClassificationError{Err: err}
	}

	c.logger.Info(ctx, "llm response received",
		"duration", dur,
		"response_bytes", len(raw),
	)

	out, err := Extract(raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction failed")
		if c.hooks.OnExtractionFailure != nil {
			c.hooks.OnExtractionFailure()
		}
		return nil, err
	}

	span.SetAttributes(
		attribute.String("careroute.intermediate.urgency", out.Urgency),
		attribute.Int("careroute.intermediate.score", out.Score),
	)
	return out, nil
}
