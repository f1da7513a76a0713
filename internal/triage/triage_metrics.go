package triage

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the triage pipeline.
type Metrics struct {
	DecisionsTotal     *prometheus.CounterVec
	DecisionScore      prometheus.Histogram
	PipelineDuration   prometheus.Histogram
	LLMCallsTotal      *prometheus.CounterVec
	LLMDuration        prometheus.Histogram
	ExtractionFailures prometheus.Counter
	RuleEscalations    *prometheus.CounterVec
}

// NewMetrics registers and returns triage metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careroute_triage_decisions_total",
			Help: "Total triage decisions by final urgency level.",
		}, []string{"urgency"}),
		DecisionScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "careroute_triage_decision_score",
			Help:    "Final decision score distribution.",
			Buckets: prometheus.LinearBuckets(1, 1, 4), // 1 .. 4
		}),
		PipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "careroute_triage_pipeline_duration_seconds",
			Help:    "Duration of full pipeline runs in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8), // 0.25s .. ~32s
		}),
		LLMCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careroute_llm_calls_total",
			Help: "Total LLM provider calls by outcome.",
		}, []string{"outcome"}),
		LLMDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "careroute_llm_call_duration_seconds",
			Help:    "Duration of individual LLM calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8), // 0.25s .. ~32s
		}),
		ExtractionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "careroute_extraction_failures_total",
			Help: "Model responses from which no JSON object could be recovered.",
		}),
		RuleEscalations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careroute_safety_rule_escalations_total",
			Help: "Safety rule firings by rule name.",
		}, []string{"rule"}),
	}

	reg.MustRegister(
		m.DecisionsTotal,
		m.DecisionScore,
		m.PipelineDuration,
		m.LLMCallsTotal,
		m.LLMDuration,
		m.ExtractionFailures,
		m.RuleEscalations,
	)

	return m
}

// Hooks returns a PipelineHooks that increments the corresponding metrics.
func (m *Metrics) Hooks() PipelineHooks {
	return PipelineHooks{
		OnLLMCall: func(duration float64, failed bool) {
			outcome := "success"
			if failed {
				outcome = "error"
			}
			m.LLMCallsTotal.WithLabelValues(outcome).Inc()
			m.LLMDuration.Observe(duration)
		},
		OnExtractionFailure: func() {
			m.ExtractionFailures.Inc()
		},
		OnRuleFired: func(rule string) {
			m.RuleEscalations.WithLabelValues(rule).Inc()
		},
		OnDecision: func(d *Decision, duration float64) {
			m.DecisionsTotal.WithLabelValues(string(d.Urgency)).Inc()
			m.DecisionScore.Observe(float64(d.Score))
			m.PipelineDuration.Observe(duration)
		},
	}
}
