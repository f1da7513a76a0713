package triage

import "context"

// Provider is the interface for any LLM backend. The pipeline treats the
// model as an opaque function from a rendered prompt to unstructured text;
// transport, auth, and timeouts live behind this boundary.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
