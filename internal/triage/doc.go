// Package triage implements CareRoute's triage decision pipeline: prompt
// construction, the LLM classification call, JSON recovery from the raw model
// response, and the deterministic safety-rule layer that escalates the final
// decision. The Pipeline is the public entry point; everything downstream of
// the rules treats a Decision as immutable.
package triage
