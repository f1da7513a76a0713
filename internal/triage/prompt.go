package triage

import (
	"fmt"
	"strconv"
)

// buildPrompt renders the classification prompt for a symptom input. It is a
// pure function: the same input always produces the same prompt. Unset vitals
// render as "unknown" so the model never sees an ambiguous empty value.
func buildPrompt(symptoms SymptomInput) string {
	return fmt.Sprintf(`You are a conservative medical triage assistant.

The user is describing their symptoms. You must assign an urgency level and briefly explain why.
ALWAYS choose a higher urgency level if there is any uncertainty.

Input:
- Symptoms (free text): %s
- Temperature (C): %s
- Pain score (0-10): %s
- Pregnant: %s
- Recent trauma: %s

Output:
Return ONLY a JSON object with exactly:
- "score": integer 1-4
- "urgency": "HOME", "CLINIC", "URGENT", or "ER"
- "explanation": short explanation (1-3 sentences)
- "red_flags": list of triggered red flags (or [])`,
		symptoms.Text,
		floatOrUnknown(symptoms.Vitals.TemperatureC),
		intOrUnknown(symptoms.Vitals.PainScore),
		boolOrUnknown(symptoms.Vitals.Pregnant),
		boolOrUnknown(symptoms.Vitals.RecentTrauma),
	)
}

const unknownVital = "unknown"

func floatOrUnknown(v *float64) string {
	if v == nil {
		return unknownVital
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func intOrUnknown(v *int) string {
	if v == nil {
		return unknownVital
	}
	return strconv.Itoa(*v)
}

func boolOrUnknown(v *bool) string {
	if v == nil {
		return unknownVital
	}
	return strconv.FormatBool(*v)
}
