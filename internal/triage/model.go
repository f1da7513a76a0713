package triage

// Urgency is the recommended care destination.
type Urgency string

const (
	// UrgencyHome means self-care at home is sufficient.
	UrgencyHome Urgency = "HOME"

	// UrgencyClinic means a routine clinic or GP visit.
	UrgencyClinic Urgency = "CLINIC"

	// UrgencyUrgent means urgent care within hours.
	UrgencyUrgent Urgency = "URGENT"

	// UrgencyER means an emergency room, immediately.
	UrgencyER Urgency = "ER"
)

// urgencyRank orders the known levels HOME < CLINIC < URGENT < ER.
var urgencyRank = map[Urgency]int{
	UrgencyHome:   0,
	UrgencyClinic: 1,
	UrgencyUrgent: 2,
	UrgencyER:     3,
}

// Rank returns the escalation order of u. Unrecognized labels rank with HOME;
// no rule ever matches them, so they pass through the rule layer unchanged.
func (u Urgency) Rank() int {
	return urgencyRank[u]
}

// Vitals are optional measurements supplied alongside the symptom text.
// A nil field means "not reported", which is distinct from false or zero.
type Vitals struct {
	TemperatureC *float64 `json:"temperature_c,omitempty"`
	PainScore    *int     `json:"pain_score,omitempty"`
	Pregnant     *bool    `json:"pregnant,omitempty"`
	RecentTrauma *bool    `json:"recent_trauma,omitempty"`
}

// SymptomInput is the unit of classification: free-text symptoms plus
// whatever vitals the user chose to report.
type SymptomInput struct {
	Text   string `json:"text"`
	Vitals Vitals `json:"vitals"`
}

// Intermediate is the untrusted, directly model-derived guess prior to the
// safety rules. Nothing about it is guaranteed: the score may be out of
// range and the urgency label may be unrecognized.
type Intermediate struct {
	Score       int      `json:"score"`
	Urgency     string   `json:"urgency"`
	Explanation string   `json:"explanation"`
	RedFlags    []string `json:"red_flags"`
}

// Decision is the final triage outcome after the safety rules have run.
// It is created once per request and never mutated afterward.
type Decision struct {
	Urgency     Urgency  `json:"urgency_level"`
	Score       int      `json:"score"`
	Explanation string   `json:"explanation"`
	RedFlags    []string `json:"red_flags"`
}
