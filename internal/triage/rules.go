package triage

import "strings"

// Red-flag labels appended by the safety rules. Exact strings matter: the
// idempotence check compares against model-supplied flags byte for byte.
const (
	redFlagChestPainDyspnea    = "Chest pain + shortness of breath / difficulty breathing"
	redFlagRespiratoryDistress = "Respiratory distress"
	redFlagHighFever           = "High fever (>=40C)"
)

// A rule is a pure transformation over a decision-in-progress. Rules may only
// raise score and urgency, never lower them, and every rule runs
// unconditionally: none short-circuits another, so several rules can escalate
// the same decision in sequence.
type rule struct {
	name  string
	apply func(symptoms SymptomInput, d Decision) (Decision, bool)
}

var safetyRules = []rule{
	{name: "chest_pain_dyspnea", apply: ruleChestPainDyspnea},
	{name: "respiratory_distress", apply: ruleRespiratoryDistress},
	{name: "high_fever", apply: ruleHighFever},
}

// ApplyRules runs the deterministic safety-override layer on top of the model
// output and returns the final Decision. It is total: any intermediate result
// is accepted, including out-of-range scores and unrecognized urgency labels.
// Unrecognized labels match no rule's starting-state checks and pass through
// unchanged; rule 1 still forces ER regardless of the starting label.
func ApplyRules(symptoms SymptomInput, in *Intermediate) Decision {
	d, _ := applyRules(symptoms, in)
	return d
}

func applyRules(symptoms SymptomInput, in *Intermediate) (Decision, []string) {
	d := Decision{
		Urgency:     Urgency(strings.ToUpper(in.Urgency)),
		Score:       in.Score,
		Explanation: in.Explanation,
		RedFlags:    append([]string{}, in.RedFlags...),
	}

	var fired []string
	for _, r := range safetyRules {
		var hit bool
		d, hit = r.apply(symptoms, d)
		if hit {
			fired = append(fired, r.name)
		}
	}
	return d, fired
}

// ruleChestPainDyspnea forces ER for the chest pain + breathing trouble
// combination. This is the only rule that sets urgency directly instead of
// escalating from specific starting states.
func ruleChestPainDyspnea(symptoms SymptomInput, d Decision) (Decision, bool) {
	text := strings.ToLower(symptoms.Text)
	if !strings.Contains(text, "chest pain") {
		return d, false
	}
	if !strings.Contains(text, "shortness of breath") && !strings.Contains(text, "difficulty breathing") {
		return d, false
	}

	d.RedFlags = appendOnce(d.RedFlags, redFlagChestPainDyspnea)
	d.Score = max(d.Score, 4)
	d.Urgency = UrgencyER
	return d, true
}

// ruleRespiratoryDistress raises HOME/CLINIC to URGENT when the text
// describes breathing trouble. URGENT and ER are left untouched.
func ruleRespiratoryDistress(symptoms SymptomInput, d Decision) (Decision, bool) {
	text := strings.ToLower(symptoms.Text)

	phrases := []string{"cant breathe", "can't breathe", "difficulty breathing", "trouble breathing"}
	matched := false
	for _, p := range phrases {
		if strings.Contains(text, p) {
			matched = true
			break
		}
	}
	if !matched {
		return d, false
	}

	d.RedFlags = appendOnce(d.RedFlags, redFlagRespiratoryDistress)
	d.Score = max(d.Score, 3)
	if d.Urgency == UrgencyHome || d.Urgency == UrgencyClinic {
		d.Urgency = UrgencyUrgent
	}
	return d, true
}

// ruleHighFever raises HOME to CLINIC for a known temperature >= 40C. The
// score floor of 3 exceeds CLINIC's usual pairing; that asymmetry between the
// score axis and the urgency axis is intentional and preserved verbatim.
func ruleHighFever(symptoms SymptomInput, d Decision) (Decision, bool) {
	t := symptoms.Vitals.TemperatureC
	if t == nil || *t < 40.0 {
		return d, false
	}

	d.RedFlags = appendOnce(d.RedFlags, redFlagHighFever)
	d.Score = max(d.Score, 3)
	if d.Urgency == UrgencyHome {
		d.Urgency = UrgencyClinic
	}
	return d, true
}

// appendOnce appends flag unless an exact match is already present,
// preserving insertion order: model-supplied flags first, then rule flags in
// rule-evaluation order.
func appendOnce(flags []string, flag string) []string {
	for _, f := range flags {
		if f == flag {
			return flags
		}
	}
	return append(flags, flag)
}
