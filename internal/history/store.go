// Package history defines the bounded triage history: the most recent
// records, newest first, with the oldest evicted silently on overflow.
package history

import (
	"context"
	"time"

	"github.com/linnemanlabs/careroute/internal/triage"
)

// MaxRecords is the default retention bound.
const MaxRecords = 20

// Record is one completed triage session.
type Record struct {
	Timestamp     time.Time `json:"timestamp"`
	SymptomsText  string    `json:"symptoms_text"`
	UrgencyLevel  string    `json:"urgency_level"`
	FacilityNames []string  `json:"facility_names"`
}

// Store is the persistence interface for triage history.
type Store interface {
	// Append inserts a new record at the front and trims to the retention
	// bound.
	Append(ctx context.Context, symptomsText string, decision *triage.Decision, facilityNames []string) error

	// Load returns all retained records, most recent first. A store that has
	// never been written returns an empty list, not an error.
	Load(ctx context.Context) ([]Record, error)
}
