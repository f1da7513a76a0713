// Package memstore provides an in-memory implementation of history.Store.
// Suitable for dev/testing.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/linnemanlabs/careroute/internal/history"
	"github.com/linnemanlabs/careroute/internal/triage"
)

// Store holds triage history in memory, most recent first.
type Store struct {
	mu         sync.RWMutex
	records    []history.Record
	maxRecords int
}

// New initializes a new in-memory Store. maxRecords <= 0 uses
// history.MaxRecords.
func New(maxRecords int) *Store {
	if maxRecords <= 0 {
		maxRecords = history.MaxRecords
	}
	return &Store{maxRecords: maxRecords}
}

// Append inserts a record at the front and trims to the bound.
func (s *Store) Append(_ context.Context, symptomsText string, decision *triage.Decision, facilityNames []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if facilityNames == nil {
		facilityNames = []string{}
	}
	s.records = append([]history.Record{{
		Timestamp:     time.Now().UTC(),
		SymptomsText:  symptomsText,
		UrgencyLevel:  string(decision.Urgency),
		FacilityNames: append([]string{}, facilityNames...),
	}}, s.records...)

	if len(s.records) > s.maxRecords {
		s.records = s.records[:s.maxRecords]
	}
	return nil
}

// Load returns a copy of the retained records, most recent first.
func (s *Store) Load(_ context.Context) ([]history.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]history.Record, len(s.records))
	copy(out, s.records)
	return out, nil
}
