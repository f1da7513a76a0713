// Package filestore persists triage history as a local JSON file, the
// default when no database is configured.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/linnemanlabs/careroute/internal/history"
	"github.com/linnemanlabs/careroute/internal/triage"
)

// Store reads and writes a single JSON file. A mutex serializes access; the
// file is small (bounded record count) so rewriting it whole is fine.
type Store struct {
	mu         sync.Mutex
	path       string
	maxRecords int
}

// New creates a file store at path. maxRecords <= 0 uses history.MaxRecords.
func New(path string, maxRecords int) *Store {
	if maxRecords <= 0 {
		maxRecords = history.MaxRecords
	}
	return &Store{
		path:       path,
		maxRecords: maxRecords,
	}
}

// Append inserts a record at the front, trims to the bound, and rewrites the
// file.
func (s *Store) Append(_ context.Context, symptomsText string, decision *triage.Decision, facilityNames []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}

	if facilityNames == nil {
		facilityNames = []string{}
	}
	records = append([]history.Record{{
		Timestamp:     time.Now().UTC(),
		SymptomsText:  symptomsText,
		UrgencyLevel:  string(decision.Urgency),
		FacilityNames: facilityNames,
	}}, records...)

	if len(records) > s.maxRecords {
		records = records[:s.maxRecords]
	}

	return s.save(records)
}

// Load returns the retained records, most recent first. A missing file means
// an empty history.
func (s *Store) Load(_ context.Context) ([]history.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() ([]history.Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []history.Record{}, nil
		}
		return nil, fmt.Errorf("read history file: %w", err)
	}

	var records []history.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse history file: %w", err)
	}
	if records == nil {
		records = []history.Record{}
	}
	return records, nil
}

func (s *Store) save(records []history.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write history file: %w", err)
	}
	return nil
}
