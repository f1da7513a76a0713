// Package pgstore provides a PostgreSQL implementation of history.Store.
package pgstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/careroute/internal/history"
	"github.com/linnemanlabs/careroute/internal/triage"
)

var tracer = otel.Tracer("github.com/linnemanlabs/careroute/internal/history/pgstore")

//go:embed schema.sql
var schema string

// Store persists triage history in PostgreSQL, trimming to the retention
// bound on every append.
type Store struct {
	pool       *pgxpool.Pool
	maxRecords int
}

// New applies the schema and returns a ready Store. maxRecords <= 0 uses
// history.MaxRecords.
func New(ctx context.Context, pool *pgxpool.Pool, maxRecords int) (*Store, error) {
	if maxRecords <= 0 {
		maxRecords = history.MaxRecords
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool, maxRecords: maxRecords}, nil
}

// Append inserts a record and evicts everything beyond the retention bound
// in the same transaction.
func (s *Store) Append(ctx context.Context, symptomsText string, decision *triage.Decision, facilityNames []string) error {
	ctx, span := tracer.Start(ctx, "pgstore.Append", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "INSERT"),
	))
	defer span.End()

	if facilityNames == nil {
		facilityNames = []string{}
	}
	namesJSON, err := json.Marshal(facilityNames)
	if err != nil {
		return fmt.Errorf("marshal facility names: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is harmless

	_, err = tx.Exec(ctx,
		`INSERT INTO history_records (created_at, symptoms_text, urgency_level, facility_names)
		 VALUES ($1, $2, $3, $4)`,
		time.Now().UTC(), symptomsText, string(decision.Urgency), namesJSON,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("insert record: %w", err)
	}

	_, err = tx.Exec(ctx,
		`DELETE FROM history_records WHERE id NOT IN (
		   SELECT id FROM history_records ORDER BY created_at DESC, id DESC LIMIT $1
		 )`,
		s.maxRecords,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("trim records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Load returns the retained records, most recent first.
func (s *Store) Load(ctx context.Context) ([]history.Record, error) {
	ctx, span := tracer.Start(ctx, "pgstore.Load", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT created_at, symptoms_text, urgency_level, facility_names
		 FROM history_records
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`,
		s.maxRecords,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := []history.Record{}
	for rows.Next() {
		var (
			r         history.Record
			namesJSON []byte
		)
		if err := rows.Scan(&r.Timestamp, &r.SymptomsText, &r.UrgencyLevel, &namesJSON); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if err := json.Unmarshal(namesJSON, &r.FacilityNames); err != nil {
			return nil, fmt.Errorf("unmarshal facility names: %w", err)
		}
		if r.FacilityNames == nil {
			r.FacilityNames = []string{}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}
