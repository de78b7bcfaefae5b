// Package reports keeps the latest intelligence report per session in Postgres.
package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/vigilante/internal/callback"
	"github.com/wolfman30/vigilante/internal/intel"
)

// ErrNotFound is returned when no report exists for a session.
var ErrNotFound = errors.New("reports: not found")

type rowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Stored is one row of intelligence_reports.
type Stored struct {
	SessionID     string       `json:"sessionId"`
	ScamDetected  bool         `json:"scamDetected"`
	Confidence    float64      `json:"confidence"`
	TotalMessages int          `json:"totalMessagesExchanged"`
	PersonaID     string       `json:"persona"`
	Intelligence  intel.Record `json:"intelligence"`
	Notes         string       `json:"agentNotes"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// Store persists reports. It is a callback sink.
type Store struct {
	pool rowQuerier
}

func NewStore(pool *pgxpool.Pool) *Store {
	if pool == nil {
		panic("reports: pgx pool required")
	}
	return &Store{pool: pool}
}

func newStoreWithExec(exec rowQuerier) *Store {
	if exec == nil {
		panic("reports: exec required")
	}
	return &Store{pool: exec}
}

// Name implements callback.Sink.
func (s *Store) Name() string { return "postgres" }

// Deliver implements callback.Sink.
func (s *Store) Deliver(ctx context.Context, r callback.Report) error {
	return s.Upsert(ctx, r)
}

// Upsert writes the report, replacing any older one for the session.
// A report older than the stored row is ignored.
func (s *Store) Upsert(ctx context.Context, r callback.Report) error {
	data, err := json.Marshal(r.Intel)
	if err != nil {
		return fmt.Errorf("reports: marshal intelligence: %w", err)
	}
	updatedAt := r.CreatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO intelligence_reports
			(session_id, scam_detected, confidence, total_messages, persona, intelligence, notes, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (session_id) DO UPDATE SET
			scam_detected = EXCLUDED.scam_detected,
			confidence = EXCLUDED.confidence,
			total_messages = EXCLUDED.total_messages,
			persona = EXCLUDED.persona,
			intelligence = EXCLUDED.intelligence,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at
		WHERE intelligence_reports.updated_at <= EXCLUDED.updated_at
	`
	_, err = s.pool.Exec(ctx, query,
		r.Payload.SessionID,
		r.Payload.ScamDetected,
		r.Confidence,
		r.Payload.TotalMessagesExchanged,
		r.PersonaID,
		data,
		r.Payload.AgentNotes,
		updatedAt,
	)
	if err != nil {
		return fmt.Errorf("reports: upsert %s: %w", r.Payload.SessionID, err)
	}
	return nil
}

const selectColumns = `session_id, scam_detected, confidence, total_messages, persona, intelligence, notes, updated_at`

// Get returns the stored report for a session.
func (s *Store) Get(ctx context.Context, sessionID string) (*Stored, error) {
	query := `SELECT ` + selectColumns + ` FROM intelligence_reports WHERE session_id = $1`
	out, err := scanStored(s.pool.QueryRow(ctx, query, sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reports: get %s: %w", sessionID, err)
	}
	return out, nil
}

// Recent lists the most recently updated reports.
func (s *Store) Recent(ctx context.Context, limit int32) ([]Stored, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + selectColumns + ` FROM intelligence_reports ORDER BY updated_at DESC LIMIT $1`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("reports: list recent: %w", err)
	}
	defer rows.Close()

	var out []Stored
	for rows.Next() {
		st, err := scanStored(rows)
		if err != nil {
			return nil, fmt.Errorf("reports: scan: %w", err)
		}
		out = append(out, *st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reports: iterate: %w", err)
	}
	return out, nil
}

func scanStored(row pgx.Row) (*Stored, error) {
	var (
		st  Stored
		raw []byte
	)
	if err := row.Scan(&st.SessionID, &st.ScamDetected, &st.Confidence, &st.TotalMessages,
		&st.PersonaID, &raw, &st.Notes, &st.UpdatedAt); err != nil {
		return nil, err
	}
	st.Intelligence = intel.NewRecord()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &st.Intelligence); err != nil {
			return nil, fmt.Errorf("decode intelligence: %w", err)
		}
	}
	return &st, nil
}
