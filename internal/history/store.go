package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/promptflow/internal/db"
)

// ErrNotFound is returned by Get when no entry has the requested id.
var ErrNotFound = errors.New("history: generation not found")

// Store persists generation records.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Record inserts an entry. ID and CreatedAt are filled in when empty.
func (s *Store) Record(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generations (
			id, created_at, kind, prompt, status, error_kind, error, model,
			block_count, edge_count, input_tokens, output_tokens, cost_usd, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CreatedAt, string(e.Kind), e.Prompt, string(e.Status), e.ErrorKind, e.Error, e.Model,
		e.BlockCount, e.EdgeCount, e.InputTokens, e.OutputTokens, e.CostUSD, e.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("inserting generation: %w", err)
	}
	return nil
}

const selectColumns = `id, created_at, kind, prompt, status, error_kind, error, model,
	block_count, edge_count, input_tokens, output_tokens, cost_usd, duration_ms`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var e Entry
	var kind, status string
	if err := row.Scan(&e.ID, &e.CreatedAt, &kind, &e.Prompt, &status, &e.ErrorKind, &e.Error, &e.Model,
		&e.BlockCount, &e.EdgeCount, &e.InputTokens, &e.OutputTokens, &e.CostUSD, &e.DurationMS); err != nil {
		return nil, err
	}
	e.Kind = Kind(kind)
	e.Status = Status(status)
	return &e, nil
}

// Get retrieves a single entry.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM generations WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting generation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting generation %s: %w", id, err)
	}
	return e, nil
}

// List returns entries newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(f.Kind))
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}

	query := `SELECT ` + selectColumns + ` FROM generations`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing generations: %w", err)
	}
	defer rows.Close()

	var result []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning generation: %w", err)
		}
		result = append(result, *e)
	}
	return result, rows.Err()
}

// Summarize aggregates totals per kind.
func (s *Store) Summarize(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, COUNT(*),
			SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END),
			COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0), COALESCE(SUM(cost_usd), 0)
		FROM generations GROUP BY kind ORDER BY kind`)
	if err != nil {
		return nil, fmt.Errorf("summarizing generations: %w", err)
	}
	defer rows.Close()

	var result []Summary
	for rows.Next() {
		var sum Summary
		var kind string
		if err := rows.Scan(&kind, &sum.Total, &sum.Failed, &sum.InputTokens, &sum.OutputTokens, &sum.CostUSD); err != nil {
			return nil, fmt.Errorf("scanning summary: %w", err)
		}
		sum.Kind = Kind(kind)
		result = append(result, sum)
	}
	return result, rows.Err()
}
