// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// SQLite stores summaries in a single SQLite table. Citations and degraded
// stages are kept as JSON columns.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates the database at path and its schema.
func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite store: empty path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS summaries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			topic TEXT NOT NULL,
			query TEXT,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			citations TEXT NOT NULL,
			reasoning TEXT,
			model_used TEXT,
			mode TEXT,
			degraded TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_summaries_created_at ON summaries(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save inserts the summary and sets its ID.
func (s *SQLite) Save(ctx context.Context, sum *types.ResearchSummary) (int64, error) {
	citJSON, err := json.Marshal(sum.Citations)
	if err != nil {
		return 0, fmt.Errorf("marshaling citations: %w", err)
	}
	var degJSON []byte
	if len(sum.Degraded) > 0 {
		if degJSON, err = json.Marshal(sum.Degraded); err != nil {
			return 0, fmt.Errorf("marshaling degraded stages: %w", err)
		}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO summaries (topic, query, title, content, citations, reasoning, model_used, mode, degraded, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.Topic, sum.Query, sum.Title, sum.Content, string(citJSON), sum.Reasoning,
		sum.ModelUsed, string(sum.Mode), nullString(degJSON),
		sum.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting summary: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading summary id: %w", err)
	}
	sum.ID = id
	return id, nil
}

const selectColumns = `id, topic, query, title, content, citations, reasoning, model_used, mode, degraded, created_at`

// Get returns the summary with id or ErrNotFound.
func (s *SQLite) Get(ctx context.Context, id int64) (*types.ResearchSummary, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM summaries WHERE id = ?`, id)
	sum, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading summary %d: %w", id, err)
	}
	return sum, nil
}

// List returns matching summaries newest first.
func (s *SQLite) List(ctx context.Context, opts ListOptions) ([]types.ResearchSummary, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT ` + selectColumns + ` FROM summaries`)
	if q := strings.TrimSpace(opts.Query); q != "" {
		qb.WriteString(` WHERE lower(topic) LIKE ? OR lower(title) LIKE ?`)
		pattern := "%" + strings.ToLower(q) + "%"
		args = append(args, pattern, pattern)
	}
	qb.WriteString(` ORDER BY id DESC LIMIT ? OFFSET ?`)
	args = append(args, opts.limit(), opts.Offset)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("listing summaries: %w", err)
	}
	defer rows.Close()

	var out []types.ResearchSummary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning summary: %w", err)
		}
		out = append(out, *sum)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(sc scanner) (*types.ResearchSummary, error) {
	var (
		sum        types.ResearchSummary
		query      sql.NullString
		citJSON    string
		reasoning  sql.NullString
		modelUsed  sql.NullString
		mode       sql.NullString
		degJSON    sql.NullString
		createdRaw string
	)
	if err := sc.Scan(&sum.ID, &sum.Topic, &query, &sum.Title, &sum.Content, &citJSON,
		&reasoning, &modelUsed, &mode, &degJSON, &createdRaw); err != nil {
		return nil, err
	}

	sum.Query = query.String
	sum.Reasoning = reasoning.String
	sum.ModelUsed = modelUsed.String
	sum.Mode = types.ResearchMode(mode.String)

	if err := json.Unmarshal([]byte(citJSON), &sum.Citations); err != nil {
		return nil, fmt.Errorf("parsing citations: %w", err)
	}
	if degJSON.Valid && degJSON.String != "" {
		if err := json.Unmarshal([]byte(degJSON.String), &sum.Degraded); err != nil {
			return nil, fmt.Errorf("parsing degraded stages: %w", err)
		}
	}
	t, err := time.Parse(time.RFC3339Nano, createdRaw)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	sum.CreatedAt = t
	return &sum, nil
}

func nullString(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
