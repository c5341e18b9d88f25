// File path: internal/catalog/store.go
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/recbridge/recbridge/internal/recording"
)

// Store persists parsed recordings in a SQLite catalog. The schema is
// migrated on open. The core parsing packages never touch this store;
// persistence happens strictly at the API layer.
type Store struct {
	db *sqlx.DB
}

var ErrNotFound = errors.New("recording not found")

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS recordings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		format TEXT NOT NULL,
		content TEXT NOT NULL,
		result_json TEXT NOT NULL,
		action_count INTEGER NOT NULL DEFAULT 0,
		error_count INTEGER NOT NULL DEFAULT 0,
		warning_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_recordings_format ON recordings(format)`,
	`CREATE TABLE IF NOT EXISTS parse_audit (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		recording_id INTEGER,
		event TEXT NOT NULL,
		detail TEXT,
		created_at TIMESTAMP NOT NULL,
		FOREIGN KEY(recording_id) REFERENCES recordings(id)
	)`,
}

// Open constructs a Store backed by the SQLite database at the given
// path and migrates the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("catalog path required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog path: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", abs)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping catalog: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the underlying database resources.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	for i, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("execute schema statement %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}

// Recording is a catalog row together with its decoded parse result.
type Recording struct {
	ID        int64                           `json:"id"`
	Name      string                          `json:"name"`
	Format    recording.Format                `json:"format"`
	Content   string                          `json:"content,omitempty"`
	Result    *recording.UniversalParseResult `json:"result,omitempty"`
	CreatedAt time.Time                       `json:"createdAt"`
}

// Summary is the listing view of a catalog row, without the raw content
// or full result payload.
type Summary struct {
	ID           int64            `json:"id"`
	Name         string           `json:"name"`
	Format       recording.Format `json:"format"`
	ActionCount  int              `json:"actionCount"`
	ErrorCount   int              `json:"errorCount"`
	WarningCount int              `json:"warningCount"`
	CreatedAt    time.Time        `json:"createdAt"`
}

type recordingRow struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	Format       string    `db:"format"`
	Content      string    `db:"content"`
	ResultJSON   string    `db:"result_json"`
	ActionCount  int       `db:"action_count"`
	ErrorCount   int       `db:"error_count"`
	WarningCount int       `db:"warning_count"`
	CreatedAt    time.Time `db:"created_at"`
}

// SaveRecording stores the raw content and its parse result, plus an
// audit row, in one transaction.
func (s *Store) SaveRecording(ctx context.Context, name, content string, result *recording.UniversalParseResult) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("catalog not initialised")
	}
	if result == nil {
		return 0, errors.New("parse result required")
	}
	if strings.TrimSpace(name) == "" {
		name = "recording"
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("encode parse result: %w", err)
	}

	var id int64
	err = withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO recordings (name, format, content, result_json, action_count, error_count, warning_count, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			name, string(result.Format), content, string(payload),
			len(result.Actions), len(result.ParseErrors), len(result.Warnings),
			time.Now().UTC())
		if err != nil {
			return fmt.Errorf("insert recording: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("read insert id: %w", err)
		}
		detail := fmt.Sprintf("parsed %d actions, %d errors", len(result.Actions), len(result.ParseErrors))
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO parse_audit (recording_id, event, detail, created_at) VALUES (?, ?, ?, ?)`,
			id, "parse", detail, time.Now().UTC()); err != nil {
			return fmt.Errorf("insert audit row: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// ListRecordings returns catalog summaries, newest first.
func (s *Store) ListRecordings(ctx context.Context) ([]Summary, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("catalog not initialised")
	}
	var rows []recordingRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, name, format, '' AS content, '' AS result_json, action_count, error_count, warning_count, created_at
		 FROM recordings ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list recordings: %w", err)
	}
	summaries := make([]Summary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, Summary{
			ID:           row.ID,
			Name:         row.Name,
			Format:       recording.Format(row.Format),
			ActionCount:  row.ActionCount,
			ErrorCount:   row.ErrorCount,
			WarningCount: row.WarningCount,
			CreatedAt:    row.CreatedAt,
		})
	}
	return summaries, nil
}

// GetRecording loads a single catalog row with its decoded result.
func (s *Store) GetRecording(ctx context.Context, id int64) (*Recording, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("catalog not initialised")
	}
	var row recordingRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, name, format, content, result_json, action_count, error_count, warning_count, created_at
		 FROM recordings WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load recording %d: %w", id, err)
	}
	var result recording.UniversalParseResult
	if err := json.Unmarshal([]byte(row.ResultJSON), &result); err != nil {
		return nil, fmt.Errorf("decode stored result %d: %w", id, err)
	}
	return &Recording{
		ID:        row.ID,
		Name:      row.Name,
		Format:    recording.Format(row.Format),
		Content:   row.Content,
		Result:    &result,
		CreatedAt: row.CreatedAt,
	}, nil
}

func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
