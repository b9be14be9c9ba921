package infra

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"document-gateway/submitter/domain"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStatsStore grava um journal de desfechos (um registro por submissão).
//
// Guarda apenas metadados da chamada; o documento e o contador do gate não são
// persistidos.
type SQLiteStatsStore struct {
	db         *sql.DB
	insertStmt *sql.Stmt
	closeOnce  sync.Once
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS submissions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id  TEXT    NOT NULL,
	outcome     TEXT    NOT NULL,
	status_code INTEGER NOT NULL,
	waited_ms   INTEGER NOT NULL,
	at          INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_submissions_at ON submissions(at);
`

// NewSQLiteStatsStore abre (ou cria) o banco em path. ":memory:" serve para testes.
func NewSQLiteStatsStore(path string) (*SQLiteStatsStore, error) {
	if path == "" {
		return nil, &domain.ConfigurationError{Field: "sqlite_path", Reason: "must not be empty"}
	}

	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite só suporta um writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	stmt, err := db.Prepare(`INSERT INTO submissions (request_id, outcome, status_code, waited_ms, at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}

	return &SQLiteStatsStore{db: db, insertStmt: stmt}, nil
}

func (s *SQLiteStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.insertStmt.ExecContext(ctx,
		ev.RequestID,
		string(ev.Status),
		ev.StatusCode,
		ev.Waited.Milliseconds(),
		at.UnixMilli(),
	)
	return err
}

// CountByOutcome conta os registros com `at` >= since.
func (s *SQLiteStatsStore) CountByOutcome(ctx context.Context, since time.Time) (map[domain.OutcomeStatus]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT outcome, COUNT(*) FROM submissions WHERE at >= ? GROUP BY outcome`, since.UnixMilli())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[domain.OutcomeStatus]int64)
	for rows.Next() {
		var outcome string
		var n int64
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, err
		}
		out[domain.OutcomeStatus(outcome)] = n
	}
	return out, rows.Err()
}

func (s *SQLiteStatsStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.insertStmt.Close()
		err = s.db.Close()
	})
	return err
}
