package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/susu3304/pointbot/internal/ledger"
)

// SQLiteStore is the single-file SQL ledger backend.
type SQLiteStore struct {
	db *sql.DB
}

var _ ledger.Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS points (
		identity TEXT PRIMARY KEY,
		score    INTEGER NOT NULL
	);
	`)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT identity, score FROM points`)
	if err != nil {
		return nil, fmt.Errorf("query points: %w", err)
	}
	defer rows.Close()

	points := make(map[string]int64)
	for rows.Next() {
		var identity string
		var score int64
		if err := rows.Scan(&identity, &score); err != nil {
			return nil, fmt.Errorf("scan points: %w", err)
		}
		points[identity] = score
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, ledger.ErrEmptyLedger
	}
	return points, nil
}

func (s *SQLiteStore) Save(ctx context.Context, points map[string]int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM points`); err != nil {
		return fmt.Errorf("clear points: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO points (identity, score) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for identity, score := range points {
		if _, err := stmt.ExecContext(ctx, identity, score); err != nil {
			return fmt.Errorf("insert %s: %w", identity, err)
		}
	}
	return tx.Commit()
}
