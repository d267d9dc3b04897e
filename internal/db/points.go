package db

import (
	"context"

	"github.com/susu3304/pointbot/internal/ledger"
)

var _ ledger.Store = (*DB)(nil)

// Load reads every row of the points table.
func (db *DB) Load(ctx context.Context) (map[string]int64, error) {
	rows, err := db.pool.Query(ctx, "SELECT identity, score FROM points")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := make(map[string]int64)
	for rows.Next() {
		var identity string
		var score int64
		if err := rows.Scan(&identity, &score); err != nil {
			return nil, err
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

// Save replaces the table contents with points in a single transaction.
func (db *DB) Save(ctx context.Context, points map[string]int64) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM points`); err != nil {
		return err
	}
	for identity, score := range points {
		if _, err := tx.Exec(ctx,
			`INSERT INTO points (identity, score) VALUES ($1, $2)`,
			identity, score,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
