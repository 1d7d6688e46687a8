// Package store provides the key-value substrates the ledger persists to.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/foogie/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("store: key not found")

// Store is a SQLite-backed key-value store with a day archive.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the database location under the user's data directory.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "foogie", "foogie.db")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "foogie", "foogie.db")
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the raw value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, nil
}

// Put unconditionally writes value under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, ?)`,
		key, value, now())
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// CompareAndSwap writes next only if the stored value still equals prev.
// A nil prev means the key must not exist yet.
func (s *Store) CompareAndSwap(ctx context.Context, key string, prev, next []byte) (bool, error) {
	var (
		res sql.Result
		err error
	)
	if prev == nil {
		res, err = s.db.ExecContext(ctx, `INSERT OR IGNORE INTO kv (key, value, updated_at) VALUES (?, ?, ?)`,
			key, next, now())
	} else {
		res, err = s.db.ExecContext(ctx, `UPDATE kv SET value = ?, updated_at = ? WHERE key = ? AND value = ?`,
			next, now(), key, prev)
	}
	if err != nil {
		return false, fmt.Errorf("swapping %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key)
	return err
}

// ArchiveDay stores a superseded day. Re-archiving the same date replaces it.
func (s *Store) ArchiveDay(ctx context.Context, rec model.DayRecord) error {
	meals, err := json.Marshal(rec.Meals)
	if err != nil {
		return fmt.Errorf("encoding meals: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO day_archive
		(date, goal, meal_count, total_calories, total_protein, total_carbs, total_fats, meals_json, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Date, rec.Goal, rec.MealCount, rec.TotalCalories, rec.TotalProtein,
		rec.TotalCarbs, rec.TotalFats, string(meals), now(),
	)
	if err != nil {
		return fmt.Errorf("archiving %s: %w", rec.Date, err)
	}
	return nil
}

// History returns up to limit archived days, newest first. limit <= 0 means all.
func (s *Store) History(ctx context.Context, limit int) ([]model.DayRecord, error) {
	query := `SELECT date, goal, meal_count, total_calories, total_protein, total_carbs, total_fats, meals_json
		FROM day_archive ORDER BY date DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.DayRecord
	for rows.Next() {
		var rec model.DayRecord
		var mealsJSON string
		if err := rows.Scan(&rec.Date, &rec.Goal, &rec.MealCount, &rec.TotalCalories,
			&rec.TotalProtein, &rec.TotalCarbs, &rec.TotalFats, &mealsJSON); err != nil {
			return nil, err
		}
		// A damaged meals column still leaves the totals usable.
		_ = json.Unmarshal([]byte(mealsJSON), &rec.Meals)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
