package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/user/netkit/internal/model"
)

const defaultHistoryLimit = 20

// HistoryStorage handles the result journal.
type HistoryStorage struct {
	db *DB
}

// NewHistoryStorage creates a new history storage handler.
func NewHistoryStorage(db *DB) *HistoryStorage {
	return &HistoryStorage{db: db}
}

// Save stores a completed operation and sets its ID.
func (s *HistoryStorage) Save(entry *model.HistoryEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return s.db.WithLock(func() error {
		result, err := s.db.Exec(
			`INSERT INTO results (operation, target, success, error, duration_ms, payload, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			entry.Operation, entry.Target, boolInt(entry.Success), entry.Error,
			entry.DurationMs, entry.Payload, entry.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to save result: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get result ID: %w", err)
		}
		entry.ID = id
		return nil
	})
}

// Recent returns the newest entries first.
func (s *HistoryStorage) Recent(limit int) ([]model.HistoryEntry, error) {
	return s.query(`SELECT id, operation, target, success, error, duration_ms, payload, created_at
		FROM results ORDER BY created_at DESC, id DESC LIMIT ?`, normalizeLimit(limit))
}

// ByOperation returns the newest entries of one operation first.
func (s *HistoryStorage) ByOperation(operation string, limit int) ([]model.HistoryEntry, error) {
	return s.query(`SELECT id, operation, target, success, error, duration_ms, payload, created_at
		FROM results WHERE operation = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		operation, normalizeLimit(limit))
}

// Since returns every entry created at or after since, newest first.
func (s *HistoryStorage) Since(since time.Time) ([]model.HistoryEntry, error) {
	return s.query(`SELECT id, operation, target, success, error, duration_ms, payload, created_at
		FROM results WHERE created_at >= ? ORDER BY created_at DESC, id DESC`, since.UTC())
}

// Get returns a single entry.
func (s *HistoryStorage) Get(id int64) (*model.HistoryEntry, error) {
	entries, err := s.query(`SELECT id, operation, target, success, error, duration_ms, payload, created_at
		FROM results WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("result %d not found", id)
	}
	return &entries[0], nil
}

// Count returns the number of journaled results.
func (s *HistoryStorage) Count() (int64, error) {
	var n int64
	err := s.db.WithRLock(func() error {
		return s.db.QueryRow("SELECT COUNT(*) FROM results").Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}
	return n, nil
}

// Prune deletes entries created before the given time and returns how many
// were removed.
func (s *HistoryStorage) Prune(before time.Time) (int64, error) {
	var n int64
	err := s.db.WithLock(func() error {
		result, err := s.db.Exec("DELETE FROM results WHERE created_at < ?", before.UTC())
		if err != nil {
			return err
		}
		n, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to prune results: %w", err)
	}
	return n, nil
}

func (s *HistoryStorage) query(query string, args ...interface{}) ([]model.HistoryEntry, error) {
	entries := []model.HistoryEntry{}
	err := s.db.WithRLock(func() error {
		rows, err := s.db.Query(query, args...)
		if err != nil {
			return fmt.Errorf("failed to query results: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				e       model.HistoryEntry
				success int
				errText sql.NullString
				target  sql.NullString
				payload sql.NullString
			)
			if err := rows.Scan(&e.ID, &e.Operation, &target, &success, &errText,
				&e.DurationMs, &payload, &e.CreatedAt); err != nil {
				return fmt.Errorf("failed to scan result: %w", err)
			}
			e.Target = target.String
			e.Success = success == 1
			e.Error = errText.String
			e.Payload = payload.String
			entries = append(entries, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultHistoryLimit
	}
	return limit
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
