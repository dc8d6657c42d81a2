package store

import (
	"time"

	"github.com/dmelis/melodybot/internal/domain"
)

// HistoryStore is an append-only per-user query log backed by SQLite.
// There is no update or delete operation.
type HistoryStore struct {
	db *DB
}

// NewHistoryStore creates a history store using the given database.
func NewHistoryStore(db *DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// Record appends a query to the user's history with a server-assigned
// timestamp. Failures are logged, never surfaced to the conversation.
func (s *HistoryStore) Record(userID int64, query string) {
	_, err := s.db.sql.Exec(
		`INSERT INTO history (user_id, query, created_at) VALUES (?, ?, ?)`,
		userID, query, time.Now().UTC().Format(time.DateTime),
	)
	if err != nil {
		s.db.log.Error().Err(err).Int64("user", userID).Msg("failed to record history")
	}
}

// Recent returns up to n most recent entries for the user, newest first.
// Entries recorded in the same second keep insertion order.
func (s *HistoryStore) Recent(userID int64, n int) []domain.HistoryEntry {
	rows, err := s.db.sql.Query(
		`SELECT user_id, query, created_at FROM history
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		userID, n,
	)
	if err != nil {
		s.db.log.Error().Err(err).Int64("user", userID).Msg("failed to query history")
		return nil
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		var createdAt string
		if err := rows.Scan(&e.UserID, &e.Query, &createdAt); err != nil {
			s.db.log.Error().Err(err).Msg("failed to scan history row")
			continue
		}
		e.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
		entries = append(entries, e)
	}
	return entries
}
