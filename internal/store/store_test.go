package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmelis/melodybot/internal/logging"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	log := logging.New(nil, "silent")
	db, err := Open(":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// --- DB/Migration tests ---

func TestOpen_InMemory(t *testing.T) {
	db := testDB(t)
	assert.NotNil(t, db)
	assert.NotNil(t, db.SQL())
}

func TestMigrations_Applied(t *testing.T) {
	db := testDB(t)

	var count int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), count)
}

func TestMigrations_Idempotent(t *testing.T) {
	db := testDB(t)

	// Running migrate again should be a no-op
	err := db.migrate()
	require.NoError(t, err)

	var count int
	err = db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), count)
}

func TestSchema_HistoryTableExists(t *testing.T) {
	db := testDB(t)

	var name string
	err := db.sql.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='history'",
	).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "history", name)
}

// --- History Store tests ---

func TestHistory_RecordAndRecent(t *testing.T) {
	hs := NewHistoryStore(testDB(t))

	hs.Record(1, "daft punk")
	hs.Record(1, "aphex twin")

	entries := hs.Recent(1, 10)
	require.Len(t, entries, 2)
	assert.Equal(t, "aphex twin", entries[0].Query)
	assert.Equal(t, "daft punk", entries[1].Query)
}

func TestHistory_RetentionCap(t *testing.T) {
	hs := NewHistoryStore(testDB(t))

	for i := 1; i <= 15; i++ {
		hs.Record(1, fmt.Sprintf("query %02d", i))
	}

	entries := hs.Recent(1, 10)
	require.Len(t, entries, 10)

	// exactly the last 10, most recent first
	for i, e := range entries {
		assert.Equal(t, fmt.Sprintf("query %02d", 15-i), e.Query)
	}
}

func TestHistory_PerUserIsolation(t *testing.T) {
	hs := NewHistoryStore(testDB(t))

	hs.Record(1, "one")
	hs.Record(2, "two")

	entries := hs.Recent(1, 10)
	require.Len(t, entries, 1)
	assert.Equal(t, "one", entries[0].Query)
	assert.Equal(t, int64(1), entries[0].UserID)
}

func TestHistory_EmptyForUnknownUser(t *testing.T) {
	hs := NewHistoryStore(testDB(t))
	assert.Empty(t, hs.Recent(99, 10))
}
