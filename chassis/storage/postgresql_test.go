package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", Message: "duplicate key value"})
	assert.Equal(t, ErrDuplicateEntry, translate(err))

	other := &pgconn.PgError{Code: "42P01", Message: "relation does not exist"}
	assert.Equal(t, other, translate(other))

	plain := errors.New("conn closed")
	assert.Equal(t, plain, translate(plain))
}

func TestNopJournal(t *testing.T) {
	var j Journal = NopJournal{}
	require.NoError(t, j.Record(context.Background(), &Entry{Operation: "send_message"}))
	entries, err := j.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
	j.Close()
}

func setupJournal(t *testing.T) *PGJournal {
	dsn := os.Getenv("TEST_PG_DSN")
	if dsn == "" {
		t.Skip("Skipping journal tests. TEST_PG_DSN env variable not set.")
	}
	journal, err := InitPGJournal(context.Background(), Config{DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(journal.Close)
	return journal
}

func TestPGJournalRecordAndRecent(t *testing.T) {
	journal := setupJournal(t)
	ctx := context.Background()
	messageID := uuid.NewString()

	entry := &Entry{
		Operation: "send_message",
		QueueURL:  "http://localhost:4566/000000000000/orders",
		MessageID: messageID,
		Status:    SUCCESS,
		Detail:    map[string]string{"body": "hello"},
	}
	require.NoError(t, journal.Record(ctx, entry))
	assert.NotZero(t, entry.ID)

	err := journal.Record(ctx, &Entry{
		Operation: "send_message",
		QueueURL:  entry.QueueURL,
		MessageID: messageID,
		Status:    SUCCESS,
	})
	require.ErrorIs(t, err, ErrDuplicateEntry)

	entries, err := journal.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
	assert.Equal(t, SUCCESS, entries[0].Status)
	assert.Equal(t, "hello", entries[0].Detail["body"])
}
