package storage

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateEntry is returned when an operation for the same message is already journaled.
var ErrDuplicateEntry = errors.New("duplicated journal entry")

// Status - outcome of a journaled operation
type Status string

const (
	SUCCESS Status = "SUCCESS"
	ERROR   Status = "ERROR"
)

// Config - ...
type Config struct {
	DSN string
}

// Entry is one call made against the queue service.
type Entry struct {
	ID        int
	Operation string
	QueueURL  string
	MessageID string
	Status    Status
	Detail    map[string]string
	CreatedDt time.Time
}

// Journal records queue operations.
type Journal interface {
	Record(ctx context.Context, entry *Entry) error
	Recent(ctx context.Context, limit int) ([]*Entry, error)
	Close()
}

// NopJournal is used when no storage is configured.
type NopJournal struct{}

// Record ...
func (NopJournal) Record(context.Context, *Entry) error { return nil }

// Recent ...
func (NopJournal) Recent(context.Context, int) ([]*Entry, error) { return nil, nil }

// Close ...
func (NopJournal) Close() {}
