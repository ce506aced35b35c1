package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"
)

const uniqueViolation = "23505"

const schema = `
create table if not exists t_journal (
	id serial primary key,
	operation text not null,
	queue_url text not null,
	message_id text not null default '',
	status text not null,
	detail jsonb not null default '{}',
	created_dt timestamp not null default localtimestamp
);
create unique index if not exists journal_message_index
	on t_journal(operation, message_id) where message_id <> '';
`

// PGJournal - ...
type PGJournal struct {
	pool *pgxpool.Pool
}

// InitPGJournal connects and makes sure the journal table exists.
func InitPGJournal(ctx context.Context, cfg Config) (*PGJournal, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, err
	}
	return &PGJournal{
		pool: pool,
	}, nil
}

// Record - ...
func (repo *PGJournal) Record(ctx context.Context, entry *Entry) error {
	detail := entry.Detail
	if detail == nil {
		detail = map[string]string{}
	}
	query := `
	insert into t_journal(operation, queue_url, message_id, status, detail)
	values ($1, $2, $3, $4, $5)
	returning id, created_dt`
	err := repo.pool.QueryRow(ctx, query,
		entry.Operation,
		entry.QueueURL,
		entry.MessageID,
		string(entry.Status),
		detail,
	).Scan(&entry.ID, &entry.CreatedDt)
	if err != nil {
		return translate(err)
	}
	return nil
}

// Recent returns the newest entries first.
func (repo *PGJournal) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	query := `
	select id, operation, queue_url, message_id, status, detail, created_dt
	from t_journal
	order by id desc
	limit $1`
	rows, err := repo.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var entry Entry
		var status string
		err := rows.Scan(
			&entry.ID,
			&entry.Operation,
			&entry.QueueURL,
			&entry.MessageID,
			&status,
			&entry.Detail,
			&entry.CreatedDt,
		)
		if err != nil {
			return nil, err
		}
		entry.Status = Status(status)
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

// Close ...
func (repo *PGJournal) Close() {
	repo.pool.Close()
}

func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateEntry
	}
	return err
}
