// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/muvr/profile/internal/entity"
	"github.com/muvr/profile/internal/user"
)

// pgxPool is the subset of *pgxpool.Pool the event log needs. pgxmock's
// pool satisfies it in tests.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

// ConnectOptions controls how Connect waits for the database.
type ConnectOptions struct {
	// MaxRetries is the number of pings retried after the first failure.
	MaxRetries uint64
	// BaseDelay is the first backoff interval; later ones double.
	BaseDelay time.Duration
	Logger    *slog.Logger
}

// PostgresEventLog stores events in the events table.
type PostgresEventLog struct {
	pool pgxPool
	now  func() time.Time
}

var _ entity.EventLog = (*PostgresEventLog)(nil)

// NewPostgresEventLog wraps an existing pool.
func NewPostgresEventLog(pool pgxPool) *PostgresEventLog {
	return &PostgresEventLog{pool: pool, now: time.Now}
}

// Connect opens a pool for dsn and pings it with exponential backoff until
// it answers or the retries run out.
func Connect(ctx context.Context, dsn string, opts ConnectOptions) (*PostgresEventLog, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code(CodeConnectFailed).With("operation", "create pool").Wrap(err)
	}
	if err := ping(ctx, pool, opts); err != nil {
		pool.Close()
		return nil, err
	}
	return NewPostgresEventLog(pool), nil
}

func ping(ctx context.Context, pool pgxPool, opts ConnectOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	base := opts.BaseDelay
	if base <= 0 {
		base = 200 * time.Millisecond
	}
	backoff := retry.WithMaxRetries(opts.MaxRetries, retry.NewExponential(base))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := pool.Ping(ctx); err != nil {
			logger.WarnContext(ctx, "database not ready", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return oops.Code(CodeConnectFailed).With("operation", "ping").With("attempts", attempt).Wrap(err)
	}
	return nil
}

// Close closes the pool.
func (l *PostgresEventLog) Close() {
	l.pool.Close()
}

// Append inserts evt at seq. The (stream, seq) unique constraint turns a
// concurrent writer into a sequence conflict.
func (l *PostgresEventLog) Append(ctx context.Context, stream string, seq uint64, evt user.Event) error {
	rec, err := newRecord(stream, seq, evt, l.now())
	if err != nil {
		return err
	}

	_, err = l.pool.Exec(ctx,
		`INSERT INTO events (id, stream, seq, type, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID.String(), rec.Stream, int64(rec.Seq), string(rec.Type), rec.Payload, rec.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return sequenceConflict(stream, seq)
		}
		return oops.Code(CodeAppendFailed).
			With("stream", stream).
			With("seq", seq).
			With("type", string(rec.Type)).
			Wrap(err)
	}
	return nil
}

// Read loads the stream ordered by seq. A gap in the sequence is reported as
// an error rather than silently folded.
func (l *PostgresEventLog) Read(ctx context.Context, stream string) ([]user.Event, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT id, seq, type, payload, created_at
		 FROM events WHERE stream = $1 ORDER BY seq`,
		stream,
	)
	if err != nil {
		return nil, oops.Code(CodeReadFailed).With("stream", stream).Wrap(err)
	}
	defer rows.Close()

	var events []user.Event
	for rows.Next() {
		var (
			idStr    string
			seq      int64
			typeStr  string
			payload  []byte
			occurred time.Time
		)
		if err := rows.Scan(&idStr, &seq, &typeStr, &payload, &occurred); err != nil {
			return nil, oops.Code(CodeReadFailed).With("stream", stream).Wrap(err)
		}
		id, err := ulid.Parse(idStr)
		if err != nil {
			return nil, oops.Code(CodeReadFailed).With("stream", stream).With("id", idStr).Wrapf(err, "corrupt event id")
		}
		if want := int64(len(events)) + 1; seq != want {
			return nil, oops.Code(CodeReadFailed).
				With("stream", stream).
				With("seq", seq).
				With("expected_seq", want).
				Errorf("event sequence gap")
		}
		rec := Record{
			ID:        id,
			Stream:    stream,
			Seq:       uint64(seq),
			Type:      user.EventType(typeStr),
			Payload:   payload,
			CreatedAt: occurred,
		}
		evt, err := rec.Event()
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code(CodeReadFailed).With("stream", stream).Wrap(err)
	}
	if events == nil {
		events = []user.Event{}
	}
	return events, nil
}
