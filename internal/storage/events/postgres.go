package events

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"city-weather/internal/models"
	"city-weather/internal/storage"
	"city-weather/pkg/apperr"
	"city-weather/pkg/logger"
)

const pgUndefinedTable = "42P01"

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

type PostgresLog struct {
	db     execer
	pool   *pgxpool.Pool
	table  string
	insert string
	l      *logger.Logger
}

func NewPostgresLog(ctx context.Context, dsn, table string, l *logger.Logger) (*PostgresLog, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "create postgres pool")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "postgres ping")
	}

	p := newPostgresLog(pool, table, l)
	p.pool = pool
	return p, nil
}

func newPostgresLog(db execer, table string, l *logger.Logger) *PostgresLog {
	quoted := quoteTable(table)
	return &PostgresLog{
		db:     db,
		table:  quoted,
		insert: insertSQL(quoted, "$1", "$2", "$3"),
		l:      l.With(map[string]any{"component": "events", "driver": "postgres"}),
	}
}

func (p *PostgresLog) Append(ctx context.Context, rec models.EventRecord) error {
	insert := func(ctx context.Context) error {
		if _, err := p.db.Exec(ctx, p.insert, rec.CityName, rec.Timestamp, rec.FilePath); err != nil {
			return p.classify(err)
		}
		return nil
	}

	if err := storage.CreateThenRetry(ctx, insert, p.EnsureSchema); err != nil {
		return err
	}

	p.l.Debug("event appended", map[string]any{"city": rec.CityName, "timestamp": rec.Timestamp})
	return nil
}

func (p *PostgresLog) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, createTableSQL(p.table)); err != nil {
		return errors.Wrapf(err, "create table %s", p.table)
	}
	p.l.Info("event table ensured", map[string]any{"table": p.table})
	return nil
}

func (p *PostgresLog) Ping(ctx context.Context) error {
	return errors.Wrap(p.db.Ping(ctx), "postgres ping")
}

func (p *PostgresLog) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func (p *PostgresLog) classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable {
		return apperr.NewResourceMissing("table "+p.table, err)
	}
	return errors.Wrapf(err, "insert into %s", p.table)
}
