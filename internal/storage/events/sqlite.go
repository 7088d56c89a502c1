package events

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"city-weather/internal/models"
	"city-weather/internal/storage"
	"city-weather/pkg/apperr"
	"city-weather/pkg/logger"
)

const memoryPath = ":memory:"

// SQLiteLog is the embedded alternative to PostgresLog for single-node runs.
type SQLiteLog struct {
	db     *sql.DB
	table  string
	insert string
	l      *logger.Logger
}

// OpenSQLiteLog opens (or creates) the database file at path. ":memory:"
// keeps everything in process.
func OpenSQLiteLog(path, table string, l *logger.Logger) (*SQLiteLog, error) {
	dsn := memoryPath
	if path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrap(err, "create db directory")
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	quoted := quoteTable(table)
	return &SQLiteLog{
		db:     db,
		table:  quoted,
		insert: insertSQL(quoted, "?", "?", "?"),
		l:      l.With(map[string]any{"component": "events", "driver": "sqlite"}),
	}, nil
}

func (s *SQLiteLog) Append(ctx context.Context, rec models.EventRecord) error {
	insert := func(ctx context.Context) error {
		if _, err := s.db.ExecContext(ctx, s.insert, rec.CityName, rec.Timestamp, rec.FilePath); err != nil {
			return s.classify(err)
		}
		return nil
	}

	if err := storage.CreateThenRetry(ctx, insert, s.EnsureSchema); err != nil {
		return err
	}

	s.l.Debug("event appended", map[string]any{"city": rec.CityName, "timestamp": rec.Timestamp})
	return nil
}

func (s *SQLiteLog) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL(s.table)); err != nil {
		return errors.Wrapf(err, "create table %s", s.table)
	}
	s.l.Info("event table ensured", map[string]any{"table": s.table})
	return nil
}

func (s *SQLiteLog) Ping(ctx context.Context) error {
	return errors.Wrap(s.db.PingContext(ctx), "sqlite ping")
}

func (s *SQLiteLog) Close() error {
	return s.db.Close()
}

func (s *SQLiteLog) classify(err error) error {
	if strings.Contains(err.Error(), "no such table") {
		return apperr.NewResourceMissing("table "+s.table, err)
	}
	return errors.Wrapf(err, "insert into %s", s.table)
}
