// Package stats persists lightweight request counters to PostgreSQL. The
// whole package is optional: with no DSN configured every call is a no-op on
// a nil *Store, so handlers never need to branch on whether stats exist.
package stats

import (
	"context"
	"database/sql"

	"github.com/Jairajmehra/projects-api/internal/logger"

	_ "github.com/lib/pq"
)

// Store is the stats database handle.
type Store struct {
	db *sql.DB
}

// Open connects to Postgres and ensures the stats schema. An empty DSN
// returns a nil store, which disables stats entirely.
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, nil
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// ensureSchema creates the counter tables on first run. IF NOT EXISTS keeps
// restarts against an existing database harmless.
func ensureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS _api_stats_total (
            id INT PRIMARY KEY,
            total_requests BIGINT NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS _api_stats_daily (
            day DATE NOT NULL,
            endpoint TEXT NOT NULL,
            requests BIGINT NOT NULL DEFAULT 0,
            PRIMARY KEY (day, endpoint)
        )`,
		`INSERT INTO _api_stats_total(id, total_requests)
         VALUES(1, 0)
         ON CONFLICT (id) DO NOTHING`,
	}
	for i, s := range stmts {
		logger.L().Debug("stats_schema_exec", "idx", i)
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	logger.L().Debug("stats_schema_done")
	return nil
}

// IncrRequest bumps the total and per-endpoint daily counters. Failures are
// logged and swallowed; stats never affect a request outcome.
func (s *Store) IncrRequest(ctx context.Context, endpoint string) {
	if s == nil {
		return
	}
	if _, err := s.db.ExecContext(ctx, "UPDATE _api_stats_total SET total_requests=total_requests+1 WHERE id=1"); err != nil {
		logger.L().Debug("stats_incr_error", "err", err)
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO _api_stats_daily(day, endpoint, requests)
        VALUES(current_date, $1, 1)
        ON CONFLICT (day, endpoint) DO UPDATE SET requests=_api_stats_daily.requests+1`, endpoint); err != nil {
		logger.L().Debug("stats_incr_error", "err", err)
	}
}

// Totals reports the lifetime and current-day request counts.
type Totals struct {
	Total int64
	Today int64
}

// GetTotals reads the counters; missing rows read as zero.
func (s *Store) GetTotals(ctx context.Context) (*Totals, error) {
	t := &Totals{}
	if s == nil {
		return t, nil
	}
	row := s.db.QueryRowContext(ctx, "SELECT total_requests FROM _api_stats_total WHERE id=1")
	_ = row.Scan(&t.Total)
	row2 := s.db.QueryRowContext(ctx, "SELECT COALESCE(SUM(requests), 0) FROM _api_stats_daily WHERE day=current_date")
	_ = row2.Scan(&t.Today)
	return t, nil
}
