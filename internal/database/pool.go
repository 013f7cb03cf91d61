// Package database loads day files into warehouse landing tables.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/willfong/incremental-datagen/internal/config"
)

// ensureDSNParam appends key=value to a MySQL DSN unless key is already set
func ensureDSNParam(dsn, key, value string) string {
	if strings.Contains(strings.ToLower(dsn), strings.ToLower(key)+"=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + key + "=" + value
	}
	return dsn + "?" + key + "=" + value
}

// Pool wraps a sql.DB and counts the statements run through it
type Pool struct {
	db     *sql.DB
	config config.DatabaseConfig

	totalQueries   atomic.Int64
	failedQueries  atomic.Int64
	totalLatencyNs atomic.Int64
}

// NewPool opens a connection pool. For MySQL the DSN gets parseTime and
// allowAllFiles so DATETIME columns scan and LOAD DATA LOCAL works.
func NewPool(cfg config.DatabaseConfig) (*Pool, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required")
	}

	driver := cfg.Driver
	if driver == "" {
		driver = config.DBDriver
	}

	dsn := cfg.DSN
	if driver == "mysql" {
		dsn = ensureDSNParam(dsn, "parseTime", "true")
		dsn = ensureDSNParam(dsn, "allowAllFiles", "true")
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return NewPoolFromDB(db, cfg), nil
}

// NewPoolFromDB wraps an already opened database and applies the pool limits
func NewPoolFromDB(db *sql.DB, cfg config.DatabaseConfig) *Pool {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return &Pool{db: db, config: cfg}
}

// Connect verifies the database connection is working
func (p *Pool) Connect(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Close gracefully shuts down the connection pool
func (p *Pool) Close() error {
	return p.db.Close()
}

// QueryRowContext executes a query expected to return at most one row
func (p *Pool) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := p.db.QueryRowContext(ctx, query, args...)
	p.recordQuery(time.Since(start), row.Err())
	return row
}

// ExecContext executes a statement that doesn't return rows
func (p *Pool) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := p.db.ExecContext(ctx, query, args...)
	p.recordQuery(time.Since(start), err)
	return result, err
}

func (p *Pool) recordQuery(duration time.Duration, err error) {
	p.totalQueries.Add(1)
	p.totalLatencyNs.Add(duration.Nanoseconds())
	if err != nil {
		p.failedQueries.Add(1)
	}
}

// Stats returns current pool statistics
func (p *Pool) Stats() PoolStats {
	dbStats := p.db.Stats()
	total := p.totalQueries.Load()

	var avg time.Duration
	if total > 0 {
		avg = time.Duration(p.totalLatencyNs.Load() / total)
	}

	return PoolStats{
		OpenConnections: dbStats.OpenConnections,
		InUse:           dbStats.InUse,
		Idle:            dbStats.Idle,
		TotalQueries:    total,
		FailedQueries:   p.failedQueries.Load(),
		AvgLatency:      avg,
	}
}

// PoolStats contains connection pool and statement statistics
type PoolStats struct {
	OpenConnections int
	InUse           int
	Idle            int

	TotalQueries  int64
	FailedQueries int64
	AvgLatency    time.Duration
}
