package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/olkipaint/backend/internal/metrics"
)

// Config holds PostgreSQL connection pool configuration.
type Config struct {
	URL               string        `mapstructure:"url"`
	PoolMin           int32         `mapstructure:"pool_min"`
	PoolMax           int32         `mapstructure:"pool_max"`
	ConnLifetime      time.Duration `mapstructure:"conn_lifetime"`
	ConnIdleTime      time.Duration `mapstructure:"conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
	ConnectTimeout    time.Duration `mapstructure:"connect_timeout"`
}

// Validate reports whether the pool can be built from this configuration.
func (c Config) Validate() error {
	if c.URL == "" {
		return errors.New("database url is required")
	}
	return nil
}

// withDefaults fills in zero-valued tuning knobs. The catalog and the worker
// are both low-traffic, so the defaults favor few long-lived connections.
func (c Config) withDefaults() Config {
	if c.PoolMin <= 0 {
		c.PoolMin = 2
	}
	if c.PoolMax <= 0 {
		c.PoolMax = 10
	}
	if c.ConnLifetime <= 0 {
		c.ConnLifetime = time.Hour
	}
	if c.ConnIdleTime <= 0 {
		c.ConnIdleTime = 30 * time.Minute
	}
	if c.HealthCheckPeriod <= 0 {
		c.HealthCheckPeriod = time.Minute
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	return c
}

// DB wraps a pgxpool.Pool for the products and contact_requests tables.
type DB struct {
	Pool *pgxpool.Pool
}

// NewDB creates a connection pool from the configuration and verifies
// connectivity before returning.
func NewDB(ctx context.Context, cfg Config) (*DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = cfg.PoolMin
	poolCfg.MaxConns = cfg.PoolMax
	poolCfg.MaxConnLifetime = cfg.ConnLifetime
	poolCfg.MaxConnIdleTime = cfg.ConnIdleTime
	poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriod

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close closes all connections in the pool.
func (db *DB) Close() {
	db.Pool.Close()
}

// Ping verifies database connectivity.
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// UpdateMetrics publishes the current pool state to the connection gauges.
func (db *DB) UpdateMetrics() {
	stat := db.Pool.Stat()
	metrics.DBConnectionsActive.Set(float64(stat.AcquiredConns()))
	metrics.DBConnectionsIdle.Set(float64(stat.IdleConns()))
}

// CollectMetrics refreshes the connection gauges on the given interval until
// ctx is cancelled. Intended to run in its own goroutine.
func (db *DB) CollectMetrics(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			db.UpdateMetrics()
		}
	}
}
