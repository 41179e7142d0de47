// Package postgres implements the FinHealth repositories on PostgreSQL.
// Connections are pooled through pgx; GORM runs on top of the same pool
// for model mapping and migrations.
package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/finhealth/finhealth/internal/config"
	apperrors "github.com/finhealth/finhealth/pkg/errors"
	"github.com/finhealth/finhealth/pkg/logger"
)

// DBConnection owns the PostgreSQL pool and the GORM handle built on it.
type DBConnection struct {
	pool   *pgxpool.Pool
	gorm   *gorm.DB
	config *config.DatabaseConfig
	logger logger.Logger
}

// NewDBConnection builds the pgx pool from cfg, verifies connectivity
// and wraps the pool in a GORM session.
func NewDBConnection(ctx context.Context, cfg *config.DatabaseConfig, log logger.Logger) (*DBConnection, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, apperrors.ErrDatabase.WithError(err).WithDescription("invalid database configuration")
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = time.Duration(cfg.MaxConnLifetime) * time.Second
	poolConfig.MaxConnIdleTime = time.Duration(cfg.MaxConnIdleTime) * time.Second
	poolConfig.HealthCheckPeriod = time.Duration(cfg.HealthCheckPeriod) * time.Second

	connectCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.ConnTimeout)*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, apperrors.ErrDatabase.WithError(err).WithDescription("failed to create connection pool")
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		pool.Close()
		return nil, apperrors.ErrDatabase.WithError(err).WithDescription("failed to initialize ORM")
	}

	conn := &DBConnection{
		pool:   pool,
		gorm:   gormDB,
		config: cfg,
		logger: log.WithComponent("postgres"),
	}
	if err := conn.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info(ctx, "PostgreSQL connection pool initialized",
		logger.String("host", cfg.Host),
		logger.Int("port", cfg.Port),
		logger.String("database", cfg.Database),
		logger.Int("max_conns", cfg.MaxConns),
	)
	return conn, nil
}

// GORM returns the GORM handle repositories run on.
func (db *DBConnection) GORM() *gorm.DB {
	return db.gorm
}

// Pool returns the underlying pgx pool for raw queries and stats.
func (db *DBConnection) Pool() *pgxpool.Pool {
	return db.pool
}

// Ping verifies the database is reachable.
func (db *DBConnection) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	start := time.Now()
	if err := db.pool.Ping(pingCtx); err != nil {
		db.logger.Error(ctx, "database ping failed", err)
		return apperrors.ErrDatabase.WithError(err)
	}
	if latency := time.Since(start); latency > 100*time.Millisecond {
		db.logger.Warn(ctx, "high database latency",
			logger.Duration("latency", latency),
		)
	}
	return nil
}

// HealthCheck reports pool statistics for the health endpoint.
func (db *DBConnection) HealthCheck(ctx context.Context) (map[string]interface{}, error) {
	if err := db.Ping(ctx); err != nil {
		return nil, err
	}

	stats := db.pool.Stat()
	info := map[string]interface{}{
		"status":               "healthy",
		"total_connections":    stats.TotalConns(),
		"idle_connections":     stats.IdleConns(),
		"acquired_connections": stats.AcquiredConns(),
		"max_connections":      db.config.MaxConns,
	}
	if stats.IdleConns() == 0 && stats.TotalConns() >= int32(db.config.MaxConns) {
		info["warning"] = "connection_pool_near_limit"
	}
	return info, nil
}

// Close drains and shuts down the pool.
func (db *DBConnection) Close() {
	db.logger.Info(context.Background(), "closing PostgreSQL connection pool",
		logger.Int64("total_conns", int64(db.pool.Stat().TotalConns())),
	)
	db.pool.Close()
}
