package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/coursehub/coursehub/internal/config"
)

// ConnectDatabase opens the connection pool and verifies it with a ping.
// Transient failures are retried a bounded number of times with a constant
// backoff before the error is treated as permanent.
func ConnectDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("parse database dsn: %w", err)
	}

	var pool *pgxpool.Pool
	backoff := retry.WithMaxRetries(uint64(cfg.ConnectRetries), retry.NewConstant(cfg.ConnectBackoff))

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			logger.Warn("database connect failed, retrying", zap.Error(err))
			return retry.RetryableError(err)
		}
		if err = pool.Ping(ctx); err != nil {
			pool.Close()
			logger.Warn("database ping failed, retrying", zap.Error(err))
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	logger.Info("Connected to database")
	return pool, nil
}
