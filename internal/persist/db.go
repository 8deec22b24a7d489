// Package persist is the optional Postgres layer: the chest-drop ledger
// the oracle bridge attests against. Runs never block on it; writes are
// fire-and-forget from the caller's perspective.
package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/gloomspire/server/internal/config"
)

// connectPing bounds the startup health check so a wedged database fails
// boot quickly instead of hanging it.
const connectPing = 5 * time.Second

// DB wraps the pgx pool the ledger repo queries through.
type DB struct {
	Pool *pgxpool.Pool
	log  *zap.Logger
}

// NewDB opens and pings a pool for the configured DSN. The ledger is
// low-traffic (one write per boss chest), so a single warm connection is
// kept and the ceiling comes from config.
func NewDB(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("ledger dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open ledger pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectPing)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping ledger: %w", err)
	}

	log.Info("ledger database connected", zap.Int("max_conns", cfg.MaxOpenConns))
	return &DB{Pool: pool, log: log}, nil
}

func (db *DB) Close() {
	db.Pool.Close()
}
