package resources

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

//go:embed schema.sql
var schema string

// DBInstance is the part of a pgx pool the repositories use; pgxmock pools
// satisfy it as well.
type DBInstance interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

type Closable interface {
	Close()
}

func CreateDatabaseConnectionPool(ctx context.Context, cfg *Config) (*pgxpool.Pool, StopFn, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL())
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg(fmt.Sprintf("Unable to parse database connection string: %v", err))
		return nil, noopStop, fmt.Errorf("failed to parse database connection string: %w", err)
	}

	poolCfg.ConnConfig.Tracer = otelpgx.NewTracer()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg(fmt.Sprintf("Unable to connect to database: %v", err))
		return nil, noopStop, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		log.Ctx(ctx).Error().Err(err).Msg(fmt.Sprintf("Unable to ping to database: %v", err))
		return nil, noopStop, fmt.Errorf("failed to ping to database: %w", err)
	}

	stopFn := func(ctx context.Context, _ time.Duration) {
		log.Ctx(ctx).Info().Str("stage", "shut down").Str("component", "database").Msg("closing connection pool")
		pool.Close()
	}

	return pool, stopFn, nil
}

// Migrate applies the idempotent schema.
func Migrate(ctx context.Context, db DBInstance) error {
	_, err := db.Exec(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	return nil
}
