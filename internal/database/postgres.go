package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/timetabl/positano/internal/config"
)

// ApplicationName tags every connection in pg_stat_activity.
const ApplicationName = "positano"

// ErrSchemaMissing is returned when the catalog tables have not been
// migrated yet.
var ErrSchemaMissing = errors.New("catalog schema missing, run cmd/migrate first")

// catalogTables must all exist before the pool is handed out.
var catalogTables = []string{"catalog_imports", "courses", "lectures", "lessons"}

func poolConfig(cfg *config.Config) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxDBConns
	if _, ok := poolCfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		poolCfg.ConnConfig.RuntimeParams["application_name"] = ApplicationName
	}
	return poolCfg, nil
}

// NewPostgresPool connects to the catalog database and checks that the
// schema is in place.
func NewPostgresPool(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	var present int
	err = pool.QueryRow(ctx,
		`SELECT count(*) FROM unnest($1::text[]) AS t(name) WHERE to_regclass(t.name) IS NOT NULL`,
		catalogTables,
	).Scan(&present)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("check schema: %w", err)
	}
	if present != len(catalogTables) {
		pool.Close()
		return nil, ErrSchemaMissing
	}

	log.Info().
		Int32("max_conns", cfg.MaxDBConns).
		Str("application_name", poolCfg.ConnConfig.RuntimeParams["application_name"]).
		Msg("PostgreSQL connected")

	return pool, nil
}
