// Package dbtest connects repository tests to a real PostgreSQL instance
// described by DB_*_TEST environment variables.
package dbtest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/foodtruck-service/internal/config"
	"github.com/vasiliy-maslov/foodtruck-service/internal/db"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func Config() config.PostgresConfig {
	return config.PostgresConfig{
		Host:     envOr("DB_HOST_TEST", "localhost"),
		Port:     envOr("DB_PORT_TEST", "5432"),
		User:     envOr("DB_USER_TEST", "postgres"),
		Password: envOr("DB_PASSWORD_TEST", "123456"),
		DBName:   envOr("DB_NAME_TEST", "foodtruck_test"),
		SSLMode:  envOr("DB_SSLMODE_TEST", "disable"),
		MaxConns: 5,
		// test packages live two levels below the module root
		MigrationsPath: envOr("DB_MIGRATIONS_TEST", "../../migrations"),
	}
}

// Connect returns nil when the test database is unreachable so callers can skip.
func Connect() *db.Postgres {
	cfg := Config()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pg, err := db.New(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Str("host", cfg.Host).Str("dbname", cfg.DBName).Msg("TEST SETUP: database unavailable, repository tests will be skipped")
		return nil
	}

	if err := db.MigrateUp(cfg); err != nil {
		log.Warn().Err(err).Msg("TEST SETUP: failed to migrate test database")
		pg.Close()
		return nil
	}

	return pg
}

// Truncate empties every table of the schema.
func Truncate(tb testing.TB, pool *pgxpool.Pool) {
	tb.Helper()
	_, err := pool.Exec(context.Background(), `
		TRUNCATE TABLE foodtruck.profit_snapshots, foodtruck.order_line_items, foodtruck.orders,
			foodtruck.location_pings, foodtruck.locations, foodtruck.customers, foodtruck.inventory_events,
			foodtruck.products, foodtruck.user_profiles, foodtruck.account_users, foodtruck.accounts
		RESTART IDENTITY CASCADE`)
	require.NoError(tb, err, "failed to truncate tables")
}

// Require skips the test when pg is nil.
func Require(tb testing.TB, pg *db.Postgres) {
	tb.Helper()
	if pg == nil {
		tb.Skip("test database is not available")
	}
}
