//go:build integration

// Package testutil starts throwaway Postgres instances for integration tests.
package testutil

import (
	"context"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/butecodosdevs/buteco-core/pkg/database"
)

const postgresImage = "postgres:16-alpine"

// StartPostgres runs a container, connects with the given driver and
// registers cleanup on t.
func StartPostgres(t *testing.T, driver string) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	pg, err := postgres.Run(ctx,
		postgresImage,
		postgres.WithDatabase("buteco"),
		postgres.WithUsername("buteco"),
		postgres.WithPassword("buteco"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, pg)
	require.NoError(t, err)

	connStr, err := pg.ConnectionString(ctx)
	require.NoError(t, err)
	u, err := url.Parse(connStr)
	require.NoError(t, err)
	q := u.Query()
	q.Set("sslmode", "disable")
	u.RawQuery = q.Encode()

	cfg := database.DefaultConfig()
	cfg.Driver = driver
	cfg.DSN = u.String()
	cfg.TimeZone = "UTC"
	db, err := database.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// InsertUser adds a row to "user" the way the registration service does.
func InsertUser(t *testing.T, db *sqlx.DB, discordID, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.ExecContext(context.Background(),
		`INSERT INTO "user" (id, "discordId", name) VALUES ($1, $2, $3)`,
		id, discordID, name)
	require.NoError(t, err)
	return id
}
