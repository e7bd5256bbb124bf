// Package test runs the store against every supported driver.
package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/haircutbot/internal/profile"
	"github.com/hrygo/haircutbot/store"
	"github.com/hrygo/haircutbot/store/db"
)

// Drivers lists the drivers every store test runs against.
var Drivers = []string{"sqlite", "postgres"}

// NewTestingStore opens a migrated store for driver. SQLite runs in memory;
// PostgreSQL needs POSTGRES_TEST_DSN and its appointment table is emptied.
func NewTestingStore(ctx context.Context, t *testing.T, driver string) *store.Store {
	t.Helper()

	p := &profile.Profile{Mode: "dev", Driver: driver, Timezone: "UTC"}
	switch driver {
	case "sqlite":
		p.DSN = ":memory:"
	case "postgres":
		p.DSN = GetPostgresDSN(t)
	}

	dbDriver, err := db.NewDBDriver(p)
	require.NoError(t, err)

	s := store.New(dbDriver, p)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(ctx))

	if driver == "postgres" {
		_, err := dbDriver.GetDB().ExecContext(ctx, "TRUNCATE appointment RESTART IDENTITY")
		require.NoError(t, err)
	}
	return s
}
