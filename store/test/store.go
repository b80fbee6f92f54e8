// Package test provides store fixtures backed by a real database.
package test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/gotadate/internal/profile"
	"github.com/hrygo/gotadate/store"
	"github.com/hrygo/gotadate/store/db"
)

// NewTestingStore opens a migrated store. The driver is chosen by the DRIVER
// environment variable: sqlite (default) uses a temporary file, postgres uses
// POSTGRES_TEST_DSN and skips the test when it is unset.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()

	p := getTestingProfile(t)
	dbDriver, err := db.NewDBDriver(p)
	require.NoError(t, err, "failed to create db driver")

	s := store.New(dbDriver, p)
	require.NoError(t, s.Migrate(ctx), "failed to migrate db")
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func getTestingProfile(t *testing.T) *profile.Profile {
	p := &profile.Profile{
		Mode:   "dev",
		Driver: getDriverFromEnv(),
		Data:   t.TempDir(),
	}
	p.FromEnv()

	if p.Driver == "postgres" {
		p.DSN = os.Getenv("POSTGRES_TEST_DSN")
		if p.DSN == "" {
			t.Skip("POSTGRES_TEST_DSN not set")
		}
	}
	require.NoError(t, p.Validate())
	return p
}

func getDriverFromEnv() string {
	if driver := os.Getenv("DRIVER"); driver != "" {
		return driver
	}
	return "sqlite"
}
