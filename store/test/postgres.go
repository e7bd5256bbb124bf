package test

import (
	"os"
	"testing"
)

// GetPostgresDSN returns the DSN of a disposable PostgreSQL database taken
// from POSTGRES_TEST_DSN, or skips the test when it is not set.
func GetPostgresDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN is not set")
	}
	return dsn
}
