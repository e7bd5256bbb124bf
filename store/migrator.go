package store

import (
	"context"
	"embed"
	"log/slog"

	"github.com/pkg/errors"
)

// The schema is kept idempotent (CREATE ... IF NOT EXISTS) so Migrate runs
// on every start. Files live at migration/{driver}/LATEST.sql.

//go:embed migration
var migrationFS embed.FS

// LatestSchemaFileName is the name of the schema file of every driver.
const LatestSchemaFileName = "LATEST.sql"

// Migrate applies the schema for the store's driver.
func (s *Store) Migrate(ctx context.Context) error {
	schema, err := readSchema(s.driver.Type())
	if err != nil {
		return err
	}

	if _, err := s.driver.GetDB().ExecContext(ctx, schema); err != nil {
		return errors.Wrapf(err, "failed to apply %s schema", s.driver.Type())
	}
	slog.Debug("database schema applied", slog.String("driver", s.driver.Type()))
	return nil
}

func readSchema(driver string) (string, error) {
	buf, err := migrationFS.ReadFile("migration/" + driver + "/" + LatestSchemaFileName)
	if err != nil {
		return "", errors.Wrapf(err, "no schema for driver %q", driver)
	}
	return string(buf), nil
}
