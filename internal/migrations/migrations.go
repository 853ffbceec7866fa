// Package migrations holds the schema as goose Go migrations. The sources are
// embedded so a binary can migrate without the repository on disk.
package migrations

import (
	"context"
	"database/sql"
	"embed"

	_ "github.com/lib/pq"
	"github.com/orgball2608/reel-studio/pkg/errors"
	"github.com/pressly/goose/v3"
)

const dialect = "postgres"

//go:embed *.go
var sources embed.FS

// Open connects through lib/pq and selects the goose dialect.
func Open(dsn string) (*sql.DB, error) {
	if err := goose.SetDialect(dialect); err != nil {
		return nil, errors.Wrap(err, "set goose dialect")
	}
	db, err := sql.Open(dialect, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	return db, nil
}

// Collect lists the compiled migrations in version order.
func Collect() (goose.Migrations, error) {
	goose.SetBaseFS(sources)
	defer goose.SetBaseFS(nil)
	return goose.CollectMigrations(".", 0, goose.MaxVersion)
}

// Run executes a goose command such as up, down, redo, reset, status or
// version against db.
func Run(ctx context.Context, db *sql.DB, command string, args ...string) error {
	if command == "create" {
		return errors.Wrap(errors.ErrInvalidInput, "use Create to add a migration")
	}
	goose.SetBaseFS(sources)
	defer goose.SetBaseFS(nil)
	if err := goose.RunContext(ctx, command, db, ".", args...); err != nil {
		return errors.Wrapf(err, "goose %s", command)
	}
	return nil
}

// Create writes a new Go migration skeleton into dir, the package's source
// directory.
func Create(dir, name string) error {
	if name == "" {
		return errors.Wrap(errors.ErrInvalidInput, "migration name is empty")
	}
	if err := goose.Create(nil, dir, name, "go"); err != nil {
		return errors.Wrapf(err, "create migration %s", name)
	}
	return nil
}
