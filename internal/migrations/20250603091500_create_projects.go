package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateProjects, downCreateProjects)
}

func upCreateProjects(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	CREATE TABLE projects (
		id          VARCHAR PRIMARY KEY,
		title       VARCHAR NOT NULL DEFAULT '',
		composition JSONB NOT NULL,
		created_at  TIMESTAMP WITH TIME ZONE NOT NULL,
		updated_at  TIMESTAMP WITH TIME ZONE NOT NULL
	);
	CREATE INDEX projects_updated_at_idx ON projects (updated_at DESC);
	`)
	if err != nil {
		return err
	}
	return nil
}

func downCreateProjects(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	DROP TABLE projects;
	`)
	if err != nil {
		return err
	}
	return nil
}
