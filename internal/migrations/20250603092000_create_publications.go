package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreatePublications, downCreatePublications)
}

func upCreatePublications(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	CREATE TABLE publications (
		id           SERIAL PRIMARY KEY,
		project_id   VARCHAR NOT NULL REFERENCES projects (id) ON DELETE CASCADE,
		sink         VARCHAR NOT NULL,
		artifact_uri VARCHAR NOT NULL,
		status       VARCHAR NOT NULL,
		error        TEXT NOT NULL DEFAULT '',
		created_at   TIMESTAMP WITH TIME ZONE NOT NULL
	);
	CREATE INDEX publications_project_idx ON publications (project_id, created_at DESC);
	`)
	if err != nil {
		return err
	}
	return nil
}

func downCreatePublications(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	DROP TABLE publications;
	`)
	if err != nil {
		return err
	}
	return nil
}
