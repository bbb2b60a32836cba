package index

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"scribe/internal/services"
)

const schemaVersion = 1

//go:embed schema.sql
var schemaSQL string

func ensureSchema(ctx context.Context, db *sql.DB) error {
	var name string
	err := db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'`,
	).Scan(&name)
	switch {
	case err == sql.ErrNoRows:
		return createSchema(ctx, db)
	case err != nil:
		return services.Wrap(services.ErrStorage, "index", "ensure schema", "inspect database", err)
	}

	var version int
	if err := db.QueryRowContext(ctx, `SELECT version FROM schema_version`).Scan(&version); err != nil {
		return services.Wrap(services.ErrStorage, "index", "ensure schema", "read schema version", err)
	}
	if version != schemaVersion {
		return services.Wrap(services.ErrStorage, "index", "ensure schema",
			fmt.Sprintf("unsupported schema version %d (want %d)", version, schemaVersion), nil)
	}
	return nil
}

func createSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return services.Wrap(services.ErrStorage, "index", "create schema", "begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return services.Wrap(services.ErrStorage, "index", "create schema", "apply schema", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, schemaVersion); err != nil {
		return services.Wrap(services.ErrStorage, "index", "create schema", "record schema version", err)
	}
	if err := tx.Commit(); err != nil {
		return services.Wrap(services.ErrStorage, "index", "create schema", "commit", err)
	}
	return nil
}
