package postgres

import "embed"

// Migrations holds the schema migrations, applied at startup with
// pkg/postgres.RunMigrationsFS(dsn, Migrations, "migrations").
//
//go:embed migrations/*.sql
var Migrations embed.FS
