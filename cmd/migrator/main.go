package main

import (
	"errors"
	"flag"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Applies pending migrations for one service database. Each service owns its
// schema, so the migrations directory is passed per run
// (migrations/workspace or migrations/billing).
func main() {
	var dsn, migrationsDir string

	flag.StringVar(&dsn, "storage-path", "", "postgres dsn, user:pass@host:port/db?query")
	flag.StringVar(&migrationsDir, "migrations-path", "", "directory with the service's migrations")
	flag.Parse()

	if dsn == "" {
		dsn = os.Getenv("STORAGE_PATH")
	}
	if dsn == "" {
		panic("storage path is required (-storage-path or STORAGE_PATH)")
	}

	if migrationsDir == "" {
		migrationsDir = os.Getenv("MIGRATIONS_PATH")
	}
	if migrationsDir == "" {
		panic("migrations path is required (-migrations-path or MIGRATIONS_PATH)")
	}

	m, err := migrate.New("file://"+migrationsDir, "postgres://"+dsn)
	if err != nil {
		panic(err)
	}

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		panic(err)
	}
}
