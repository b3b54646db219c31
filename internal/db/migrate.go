package db

import (
	"embed"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate brings the schema up to date from the embedded SQL files. It runs
// on its own connection so a failed migration never poisons the service pool.
func Migrate(dsn string, logger *log.Logger) error {
	database, err := Open(dsn)
	if err != nil {
		return fmt.Errorf("open db for migrations: %w", err)
	}
	defer database.Close()

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(database, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Println("migrations: schema up to date")
	case err != nil:
		return fmt.Errorf("run migrations: %w", err)
	default:
		version, dirty, _ := m.Version()
		if dirty {
			return fmt.Errorf("migrations: version %d left dirty", version)
		}
		logger.Printf("migrations: applied up to version %d", version)
	}

	return nil
}
