package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
)

// ErrNoDSN means SHOP_DB_DSN is missing from the environment.
var ErrNoDSN = errors.New("SHOP_DB_DSN not set")

// DSNFromEnv reads the Postgres connection string from SHOP_DB_DSN.
func DSNFromEnv() (string, error) {
	dsn := os.Getenv("SHOP_DB_DSN")
	if dsn == "" {
		return "", ErrNoDSN
	}
	return dsn, nil
}

// Open connects to Postgres, verifies the connection and applies the
// service's pool limits.
func Open(dsn string) (*sql.DB, error) {
	database, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	database.SetMaxOpenConns(25)
	database.SetMaxIdleConns(5)
	database.SetConnMaxLifetime(5 * time.Minute)

	if err := database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return database, nil
}
