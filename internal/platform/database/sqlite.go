package database

import (
	"database/sql"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"helpdesk/internal/platform/config"
	"helpdesk/migrations"
)

const driver = "sqlite3"

func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn(cfg.URL))
	if err != nil {
		return nil, err
	}

	maxConns := cfg.MaxConnections
	if maxConns <= 0 {
		maxConns = 10
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// OpenMemory returns a migrated in-memory database. The pool is pinned to a
// single connection because every sqlite :memory: connection is its own database.
func OpenMemory() (*sql.DB, error) {
	db, err := sql.Open(driver, ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := migrations.Up(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// dsn strips the "file:" scheme and turns on foreign keys.
func dsn(url string) string {
	path := strings.TrimPrefix(url, "file:")
	if strings.Contains(path, "?") {
		return path + "&_foreign_keys=on"
	}
	return path + "?_foreign_keys=on"
}
