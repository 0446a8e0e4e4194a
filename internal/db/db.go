// internal/db/db.go
package db

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS processed_children (
    campaign_id TEXT NOT NULL,
    child_id    TEXT NOT NULL,
    entry_id    TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (campaign_id, child_id)
)`

// Open connects to Postgres, pings it and makes sure the ledger table exists.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is empty")
	}

	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	if err = conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	if _, err = conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate ledger table: %w", err)
	}

	log.Println("✅ Connected to database")
	return conn, nil
}
