package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(512) NOT NULL,
		CONSTRAINT uq_user_email UNIQUE (email)
	)`,
	`CREATE TABLE IF NOT EXISTS requests (
		id BIGSERIAL PRIMARY KEY,
		description VARCHAR(512) NOT NULL,
		requestor_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		created TIMESTAMP WITHOUT TIME ZONE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description VARCHAR(512) NOT NULL,
		is_available BOOLEAN NOT NULL,
		owner_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		request_id BIGINT REFERENCES requests (id) ON DELETE SET NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id BIGSERIAL PRIMARY KEY,
		start_date TIMESTAMP WITHOUT TIME ZONE NOT NULL,
		end_date TIMESTAMP WITHOUT TIME ZONE NOT NULL,
		item_id BIGINT NOT NULL REFERENCES items (id) ON DELETE CASCADE,
		booker_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		status VARCHAR(16) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id BIGSERIAL PRIMARY KEY,
		text VARCHAR(1000) NOT NULL,
		item_id BIGINT NOT NULL REFERENCES items (id) ON DELETE CASCADE,
		author_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		created TIMESTAMP WITHOUT TIME ZONE NOT NULL
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		description TEXT NOT NULL,
		requestor_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		created DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		is_available BOOLEAN NOT NULL,
		owner_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		request_id INTEGER REFERENCES requests (id) ON DELETE SET NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		start_date DATETIME NOT NULL,
		end_date DATETIME NOT NULL,
		item_id INTEGER NOT NULL REFERENCES items (id) ON DELETE CASCADE,
		booker_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		status TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		text TEXT NOT NULL,
		item_id INTEGER NOT NULL REFERENCES items (id) ON DELETE CASCADE,
		author_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		created DATETIME NOT NULL
	)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_items_owner ON items (owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_items_request ON items (request_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_booker ON bookings (booker_id, start_date)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_item ON bookings (item_id, start_date)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_item ON comments (item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_requestor ON requests (requestor_id, created)`,
}

// Migrate creates the tables and indexes if they do not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	var schema []string
	switch db.DriverName() {
	case DriverPostgres:
		schema = postgresSchema
	case DriverSQLite:
		schema = sqliteSchema
	default:
		return fmt.Errorf("no schema for driver %q", db.DriverName())
	}

	for _, stmt := range append(schema, indexes...) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}

	log.Debug().Str("driver", db.DriverName()).Msg("Schema ready")
	return nil
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
