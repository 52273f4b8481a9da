package db

import (
	"fmt"
)

// sqliteSchema is the full database schema for SQLite.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
    created_at    TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS bags (
    id            INTEGER PRIMARY KEY,
    owner_id      TEXT NOT NULL,
    bag_id        TEXT NOT NULL,
    name          TEXT NOT NULL,
    barcode_value TEXT NOT NULL,
    created_at    TEXT NOT NULL,
    CONSTRAINT bags_owner_bag_id_key UNIQUE (owner_id, bag_id),
    CONSTRAINT bags_owner_barcode_key UNIQUE (owner_id, barcode_value)
)`,
	`CREATE TABLE IF NOT EXISTS clothes (
    id               INTEGER PRIMARY KEY,
    cloth_id         TEXT NOT NULL UNIQUE,
    owner_id         TEXT NOT NULL,
    name             TEXT NOT NULL,
    color            TEXT NOT NULL,
    owner            TEXT NOT NULL DEFAULT '',
    category         TEXT NOT NULL DEFAULT '',
    notes            TEXT NOT NULL DEFAULT '',
    image_url        TEXT NOT NULL,
    image_key        TEXT NOT NULL,
    image_blurhash   TEXT NOT NULL DEFAULT '',
    container_bag_id TEXT NOT NULL,
    favorite         INTEGER NOT NULL DEFAULT 0,
    last_moved_at    TEXT NOT NULL,
    created_at       TEXT NOT NULL,
    updated_at       TEXT NOT NULL,
    FOREIGN KEY (owner_id, container_bag_id) REFERENCES bags(owner_id, bag_id) ON DELETE CASCADE
)`,
	`CREATE TABLE IF NOT EXISTS moves (
    id          INTEGER PRIMARY KEY,
    owner_id    TEXT NOT NULL,
    cloth_id    TEXT NOT NULL REFERENCES clothes(cloth_id) ON DELETE CASCADE,
    from_bag_id TEXT NOT NULL,
    to_bag_id   TEXT NOT NULL,
    moved_at    TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS pending_image_deletions (
    image_key  TEXT PRIMARY KEY,
    attempts   INTEGER NOT NULL DEFAULT 0,
    last_error TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
)`,
}

// postgresSchema is the full database schema for Postgres.
var postgresSchema = []string{
	`CREATE OR REPLACE FUNCTION casefold(t TEXT) RETURNS TEXT
    LANGUAGE SQL IMMUTABLE STRICT
    AS 'SELECT lower(t)'`,
	`CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
    created_at    TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS bags (
    id            BIGSERIAL PRIMARY KEY,
    owner_id      TEXT NOT NULL,
    bag_id        TEXT NOT NULL,
    name          TEXT NOT NULL,
    barcode_value TEXT NOT NULL,
    created_at    TEXT NOT NULL,
    CONSTRAINT bags_owner_bag_id_key UNIQUE (owner_id, bag_id),
    CONSTRAINT bags_owner_barcode_key UNIQUE (owner_id, barcode_value)
)`,
	`CREATE TABLE IF NOT EXISTS clothes (
    id               BIGSERIAL PRIMARY KEY,
    cloth_id         TEXT NOT NULL UNIQUE,
    owner_id         TEXT NOT NULL,
    name             TEXT NOT NULL,
    color            TEXT NOT NULL,
    owner            TEXT NOT NULL DEFAULT '',
    category         TEXT NOT NULL DEFAULT '',
    notes            TEXT NOT NULL DEFAULT '',
    image_url        TEXT NOT NULL,
    image_key        TEXT NOT NULL,
    image_blurhash   TEXT NOT NULL DEFAULT '',
    container_bag_id TEXT NOT NULL,
    favorite         BOOLEAN NOT NULL DEFAULT FALSE,
    last_moved_at    TEXT NOT NULL,
    created_at       TEXT NOT NULL,
    updated_at       TEXT NOT NULL,
    FOREIGN KEY (owner_id, container_bag_id) REFERENCES bags(owner_id, bag_id) ON DELETE CASCADE
)`,
	`CREATE TABLE IF NOT EXISTS moves (
    id          BIGSERIAL PRIMARY KEY,
    owner_id    TEXT NOT NULL,
    cloth_id    TEXT NOT NULL REFERENCES clothes(cloth_id) ON DELETE CASCADE,
    from_bag_id TEXT NOT NULL,
    to_bag_id   TEXT NOT NULL,
    moved_at    TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS pending_image_deletions (
    image_key  TEXT PRIMARY KEY,
    attempts   INTEGER NOT NULL DEFAULT 0,
    last_error TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
)`,
}

// EnsureSchema creates all tables if they don't exist and applies migrations.
// Safe to call on every startup.
func EnsureSchema(db *DB) error {
	stmts := sqliteSchema
	if db.Dialect == DialectPostgres {
		stmts = postgresSchema
	}
	for _, s := range stmts {
		if _, err := db.DB.Exec(s); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}
	return Migrate(db)
}
