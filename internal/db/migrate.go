package db

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// A migration is an ordered, versioned group of idempotent schema
// statements. Application is strictly sequential; a failure at one statement
// aborts before the next, and the partial state is safe to leave in place
// because every statement guards itself with IF NOT EXISTS.
type migration struct {
	version    int
	name       string
	statements []string
}

func migrationsFor(mode Mode) []migration {
	if mode == ModeManaged {
		return postgresMigrations
	}
	return sqliteMigrations
}

var sqliteMigrations = []migration{
	{
		version: 1,
		name:    "base tables",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				email TEXT NOT NULL UNIQUE,
				name TEXT NOT NULL DEFAULT '',
				phone TEXT NOT NULL DEFAULT '',
				is_email_verified INTEGER NOT NULL DEFAULT 0,
				last_login DATETIME,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS magic_links (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				token TEXT NOT NULL UNIQUE,
				is_used INTEGER NOT NULL DEFAULT 0,
				expires_at DATETIME NOT NULL,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS tokens (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				token TEXT NOT NULL UNIQUE,
				type TEXT NOT NULL,
				is_revoked INTEGER NOT NULL DEFAULT 0,
				expires_at DATETIME NOT NULL,
				metadata TEXT,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
		},
	},
	{
		version: 2,
		name:    "lookup indexes",
		statements: []string{
			`CREATE INDEX IF NOT EXISTS idx_magic_links_user_id ON magic_links(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_magic_links_expires_at ON magic_links(expires_at)`,
			`CREATE INDEX IF NOT EXISTS idx_tokens_user_id ON tokens(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_tokens_type ON tokens(type)`,
			`CREATE INDEX IF NOT EXISTS idx_tokens_expires_at ON tokens(expires_at)`,
		},
	},
}

var postgresMigrations = []migration{
	{
		version: 1,
		name:    "base tables",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				email TEXT NOT NULL UNIQUE,
				name TEXT NOT NULL DEFAULT '',
				phone TEXT NOT NULL DEFAULT '',
				is_email_verified BOOLEAN NOT NULL DEFAULT FALSE,
				last_login TIMESTAMPTZ,
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS magic_links (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				token TEXT NOT NULL UNIQUE,
				is_used BOOLEAN NOT NULL DEFAULT FALSE,
				expires_at TIMESTAMPTZ NOT NULL,
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS tokens (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				token TEXT NOT NULL UNIQUE,
				type TEXT NOT NULL,
				is_revoked BOOLEAN NOT NULL DEFAULT FALSE,
				expires_at TIMESTAMPTZ NOT NULL,
				metadata TEXT,
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			)`,
		},
	},
	{
		version: 2,
		name:    "lookup indexes",
		statements: []string{
			`CREATE INDEX IF NOT EXISTS idx_magic_links_user_id ON magic_links(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_magic_links_expires_at ON magic_links(expires_at)`,
			`CREATE INDEX IF NOT EXISTS idx_tokens_user_id ON tokens(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_tokens_type ON tokens(type)`,
			`CREATE INDEX IF NOT EXISTS idx_tokens_expires_at ON tokens(expires_at)`,
		},
	},
}

// ensureSchema applies the schema lazily on first use.
func (g *Gateway) ensureSchema(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.migrated {
		return nil
	}

	for _, m := range migrationsFor(g.mode) {
		for i, stmt := range m.statements {
			if _, err := g.adapter.Execute(ctx, stmt); err != nil {
				return fmt.Errorf("apply migration %d (%s) statement %d: %w", m.version, m.name, i+1, err)
			}
		}
		log.Debug().Int("version", m.version).Str("name", m.name).Msg("schema migration applied")
	}

	g.migrated = true
	return nil
}
