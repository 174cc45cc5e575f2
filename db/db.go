package db

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MustPool creates and returns a new pgxpool.Pool, or exits if an error occurs.
func MustPool() *pgxpool.Pool {
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		slog.Error("DATABASE_URL environment variable is not set")
		os.Exit(1)
	}

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		slog.Error("unable to parse DATABASE_URL", "error", err)
		os.Exit(1)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		slog.Error("unable to create connection pool", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		slog.Error("could not ping database", "error", err)
		os.Exit(1)
	}

	slog.Info("connected to PostgreSQL")
	return pool
}

// EnsureSchema creates the two portal tables if they do not exist. Emails
// are stored lowercased; the unique indexes are what closes the
// duplicate-registration and duplicate-request gaps of the old sheet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	// One statement per Exec; the extended protocol rejects batches.
	stmts := []string{`
CREATE TABLE IF NOT EXISTS attendees (
	id              BIGSERIAL PRIMARY KEY,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	name            TEXT NOT NULL,
	email           TEXT NOT NULL,
	phone           TEXT,
	university      TEXT,
	department      TEXT,
	year            TEXT,
	selected_event  TEXT,
	poster_theme    TEXT,
	transaction_id  TEXT,
	ieee_membership TEXT,
	status          TEXT NOT NULL DEFAULT 'Pending' CHECK (status IN ('Pending','Approved')),
	password_hash   TEXT,
	slug            TEXT NOT NULL,
	github          TEXT,
	linkedin        TEXT,
	instagram       TEXT,
	CONSTRAINT attendees_email_key UNIQUE (email),
	CONSTRAINT attendees_slug_key UNIQUE (slug)
)`, `
CREATE TABLE IF NOT EXISTS connections (
	id           BIGSERIAL PRIMARY KEY,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	source_email TEXT NOT NULL,
	target_email TEXT NOT NULL,
	source_name  TEXT,
	source_phone TEXT,
	note         TEXT,
	status       TEXT NOT NULL DEFAULT 'Pending' CHECK (status IN ('Pending','Accepted','Rejected')),
	CONSTRAINT connections_pair_key UNIQUE (source_email, target_email)
)`,
		`CREATE INDEX IF NOT EXISTS connections_target_idx ON connections (target_email)`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
