package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS llp_baselines (
	name     text PRIMARY KEY,
	version  text NOT NULL,
	document jsonb NOT NULL,
	saved_at timestamptz NOT NULL DEFAULT now()
)`

// PostgresBackend stores one baseline document per name.
type PostgresBackend struct {
	Pool *pgxpool.Pool
}

// NewPostgres connects to url and creates the baselines table if needed.
func NewPostgres(ctx context.Context, url string) (*PostgresBackend, error) {
	if url == "" {
		return nil, errors.New("baseline.postgres.url is not configured (or set LLP_DATABASE_URL)")
	}
	p, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	b := &PostgresBackend{Pool: p}
	if err := b.EnsureSchema(ctx); err != nil {
		p.Close()
		return nil, err
	}
	return b, nil
}

// EnsureSchema creates the baselines table when missing.
func (b *PostgresBackend) EnsureSchema(ctx context.Context) error {
	if _, err := b.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Write upserts the document under name. The version column mirrors the
// document's version field.
func (b *PostgresBackend) Write(ctx context.Context, name string, data []byte) error {
	_, err := b.Pool.Exec(ctx, `
		INSERT INTO llp_baselines (name, version, document, saved_at)
		VALUES ($1, $2, $3::jsonb, now())
		ON CONFLICT (name) DO UPDATE
		SET version = EXCLUDED.version, document = EXCLUDED.document, saved_at = now()
	`, name, documentVersion(data), string(data))
	return err
}

func (b *PostgresBackend) Read(ctx context.Context, name string) ([]byte, error) {
	var doc string
	err := b.Pool.QueryRow(ctx, `SELECT document::text FROM llp_baselines WHERE name = $1`, name).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(doc), nil
}

func (b *PostgresBackend) Close() {
	b.Pool.Close()
}

// documentVersion extracts the top-level version string, or "unknown".
func documentVersion(data []byte) string {
	var doc struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &doc); err != nil || doc.Version == "" {
		return "unknown"
	}
	return doc.Version
}
