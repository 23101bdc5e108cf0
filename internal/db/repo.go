package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// DefaultSecretsTable is the table created by Migrate.
const DefaultSecretsTable = "app_secrets"

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return conn, nil
}

// SecretRepository reads provider credentials from a Postgres table of
// name/value pairs.  It never writes.
type SecretRepository struct {
	DB    *sql.DB
	query string
}

// NewSecretRepository constructs a repository over table; an empty table
// name uses DefaultSecretsTable.  The caller owns the DB lifecycle.
func NewSecretRepository(db *sql.DB, table string) *SecretRepository {
	if table == "" {
		table = DefaultSecretsTable
	}
	return &SecretRepository{
		DB:    db,
		query: fmt.Sprintf("SELECT value FROM %s WHERE name = $1", pq.QuoteIdentifier(table)),
	}
}

// Lookup returns the value stored under name.
func (r *SecretRepository) Lookup(ctx context.Context, name string) (string, bool, error) {
	var value string
	err := r.DB.QueryRowContext(ctx, r.query, name).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("lookup secret %s: %w", name, err)
	}
	if value == "" {
		return "", false, nil
	}
	return value, true, nil
}
