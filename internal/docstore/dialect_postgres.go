package docstore

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresDialect implements Dialect for PostgreSQL
type PostgresDialect struct{}

// NewPostgresDialect creates a new PostgreSQL dialect
func NewPostgresDialect() *PostgresDialect {
	return &PostgresDialect{}
}

func (d *PostgresDialect) DriverName() string {
	return "postgres"
}

func (d *PostgresDialect) DSN(config DialectConfig) string {
	return config.URL
}

func (d *PostgresDialect) RewriteQuery(query string) string {
	// PostgreSQL uses $1, $2, etc. instead of ?
	return rewritePlaceholdersToNumbered(query)
}

func (d *PostgresDialect) ConfigureConnection(db *sql.DB) error {
	// Configure connection pool for PostgreSQL
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	return nil
}

func (d *PostgresDialect) CreateTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS documents (
			path TEXT PRIMARY KEY,
			parent TEXT NOT NULL,
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			data JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_documents_parent ON documents(parent);
		CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);
	`
}

func (d *PostgresDialect) UpsertQuery() string {
	return `
		INSERT INTO documents (path, parent, collection, id, data)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET data = excluded.data
	`
}

func (d *PostgresDialect) JSONField(field string) string {
	return fmt.Sprintf("data ->> '%s'", safeFieldName(field))
}
