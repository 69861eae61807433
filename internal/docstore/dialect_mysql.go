package docstore

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLDialect implements Dialect for MySQL
type MySQLDialect struct{}

// NewMySQLDialect creates a new MySQL dialect
func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

func (d *MySQLDialect) DriverName() string {
	return "mysql"
}

func (d *MySQLDialect) DSN(config DialectConfig) string {
	return config.URL
}

func (d *MySQLDialect) RewriteQuery(query string) string {
	// MySQL uses ? placeholders like SQLite, no rewrite needed
	return query
}

func (d *MySQLDialect) ConfigureConnection(db *sql.DB) error {
	// Configure connection pool for MySQL
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	return nil
}

func (d *MySQLDialect) CreateTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS documents (
			path VARCHAR(512) PRIMARY KEY,
			parent VARCHAR(512) NOT NULL,
			collection VARCHAR(128) NOT NULL,
			id VARCHAR(128) NOT NULL,
			data JSON NOT NULL,
			INDEX idx_documents_parent (parent),
			INDEX idx_documents_collection (collection)
		);
	`
}

func (d *MySQLDialect) UpsertQuery() string {
	return "INSERT INTO documents (path, parent, collection, id, data) VALUES (?, ?, ?, ?, ?) " +
		"ON DUPLICATE KEY UPDATE data = VALUES(data)"
}

func (d *MySQLDialect) JSONField(field string) string {
	return fmt.Sprintf("JSON_UNQUOTE(JSON_EXTRACT(data, '$.%s'))", safeFieldName(field))
}
