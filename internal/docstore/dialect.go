package docstore

import (
	"database/sql"
	"regexp"
	"strconv"
)

// Dialect defines the interface for database-specific operations of the SQL
// document backends. Documents live in one table as JSON rows; the dialects
// differ in placeholders, JSON field extraction and upsert syntax.
type Dialect interface {
	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN returns the data source name for the connection
	DSN(config DialectConfig) string

	// RewriteQuery converts placeholder syntax if needed (e.g., ? to $1 for postgres)
	RewriteQuery(query string) string

	// ConfigureConnection applies any database-specific connection settings
	ConfigureConnection(db *sql.DB) error

	// CreateTableQuery returns the SQL to create the documents table
	CreateTableQuery() string

	// UpsertQuery returns the SQL to insert or replace one document row
	UpsertQuery() string

	// JSONField returns the SQL expression extracting a document field from
	// the data column as text
	JSONField(field string) string
}

// DialectConfig holds configuration for database connection
type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL/MySQL
	URL string
}

// placeholderRegexp matches ? placeholders not inside quotes
var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(match string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

// fieldNameRegexp restricts JSON field names interpolated into queries to
// identifier characters. Field names come from code, not user input; this is
// a constraint, not an escape hatch.
var fieldNameRegexp = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func safeFieldName(field string) string {
	if fieldNameRegexp.MatchString(field) {
		return field
	}
	return "_invalid_field_"
}
