package docstore

import (
	"testing"
)

func TestDialectSQLite(t *testing.T) {
	dialect := NewSQLiteDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "sqlite3"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("JSONField", func(t *testing.T) {
		result := dialect.JSONField("studentName")
		expected := "json_extract(data, '$.studentName')"
		if result != expected {
			t.Errorf("JSONField() = %v, want %v", result, expected)
		}
	})
}

func TestDialectPostgreSQL(t *testing.T) {
	dialect := NewPostgresDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "postgres"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("JSONField", func(t *testing.T) {
		result := dialect.JSONField("studentName")
		expected := "data ->> 'studentName'"
		if result != expected {
			t.Errorf("JSONField() = %v, want %v", result, expected)
		}
	})
}

func TestDialectMySQL(t *testing.T) {
	dialect := NewMySQLDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "mysql"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("JSONField", func(t *testing.T) {
		result := dialect.JSONField("studentName")
		expected := "JSON_UNQUOTE(JSON_EXTRACT(data, '$.studentName'))"
		if result != expected {
			t.Errorf("JSONField() = %v, want %v", result, expected)
		}
	})
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT data FROM documents WHERE parent = ?",
			expected: "SELECT data FROM documents WHERE parent = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT data FROM documents WHERE parent = ?",
			expected: "SELECT data FROM documents WHERE parent = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO documents (path, parent) VALUES (?, ?)",
			expected: "INSERT INTO documents (path, parent) VALUES ($1, $2)",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE documents SET data = ? WHERE path = ?",
			expected: "UPDATE documents SET data = ? WHERE path = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.dialect.RewriteQuery(tt.query)
			if result != tt.expected {
				t.Errorf("RewriteQuery() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestSafeFieldName(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		expected string
	}{
		{name: "plain", field: "date", expected: "date"},
		{name: "camel case", field: "studentName", expected: "studentName"},
		{name: "quote injection", field: "date') --", expected: "_invalid_field_"},
		{name: "dotted path", field: "a.b", expected: "_invalid_field_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := safeFieldName(tt.field)
			if result != tt.expected {
				t.Errorf("safeFieldName(%q) = %v, want %v", tt.field, result, tt.expected)
			}
		})
	}
}
