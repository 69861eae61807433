package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// SQLStore stores documents as JSON rows in a single table, behind the
// dialect abstraction (SQLite, PostgreSQL, MySQL).
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	indexes *IndexRegistry
}

// OpenSQL opens a SQL-backed document store and ensures the documents table
// exists.
func OpenSQL(dialect Dialect, cfg DialectConfig, indexes *IndexRegistry) (*SQLStore, error) {
	db, err := sql.Open(dialect.DriverName(), dialect.DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Apply dialect-specific configuration
	if err := dialect.ConfigureConnection(db); err != nil {
		return nil, fmt.Errorf("failed to configure connection: %w", err)
	}

	for _, stmt := range strings.Split(dialect.CreateTableQuery(), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to create documents table: %w", err)
		}
	}

	if indexes == nil {
		indexes = NewIndexRegistry()
	}
	return &SQLStore{db: db, dialect: dialect, indexes: indexes}, nil
}

func (s *SQLStore) Get(ctx context.Context, docPath string) (Document, error) {
	query := s.dialect.RewriteQuery("SELECT id, data FROM documents WHERE path = ?")

	var id string
	var data []byte
	err := s.db.QueryRowContext(ctx, query, strings.Trim(docPath, "/")).Scan(&id, &data)
	if err == sql.ErrNoRows {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to get document %s: %w", docPath, err)
	}
	return decodeRow(id, data)
}

func (s *SQLStore) List(ctx context.Context, q Query) ([]Document, error) {
	if !s.indexes.Covers(q) {
		return nil, ErrMissingIndex
	}

	query := "SELECT id, data FROM documents WHERE parent = ?"
	args := []any{strings.Trim(q.Path, "/")}

	if q.FilterField != "" {
		query += " AND " + s.dialect.JSONField(q.FilterField) + " = ?"
		args = append(args, fmt.Sprint(q.FilterValue))
	}
	if q.OrderField != "" {
		query += " ORDER BY " + s.dialect.JSONField(q.OrderField)
		if q.Descending {
			query += " DESC"
		}
	} else {
		query += " ORDER BY id"
	}
	if q.Limit > 0 {
		query += " LIMIT " + strconv.Itoa(q.Limit)
	}

	return s.queryDocuments(ctx, query, args...)
}

func (s *SQLStore) ListGroup(ctx context.Context, collection string) ([]Document, error) {
	query := "SELECT id, data FROM documents WHERE collection = ? ORDER BY id"
	return s.queryDocuments(ctx, query, collection)
}

func (s *SQLStore) Put(ctx context.Context, collectionPath string, doc Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	parent := strings.Trim(collectionPath, "/")
	path := parent + "/" + doc.ID

	data, err := json.Marshal(doc.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", path, err)
	}

	query := s.dialect.RewriteQuery(s.dialect.UpsertQuery())
	if _, err := s.db.ExecContext(ctx, query, path, parent, CollectionName(parent), doc.ID, data); err != nil {
		return fmt.Errorf("failed to put document %s: %w", path, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, docPath string) error {
	query := s.dialect.RewriteQuery("DELETE FROM documents WHERE path = ?")
	if _, err := s.db.ExecContext(ctx, query, strings.Trim(docPath, "/")); err != nil {
		return fmt.Errorf("failed to delete document %s: %w", docPath, err)
	}
	return nil
}

// Watch polls the query; SQL backends have no native change feed.
func (s *SQLStore) Watch(ctx context.Context, q Query) (*Subscription, error) {
	return pollWatch(ctx, s, q, pollInterval)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) queryDocuments(ctx context.Context, query string, args ...any) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.RewriteQuery(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		doc, err := decodeRow(id, data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func decodeRow(id string, data []byte) (Document, error) {
	fields := make(map[string]any)
	if err := json.Unmarshal(data, &fields); err != nil {
		return Document{}, fmt.Errorf("failed to decode document %s: %w", id, err)
	}
	return Document{ID: id, Fields: fields}, nil
}
