package docstore

import (
	"context"
	"fmt"

	"growbrain/internal/config"
)

// DefaultIndexes returns the composite indexes declared for the current
// storage layout. The legacy flat gameRecords collection never had a
// (studentName, date) index; sorted queries against it fail with
// ErrMissingIndex and callers sort client-side.
func DefaultIndexes() *IndexRegistry {
	return NewIndexRegistry(
		Index{Collection: "records", FilterField: "studentName", OrderField: "date"},
	)
}

// InitializeWithConfig opens the configured document-store backend.
func InitializeWithConfig(ctx context.Context, cfg *config.Config) (Store, error) {
	indexes := DefaultIndexes()

	switch cfg.DocstoreType {
	case "memory":
		return NewMemoryStore(indexes), nil
	case "sqlite":
		return OpenSQL(NewSQLiteDialect(), DialectConfig{Path: cfg.DocstorePath}, indexes)
	case "postgres":
		return OpenSQL(NewPostgresDialect(), DialectConfig{URL: cfg.DocstoreURL}, indexes)
	case "mysql":
		return OpenSQL(NewMySQLDialect(), DialectConfig{URL: cfg.DocstoreURL}, indexes)
	case "mongo":
		return OpenMongo(ctx, cfg.MongoURI, cfg.MongoDB, indexes)
	default:
		return nil, fmt.Errorf("unsupported docstore type: %s", cfg.DocstoreType)
	}
}
