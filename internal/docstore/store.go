// Package docstore is the document-store capability the analytics engine
// consumes: get-once reads over hierarchical collections, equality filters,
// descending sorts and change subscriptions, with "index missing" as a
// distinguishable failure mode. Several backends are supported behind a
// dialect-style abstraction: in-memory, SQLite, PostgreSQL, MySQL and
// MongoDB, all storing documents as JSON-ish field maps.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"growbrain/internal/normalize"
)

var (
	// ErrNotFound is returned by Get for an absent document. Empty List
	// results are not an error.
	ErrNotFound = errors.New("docstore: document not found")

	// ErrMissingIndex is the precondition failure returned when a query
	// combines an equality filter with a sort on another field and no
	// composite index is registered for that collection. Callers are
	// expected to retry without the sort and order client-side.
	ErrMissingIndex = errors.New("docstore: query requires a composite index")

	// ErrPermissionDenied marks reads rejected by the backing store. It is
	// surfaced to the user as an error state, never retried automatically.
	ErrPermissionDenied = errors.New("docstore: permission denied")
)

// Document is one stored document: an id unique within its collection and a
// free-form field map.
type Document struct {
	ID     string
	Fields map[string]any
}

// Query selects direct children of one collection path, e.g.
// "teachers/t1/students/s1/records". FilterField/FilterValue add an equality
// predicate; OrderField sorts (Descending selects direction); Limit of 0
// means unlimited.
type Query struct {
	Path        string
	FilterField string
	FilterValue any
	OrderField  string
	Descending  bool
	Limit       int
}

// Store is the read/write surface of a document-store backend. The analytics
// engine only reads; Put and Delete exist for seeding and tests.
type Store interface {
	Get(ctx context.Context, docPath string) (Document, error)
	List(ctx context.Context, q Query) ([]Document, error)
	// ListGroup returns every document in any collection with the given
	// leaf name, regardless of where it sits in the hierarchy.
	ListGroup(ctx context.Context, collection string) ([]Document, error)
	Put(ctx context.Context, collectionPath string, doc Document) error
	Delete(ctx context.Context, docPath string) error
	Watch(ctx context.Context, q Query) (*Subscription, error)
	Close() error
}

// Index declares a composite (filter, order) index for one leaf collection.
// Single-field filters and single-field sorts never need one.
type Index struct {
	Collection  string
	FilterField string
	OrderField  string
}

// IndexRegistry is the set of declared composite indexes, shared by all
// backends so that index semantics do not depend on the storage engine.
type IndexRegistry struct {
	mu  sync.RWMutex
	set map[Index]bool
}

// NewIndexRegistry creates a registry with the given indexes declared.
func NewIndexRegistry(indexes ...Index) *IndexRegistry {
	r := &IndexRegistry{set: make(map[Index]bool)}
	for _, ix := range indexes {
		r.Register(ix)
	}
	return r
}

// Register declares a composite index.
func (r *IndexRegistry) Register(ix Index) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.set[ix] = true
}

// Covers reports whether the query is allowed: either it needs no composite
// index, or a matching one is declared.
func (r *IndexRegistry) Covers(q Query) bool {
	if !NeedsIndex(q) {
		return true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.set[Index{
		Collection:  CollectionName(q.Path),
		FilterField: q.FilterField,
		OrderField:  q.OrderField,
	}]
}

// NeedsIndex reports whether a query combines an equality filter with a sort
// on a different field, the shape that requires a declared composite index.
func NeedsIndex(q Query) bool {
	return q.FilterField != "" && q.OrderField != "" && q.FilterField != q.OrderField
}

// CollectionName returns the leaf collection name of a collection path.
func CollectionName(path string) string {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	return segs[len(segs)-1]
}

// splitDocPath splits a document path into its parent collection path and
// document id.
func splitDocPath(docPath string) (string, string, error) {
	p := strings.Trim(docPath, "/")
	i := strings.LastIndex(p, "/")
	if i <= 0 {
		return "", "", fmt.Errorf("docstore: %q is not a document path", docPath)
	}
	return p[:i], p[i+1:], nil
}

// valuesEqual is the loose equality used for filter predicates: direct
// equality first, then a string-form comparison so numeric and string
// encodings of the same value still match.
func valuesEqual(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// compareValues orders two heterogeneous field values: as dates when both
// parse as dates, as numbers when both are numeric, otherwise by string form.
func compareValues(a, b any) int {
	ta, tb := normalize.ParseDate(a), normalize.ParseDate(b)
	if !normalize.IsMissingDate(ta) && !normalize.IsMissingDate(tb) {
		return ta.Compare(tb)
	}
	fa, okA := normalize.Float(a)
	fb, okB := normalize.Float(b)
	if okA && okB {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
