package docstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is the in-process backend. It is the default for tests and
// supports native change notification instead of polling.
type MemoryStore struct {
	mu      sync.RWMutex
	docs    map[string]Document // full document path -> document
	indexes *IndexRegistry

	watchMu  sync.Mutex
	watchers map[int]*memWatcher
	nextID   int
}

type memWatcher struct {
	query Query
	ch    chan []Document
	done  chan struct{}
}

// NewMemoryStore creates an empty in-memory store using the given index
// registry (nil means no composite indexes declared).
func NewMemoryStore(indexes *IndexRegistry) *MemoryStore {
	if indexes == nil {
		indexes = NewIndexRegistry()
	}
	return &MemoryStore{
		docs:     make(map[string]Document),
		indexes:  indexes,
		watchers: make(map[int]*memWatcher),
	}
}

func (s *MemoryStore) Get(ctx context.Context, docPath string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[strings.Trim(docPath, "/")]
	if !ok {
		return Document{}, ErrNotFound
	}
	return cloneDocument(doc), nil
}

func (s *MemoryStore) List(ctx context.Context, q Query) ([]Document, error) {
	if !s.indexes.Covers(q) {
		return nil, ErrMissingIndex
	}

	prefix := strings.Trim(q.Path, "/") + "/"

	s.mu.RLock()
	var out []Document
	for path, doc := range s.docs {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		// Direct children only; deeper paths belong to subcollections.
		if strings.Contains(path[len(prefix):], "/") {
			continue
		}
		if q.FilterField != "" && !valuesEqual(doc.Fields[q.FilterField], q.FilterValue) {
			continue
		}
		out = append(out, cloneDocument(doc))
	}
	s.mu.RUnlock()

	if q.OrderField != "" {
		sortDocuments(out, q.OrderField, q.Descending)
	} else {
		// Map iteration order is random; keep unordered listings stable.
		sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *MemoryStore) ListGroup(ctx context.Context, collection string) ([]Document, error) {
	s.mu.RLock()
	var out []Document
	for path, doc := range s.docs {
		if CollectionName(parentOf(path)) == collection {
			out = append(out, cloneDocument(doc))
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Put(ctx context.Context, collectionPath string, doc Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	path := strings.Trim(collectionPath, "/") + "/" + doc.ID

	s.mu.Lock()
	s.docs[path] = cloneDocument(doc)
	s.mu.Unlock()

	s.notify(ctx, strings.Trim(collectionPath, "/"))
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, docPath string) error {
	parent, _, err := splitDocPath(docPath)
	if err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.docs, strings.Trim(docPath, "/"))
	s.mu.Unlock()

	s.notify(ctx, parent)
	return nil
}

// Watch delivers the current result set immediately and again after every
// write to the watched collection.
func (s *MemoryStore) Watch(ctx context.Context, q Query) (*Subscription, error) {
	initial, err := s.List(ctx, q)
	if err != nil {
		return nil, err
	}

	w := &memWatcher{
		query: q,
		ch:    make(chan []Document, 4),
		done:  make(chan struct{}),
	}
	w.ch <- initial

	s.watchMu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = w
	s.watchMu.Unlock()

	sub := newSubscription(w.ch, func() {
		s.watchMu.Lock()
		delete(s.watchers, id)
		s.watchMu.Unlock()
		close(w.done)
	})
	return sub, nil
}

func (s *MemoryStore) Close() error {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for id, w := range s.watchers {
		delete(s.watchers, id)
		close(w.done)
	}
	return nil
}

// notify re-runs each watcher whose collection was touched and delivers the
// fresh result set. Slow receivers drop intermediate snapshots rather than
// block writers.
func (s *MemoryStore) notify(ctx context.Context, collectionPath string) {
	s.watchMu.Lock()
	watchers := make([]*memWatcher, 0, len(s.watchers))
	for _, w := range s.watchers {
		if strings.Trim(w.query.Path, "/") == collectionPath {
			watchers = append(watchers, w)
		}
	}
	s.watchMu.Unlock()

	for _, w := range watchers {
		docs, err := s.List(ctx, w.query)
		if err != nil {
			continue
		}
		select {
		case <-w.done:
		case w.ch <- docs:
		default:
		}
	}
}

func parentOf(docPath string) string {
	parent, _, err := splitDocPath(docPath)
	if err != nil {
		return ""
	}
	return parent
}

func cloneDocument(doc Document) Document {
	fields := make(map[string]any, len(doc.Fields))
	for k, v := range doc.Fields {
		fields[k] = v
	}
	return Document{ID: doc.ID, Fields: fields}
}

func sortDocuments(docs []Document, field string, descending bool) {
	sort.SliceStable(docs, func(i, j int) bool {
		c := compareValues(docs[i].Fields[field], docs[j].Fields[field])
		if descending {
			return c > 0
		}
		return c < 0
	})
}
