package docstore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func putRecord(t *testing.T, store *MemoryStore, path, id string, fields map[string]any) {
	t.Helper()
	if err := store.Put(context.Background(), path, Document{ID: id, Fields: fields}); err != nil {
		t.Fatalf("Put(%s/%s) failed: %v", path, id, err)
	}
}

func TestMemoryStoreGet(t *testing.T) {
	store := NewMemoryStore(nil)
	putRecord(t, store, "teachers", "t1", map[string]any{"name": "Ms. Reyes"})

	doc, err := store.Get(context.Background(), "teachers/t1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if doc.Fields["name"] != "Ms. Reyes" {
		t.Errorf("unexpected fields: %v", doc.Fields)
	}

	_, err = store.Get(context.Background(), "teachers/missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreListDirectChildrenOnly(t *testing.T) {
	store := NewMemoryStore(nil)
	putRecord(t, store, "teachers/t1/students", "s1", map[string]any{"fullName": "Ana"})
	putRecord(t, store, "teachers/t1/students", "s2", map[string]any{"fullName": "Ben"})
	putRecord(t, store, "teachers/t1/students/s1/records", "r1", map[string]any{"accuracy": 90})

	docs, err := store.List(context.Background(), Query{Path: "teachers/t1/students"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 students, got %d", len(docs))
	}
}

func TestMemoryStoreListSortDescending(t *testing.T) {
	store := NewMemoryStore(nil)
	path := "teachers/t1/students/s1/records"
	putRecord(t, store, path, "r1", map[string]any{"date": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
	putRecord(t, store, path, "r2", map[string]any{"date": time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)})
	putRecord(t, store, path, "r3", map[string]any{"date": "2024-02-01"})

	docs, err := store.List(context.Background(), Query{Path: path, OrderField: "date", Descending: true})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	var ids []string
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	want := []string{"r2", "r3", "r1"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("order = %v, want %v", ids, want)
		}
	}
}

func TestMemoryStoreCompositeIndexEnforcement(t *testing.T) {
	store := NewMemoryStore(nil)
	putRecord(t, store, "gameRecords", "g1", map[string]any{"studentName": "Ana", "date": "2024-01-01"})

	q := Query{
		Path:        "gameRecords",
		FilterField: "studentName",
		FilterValue: "Ana",
		OrderField:  "date",
		Descending:  true,
	}

	_, err := store.List(context.Background(), q)
	if !errors.Is(err, ErrMissingIndex) {
		t.Fatalf("expected ErrMissingIndex, got %v", err)
	}

	// A plain filter without sort does not need an index.
	docs, err := store.List(context.Background(), Query{Path: "gameRecords", FilterField: "studentName", FilterValue: "Ana"})
	if err != nil {
		t.Fatalf("unsorted List failed: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(docs))
	}

	// Registering the index makes the sorted query legal.
	indexed := NewMemoryStore(NewIndexRegistry(Index{
		Collection:  "gameRecords",
		FilterField: "studentName",
		OrderField:  "date",
	}))
	putRecord(t, indexed, "gameRecords", "g1", map[string]any{"studentName": "Ana", "date": "2024-01-01"})
	if _, err := indexed.List(context.Background(), q); err != nil {
		t.Fatalf("indexed List failed: %v", err)
	}
}

func TestMemoryStoreListGroup(t *testing.T) {
	store := NewMemoryStore(nil)
	putRecord(t, store, "teachers/t1/students", "s1", map[string]any{"fullName": "Ana"})
	putRecord(t, store, "teachers/t2/students", "s2", map[string]any{"fullName": "Ben"})
	putRecord(t, store, "teachers", "t1", map[string]any{"name": "Ms. Reyes"})

	docs, err := store.ListGroup(context.Background(), "students")
	if err != nil {
		t.Fatalf("ListGroup failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 students across teachers, got %d", len(docs))
	}
}

func TestMemoryStoreWatchDeliversChanges(t *testing.T) {
	store := NewMemoryStore(nil)
	path := "teachers/t1/students"
	putRecord(t, store, path, "s1", map[string]any{"fullName": "Ana"})

	sub, err := store.Watch(context.Background(), Query{Path: path})
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer sub.Close()

	initial := <-sub.C
	if len(initial) != 1 {
		t.Fatalf("expected initial snapshot of 1, got %d", len(initial))
	}

	putRecord(t, store, path, "s2", map[string]any{"fullName": "Ben"})

	select {
	case docs := <-sub.C:
		if len(docs) != 2 {
			t.Fatalf("expected 2 docs after write, got %d", len(docs))
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change delivery")
	}
}

func TestMemoryStoreWatchCloseStopsDeliveries(t *testing.T) {
	store := NewMemoryStore(nil)
	path := "teachers/t1/students"

	sub, err := store.Watch(context.Background(), Query{Path: path})
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	<-sub.C
	sub.Close()
	sub.Close() // idempotent

	putRecord(t, store, path, "s1", map[string]any{"fullName": "Ana"})

	select {
	case docs, ok := <-sub.C:
		if ok && len(docs) > 0 {
			t.Fatal("received delivery after Close")
		}
	case <-time.After(100 * time.Millisecond):
	}
}
