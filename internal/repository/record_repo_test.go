package repository

import (
	"context"
	"testing"
	"time"

	"growbrain/internal/docstore"
	"growbrain/internal/models"
)

func seedDoc(t *testing.T, store docstore.Store, path, id string, fields map[string]any) {
	t.Helper()
	if err := store.Put(context.Background(), path, docstore.Document{ID: id, Fields: fields}); err != nil {
		t.Fatalf("Put(%s/%s) failed: %v", path, id, err)
	}
}

func recordFields(date string, accuracy float64) map[string]any {
	return map[string]any{
		"date":     date,
		"accuracy": accuracy,
		"game":     "MemoryMatch",
	}
}

func TestResolveFirstMatchStopsAtCurrentPath(t *testing.T) {
	store := docstore.NewMemoryStore(nil)
	seedDoc(t, store, "teachers/t1/students/s1/records", "r1", recordFields("2024-03-01", 92))
	// Legacy data for the same student must be ignored in first-match mode.
	seedDoc(t, store, "students/s1/sessions", "old1", recordFields("2023-01-01", 40))

	repo := NewRecordRepository(store)
	records, err := repo.Resolve(context.Background(), "t1", "s1", "Ana Cruz")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Source != models.SourceCurrent {
		t.Errorf("Source = %v, want %v", records[0].Source, models.SourceCurrent)
	}
}

func TestResolveFallsThroughChain(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		id         string
		fields     map[string]any
		wantSource models.SourceTag
	}{
		{
			name:       "name-keyed current path",
			path:       "teachers/t1/students/Ana Cruz/records",
			id:         "r1",
			fields:     recordFields("2024-03-01", 88),
			wantSource: models.SourceCurrent,
		},
		{
			name:       "legacy flat collection",
			path:       "gameRecords",
			id:         "g1",
			fields:     map[string]any{"studentName": "Ana Cruz", "date": "2024-02-01", "accuracy": 70.0},
			wantSource: models.SourceLegacyFlatByName,
		},
		{
			name:       "legacy sessions by id",
			path:       "students/s1/sessions",
			id:         "l1",
			fields:     recordFields("2023-06-01", 55),
			wantSource: models.SourceLegacyByID,
		},
		{
			name:       "legacy sessions by name",
			path:       "students/Ana Cruz/sessions",
			id:         "l2",
			fields:     recordFields("2023-05-01", 60),
			wantSource: models.SourceLegacyByName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := docstore.NewMemoryStore(nil)
			seedDoc(t, store, tt.path, tt.id, tt.fields)

			repo := NewRecordRepository(store)
			records, err := repo.Resolve(context.Background(), "t1", "s1", "Ana Cruz")
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if len(records) != 1 {
				t.Fatalf("expected 1 record, got %d", len(records))
			}
			if records[0].Source != tt.wantSource {
				t.Errorf("Source = %v, want %v", records[0].Source, tt.wantSource)
			}
		})
	}
}

func TestResolveEmptyAfterAllSteps(t *testing.T) {
	repo := NewRecordRepository(docstore.NewMemoryStore(nil))
	records, err := repo.Resolve(context.Background(), "t1", "s1", "Ana Cruz")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty set, got %d records", len(records))
	}
}

func TestResolveMissingIndexFallsBackToClientSort(t *testing.T) {
	// No composite index registered for gameRecords (studentName, date), so
	// the sorted query fails and the repository must retry unsorted and sort
	// client-side, newest first.
	store := docstore.NewMemoryStore(nil)
	seedDoc(t, store, "gameRecords", "g1", map[string]any{"studentName": "Ana Cruz", "date": "2024-01-05", "accuracy": 80.0})
	seedDoc(t, store, "gameRecords", "g2", map[string]any{"studentName": "Ana Cruz", "date": "2024-03-05", "accuracy": 85.0})
	seedDoc(t, store, "gameRecords", "g3", map[string]any{"studentName": "Ana Cruz", "date": "2024-02-05", "accuracy": 75.0})
	seedDoc(t, store, "gameRecords", "g4", map[string]any{"studentName": "Someone Else", "date": "2024-04-01", "accuracy": 99.0})

	repo := NewRecordRepository(store)
	records, err := repo.Resolve(context.Background(), "t1", "s1", "Ana Cruz")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records for Ana Cruz, got %d", len(records))
	}

	var got []string
	for _, r := range records {
		got = append(got, r.ID)
	}
	want := []string{"g2", "g3", "g1"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestResolveUnifiedMergesAllSources(t *testing.T) {
	store := docstore.NewMemoryStore(nil)
	seedDoc(t, store, "teachers/t1/students/s1/records", "r1", recordFields("2024-03-01", 92))
	seedDoc(t, store, "gameRecords", "g1", map[string]any{"studentName": "Ana Cruz", "date": "2024-01-15", "accuracy": 70.0})
	seedDoc(t, store, "students/s1/sessions", "l1", recordFields("2023-11-01", 55))

	repo := NewRecordRepository(store)
	records, err := repo.ResolveUnified(context.Background(), "t1", "s1", "Ana Cruz")
	if err != nil {
		t.Fatalf("ResolveUnified failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 merged records, got %d", len(records))
	}

	// Union is sorted newest first across sources.
	for i := 1; i < len(records); i++ {
		if records[i].Date.After(records[i-1].Date) {
			t.Fatalf("records not sorted descending at index %d", i)
		}
	}

	sources := map[models.SourceTag]int{}
	for _, r := range records {
		sources[r.Source]++
	}
	if sources[models.SourceCurrent] != 1 || sources[models.SourceLegacyFlatByName] != 1 || sources[models.SourceLegacyByID] != 1 {
		t.Errorf("unexpected source mix: %v", sources)
	}
}

func TestDecodeRecordFieldAliases(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
		check  func(t *testing.T, rec models.SessionRecord)
	}{
		{
			name:   "lastPlayed date alias",
			fields: map[string]any{"lastPlayed": "2024-05-01", "accuracy": 90.0},
			check: func(t *testing.T, rec models.SessionRecord) {
				want := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
				if !rec.Date.Equal(want) {
					t.Errorf("Date = %v, want %v", rec.Date, want)
				}
			},
		},
		{
			name:   "timeSeconds completion alias",
			fields: map[string]any{"date": "2024-05-01", "timeSeconds": 42.5},
			check: func(t *testing.T, rec models.SessionRecord) {
				if rec.CompletionTime == nil || *rec.CompletionTime != 42.5 {
					t.Errorf("CompletionTime = %v, want 42.5", rec.CompletionTime)
				}
			},
		},
		{
			name:   "missing accuracy stays nil",
			fields: map[string]any{"date": "2024-05-01"},
			check: func(t *testing.T, rec models.SessionRecord) {
				if rec.Accuracy != nil {
					t.Errorf("Accuracy = %v, want nil", *rec.Accuracy)
				}
			},
		},
		{
			name:   "auditory challenge maps to Logic",
			fields: map[string]any{"date": "2024-05-01", "challenge": "Auditory Processing"},
			check: func(t *testing.T, rec models.SessionRecord) {
				if rec.ChallengeFocus != "Logic" {
					t.Errorf("ChallengeFocus = %v, want Logic", rec.ChallengeFocus)
				}
			},
		},
		{
			name:   "non-numeric accuracy stays nil",
			fields: map[string]any{"date": "2024-05-01", "accuracy": "n/a"},
			check: func(t *testing.T, rec models.SessionRecord) {
				if rec.Accuracy != nil {
					t.Errorf("Accuracy = %v, want nil", *rec.Accuracy)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := decodeRecord(docstore.Document{ID: "r1", Fields: tt.fields}, models.SourceCurrent, "s1", "t1")
			tt.check(t, rec)
		})
	}
}
