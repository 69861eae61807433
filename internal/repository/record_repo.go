package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"growbrain/internal/docstore"
	"growbrain/internal/models"
	"growbrain/internal/normalize"
)

// RecordRepository resolves session records for a student across the storage
// shapes that accumulated over the app's history: the current hierarchical
// collection, a dual-keyed variant of it, a legacy flat collection and two
// legacy nested session collections.
type RecordRepository struct {
	store docstore.Store
}

// NewRecordRepository creates a new record repository
func NewRecordRepository(store docstore.Store) *RecordRepository {
	return &RecordRepository{store: store}
}

// recordStrategy is one resolution attempt. Each returns the records it found
// (possibly none) already tagged with its source.
type recordStrategy struct {
	source models.SourceTag
	fetch  func(ctx context.Context, teacherID, studentID, displayName string) ([]models.SessionRecord, error)
}

func (r *RecordRepository) strategies() []recordStrategy {
	return []recordStrategy{
		{models.SourceCurrent, r.currentByID},
		{models.SourceCurrent, r.currentByName},
		{models.SourceLegacyFlatByName, r.legacyFlat},
		{models.SourceLegacyByID, r.legacySessionsByID},
		{models.SourceLegacyByName, r.legacySessionsByName},
	}
}

// Resolve walks the attempt chain in order and returns the first non-empty
// record set, newest first. An empty result after all attempts is not an
// error; it is the "no records" state.
func (r *RecordRepository) Resolve(ctx context.Context, teacherID, studentID, displayName string) (models.Records, error) {
	for _, s := range r.strategies() {
		records, err := s.fetch(ctx, teacherID, studentID, displayName)
		if err != nil {
			return nil, err
		}
		if len(records) > 0 {
			return records, nil
		}
	}
	return models.Records{}, nil
}

// ResolveUnified reads all five sources, concatenates everything found and
// sorts the union by date descending. Used for report generation, where
// maximum recall beats first-match precision.
func (r *RecordRepository) ResolveUnified(ctx context.Context, teacherID, studentID, displayName string) (models.Records, error) {
	var all models.Records
	for _, s := range r.strategies() {
		records, err := s.fetch(ctx, teacherID, studentID, displayName)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}
	sortRecordsByDateDesc(all)
	return all, nil
}

func (r *RecordRepository) currentByID(ctx context.Context, teacherID, studentID, _ string) ([]models.SessionRecord, error) {
	path := fmt.Sprintf("teachers/%s/students/%s/records", teacherID, studentID)
	return r.fetchSorted(ctx, docstore.Query{Path: path, OrderField: "date", Descending: true}, models.SourceCurrent, studentID, teacherID)
}

func (r *RecordRepository) currentByName(ctx context.Context, teacherID, _ string, displayName string) ([]models.SessionRecord, error) {
	if displayName == "" {
		return nil, nil
	}
	path := fmt.Sprintf("teachers/%s/students/%s/records", teacherID, displayName)
	return r.fetchSorted(ctx, docstore.Query{Path: path, OrderField: "date", Descending: true}, models.SourceCurrent, displayName, teacherID)
}

func (r *RecordRepository) legacyFlat(ctx context.Context, teacherID, studentID, displayName string) ([]models.SessionRecord, error) {
	if displayName == "" {
		return nil, nil
	}
	q := docstore.Query{
		Path:        "gameRecords",
		FilterField: "studentName",
		FilterValue: displayName,
		OrderField:  "date",
		Descending:  true,
	}
	return r.fetchSorted(ctx, q, models.SourceLegacyFlatByName, studentID, teacherID)
}

func (r *RecordRepository) legacySessionsByID(ctx context.Context, teacherID, studentID, _ string) ([]models.SessionRecord, error) {
	path := fmt.Sprintf("students/%s/sessions", studentID)
	return r.fetchSorted(ctx, docstore.Query{Path: path, OrderField: "date", Descending: true}, models.SourceLegacyByID, studentID, teacherID)
}

func (r *RecordRepository) legacySessionsByName(ctx context.Context, teacherID, _ string, displayName string) ([]models.SessionRecord, error) {
	if displayName == "" {
		return nil, nil
	}
	path := fmt.Sprintf("students/%s/sessions", displayName)
	return r.fetchSorted(ctx, docstore.Query{Path: path, OrderField: "date", Descending: true}, models.SourceLegacyByName, displayName, teacherID)
}

// fetchSorted runs a sorted query and falls back to an unsorted read with a
// client-side stable sort when the store reports a missing composite index.
// The index error never reaches the caller.
func (r *RecordRepository) fetchSorted(ctx context.Context, q docstore.Query, source models.SourceTag, studentRef, teacherRef string) ([]models.SessionRecord, error) {
	docs, err := r.store.List(ctx, q)
	if errors.Is(err, docstore.ErrMissingIndex) {
		unsorted := q
		unsorted.OrderField = ""
		unsorted.Descending = false
		docs, err = r.store.List(ctx, unsorted)
		if err != nil {
			return nil, fmt.Errorf("failed to list records from %s: %w", q.Path, err)
		}
		records := decodeRecords(docs, source, studentRef, teacherRef)
		sortRecordsByDateDesc(records)
		return records, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list records from %s: %w", q.Path, err)
	}
	return decodeRecords(docs, source, studentRef, teacherRef), nil
}

// AddRecord writes a session record under the current hierarchical path.
// Used by seeding.
func (r *RecordRepository) AddRecord(ctx context.Context, rec models.SessionRecord) error {
	path := fmt.Sprintf("teachers/%s/students/%s/records", rec.TeacherRef, rec.StudentRef)
	fields := map[string]any{
		"studentName":    rec.StudentName,
		"date":           rec.Date.Format(time.RFC3339),
		"challengeFocus": rec.ChallengeFocus,
		"game":           rec.Game,
		"difficulty":     rec.Difficulty,
		"errors":         rec.Errors,
	}
	if rec.Accuracy != nil {
		fields["accuracy"] = *rec.Accuracy
	}
	if rec.CompletionTime != nil {
		fields["completionTime"] = *rec.CompletionTime
	}
	if err := r.store.Put(ctx, path, docstore.Document{ID: rec.ID, Fields: fields}); err != nil {
		return fmt.Errorf("failed to add record: %w", err)
	}
	return nil
}

func decodeRecords(docs []docstore.Document, source models.SourceTag, studentRef, teacherRef string) models.Records {
	records := make(models.Records, 0, len(docs))
	for _, doc := range docs {
		records = append(records, decodeRecord(doc, source, studentRef, teacherRef))
	}
	return records
}

// decodeRecord maps one stored document onto a SessionRecord. Field names
// drifted across the storage generations, so each metric probes the known
// aliases in order of preference.
func decodeRecord(doc docstore.Document, source models.SourceTag, studentRef, teacherRef string) models.SessionRecord {
	f := doc.Fields

	rec := models.SessionRecord{
		ID:          doc.ID,
		StudentRef:  studentRef,
		TeacherRef:  teacherRef,
		StudentName: normalize.String(firstPresent(f, "studentName", "name")),
		Date:        normalize.ParseDate(firstPresent(f, "date", "lastPlayed")),
		Game:        normalize.String(firstPresent(f, "game", "gameKey", "gameName")),
		Difficulty:  normalize.String(firstPresent(f, "difficulty", "difficultyText")),
		Errors:      normalize.Int(firstPresent(f, "errors", "errorCount")),
		Source:      source,
	}
	rec.ChallengeFocus = normalize.ChallengeFocus(normalize.String(firstPresent(f, "challengeFocus", "challenge", "category")))

	if v, ok := normalize.Float(f["accuracy"]); ok {
		rec.Accuracy = &v
	}
	if raw := firstPresent(f, "completionTime", "timeSeconds", "time", "durationSeconds"); raw != nil {
		if v, ok := normalize.Float(raw); ok {
			rec.CompletionTime = &v
		}
	}
	return rec
}

// firstPresent returns the first alias with a non-nil, non-empty value.
func firstPresent(fields map[string]any, names ...string) any {
	for _, name := range names {
		v, ok := fields[name]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			continue
		}
		return v
	}
	return nil
}

func sortRecordsByDateDesc(records []models.SessionRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})
}
