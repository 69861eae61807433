package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"growbrain/internal/docstore"
	"growbrain/internal/models"
	"growbrain/internal/repository"
)

func makeRecords(n int) models.Records {
	records := make(models.Records, 0, n)
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	for i := n - 1; i >= 0; i-- {
		acc := float64(50 + i)
		records = append(records, models.SessionRecord{
			ID:       fmt.Sprintf("r%d", i),
			Date:     base.AddDate(0, 0, i),
			Accuracy: &acc,
			Game:     "MemoryMatch",
			Errors:   i % 3,
		})
	}
	return records
}

func TestBuildReportCapsTableAtTwenty(t *testing.T) {
	student := models.Student{ID: "s1", FullName: "Ana Cruz", Age: 9}
	records := makeRecords(25)

	report := BuildReport(student, records)

	if len(report.Table) != 20 {
		t.Errorf("table length = %d, want 20", len(report.Table))
	}
	if report.Stats.TotalSessions != 25 {
		t.Errorf("TotalSessions = %d, want full set of 25", report.Stats.TotalSessions)
	}

	// All trend arrays stay parallel.
	n := len(report.Trend.Dates)
	if n != 20 {
		t.Errorf("trend length = %d, want 20", n)
	}
	if len(report.Trend.Accuracy) != n || len(report.Trend.CompletionTime) != n || len(report.Trend.Errors) != n {
		t.Errorf("trend arrays not parallel: dates=%d acc=%d time=%d err=%d",
			n, len(report.Trend.Accuracy), len(report.Trend.CompletionTime), len(report.Trend.Errors))
	}
}

func TestBuildReportTrendOldestFirstWithGaps(t *testing.T) {
	acc := 88.0
	records := models.Records{
		{ID: "new", Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), Accuracy: &acc},
		{ID: "old", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}

	report := BuildReport(models.Student{ID: "s1"}, records)

	if report.Trend.Dates[0] != "Mar 1" || report.Trend.Dates[1] != "Mar 2" {
		t.Errorf("Dates = %v, want oldest first", report.Trend.Dates)
	}
	if report.Trend.Accuracy[0] != nil {
		t.Error("missing accuracy should be nil, not zero")
	}
	if report.Trend.Accuracy[1] == nil || *report.Trend.Accuracy[1] != 88 {
		t.Errorf("Accuracy[1] = %v, want 88", report.Trend.Accuracy[1])
	}
	if report.Trend.CompletionTime[0] != nil {
		t.Error("missing completion time should be nil")
	}
}

func TestBuildReportProfileNeedsList(t *testing.T) {
	student := models.Student{
		ID:       "s1",
		FullName: "Ana Cruz",
		Needs:    models.CognitiveNeeds{Logic: true, Verbal: true},
	}

	report := BuildReport(student, models.Records{})

	want := []string{"Logic", "Verbal"}
	if len(report.Profile.CognitiveNeeds) != len(want) {
		t.Fatalf("CognitiveNeeds = %v, want %v", report.Profile.CognitiveNeeds, want)
	}
	for i := range want {
		if report.Profile.CognitiveNeeds[i] != want[i] {
			t.Errorf("CognitiveNeeds = %v, want %v", report.Profile.CognitiveNeeds, want)
		}
	}
}

func TestBuildReportWorksOnAnyRecordSet(t *testing.T) {
	// A unified merged result and a plain resolver result both satisfy the
	// record-set surface; the assembled report only depends on it.
	acc := 75.0
	unified := models.Records{
		{ID: "a", Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Accuracy: &acc, Source: models.SourceCurrent},
		{ID: "b", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Accuracy: &acc, Source: models.SourceLegacyFlatByName},
	}

	report := BuildReport(models.Student{ID: "s1"}, unified)
	if report.Stats.TotalSessions != 2 || report.Stats.AvgAccuracy != 75 {
		t.Errorf("stats = %+v", report.Stats)
	}
}

func TestAssembleFromStore(t *testing.T) {
	store := docstore.NewMemoryStore(nil)
	ctx := context.Background()

	if err := store.Put(ctx, "teachers/t1/students", docstore.Document{
		ID:     "s1",
		Fields: map[string]any{"fullName": "Ana Cruz", "age": 9},
	}); err != nil {
		t.Fatalf("Put student failed: %v", err)
	}
	if err := store.Put(ctx, "teachers/t1/students/s1/records", docstore.Document{
		ID:     "r1",
		Fields: map[string]any{"date": "2024-03-01", "accuracy": 90.0, "game": "MemoryMatch"},
	}); err != nil {
		t.Fatalf("Put record failed: %v", err)
	}
	// Legacy data joins the unified report.
	if err := store.Put(ctx, "students/s1/sessions", docstore.Document{
		ID:     "old1",
		Fields: map[string]any{"date": "2023-05-01", "accuracy": 50.0},
	}); err != nil {
		t.Fatalf("Put legacy record failed: %v", err)
	}

	svc := NewReportService(repository.NewStudentRepository(store), repository.NewRecordRepository(store), nil)
	report, err := svc.Assemble(ctx, "t1", "s1")
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	if report.Profile.Name != "Ana Cruz" {
		t.Errorf("Profile.Name = %v", report.Profile.Name)
	}
	if report.Stats.TotalSessions != 2 {
		t.Errorf("TotalSessions = %d, want 2 across storage generations", report.Stats.TotalSessions)
	}
	if report.Stats.AvgAccuracy != 70 {
		t.Errorf("AvgAccuracy = %v, want 70", report.Stats.AvgAccuracy)
	}
}

func TestWriteCSV(t *testing.T) {
	acc := 90.0
	records := models.Records{
		{ID: "r1", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Accuracy: &acc, Game: "MemoryMatch", Difficulty: "Easy"},
	}
	report := BuildReport(models.Student{ID: "s1", FullName: "Ana"}, records)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, CSVRows(report)); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 line, got %d", len(lines))
	}
	if !strings.Contains(lines[1], "Memory Match") || !strings.Contains(lines[1], "Starter") {
		t.Errorf("csv line = %q", lines[1])
	}
	if !strings.Contains(lines[1], "90.0%") {
		t.Errorf("csv line missing accuracy: %q", lines[1])
	}
}
