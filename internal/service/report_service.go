package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"growbrain/internal/models"
	"growbrain/internal/normalize"
	"growbrain/internal/repository"
)

// trendWindow caps how many of the most recent records feed the trend graph
// and the session table.
const trendWindow = 20

// ReportService builds the StudentReport payload handed to the rendering
// collaborator. Assembly is pure given a record set; it works the same for a
// first-match resolver result and a unified merged result.
type ReportService struct {
	studentRepo *repository.StudentRepository
	recordRepo  *repository.RecordRepository
	email       *EmailService
}

// NewReportService creates a new report service
func NewReportService(studentRepo *repository.StudentRepository, recordRepo *repository.RecordRepository, email *EmailService) *ReportService {
	return &ReportService{
		studentRepo: studentRepo,
		recordRepo:  recordRepo,
		email:       email,
	}
}

// Assemble builds the report for one student from the unified record set,
// which pulls every storage generation for maximum recall.
func (s *ReportService) Assemble(ctx context.Context, teacherID, studentID string) (*models.StudentReport, error) {
	student, err := s.studentRepo.GetStudent(ctx, teacherID, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, fmt.Errorf("student %s not found", studentID)
	}

	records, err := s.recordRepo.ResolveUnified(ctx, teacherID, studentID, student.DisplayName())
	if err != nil {
		return nil, err
	}
	return BuildReport(*student, records), nil
}

// BuildReport assembles a StudentReport from any record set. The set is
// expected newest first; stats and trend cover at most the trendWindow most
// recent records, TotalSessions covers the whole set.
func BuildReport(student models.Student, set models.RecordSet) *models.StudentReport {
	recent := make(models.Records, 0, trendWindow)
	set.Each(func(rec models.SessionRecord) {
		if len(recent) < trendWindow {
			recent = append(recent, rec)
		}
	})

	report := &models.StudentReport{
		Profile: models.ReportProfile{
			Name:           student.DisplayName(),
			Age:            student.Age,
			Sex:            student.Sex,
			GuardianName:   student.GuardianName,
			ContactNumber:  student.ContactNumber,
			CognitiveNeeds: student.Needs.List(),
		},
		Stats: reportStats(recent, set.Len()),
		Trend: trendArrays(recent),
		Table: reportTable(recent),
	}
	return report
}

func reportStats(recent models.Records, totalSessions int) models.ReportStats {
	stats := models.ReportStats{TotalSessions: totalSessions}

	var accSum, timeSum, errSum float64
	var accN, timeN int
	for _, rec := range recent {
		if rec.HasAccuracy() {
			accN++
			accSum += *rec.Accuracy
		}
		if rec.CompletionTime != nil {
			timeN++
			timeSum += *rec.CompletionTime
		}
		errSum += float64(rec.Errors)
	}
	if accN > 0 {
		stats.AvgAccuracy = accSum / float64(accN)
	}
	if timeN > 0 {
		stats.AvgCompletionTime = timeSum / float64(timeN)
	}
	if len(recent) > 0 {
		stats.AvgErrors = errSum / float64(len(recent))
	}
	return stats
}

// trendArrays produces the parallel arrays oldest to newest. A missing
// metric yields nil at its index; plotting a zero instead would bend the
// rendered line.
func trendArrays(recent models.Records) models.TrendSeries {
	series := models.TrendSeries{
		Dates:          make([]string, 0, len(recent)),
		Accuracy:       make([]*float64, 0, len(recent)),
		CompletionTime: make([]*float64, 0, len(recent)),
		Errors:         make([]*int, 0, len(recent)),
	}

	for i := len(recent) - 1; i >= 0; i-- {
		rec := recent[i]
		series.Dates = append(series.Dates, normalize.ShortDate(rec.Date))
		series.Accuracy = append(series.Accuracy, rec.Accuracy)
		series.CompletionTime = append(series.CompletionTime, rec.CompletionTime)
		errs := rec.Errors
		series.Errors = append(series.Errors, &errs)
	}
	return series
}

func reportTable(recent models.Records) []models.ReportRow {
	rows := make([]models.ReportRow, 0, len(recent))
	for _, rec := range recent {
		rows = append(rows, models.ReportRow{
			Date:           normalize.ReportDate(rec.Date),
			Game:           normalize.GameDisplayName(rec.Game),
			ChallengeFocus: rec.ChallengeFocus,
			Difficulty:     normalize.DifficultyLabel(rec.Difficulty),
			Accuracy:       formatMetric(rec.Accuracy, "%"),
			CompletionTime: formatMetric(rec.CompletionTime, "s"),
			Errors:         rec.Errors,
		})
	}
	return rows
}

// CSVRows flattens a report into CSV rows for the rendering collaborator,
// header first.
func CSVRows(report *models.StudentReport) [][]string {
	rows := [][]string{{"Date", "Game", "Challenge", "Difficulty", "Accuracy", "Completion Time", "Errors"}}
	for _, row := range report.Table {
		rows = append(rows, []string{
			row.Date,
			row.Game,
			row.ChallengeFocus,
			row.Difficulty,
			row.Accuracy,
			row.CompletionTime,
			strconv.Itoa(row.Errors),
		})
	}
	return rows
}

// WriteCSV streams rows as CSV.
func WriteCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// NotifyReady emails the teacher that a generated report is available. It is
// a no-op when the email service is disabled or absent.
func (s *ReportService) NotifyReady(ctx context.Context, teacher models.Teacher, studentName string) error {
	if s.email == nil {
		return nil
	}
	return s.email.SendReportReady(ctx, teacher.Email, teacher.Name, studentName)
}

// formatMetric renders an optional numeric metric for display. Absent
// metrics read "N/A" rather than a misleading zero.
func formatMetric(v *float64, suffix string) string {
	if v == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64) + suffix
}
