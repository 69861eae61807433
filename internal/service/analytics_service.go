package service

import (
	"context"
	"fmt"
	"time"

	"growbrain/internal/models"
	"growbrain/internal/normalize"
	"growbrain/internal/repository"
	"growbrain/internal/scope"
)

// labelThreshold is the minimum share (percent) a challenge category needs
// to keep its on-chart label. Smaller slices stay in the legend and totals.
const labelThreshold = 8.0

// AnalyticsService computes the dashboard aggregates. It holds no aggregate
// state; every call recomputes from the resolved record set.
type AnalyticsService struct {
	studentRepo *repository.StudentRepository
	recordRepo  *repository.RecordRepository
	now         func() time.Time
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(studentRepo *repository.StudentRepository, recordRepo *repository.RecordRepository) *AnalyticsService {
	return &AnalyticsService{
		studentRepo: studentRepo,
		recordRepo:  recordRepo,
		now:         time.Now,
	}
}

// DashboardData is everything one dashboard render needs, computed in a
// single pass over the scoped record set.
type DashboardData struct {
	Stats      models.DashboardStats
	Summaries  models.Summaries
	Weekly     []models.DayCount
	Challenges []models.ChallengeSlice
	Years      []string
}

// studentRecords pairs a student with their scoped resolved records.
type studentRecords struct {
	student models.Student
	records models.Records
}

// Dashboard loads the scoped students and their records and computes every
// dashboard aggregate.
func (s *AnalyticsService) Dashboard(ctx context.Context, sc scope.Scope) (*DashboardData, error) {
	loaded, years, err := s.loadScoped(ctx, sc)
	if err != nil {
		return nil, err
	}

	var all models.Records
	for _, sr := range loaded {
		all = append(all, sr.records...)
	}

	data := &DashboardData{
		Stats:      dashboardStats(loaded),
		Summaries:  summaries(loaded, all),
		Weekly:     weeklyActivity(all, s.now()),
		Challenges: challengeDistribution(all),
		Years:      years,
	}
	return data, nil
}

// loadScoped lists the scoped students (deduped by display name), resolves
// each student's records and drops records outside the selected school year.
func (s *AnalyticsService) loadScoped(ctx context.Context, sc scope.Scope) ([]studentRecords, []string, error) {
	var students []models.Student
	var err error
	if sc.HasTeacher() {
		students, err = s.studentRepo.ListStudents(ctx, sc.TeacherID)
	} else {
		students, err = s.studentRepo.ListAllStudents(ctx)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load students: %w", err)
	}

	years := scope.AvailableYears(students)
	students = models.DedupeStudents(students)

	loaded := make([]studentRecords, 0, len(students))
	for _, student := range students {
		teacherID := sc.TeacherID
		if teacherID == "" {
			teacherID = student.TeacherID
		}
		records, rerr := s.recordRepo.Resolve(ctx, teacherID, student.ID, student.DisplayName())
		if rerr != nil {
			return nil, nil, rerr
		}

		scoped := make(models.Records, 0, len(records))
		for _, rec := range records {
			if sc.InYear(rec.Date) {
				scoped = append(scoped, rec)
			}
		}
		loaded = append(loaded, studentRecords{student: student, records: scoped})
	}
	return loaded, years, nil
}

// dashboardStats computes the headline numbers. Totals and the accuracy
// average cover valid records only; a student with no valid records joins
// none of the three tiers.
func dashboardStats(loaded []studentRecords) models.DashboardStats {
	stats := models.DashboardStats{TotalStudents: len(loaded)}

	var accuracySum float64
	var timeSum float64
	var timeCount int

	for _, sr := range loaded {
		var sum float64
		var valid int
		for _, rec := range sr.records {
			if rec.HasAccuracy() {
				valid++
				sum += *rec.Accuracy
			}
			if rec.CompletionTime != nil {
				timeCount++
				timeSum += *rec.CompletionTime
			}
		}
		stats.TotalSessions += valid
		accuracySum += sum

		if valid == 0 {
			continue
		}
		switch tier := classify(sum / float64(valid)); tier {
		case models.TierImproving:
			stats.Improving++
		case models.TierNeedsAttention:
			stats.NeedsAttention++
		case models.TierStruggling:
			stats.Struggling++
		}
	}

	if stats.TotalSessions > 0 {
		stats.AvgAccuracy = accuracySum / float64(stats.TotalSessions)
	}
	if timeCount > 0 {
		stats.AvgCompletionTime = timeSum / float64(timeCount)
	}
	return stats
}

// classify maps an average accuracy onto a tier.
func classify(avgAccuracy float64) models.Tier {
	switch {
	case avgAccuracy >= 85:
		return models.TierImproving
	case avgAccuracy >= 60:
		return models.TierNeedsAttention
	default:
		return models.TierStruggling
	}
}

// summaries derives the trend series and the game/student panels.
func summaries(loaded []studentRecords, all models.Records) models.Summaries {
	out := models.Summaries{
		Trend: trendSeries(all),
		Games: gameStats(all),
	}

	// Top game and needs focus by mean accuracy, ties kept at first seen.
	for i := range out.Games {
		g := out.Games[i]
		if out.TopGame == nil || g.AvgAccuracy > out.TopGame.Value {
			out.TopGame = &models.Insight{Name: g.Game, Value: g.AvgAccuracy}
		}
		if out.NeedsFocus == nil || g.AvgAccuracy < out.NeedsFocus.Value {
			out.NeedsFocus = &models.Insight{Name: g.Game, Value: g.AvgAccuracy}
		}
	}

	for _, sr := range loaded {
		row := models.StudentOverview{Name: sr.student.DisplayName(), Sessions: len(sr.records)}
		var accSum, timeSum float64
		var accN, timeN int
		for _, rec := range sr.records {
			if rec.HasAccuracy() {
				accN++
				accSum += *rec.Accuracy
			}
			if rec.CompletionTime != nil {
				timeN++
				timeSum += *rec.CompletionTime
			}
		}
		if accN > 0 {
			row.AvgAccuracy = accSum / float64(accN)
		}
		if timeN > 0 {
			row.AvgCompletionTime = timeSum / float64(timeN)
		}
		out.Students = append(out.Students, row)

		if out.BestStreak == nil || row.Sessions > out.BestStreak.Sessions {
			out.BestStreak = &models.StreakInsight{Name: row.Name, Sessions: row.Sessions}
		}
	}
	return out
}

// trendSeries groups valid records by month-day key and averages accuracy
// per key. The series keeps first-occurrence order, which for a newest-first
// record set is not chronological. Existing charts depend on this order.
func trendSeries(records models.Records) []models.TrendPoint {
	type bucket struct {
		sum   float64
		count int
	}
	var order []string
	buckets := make(map[string]*bucket)

	for _, rec := range records {
		if !rec.HasAccuracy() || normalize.IsMissingDate(rec.Date) {
			continue
		}
		key := normalize.MonthDayKey(rec.Date)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
			order = append(order, key)
		}
		b.sum += *rec.Accuracy
		b.count++
	}

	points := make([]models.TrendPoint, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		points = append(points, models.TrendPoint{Key: key, AvgAccuracy: b.sum / float64(b.count)})
	}
	return points
}

// gameStats computes per-game session counts and mean accuracy in first-seen
// game order.
func gameStats(records models.Records) []models.GameStat {
	type bucket struct {
		sessions int
		sum      float64
		valid    int
	}
	var order []string
	buckets := make(map[string]*bucket)

	for _, rec := range records {
		if rec.Game == "" {
			continue
		}
		b, ok := buckets[rec.Game]
		if !ok {
			b = &bucket{}
			buckets[rec.Game] = b
			order = append(order, rec.Game)
		}
		b.sessions++
		if rec.HasAccuracy() {
			b.valid++
			b.sum += *rec.Accuracy
		}
	}

	stats := make([]models.GameStat, 0, len(order))
	for _, game := range order {
		b := buckets[game]
		stat := models.GameStat{Game: normalize.GameDisplayName(game), Sessions: b.sessions}
		if b.valid > 0 {
			stat.AvgAccuracy = b.sum / float64(b.valid)
		}
		stats = append(stats, stat)
	}
	return stats
}

// weeklyActivity buckets session counts for the 7 calendar days ending today
// inclusive, zero-filled. Day membership is calendar-day equality in local
// time.
func weeklyActivity(records models.Records, now time.Time) []models.DayCount {
	days := make([]models.DayCount, 7)
	starts := make([]time.Time, 7)
	for i := 0; i < 7; i++ {
		day := now.AddDate(0, 0, i-6)
		y, m, d := day.Date()
		starts[i] = time.Date(y, m, d, 0, 0, 0, 0, day.Location())
		days[i] = models.DayCount{Label: day.Format("Mon")}
	}

	for _, rec := range records {
		if normalize.IsMissingDate(rec.Date) {
			continue
		}
		local := rec.Date.In(now.Location())
		y, m, d := local.Date()
		recDay := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
		for i := range starts {
			if recDay.Equal(starts[i]) {
				days[i].Count++
				break
			}
		}
	}
	return days
}

// challengeDistribution counts records per challenge category and computes
// each category's share. Categories under the label threshold keep their
// counts but lose the on-chart label.
func challengeDistribution(records models.Records) []models.ChallengeSlice {
	var order []string
	counts := make(map[string]int)

	for _, rec := range records {
		category := rec.ChallengeFocus
		if category == "" {
			continue
		}
		if _, ok := counts[category]; !ok {
			order = append(order, category)
		}
		counts[category]++
	}

	total := 0
	for _, c := range counts {
		total += c
	}

	slices := make([]models.ChallengeSlice, 0, len(order))
	for _, category := range order {
		count := counts[category]
		percent := 0.0
		if total > 0 {
			percent = float64(count) / float64(total) * 100
		}
		slices = append(slices, models.ChallengeSlice{
			Category: category,
			Count:    count,
			Percent:  percent,
			Labeled:  percent >= labelThreshold,
		})
	}
	return slices
}
