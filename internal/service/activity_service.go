package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"growbrain/internal/models"
	"growbrain/internal/normalize"
	"growbrain/internal/repository"
	"growbrain/internal/scope"
)

// DateRange is the coarse date filter of the activity table.
type DateRange string

const (
	RangeAll   DateRange = "all"
	RangeToday DateRange = "today"
	RangeWeek  DateRange = "week"
	RangeMonth DateRange = "month"
)

// ActivityFilters are the independent predicates of the activity table. An
// empty field means "no constraint"; the applied filter is their conjunction.
type ActivityFilters struct {
	Search    string
	Challenge string
	Game      string
	Range     DateRange
}

// ActivityGroup is one expandable row group: a student and their filtered
// sessions.
type ActivityGroup struct {
	StudentName string
	Records     models.Records
}

// ActivityPage is one rendered page of the grouped activity table.
type ActivityPage struct {
	Groups      []ActivityGroup
	Page        int
	TotalPages  int
	TotalGroups int
}

// ActivityStats are the header numbers above the activity table, computed
// over the filtered set.
type ActivityStats struct {
	TotalSessions       int
	ActiveStudents      int
	AvgAccuracy         float64
	MostCommonChallenge string
}

// ActivityService drives the grouped, filtered, paginated activity table.
// It is constructed per request; the filtered state is not shared across
// views. Pagination counts student groups, not flat records.
type ActivityService struct {
	studentRepo *repository.StudentRepository
	recordRepo  *repository.RecordRepository
	now         func() time.Time

	pageSize int
	page     int
	all      models.Records
	filtered models.Records
}

// NewActivityService creates a new activity service
func NewActivityService(studentRepo *repository.StudentRepository, recordRepo *repository.RecordRepository, pageSize int) *ActivityService {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &ActivityService{
		studentRepo: studentRepo,
		recordRepo:  recordRepo,
		now:         time.Now,
		pageSize:    pageSize,
		page:        1,
	}
}

// Load resolves every scoped student's records into the table's working set
// and applies an empty filter.
func (s *ActivityService) Load(ctx context.Context, sc scope.Scope) error {
	var students []models.Student
	var err error
	if sc.HasTeacher() {
		students, err = s.studentRepo.ListStudents(ctx, sc.TeacherID)
	} else {
		students, err = s.studentRepo.ListAllStudents(ctx)
	}
	if err != nil {
		return err
	}
	students = models.DedupeStudents(students)

	var all models.Records
	for _, student := range students {
		teacherID := sc.TeacherID
		if teacherID == "" {
			teacherID = student.TeacherID
		}
		records, rerr := s.recordRepo.Resolve(ctx, teacherID, student.ID, student.DisplayName())
		if rerr != nil {
			return rerr
		}
		for _, rec := range records {
			if !sc.InYear(rec.Date) {
				continue
			}
			if rec.StudentName == "" {
				rec.StudentName = student.DisplayName()
			}
			all = append(all, rec)
		}
	}

	s.all = all
	s.Filter(ActivityFilters{})
	return nil
}

// Filter applies the conjunction of the given predicates to the working set
// and resets to page 1. Date-range predicates evaluate against now at call
// time, never a cached boundary.
func (s *ActivityService) Filter(filters ActivityFilters) {
	now := s.now()
	search := strings.ToLower(strings.TrimSpace(filters.Search))

	filtered := make(models.Records, 0, len(s.all))
	for _, rec := range s.all {
		if search != "" && !matchesSearch(rec, search) {
			continue
		}
		if filters.Challenge != "" && rec.ChallengeFocus != filters.Challenge {
			continue
		}
		if filters.Game != "" && rec.Game != filters.Game {
			continue
		}
		if !inRange(rec.Date, filters.Range, now) {
			continue
		}
		filtered = append(filtered, rec)
	}

	s.filtered = filtered
	s.page = 1
}

// Page returns the requested page of student groups. Out-of-bounds page
// numbers clamp to the valid range.
func (s *ActivityService) Page(page int) ActivityPage {
	groups := groupByStudent(s.filtered)

	totalPages := (len(groups) + s.pageSize - 1) / s.pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	s.page = page

	start := (page - 1) * s.pageSize
	end := start + s.pageSize
	if start > len(groups) {
		start = len(groups)
	}
	if end > len(groups) {
		end = len(groups)
	}

	return ActivityPage{
		Groups:      groups[start:end],
		Page:        page,
		TotalPages:  totalPages,
		TotalGroups: len(groups),
	}
}

// CurrentPage re-renders the page selected by the last Page or Filter call.
func (s *ActivityService) CurrentPage() ActivityPage {
	return s.Page(s.page)
}

// Statistics computes the header numbers over the filtered set.
func (s *ActivityService) Statistics() ActivityStats {
	stats := ActivityStats{TotalSessions: len(s.filtered)}

	students := make(map[string]bool)
	var accSum float64
	var accN int
	var challengeOrder []string
	challenges := make(map[string]int)

	for _, rec := range s.filtered {
		students[strings.ToLower(rec.StudentName)] = true
		if rec.HasAccuracy() {
			accN++
			accSum += *rec.Accuracy
		}
		if rec.ChallengeFocus != "" {
			if _, ok := challenges[rec.ChallengeFocus]; !ok {
				challengeOrder = append(challengeOrder, rec.ChallengeFocus)
			}
			challenges[rec.ChallengeFocus]++
		}
	}

	stats.ActiveStudents = len(students)
	if accN > 0 {
		stats.AvgAccuracy = accSum / float64(accN)
	}

	best := 0
	for _, category := range challengeOrder {
		if challenges[category] > best {
			best = challenges[category]
			stats.MostCommonChallenge = category
		}
	}
	return stats
}

// ExportRows flattens the filtered set into CSV-ready rows, header first.
func (s *ActivityService) ExportRows() [][]string {
	rows := [][]string{{"Student", "Date", "Game", "Challenge", "Difficulty", "Accuracy", "Completion Time", "Errors"}}
	for _, rec := range s.filtered {
		rows = append(rows, []string{
			rec.StudentName,
			normalize.FullDate(rec.Date),
			normalize.GameDisplayName(rec.Game),
			rec.ChallengeFocus,
			normalize.DifficultyLabel(rec.Difficulty),
			formatMetric(rec.Accuracy, "%"),
			formatMetric(rec.CompletionTime, "s"),
			strconv.Itoa(rec.Errors),
		})
	}
	return rows
}

func matchesSearch(rec models.SessionRecord, search string) bool {
	return strings.Contains(strings.ToLower(rec.StudentName), search) ||
		strings.Contains(strings.ToLower(rec.Game), search) ||
		strings.Contains(strings.ToLower(rec.ChallengeFocus), search)
}

// inRange evaluates the date-range enum against now: calendar-day equality
// for today, ISO-week equality for week, calendar-month equality for month.
func inRange(date time.Time, r DateRange, now time.Time) bool {
	if r == "" || r == RangeAll {
		return true
	}
	if normalize.IsMissingDate(date) {
		return false
	}
	local := date.In(now.Location())
	switch r {
	case RangeToday:
		y1, m1, d1 := local.Date()
		y2, m2, d2 := now.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	case RangeWeek:
		y1, w1 := local.ISOWeek()
		y2, w2 := now.ISOWeek()
		return y1 == y2 && w1 == w2
	case RangeMonth:
		return local.Year() == now.Year() && local.Month() == now.Month()
	default:
		return true
	}
}

// groupByStudent buckets records under their student display name, groups in
// first-seen order.
func groupByStudent(records models.Records) []ActivityGroup {
	var order []string
	buckets := make(map[string]*ActivityGroup)

	for _, rec := range records {
		key := strings.ToLower(rec.StudentName)
		g, ok := buckets[key]
		if !ok {
			g = &ActivityGroup{StudentName: rec.StudentName}
			buckets[key] = g
			order = append(order, key)
		}
		g.Records = append(g.Records, rec)
	}

	groups := make([]ActivityGroup, 0, len(order))
	for _, key := range order {
		groups = append(groups, *buckets[key])
	}
	return groups
}
