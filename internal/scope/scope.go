// Package scope holds the explicit view scope passed into the resolver and
// aggregation calls: the selected teacher and the optional school year.
package scope

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"growbrain/internal/models"
	"growbrain/internal/normalize"
)

// Scope restricts a dashboard view to one teacher and, optionally, one
// school year. The zero value is the open scope: no teacher selected, all
// years pass.
type Scope struct {
	TeacherID  string
	SchoolYear string
}

// HasTeacher reports whether a teacher is selected. An empty teacher scope is
// a valid state, not an error.
func (s Scope) HasTeacher() bool {
	return s.TeacherID != ""
}

// InYear reports whether a date falls inside the scope's school year. With no
// year selected every date passes. Dates that fail to parse also pass: a
// malformed date must not silently vanish from aggregates.
func (s Scope) InYear(date time.Time) bool {
	return InYear(date, s.SchoolYear)
}

// yearBounds parses a "{Y}-{Y+1}" school-year label.
func yearBounds(selected string) (int, int, bool) {
	parts := strings.SplitN(selected, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return start, end, true
}

// InYear reports whether a date's calendar year falls within the selected
// school-year range. Empty selection, unparseable selections and missing
// dates all pass (fail-open).
func InYear(date time.Time, selected string) bool {
	if selected == "" {
		return true
	}
	start, end, ok := yearBounds(selected)
	if !ok {
		return true
	}
	if normalize.IsMissingDate(date) {
		return true
	}
	year := date.Year()
	return year >= start && year <= end
}

// AvailableYears derives the selectable school years from student creation
// dates: one "{year}-{year+1}" label per distinct creation year, sorted
// newest first. Students without a usable creation date contribute nothing.
func AvailableYears(students []models.Student) []string {
	seen := make(map[int]bool)
	for _, s := range students {
		if normalize.IsMissingDate(s.CreatedAt) {
			continue
		}
		seen[s.CreatedAt.Year()] = true
	}

	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	labels := make([]string, 0, len(years))
	for _, y := range years {
		labels = append(labels, fmt.Sprintf("%d-%d", y, y+1))
	}
	return labels
}
