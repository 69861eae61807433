package models

import (
	"strings"
	"time"
)

// CognitiveNeeds holds the four independent boolean need flags. Source
// documents store these as booleans, 1/0 numbers or "true"/"yes" strings;
// they are normalized at decode time.
type CognitiveNeeds struct {
	Attention bool
	Logic     bool
	Memory    bool
	Verbal    bool
}

// List returns the canonical category names for the set flags, in the fixed
// Attention/Logic/Memory/Verbal order.
func (n CognitiveNeeds) List() []string {
	var out []string
	if n.Attention {
		out = append(out, "Attention")
	}
	if n.Logic {
		out = append(out, "Logic")
	}
	if n.Memory {
		out = append(out, "Memory")
	}
	if n.Verbal {
		out = append(out, "Verbal")
	}
	return out
}

// Student represents a learner profile owned by a teacher.
type Student struct {
	ID            string
	TeacherID     string
	FullName      string
	Name          string
	Age           int
	Sex           string
	GuardianName  string
	ContactNumber string
	CreatedAt     time.Time
	Needs         CognitiveNeeds
}

// DisplayName returns the first non-empty of fullName, name and the document
// id, matching how historical records were keyed.
func (s Student) DisplayName() string {
	if s.FullName != "" {
		return s.FullName
	}
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}

// DedupeStudents drops students whose normalized display name was already
// seen, keeping first-seen order. Historical dual-keying left some students
// stored once under their id and again under their full name; counting both
// would double dashboard totals.
func DedupeStudents(students []Student) []Student {
	seen := make(map[string]bool, len(students))
	out := make([]Student, 0, len(students))
	for _, s := range students {
		key := strings.ToLower(strings.TrimSpace(s.DisplayName()))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
