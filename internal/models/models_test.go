package models

import (
	"testing"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name    string
		student Student
		want    string
	}{
		{"full name wins", Student{ID: "s1", FullName: "Ana Cruz", Name: "Ana"}, "Ana Cruz"},
		{"falls back to name", Student{ID: "s1", Name: "Ana"}, "Ana"},
		{"falls back to id", Student{ID: "s1"}, "s1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.student.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDedupeStudents(t *testing.T) {
	students := []Student{
		{ID: "s1", FullName: "Ana Cruz"},
		{ID: "Ana Cruz", FullName: "Ana Cruz"},
		{ID: "s2", FullName: "ana cruz "},
		{ID: "s3", FullName: "Ben Reyes"},
	}

	got := DedupeStudents(students)
	if len(got) != 2 {
		t.Fatalf("DedupeStudents returned %d students, want 2", len(got))
	}
	if got[0].ID != "s1" {
		t.Errorf("first survivor = %q, want first-seen s1", got[0].ID)
	}
	if got[1].FullName != "Ben Reyes" {
		t.Errorf("second survivor = %q, want Ben Reyes", got[1].FullName)
	}
}

func TestCognitiveNeedsList(t *testing.T) {
	tests := []struct {
		name  string
		needs CognitiveNeeds
		want  []string
	}{
		{"none set", CognitiveNeeds{}, nil},
		{"all set", CognitiveNeeds{Attention: true, Logic: true, Memory: true, Verbal: true}, []string{"Attention", "Logic", "Memory", "Verbal"}},
		{"fixed order", CognitiveNeeds{Verbal: true, Logic: true}, []string{"Logic", "Verbal"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.needs.List()
			if len(got) != len(tt.want) {
				t.Fatalf("List() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("List()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestHasAccuracy(t *testing.T) {
	v := 85.0
	if (SessionRecord{Accuracy: &v}).HasAccuracy() != true {
		t.Error("record with accuracy reported as missing")
	}
	if (SessionRecord{}).HasAccuracy() != false {
		t.Error("record without accuracy reported as present")
	}
}
