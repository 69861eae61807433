package normalize

import (
	"testing"
	"time"
)

func TestTruthy(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{name: "bool true", value: true, want: true},
		{name: "bool false", value: false, want: false},
		{name: "number one", value: 1, want: true},
		{name: "float one", value: 1.0, want: true},
		{name: "number zero", value: 0, want: false},
		{name: "number two", value: 2, want: false},
		{name: "string true", value: "true", want: true},
		{name: "string yes mixed case", value: "Yes", want: true},
		{name: "string one", value: "1", want: true},
		{name: "padded string true", value: "  TRUE  ", want: true},
		{name: "string false", value: "false", want: false},
		{name: "empty string", value: "", want: false},
		{name: "string no", value: "no", want: false},
		{name: "nil", value: nil, want: false},
		{name: "unrelated type", value: []string{"true"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truthy(tt.value); got != tt.want {
				t.Errorf("Truthy(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestChallengeFocus(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "auditory variant maps to logic", raw: "Auditory-Sequential", want: "Logic"},
		{name: "plain auditory", raw: "auditory", want: "Logic"},
		{name: "lowercase memory", raw: "memory", want: "Memory"},
		{name: "uppercase attention", raw: "ATTENTION", want: "Attention"},
		{name: "verbal passthrough", raw: "Verbal", want: "Verbal"},
		{name: "unknown preserved", raw: "Spatial", want: "Spatial"},
		{name: "empty", raw: "", want: ""},
		{name: "whitespace trimmed", raw: "  logic ", want: "Logic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChallengeFocus(tt.raw); got != tt.want {
				t.Errorf("ChallengeFocus(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestGameDisplayName(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{name: "camel case split", key: "MemoryMatch", want: "Memory Match"},
		{name: "lower camel case", key: "wordSearchDeluxe", want: "word Search Deluxe"},
		{name: "already display name", key: " Memory Match ", want: "Memory Match"},
		{name: "single word", key: "Puzzle", want: "Puzzle"},
		{name: "empty", key: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GameDisplayName(tt.key); got != tt.want {
				t.Errorf("GameDisplayName(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestDifficultyLabel(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "Easy", want: "Starter"},
		{raw: "medium", want: "Growing"},
		{raw: "HARD", want: "Challenged"},
		{raw: "Expert", want: "Expert"},
		{raw: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := DifficultyLabel(tt.raw); got != tt.want {
				t.Errorf("DifficultyLabel(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

type fakeTimestamp struct {
	at time.Time
}

func (f fakeTimestamp) Time() time.Time {
	return f.at
}

func TestParseDate(t *testing.T) {
	ref := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value any
		want  time.Time
	}{
		{name: "native time", value: ref, want: ref},
		{name: "timestamp capability", value: fakeTimestamp{at: ref}, want: ref},
		{name: "rfc3339 string", value: "2024-03-15T10:30:00Z", want: ref},
		{name: "date only string", value: "2024-03-15", want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{name: "nil", value: nil, want: Epoch},
		{name: "empty string", value: "", want: Epoch},
		{name: "garbage string", value: "not a date", want: Epoch},
		{name: "unrelated type", value: 42, want: Epoch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDate(tt.value)
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestIsMissingDate(t *testing.T) {
	if !IsMissingDate(Epoch) {
		t.Error("expected Epoch to be missing")
	}
	if !IsMissingDate(time.Time{}) {
		t.Error("expected zero time to be missing")
	}
	if IsMissingDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected real date not to be missing")
	}
}

func TestFloat(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   float64
		wantOK bool
	}{
		{name: "float", value: 87.5, want: 87.5, wantOK: true},
		{name: "int", value: 90, want: 90, wantOK: true},
		{name: "numeric string", value: "72.5", want: 72.5, wantOK: true},
		{name: "padded string", value: " 60 ", want: 60, wantOK: true},
		{name: "bad string", value: "n/a", want: 0, wantOK: false},
		{name: "nil", value: nil, want: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Float(tt.value)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Float(%v) = (%v, %v), want (%v, %v)", tt.value, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
