// Package normalize canonicalizes the heterogeneous field representations
// accumulated across the product's storage history: challenge-focus
// synonyms, truthy-like flags, game keys and date values. Everything here is
// a pure function and total over untrusted input.
package normalize

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Epoch is the normalized value for missing or unparseable dates. Callers
// decide whether to exclude epoch-dated records (trend buckets should).
var Epoch = time.Unix(0, 0).UTC()

// Timestamped is the conversion capability of native store timestamps.
// Anything exposing it is resolved through it before string parsing is tried.
type Timestamped interface {
	Time() time.Time
}

// dateLayouts are tried in order for string dates. Store backends serialize
// time values as RFC3339; legacy web records used date-only and
// space-separated forms.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"Jan 2, 2006",
}

// ChallengeFocus maps legacy and synonym challenge names onto the canonical
// categories. Any value containing "auditory" counts as Logic; canonical
// names pass through with canonical casing; unknown values pass through
// verbatim so aggregation can still count them under their raw label.
func ChallengeFocus(raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return ""
	}
	if strings.Contains(strings.ToLower(v), "auditory") {
		return "Logic"
	}
	switch strings.ToLower(v) {
	case "memory":
		return "Memory"
	case "attention":
		return "Attention"
	case "logic":
		return "Logic"
	case "verbal":
		return "Verbal"
	}
	return v
}

// Truthy interprets the truthy-like flag values found in student documents:
// booleans, the number 1, and the strings "true", "1", "yes" in any casing.
// Every other value, including nil, is false.
func Truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case int:
		return v == 1
	case int32:
		return v == 1
	case int64:
		return v == 1
	case float32:
		return v == 1
	case float64:
		return v == 1
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		return s == "true" || s == "1" || s == "yes"
	default:
		return false
	}
}

// GameDisplayName turns a camel-case game key into a display name. Keys that
// already contain a space are display names and pass through trimmed.
func GameDisplayName(key string) string {
	key = strings.TrimSpace(key)
	if key == "" || strings.Contains(key, " ") {
		return key
	}
	var b strings.Builder
	for i, r := range key {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// DifficultyLabel remaps the stored difficulty names onto the display labels
// used in reports. Unknown values pass through verbatim.
func DifficultyLabel(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "easy":
		return "Starter"
	case "medium":
		return "Growing"
	case "hard":
		return "Challenged"
	}
	return strings.TrimSpace(raw)
}

// ParseDate resolves the date representations found in records and student
// documents: native time values, anything with a Time() capability, ISO-ish
// strings, or nothing. Missing and unparseable values normalize to Epoch;
// ParseDate never fails.
func ParseDate(value any) time.Time {
	switch v := value.(type) {
	case nil:
		return Epoch
	case time.Time:
		if v.IsZero() {
			return Epoch
		}
		return v
	case *time.Time:
		if v == nil || v.IsZero() {
			return Epoch
		}
		return *v
	case Timestamped:
		return ParseDate(v.Time())
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return Epoch
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
		return Epoch
	default:
		return Epoch
	}
}

// IsMissingDate reports whether a normalized date is the missing-value
// sentinel.
func IsMissingDate(t time.Time) bool {
	return t.IsZero() || t.Equal(Epoch)
}

// Float coerces a numeric-or-string field to a float64, reporting whether a
// usable number was present.
func Float(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Int coerces a field to an int, defaulting to 0.
func Int(value any) int {
	f, ok := Float(value)
	if !ok {
		return 0
	}
	return int(f)
}

// String coerces a field to a trimmed string, defaulting to "".
func String(value any) string {
	s, _ := value.(string)
	return strings.TrimSpace(s)
}

// MonthDayKey is the short date key trend points are grouped by.
func MonthDayKey(t time.Time) string {
	return t.Format("01-02")
}

// ShortDate formats a weekly-activity bucket label.
func ShortDate(t time.Time) string {
	return t.Format("Jan 2")
}

// ReportDate formats a date for report tables and trend labels.
func ReportDate(t time.Time) string {
	if IsMissingDate(t) {
		return "N/A"
	}
	return t.Format("Jan 2, 2006")
}

// FullDate formats a date with time for the activity table.
func FullDate(t time.Time) string {
	if IsMissingDate(t) {
		return "N/A"
	}
	return t.Format("Jan 2, 2006 3:04 PM")
}
