package models

import "time"

// SourceTag identifies which storage shape a session record was resolved
// from. It is diagnostic only and is never written back to the store.
type SourceTag string

const (
	SourceCurrent          SourceTag = "CURRENT"
	SourceLegacyFlatByName SourceTag = "LEGACY_FLAT_BY_NAME"
	SourceLegacyByID       SourceTag = "LEGACY_SESSIONS_BY_ID"
	SourceLegacyByName     SourceTag = "LEGACY_SESSIONS_BY_NAME"
)

// SessionRecord is one completed game-play event with performance metrics.
// Accuracy and CompletionTime are nil when the stored record had no usable
// numeric value; Errors defaults to 0.
type SessionRecord struct {
	ID             string
	StudentRef     string
	TeacherRef     string
	StudentName    string
	Date           time.Time
	ChallengeFocus string
	Game           string
	Difficulty     string
	Accuracy       *float64
	CompletionTime *float64
	Errors         int
	Source         SourceTag
}

// HasAccuracy reports whether the record carries a numeric accuracy value.
// Records without one are excluded from accuracy averages.
func (r SessionRecord) HasAccuracy() bool {
	return r.Accuracy != nil
}

// RecordSet is the iteration capability the report assembler is built
// against, so it works identically on a first-match resolver result and a
// unified-mode merged result.
type RecordSet interface {
	Each(fn func(SessionRecord))
	Len() int
}

// Records is the concrete record set produced by the resolver, newest first.
type Records []SessionRecord

func (rs Records) Each(fn func(SessionRecord)) {
	for _, r := range rs {
		fn(r)
	}
}

func (rs Records) Len() int {
	return len(rs)
}
