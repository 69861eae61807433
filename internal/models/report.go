package models

// ReportProfile is the student profile block of a report payload. The
// cognitive-need list is filtered to the four canonical categories.
type ReportProfile struct {
	Name           string
	Age            int
	Sex            string
	GuardianName   string
	ContactNumber  string
	CognitiveNeeds []string
}

// ReportStats holds the headline averages of a report. Averages are computed
// over the (at most 20) records used for the trend graph; TotalSessions
// reflects the full resolved set.
type ReportStats struct {
	AvgAccuracy       float64
	AvgCompletionTime float64
	AvgErrors         float64
	TotalSessions     int
}

// TrendSeries holds the parallel trend arrays, oldest to newest. A nil entry
// means the metric was missing for that record; renderers must gap the line
// rather than plot a zero.
type TrendSeries struct {
	Dates          []string
	Accuracy       []*float64
	CompletionTime []*float64
	Errors         []*int
}

// ReportRow is one display-formatted line of the session table.
type ReportRow struct {
	Date           string
	Game           string
	ChallengeFocus string
	Difficulty     string
	Accuracy       string
	CompletionTime string
	Errors         int
}

// StudentReport is the canonical payload handed to the external
// report-rendering collaborator.
type StudentReport struct {
	Profile ReportProfile
	Stats   ReportStats
	Trend   TrendSeries
	Table   []ReportRow
}
