package models

// Tier is the classification of a student by average accuracy.
type Tier string

const (
	TierImproving      Tier = "Improving"
	TierNeedsAttention Tier = "Needs Attention"
	TierStruggling     Tier = "Struggling"
)

// DashboardStats are the headline numbers of the teacher dashboard, scoped by
// (teacher, school year). Computed per view and discarded; never persisted.
type DashboardStats struct {
	TotalStudents     int
	TotalSessions     int
	AvgAccuracy       float64
	AvgCompletionTime float64
	Improving         int
	NeedsAttention    int
	Struggling        int
}

// GameStat is the aggregate line for one distinct game key.
type GameStat struct {
	Game        string
	Sessions    int
	AvgAccuracy float64
}

// StudentOverview is one row of the per-student overview panel.
type StudentOverview struct {
	Name              string
	Sessions          int
	AvgAccuracy       float64
	AvgCompletionTime float64
}

// Insight names a game or student surfaced on the dashboard together with
// its headline value.
type Insight struct {
	Name  string
	Value float64
}

// StreakInsight names the student with the most sessions. The product calls
// this "best streak" although it is a session count, not a consecutive-day
// streak.
type StreakInsight struct {
	Name     string
	Sessions int
}

// TrendPoint is one point of the dashboard accuracy trend, keyed by a short
// month-day label.
type TrendPoint struct {
	Key         string
	AvgAccuracy float64
}

// Summaries bundles the trend series and the derived dashboard panels.
type Summaries struct {
	Trend      []TrendPoint
	Games      []GameStat
	Students   []StudentOverview
	TopGame    *Insight
	NeedsFocus *Insight
	BestStreak *StreakInsight
}

// DayCount is one bucket of the weekly activity chart.
type DayCount struct {
	Label string
	Count int
}

// ChallengeSlice is one segment of the challenge distribution. Labeled is
// false for segments under the on-chart label threshold; they stay in the
// legend and totals.
type ChallengeSlice struct {
	Category string
	Count    int
	Percent  float64
	Labeled  bool
}
