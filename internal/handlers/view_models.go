package handlers

import (
	"time"

	"growbrain/internal/models"
	"growbrain/internal/service"
)

type DashboardView struct {
	Stats      DashboardStatsView    `json:"stats"`
	Trend      []TrendPointView      `json:"trend"`
	Games      []GameStatView        `json:"games"`
	Students   []StudentOverviewView `json:"students"`
	TopGame    *InsightView          `json:"topGame,omitempty"`
	NeedsFocus *InsightView          `json:"needsFocus,omitempty"`
	BestStreak *StreakView           `json:"bestStreak,omitempty"`
	Weekly     []DayCountView        `json:"weeklyActivity"`
	Challenges []ChallengeSliceView  `json:"challengeDistribution"`
	Years      []string              `json:"availableYears"`
}

type DashboardStatsView struct {
	TotalStudents     int     `json:"totalStudents"`
	TotalSessions     int     `json:"totalSessions"`
	AvgAccuracy       float64 `json:"avgAccuracy"`
	AvgCompletionTime float64 `json:"avgCompletionTime"`
	Improving         int     `json:"improving"`
	NeedsAttention    int     `json:"needsAttention"`
	Struggling        int     `json:"struggling"`
}

type TrendPointView struct {
	Date        string  `json:"date"`
	AvgAccuracy float64 `json:"avgAccuracy"`
}

type GameStatView struct {
	Game        string  `json:"game"`
	Sessions    int     `json:"sessions"`
	AvgAccuracy float64 `json:"avgAccuracy"`
}

type StudentOverviewView struct {
	Name              string  `json:"name"`
	Sessions          int     `json:"sessions"`
	AvgAccuracy       float64 `json:"avgAccuracy"`
	AvgCompletionTime float64 `json:"avgCompletionTime"`
}

type InsightView struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type StreakView struct {
	Name     string `json:"name"`
	Sessions int    `json:"sessions"`
}

type DayCountView struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type ChallengeSliceView struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Percent  float64 `json:"percent"`
	Labeled  bool    `json:"labeled"`
}

type ActivityPageView struct {
	Groups      []ActivityGroupView `json:"groups"`
	Page        int                 `json:"page"`
	TotalPages  int                 `json:"totalPages"`
	TotalGroups int                 `json:"totalGroups"`
	Stats       ActivityStatsView   `json:"stats"`
}

type ActivityGroupView struct {
	StudentName string       `json:"studentName"`
	Sessions    []RecordView `json:"sessions"`
}

type ActivityStatsView struct {
	TotalSessions       int     `json:"totalSessions"`
	ActiveStudents      int     `json:"activeStudents"`
	AvgAccuracy         float64 `json:"avgAccuracy"`
	MostCommonChallenge string  `json:"mostCommonChallenge,omitempty"`
}

type RecordView struct {
	ID             string   `json:"id"`
	StudentName    string   `json:"studentName"`
	Date           string   `json:"date"`
	Game           string   `json:"game"`
	ChallengeFocus string   `json:"challengeFocus"`
	Difficulty     string   `json:"difficulty"`
	Accuracy       *float64 `json:"accuracy"`
	CompletionTime *float64 `json:"completionTime"`
	Errors         int      `json:"errors"`
	Source         string   `json:"source"`
}

type StudentView struct {
	ID          string `json:"id"`
	TeacherID   string `json:"teacherId,omitempty"`
	DisplayName string `json:"displayName"`
	Age         int    `json:"age,omitempty"`
}

type ReportView struct {
	Profile ReportProfileView `json:"profile"`
	Stats   ReportStatsView   `json:"stats"`
	Trend   TrendSeriesView   `json:"trend"`
	Table   []ReportRowView   `json:"table"`
}

type ReportProfileView struct {
	Name           string   `json:"name"`
	Age            int      `json:"age"`
	Sex            string   `json:"sex"`
	GuardianName   string   `json:"guardianName"`
	ContactNumber  string   `json:"contactNumber"`
	CognitiveNeeds []string `json:"cognitiveNeeds"`
}

type ReportStatsView struct {
	AvgAccuracy       float64 `json:"avgAccuracy"`
	AvgCompletionTime float64 `json:"avgCompletionTime"`
	AvgErrors         float64 `json:"avgErrors"`
	TotalSessions     int     `json:"totalSessions"`
}

type TrendSeriesView struct {
	Dates          []string   `json:"dates"`
	Accuracy       []*float64 `json:"accuracy"`
	CompletionTime []*float64 `json:"completionTime"`
	Errors         []*int     `json:"errors"`
}

type ReportRowView struct {
	Date           string `json:"date"`
	Game           string `json:"game"`
	ChallengeFocus string `json:"challengeFocus"`
	Difficulty     string `json:"difficulty"`
	Accuracy       string `json:"accuracy"`
	CompletionTime string `json:"completionTime"`
	Errors         int    `json:"errors"`
}

func dashboardView(data *service.DashboardData) DashboardView {
	view := DashboardView{
		Stats: DashboardStatsView{
			TotalStudents:     data.Stats.TotalStudents,
			TotalSessions:     data.Stats.TotalSessions,
			AvgAccuracy:       data.Stats.AvgAccuracy,
			AvgCompletionTime: data.Stats.AvgCompletionTime,
			Improving:         data.Stats.Improving,
			NeedsAttention:    data.Stats.NeedsAttention,
			Struggling:        data.Stats.Struggling,
		},
		Years: data.Years,
	}

	for _, p := range data.Summaries.Trend {
		view.Trend = append(view.Trend, TrendPointView{Date: p.Key, AvgAccuracy: p.AvgAccuracy})
	}
	for _, g := range data.Summaries.Games {
		view.Games = append(view.Games, GameStatView{Game: g.Game, Sessions: g.Sessions, AvgAccuracy: g.AvgAccuracy})
	}
	for _, s := range data.Summaries.Students {
		view.Students = append(view.Students, StudentOverviewView(s))
	}
	if top := data.Summaries.TopGame; top != nil {
		view.TopGame = &InsightView{Name: top.Name, Value: top.Value}
	}
	if focus := data.Summaries.NeedsFocus; focus != nil {
		view.NeedsFocus = &InsightView{Name: focus.Name, Value: focus.Value}
	}
	if streak := data.Summaries.BestStreak; streak != nil {
		view.BestStreak = &StreakView{Name: streak.Name, Sessions: streak.Sessions}
	}
	for _, d := range data.Weekly {
		view.Weekly = append(view.Weekly, DayCountView(d))
	}
	for _, c := range data.Challenges {
		view.Challenges = append(view.Challenges, ChallengeSliceView(c))
	}
	return view
}

func recordView(rec models.SessionRecord) RecordView {
	return RecordView{
		ID:             rec.ID,
		StudentName:    rec.StudentName,
		Date:           rec.Date.Format(time.RFC3339),
		Game:           rec.Game,
		ChallengeFocus: rec.ChallengeFocus,
		Difficulty:     rec.Difficulty,
		Accuracy:       rec.Accuracy,
		CompletionTime: rec.CompletionTime,
		Errors:         rec.Errors,
		Source:         string(rec.Source),
	}
}

func reportView(report *models.StudentReport) ReportView {
	view := ReportView{
		Profile: ReportProfileView(report.Profile),
		Stats:   ReportStatsView(report.Stats),
		Trend:   TrendSeriesView(report.Trend),
	}
	for _, row := range report.Table {
		view.Table = append(view.Table, ReportRowView(row))
	}
	return view
}
