package handlers

import (
	"log"
	"net/http"
	"strconv"

	"growbrain/internal/repository"
	"growbrain/internal/service"
)

// ActivitiesHandler serves the grouped, filtered activity table. The table
// controller is built per request so no filter state is shared across views.
type ActivitiesHandler struct {
	studentRepo *repository.StudentRepository
	recordRepo  *repository.RecordRepository
	pageSize    int
}

// NewActivitiesHandler creates a new activities handler
func NewActivitiesHandler(studentRepo *repository.StudentRepository, recordRepo *repository.RecordRepository, pageSize int) *ActivitiesHandler {
	return &ActivitiesHandler{
		studentRepo: studentRepo,
		recordRepo:  recordRepo,
		pageSize:    pageSize,
	}
}

// GetActivities handles GET /api/activities
func (h *ActivitiesHandler) GetActivities(w http.ResponseWriter, r *http.Request) {
	svc, err := h.load(r)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load activities", "activities load failed", err)
		return
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, perr := strconv.Atoi(raw); perr == nil {
			page = parsed
		}
	}

	rendered := svc.Page(page)
	view := ActivityPageView{
		Page:        rendered.Page,
		TotalPages:  rendered.TotalPages,
		TotalGroups: rendered.TotalGroups,
		Stats:       ActivityStatsView(svc.Statistics()),
	}
	for _, g := range rendered.Groups {
		group := ActivityGroupView{StudentName: g.StudentName}
		for _, rec := range g.Records {
			group.Sessions = append(group.Sessions, recordView(rec))
		}
		view.Groups = append(view.Groups, group)
	}

	respondWithJSON(w, http.StatusOK, view)
}

// ExportActivities handles GET /api/activities/export
func (h *ActivitiesHandler) ExportActivities(w http.ResponseWriter, r *http.Request) {
	svc, err := h.load(r)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load activities", "activities export failed", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="activities.csv"`)
	if err := service.WriteCSV(w, svc.ExportRows()); err != nil {
		log.Printf("activities csv write failed: %v", err)
	}
}

// load builds the per-request table controller and applies the query-string
// filters.
func (h *ActivitiesHandler) load(r *http.Request) (*service.ActivityService, error) {
	sc := GetScopeFromContext(r.Context())

	svc := service.NewActivityService(h.studentRepo, h.recordRepo, h.pageSize)
	if err := svc.Load(r.Context(), sc); err != nil {
		return nil, err
	}

	q := r.URL.Query()
	svc.Filter(service.ActivityFilters{
		Search:    q.Get("search"),
		Challenge: q.Get("challenge"),
		Game:      q.Get("game"),
		Range:     service.DateRange(q.Get("range")),
	})
	return svc, nil
}
