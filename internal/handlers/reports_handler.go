package handlers

import (
	"fmt"
	"log"
	"net/http"

	"growbrain/internal/repository"
	"growbrain/internal/service"
)

// ReportsHandler serves assembled student reports as JSON or CSV and the
// report-ready email notification.
type ReportsHandler struct {
	reports     *service.ReportService
	teacherRepo *repository.TeacherRepository
}

// NewReportsHandler creates a new reports handler
func NewReportsHandler(reports *service.ReportService, teacherRepo *repository.TeacherRepository) *ReportsHandler {
	return &ReportsHandler{
		reports:     reports,
		teacherRepo: teacherRepo,
	}
}

// GetReport handles GET /api/reports/{studentId}
func (h *ReportsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	sc := GetScopeFromContext(r.Context())
	studentID := r.PathValue("studentId")

	report, err := h.reports.Assemble(r.Context(), sc.TeacherID, studentID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Report unavailable", "report assembly failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, reportView(report))
}

// DownloadReportCSV handles GET /api/reports/{studentId}/csv
func (h *ReportsHandler) DownloadReportCSV(w http.ResponseWriter, r *http.Request) {
	sc := GetScopeFromContext(r.Context())
	studentID := r.PathValue("studentId")

	report, err := h.reports.Assemble(r.Context(), sc.TeacherID, studentID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Report unavailable", "report assembly failed", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="report-%s.csv"`, studentID))
	if err := service.WriteCSV(w, service.CSVRows(report)); err != nil {
		log.Printf("report csv write failed: %v", err)
	}
}

// NotifyReport handles POST /api/reports/{studentId}/notify: emails the
// scoped teacher that the report is ready.
func (h *ReportsHandler) NotifyReport(w http.ResponseWriter, r *http.Request) {
	sc := GetScopeFromContext(r.Context())
	studentID := r.PathValue("studentId")

	if !sc.HasTeacher() {
		respondWithError(w, http.StatusBadRequest, "Select a teacher first", "", nil)
		return
	}

	teacher, err := h.teacherRepo.GetTeacher(r.Context(), sc.TeacherID)
	if err != nil || teacher == nil {
		respondWithError(w, http.StatusNotFound, "Teacher not found", "teacher lookup failed", err)
		return
	}

	report, err := h.reports.Assemble(r.Context(), sc.TeacherID, studentID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Report unavailable", "report assembly failed", err)
		return
	}

	if err := h.reports.NotifyReady(r.Context(), *teacher, report.Profile.Name); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to send notification", "report email failed", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}
