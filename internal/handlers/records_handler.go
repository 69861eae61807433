package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"growbrain/internal/models"
	"growbrain/internal/repository"
	"growbrain/internal/security"
)

// RecordsHandler serves student listings, per-student record resolution and
// teacher scope selection.
type RecordsHandler struct {
	teacherRepo     *repository.TeacherRepository
	studentRepo     *repository.StudentRepository
	recordRepo      *repository.RecordRepository
	sessionSecret   []byte
	sessionDuration time.Duration
}

// NewRecordsHandler creates a new records handler
func NewRecordsHandler(teacherRepo *repository.TeacherRepository, studentRepo *repository.StudentRepository, recordRepo *repository.RecordRepository, sessionSecret []byte, sessionDuration time.Duration) *RecordsHandler {
	return &RecordsHandler{
		teacherRepo:     teacherRepo,
		studentRepo:     studentRepo,
		recordRepo:      recordRepo,
		sessionSecret:   sessionSecret,
		sessionDuration: sessionDuration,
	}
}

// GetStudents handles GET /api/students. Without a teacher scope it lists
// students across all teachers, sorted by display name.
func (h *RecordsHandler) GetStudents(w http.ResponseWriter, r *http.Request) {
	sc := GetScopeFromContext(r.Context())

	var students []models.Student
	var err error
	if sc.HasTeacher() {
		students, err = h.studentRepo.ListStudents(r.Context(), sc.TeacherID)
	} else {
		students, err = h.studentRepo.ListAllStudents(r.Context())
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load students", "student list failed", err)
		return
	}
	students = models.DedupeStudents(students)

	views := make([]StudentView, 0, len(students))
	for _, s := range students {
		views = append(views, StudentView{
			ID:          s.ID,
			TeacherID:   s.TeacherID,
			DisplayName: s.DisplayName(),
			Age:         s.Age,
		})
	}
	respondWithJSON(w, http.StatusOK, views)
}

// GetStudentRecords handles GET /api/students/{id}/records. The unified
// query flag merges every storage generation instead of stopping at the
// first non-empty source.
func (h *RecordsHandler) GetStudentRecords(w http.ResponseWriter, r *http.Request) {
	sc := GetScopeFromContext(r.Context())
	studentID := r.PathValue("id")

	teacherID := sc.TeacherID
	displayName := studentID
	if sc.HasTeacher() {
		if student, err := h.studentRepo.GetStudent(r.Context(), teacherID, studentID); err == nil && student != nil {
			displayName = student.DisplayName()
		}
	} else if students, err := h.studentRepo.ListAllStudents(r.Context()); err == nil {
		for _, student := range students {
			if student.ID == studentID {
				teacherID = student.TeacherID
				displayName = student.DisplayName()
				break
			}
		}
	}

	var records models.Records
	var err error
	if r.URL.Query().Get("unified") == "true" {
		records, err = h.recordRepo.ResolveUnified(r.Context(), teacherID, studentID, displayName)
	} else {
		records, err = h.recordRepo.Resolve(r.Context(), teacherID, studentID, displayName)
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load records", "record resolution failed", err)
		return
	}

	views := make([]RecordView, 0, len(records))
	for _, rec := range records {
		if !sc.InYear(rec.Date) {
			continue
		}
		views = append(views, recordView(rec))
	}
	respondWithJSON(w, http.StatusOK, views)
}

type selectScopeRequest struct {
	TeacherID string `json:"teacherId"`
	PIN       string `json:"pin"`
}

// SelectScope handles POST /api/scope: verifies the teacher PIN and sets the
// signed scope cookie.
func (h *RecordsHandler) SelectScope(w http.ResponseWriter, r *http.Request) {
	var req selectScopeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	teacher, err := h.teacherRepo.GetTeacher(r.Context(), req.TeacherID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load teacher", "teacher lookup failed", err)
		return
	}
	if teacher == nil || !security.CheckPIN(teacher.PINHash, req.PIN) {
		respondWithError(w, http.StatusUnauthorized, "Invalid teacher or PIN", "", nil)
		return
	}

	token, err := security.MintScopeToken(h.sessionSecret, teacher.ID, h.sessionDuration)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to create session", "scope token mint failed", err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, token, time.Now().Add(h.sessionDuration)))
	respondWithJSON(w, http.StatusOK, map[string]string{"teacherId": teacher.ID})
}

// ClearScope handles DELETE /api/scope: returns to the open, all-teachers
// scope.
func (h *RecordsHandler) ClearScope(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
	w.WriteHeader(http.StatusNoContent)
}
