package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"growbrain/internal/docstore"
	"growbrain/internal/models"
	"growbrain/internal/normalize"
)

// StudentRepository handles document-store operations for student profiles
type StudentRepository struct {
	store docstore.Store

	// At most one live student subscription per repository. Replacing it
	// closes the previous one first so listeners never pile up.
	watchMu  sync.Mutex
	watchSub *docstore.Subscription
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(store docstore.Store) *StudentRepository {
	return &StudentRepository{store: store}
}

// ListStudents retrieves all students owned by one teacher
func (r *StudentRepository) ListStudents(ctx context.Context, teacherID string) ([]models.Student, error) {
	path := fmt.Sprintf("teachers/%s/students", teacherID)
	docs, err := r.store.List(ctx, docstore.Query{Path: path})
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	students := make([]models.Student, 0, len(docs))
	for _, doc := range docs {
		students = append(students, decodeStudent(doc, teacherID))
	}
	return students, nil
}

// ListAllStudents retrieves students across every teacher, sorted by display
// name. Used when no teacher scope is selected. A failing group read falls
// back to iterating teachers one by one.
func (r *StudentRepository) ListAllStudents(ctx context.Context) ([]models.Student, error) {
	docs, err := r.store.ListGroup(ctx, "students")
	if err == nil {
		students := make([]models.Student, 0, len(docs))
		for _, doc := range docs {
			students = append(students, decodeStudent(doc, ""))
		}
		sortStudentsByName(students)
		return students, nil
	}

	teacherDocs, terr := r.store.List(ctx, docstore.Query{Path: "teachers"})
	if terr != nil {
		return nil, fmt.Errorf("failed to list students across teachers: %w", err)
	}

	var students []models.Student
	for _, td := range teacherDocs {
		batch, berr := r.ListStudents(ctx, td.ID)
		if berr != nil {
			return nil, berr
		}
		students = append(students, batch...)
	}
	sortStudentsByName(students)
	return students, nil
}

// GetStudent retrieves one student document
func (r *StudentRepository) GetStudent(ctx context.Context, teacherID, studentID string) (*models.Student, error) {
	path := fmt.Sprintf("teachers/%s/students/%s", teacherID, studentID)
	doc, err := r.store.Get(ctx, path)
	if err == docstore.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	student := decodeStudent(doc, teacherID)
	return &student, nil
}

// WatchStudents subscribes to the teacher's student collection. Any previous
// subscription held by this repository is closed before the new one is
// created, keeping a single live listener.
func (r *StudentRepository) WatchStudents(ctx context.Context, teacherID string) (*docstore.Subscription, error) {
	path := fmt.Sprintf("teachers/%s/students", teacherID)

	r.watchMu.Lock()
	defer r.watchMu.Unlock()

	if r.watchSub != nil {
		r.watchSub.Close()
		r.watchSub = nil
	}

	sub, err := r.store.Watch(ctx, docstore.Query{Path: path})
	if err != nil {
		return nil, fmt.Errorf("failed to watch students: %w", err)
	}
	r.watchSub = sub
	return sub, nil
}

// StopWatching closes the current student subscription, if any.
func (r *StudentRepository) StopWatching() {
	r.watchMu.Lock()
	defer r.watchMu.Unlock()
	if r.watchSub != nil {
		r.watchSub.Close()
		r.watchSub = nil
	}
}

// CreateStudent writes a student profile document. Used by seeding.
func (r *StudentRepository) CreateStudent(ctx context.Context, student models.Student) error {
	path := fmt.Sprintf("teachers/%s/students", student.TeacherID)
	doc := docstore.Document{
		ID: student.ID,
		Fields: map[string]any{
			"fullName":      student.FullName,
			"name":          student.Name,
			"age":           student.Age,
			"sex":           student.Sex,
			"guardianName":  student.GuardianName,
			"contactNumber": student.ContactNumber,
			"teacherId":     student.TeacherID,
			"createdAt":     student.CreatedAt.Format(time.RFC3339),
			"cognitiveNeeds": map[string]any{
				"attention": student.Needs.Attention,
				"logic":     student.Needs.Logic,
				"memory":    student.Needs.Memory,
				"verbal":    student.Needs.Verbal,
			},
		},
	}
	if err := r.store.Put(ctx, path, doc); err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

func decodeStudent(doc docstore.Document, teacherID string) models.Student {
	f := doc.Fields

	student := models.Student{
		ID:            doc.ID,
		TeacherID:     teacherID,
		FullName:      normalize.String(f["fullName"]),
		Name:          normalize.String(f["name"]),
		Age:           normalize.Int(f["age"]),
		Sex:           normalize.String(f["sex"]),
		GuardianName:  normalize.String(f["guardianName"]),
		ContactNumber: normalize.String(f["contactNumber"]),
		CreatedAt:     normalize.ParseDate(f["createdAt"]),
	}
	if teacherID == "" {
		student.TeacherID = normalize.String(f["teacherId"])
	}

	// Need flags are stored either nested under "cognitiveNeeds" or flat on
	// the document, as booleans, 1/0 or "yes" strings.
	needs := f
	if nested, ok := f["cognitiveNeeds"].(map[string]any); ok {
		needs = nested
	}
	student.Needs = models.CognitiveNeeds{
		Attention: normalize.Truthy(needs["attention"]),
		Logic:     normalize.Truthy(needs["logic"]),
		Memory:    normalize.Truthy(needs["memory"]),
		Verbal:    normalize.Truthy(needs["verbal"]),
	}
	return student
}

func sortStudentsByName(students []models.Student) {
	sort.SliceStable(students, func(i, j int) bool {
		return strings.ToLower(students[i].DisplayName()) < strings.ToLower(students[j].DisplayName())
	})
}
