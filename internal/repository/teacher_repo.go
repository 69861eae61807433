package repository

import (
	"context"
	"fmt"
	"time"

	"growbrain/internal/docstore"
	"growbrain/internal/models"
	"growbrain/internal/normalize"
)

// TeacherRepository handles document-store operations for teacher accounts
type TeacherRepository struct {
	store docstore.Store
}

// NewTeacherRepository creates a new teacher repository
func NewTeacherRepository(store docstore.Store) *TeacherRepository {
	return &TeacherRepository{store: store}
}

// ListTeachers retrieves all teacher accounts
func (r *TeacherRepository) ListTeachers(ctx context.Context) ([]models.Teacher, error) {
	docs, err := r.store.List(ctx, docstore.Query{Path: "teachers"})
	if err != nil {
		return nil, fmt.Errorf("failed to list teachers: %w", err)
	}

	teachers := make([]models.Teacher, 0, len(docs))
	for _, doc := range docs {
		teachers = append(teachers, decodeTeacher(doc))
	}
	return teachers, nil
}

// GetTeacher retrieves a teacher by ID
func (r *TeacherRepository) GetTeacher(ctx context.Context, teacherID string) (*models.Teacher, error) {
	doc, err := r.store.Get(ctx, "teachers/"+teacherID)
	if err == docstore.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get teacher: %w", err)
	}
	teacher := decodeTeacher(doc)
	return &teacher, nil
}

// CreateTeacher writes a teacher account document. Used by seeding.
func (r *TeacherRepository) CreateTeacher(ctx context.Context, teacher models.Teacher) error {
	doc := docstore.Document{
		ID: teacher.ID,
		Fields: map[string]any{
			"name":      teacher.Name,
			"email":     teacher.Email,
			"pinHash":   teacher.PINHash,
			"createdAt": teacher.CreatedAt.Format(time.RFC3339),
		},
	}
	if err := r.store.Put(ctx, "teachers", doc); err != nil {
		return fmt.Errorf("failed to create teacher: %w", err)
	}
	return nil
}

func decodeTeacher(doc docstore.Document) models.Teacher {
	f := doc.Fields
	return models.Teacher{
		ID:        doc.ID,
		Name:      normalize.String(f["name"]),
		Email:     normalize.String(f["email"]),
		PINHash:   normalize.String(f["pinHash"]),
		CreatedAt: normalize.ParseDate(f["createdAt"]),
	}
}
