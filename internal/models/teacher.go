package models

import "time"

// Teacher represents a teacher account that owns a set of students.
type Teacher struct {
	ID        string
	Name      string
	Email     string
	PINHash   string
	CreatedAt time.Time
}
