package models

import "time"

// ClassSection represents one teaching group, e.g. "Class 5" section "A".
// Name is a free-text label; the grade level is parsed out of it when
// requirements are derived.
type ClassSection struct {
	ID             string    `db:"id" json:"id"`
	SchoolID       string    `db:"school_id" json:"school_id"`
	Name           string    `db:"name" json:"name"`
	Section        string    `db:"section" json:"section"`
	ClassTeacherID *string   `db:"class_teacher_id" json:"class_teacher_id,omitempty"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Label renders the conventional "name-section" display form.
func (c ClassSection) Label() string {
	if c.Section == "" {
		return c.Name
	}
	return c.Name + "-" + c.Section
}

// ClassSubject links a class to one of its required subjects.
type ClassSubject struct {
	ClassID   string    `db:"class_id" json:"class_id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
