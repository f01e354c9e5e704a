package models

import "time"

// Teacher represents an instructor on a school roster. Specialism carries the
// free-text subject label used to derive eligibilities when no explicit rows
// exist.
type Teacher struct {
	ID                  string    `db:"id" json:"id"`
	SchoolID            string    `db:"school_id" json:"school_id"`
	FullName            string    `db:"full_name" json:"full_name"`
	Email               string    `db:"email" json:"email"`
	Specialism          string    `db:"specialism" json:"specialism"`
	IsClassTeacher      bool      `db:"is_class_teacher" json:"is_class_teacher"`
	ClassTeacherGrade   *int      `db:"class_teacher_grade" json:"class_teacher_grade,omitempty"`
	ClassTeacherSection *string   `db:"class_teacher_section" json:"class_teacher_section,omitempty"`
	Active              bool      `db:"active" json:"active"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}
