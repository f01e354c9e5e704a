package models

import "time"

// TeacherSubjectEligibility permits a teacher to be scheduled for a subject.
// Rows are either configured explicitly or synthesised from the teacher's
// specialism label; explicit rows always win.
type TeacherSubjectEligibility struct {
	ID                string    `db:"id" json:"id"`
	TeacherID         string    `db:"teacher_id" json:"teacher_id"`
	SubjectID         string    `db:"subject_id" json:"subject_id"`
	IsPrimary         bool      `db:"is_primary" json:"is_primary"`
	MaxPeriodsPerWeek int       `db:"max_periods_per_week" json:"max_periods_per_week"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// EligibilityDetail enriches an eligibility row with display names.
type EligibilityDetail struct {
	TeacherSubjectEligibility
	TeacherName string `db:"teacher_name" json:"teacher_name"`
	SubjectName string `db:"subject_name" json:"subject_name"`
}
