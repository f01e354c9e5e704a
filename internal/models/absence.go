package models

import "time"

// TeacherAbsence records that a teacher is unavailable on a date.
// At most one row exists per (teacher, date).
type TeacherAbsence struct {
	ID        string    `db:"id" json:"id"`
	SchoolID  string    `db:"school_id" json:"school_id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	Date      time.Time `db:"date" json:"date"`
	Reason    string    `db:"reason" json:"reason"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SubstitutionRecord is the immutable audit trail entry written when a live
// teacher swap is committed against a slot. Records are never edited.
type SubstitutionRecord struct {
	ID                  string    `db:"id" json:"id"`
	SchoolID            string    `db:"school_id" json:"school_id"`
	SlotID              string    `db:"slot_id" json:"slot_id"`
	OriginalTeacherID   string    `db:"original_teacher_id" json:"original_teacher_id"`
	SubstituteTeacherID string    `db:"substitute_teacher_id" json:"substitute_teacher_id"`
	Date                time.Time `db:"date" json:"date"`
	Reason              string    `db:"reason" json:"reason"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}
