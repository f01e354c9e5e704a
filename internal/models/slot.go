package models

import "time"

// TimetableSlot is one (class, day, period) cell of a generated week. A slot
// is either a break (subject and teacher nil) or a teaching slot (both set).
// (school_id, class_id, day, period, academic_year) is unique.
type TimetableSlot struct {
	ID           string    `db:"id" json:"id"`
	SchoolID     string    `db:"school_id" json:"school_id"`
	ClassID      string    `db:"class_id" json:"class_id"`
	SubjectID    *string   `db:"subject_id" json:"subject_id,omitempty"`
	TeacherID    *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	Day          string    `db:"day" json:"day"`
	Period       int       `db:"period" json:"period"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	IsBreak      bool      `db:"is_break" json:"is_break"`
	BreakName    *string   `db:"break_name" json:"break_name,omitempty"`
	StartTime    string    `db:"start_time" json:"start_time"`
	EndTime      string    `db:"end_time" json:"end_time"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// TimetableSlotDetail joins slot references with display names for reads.
type TimetableSlotDetail struct {
	TimetableSlot
	ClassName   string  `db:"class_name" json:"class_name"`
	Section     string  `db:"section" json:"section"`
	SubjectName *string `db:"subject_name" json:"subject_name,omitempty"`
	TeacherName *string `db:"teacher_name" json:"teacher_name,omitempty"`
}

// Warning codes emitted by generation and the post-generation audit.
const (
	WarnUnfilledSlot        = "UNFILLED_SLOT"
	WarnClassWithoutSubject = "CLASS_WITHOUT_SUBJECTS"
	WarnTeacherDoubleBooked = "TEACHER_DOUBLE_BOOKED"
	WarnClassDoubleBooked   = "CLASS_DOUBLE_BOOKED"
	WarnTeacherOverCap      = "TEACHER_OVER_CAP"
	WarnClassIncomplete     = "CLASS_INCOMPLETE"
)

// TimetableWarning is a structured, non-fatal finding about a generated week.
type TimetableWarning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
