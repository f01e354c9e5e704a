package dto

import "github.com/HummaSaeed/TimeTableManager/internal/models"

// GenerateTimetableRequest asks the engine to build a full week for a school.
type GenerateTimetableRequest struct {
	AcademicYear  string `json:"academicYear" validate:"required"`
	ClearExisting *bool  `json:"clearExisting"`
	MaxAttempts   int    `json:"maxAttempts" validate:"omitempty,min=1,max=1000"`
}

// TeacherWorkloadSummary reports per-teacher load after generation.
type TeacherWorkloadSummary struct {
	TeacherID           string  `json:"teacherId"`
	TeacherName         string  `json:"teacherName"`
	Periods             int     `json:"periods"`
	DeviationFromTarget float64 `json:"deviationFromTarget"`
}

// GenerateTimetableResponse distinguishes hard failure (no schedule at all,
// Success=false with Error set) from soft failure (a schedule with warnings).
type GenerateTimetableResponse struct {
	Success                 bool                      `json:"success"`
	Error                   string                    `json:"error,omitempty"`
	SlotsCreated            int                       `json:"slotsCreated"`
	Attempts                int                       `json:"attempts"`
	Warnings                []models.TimetableWarning `json:"warnings"`
	TeacherWorkload         []TeacherWorkloadSummary  `json:"teacherWorkload,omitempty"`
	TargetPeriodsPerTeacher float64                   `json:"targetPeriodsPerTeacher,omitempty"`
}

// TeacherWorkloadEntry is one teacher row of the weekly workload report.
type TeacherWorkloadEntry struct {
	TeacherID    string         `json:"teacherId"`
	TeacherName  string         `json:"teacherName"`
	TotalPeriods int            `json:"totalPeriods"`
	ByDay        map[string]int `json:"byDay"`
	BySubject    map[string]int `json:"bySubject"`
}

// WorkloadReport summarises the current week across the whole roster.
type WorkloadReport struct {
	AcademicYear string                 `json:"academicYear"`
	Teachers     []TeacherWorkloadEntry `json:"teachers"`
}
