package dto

import "time"

// ExportJobRequest schedules an asynchronous timetable export.
type ExportJobRequest struct {
	AcademicYear string `json:"academicYear" validate:"required"`
	Format       string `json:"format" validate:"required,oneof=csv pdf"`
}

// ExportJobResponse reports a job's current state. DownloadURL and ExpiresAt
// are set only once the job is done.
type ExportJobResponse struct {
	JobID        string     `json:"jobId"`
	Status       string     `json:"status"`
	Format       string     `json:"format"`
	AcademicYear string     `json:"academicYear"`
	DownloadURL  string     `json:"downloadUrl,omitempty"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	Error        string     `json:"error,omitempty"`
}
