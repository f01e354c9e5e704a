package models

import "time"

// Export job lifecycle states. A job moves queued -> processing -> done, or
// to failed from any non-terminal state.
const (
	ExportJobQueued     = "queued"
	ExportJobProcessing = "processing"
	ExportJobDone       = "done"
	ExportJobFailed     = "failed"
)

// ExportJob tracks one asynchronous timetable export: what to render, where
// the rendered file landed and how long the signed download stays valid.
type ExportJob struct {
	ID            string     `db:"id" json:"id"`
	SchoolID      string     `db:"school_id" json:"school_id"`
	AcademicYear  string     `db:"academic_year" json:"academic_year"`
	Format        string     `db:"format" json:"format"`
	Status        string     `db:"status" json:"status"`
	FilePath      *string    `db:"file_path" json:"file_path,omitempty"`
	DownloadToken *string    `db:"download_token" json:"-"`
	ErrorMessage  *string    `db:"error_message" json:"error_message,omitempty"`
	ExpiresAt     *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}
