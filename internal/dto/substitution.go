package dto

// MarkAbsenceRequest records a teacher absence and triggers substitution.
type MarkAbsenceRequest struct {
	TeacherID string `json:"teacherId" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Reason    string `json:"reason" validate:"omitempty,max=255"`
}

// SubstitutionOutcome is the per-slot result of a substitution run.
// Substitute is nil when no qualified, unbooked, under-cap teacher was found.
type SubstitutionOutcome struct {
	Class      string  `json:"class"`
	Period     int     `json:"period"`
	Subject    string  `json:"subject"`
	OldTeacher string  `json:"oldTeacher"`
	Substitute *string `json:"substitute"`
	Note       string  `json:"note,omitempty"`
}

// MarkAbsenceResponse lists one outcome per affected slot.
type MarkAbsenceResponse struct {
	Message       string                `json:"message"`
	Substitutions []SubstitutionOutcome `json:"substitutions"`
}
