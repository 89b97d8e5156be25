package dto

import "github.com/j4nthirty1ne/school-timetable-api/internal/models"

// ConflictCheckRequest is the payload the admin timetable UI submits before a
// user confirms a schedule change. SubjectClassID carries the booking's own
// id when the proposal edits an existing booking.
type ConflictCheckRequest struct {
	SubjectClassID string `json:"subject_class_id,omitempty"`
	TeacherID      string `json:"teacher_id" validate:"required"`
	DayOfWeek      string `json:"day_of_week" validate:"required"`
	StartTime      string `json:"start_time" validate:"required"`
	EndTime        string `json:"end_time" validate:"required"`
	RoomNumber     string `json:"room_number,omitempty"`
	AcademicYear   string `json:"academic_year" validate:"required"`
}

// ConflictCheckResponse is the structured report returned on a successful
// check. Conflicts found is a 200, not an error status.
type ConflictCheckResponse struct {
	Success           bool                    `json:"success"`
	HasConflicts      bool                    `json:"has_conflicts"`
	Conflicts         []models.ConflictRecord `json:"conflicts"`
	ConflictCount     int                     `json:"conflict_count"`
	CriticalConflicts int                     `json:"critical_conflicts"`
	Warnings          int                     `json:"warnings"`
}

// NewConflictCheckResponse converts a report into the wire contract.
func NewConflictCheckResponse(report *models.ConflictReport) ConflictCheckResponse {
	return ConflictCheckResponse{
		Success:           true,
		HasConflicts:      report.HasConflicts,
		Conflicts:         report.Conflicts,
		ConflictCount:     report.ConflictCount,
		CriticalConflicts: report.CriticalCount,
		Warnings:          report.WarningCount,
	}
}
