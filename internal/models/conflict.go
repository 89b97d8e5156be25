package models

// ConflictType classifies a detected conflict.
type ConflictType string

const (
	TeacherConflict  ConflictType = "TEACHER_CONFLICT"
	RoomConflict     ConflictType = "ROOM_CONFLICT"
	WorkloadExceeded ConflictType = "WORKLOAD_EXCEEDED"
	WorkloadWarning  ConflictType = "WORKLOAD_WARNING"
)

// Severity tiers a conflict record. Double-bookings are critical; workload
// threshold records are advisory.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// ConflictProposal is the candidate assignment under evaluation.
// ExcludeBookingID carries the booking's own id when the proposal represents
// an edit, so a booking never conflicts with itself. A nil RoomNumber
// disables the room-conflict pass.
type ConflictProposal struct {
	ExcludeBookingID string
	TeacherID        string
	Day              DayOfWeek
	Interval         TimeInterval
	RoomNumber       *string
	AcademicYear     string
}

// ConflictRecord is one classified collision or workload advisory. Blocking
// tells callers whether the record should reject a write; only critical
// records block.
type ConflictRecord struct {
	Type     ConflictType           `json:"type"`
	Severity Severity               `json:"severity"`
	Blocking bool                   `json:"blocking"`
	Message  string                 `json:"message"`
	Details  map[string]interface{} `json:"details"`
}

// ConflictReport aggregates the records produced by one detection call.
type ConflictReport struct {
	Conflicts     []ConflictRecord `json:"conflicts"`
	HasConflicts  bool             `json:"has_conflicts"`
	ConflictCount int              `json:"conflict_count"`
	CriticalCount int              `json:"critical_count"`
	WarningCount  int              `json:"warning_count"`
}

// NewConflictReport builds a report with counts derived from the records.
// WarningCount covers both warning and info severities.
func NewConflictReport(records []ConflictRecord) *ConflictReport {
	report := &ConflictReport{Conflicts: records}
	if records == nil {
		report.Conflicts = []ConflictRecord{}
	}
	report.ConflictCount = len(report.Conflicts)
	report.HasConflicts = report.ConflictCount > 0
	for _, record := range report.Conflicts {
		switch record.Severity {
		case SeverityCritical:
			report.CriticalCount++
		case SeverityWarning, SeverityInfo:
			report.WarningCount++
		}
	}
	return report
}
