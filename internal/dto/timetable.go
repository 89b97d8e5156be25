package dto

import "github.com/j4nthirty1ne/school-timetable-api/internal/models"

// TimetableDay groups one day's bookings in week order.
type TimetableDay struct {
	Day      models.DayOfWeek `json:"day"`
	Bookings []models.Booking `json:"bookings"`
}

// TeacherTimetable is the weekly view returned for a teacher, including the
// aggregate scheduled hours used by workload accounting.
type TeacherTimetable struct {
	TeacherID    string         `json:"teacher_id"`
	AcademicYear string         `json:"academic_year"`
	TotalHours   float64        `json:"total_hours"`
	Days         []TimetableDay `json:"days"`
}
