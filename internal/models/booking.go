package models

import "time"

// Booking is a committed (teacher, room, day, time) class reservation within
// an academic year. TeacherName is joined in by the repository for
// conflict-message rendering; it is not a column on the bookings table.
type Booking struct {
	ID           string    `db:"id" json:"id"`
	TeacherID    string    `db:"teacher_id" json:"teacher_id"`
	TeacherName  string    `db:"teacher_name" json:"teacher_name"`
	SubjectName  string    `db:"subject_name" json:"subject_name"`
	Section      string    `db:"section" json:"section"`
	RoomNumber   *string   `db:"room_number" json:"room_number,omitempty"`
	DayOfWeek    DayOfWeek `db:"day_of_week" json:"day_of_week"`
	StartTime    string    `db:"start_time" json:"start_time"`
	EndTime      string    `db:"end_time" json:"end_time"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Interval parses the booking's time range. Stored rows are validated on
// write, so failures here indicate corrupted data.
func (b Booking) Interval() (TimeInterval, error) {
	return NewInterval(b.StartTime, b.EndTime)
}

// Room returns the room number or an empty string when unassigned.
func (b Booking) Room() string {
	if b.RoomNumber == nil {
		return ""
	}
	return *b.RoomNumber
}

// BookingFilter describes query params for listing bookings.
type BookingFilter struct {
	TeacherID    string
	DayOfWeek    string
	RoomNumber   string
	AcademicYear string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// Pagination describes list paging metadata.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
