package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j4nthirty1ne/school-timetable-api/internal/models"
)

func newBookingRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func bookingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "teacher_id", "teacher_name", "subject_name", "section", "room_number", "day_of_week", "start_time", "end_time", "academic_year", "created_at", "updated_at"}).
		AddRow("b1", "t1", "Teacher A", "Math", "A", "101", "MONDAY", "09:00", "10:00", "2024-2025", time.Now(), time.Now())
}

func TestBookingRepositoryTeacherBookings(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE b.teacher_id = $1 AND b.day_of_week = $2 AND b.academic_year = $3")).
		WithArgs("t1", "MONDAY", "2024-2025").
		WillReturnRows(bookingRows())

	bookings, err := repo.TeacherBookings(context.Background(), "t1", models.Monday, "2024-2025", "")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "Teacher A", bookings[0].TeacherName)
	assert.Equal(t, "101", bookings[0].Room())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryTeacherBookingsExcludesID(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("AND b.id <> $4")).
		WithArgs("t1", "MONDAY", "2024-2025", "b1").
		WillReturnRows(bookingRows())

	_, err := repo.TeacherBookings(context.Background(), "t1", models.Monday, "2024-2025", "b1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryRoomBookings(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE b.room_number = $1 AND b.day_of_week = $2 AND b.academic_year = $3")).
		WithArgs("101", "MONDAY", "2024-2025").
		WillReturnRows(bookingRows())

	bookings, err := repo.RoomBookings(context.Background(), "101", models.Monday, "2024-2025", "")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryTeacherWeeklyBookings(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE b.teacher_id = $1 AND b.academic_year = $2")).
		WithArgs("t1", "2024-2025").
		WillReturnRows(bookingRows())

	bookings, err := repo.TeacherWeeklyBookings(context.Background(), "t1", "2024-2025", "")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryList(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectQuery("SELECT b.id, b.teacher_id, t.full_name AS teacher_name").
		WithArgs("t1").
		WillReturnRows(bookingRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	bookings, total, err := repo.List(context.Background(), models.BookingFilter{TeacherID: "t1"})
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryCreateAndDelete(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(1, 1))

	room := "101"
	booking := &models.Booking{
		TeacherID:    "t1",
		SubjectName:  "Math",
		Section:      "A",
		RoomNumber:   &room,
		DayOfWeek:    models.Monday,
		StartTime:    "09:00",
		EndTime:      "10:00",
		AcademicYear: "2024-2025",
	}
	require.NoError(t, repo.Create(context.Background(), booking))
	assert.NotEmpty(t, booking.ID)

	mock.ExpectExec("DELETE FROM bookings").
		WithArgs(booking.ID).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Delete(context.Background(), booking.ID))

	assert.NoError(t, mock.ExpectationsWereMet())
}
