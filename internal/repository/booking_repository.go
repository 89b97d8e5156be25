package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/j4nthirty1ne/school-timetable-api/internal/models"
)

const bookingColumns = `SELECT b.id, b.teacher_id, t.full_name AS teacher_name, b.subject_name, b.section, b.room_number, b.day_of_week, b.start_time, b.end_time, b.academic_year, b.created_at, b.updated_at FROM bookings b JOIN teachers t ON t.id = b.teacher_id`

// BookingRepository provides persistence for class bookings. Writes are
// guarded at the database level by an exclusion constraint on
// (room_number, day_of_week, academic_year, overlapping minutes), defined in
// scripts/schema.sql. A conflict check passing concurrently with another
// insert therefore cannot commit two overlapping room bookings.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new booking repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// List returns bookings with optional filtering and pagination.
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	base := "FROM bookings b JOIN teachers t ON t.id = b.teacher_id WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("b.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.DayOfWeek != "" {
		conditions = append(conditions, fmt.Sprintf("b.day_of_week = $%d", len(args)+1))
		args = append(args, filter.DayOfWeek)
	}
	if filter.RoomNumber != "" {
		conditions = append(conditions, fmt.Sprintf("b.room_number = $%d", len(args)+1))
		args = append(args, filter.RoomNumber)
	}
	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("b.academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"day_of_week": "b.day_of_week",
		"start_time":  "b.start_time",
		"room_number": "b.room_number",
		"created_at":  "b.created_at",
	}
	sortColumn, ok := allowedSorts[sortBy]
	if !ok {
		sortColumn = "b.day_of_week"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT b.id, b.teacher_id, t.full_name AS teacher_name, b.subject_name, b.section, b.room_number, b.day_of_week, b.start_time, b.end_time, b.academic_year, b.created_at, b.updated_at %s ORDER BY %s %s, b.start_time ASC LIMIT %d OFFSET %d", base, sortColumn, order, size, offset)
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	return bookings, total, nil
}

// FindByID loads a booking by id.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	query := bookingColumns + ` WHERE b.id = $1`
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, err
	}
	return &booking, nil
}

// TeacherBookings returns the teacher's bookings on one day of the academic
// year, excluding the booking identified by excludeID when editing.
func (r *BookingRepository) TeacherBookings(ctx context.Context, teacherID string, day models.DayOfWeek, academicYear, excludeID string) ([]models.Booking, error) {
	query := bookingColumns + ` WHERE b.teacher_id = $1 AND b.day_of_week = $2 AND b.academic_year = $3`
	args := []interface{}{teacherID, day, academicYear}
	if excludeID != "" {
		query += ` AND b.id <> $4`
		args = append(args, excludeID)
	}
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("list teacher bookings: %w", err)
	}
	return bookings, nil
}

// RoomBookings returns the room's bookings on one day of the academic year,
// excluding the booking identified by excludeID when editing.
func (r *BookingRepository) RoomBookings(ctx context.Context, roomNumber string, day models.DayOfWeek, academicYear, excludeID string) ([]models.Booking, error) {
	query := bookingColumns + ` WHERE b.room_number = $1 AND b.day_of_week = $2 AND b.academic_year = $3`
	args := []interface{}{roomNumber, day, academicYear}
	if excludeID != "" {
		query += ` AND b.id <> $4`
		args = append(args, excludeID)
	}
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("list room bookings: %w", err)
	}
	return bookings, nil
}

// TeacherWeeklyBookings returns all of the teacher's bookings across the week
// for workload accounting, excluding excludeID when editing.
func (r *BookingRepository) TeacherWeeklyBookings(ctx context.Context, teacherID, academicYear, excludeID string) ([]models.Booking, error) {
	query := bookingColumns + ` WHERE b.teacher_id = $1 AND b.academic_year = $2`
	args := []interface{}{teacherID, academicYear}
	if excludeID != "" {
		query += ` AND b.id <> $3`
		args = append(args, excludeID)
	}
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("list teacher weekly bookings: %w", err)
	}
	return bookings, nil
}

// Create stores a new booking record.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	booking.UpdatedAt = now

	const query = `INSERT INTO bookings (id, teacher_id, subject_name, section, room_number, day_of_week, start_time, end_time, academic_year, created_at, updated_at) VALUES (:id, :teacher_id, :subject_name, :section, :room_number, :day_of_week, :start_time, :end_time, :academic_year, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, booking); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

// Update modifies a booking record.
func (r *BookingRepository) Update(ctx context.Context, booking *models.Booking) error {
	booking.UpdatedAt = time.Now().UTC()
	const query = `UPDATE bookings SET teacher_id = :teacher_id, subject_name = :subject_name, section = :section, room_number = :room_number, day_of_week = :day_of_week, start_time = :start_time, end_time = :end_time, academic_year = :academic_year, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, booking); err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	return nil
}

// Delete removes a booking by id.
func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	return nil
}
