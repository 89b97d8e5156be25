package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/j4nthirty1ne/school-timetable-api/internal/dto"
	"github.com/j4nthirty1ne/school-timetable-api/internal/models"
	appErrors "github.com/j4nthirty1ne/school-timetable-api/pkg/errors"
)

type bookingRepository interface {
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error)
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	RoomBookings(ctx context.Context, roomNumber string, day models.DayOfWeek, academicYear, excludeID string) ([]models.Booking, error)
	TeacherWeeklyBookings(ctx context.Context, teacherID, academicYear, excludeID string) ([]models.Booking, error)
	Create(ctx context.Context, booking *models.Booking) error
	Update(ctx context.Context, booking *models.Booking) error
	Delete(ctx context.Context, id string) error
}

// CreateBookingRequest describes payload for creating a booking.
type CreateBookingRequest struct {
	TeacherID    string `json:"teacher_id" validate:"required"`
	SubjectName  string `json:"subject_name" validate:"required"`
	Section      string `json:"section" validate:"required"`
	RoomNumber   string `json:"room_number"`
	DayOfWeek    string `json:"day_of_week" validate:"required"`
	StartTime    string `json:"start_time" validate:"required"`
	EndTime      string `json:"end_time" validate:"required"`
	AcademicYear string `json:"academic_year" validate:"required"`
}

// UpdateBookingRequest replaces an existing booking's assignment.
type UpdateBookingRequest struct {
	TeacherID    string `json:"teacher_id" validate:"required"`
	SubjectName  string `json:"subject_name" validate:"required"`
	Section      string `json:"section" validate:"required"`
	RoomNumber   string `json:"room_number"`
	DayOfWeek    string `json:"day_of_week" validate:"required"`
	StartTime    string `json:"start_time" validate:"required"`
	EndTime      string `json:"end_time" validate:"required"`
	AcademicYear string `json:"academic_year" validate:"required"`
}

// BookingService coordinates booking writes, guarded by the room-availability
// check, and the cached teacher timetable view.
type BookingService struct {
	repo      bookingRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBookingService instantiates BookingService.
func NewBookingService(repo bookingRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns bookings with pagination metadata.
func (s *BookingService) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, *models.Pagination, error) {
	bookings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrRepository.Code, appErrors.ErrRepository.Status, "failed to list bookings")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return bookings, pagination, nil
}

// Get loads a single booking.
func (s *BookingService) Get(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrRepository.Code, appErrors.ErrRepository.Status, "failed to load booking")
	}
	return booking, nil
}

// Create inserts a new booking after the room-availability guard.
func (s *BookingService) Create(ctx context.Context, req CreateBookingRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}

	booking, err := s.buildBooking("", req.TeacherID, req.SubjectName, req.Section, req.RoomNumber, req.DayOfWeek, req.StartTime, req.EndTime, req.AcademicYear)
	if err != nil {
		return nil, err
	}

	if err := s.ensureRoomAvailable(ctx, booking, ""); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrRepository.Code, appErrors.ErrRepository.Status, "failed to create booking")
	}
	s.invalidateTimetable(ctx, booking.TeacherID)
	return booking, nil
}

// Update modifies an existing booking, excluding it from its own guard check.
func (s *BookingService) Update(ctx context.Context, id string, req UpdateBookingRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrRepository.Code, appErrors.ErrRepository.Status, "failed to load booking")
	}

	updated, err := s.buildBooking(existing.ID, req.TeacherID, req.SubjectName, req.Section, req.RoomNumber, req.DayOfWeek, req.StartTime, req.EndTime, req.AcademicYear)
	if err != nil {
		return nil, err
	}
	updated.CreatedAt = existing.CreatedAt

	if err := s.ensureRoomAvailable(ctx, updated, existing.ID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrRepository.Code, appErrors.ErrRepository.Status, "failed to update booking")
	}
	s.invalidateTimetable(ctx, updated.TeacherID)
	if existing.TeacherID != updated.TeacherID {
		s.invalidateTimetable(ctx, existing.TeacherID)
	}
	return updated, nil
}

// Delete removes a booking.
func (s *BookingService) Delete(ctx context.Context, id string) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return appErrors.Wrap(err, appErrors.ErrRepository.Code, appErrors.ErrRepository.Status, "failed to load booking")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrRepository.Code, appErrors.ErrRepository.Status, "failed to delete booking")
	}
	s.invalidateTimetable(ctx, existing.TeacherID)
	return nil
}

// TeacherTimetable returns the teacher's week grouped by day, served from
// cache when enabled.
func (s *BookingService) TeacherTimetable(ctx context.Context, teacherID, academicYear string) (*dto.TeacherTimetable, error) {
	if teacherID == "" || academicYear == "" {
		return nil, appErrors.Clone(appErrors.ErrMissingFields, "teacherId and academicYear are required")
	}

	cacheKey := timetableCacheKey(teacherID, academicYear)
	var cached dto.TeacherTimetable
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	bookings, err := s.repo.TeacherWeeklyBookings(ctx, teacherID, academicYear, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrRepository.Code, appErrors.ErrRepository.Status, "failed to load teacher weekly bookings")
	}

	timetable := &dto.TeacherTimetable{TeacherID: teacherID, AcademicYear: academicYear}
	byDay := make(map[models.DayOfWeek][]models.Booking)
	for _, booking := range bookings {
		byDay[booking.DayOfWeek] = append(byDay[booking.DayOfWeek], booking)
		if interval, err := booking.Interval(); err == nil {
			timetable.TotalHours += interval.DurationHours()
		}
	}
	for _, day := range models.Week {
		dayBookings, ok := byDay[day]
		if !ok {
			continue
		}
		sort.Slice(dayBookings, func(i, j int) bool {
			return dayBookings[i].StartTime < dayBookings[j].StartTime
		})
		timetable.Days = append(timetable.Days, dto.TimetableDay{Day: day, Bookings: dayBookings})
	}

	_ = s.cache.Set(ctx, cacheKey, timetable, 0)
	return timetable, nil
}

func (s *BookingService) buildBooking(id, teacherID, subject, section, room, day, start, end, academicYear string) (*models.Booking, error) {
	parsedDay, err := models.ParseDay(day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid day_of_week %q", day))
	}
	interval, err := models.NewInterval(start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidTimeFormat.Code, appErrors.ErrInvalidTimeFormat.Status, appErrors.ErrInvalidTimeFormat.Message)
	}

	booking := &models.Booking{
		ID:           id,
		TeacherID:    teacherID,
		SubjectName:  subject,
		Section:      section,
		DayOfWeek:    parsedDay,
		StartTime:    interval.StartClock(),
		EndTime:      interval.EndClock(),
		AcademicYear: academicYear,
	}
	if room != "" {
		booking.RoomNumber = &room
	}
	return booking, nil
}

// ensureRoomAvailable is the pre-insert guard: a strict subset of the
// detector's room pass, sharing the same overlap primitive. Bookings without
// a room skip the check.
func (s *BookingService) ensureRoomAvailable(ctx context.Context, booking *models.Booking, excludeID string) error {
	if booking.RoomNumber == nil {
		return nil
	}

	existing, err := s.repo.RoomBookings(ctx, *booking.RoomNumber, booking.DayOfWeek, booking.AcademicYear, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrRepository.Code, appErrors.ErrRepository.Status, "failed to check room availability")
	}

	proposed, err := booking.Interval()
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInvalidTimeFormat.Code, appErrors.ErrInvalidTimeFormat.Status, appErrors.ErrInvalidTimeFormat.Message)
	}

	for _, other := range existing {
		interval, err := other.Interval()
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrRepository.Code, appErrors.ErrRepository.Status, fmt.Sprintf("booking %s has an unreadable time range", other.ID))
		}
		if interval.Overlaps(proposed) {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("Room %s is already booked on %s from %s to %s for %s", *booking.RoomNumber, booking.DayOfWeek, other.StartTime, other.EndTime, other.SubjectName))
		}
	}
	return nil
}

func (s *BookingService) invalidateTimetable(ctx context.Context, teacherID string) {
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("timetable:%s:*", teacherID)); err != nil {
		s.logger.Warn("timetable cache invalidation failed", zap.String("teacher_id", teacherID), zap.Error(err))
	}
}

func timetableCacheKey(teacherID, academicYear string) string {
	return fmt.Sprintf("timetable:%s:%s", teacherID, academicYear)
}
