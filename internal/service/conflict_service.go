package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/j4nthirty1ne/school-timetable-api/internal/dto"
	"github.com/j4nthirty1ne/school-timetable-api/internal/models"
	"github.com/j4nthirty1ne/school-timetable-api/pkg/config"
	appErrors "github.com/j4nthirty1ne/school-timetable-api/pkg/errors"
)

type conflictRepository interface {
	TeacherBookings(ctx context.Context, teacherID string, day models.DayOfWeek, academicYear, excludeID string) ([]models.Booking, error)
	RoomBookings(ctx context.Context, roomNumber string, day models.DayOfWeek, academicYear, excludeID string) ([]models.Booking, error)
	TeacherWeeklyBookings(ctx context.Context, teacherID, academicYear, excludeID string) ([]models.Booking, error)
}

// ConflictService decides whether a proposed (teacher, room, day, interval)
// assignment collides with existing bookings and enforces the teacher weekly
// workload thresholds. Detection is a pure function of the request and the
// current booking snapshot; it acquires no locks and mutates nothing.
type ConflictService struct {
	repo       conflictRepository
	validator  *validator.Validate
	logger     *zap.Logger
	metrics    *MetricsService
	limitHours float64
	warnHours  float64
}

// NewConflictService instantiates ConflictService.
func NewConflictService(repo conflictRepository, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, workload config.WorkloadConfig) *ConflictService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := workload.LimitHours
	if limit <= 0 {
		limit = 20
	}
	warn := workload.WarnHours
	if warn <= 0 || warn > limit {
		warn = 18
	}
	return &ConflictService{repo: repo, validator: validate, logger: logger, metrics: metrics, limitHours: limit, warnHours: warn}
}

// Check runs the three conflict passes and aggregates the result. All passes
// run even when an earlier pass finds conflicts. A failed repository read
// aborts the whole check; it is never reported as "no conflicts".
func (s *ConflictService) Check(ctx context.Context, req dto.ConflictCheckRequest) (*models.ConflictReport, error) {
	started := time.Now()

	proposal, err := s.buildProposal(req)
	if err != nil {
		return nil, err
	}

	var records []models.ConflictRecord

	teacherRecords, err := s.teacherPass(ctx, proposal)
	if err != nil {
		return nil, err
	}
	records = append(records, teacherRecords...)

	if proposal.RoomNumber != nil {
		roomRecords, err := s.roomPass(ctx, proposal)
		if err != nil {
			return nil, err
		}
		records = append(records, roomRecords...)
	}

	workloadRecords, err := s.workloadPass(ctx, proposal)
	if err != nil {
		return nil, err
	}
	records = append(records, workloadRecords...)

	report := models.NewConflictReport(records)
	s.metrics.ObserveConflictCheck(report, time.Since(started))
	s.logger.Debug("conflict check completed",
		zap.String("teacher_id", proposal.TeacherID),
		zap.String("day", string(proposal.Day)),
		zap.Int("conflicts", report.ConflictCount),
		zap.Int("critical", report.CriticalCount),
	)
	return report, nil
}

func (s *ConflictService) buildProposal(req dto.ConflictCheckRequest) (models.ConflictProposal, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.ConflictProposal{}, appErrors.Wrap(err, appErrors.ErrMissingFields.Code, appErrors.ErrMissingFields.Status, "teacher_id, day_of_week, start_time, end_time and academic_year are required")
	}

	day, err := models.ParseDay(req.DayOfWeek)
	if err != nil {
		return models.ConflictProposal{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid day_of_week %q", req.DayOfWeek))
	}

	interval, err := models.NewInterval(req.StartTime, req.EndTime)
	if err != nil {
		return models.ConflictProposal{}, appErrors.Wrap(err, appErrors.ErrInvalidTimeFormat.Code, appErrors.ErrInvalidTimeFormat.Status, appErrors.ErrInvalidTimeFormat.Message)
	}

	proposal := models.ConflictProposal{
		ExcludeBookingID: req.SubjectClassID,
		TeacherID:        req.TeacherID,
		Day:              day,
		Interval:         interval,
		AcademicYear:     req.AcademicYear,
	}
	if req.RoomNumber != "" {
		room := req.RoomNumber
		proposal.RoomNumber = &room
	}
	return proposal, nil
}

func (s *ConflictService) teacherPass(ctx context.Context, proposal models.ConflictProposal) ([]models.ConflictRecord, error) {
	bookings, err := s.repo.TeacherBookings(ctx, proposal.TeacherID, proposal.Day, proposal.AcademicYear, proposal.ExcludeBookingID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrRepository.Code, appErrors.ErrRepository.Status, "failed to load teacher bookings")
	}

	var records []models.ConflictRecord
	for _, booking := range bookings {
		overlap, err := s.overlapsProposal(booking, proposal.Interval)
		if err != nil {
			return nil, err
		}
		if !overlap {
			continue
		}
		message := fmt.Sprintf("Teacher is already scheduled for %s (%s) from %s to %s", booking.SubjectName, booking.Section, booking.StartTime, booking.EndTime)
		if room := booking.Room(); room != "" {
			message += fmt.Sprintf(" in room %s", room)
		}
		records = append(records, models.ConflictRecord{
			Type:     models.TeacherConflict,
			Severity: models.SeverityCritical,
			Blocking: true,
			Message:  message,
			Details: map[string]interface{}{
				"booking_id": booking.ID,
				"subject":    booking.SubjectName,
				"section":    booking.Section,
				"start_time": booking.StartTime,
				"end_time":   booking.EndTime,
				"room":       booking.Room(),
			},
		})
	}
	return records, nil
}

func (s *ConflictService) roomPass(ctx context.Context, proposal models.ConflictProposal) ([]models.ConflictRecord, error) {
	room := *proposal.RoomNumber
	bookings, err := s.repo.RoomBookings(ctx, room, proposal.Day, proposal.AcademicYear, proposal.ExcludeBookingID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrRepository.Code, appErrors.ErrRepository.Status, "failed to load room bookings")
	}

	var records []models.ConflictRecord
	for _, booking := range bookings {
		overlap, err := s.overlapsProposal(booking, proposal.Interval)
		if err != nil {
			return nil, err
		}
		if !overlap {
			continue
		}
		records = append(records, models.ConflictRecord{
			Type:     models.RoomConflict,
			Severity: models.SeverityCritical,
			Blocking: true,
			Message:  fmt.Sprintf("Room %s is already booked for %s (%s) by %s from %s to %s", room, booking.SubjectName, booking.Section, booking.TeacherName, booking.StartTime, booking.EndTime),
			Details: map[string]interface{}{
				"booking_id":   booking.ID,
				"subject":      booking.SubjectName,
				"section":      booking.Section,
				"teacher_id":   booking.TeacherID,
				"teacher_name": booking.TeacherName,
				"start_time":   booking.StartTime,
				"end_time":     booking.EndTime,
			},
		})
	}
	return records, nil
}

func (s *ConflictService) workloadPass(ctx context.Context, proposal models.ConflictProposal) ([]models.ConflictRecord, error) {
	bookings, err := s.repo.TeacherWeeklyBookings(ctx, proposal.TeacherID, proposal.AcademicYear, proposal.ExcludeBookingID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrRepository.Code, appErrors.ErrRepository.Status, "failed to load teacher weekly bookings")
	}

	existingHours := 0.0
	for _, booking := range bookings {
		interval, err := booking.Interval()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrRepository.Code, appErrors.ErrRepository.Status, fmt.Sprintf("booking %s has an unreadable time range", booking.ID))
		}
		existingHours += interval.DurationHours()
	}

	proposalHours := proposal.Interval.DurationHours()
	projectedHours := existingHours + proposalHours

	switch {
	case projectedHours > s.limitHours:
		return []models.ConflictRecord{{
			Type:     models.WorkloadExceeded,
			Severity: models.SeverityWarning,
			Blocking: false,
			Message:  fmt.Sprintf("Projected weekly load of %.1f hours exceeds the %.0f-hour limit by %.1f hours", projectedHours, s.limitHours, projectedHours-s.limitHours),
			Details: map[string]interface{}{
				"current_load": existingHours,
				"new_load":     projectedHours,
				"limit":        s.limitHours,
				"excess":       projectedHours - s.limitHours,
			},
		}}, nil
	case projectedHours > s.warnHours:
		return []models.ConflictRecord{{
			Type:     models.WorkloadWarning,
			Severity: models.SeverityInfo,
			Blocking: false,
			Message:  fmt.Sprintf("Projected weekly load of %.1f hours is approaching the %.0f-hour limit (%.1f hours remaining)", projectedHours, s.limitHours, s.limitHours-projectedHours),
			Details: map[string]interface{}{
				"current_load": existingHours,
				"new_load":     projectedHours,
				"limit":        s.limitHours,
				"remaining":    s.limitHours - projectedHours,
			},
		}}, nil
	default:
		return nil, nil
	}
}

// overlapsProposal parses a stored booking's interval and compares it against
// the proposal. Unreadable stored rows abort the check instead of being
// skipped, so a corrupted row can never understate conflicts.
func (s *ConflictService) overlapsProposal(booking models.Booking, interval models.TimeInterval) (bool, error) {
	existing, err := booking.Interval()
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrRepository.Code, appErrors.ErrRepository.Status, fmt.Sprintf("booking %s has an unreadable time range", booking.ID))
	}
	return existing.Overlaps(interval), nil
}
