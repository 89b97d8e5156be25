package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/j4nthirty1ne/school-timetable-api/internal/models"
	appErrors "github.com/j4nthirty1ne/school-timetable-api/pkg/errors"
	"github.com/j4nthirty1ne/school-timetable-api/pkg/export"
)

type exportRepository interface {
	TeacherWeeklyBookings(ctx context.Context, teacherID, academicYear, excludeID string) ([]models.Booking, error)
}

// ExportResult carries rendered file content for download responses.
type ExportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ExportService renders a teacher's weekly timetable as CSV or PDF.
type ExportService struct {
	repo   exportRepository
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewExportService instantiates ExportService.
func NewExportService(repo exportRepository, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{repo: repo, csv: export.NewCSVExporter(), pdf: export.NewPDFExporter(), logger: logger}
}

var timetableColumns = []string{"Day", "Start", "End", "Subject", "Section", "Room", "Teacher"}

// ExportTimetable loads the teacher's week and renders it in the requested
// format ("csv" or "pdf").
func (s *ExportService) ExportTimetable(ctx context.Context, teacherID, academicYear, format string) (*ExportResult, error) {
	if teacherID == "" || academicYear == "" {
		return nil, appErrors.Clone(appErrors.ErrMissingFields, "teacherId and academicYear are required")
	}
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	bookings, err := s.repo.TeacherWeeklyBookings(ctx, teacherID, academicYear, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrRepository.Code, appErrors.ErrRepository.Status, "failed to load teacher weekly bookings")
	}

	dayOrder := make(map[models.DayOfWeek]int, len(models.Week))
	for i, day := range models.Week {
		dayOrder[day] = i
	}
	sort.Slice(bookings, func(i, j int) bool {
		if dayOrder[bookings[i].DayOfWeek] != dayOrder[bookings[j].DayOfWeek] {
			return dayOrder[bookings[i].DayOfWeek] < dayOrder[bookings[j].DayOfWeek]
		}
		return bookings[i].StartTime < bookings[j].StartTime
	})

	table := export.Table{Columns: timetableColumns}
	for _, booking := range bookings {
		table.Rows = append(table.Rows, map[string]string{
			"Day":     string(booking.DayOfWeek),
			"Start":   booking.StartTime,
			"End":     booking.EndTime,
			"Subject": booking.SubjectName,
			"Section": booking.Section,
			"Room":    booking.Room(),
			"Teacher": booking.TeacherName,
		})
	}

	title := fmt.Sprintf("Timetable %s (%s)", teacherID, academicYear)
	fileName := fmt.Sprintf("timetable_%s_%s.%s", teacherID, academicYear, format)

	switch format {
	case "pdf":
		content, err := s.pdf.Render(table, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable pdf")
		}
		return &ExportResult{FileName: fileName, ContentType: "application/pdf", Content: content}, nil
	default:
		content, err := s.csv.Render(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable csv")
		}
		return &ExportResult{FileName: fileName, ContentType: "text/csv", Content: content}, nil
	}
}
