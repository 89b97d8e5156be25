package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/j4nthirty1ne/school-timetable-api/internal/dto"
	"github.com/j4nthirty1ne/school-timetable-api/internal/models"
	"github.com/j4nthirty1ne/school-timetable-api/internal/service"
	appErrors "github.com/j4nthirty1ne/school-timetable-api/pkg/errors"
	"github.com/j4nthirty1ne/school-timetable-api/pkg/response"
)

type bookingService interface {
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Booking, error)
	Create(ctx context.Context, req service.CreateBookingRequest) (*models.Booking, error)
	Update(ctx context.Context, id string, req service.UpdateBookingRequest) (*models.Booking, error)
	Delete(ctx context.Context, id string) error
	TeacherTimetable(ctx context.Context, teacherID, academicYear string) (*dto.TeacherTimetable, error)
}

type timetableExporter interface {
	ExportTimetable(ctx context.Context, teacherID, academicYear, format string) (*service.ExportResult, error)
}

// BookingHandler manages booking endpoints.
type BookingHandler struct {
	service  bookingService
	exporter timetableExporter
}

// NewBookingHandler constructs handler.
func NewBookingHandler(svc bookingService, exporter timetableExporter) *BookingHandler {
	return &BookingHandler{service: svc, exporter: exporter}
}

// List godoc
// @Summary List bookings
// @Tags Bookings
// @Produce json
// @Param teacherId query string false "Filter by teacher"
// @Param dayOfWeek query string false "Filter by day"
// @Param room query string false "Filter by room"
// @Param academicYear query string false "Filter by academic year"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /schedules [get]
func (h *BookingHandler) List(c *gin.Context) {
	var filter models.BookingFilter
	filter.TeacherID = c.Query("teacherId")
	filter.DayOfWeek = strings.ToUpper(c.Query("dayOfWeek"))
	filter.RoomNumber = c.Query("room")
	filter.AcademicYear = c.Query("academicYear")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	bookings, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bookings, pagination)
}

// Get godoc
// @Summary Get a booking
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	booking, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

// Create godoc
// @Summary Create booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body service.CreateBookingRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedules [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var req service.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	booking, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, booking)
}

// Update godoc
// @Summary Update booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param payload body service.UpdateBookingRequest true "Booking payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedules/{id} [patch]
func (h *BookingHandler) Update(c *gin.Context) {
	var req service.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	booking, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

// Delete godoc
// @Summary Delete booking
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 204
// @Router /schedules/{id} [delete]
func (h *BookingHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Timetable godoc
// @Summary Weekly timetable for a teacher
// @Tags Bookings
// @Produce json
// @Param id path string true "Teacher ID"
// @Param academicYear query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/timetable [get]
func (h *BookingHandler) Timetable(c *gin.Context) {
	timetable, err := h.service.TeacherTimetable(c.Request.Context(), c.Param("id"), c.Query("academicYear"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable, nil)
}

// Export godoc
// @Summary Export a teacher's timetable
// @Tags Bookings
// @Produce text/csv
// @Produce application/pdf
// @Param teacherId query string true "Teacher ID"
// @Param academicYear query string true "Academic year"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /schedules/export [get]
func (h *BookingHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	result, err := h.exporter.ExportTimetable(c.Request.Context(), c.Query("teacherId"), c.Query("academicYear"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
