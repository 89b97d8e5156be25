package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j4nthirty1ne/school-timetable-api/internal/dto"
	"github.com/j4nthirty1ne/school-timetable-api/internal/models"
	appErrors "github.com/j4nthirty1ne/school-timetable-api/pkg/errors"
)

type mockConflictChecker struct {
	report *models.ConflictReport
	err    error
	gotReq dto.ConflictCheckRequest
}

func (m *mockConflictChecker) Check(_ context.Context, req dto.ConflictCheckRequest) (*models.ConflictReport, error) {
	m.gotReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

func conflictRouter(svc *mockConflictChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/v1/schedules/check-conflicts", NewConflictHandler(svc).Check)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestConflictCheckEndpointReturnsReport(t *testing.T) {
	report := models.NewConflictReport([]models.ConflictRecord{{
		Type:     models.TeacherConflict,
		Severity: models.SeverityCritical,
		Blocking: true,
		Message:  "Teacher is already scheduled for Math (A) from 09:00 to 10:00",
	}})
	svc := &mockConflictChecker{report: report}
	router := conflictRouter(svc)

	rec := postJSON(t, router, "/api/v1/schedules/check-conflicts", gin.H{
		"teacher_id":    "t1",
		"day_of_week":   "MONDAY",
		"start_time":    "09:00",
		"end_time":      "10:00",
		"room_number":   "101",
		"academic_year": "2024-2025",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "101", svc.gotReq.RoomNumber)

	var resp dto.ConflictCheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.HasConflicts)
	assert.Equal(t, 1, resp.ConflictCount)
	assert.Equal(t, 1, resp.CriticalConflicts)
	assert.Equal(t, 0, resp.Warnings)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, models.TeacherConflict, resp.Conflicts[0].Type)
	assert.True(t, resp.Conflicts[0].Blocking)
}

func TestConflictCheckEndpointCleanReportHasEmptyArray(t *testing.T) {
	svc := &mockConflictChecker{report: models.NewConflictReport(nil)}
	router := conflictRouter(svc)

	rec := postJSON(t, router, "/api/v1/schedules/check-conflicts", gin.H{
		"teacher_id":    "t1",
		"day_of_week":   "MONDAY",
		"start_time":    "09:00",
		"end_time":      "10:00",
		"academic_year": "2024-2025",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"conflicts":[]`)
	assert.Contains(t, rec.Body.String(), `"has_conflicts":false`)
}

func TestConflictCheckEndpointMalformedBody(t *testing.T) {
	router := conflictRouter(&mockConflictChecker{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/schedules/check-conflicts", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestConflictCheckEndpointValidationError(t *testing.T) {
	svc := &mockConflictChecker{err: appErrors.Clone(appErrors.ErrInvalidTimeFormat, "")}
	router := conflictRouter(svc)

	rec := postJSON(t, router, "/api/v1/schedules/check-conflicts", gin.H{
		"teacher_id":    "t1",
		"day_of_week":   "MONDAY",
		"start_time":    "9am",
		"end_time":      "10:00",
		"academic_year": "2024-2025",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), appErrors.ErrInvalidTimeFormat.Code)
}

func TestConflictCheckEndpointRepositoryFailure(t *testing.T) {
	svc := &mockConflictChecker{err: appErrors.Clone(appErrors.ErrRepository, "")}
	router := conflictRouter(svc)

	rec := postJSON(t, router, "/api/v1/schedules/check-conflicts", gin.H{
		"teacher_id":    "t1",
		"day_of_week":   "MONDAY",
		"start_time":    "09:00",
		"end_time":      "10:00",
		"academic_year": "2024-2025",
	})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), appErrors.ErrRepository.Code)
}
