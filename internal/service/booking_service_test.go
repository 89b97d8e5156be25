package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j4nthirty1ne/school-timetable-api/internal/models"
	appErrors "github.com/j4nthirty1ne/school-timetable-api/pkg/errors"
)

type mockBookingRepo struct {
	bookings     map[string]*models.Booking
	roomBookings []models.Booking
	weekly       []models.Booking
	roomErr      error

	created       *models.Booking
	updated       *models.Booking
	deletedID     string
	roomExcludeID string
	weeklyCalls   int
}

func newMockBookingRepo() *mockBookingRepo {
	return &mockBookingRepo{bookings: make(map[string]*models.Booking)}
}

func (m *mockBookingRepo) List(_ context.Context, _ models.BookingFilter) ([]models.Booking, int, error) {
	var out []models.Booking
	for _, b := range m.bookings {
		out = append(out, *b)
	}
	return out, len(out), nil
}

func (m *mockBookingRepo) FindByID(_ context.Context, id string) (*models.Booking, error) {
	booking, ok := m.bookings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *booking
	return &clone, nil
}

func (m *mockBookingRepo) RoomBookings(_ context.Context, _ string, _ models.DayOfWeek, _, excludeID string) ([]models.Booking, error) {
	m.roomExcludeID = excludeID
	if m.roomErr != nil {
		return nil, m.roomErr
	}
	if excludeID != "" {
		return filterOut(m.roomBookings, excludeID), nil
	}
	return m.roomBookings, nil
}

func (m *mockBookingRepo) TeacherWeeklyBookings(_ context.Context, _, _, excludeID string) ([]models.Booking, error) {
	m.weeklyCalls++
	if excludeID != "" {
		return filterOut(m.weekly, excludeID), nil
	}
	return m.weekly, nil
}

func (m *mockBookingRepo) Create(_ context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = "generated"
	}
	m.created = booking
	m.bookings[booking.ID] = booking
	return nil
}

func (m *mockBookingRepo) Update(_ context.Context, booking *models.Booking) error {
	m.updated = booking
	m.bookings[booking.ID] = booking
	return nil
}

func (m *mockBookingRepo) Delete(_ context.Context, id string) error {
	m.deletedID = id
	delete(m.bookings, id)
	return nil
}

type memoryCacheRepo struct {
	entries map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

func createRequest() CreateBookingRequest {
	return CreateBookingRequest{
		TeacherID:    "t1",
		SubjectName:  "Math",
		Section:      "A",
		RoomNumber:   "101",
		DayOfWeek:    "monday",
		StartTime:    "9:00",
		EndTime:      "10:00",
		AcademicYear: "2024-2025",
	}
}

func TestBookingCreateNormalisesDayAndTimes(t *testing.T) {
	repo := newMockBookingRepo()
	svc := NewBookingService(repo, nil, nil, nil)

	booking, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	assert.Equal(t, models.Monday, booking.DayOfWeek)
	assert.Equal(t, "09:00", booking.StartTime)
	assert.Equal(t, "10:00", booking.EndTime)
	require.NotNil(t, booking.RoomNumber)
	assert.Equal(t, "101", *booking.RoomNumber)
	assert.NotNil(t, repo.created)
}

func TestBookingCreateRejectsOccupiedRoom(t *testing.T) {
	repo := newMockBookingRepo()
	repo.roomBookings = []models.Booking{makeBooking("b9", "t2", "101", "MONDAY", "09:30", "10:30")}
	svc := NewBookingService(repo, nil, nil, nil)

	booking, err := svc.Create(context.Background(), createRequest())
	require.Error(t, err)
	assert.Nil(t, booking)
	assert.Nil(t, repo.created)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, 409, appErr.Status)
	assert.Contains(t, appErr.Message, "Room 101 is already booked on MONDAY from 09:30 to 10:30")
}

func TestBookingCreateSkipsGuardWithoutRoom(t *testing.T) {
	repo := newMockBookingRepo()
	repo.roomErr = errors.New("should not be called")
	svc := NewBookingService(repo, nil, nil, nil)

	req := createRequest()
	req.RoomNumber = ""
	booking, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, booking.RoomNumber)
}

func TestBookingCreateGuardRepositoryFailure(t *testing.T) {
	repo := newMockBookingRepo()
	repo.roomErr = errors.New("connection refused")
	svc := NewBookingService(repo, nil, nil, nil)

	_, err := svc.Create(context.Background(), createRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrRepository.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}

func TestBookingUpdateExcludesItselfFromGuard(t *testing.T) {
	repo := newMockBookingRepo()
	existing := makeBooking("b1", "t1", "101", "MONDAY", "09:00", "10:00")
	repo.bookings["b1"] = &existing
	repo.roomBookings = []models.Booking{existing}
	svc := NewBookingService(repo, nil, nil, nil)

	req := UpdateBookingRequest(createRequest())
	updated, err := svc.Update(context.Background(), "b1", req)
	require.NoError(t, err)
	assert.Equal(t, "b1", repo.roomExcludeID)
	assert.Equal(t, "b1", updated.ID)
}

func TestBookingUpdateNotFound(t *testing.T) {
	svc := NewBookingService(newMockBookingRepo(), nil, nil, nil)

	_, err := svc.Update(context.Background(), "missing", UpdateBookingRequest(createRequest()))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBookingDelete(t *testing.T) {
	repo := newMockBookingRepo()
	existing := makeBooking("b1", "t1", "101", "MONDAY", "09:00", "10:00")
	repo.bookings["b1"] = &existing
	svc := NewBookingService(repo, nil, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "b1"))
	assert.Equal(t, "b1", repo.deletedID)

	err := svc.Delete(context.Background(), "b1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTeacherTimetableGroupsAndSorts(t *testing.T) {
	repo := newMockBookingRepo()
	repo.weekly = []models.Booking{
		makeBooking("b2", "t1", "101", "WEDNESDAY", "08:00", "09:30"),
		makeBooking("b1", "t1", "101", "MONDAY", "10:00", "11:00"),
		makeBooking("b3", "t1", "", "MONDAY", "07:30", "08:30"),
	}
	svc := NewBookingService(repo, nil, nil, nil)

	timetable, err := svc.TeacherTimetable(context.Background(), "t1", "2024-2025")
	require.NoError(t, err)

	require.Len(t, timetable.Days, 2)
	assert.Equal(t, models.Monday, timetable.Days[0].Day)
	assert.Equal(t, "b3", timetable.Days[0].Bookings[0].ID)
	assert.Equal(t, "b1", timetable.Days[0].Bookings[1].ID)
	assert.Equal(t, models.Wednesday, timetable.Days[1].Day)
	assert.InDelta(t, 3.5, timetable.TotalHours, 1e-9)
}

func TestTeacherTimetableRequiresIdentifiers(t *testing.T) {
	svc := NewBookingService(newMockBookingRepo(), nil, nil, nil)

	_, err := svc.TeacherTimetable(context.Background(), "", "2024-2025")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrMissingFields.Code, appErrors.FromError(err).Code)
}

func TestTeacherTimetableUsesCache(t *testing.T) {
	repo := newMockBookingRepo()
	repo.weekly = []models.Booking{makeBooking("b1", "t1", "101", "MONDAY", "09:00", "10:00")}
	cacheRepo := newMemoryCacheRepo()
	cache := NewCacheService(cacheRepo, NewMetricsService(), time.Minute, nil, true)
	svc := NewBookingService(repo, cache, nil, nil)

	first, err := svc.TeacherTimetable(context.Background(), "t1", "2024-2025")
	require.NoError(t, err)
	second, err := svc.TeacherTimetable(context.Background(), "t1", "2024-2025")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.weeklyCalls)
	assert.Equal(t, first.TotalHours, second.TotalHours)

	// Writes drop the cached week.
	_, err = svc.Create(context.Background(), createRequest())
	require.NoError(t, err)
	assert.Empty(t, cacheRepo.entries)
}

func TestBookingCreateValidation(t *testing.T) {
	svc := NewBookingService(newMockBookingRepo(), nil, nil, nil)

	req := createRequest()
	req.TeacherID = ""
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	req = createRequest()
	req.EndTime = "08:00"
	_, err = svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTimeFormat.Code, appErrors.FromError(err).Code)
}
