package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentloop/rentloop-api/internal/models"
	appErrors "github.com/rentloop/rentloop-api/pkg/errors"
)

type resourceStoreStub struct {
	resources map[string]*models.Resource
	err       error
}

func (s *resourceStoreStub) GetByID(ctx context.Context, id string) (*models.Resource, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.resources[id], nil
}

func (s *resourceStoreStub) ListByOwner(ctx context.Context, ownerID string) ([]models.Resource, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Resource
	for _, r := range s.resources {
		if r.OwnerID == ownerID {
			out = append(out, *r)
		}
	}
	return out, nil
}

type scheduleStoreStub struct {
	weekly     []models.WeeklyAvailability
	exceptions []models.AvailabilityException
	weeklyErr  error
	excErr     error
}

func (s *scheduleStoreStub) GetWeeklyPattern(ctx context.Context, resourceID string) ([]models.WeeklyAvailability, error) {
	return s.weekly, s.weeklyErr
}

func (s *scheduleStoreStub) GetExceptions(ctx context.Context, resourceID string, from, to time.Time) ([]models.AvailabilityException, error) {
	return s.exceptions, s.excErr
}

type blockStoreStub struct {
	blocks []models.BlockedPeriod
	err    error
	calls  int
}

func (s *blockStoreStub) ListOverlapping(ctx context.Context, resourceID, ownerID string, from, to time.Time) ([]models.BlockedPeriod, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.blocks, nil
}

type reservationStoreStub struct {
	reservations []models.Reservation
	err          error
}

func (s *reservationStoreStub) ListOverlapping(ctx context.Context, resourceID string, from, to time.Time, statuses ...models.ReservationStatus) ([]models.Reservation, error) {
	return s.reservations, s.err
}

type cacheStub struct {
	entries  map[string][]byte
	deleted  []string
	setCalls int
}

func newCacheStub() *cacheStub {
	return &cacheStub{entries: map[string][]byte{}}
}

func (s *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := s.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.setCalls++
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.entries[key] = raw
	return nil
}

func (s *cacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	s.deleted = append(s.deleted, pattern)
	return nil
}

func strPtr(s string) *string { return &s }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testResource() *models.Resource {
	return &models.Resource{ID: "res-1", OwnerID: "owner-1", Title: "Cordless drill", Active: true}
}

func newTestAvailability(resources *resourceStoreStub, schedules *scheduleStoreStub, blocks *blockStoreStub, reservations *reservationStoreStub) *AvailabilityService {
	return NewAvailabilityService(resources, schedules, blocks, reservations, nil, nil, false, 0, nil)
}

func TestQueryAvailabilityOpenByDefault(t *testing.T) {
	svc := newTestAvailability(
		&resourceStoreStub{resources: map[string]*models.Resource{"res-1": testResource()}},
		&scheduleStoreStub{}, &blockStoreStub{}, &reservationStoreStub{},
	)

	result, err := svc.QueryAvailability(context.Background(), "res-1", date(2026, 9, 1), date(2026, 9, 3))
	require.NoError(t, err)
	require.Len(t, result.Days, 3)
	for _, day := range result.Days {
		assert.True(t, day.Morning)
		assert.True(t, day.Afternoon)
		assert.True(t, day.Evening)
	}
}

func TestQueryAvailabilityWeeklyPatternCloses(t *testing.T) {
	// 2026-09-06 is a Sunday.
	svc := newTestAvailability(
		&resourceStoreStub{resources: map[string]*models.Resource{"res-1": testResource()}},
		&scheduleStoreStub{weekly: []models.WeeklyAvailability{
			{ResourceID: "res-1", DayOfWeek: 0, Available: false},
		}},
		&blockStoreStub{}, &reservationStoreStub{},
	)

	result, err := svc.QueryAvailability(context.Background(), "res-1", date(2026, 9, 6), date(2026, 9, 7))
	require.NoError(t, err)
	require.Len(t, result.Days, 2)
	assert.False(t, result.Days[0].Morning)
	assert.False(t, result.Days[0].Evening)
	assert.True(t, result.Days[1].Morning)
}

func TestQueryAvailabilityExceptionOverridesWeekly(t *testing.T) {
	svc := newTestAvailability(
		&resourceStoreStub{resources: map[string]*models.Resource{"res-1": testResource()}},
		&scheduleStoreStub{
			weekly: []models.WeeklyAvailability{
				{ResourceID: "res-1", DayOfWeek: 0, Available: false},
			},
			exceptions: []models.AvailabilityException{
				{ResourceID: "res-1", Date: date(2026, 9, 6), Morning: true},
			},
		},
		&blockStoreStub{}, &reservationStoreStub{},
	)

	result, err := svc.QueryAvailability(context.Background(), "res-1", date(2026, 9, 6), date(2026, 9, 6))
	require.NoError(t, err)
	require.Len(t, result.Days, 1)
	assert.True(t, result.Days[0].Morning)
	assert.False(t, result.Days[0].Afternoon)
	assert.False(t, result.Days[0].Evening)
}

func TestQueryAvailabilityReservationBeatsException(t *testing.T) {
	svc := newTestAvailability(
		&resourceStoreStub{resources: map[string]*models.Resource{"res-1": testResource()}},
		&scheduleStoreStub{exceptions: []models.AvailabilityException{
			{ResourceID: "res-1", Date: date(2026, 9, 2), Morning: true, Afternoon: true, Evening: true},
		}},
		&blockStoreStub{},
		&reservationStoreStub{reservations: []models.Reservation{
			{ResourceID: "res-1", StartDate: date(2026, 9, 2), EndDate: date(2026, 9, 4), Status: models.ReservationConfirmed},
		}},
	)

	result, err := svc.QueryAvailability(context.Background(), "res-1", date(2026, 9, 1), date(2026, 9, 5))
	require.NoError(t, err)
	require.Len(t, result.Days, 5)
	assert.True(t, result.Days[0].Morning)
	for _, day := range result.Days[1:4] {
		assert.False(t, day.Morning)
		assert.False(t, day.Afternoon)
		assert.False(t, day.Evening)
	}
	assert.True(t, result.Days[4].Morning)
}

func TestQueryAvailabilityReservationTimesNarrowBoundaryDays(t *testing.T) {
	svc := newTestAvailability(
		&resourceStoreStub{resources: map[string]*models.Resource{"res-1": testResource()}},
		&scheduleStoreStub{},
		&blockStoreStub{},
		&reservationStoreStub{reservations: []models.Reservation{
			{ResourceID: "res-1", StartDate: date(2026, 9, 2), EndDate: date(2026, 9, 4),
				PickupTime: strPtr("14:00"), ReturnTime: strPtr("10:00"),
				Status: models.ReservationConfirmed},
		}},
	)

	result, err := svc.QueryAvailability(context.Background(), "res-1", date(2026, 9, 2), date(2026, 9, 4))
	require.NoError(t, err)
	require.Len(t, result.Days, 3)

	// Pickup at 14:00 leaves the first morning open.
	assert.True(t, result.Days[0].Morning)
	assert.False(t, result.Days[0].Afternoon)
	assert.False(t, result.Days[0].Evening)

	assert.False(t, result.Days[1].Morning)
	assert.False(t, result.Days[1].Afternoon)
	assert.False(t, result.Days[1].Evening)

	// Return at 10:00 frees the last afternoon and evening.
	assert.False(t, result.Days[2].Morning)
	assert.True(t, result.Days[2].Afternoon)
	assert.True(t, result.Days[2].Evening)
}

func TestQueryAvailabilityReservationWithoutTimesClosesWholeDays(t *testing.T) {
	svc := newTestAvailability(
		&resourceStoreStub{resources: map[string]*models.Resource{"res-1": testResource()}},
		&scheduleStoreStub{},
		&blockStoreStub{},
		&reservationStoreStub{reservations: []models.Reservation{
			{ResourceID: "res-1", StartDate: date(2026, 9, 2), EndDate: date(2026, 9, 3),
				Status: models.ReservationActive},
		}},
	)

	result, err := svc.QueryAvailability(context.Background(), "res-1", date(2026, 9, 2), date(2026, 9, 3))
	require.NoError(t, err)
	for _, day := range result.Days {
		assert.False(t, day.Morning)
		assert.False(t, day.Afternoon)
		assert.False(t, day.Evening)
	}
}

func TestQueryAvailabilityOwnerWideBlockApplies(t *testing.T) {
	svc := newTestAvailability(
		&resourceStoreStub{resources: map[string]*models.Resource{"res-1": testResource()}},
		&scheduleStoreStub{},
		&blockStoreStub{blocks: []models.BlockedPeriod{
			{OwnerID: "owner-1", StartDate: date(2026, 9, 2), EndDate: date(2026, 9, 2), Kind: models.BlockKindManual, AllDay: true},
		}},
		&reservationStoreStub{},
	)

	result, err := svc.QueryAvailability(context.Background(), "res-1", date(2026, 9, 1), date(2026, 9, 3))
	require.NoError(t, err)
	assert.True(t, result.Days[0].Morning)
	assert.False(t, result.Days[1].Morning)
	assert.False(t, result.Days[1].Evening)
	assert.True(t, result.Days[2].Morning)
}

func TestQueryAvailabilityHoldBlocksSinglePart(t *testing.T) {
	resourceID := "res-1"
	svc := newTestAvailability(
		&resourceStoreStub{resources: map[string]*models.Resource{"res-1": testResource()}},
		&scheduleStoreStub{},
		&blockStoreStub{blocks: []models.BlockedPeriod{
			{ResourceID: &resourceID, OwnerID: "owner-1", StartDate: date(2026, 9, 2), EndDate: date(2026, 9, 2),
				Kind: models.BlockKindTemporaryHold, HoldToken: strPtr("tok-1"), Morning: true},
		}},
		&reservationStoreStub{},
	)

	result, err := svc.QueryAvailability(context.Background(), "res-1", date(2026, 9, 2), date(2026, 9, 2))
	require.NoError(t, err)
	assert.False(t, result.Days[0].Morning)
	assert.True(t, result.Days[0].Afternoon)
	assert.True(t, result.Days[0].Evening)
}

func TestQueryAvailabilityUnknownResource(t *testing.T) {
	svc := newTestAvailability(
		&resourceStoreStub{resources: map[string]*models.Resource{}},
		&scheduleStoreStub{}, &blockStoreStub{}, &reservationStoreStub{},
	)

	_, err := svc.QueryAvailability(context.Background(), "res-404", date(2026, 9, 1), date(2026, 9, 2))
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestQueryAvailabilityCacheRoundTrip(t *testing.T) {
	blocks := &blockStoreStub{}
	cache := newCacheStub()
	svc := NewAvailabilityService(
		&resourceStoreStub{resources: map[string]*models.Resource{"res-1": testResource()}},
		&scheduleStoreStub{}, blocks, &reservationStoreStub{},
		cache, nil, true, time.Minute, nil,
	)

	_, err := svc.QueryAvailability(context.Background(), "res-1", date(2026, 9, 1), date(2026, 9, 2))
	require.NoError(t, err)
	require.Equal(t, 1, cache.setCalls)
	require.Equal(t, 1, blocks.calls)

	result, err := svc.QueryAvailability(context.Background(), "res-1", date(2026, 9, 1), date(2026, 9, 2))
	require.NoError(t, err)
	assert.Equal(t, 1, blocks.calls, "second query should be served from cache")
	assert.Len(t, result.Days, 2)

	svc.InvalidateResource(context.Background(), "res-1")
	require.Len(t, cache.deleted, 1)
	assert.Equal(t, "availability:res-1:*", cache.deleted[0])
}

func TestCanBookRangeNeverUsesCache(t *testing.T) {
	blocks := &blockStoreStub{}
	cache := newCacheStub()
	svc := NewAvailabilityService(
		&resourceStoreStub{resources: map[string]*models.Resource{"res-1": testResource()}},
		&scheduleStoreStub{}, blocks, &reservationStoreStub{},
		cache, nil, true, time.Minute, nil,
	)

	for i := 0; i < 2; i++ {
		_, err := svc.CanBookRange(context.Background(), "res-1", date(2026, 9, 1), date(2026, 9, 2), nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, blocks.calls)
	assert.Zero(t, cache.setCalls)
}

func TestCanBookRangeCollectsConflictDates(t *testing.T) {
	resourceID := "res-1"
	svc := newTestAvailability(
		&resourceStoreStub{resources: map[string]*models.Resource{"res-1": testResource()}},
		&scheduleStoreStub{},
		&blockStoreStub{blocks: []models.BlockedPeriod{
			{ResourceID: &resourceID, OwnerID: "owner-1", StartDate: date(2026, 9, 2), EndDate: date(2026, 9, 3),
				Kind: models.BlockKindManual, AllDay: true},
		}},
		&reservationStoreStub{},
	)

	check, err := svc.CanBookRange(context.Background(), "res-1", date(2026, 9, 1), date(2026, 9, 4), nil)
	require.NoError(t, err)
	assert.False(t, check.Available)
	assert.Equal(t, []string{"2026-09-02", "2026-09-03"}, check.ConflictDates)
}

func TestCanBookRangePartScopedHoldDoesNotBlockOtherParts(t *testing.T) {
	resourceID := "res-1"
	svc := newTestAvailability(
		&resourceStoreStub{resources: map[string]*models.Resource{"res-1": testResource()}},
		&scheduleStoreStub{},
		&blockStoreStub{blocks: []models.BlockedPeriod{
			{ResourceID: &resourceID, OwnerID: "owner-1", StartDate: date(2026, 9, 2), EndDate: date(2026, 9, 2),
				Kind: models.BlockKindTemporaryHold, HoldToken: strPtr("tok-1"), Morning: true},
		}},
		&reservationStoreStub{},
	)

	check, err := svc.CanBookRange(context.Background(), "res-1", date(2026, 9, 2), date(2026, 9, 2),
		[]models.DayPart{models.DayPartEvening})
	require.NoError(t, err)
	assert.True(t, check.Available)

	check, err = svc.CanBookRange(context.Background(), "res-1", date(2026, 9, 2), date(2026, 9, 2),
		[]models.DayPart{models.DayPartMorning})
	require.NoError(t, err)
	assert.False(t, check.Available)
}

func TestCanBookRangeSourceFailureAborts(t *testing.T) {
	svc := newTestAvailability(
		&resourceStoreStub{resources: map[string]*models.Resource{"res-1": testResource()}},
		&scheduleStoreStub{}, &blockStoreStub{err: errors.New("connection reset")},
		&reservationStoreStub{},
	)

	_, err := svc.CanBookRange(context.Background(), "res-1", date(2026, 9, 1), date(2026, 9, 2), nil)
	require.Error(t, err)
}

func TestCanBookRangeRejectsInvertedRange(t *testing.T) {
	svc := newTestAvailability(
		&resourceStoreStub{resources: map[string]*models.Resource{"res-1": testResource()}},
		&scheduleStoreStub{}, &blockStoreStub{}, &reservationStoreStub{},
	)

	_, err := svc.CanBookRange(context.Background(), "res-1", date(2026, 9, 5), date(2026, 9, 1), nil)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestOwnerCalendarAggregatesResources(t *testing.T) {
	resources := map[string]*models.Resource{
		"res-1": {ID: "res-1", OwnerID: "owner-1", Title: "Drill", Active: true},
		"res-2": {ID: "res-2", OwnerID: "owner-1", Title: "Ladder", Active: true},
	}
	svc := newTestAvailability(
		&resourceStoreStub{resources: resources},
		&scheduleStoreStub{},
		&blockStoreStub{blocks: []models.BlockedPeriod{
			{OwnerID: "owner-1", StartDate: date(2026, 9, 2), EndDate: date(2026, 9, 2), Kind: models.BlockKindManual, AllDay: true},
		}},
		&reservationStoreStub{},
	)

	calendar, err := svc.OwnerCalendar(context.Background(), "owner-1", date(2026, 9, 1), date(2026, 9, 3))
	require.NoError(t, err)
	require.Len(t, calendar.Resources, 2)
	for _, lane := range calendar.Resources {
		require.Len(t, lane.Days, 3)
		assert.False(t, lane.Days[1].Morning, "owner-wide block should close every resource")
	}
}

type countingSweeper struct {
	calls atomic.Int64
}

func (s *countingSweeper) SweepExpired(ctx context.Context) (int64, error) {
	s.calls.Add(1)
	return 0, nil
}

func TestQueryAvailabilitySweepThrottled(t *testing.T) {
	svc := newTestAvailability(
		&resourceStoreStub{resources: map[string]*models.Resource{"res-1": testResource()}},
		&scheduleStoreStub{}, &blockStoreStub{}, &reservationStoreStub{},
	)
	sweeper := &countingSweeper{}
	svc.AttachSweeper(sweeper, time.Hour)

	for i := 0; i < 10; i++ {
		_, err := svc.QueryAvailability(context.Background(), "res-1", date(2026, 9, 1), date(2026, 9, 2))
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool { return sweeper.calls.Load() == 1 },
		time.Second, 10*time.Millisecond, "a query burst should elect exactly one sweep")

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(1), sweeper.calls.Load())
}

func TestParseDateRejectsGarbage(t *testing.T) {
	_, err := ParseDate("02-09-2026")
	require.Error(t, err)

	parsed, err := ParseDate("2026-09-02")
	require.NoError(t, err)
	assert.Equal(t, date(2026, 9, 2), parsed)
}
