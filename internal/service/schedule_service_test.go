package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentloop/rentloop-api/internal/dto"
	"github.com/rentloop/rentloop-api/internal/models"
	appErrors "github.com/rentloop/rentloop-api/pkg/errors"
)

type scheduleWriteStoreStub struct {
	weekly        []models.WeeklyAvailability
	upsertedRows  []*models.WeeklyAvailability
	upsertedExcs  []*models.AvailabilityException
	deletedDates  []time.Time
	weeklyErr     error
	upsertErr     error
	exceptionErr  error
	deleteExcErr  error
}

func (s *scheduleWriteStoreStub) GetWeeklyPattern(ctx context.Context, resourceID string) ([]models.WeeklyAvailability, error) {
	return s.weekly, s.weeklyErr
}

func (s *scheduleWriteStoreStub) UpsertWeekly(ctx context.Context, row *models.WeeklyAvailability) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upsertedRows = append(s.upsertedRows, row)
	return nil
}

func (s *scheduleWriteStoreStub) UpsertException(ctx context.Context, row *models.AvailabilityException) error {
	if s.exceptionErr != nil {
		return s.exceptionErr
	}
	s.upsertedExcs = append(s.upsertedExcs, row)
	return nil
}

func (s *scheduleWriteStoreStub) DeleteException(ctx context.Context, resourceID string, date time.Time) error {
	if s.deleteExcErr != nil {
		return s.deleteExcErr
	}
	s.deletedDates = append(s.deletedDates, date)
	return nil
}

type blockWriteStoreStub struct {
	created   []*models.BlockedPeriod
	createErr error
	existing  *models.BlockedPeriod
	getErr    error
	deleted   []string
	deleteErr error
}

func (s *blockWriteStoreStub) Create(ctx context.Context, block *models.BlockedPeriod) error {
	if s.createErr != nil {
		return s.createErr
	}
	block.ID = "block-1"
	s.created = append(s.created, block)
	return nil
}

func (s *blockWriteStoreStub) GetByID(ctx context.Context, id string) (*models.BlockedPeriod, error) {
	return s.existing, s.getErr
}

func (s *blockWriteStoreStub) Delete(ctx context.Context, ids ...string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, ids...)
	return nil
}

func ownerClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "owner-1", Role: models.RoleMember}
}

func newTestScheduleService(schedules *scheduleWriteStoreStub, blocks *blockWriteStoreStub) (*ScheduleService, *rangeCheckerStub) {
	invalidator := &rangeCheckerStub{}
	svc := NewScheduleService(schedules, blocks,
		&resourceStoreStub{resources: map[string]*models.Resource{"res-1": testResource()}},
		invalidator, nil)
	return svc, invalidator
}

func TestUpsertWeeklyStoresWindows(t *testing.T) {
	schedules := &scheduleWriteStoreStub{}
	svc, invalidator := newTestScheduleService(schedules, &blockWriteStoreStub{})

	row, err := svc.UpsertWeekly(context.Background(), "res-1", 1, dto.UpsertWeeklyRequest{
		Available: true,
		Windows: []models.TimeWindow{
			{Start: "08:00", End: "12:00"},
			{Start: "13:00", End: "17:00"},
		},
	}, ownerClaims())
	require.NoError(t, err)
	require.Len(t, schedules.upsertedRows, 1)
	assert.Equal(t, 1, row.DayOfWeek)
	require.NotNil(t, row.Slot1Start)
	assert.Equal(t, "08:00", *row.Slot1Start)
	require.NotNil(t, row.Slot2End)
	assert.Equal(t, "17:00", *row.Slot2End)
	assert.Nil(t, row.Slot3Start)
	assert.Equal(t, []string{"res-1"}, invalidator.invalidated)
}

func TestUpsertWeeklyRejectsBadDayOfWeek(t *testing.T) {
	svc, _ := newTestScheduleService(&scheduleWriteStoreStub{}, &blockWriteStoreStub{})

	for _, dow := range []int{-1, 7} {
		_, err := svc.UpsertWeekly(context.Background(), "res-1", dow, dto.UpsertWeeklyRequest{Available: true}, ownerClaims())
		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	}
}

func TestUpsertWeeklyRejectsInvertedWindow(t *testing.T) {
	svc, _ := newTestScheduleService(&scheduleWriteStoreStub{}, &blockWriteStoreStub{})

	_, err := svc.UpsertWeekly(context.Background(), "res-1", 2, dto.UpsertWeeklyRequest{
		Available: true,
		Windows:   []models.TimeWindow{{Start: "14:00", End: "09:00"}},
	}, ownerClaims())
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestUpsertWeeklyRejectsNonOwner(t *testing.T) {
	svc, _ := newTestScheduleService(&scheduleWriteStoreStub{}, &blockWriteStoreStub{})

	_, err := svc.UpsertWeekly(context.Background(), "res-1", 2, dto.UpsertWeeklyRequest{Available: true},
		&models.JWTClaims{UserID: "stranger", Role: models.RoleMember})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestUpsertExceptionValidatesTimes(t *testing.T) {
	schedules := &scheduleWriteStoreStub{}
	svc, _ := newTestScheduleService(schedules, &blockWriteStoreStub{})

	bad := "25:99"
	_, err := svc.UpsertException(context.Background(), "res-1", "2026-09-05",
		dto.UpsertExceptionRequest{Morning: true, MorningStart: &bad}, ownerClaims())
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)

	good := "09:30"
	row, err := svc.UpsertException(context.Background(), "res-1", "2026-09-05",
		dto.UpsertExceptionRequest{Morning: true, MorningStart: &good}, ownerClaims())
	require.NoError(t, err)
	assert.True(t, row.Morning)
	assert.Equal(t, date(2026, 9, 5), row.Date)
}

func TestDeleteExceptionIdempotent(t *testing.T) {
	schedules := &scheduleWriteStoreStub{}
	svc, invalidator := newTestScheduleService(schedules, &blockWriteStoreStub{})

	require.NoError(t, svc.DeleteException(context.Background(), "res-1", "2026-09-05", ownerClaims()))
	require.Len(t, schedules.deletedDates, 1)
	assert.Equal(t, []string{"res-1"}, invalidator.invalidated)
}

func TestCreateBlockOwnerWide(t *testing.T) {
	blocks := &blockWriteStoreStub{}
	svc, _ := newTestScheduleService(&scheduleWriteStoreStub{}, blocks)

	block, err := svc.CreateBlock(context.Background(), dto.CreateBlockRequest{
		StartDate: "2026-09-10",
		EndDate:   "2026-09-12",
	}, ownerClaims())
	require.NoError(t, err)
	assert.Nil(t, block.ResourceID)
	assert.Equal(t, "owner-1", block.OwnerID)
	assert.Equal(t, models.BlockKindManual, block.Kind)
	assert.True(t, block.AllDay, "no part flags means all day")
	assert.Equal(t, models.ScopeOwner, block.Scope())
}

func TestCreateBlockResourceScopedChecksOwnership(t *testing.T) {
	resourceID := "res-1"
	svc, invalidator := newTestScheduleService(&scheduleWriteStoreStub{}, &blockWriteStoreStub{})

	_, err := svc.CreateBlock(context.Background(), dto.CreateBlockRequest{
		ResourceID: &resourceID,
		StartDate:  "2026-09-10",
		EndDate:    "2026-09-12",
	}, &models.JWTClaims{UserID: "stranger", Role: models.RoleMember})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)

	block, err := svc.CreateBlock(context.Background(), dto.CreateBlockRequest{
		ResourceID: &resourceID,
		StartDate:  "2026-09-10",
		EndDate:    "2026-09-12",
		Morning:    true,
	}, ownerClaims())
	require.NoError(t, err)
	require.NotNil(t, block.ResourceID)
	assert.False(t, block.AllDay)
	assert.True(t, block.Morning)
	assert.Equal(t, []string{"res-1"}, invalidator.invalidated)
}

func TestDeleteBlockRefusesNonManualKinds(t *testing.T) {
	token := "tok-1"
	blocks := &blockWriteStoreStub{existing: &models.BlockedPeriod{
		ID: "block-1", OwnerID: "owner-1", Kind: models.BlockKindTemporaryHold, HoldToken: &token,
	}}
	svc, _ := newTestScheduleService(&scheduleWriteStoreStub{}, blocks)

	err := svc.DeleteBlock(context.Background(), "block-1", ownerClaims())
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Empty(t, blocks.deleted)
}

func TestDeleteBlockOwnerOnly(t *testing.T) {
	blocks := &blockWriteStoreStub{existing: &models.BlockedPeriod{
		ID: "block-1", OwnerID: "owner-1", Kind: models.BlockKindManual,
	}}
	svc, _ := newTestScheduleService(&scheduleWriteStoreStub{}, blocks)

	err := svc.DeleteBlock(context.Background(), "block-1", &models.JWTClaims{UserID: "stranger", Role: models.RoleMember})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)

	require.NoError(t, svc.DeleteBlock(context.Background(), "block-1", ownerClaims()))
	assert.Equal(t, []string{"block-1"}, blocks.deleted)
}

func TestDeleteBlockMissing(t *testing.T) {
	svc, _ := newTestScheduleService(&scheduleWriteStoreStub{}, &blockWriteStoreStub{})

	err := svc.DeleteBlock(context.Background(), "block-404", ownerClaims())
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
