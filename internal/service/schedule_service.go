package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rentloop/rentloop-api/internal/dto"
	"github.com/rentloop/rentloop-api/internal/models"
	appErrors "github.com/rentloop/rentloop-api/pkg/errors"
)

type scheduleWriteStore interface {
	GetWeeklyPattern(ctx context.Context, resourceID string) ([]models.WeeklyAvailability, error)
	UpsertWeekly(ctx context.Context, row *models.WeeklyAvailability) error
	UpsertException(ctx context.Context, row *models.AvailabilityException) error
	DeleteException(ctx context.Context, resourceID string, date time.Time) error
}

type blockWriteStore interface {
	Create(ctx context.Context, block *models.BlockedPeriod) error
	GetByID(ctx context.Context, id string) (*models.BlockedPeriod, error)
	Delete(ctx context.Context, ids ...string) error
}

type scheduleResourceStore interface {
	GetByID(ctx context.Context, id string) (*models.Resource, error)
}

var timeOfDayPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ScheduleService manages the owner-facing calendar configuration: weekly
// patterns, date exceptions, and manual blocks. Only resource owners and
// staff may write; temporary holds and shadows are never editable here.
type ScheduleService struct {
	schedules    scheduleWriteStore
	blocks       blockWriteStore
	resources    scheduleResourceStore
	availability reservationCacheInvalidator
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewScheduleService constructs the schedule management service.
func NewScheduleService(
	schedules scheduleWriteStore,
	blocks blockWriteStore,
	resources scheduleResourceStore,
	availability reservationCacheInvalidator,
	logger *zap.Logger,
) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		schedules:    schedules,
		blocks:       blocks,
		resources:    resources,
		availability: availability,
		validator:    validator.New(),
		logger:       logger,
	}
}

// GetWeeklyPattern returns the recurring pattern rows for a resource.
func (s *ScheduleService) GetWeeklyPattern(ctx context.Context, resourceID string) ([]models.WeeklyAvailability, error) {
	if _, err := s.requireResource(ctx, resourceID); err != nil {
		return nil, err
	}
	rows, err := s.schedules.GetWeeklyPattern(ctx, resourceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly pattern")
	}
	return rows, nil
}

// UpsertWeekly replaces the pattern for one day of week (0 = Sunday).
func (s *ScheduleService) UpsertWeekly(ctx context.Context, resourceID string, dayOfWeek int, req dto.UpsertWeeklyRequest, actor *models.JWTClaims) (*models.WeeklyAvailability, error) {
	resource, err := s.requireOwnedResource(ctx, resourceID, actor)
	if err != nil {
		return nil, err
	}
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "day_of_week must be between 0 and 6")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid weekly pattern payload")
	}
	if err := validateWindows(req.Windows); err != nil {
		return nil, err
	}

	row := &models.WeeklyAvailability{
		ResourceID: resource.ID,
		DayOfWeek:  dayOfWeek,
		Available:  req.Available,
	}
	if req.Available {
		assignSlots(row, req.Windows)
	}
	if err := s.schedules.UpsertWeekly(ctx, row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save weekly pattern")
	}

	s.invalidate(ctx, resource.ID)
	s.logger.Info("weekly pattern updated",
		zap.String("resource_id", resource.ID),
		zap.Int("day_of_week", dayOfWeek),
		zap.Bool("available", req.Available))
	return row, nil
}

// UpsertException overrides the pattern for one exact date.
func (s *ScheduleService) UpsertException(ctx context.Context, resourceID, date string, req dto.UpsertExceptionRequest, actor *models.JWTClaims) (*models.AvailabilityException, error) {
	resource, err := s.requireOwnedResource(ctx, resourceID, actor)
	if err != nil {
		return nil, err
	}
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	windows := []*string{
		req.MorningStart, req.MorningEnd,
		req.AfternoonStart, req.AfternoonEnd,
		req.EveningStart, req.EveningEnd,
	}
	for _, w := range windows {
		if w != nil && !timeOfDayPattern.MatchString(*w) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid time of day %q, expected HH:MM", *w))
		}
	}

	row := &models.AvailabilityException{
		ResourceID:     resource.ID,
		Date:           day,
		Morning:        req.Morning,
		Afternoon:      req.Afternoon,
		Evening:        req.Evening,
		MorningStart:   req.MorningStart,
		MorningEnd:     req.MorningEnd,
		AfternoonStart: req.AfternoonStart,
		AfternoonEnd:   req.AfternoonEnd,
		EveningStart:   req.EveningStart,
		EveningEnd:     req.EveningEnd,
	}
	if err := s.schedules.UpsertException(ctx, row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save exception")
	}

	s.invalidate(ctx, resource.ID)
	s.logger.Info("availability exception saved",
		zap.String("resource_id", resource.ID),
		zap.String("date", date))
	return row, nil
}

// DeleteException removes the override for one exact date. Removing an
// absent exception succeeds; the resulting state is the same.
func (s *ScheduleService) DeleteException(ctx context.Context, resourceID, date string, actor *models.JWTClaims) error {
	resource, err := s.requireOwnedResource(ctx, resourceID, actor)
	if err != nil {
		return err
	}
	day, err := ParseDate(date)
	if err != nil {
		return err
	}
	if err := s.schedules.DeleteException(ctx, resource.ID, day); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete exception")
	}
	s.invalidate(ctx, resource.ID)
	return nil
}

// CreateBlock creates a manual blocked period. A nil resource ID creates an
// owner-wide block spanning every resource of the calling owner.
func (s *ScheduleService) CreateBlock(ctx context.Context, req dto.CreateBlockRequest, actor *models.JWTClaims) (*models.BlockedPeriod, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid block payload")
	}

	from, err := ParseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	to, err := ParseDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date precedes start date")
	}

	ownerID := actor.UserID
	block := &models.BlockedPeriod{
		OwnerID:   ownerID,
		StartDate: from,
		EndDate:   to,
		Kind:      models.BlockKindManual,
		Reason:    req.Reason,
		AllDay:    req.AllDay,
		Morning:   req.Morning,
		Afternoon: req.Afternoon,
		Evening:   req.Evening,
	}
	if !block.AllDay && !block.Morning && !block.Afternoon && !block.Evening {
		block.AllDay = true
	}

	if req.ResourceID != nil {
		resource, err := s.requireResource(ctx, *req.ResourceID)
		if err != nil {
			return nil, err
		}
		if actor.Role != models.RoleAdmin && actor.Role != models.RoleSupport && resource.OwnerID != actor.UserID {
			return nil, appErrors.ErrForbidden
		}
		resourceID := resource.ID
		block.ResourceID = &resourceID
		block.OwnerID = resource.OwnerID
	}

	if err := s.blocks.Create(ctx, block); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create block")
	}

	if block.ResourceID != nil {
		s.invalidate(ctx, *block.ResourceID)
	}
	s.logger.Info("manual block created",
		zap.String("block_id", block.ID),
		zap.String("owner_id", block.OwnerID),
		zap.String("scope", string(block.Scope())))
	return block, nil
}

// DeleteBlock removes a manual block. Holds and shadows are managed by their
// own lifecycles and cannot be deleted through this path.
func (s *ScheduleService) DeleteBlock(ctx context.Context, blockID string, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	block, err := s.blocks.GetByID(ctx, blockID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load block")
	}
	if block == nil {
		return appErrors.ErrNotFound
	}
	if block.Kind != models.BlockKindManual {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("blocks of kind %s cannot be deleted directly", block.Kind))
	}
	if actor.Role != models.RoleAdmin && actor.Role != models.RoleSupport && block.OwnerID != actor.UserID {
		return appErrors.ErrForbidden
	}

	if err := s.blocks.Delete(ctx, block.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete block")
	}
	if block.ResourceID != nil {
		s.invalidate(ctx, *block.ResourceID)
	}
	s.logger.Info("manual block deleted", zap.String("block_id", block.ID))
	return nil
}

func (s *ScheduleService) requireResource(ctx context.Context, resourceID string) (*models.Resource, error) {
	resource, err := s.resources.GetByID(ctx, resourceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}
	if resource == nil {
		return nil, appErrors.ErrNotFound
	}
	return resource, nil
}

func (s *ScheduleService) requireOwnedResource(ctx context.Context, resourceID string, actor *models.JWTClaims) (*models.Resource, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	resource, err := s.requireResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin && actor.Role != models.RoleSupport && resource.OwnerID != actor.UserID {
		return nil, appErrors.ErrForbidden
	}
	return resource, nil
}

func (s *ScheduleService) invalidate(ctx context.Context, resourceID string) {
	if s.availability != nil {
		s.availability.InvalidateResource(ctx, resourceID)
	}
}

func validateWindows(windows []models.TimeWindow) error {
	for _, w := range windows {
		if !timeOfDayPattern.MatchString(w.Start) || !timeOfDayPattern.MatchString(w.End) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid time window %s-%s, expected HH:MM", w.Start, w.End))
		}
		if w.End <= w.Start {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("time window %s-%s must end after it starts", w.Start, w.End))
		}
	}
	return nil
}

func assignSlots(row *models.WeeklyAvailability, windows []models.TimeWindow) {
	slots := [][2]**string{
		{&row.Slot1Start, &row.Slot1End},
		{&row.Slot2Start, &row.Slot2End},
		{&row.Slot3Start, &row.Slot3End},
	}
	for i, w := range windows {
		if i >= len(slots) {
			break
		}
		start, end := w.Start, w.End
		*slots[i][0] = &start
		*slots[i][1] = &end
	}
}
