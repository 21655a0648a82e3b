package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/rentloop/rentloop-api/internal/dto"
	"github.com/rentloop/rentloop-api/internal/models"
	appErrors "github.com/rentloop/rentloop-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type resourceStore interface {
	GetByID(ctx context.Context, id string) (*models.Resource, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Resource, error)
}

type scheduleStore interface {
	GetWeeklyPattern(ctx context.Context, resourceID string) ([]models.WeeklyAvailability, error)
	GetExceptions(ctx context.Context, resourceID string, from, to time.Time) ([]models.AvailabilityException, error)
}

type blockStore interface {
	ListOverlapping(ctx context.Context, resourceID, ownerID string, from, to time.Time) ([]models.BlockedPeriod, error)
}

type reservationStore interface {
	ListOverlapping(ctx context.Context, resourceID string, from, to time.Time, statuses ...models.ReservationStatus) ([]models.Reservation, error)
}

type availabilityCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type holdSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// AvailabilityService merges the four sources of truth (weekly patterns,
// date exceptions, occupying reservations, blocked periods) into per-day,
// per-day-part verdicts. Stateless per call: every invocation reads the
// store, so the answer is valid across process instances.
type AvailabilityService struct {
	resources    resourceStore
	schedules    scheduleStore
	blocks       blockStore
	reservations reservationStore
	cache        availabilityCache
	metrics      *MetricsService
	logger       *zap.Logger

	cacheEnabled bool
	cacheTTL     time.Duration

	sweeper       holdSweeper
	sweepInterval time.Duration
	lastSweep     atomic.Int64
}

// NewAvailabilityService constructs the resolver.
func NewAvailabilityService(
	resources resourceStore,
	schedules scheduleStore,
	blocks blockStore,
	reservations reservationStore,
	cache availabilityCache,
	metrics *MetricsService,
	cacheEnabled bool,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &AvailabilityService{
		resources:    resources,
		schedules:    schedules,
		blocks:       blocks,
		reservations: reservations,
		cache:        cache,
		metrics:      metrics,
		logger:       logger,
		cacheEnabled: cacheEnabled,
		cacheTTL:     cacheTTL,
	}
}

// AttachSweeper enables the opportunistic stale-hold sweep on the query path.
// At most one sweep runs per interval no matter how many queries arrive; a
// non-positive interval uses one minute.
func (s *AvailabilityService) AttachSweeper(sweeper holdSweeper, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	s.sweeper = sweeper
	s.sweepInterval = interval
}

// QueryAvailability resolves the merged calendar view for a resource.
func (s *AvailabilityService) QueryAvailability(ctx context.Context, resourceID string, from, to time.Time) (*dto.AvailabilityResponse, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveAvailabilityQuery(time.Since(start)) }()

	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	s.sweepOpportunistically()

	resource, err := s.resources.GetByID(ctx, resourceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}
	if resource == nil {
		return nil, appErrors.ErrNotFound
	}

	cacheKey := fmt.Sprintf("availability:%s:%s:%s", resourceID, from.Format(dateLayout), to.Format(dateLayout))
	if s.cacheEnabled && s.cache != nil {
		var cached dto.AvailabilityResponse
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.metrics.RecordCacheLookup(true)
			return &cached, nil
		}
		s.metrics.RecordCacheLookup(false)
	}

	src, err := s.fetchSources(ctx, resource, from, to)
	if err != nil {
		return nil, err
	}

	result := &dto.AvailabilityResponse{
		ResourceID:     resource.ID,
		From:           from.Format(dateLayout),
		To:             to.Format(dateLayout),
		Days:           s.resolveDays(resource, from, to, src),
		BlockedPeriods: src.blocks,
		Exceptions:     src.exceptions,
		WeeklyPattern:  src.weekly,
	}

	if s.cacheEnabled && s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, result, s.cacheTTL); err != nil {
			s.logger.Warn("availability cache set failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	return result, nil
}

// CanBookRange answers whether every date in the range is open for every
// requested day part. It always resolves against the live store, never the
// cache: this check is the final gate before a hold is written.
func (s *AvailabilityService) CanBookRange(ctx context.Context, resourceID string, from, to time.Time, parts []models.DayPart) (*dto.RangeCheckResponse, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		parts = models.AllDayParts()
	}
	for _, p := range parts {
		if !models.ValidDayPart(p) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day part %q", p))
		}
	}

	resource, err := s.resources.GetByID(ctx, resourceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}
	if resource == nil {
		return nil, appErrors.ErrNotFound
	}

	src, err := s.fetchSources(ctx, resource, from, to)
	if err != nil {
		return nil, err
	}

	var conflicts []string
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		for _, part := range parts {
			if !s.resolvePart(resource, day, part, src) {
				conflicts = append(conflicts, day.Format(dateLayout))
				break
			}
		}
	}

	return &dto.RangeCheckResponse{Available: len(conflicts) == 0, ConflictDates: conflicts}, nil
}

// OwnerCalendar aggregates availability across every resource of an owner.
// Owner-wide blocks and confirmed shadows show up on each resource's lane.
func (s *AvailabilityService) OwnerCalendar(ctx context.Context, ownerID string, from, to time.Time) (*dto.OwnerCalendarResponse, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	resources, err := s.resources.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list owner resources")
	}

	calendar := &dto.OwnerCalendarResponse{
		OwnerID:   ownerID,
		From:      from.Format(dateLayout),
		To:        to.Format(dateLayout),
		Resources: make([]dto.ResourceCalendar, 0, len(resources)),
	}

	for i := range resources {
		resource := resources[i]
		src, err := s.fetchSources(ctx, &resource, from, to)
		if err != nil {
			return nil, err
		}
		calendar.Resources = append(calendar.Resources, dto.ResourceCalendar{
			ResourceID: resource.ID,
			Title:      resource.Title,
			Days:       s.resolveDays(&resource, from, to, src),
		})
	}

	return calendar, nil
}

// InvalidateResource drops cached availability for a resource after a
// schedule, block, or reservation write.
func (s *AvailabilityService) InvalidateResource(ctx context.Context, resourceID string) {
	if !s.cacheEnabled || s.cache == nil {
		return
	}
	pattern := fmt.Sprintf("availability:%s:*", resourceID)
	if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("availability cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}

type sourceSet struct {
	reservations []models.Reservation
	exceptions   []models.AvailabilityException
	weekly       []models.WeeklyAvailability
	blocks       []models.BlockedPeriod
}

// fetchSources loads the four sources in parallel. Any failure aborts the
// whole query: a missing source must never silently read as "available".
func (s *AvailabilityService) fetchSources(ctx context.Context, resource *models.Resource, from, to time.Time) (*sourceSet, error) {
	var (
		src      sourceSet
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)
	capture := func(err error) {
		if err == nil {
			return
		}
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	wg.Add(4)
	go func() {
		defer wg.Done()
		reservations, err := s.reservations.ListOverlapping(ctx, resource.ID, from, to,
			models.ReservationConfirmed, models.ReservationActive)
		capture(err)
		src.reservations = reservations
	}()
	go func() {
		defer wg.Done()
		exceptions, err := s.schedules.GetExceptions(ctx, resource.ID, from, to)
		capture(err)
		src.exceptions = exceptions
	}()
	go func() {
		defer wg.Done()
		weekly, err := s.schedules.GetWeeklyPattern(ctx, resource.ID)
		capture(err)
		src.weekly = weekly
	}()
	go func() {
		defer wg.Done()
		blocks, err := s.blocks.ListOverlapping(ctx, resource.ID, resource.OwnerID, from, to)
		capture(err)
		src.blocks = blocks
	}()
	wg.Wait()

	if firstErr != nil {
		return nil, appErrors.Wrap(firstErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "availability sources unavailable")
	}
	return &src, nil
}

func (s *AvailabilityService) resolveDays(resource *models.Resource, from, to time.Time, src *sourceSet) []dto.DayAvailability {
	var days []dto.DayAvailability
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		days = append(days, dto.DayAvailability{
			Date:      day.Format(dateLayout),
			Morning:   s.resolvePart(resource, day, models.DayPartMorning, src),
			Afternoon: s.resolvePart(resource, day, models.DayPartAfternoon, src),
			Evening:   s.resolvePart(resource, day, models.DayPartEvening, src),
		})
	}
	return days
}

// resolvePart applies the precedence order: occupancy beats exceptions beats
// the weekly default.
func (s *AvailabilityService) resolvePart(resource *models.Resource, day time.Time, part models.DayPart, src *sourceSet) bool {
	for _, reservation := range src.reservations {
		if coversDay(reservation.StartDate, reservation.EndDate, day) && reservation.OccupiesPart(day, part) {
			return false
		}
	}
	for _, block := range src.blocks {
		if block.AppliesTo(resource.ID, resource.OwnerID) && block.Covers(day, part) {
			return false
		}
	}
	for _, exception := range src.exceptions {
		if sameDate(exception.Date, day) {
			return exception.Open(part)
		}
	}
	for _, weekly := range src.weekly {
		if weekly.DayOfWeek == int(day.Weekday()) {
			return weekly.Available
		}
	}
	// No pattern configured for this weekday: open by default.
	return true
}

func coversDay(start, end, day time.Time) bool {
	d := day.Truncate(24 * time.Hour)
	return !d.Before(start.Truncate(24*time.Hour)) && !d.After(end.Truncate(24*time.Hour))
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (s *AvailabilityService) sweepOpportunistically() {
	if s.sweeper == nil {
		return
	}
	now := time.Now().UnixNano()
	last := s.lastSweep.Load()
	if now-last < int64(s.sweepInterval) {
		return
	}
	// CAS so a burst of concurrent queries elects a single sweeper.
	if !s.lastSweep.CompareAndSwap(last, now) {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := s.sweeper.SweepExpired(ctx); err != nil {
			s.logger.Warn("opportunistic hold sweep failed", zap.Error(err))
		}
	}()
}

func validateRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return appErrors.Clone(appErrors.ErrValidation, "date range is required")
	}
	if to.Before(from) {
		return appErrors.Clone(appErrors.ErrValidation, "end date precedes start date")
	}
	return nil
}

// ParseDate parses the wire date format used across the engine's API.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", raw))
	}
	return t.UTC(), nil
}
