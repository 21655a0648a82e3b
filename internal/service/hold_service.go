package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rentloop/rentloop-api/internal/dto"
	"github.com/rentloop/rentloop-api/internal/models"
	"github.com/rentloop/rentloop-api/internal/repository"
	appErrors "github.com/rentloop/rentloop-api/pkg/errors"
)

type holdBlockStore interface {
	CreateHoldTx(ctx context.Context, hold *models.BlockedPeriod) error
	FindByHoldToken(ctx context.Context, token string) (*models.BlockedPeriod, error)
	Delete(ctx context.Context, ids ...string) error
	DeleteStaleHolds(ctx context.Context, olderThan time.Time) (int64, error)
}

type rangeChecker interface {
	CanBookRange(ctx context.Context, resourceID string, from, to time.Time, parts []models.DayPart) (*dto.RangeCheckResponse, error)
	InvalidateResource(ctx context.Context, resourceID string)
}

type holdResourceStore interface {
	GetByID(ctx context.Context, id string) (*models.Resource, error)
}

type reservationFinalizer interface {
	ConfirmFromPayment(ctx context.Context, reservationID string) (*models.Reservation, error)
}

// HoldService manages the lifecycle of temporary payment holds. The hold's
// existence in the block store is the lock: once written, any concurrent
// range check sees the range as occupied. No in-process state.
type HoldService struct {
	blocks       holdBlockStore
	resources    holdResourceStore
	availability rangeChecker
	reservations reservationFinalizer
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	ttl          time.Duration
}

// NewHoldService constructs the hold lifecycle manager.
func NewHoldService(
	blocks holdBlockStore,
	resources holdResourceStore,
	availability rangeChecker,
	reservations reservationFinalizer,
	metrics *MetricsService,
	ttl time.Duration,
	logger *zap.Logger,
) *HoldService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &HoldService{
		blocks:       blocks,
		resources:    resources,
		availability: availability,
		reservations: reservations,
		metrics:      metrics,
		validator:    validator.New(),
		logger:       logger,
		ttl:          ttl,
	}
}

// BeginHold opens a temporary hold for a reservation attempt entering the
// payment phase. The range check runs first; the insert re-checks overlap
// inside a transaction to narrow the read-to-write race window.
func (s *HoldService) BeginHold(ctx context.Context, req dto.BeginHoldRequest) (*dto.HoldResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid hold payload")
	}

	from, err := ParseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	to, err := ParseDate(req.EndDate)
	if err != nil {
		return nil, err
	}

	parts, err := parseDayParts(req.DayParts)
	if err != nil {
		return nil, err
	}

	resource, err := s.resources.GetByID(ctx, req.ResourceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}
	if resource == nil {
		return nil, appErrors.ErrNotFound
	}

	check, err := s.availability.CanBookRange(ctx, req.ResourceID, from, to, parts)
	if err != nil {
		return nil, err
	}
	if !check.Available {
		return nil, appErrors.Clone(appErrors.ErrRangeUnavailable,
			fmt.Sprintf("dates not available: %s", strings.Join(check.ConflictDates, ", ")))
	}

	resourceID := resource.ID
	token := req.Token
	hold := &models.BlockedPeriod{
		ResourceID: &resourceID,
		OwnerID:    resource.OwnerID,
		StartDate:  from,
		EndDate:    to,
		Kind:       models.BlockKindTemporaryHold,
		HoldToken:  &token,
	}
	applyPartFlags(hold, parts)

	if err := s.blocks.CreateHoldTx(ctx, hold); err != nil {
		if errors.Is(err, repository.ErrOverlap) {
			return nil, appErrors.Clone(appErrors.ErrRangeUnavailable, "another booking claimed the range first")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create hold")
	}

	s.metrics.RecordHoldCreated()
	s.availability.InvalidateResource(ctx, resource.ID)
	s.logger.Info("hold created",
		zap.String("resource_id", resource.ID),
		zap.String("token", req.Token),
		zap.String("from", req.StartDate),
		zap.String("to", req.EndDate))

	return &dto.HoldResponse{
		BlockID:   hold.ID,
		Token:     req.Token,
		ExpiresAt: hold.CreatedAt.Add(s.ttl),
	}, nil
}

// FinalizeHold resolves a hold on payment success: the matching reservation
// transitions to CONFIRMED and the hold is removed. Idempotent: a missing
// hold (already finalized, already swept, never created) is a no-op, not an
// error, because the payment callback cannot tell those apart.
func (s *HoldService) FinalizeHold(ctx context.Context, token, reservationID string) (bool, error) {
	hold, err := s.blocks.FindByHoldToken(ctx, token)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up hold")
	}
	if hold == nil {
		s.logger.Info("finalize: no matching hold", zap.String("token", token))
		return false, nil
	}

	if _, err := s.reservations.ConfirmFromPayment(ctx, reservationID); err != nil {
		return false, err
	}

	if err := s.blocks.Delete(ctx, hold.ID); err != nil {
		// The reservation is confirmed; a lingering hold is swept later.
		s.logger.Warn("finalize: hold cleanup failed", zap.String("token", token), zap.Error(err))
	}

	s.metrics.RecordHoldFinalized()
	if hold.ResourceID != nil {
		s.availability.InvalidateResource(ctx, *hold.ResourceID)
	}
	s.logger.Info("hold finalized", zap.String("token", token), zap.String("reservation_id", reservationID))
	return true, nil
}

// CancelHold removes a hold on payment failure or explicit cancellation.
// Idempotent like FinalizeHold.
func (s *HoldService) CancelHold(ctx context.Context, token string) (bool, error) {
	hold, err := s.blocks.FindByHoldToken(ctx, token)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up hold")
	}
	if hold == nil {
		s.logger.Info("cancel: no matching hold", zap.String("token", token))
		return false, nil
	}

	if err := s.blocks.Delete(ctx, hold.ID); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove hold")
	}

	s.metrics.RecordHoldCancelled()
	if hold.ResourceID != nil {
		s.availability.InvalidateResource(ctx, *hold.ResourceID)
	}
	s.logger.Info("hold cancelled", zap.String("token", token))
	return true, nil
}

// SweepExpired removes holds older than the staleness threshold. Best-effort
// cleanup: an unswept stale hold only causes a false "unavailable", never a
// false "available".
func (s *HoldService) SweepExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-s.ttl)
	swept, err := s.blocks.DeleteStaleHolds(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.metrics.RecordHoldsSwept(swept)
	if swept > 0 {
		s.logger.Info("stale holds swept", zap.Int64("count", swept))
	}
	return swept, nil
}

// RunSweeper loops the sweep until the context is cancelled.
func (s *HoldService) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepExpired(ctx); err != nil {
				s.logger.Warn("hold sweep failed", zap.Error(err))
			}
		}
	}
}

func parseDayParts(raw []string) ([]models.DayPart, error) {
	parts := make([]models.DayPart, 0, len(raw))
	for _, r := range raw {
		part := models.DayPart(strings.ToLower(strings.TrimSpace(r)))
		if !models.ValidDayPart(part) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day part %q", r))
		}
		parts = append(parts, part)
	}
	return parts, nil
}

func applyPartFlags(block *models.BlockedPeriod, parts []models.DayPart) {
	if len(parts) == 0 || len(parts) == len(models.AllDayParts()) {
		block.AllDay = true
		return
	}
	for _, part := range parts {
		switch part {
		case models.DayPartMorning:
			block.Morning = true
		case models.DayPartAfternoon:
			block.Afternoon = true
		case models.DayPartEvening:
			block.Evening = true
		}
	}
}
