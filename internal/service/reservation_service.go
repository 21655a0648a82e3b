package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rentloop/rentloop-api/internal/dto"
	"github.com/rentloop/rentloop-api/internal/models"
	"github.com/rentloop/rentloop-api/internal/repository"
	appErrors "github.com/rentloop/rentloop-api/pkg/errors"
)

type reservationWriteStore interface {
	GetByID(ctx context.Context, id string) (*models.Reservation, error)
	Create(ctx context.Context, reservation *models.Reservation) error
	UpdateStatus(ctx context.Context, params repository.UpdateReservationStatusParams) error
}

type shadowBlockStore interface {
	Create(ctx context.Context, block *models.BlockedPeriod) error
	DeleteShadowForReservation(ctx context.Context, reservationID string) error
}

type reservationResourceStore interface {
	GetByID(ctx context.Context, id string) (*models.Resource, error)
}

type sideEffectNotifier interface {
	NotifyActor(actorID, message, link string)
	SendEmail(actorID, subject, body string)
}

type reservationCacheInvalidator interface {
	InvalidateResource(ctx context.Context, resourceID string)
}

// ReservationService drives the reservation status state machine and its
// transition side effects.
type ReservationService struct {
	repo         reservationWriteStore
	blocks       shadowBlockStore
	resources    reservationResourceStore
	notifier     sideEffectNotifier
	availability reservationCacheInvalidator
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	writeShadows bool
}

// NewReservationService constructs the state machine service.
func NewReservationService(
	repo reservationWriteStore,
	blocks shadowBlockStore,
	resources reservationResourceStore,
	notifier sideEffectNotifier,
	availability reservationCacheInvalidator,
	metrics *MetricsService,
	writeShadows bool,
	logger *zap.Logger,
) *ReservationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReservationService{
		repo:         repo,
		blocks:       blocks,
		resources:    resources,
		notifier:     notifier,
		availability: availability,
		metrics:      metrics,
		validator:    validator.New(),
		logger:       logger,
		writeShadows: writeShadows,
	}
}

// Create opens a reservation attempt in PENDING for the calling renter.
func (s *ReservationService) Create(ctx context.Context, req dto.CreateReservationRequest, actor *models.JWTClaims) (*models.Reservation, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reservation payload")
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

	resource, err := s.resources.GetByID(ctx, req.ResourceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}
	if resource == nil {
		return nil, appErrors.ErrNotFound
	}
	if resource.OwnerID == actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "owners cannot rent their own resources")
	}

	reservation := &models.Reservation{
		ResourceID:   resource.ID,
		RenterID:     actor.UserID,
		LessorID:     resource.OwnerID,
		StartDate:    from,
		EndDate:      to,
		PickupTime:   req.PickupTime,
		ReturnTime:   req.ReturnTime,
		TotalCents:   req.TotalCents,
		DepositCents: req.DepositCents,
		Status:       models.ReservationPending,
		Notes:        req.Notes,
	}
	if err := s.repo.Create(ctx, reservation); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create reservation")
	}

	s.logger.Info("reservation created",
		zap.String("reservation_id", reservation.ID),
		zap.String("resource_id", reservation.ResourceID),
		zap.String("renter_id", reservation.RenterID))
	return reservation, nil
}

// Get loads a reservation visible to the calling actor.
func (s *ReservationService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.Reservation, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	reservation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reservation")
	}
	if reservation == nil {
		return nil, appErrors.ErrNotFound
	}
	switch {
	case actor.Role == models.RoleAdmin, actor.Role == models.RoleSupport:
	case actor.UserID == reservation.RenterID, actor.UserID == reservation.LessorID:
	default:
		return nil, appErrors.ErrForbidden
	}
	return reservation, nil
}

// Transition applies an actor-driven status change. Only the lessor, an
// admin, or a support actor may drive transitions; renters go through the
// separate request/approval path.
func (s *ReservationService) Transition(ctx context.Context, id string, req dto.TransitionReservationRequest, actor *models.JWTClaims) (*models.Reservation, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid transition payload")
	}

	reservation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reservation")
	}
	if reservation == nil {
		return nil, appErrors.ErrNotFound
	}

	switch {
	case actor.Role == models.RoleAdmin, actor.Role == models.RoleSupport:
	case actor.UserID == reservation.LessorID:
	default:
		return nil, appErrors.ErrForbidden
	}

	target := models.ReservationStatus(req.Status)
	if !target.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", req.Status))
	}

	var actualReturn *time.Time
	if req.ActualReturnDate != nil {
		parsed, err := ParseDate(*req.ActualReturnDate)
		if err != nil {
			return nil, err
		}
		actualReturn = &parsed
	}

	return s.applyTransition(ctx, reservation, target, transitionEffects{
		initiatorID:        actor.UserID,
		note:               req.Note,
		cancellationReason: req.CancellationReason,
		actualReturnDate:   actualReturn,
	})
}

// ConfirmFromPayment is the system-driven PENDING -> CONFIRMED edge taken by
// hold finalization. It bypasses actor authorization; the payment provider's
// callback is the authority.
func (s *ReservationService) ConfirmFromPayment(ctx context.Context, reservationID string) (*models.Reservation, error) {
	reservation, err := s.repo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reservation")
	}
	if reservation == nil {
		return nil, appErrors.ErrNotFound
	}
	return s.applyTransition(ctx, reservation, models.ReservationConfirmed, transitionEffects{})
}

type transitionEffects struct {
	initiatorID        string
	note               *string
	cancellationReason *string
	actualReturnDate   *time.Time
}

func (s *ReservationService) applyTransition(ctx context.Context, reservation *models.Reservation, target models.ReservationStatus, effects transitionEffects) (*models.Reservation, error) {
	from := reservation.Status
	if !from.CanTransitionTo(target) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("cannot transition reservation from %s to %s", from, target))
	}

	now := time.Now().UTC()
	params := repository.UpdateReservationStatusParams{
		ID:                 reservation.ID,
		Status:             target,
		CancellationReason: reservation.CancellationReason,
		CancellationDate:   reservation.CancellationDate,
		ActualReturnDate:   reservation.ActualReturnDate,
		Notes:              effects.note,
	}

	switch target {
	case models.ReservationCancelled:
		params.CancellationDate = &now
		params.CancellationReason = effects.cancellationReason
	case models.ReservationCompleted:
		if effects.actualReturnDate != nil {
			params.ActualReturnDate = effects.actualReturnDate
		} else if params.ActualReturnDate == nil {
			params.ActualReturnDate = &now
		}
	}

	// Reactivation out of CANCELLED clears the cancellation bookkeeping.
	if from == models.ReservationCancelled {
		params.CancellationReason = nil
		params.CancellationDate = nil
	}

	if err := s.repo.UpdateStatus(ctx, params); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update reservation status")
	}

	reservation.Status = target
	reservation.CancellationReason = params.CancellationReason
	reservation.CancellationDate = params.CancellationDate
	reservation.ActualReturnDate = params.ActualReturnDate
	if effects.note != nil {
		reservation.Notes = effects.note
	}

	s.metrics.RecordTransition(string(from), string(target))
	s.syncShadowBlock(ctx, reservation, from, target)
	if s.availability != nil {
		s.availability.InvalidateResource(ctx, reservation.ResourceID)
	}
	s.emitSideEffects(reservation, from, target, effects.initiatorID)

	s.logger.Info("reservation transitioned",
		zap.String("reservation_id", reservation.ID),
		zap.String("from", string(from)),
		zap.String("to", string(target)))
	return reservation, nil
}

// syncShadowBlock keeps the confirmed-shadow block in step with occupancy.
// Shadow failures are logged and swallowed: the reservation row itself is the
// source of truth for the resolver, the shadow only feeds the owner calendar.
func (s *ReservationService) syncShadowBlock(ctx context.Context, reservation *models.Reservation, from, target models.ReservationStatus) {
	if !s.writeShadows || s.blocks == nil {
		return
	}

	wasOccupying := from == models.ReservationConfirmed || from == models.ReservationActive
	nowOccupying := reservation.Occupying()

	switch {
	case nowOccupying && !wasOccupying:
		resourceID := reservation.ResourceID
		reservationID := reservation.ID
		shadow := &models.BlockedPeriod{
			ResourceID:    &resourceID,
			OwnerID:       reservation.LessorID,
			StartDate:     reservation.StartDate,
			EndDate:       reservation.EndDate,
			Kind:          models.BlockKindConfirmedShadow,
			ReservationID: &reservationID,
			AllDay:        true,
		}
		if err := s.blocks.Create(ctx, shadow); err != nil {
			s.logger.Warn("shadow block create failed", zap.String("reservation_id", reservation.ID), zap.Error(err))
		}
	case wasOccupying && !nowOccupying:
		if err := s.blocks.DeleteShadowForReservation(ctx, reservation.ID); err != nil {
			s.logger.Warn("shadow block delete failed", zap.String("reservation_id", reservation.ID), zap.Error(err))
		}
	}
}

// emitSideEffects notifies the counterpart of the actor who drove the change
// and, for CONFIRMED and CANCELLED, sends email. Fire and forget.
func (s *ReservationService) emitSideEffects(reservation *models.Reservation, from, target models.ReservationStatus, initiatorID string) {
	if s.notifier == nil {
		return
	}

	recipient := reservation.RenterID
	if initiatorID == reservation.RenterID {
		recipient = reservation.LessorID
	}

	message := fmt.Sprintf("Reservation %s moved from %s to %s", reservation.ID, from, target)
	link := fmt.Sprintf("/reservations/%s", reservation.ID)
	s.notifier.NotifyActor(recipient, message, link)

	switch target {
	case models.ReservationConfirmed:
		s.notifier.SendEmail(recipient, "Reservation confirmed", message)
	case models.ReservationCancelled:
		s.notifier.SendEmail(recipient, "Reservation cancelled", message)
	}
}
