package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rentloop/rentloop-api/internal/dto"
	"github.com/rentloop/rentloop-api/internal/models"
	appErrors "github.com/rentloop/rentloop-api/pkg/errors"
	"github.com/rentloop/rentloop-api/pkg/response"
)

type reservationService interface {
	Create(ctx context.Context, req dto.CreateReservationRequest, actor *models.JWTClaims) (*models.Reservation, error)
	Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.Reservation, error)
	Transition(ctx context.Context, id string, req dto.TransitionReservationRequest, actor *models.JWTClaims) (*models.Reservation, error)
}

// ReservationHandler exposes reservation lifecycle endpoints.
type ReservationHandler struct {
	service reservationService
}

// NewReservationHandler builds a new handler.
func NewReservationHandler(svc reservationService) *ReservationHandler {
	return &ReservationHandler{service: svc}
}

// Create godoc
// @Summary Open a reservation attempt
// @Tags Reservations
// @Accept json
// @Produce json
// @Param payload body dto.CreateReservationRequest true "Reservation payload"
// @Success 201 {object} response.Envelope
// @Router /reservations [post]
func (h *ReservationHandler) Create(c *gin.Context) {
	var req dto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reservation payload"))
		return
	}
	reservation, err := h.service.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, reservation)
}

// Get godoc
// @Summary Get a reservation
// @Tags Reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Envelope
// @Router /reservations/{id} [get]
func (h *ReservationHandler) Get(c *gin.Context) {
	reservation, err := h.service.Get(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reservation, nil)
}

// Transition godoc
// @Summary Drive a reservation status change
// @Tags Reservations
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Param payload body dto.TransitionReservationRequest true "Transition payload"
// @Success 200 {object} response.Envelope
// @Router /reservations/{id}/status [post]
func (h *ReservationHandler) Transition(c *gin.Context) {
	var req dto.TransitionReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid transition payload"))
		return
	}
	reservation, err := h.service.Transition(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reservation, nil)
}
