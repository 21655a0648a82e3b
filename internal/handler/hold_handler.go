package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rentloop/rentloop-api/internal/dto"
	appErrors "github.com/rentloop/rentloop-api/pkg/errors"
	"github.com/rentloop/rentloop-api/pkg/response"
)

type holdService interface {
	BeginHold(ctx context.Context, req dto.BeginHoldRequest) (*dto.HoldResponse, error)
	FinalizeHold(ctx context.Context, token, reservationID string) (bool, error)
	CancelHold(ctx context.Context, token string) (bool, error)
}

// HoldHandler exposes the payment-hold lifecycle. Finalize and cancel are
// the payment provider's callback surface and must stay idempotent.
type HoldHandler struct {
	service holdService
}

// NewHoldHandler builds a new handler.
func NewHoldHandler(svc holdService) *HoldHandler {
	return &HoldHandler{service: svc}
}

// Begin godoc
// @Summary Open a temporary hold for a payment attempt
// @Tags Holds
// @Accept json
// @Produce json
// @Param payload body dto.BeginHoldRequest true "Hold payload"
// @Success 201 {object} response.Envelope
// @Router /holds [post]
func (h *HoldHandler) Begin(c *gin.Context) {
	var req dto.BeginHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid hold payload"))
		return
	}
	hold, err := h.service.BeginHold(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, hold)
}

// Finalize godoc
// @Summary Resolve a hold after payment success
// @Tags Holds
// @Accept json
// @Produce json
// @Param token path string true "Hold token"
// @Param payload body dto.FinalizeHoldRequest true "Finalize payload"
// @Success 200 {object} response.Envelope
// @Router /holds/{token}/finalize [post]
func (h *HoldHandler) Finalize(c *gin.Context) {
	var req dto.FinalizeHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid finalize payload"))
		return
	}
	resolved, err := h.service.FinalizeHold(c.Request.Context(), c.Param("token"), req.ReservationID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.HoldOutcomeResponse{Resolved: resolved}, nil)
}

// Cancel godoc
// @Summary Remove a hold after payment failure or abandonment
// @Tags Holds
// @Produce json
// @Param token path string true "Hold token"
// @Success 200 {object} response.Envelope
// @Router /holds/{token}/cancel [post]
func (h *HoldHandler) Cancel(c *gin.Context) {
	resolved, err := h.service.CancelHold(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.HoldOutcomeResponse{Resolved: resolved}, nil)
}
