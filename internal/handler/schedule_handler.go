package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rentloop/rentloop-api/internal/dto"
	"github.com/rentloop/rentloop-api/internal/models"
	appErrors "github.com/rentloop/rentloop-api/pkg/errors"
	"github.com/rentloop/rentloop-api/pkg/response"
)

type scheduleService interface {
	GetWeeklyPattern(ctx context.Context, resourceID string) ([]models.WeeklyAvailability, error)
	UpsertWeekly(ctx context.Context, resourceID string, dayOfWeek int, req dto.UpsertWeeklyRequest, actor *models.JWTClaims) (*models.WeeklyAvailability, error)
	UpsertException(ctx context.Context, resourceID, date string, req dto.UpsertExceptionRequest, actor *models.JWTClaims) (*models.AvailabilityException, error)
	DeleteException(ctx context.Context, resourceID, date string, actor *models.JWTClaims) error
	CreateBlock(ctx context.Context, req dto.CreateBlockRequest, actor *models.JWTClaims) (*models.BlockedPeriod, error)
	DeleteBlock(ctx context.Context, blockID string, actor *models.JWTClaims) error
}

// ScheduleHandler manages calendar configuration endpoints.
type ScheduleHandler struct {
	service scheduleService
}

// NewScheduleHandler builds a new handler.
func NewScheduleHandler(svc scheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// GetWeekly godoc
// @Summary Get the weekly pattern for a resource
// @Tags Schedules
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} response.Envelope
// @Router /resources/{id}/schedule/weekly [get]
func (h *ScheduleHandler) GetWeekly(c *gin.Context) {
	rows, err := h.service.GetWeeklyPattern(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// UpsertWeekly godoc
// @Summary Set the weekly pattern for one day of week
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Param dow path int true "Day of week (0 = Sunday)"
// @Param payload body dto.UpsertWeeklyRequest true "Pattern payload"
// @Success 200 {object} response.Envelope
// @Router /resources/{id}/schedule/weekly/{dow} [put]
func (h *ScheduleHandler) UpsertWeekly(c *gin.Context) {
	dow, err := strconv.Atoi(c.Param("dow"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "day of week must be an integer"))
		return
	}
	var req dto.UpsertWeeklyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid pattern payload"))
		return
	}
	row, err := h.service.UpsertWeekly(c.Request.Context(), c.Param("id"), dow, req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, row, nil)
}

// UpsertException godoc
// @Summary Override availability for one exact date
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param payload body dto.UpsertExceptionRequest true "Exception payload"
// @Success 200 {object} response.Envelope
// @Router /resources/{id}/schedule/exceptions/{date} [put]
func (h *ScheduleHandler) UpsertException(c *gin.Context) {
	var req dto.UpsertExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid exception payload"))
		return
	}
	row, err := h.service.UpsertException(c.Request.Context(), c.Param("id"), c.Param("date"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, row, nil)
}

// DeleteException godoc
// @Summary Remove the override for one exact date
// @Tags Schedules
// @Produce json
// @Param id path string true "Resource ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 204
// @Router /resources/{id}/schedule/exceptions/{date} [delete]
func (h *ScheduleHandler) DeleteException(c *gin.Context) {
	if err := h.service.DeleteException(c.Request.Context(), c.Param("id"), c.Param("date"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateBlock godoc
// @Summary Create a manual blocked period
// @Tags Blocks
// @Accept json
// @Produce json
// @Param payload body dto.CreateBlockRequest true "Block payload"
// @Success 201 {object} response.Envelope
// @Router /blocks [post]
func (h *ScheduleHandler) CreateBlock(c *gin.Context) {
	var req dto.CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid block payload"))
		return
	}
	block, err := h.service.CreateBlock(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, block)
}

// DeleteBlock godoc
// @Summary Delete a manual blocked period
// @Tags Blocks
// @Produce json
// @Param id path string true "Block ID"
// @Success 204
// @Router /blocks/{id} [delete]
func (h *ScheduleHandler) DeleteBlock(c *gin.Context) {
	if err := h.service.DeleteBlock(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
