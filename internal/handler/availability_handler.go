package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rentloop/rentloop-api/internal/dto"
	"github.com/rentloop/rentloop-api/internal/models"
	"github.com/rentloop/rentloop-api/internal/service"
	appErrors "github.com/rentloop/rentloop-api/pkg/errors"
	"github.com/rentloop/rentloop-api/pkg/response"
)

type availabilityQueryService interface {
	QueryAvailability(ctx context.Context, resourceID string, from, to time.Time) (*dto.AvailabilityResponse, error)
	CanBookRange(ctx context.Context, resourceID string, from, to time.Time, parts []models.DayPart) (*dto.RangeCheckResponse, error)
	OwnerCalendar(ctx context.Context, ownerID string, from, to time.Time) (*dto.OwnerCalendarResponse, error)
}

// AvailabilityHandler exposes the resolver's read endpoints.
type AvailabilityHandler struct {
	service availabilityQueryService
}

// NewAvailabilityHandler builds a new handler.
func NewAvailabilityHandler(svc availabilityQueryService) *AvailabilityHandler {
	return &AvailabilityHandler{service: svc}
}

// Query godoc
// @Summary Resolve availability for a resource
// @Tags Availability
// @Produce json
// @Param id path string true "Resource ID"
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /resources/{id}/availability [get]
func (h *AvailabilityHandler) Query(c *gin.Context) {
	from, to, err := rangeFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.QueryAvailability(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Check godoc
// @Summary Check whether an exact range can be booked
// @Tags Availability
// @Produce json
// @Param id path string true "Resource ID"
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Param parts query string false "Comma-separated day parts (defaults to all)"
// @Success 200 {object} response.Envelope
// @Router /resources/{id}/availability/check [get]
func (h *AvailabilityHandler) Check(c *gin.Context) {
	from, to, err := rangeFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var parts []models.DayPart
	if raw := c.Query("parts"); raw != "" {
		for _, p := range strings.Split(raw, ",") {
			parts = append(parts, models.DayPart(strings.ToLower(strings.TrimSpace(p))))
		}
	}
	result, err := h.service.CanBookRange(c.Request.Context(), c.Param("id"), from, to, parts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// OwnerCalendar godoc
// @Summary Aggregated calendar across the caller's resources
// @Tags Availability
// @Produce json
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /owners/me/calendar [get]
func (h *AvailabilityHandler) OwnerCalendar(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	from, to, err := rangeFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.OwnerCalendar(c.Request.Context(), claims.UserID, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

func rangeFromQuery(c *gin.Context) (time.Time, time.Time, error) {
	from, err := service.ParseDate(c.Query("from"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := service.ParseDate(c.Query("to"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}
