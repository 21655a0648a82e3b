package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentloop/rentloop-api/internal/dto"
	appErrors "github.com/rentloop/rentloop-api/pkg/errors"
)

type holdServiceMock struct {
	beginResp      *dto.HoldResponse
	beginErr       error
	finalizeResult bool
	finalizeErr    error
	cancelResult   bool
	cancelErr      error
	beginCalled    bool
	lastToken      string
	lastResvID     string
}

func (m *holdServiceMock) BeginHold(ctx context.Context, req dto.BeginHoldRequest) (*dto.HoldResponse, error) {
	m.beginCalled = true
	return m.beginResp, m.beginErr
}

func (m *holdServiceMock) FinalizeHold(ctx context.Context, token, reservationID string) (bool, error) {
	m.lastToken = token
	m.lastResvID = reservationID
	return m.finalizeResult, m.finalizeErr
}

func (m *holdServiceMock) CancelHold(ctx context.Context, token string) (bool, error) {
	m.lastToken = token
	return m.cancelResult, m.cancelErr
}

func TestHoldHandlerBegin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &holdServiceMock{
		beginResp: &dto.HoldResponse{BlockID: "block-1", Token: "tok-1", ExpiresAt: time.Now().Add(time.Hour)},
	}
	handler := NewHoldHandler(mockSvc)

	payload, _ := json.Marshal(dto.BeginHoldRequest{
		ResourceID: "res-1", StartDate: "2026-09-02", EndDate: "2026-09-04", Token: "tok-1",
	})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/holds", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Begin(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, mockSvc.beginCalled)
}

func TestHoldHandlerBeginInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewHoldHandler(&holdServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/holds", bytes.NewBufferString(`{"resource_id":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Begin(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHoldHandlerBeginConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &holdServiceMock{beginErr: appErrors.ErrRangeUnavailable}
	handler := NewHoldHandler(mockSvc)

	payload, _ := json.Marshal(dto.BeginHoldRequest{
		ResourceID: "res-1", StartDate: "2026-09-02", EndDate: "2026-09-04", Token: "tok-1",
	})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/holds", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Begin(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestHoldHandlerFinalize(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &holdServiceMock{finalizeResult: true}
	handler := NewHoldHandler(mockSvc)

	payload, _ := json.Marshal(dto.FinalizeHoldRequest{ReservationID: "resv-1"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/holds/tok-1/finalize", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "token", Value: "tok-1"}}

	handler.Finalize(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok-1", mockSvc.lastToken)
	assert.Equal(t, "resv-1", mockSvc.lastResvID)

	var envelope struct {
		Data dto.HoldOutcomeResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Resolved)
}

func TestHoldHandlerCancelMissingHold(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &holdServiceMock{cancelResult: false}
	handler := NewHoldHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/holds/tok-gone/cancel", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "token", Value: "tok-gone"}}

	handler.Cancel(c)
	require.Equal(t, http.StatusOK, w.Code, "a missing hold is a no-op, not an error")

	var envelope struct {
		Data dto.HoldOutcomeResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Data.Resolved)
}
