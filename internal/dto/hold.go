package dto

import "time"

// BeginHoldRequest opens a temporary hold when a reservation attempt enters
// the payment phase. Token is the payment-provider token the later success or
// failure callback will be keyed by.
type BeginHoldRequest struct {
	ResourceID string   `json:"resource_id" validate:"required"`
	StartDate  string   `json:"start_date" validate:"required"`
	EndDate    string   `json:"end_date" validate:"required"`
	DayParts   []string `json:"day_parts,omitempty"`
	Token      string   `json:"token" validate:"required"`
}

// FinalizeHoldRequest attaches the confirmed reservation to a hold token.
type FinalizeHoldRequest struct {
	ReservationID string `json:"reservation_id" validate:"required"`
}

// HoldResponse describes the created hold.
type HoldResponse struct {
	BlockID   string    `json:"block_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HoldOutcomeResponse reports finalize/cancel results. Resolved is false when
// no matching hold existed, which callers must treat as a no-op, not a
// failure.
type HoldOutcomeResponse struct {
	Resolved bool `json:"resolved"`
}
