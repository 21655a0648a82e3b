package dto

// CreateReservationRequest opens a reservation attempt in PENDING before the
// payment phase begins.
type CreateReservationRequest struct {
	ResourceID   string   `json:"resource_id" validate:"required"`
	StartDate    string   `json:"start_date" validate:"required"`
	EndDate      string   `json:"end_date" validate:"required"`
	PickupTime   *string  `json:"pickup_time,omitempty"`
	ReturnTime   *string  `json:"return_time,omitempty"`
	TotalCents   int64    `json:"total_cents"`
	DepositCents int64    `json:"deposit_cents"`
	DayParts     []string `json:"day_parts,omitempty"`
	Notes        *string  `json:"notes,omitempty"`
}

// TransitionReservationRequest drives the status state machine.
type TransitionReservationRequest struct {
	Status             string  `json:"status" validate:"required"`
	Note               *string `json:"note,omitempty"`
	CancellationReason *string `json:"cancellation_reason,omitempty"`
	ActualReturnDate   *string `json:"actual_return_date,omitempty"`
}
