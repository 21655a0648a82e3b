package dto

import "github.com/rentloop/rentloop-api/internal/models"

// UpsertWeeklyRequest sets the recurring pattern for one day of week.
type UpsertWeeklyRequest struct {
	Available bool                `json:"available"`
	Windows   []models.TimeWindow `json:"windows" validate:"max=3,dive"`
}

// UpsertExceptionRequest overrides the weekly pattern for one exact date.
type UpsertExceptionRequest struct {
	Morning        bool    `json:"morning"`
	Afternoon      bool    `json:"afternoon"`
	Evening        bool    `json:"evening"`
	MorningStart   *string `json:"morning_start,omitempty"`
	MorningEnd     *string `json:"morning_end,omitempty"`
	AfternoonStart *string `json:"afternoon_start,omitempty"`
	AfternoonEnd   *string `json:"afternoon_end,omitempty"`
	EveningStart   *string `json:"evening_start,omitempty"`
	EveningEnd     *string `json:"evening_end,omitempty"`
}

// CreateBlockRequest creates a manual blocked period. A nil resource ID makes
// the block owner-wide across every resource of the calling owner.
type CreateBlockRequest struct {
	ResourceID *string `json:"resource_id,omitempty"`
	StartDate  string  `json:"start_date" validate:"required"`
	EndDate    string  `json:"end_date" validate:"required"`
	Reason     *string `json:"reason,omitempty"`
	AllDay     bool    `json:"all_day"`
	Morning    bool    `json:"morning"`
	Afternoon  bool    `json:"afternoon"`
	Evening    bool    `json:"evening"`
}
