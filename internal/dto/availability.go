package dto

import "github.com/rentloop/rentloop-api/internal/models"

// DayAvailability is the merged per-day verdict, one flag per day part.
type DayAvailability struct {
	Date      string `json:"date"`
	Morning   bool   `json:"morning"`
	Afternoon bool   `json:"afternoon"`
	Evening   bool   `json:"evening"`
}

// Open reports the verdict for one day part.
func (d DayAvailability) Open(part models.DayPart) bool {
	switch part {
	case models.DayPartMorning:
		return d.Morning
	case models.DayPartAfternoon:
		return d.Afternoon
	case models.DayPartEvening:
		return d.Evening
	}
	return false
}

// AvailabilityResponse is the full resolver output for a resource and range.
type AvailabilityResponse struct {
	ResourceID     string                         `json:"resource_id"`
	From           string                         `json:"from"`
	To             string                         `json:"to"`
	Days           []DayAvailability              `json:"days"`
	BlockedPeriods []models.BlockedPeriod         `json:"blocked_periods"`
	Exceptions     []models.AvailabilityException `json:"exceptions"`
	WeeklyPattern  []models.WeeklyAvailability    `json:"weekly_pattern"`
}

// RangeCheckResponse answers "can this exact range be booked now".
type RangeCheckResponse struct {
	Available     bool     `json:"available"`
	ConflictDates []string `json:"conflict_dates,omitempty"`
}

// ResourceCalendar is one resource's slice of the owner calendar.
type ResourceCalendar struct {
	ResourceID string            `json:"resource_id"`
	Title      string            `json:"title"`
	Days       []DayAvailability `json:"days"`
}

// OwnerCalendarResponse aggregates availability across all of an owner's
// resources, the consumer of owner-wide blocks and confirmed shadows.
type OwnerCalendarResponse struct {
	OwnerID   string             `json:"owner_id"`
	From      string             `json:"from"`
	To        string             `json:"to"`
	Resources []ResourceCalendar `json:"resources"`
}
