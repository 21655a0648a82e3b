package models

import "time"

// DayPart is the finest granularity of availability.
type DayPart string

const (
	DayPartMorning   DayPart = "morning"
	DayPartAfternoon DayPart = "afternoon"
	DayPartEvening   DayPart = "evening"
)

// AllDayParts lists the canonical day parts in display order.
func AllDayParts() []DayPart {
	return []DayPart{DayPartMorning, DayPartAfternoon, DayPartEvening}
}

// ValidDayPart reports whether the value is one of the canonical parts.
func ValidDayPart(p DayPart) bool {
	switch p {
	case DayPartMorning, DayPartAfternoon, DayPartEvening:
		return true
	}
	return false
}

// Rank gives day parts their chronological order within a day.
func (p DayPart) Rank() int {
	switch p {
	case DayPartMorning:
		return 0
	case DayPartAfternoon:
		return 1
	default:
		return 2
	}
}

// PartOfClock maps a wall-clock "HH:MM" value to the day part it falls in:
// before 12:00 is morning, before 18:00 is afternoon, the rest is evening.
func PartOfClock(hhmm string) (DayPart, bool) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return "", false
	}
	switch h := t.Hour(); {
	case h < 12:
		return DayPartMorning, true
	case h < 18:
		return DayPartAfternoon, true
	default:
		return DayPartEvening, true
	}
}

// TimeWindow is a start/end pair in "HH:MM" wall-clock notation.
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// WeeklyAvailability is the owner-defined recurring pattern, one row per
// (resource, day-of-week). Day-of-week follows time.Weekday: 0 = Sunday.
// When Available is false the slot columns are ignored.
type WeeklyAvailability struct {
	ID         string    `db:"id" json:"id"`
	ResourceID string    `db:"resource_id" json:"resource_id"`
	DayOfWeek  int       `db:"day_of_week" json:"day_of_week"`
	Available  bool      `db:"available" json:"available"`
	Slot1Start *string   `db:"slot1_start" json:"slot1_start,omitempty"`
	Slot1End   *string   `db:"slot1_end" json:"slot1_end,omitempty"`
	Slot2Start *string   `db:"slot2_start" json:"slot2_start,omitempty"`
	Slot2End   *string   `db:"slot2_end" json:"slot2_end,omitempty"`
	Slot3Start *string   `db:"slot3_start" json:"slot3_start,omitempty"`
	Slot3End   *string   `db:"slot3_end" json:"slot3_end,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Windows collects the populated time windows of the row.
func (w WeeklyAvailability) Windows() []TimeWindow {
	var windows []TimeWindow
	pairs := [][2]*string{
		{w.Slot1Start, w.Slot1End},
		{w.Slot2Start, w.Slot2End},
		{w.Slot3Start, w.Slot3End},
	}
	for _, p := range pairs {
		if p[0] != nil && p[1] != nil {
			windows = append(windows, TimeWindow{Start: *p[0], End: *p[1]})
		}
	}
	return windows
}

// AvailabilityException overrides the weekly pattern for one exact date.
// Each day part is independently open or closed and may carry a custom
// window narrowing the default hours.
type AvailabilityException struct {
	ID             string    `db:"id" json:"id"`
	ResourceID     string    `db:"resource_id" json:"resource_id"`
	Date           time.Time `db:"date" json:"date"`
	Morning        bool      `db:"morning" json:"morning"`
	Afternoon      bool      `db:"afternoon" json:"afternoon"`
	Evening        bool      `db:"evening" json:"evening"`
	MorningStart   *string   `db:"morning_start" json:"morning_start,omitempty"`
	MorningEnd     *string   `db:"morning_end" json:"morning_end,omitempty"`
	AfternoonStart *string   `db:"afternoon_start" json:"afternoon_start,omitempty"`
	AfternoonEnd   *string   `db:"afternoon_end" json:"afternoon_end,omitempty"`
	EveningStart   *string   `db:"evening_start" json:"evening_start,omitempty"`
	EveningEnd     *string   `db:"evening_end" json:"evening_end,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Open reports whether the exception leaves the given day part open.
func (e AvailabilityException) Open(part DayPart) bool {
	switch part {
	case DayPartMorning:
		return e.Morning
	case DayPartAfternoon:
		return e.Afternoon
	case DayPartEvening:
		return e.Evening
	}
	return false
}
