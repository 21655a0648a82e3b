package models

import "time"

// ReservationStatus enumerates the reservation lifecycle states.
type ReservationStatus string

const (
	ReservationPending    ReservationStatus = "PENDING"
	ReservationConfirmed  ReservationStatus = "CONFIRMED"
	ReservationActive     ReservationStatus = "ACTIVE"
	ReservationCompleted  ReservationStatus = "COMPLETED"
	ReservationCancelled  ReservationStatus = "CANCELLED"
	ReservationLateReturn ReservationStatus = "LATE_RETURN"
	ReservationDisputed   ReservationStatus = "DISPUTED"
)

// reservationTransitions is the full transition table. CANCELLED is the one
// state with a way back (reactivation); COMPLETED has no outgoing edges.
var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationPending:    {ReservationConfirmed, ReservationCancelled},
	ReservationConfirmed:  {ReservationActive, ReservationCancelled},
	ReservationActive:     {ReservationCompleted, ReservationLateReturn, ReservationDisputed},
	ReservationLateReturn: {ReservationCompleted, ReservationDisputed},
	ReservationDisputed:   {ReservationCompleted},
	ReservationCancelled:  {ReservationPending, ReservationConfirmed},
	ReservationCompleted:  {},
}

// Valid reports whether the status is a member of the enum.
func (s ReservationStatus) Valid() bool {
	_, ok := reservationTransitions[s]
	return ok
}

// CanTransitionTo reports whether the edge s -> to is in the table.
func (s ReservationStatus) CanTransitionTo(to ReservationStatus) bool {
	for _, allowed := range reservationTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Reservation is the core transactional entity. Rows are never deleted;
// cancellation is a status change.
type Reservation struct {
	ID                 string            `db:"id" json:"id"`
	ResourceID         string            `db:"resource_id" json:"resource_id"`
	RenterID           string            `db:"renter_id" json:"renter_id"`
	LessorID           string            `db:"lessor_id" json:"lessor_id"`
	StartDate          time.Time         `db:"start_date" json:"start_date"`
	EndDate            time.Time         `db:"end_date" json:"end_date"`
	PickupTime         *string           `db:"pickup_time" json:"pickup_time,omitempty"`
	ReturnTime         *string           `db:"return_time" json:"return_time,omitempty"`
	TotalCents         int64             `db:"total_cents" json:"total_cents"`
	DepositCents       int64             `db:"deposit_cents" json:"deposit_cents"`
	Status             ReservationStatus `db:"status" json:"status"`
	CancellationReason *string           `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	CancellationDate   *time.Time        `db:"cancellation_date" json:"cancellation_date,omitempty"`
	ActualReturnDate   *time.Time        `db:"actual_return_date" json:"actual_return_date,omitempty"`
	Notes              *string           `db:"notes" json:"notes,omitempty"`
	CreatedAt          time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time         `db:"updated_at" json:"updated_at"`
}

// Occupying reports whether the reservation currently consumes availability.
func (r Reservation) Occupying() bool {
	return r.Status == ReservationConfirmed || r.Status == ReservationActive
}

// OccupiesPart reports whether the reservation consumes the given day part on
// a date it covers. Pickup and return times narrow the boundary days: a
// 14:00 pickup leaves the first morning open, a 10:00 return frees the last
// afternoon and evening. Days strictly inside the range, or boundary days
// without a time, occupy every part. Unparseable times fall back to the
// whole day rather than under-blocking.
func (r Reservation) OccupiesPart(day time.Time, part DayPart) bool {
	if onSameDate(day, r.StartDate) && r.PickupTime != nil {
		if p, ok := PartOfClock(*r.PickupTime); ok && part.Rank() < p.Rank() {
			return false
		}
	}
	if onSameDate(day, r.EndDate) && r.ReturnTime != nil {
		if p, ok := PartOfClock(*r.ReturnTime); ok && part.Rank() > p.Rank() {
			return false
		}
	}
	return true
}

func onSameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
