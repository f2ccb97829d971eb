package domain

import "time"

// SlotStatus represents the lifecycle state of an appointment slot
type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotBooked    SlotStatus = "booked"
	SlotCompleted SlotStatus = "completed"
	SlotCancelled SlotStatus = "cancelled"
)

// Slot is a single bookable instant offered by a salesman
type Slot struct {
	ID         string
	SalesmanID *string // nil while the slot is not offered by anyone
	LeadID     *string // set only while a booking relation exists
	WhenUTC    time.Time
	Status     SlotStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsAssigned returns true if the slot is offered by a salesman
func (s *Slot) IsAssigned() bool {
	return s.SalesmanID != nil && *s.SalesmanID != ""
}

// IsBookable returns true if the slot can be reserved right now
func (s *Slot) IsBookable() bool {
	return s.Status == SlotAvailable && s.LeadID == nil
}

// IsTerminal returns true for states that never change again
func (s *Slot) IsTerminal() bool {
	return s.Status == SlotCompleted || s.Status == SlotCancelled
}

// Valid reports whether the status is one of the known states
func (s SlotStatus) Valid() bool {
	switch s {
	case SlotAvailable, SlotBooked, SlotCompleted, SlotCancelled:
		return true
	}
	return false
}

// allowedTransitions is the slot state machine.
// booked -> available is the release form of cancellation.
var allowedTransitions = map[SlotStatus][]SlotStatus{
	SlotAvailable: {SlotBooked, SlotCancelled},
	SlotBooked:    {SlotCompleted, SlotAvailable, SlotCancelled},
}

// CanTransition reports whether a slot may move from one status to another
func CanTransition(from, to SlotStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ParseSlotStatus converts a raw string into a SlotStatus
func ParseSlotStatus(raw string) (SlotStatus, error) {
	status := SlotStatus(raw)
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// FreeSlotsFilter selects bookable slots. From and To are inclusive.
type FreeSlotsFilter struct {
	From       time.Time
	To         time.Time
	SalesmanID *string
	Limit      int // 0 = no limit
}

// SlotsFilter selects slots for administrative listings
type SlotsFilter struct {
	Status     *SlotStatus
	SalesmanID *string
	LeadID     *string
	From       *time.Time
	To         *time.Time
	Unassigned bool // only slots without a salesman
}
