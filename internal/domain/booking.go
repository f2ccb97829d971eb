package domain

import "time"

// CancelPolicy decides where a cancelled booking leaves its slot
type CancelPolicy string

const (
	// CancelRelease returns the slot to available so it can be booked again
	CancelRelease CancelPolicy = "release"
	// CancelTerminal moves the slot to the terminal cancelled state
	CancelTerminal CancelPolicy = "terminal"
)

// Valid reports whether the policy is known
func (p CancelPolicy) Valid() bool {
	return p == CancelRelease || p == CancelTerminal
}

// TargetStatus returns the slot status a cancellation transitions to
func (p CancelPolicy) TargetStatus() SlotStatus {
	if p == CancelTerminal {
		return SlotCancelled
	}
	return SlotAvailable
}

// Booking is the relation between a lead and the slot it reserved
type Booking struct {
	SlotID    string
	LeadID    string
	CreatedAt time.Time
}
