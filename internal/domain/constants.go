package domain

import "time"

// Booking rules
const (
	DefaultMinLeadTime  = 2 * time.Hour
	DefaultCancelPolicy = CancelRelease
)

// Slot generation defaults
const (
	DefaultHorizonDays  = 14
	DefaultStepMinutes  = 60
	DefaultWorkdayStart = "09:00"
	DefaultWorkdayEnd   = "17:00"
	MaxHorizonDays      = 90
	MinStepMinutes      = 5
)

// Salesman defaults
const (
	DefaultSalesmanPriority = 100
	DefaultLeadStatus       = "new"
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Booking outcomes reported to metrics
const (
	OutcomeBooked          = "booked"
	OutcomeInvalidTiming   = "invalid_timing"
	OutcomeSlotUnavailable = "slot_unavailable"
	OutcomeError           = "error"
)
