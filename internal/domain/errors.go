package domain

import "errors"

var (
	// ErrInvalidTiming booking requested inside the minimum lead time
	ErrInvalidTiming = errors.New("booking is inside the minimum lead time")

	// ErrSlotUnavailable slot is missing, already booked or lost the transition race
	ErrSlotUnavailable = errors.New("slot is not available")

	// ErrNoSalesmanAvailable there is no active salesman to assign
	ErrNoSalesmanAvailable = errors.New("no active salesman available")

	// ErrStoreUnavailable the backing store cannot be reached
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidStatus unknown status value
	ErrInvalidStatus = errors.New("invalid status")
)
