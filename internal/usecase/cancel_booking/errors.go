package cancel_booking

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("cancel_booking: slot not found")

	// ErrNotBooked слот не находится в статусе booked
	ErrNotBooked = errors.New("cancel_booking: slot is not booked")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("cancel_booking: internal error")
)
