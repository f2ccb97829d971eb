package get_free_slots

import "errors"

var (
	// ErrInvalidTimeRange возвращается при некорректном временном диапазоне
	ErrInvalidTimeRange = errors.New("get_free_slots: invalid time range")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_free_slots: internal error")
)
