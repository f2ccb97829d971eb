package generate_slots

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("generate_slots: invalid input data")

	// ErrSalesmanNotFound указанный менеджер не найден
	ErrSalesmanNotFound = errors.New("generate_slots: salesman not found")

	// ErrSalesmanInactive указанный менеджер неактивен
	ErrSalesmanInactive = errors.New("generate_slots: salesman is inactive")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("generate_slots: internal error")
)
