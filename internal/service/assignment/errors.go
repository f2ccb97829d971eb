package assignment

import (
	"errors"
	"fmt"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	"github.com/m04kA/MHS-BookingService/internal/infra/storage"
)

var (
	// ErrDuplicateSlot у выбранного менеджера уже есть слот на это время
	ErrDuplicateSlot = errors.New("assignment: salesman already offers a slot at this time")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("assignment: internal error")
)

func storeError(op string, err error) error {
	if storage.IsUnavailable(err) {
		return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
}
