package slots

import (
	"errors"
	"fmt"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	"github.com/m04kA/MHS-BookingService/internal/infra/storage"
)

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("slots: slot not found")

	// ErrInvalidTransition переход статуса запрещен машиной состояний
	ErrInvalidTransition = errors.New("slots: status transition is not allowed")

	// ErrStatusConflict статус слота изменился конкурентно
	ErrStatusConflict = errors.New("slots: slot status changed concurrently")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("slots: internal error")
)

func storeError(op string, err error) error {
	if storage.IsUnavailable(err) {
		return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
}
