package leads

import (
	"errors"
	"fmt"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	"github.com/m04kA/MHS-BookingService/internal/infra/storage"
)

var (
	// ErrLeadNotFound возвращается, когда лид не найден
	ErrLeadNotFound = errors.New("leads: lead not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("leads: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("leads: internal error")
)

func storeError(op string, err error) error {
	if storage.IsUnavailable(err) {
		return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
}
