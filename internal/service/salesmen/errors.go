package salesmen

import (
	"errors"
	"fmt"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	"github.com/m04kA/MHS-BookingService/internal/infra/storage"
)

var (
	// ErrSalesmanNotFound возвращается, когда менеджер не найден
	ErrSalesmanNotFound = errors.New("salesmen: salesman not found")

	// ErrEmailTaken менеджер с таким email уже существует
	ErrEmailTaken = errors.New("salesmen: email already registered")

	// ErrSalesmanInactive неактивному менеджеру нельзя добавлять слоты
	ErrSalesmanInactive = errors.New("salesmen: salesman is inactive")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("salesmen: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("salesmen: internal error")
)

func storeError(op string, err error) error {
	if storage.IsUnavailable(err) {
		return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
}
