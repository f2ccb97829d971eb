package slots

import (
	"context"

	"github.com/m04kA/MHS-BookingService/internal/domain"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Slot, error)
	List(ctx context.Context, filter domain.SlotsFilter) ([]*domain.Slot, error)
	Transition(ctx context.Context, id string, from, to domain.SlotStatus) error
	Delete(ctx context.Context, id string) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
