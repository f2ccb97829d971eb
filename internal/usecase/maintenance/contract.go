package maintenance

import (
	"context"
	"time"

	"github.com/m04kA/MHS-BookingService/internal/domain"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	List(ctx context.Context, filter domain.SlotsFilter) ([]*domain.Slot, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// Assigner назначает слот менеджеру по умолчанию
type Assigner interface {
	AssignDefault(ctx context.Context, slot *domain.Slot) (*domain.Slot, error)
}

// Metrics интерфейс для сбора метрик обслуживания
type Metrics interface {
	ObserveMaintenance(pruned int64, err error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
