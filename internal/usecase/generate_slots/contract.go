package generate_slots

import (
	"context"
	"time"

	"github.com/m04kA/MHS-BookingService/internal/domain"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	Upsert(ctx context.Context, slot *domain.Slot) (bool, error)
	List(ctx context.Context, filter domain.SlotsFilter) ([]*domain.Slot, error)
}

// SalesmanRepository интерфейс репозитория менеджеров
type SalesmanRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Salesman, error)
}

// Assigner источник активных менеджеров в порядке приоритета
type Assigner interface {
	ActiveSalesmen(ctx context.Context) ([]*domain.Salesman, error)
}

// Metrics интерфейс для сбора метрик генерации
type Metrics interface {
	AddGeneratedSlots(n int)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
