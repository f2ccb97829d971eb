package book_appointment

import (
	"context"
	"time"

	"github.com/m04kA/MHS-BookingService/internal/domain"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	FindFree(ctx context.Context, filter domain.FreeSlotsFilter) ([]*domain.Slot, error)
	Transition(ctx context.Context, id string, from, to domain.SlotStatus) error
}

// BookingRepository интерфейс репозитория связей лид-слот
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// LeadRepository интерфейс репозитория лидов
type LeadRepository interface {
	UpsertByEmail(ctx context.Context, lead *domain.Lead) (*domain.Lead, error)
}

// Notifier отправляет подтверждение бронирования лиду
type Notifier interface {
	BookingConfirmed(ctx context.Context, lead *domain.Lead, slot *domain.Slot) error
}

// Metrics интерфейс для сбора метрик бронирования
type Metrics interface {
	ObserveBooking(outcome string)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
