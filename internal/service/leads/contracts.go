package leads

import (
	"context"

	"github.com/m04kA/MHS-BookingService/internal/domain"
)

// LeadRepository интерфейс репозитория лидов
type LeadRepository interface {
	UpsertByEmail(ctx context.Context, lead *domain.Lead) (*domain.Lead, error)
	GetByID(ctx context.Context, id string) (*domain.Lead, error)
	List(ctx context.Context, filter domain.LeadsFilter) ([]*domain.Lead, error)
	Delete(ctx context.Context, id string) error
}

// BookingRepository интерфейс репозитория связей лид-слот
type BookingRepository interface {
	ListByLead(ctx context.Context, leadID string) ([]*domain.Booking, error)
	Delete(ctx context.Context, slotID string) error
}

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	Transition(ctx context.Context, id string, from, to domain.SlotStatus) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
