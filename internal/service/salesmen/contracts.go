package salesmen

import (
	"context"
	"time"

	"github.com/m04kA/MHS-BookingService/internal/domain"
)

// SalesmanRepository интерфейс репозитория менеджеров
type SalesmanRepository interface {
	Create(ctx context.Context, salesman *domain.Salesman) (*domain.Salesman, error)
	GetByID(ctx context.Context, id string) (*domain.Salesman, error)
	List(ctx context.Context, status *domain.SalesmanStatus) ([]*domain.Salesman, error)
	Update(ctx context.Context, salesman *domain.Salesman) (*domain.Salesman, error)
	Delete(ctx context.Context, id string) error
}

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	Upsert(ctx context.Context, slot *domain.Slot) (bool, error)
	List(ctx context.Context, filter domain.SlotsFilter) ([]*domain.Slot, error)
	DeleteBySalesman(ctx context.Context, salesmanID string, status domain.SlotStatus) (int64, error)
	DetachSalesman(ctx context.Context, salesmanID string) (int64, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
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
