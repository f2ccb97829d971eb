package assignment

import (
	"context"

	"github.com/m04kA/MHS-BookingService/internal/domain"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	AssignSalesman(ctx context.Context, id string, salesmanID *string) error
}

// SalesmanRepository интерфейс репозитория менеджеров
type SalesmanRepository interface {
	ListActive(ctx context.Context) ([]*domain.Salesman, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
