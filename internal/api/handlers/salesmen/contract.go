package salesmen

import (
	"context"
	"time"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	salesmenService "github.com/m04kA/MHS-BookingService/internal/service/salesmen"
)

type SalesmenService interface {
	Create(ctx context.Context, req salesmenService.CreateRequest) (*domain.Salesman, error)
	Get(ctx context.Context, id string) (*domain.Salesman, error)
	List(ctx context.Context, status *string) ([]*domain.Salesman, error)
	Update(ctx context.Context, id string, req salesmenService.UpdateRequest) (*domain.Salesman, error)
	Delete(ctx context.Context, id string) error
	AddAvailability(ctx context.Context, id string, instants []time.Time) (*salesmenService.AvailabilityResult, error)
	ListSlots(ctx context.Context, id string, status *domain.SlotStatus) ([]*domain.Slot, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
