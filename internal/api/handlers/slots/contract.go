package slots

import (
	"context"

	"github.com/m04kA/MHS-BookingService/internal/domain"
)

type SlotsService interface {
	Get(ctx context.Context, id string) (*domain.Slot, error)
	List(ctx context.Context, filter domain.SlotsFilter) ([]*domain.Slot, error)
	UpdateStatus(ctx context.Context, id string, to domain.SlotStatus) (*domain.Slot, error)
	Delete(ctx context.Context, id string) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
