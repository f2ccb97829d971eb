package leads

import (
	"context"

	"github.com/m04kA/MHS-BookingService/internal/domain"
)

type LeadsService interface {
	Submit(ctx context.Context, contact domain.Contact) (*domain.Lead, error)
	Get(ctx context.Context, id string) (*domain.Lead, error)
	List(ctx context.Context, filter domain.LeadsFilter) ([]*domain.Lead, error)
	Delete(ctx context.Context, id string) (int, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
