package run_maintenance

import (
	"context"
	"time"

	"github.com/m04kA/MHS-BookingService/internal/usecase/maintenance"
)

type MaintenanceUseCase interface {
	PruneAndReconcile(ctx context.Context, now time.Time) (*maintenance.Report, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
