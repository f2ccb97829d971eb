package run_maintenance

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/MHS-BookingService/internal/api/handlers"
	"github.com/m04kA/MHS-BookingService/internal/domain"
)

type Handler struct {
	useCase MaintenanceUseCase
	now     func() time.Time
	logger  Logger
}

func NewHandler(useCase MaintenanceUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		now:     time.Now,
		logger:  logger,
	}
}

// Handle POST /api/v1/maintenance/run
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	report, err := h.useCase.PruneAndReconcile(r.Context(), h.now())
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			h.logger.Error("POST /maintenance/run - Store unavailable: %v", err)
			handlers.RespondServiceUnavailable(w)
			return
		}
		h.logger.Error("POST /maintenance/run - Failed: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /maintenance/run - pruned=%d, assigned=%d", report.Pruned, report.Assigned)
	handlers.RespondJSON(w, http.StatusOK, FromReport(report))
}
