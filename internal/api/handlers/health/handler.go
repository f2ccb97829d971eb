package health

import (
	"context"
	"net/http"
	"time"

	"github.com/m04kA/MHS-BookingService/internal/api/handlers"
)

const (
	statusOK          = "ok"
	statusUnavailable = "unavailable"

	pingTimeout = 2 * time.Second
)

type Handler struct {
	pinger  Pinger
	storage string
	logger  Logger
}

func NewHandler(pinger Pinger, storage string, logger Logger) *Handler {
	return &Handler{
		pinger:  pinger,
		storage: storage,
		logger:  logger,
	}
}

// Handle GET /api/v1/health
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		h.logger.Error("GET /health - Storage %s unavailable: %v", h.storage, err)
		handlers.RespondJSON(w, http.StatusServiceUnavailable, StatusResponse{Status: statusUnavailable, Storage: h.storage})
		return
	}

	handlers.RespondJSON(w, http.StatusOK, StatusResponse{Status: statusOK, Storage: h.storage})
}
