package get_free_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/MHS-BookingService/internal/api/handlers"
	"github.com/m04kA/MHS-BookingService/internal/domain"
	getFreeSlots "github.com/m04kA/MHS-BookingService/internal/usecase/get_free_slots"
)

const (
	msgInvalidQuery     = "некорректные параметры запроса, время ожидается в формате RFC3339"
	msgInvalidTimeRange = "некорректный временной диапазон"
)

type Handler struct {
	useCase GetFreeSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetFreeSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/slots/free
// Query params: from, to (RFC3339), salesmanId, limit
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	useCaseReq, err := ToUseCaseRequest(r)
	if err != nil {
		h.logger.Warn("GET /slots/free - Invalid query: %v", err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getFreeSlots.ErrInvalidTimeRange):
			h.logger.Warn("GET /slots/free - Invalid time range: %v", err)
			handlers.RespondBadRequest(w, msgInvalidTimeRange)

		case errors.Is(err, domain.ErrStoreUnavailable):
			h.logger.Error("GET /slots/free - Store unavailable: %v", err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Error("GET /slots/free - Failed to get slots: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /slots/free - Slots retrieved: count=%d", len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
