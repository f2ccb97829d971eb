package generate_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/MHS-BookingService/internal/api/handlers"
	"github.com/m04kA/MHS-BookingService/internal/domain"
	generateSlots "github.com/m04kA/MHS-BookingService/internal/usecase/generate_slots"
	"github.com/m04kA/MHS-BookingService/pkg/ptr"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные параметры генерации"
	msgSalesmanNotFound   = "менеджер не найден"
	msgSalesmanInactive   = "менеджер неактивен"
)

type Handler struct {
	useCase GenerateSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GenerateSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/slots/generate
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, handlers.ErrEmptyBody) {
		h.logger.Warn("POST /slots/generate - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest())
	if err != nil {
		switch {
		case errors.Is(err, generateSlots.ErrInvalidInput):
			h.logger.Warn("POST /slots/generate - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, generateSlots.ErrSalesmanNotFound):
			h.logger.Warn("POST /slots/generate - Salesman not found: salesman_id=%s", ptr.Deref(req.SalesmanID))
			handlers.RespondNotFound(w, msgSalesmanNotFound)

		case errors.Is(err, generateSlots.ErrSalesmanInactive):
			h.logger.Warn("POST /slots/generate - Salesman inactive: salesman_id=%s", ptr.Deref(req.SalesmanID))
			handlers.RespondConflict(w, msgSalesmanInactive)

		case errors.Is(err, domain.ErrStoreUnavailable):
			h.logger.Error("POST /slots/generate - Store unavailable: %v", err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Error("POST /slots/generate - Failed to generate slots: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	status := http.StatusCreated
	if result.DryRun {
		status = http.StatusOK
	}

	h.logger.Info("POST /slots/generate - strategy=%s, dry_run=%t, candidates=%d, created=%d, existing=%d",
		result.Strategy, result.DryRun, result.Candidates, result.Created, result.Existing)
	handlers.RespondJSON(w, status, FromUseCaseResponse(result))
}
