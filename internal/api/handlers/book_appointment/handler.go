package book_appointment

import (
	"errors"
	"net/http"

	"github.com/m04kA/MHS-BookingService/internal/api/handlers"
	"github.com/m04kA/MHS-BookingService/internal/domain"
	bookAppointment "github.com/m04kA/MHS-BookingService/internal/usecase/book_appointment"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidWhen        = "некорректный формат времени консультации, ожидается RFC3339"
	msgInvalidTiming      = "консультацию нельзя забронировать так близко к текущему времени"
	msgInvalidInput       = "некорректные контактные данные"
	msgSlotUnavailable    = "выбранное время недоступно"
)

type Handler struct {
	useCase BookAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase BookAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req BookRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /bookings - Invalid whenUtc %q: %v", req.WhenUTC, err)
		handlers.RespondBadRequest(w, msgInvalidWhen)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidTiming):
			h.logger.Warn("POST /bookings - Invalid timing: when=%s", req.WhenUTC)
			handlers.RespondBadRequest(w, msgInvalidTiming)

		case errors.Is(err, bookAppointment.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, domain.ErrSlotUnavailable):
			h.logger.Warn("POST /bookings - Slot unavailable: when=%s", req.WhenUTC)
			handlers.RespondConflict(w, msgSlotUnavailable)

		case errors.Is(err, domain.ErrStoreUnavailable):
			h.logger.Error("POST /bookings - Store unavailable: %v", err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Error("POST /bookings - Failed to book: when=%s, error=%v", req.WhenUTC, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booked: slot_id=%s, lead_id=%s", result.SlotID, result.LeadID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
