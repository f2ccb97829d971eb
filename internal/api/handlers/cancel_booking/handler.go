package cancel_booking

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/MHS-BookingService/internal/api/handlers"
	"github.com/m04kA/MHS-BookingService/internal/domain"
	cancelBooking "github.com/m04kA/MHS-BookingService/internal/usecase/cancel_booking"
)

const (
	msgMissingSlotID = "ID слота обязателен"
	msgSlotNotFound  = "слот не найден"
	msgNotBooked     = "слот не забронирован"
)

type Handler struct {
	useCase CancelBookingUseCase
	logger  Logger
}

func NewHandler(useCase CancelBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/slots/{slotId}/booking
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID := mux.Vars(r)["slotId"]
	if slotID == "" {
		handlers.RespondBadRequest(w, msgMissingSlotID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &cancelBooking.Request{SlotID: slotID})
	if err != nil {
		switch {
		case errors.Is(err, cancelBooking.ErrSlotNotFound):
			h.logger.Warn("DELETE /slots/{id}/booking - Slot not found: slot_id=%s", slotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, cancelBooking.ErrNotBooked):
			h.logger.Warn("DELETE /slots/{id}/booking - Slot not booked: slot_id=%s", slotID)
			handlers.RespondConflict(w, msgNotBooked)

		case errors.Is(err, domain.ErrStoreUnavailable):
			h.logger.Error("DELETE /slots/{id}/booking - Store unavailable: %v", err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Error("DELETE /slots/{id}/booking - Failed to cancel: slot_id=%s, error=%v", slotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /slots/{id}/booking - Booking cancelled: slot_id=%s, status=%s", slotID, result.Status)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
