package slots

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/MHS-BookingService/internal/api/handlers"
	"github.com/m04kA/MHS-BookingService/internal/domain"
	slotsService "github.com/m04kA/MHS-BookingService/internal/service/slots"
)

const (
	msgInvalidQuery       = "некорректные параметры запроса"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные входные данные"
	msgSlotNotFound       = "слот не найден"
	msgInvalidTransition  = "переход статуса недопустим"
	msgStatusConflict     = "статус слота изменился, повторите запрос"
)

// Handler административные операции со слотами
type Handler struct {
	service SlotsService
	logger  Logger
}

func NewHandler(service SlotsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// List GET /api/v1/slots
// Query params: status, salesmanId, leadId, from, to, unassigned
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := ToFilter(r)
	if err != nil {
		h.logger.Warn("GET /slots - Invalid query: %v", err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	result, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, "GET /slots", "", err)
		return
	}

	h.logger.Info("GET /slots - Slots retrieved: count=%d", len(result))
	handlers.RespondJSON(w, http.StatusOK, handlers.NewSlotsResponse(result))
}

// Get GET /api/v1/slots/{slotId}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	slotID := mux.Vars(r)["slotId"]

	slot, err := h.service.Get(r.Context(), slotID)
	if err != nil {
		h.respondError(w, "GET /slots/{id}", slotID, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, handlers.NewSlotResponse(slot))
}

// UpdateStatus PUT /api/v1/slots/{slotId}
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	slotID := mux.Vars(r)["slotId"]

	var req UpdateStatusRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /slots/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	slot, err := h.service.UpdateStatus(r.Context(), slotID, domain.SlotStatus(req.Status))
	if err != nil {
		h.respondError(w, "PUT /slots/{id}", slotID, err)
		return
	}

	h.logger.Info("PUT /slots/{id} - Status updated: slot_id=%s, status=%s", slotID, slot.Status)
	handlers.RespondJSON(w, http.StatusOK, handlers.NewSlotResponse(slot))
}

// Delete DELETE /api/v1/slots/{slotId}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	slotID := mux.Vars(r)["slotId"]

	if err := h.service.Delete(r.Context(), slotID); err != nil {
		h.respondError(w, "DELETE /slots/{id}", slotID, err)
		return
	}

	h.logger.Info("DELETE /slots/{id} - Slot deleted: slot_id=%s", slotID)
	handlers.RespondNoContent(w)
}

func (h *Handler) respondError(w http.ResponseWriter, route, slotID string, err error) {
	switch {
	case errors.Is(err, slotsService.ErrSlotNotFound):
		h.logger.Warn("%s - Slot not found: slot_id=%s", route, slotID)
		handlers.RespondNotFound(w, msgSlotNotFound)

	case errors.Is(err, slotsService.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidInput)

	case errors.Is(err, slotsService.ErrInvalidTransition):
		h.logger.Warn("%s - Invalid transition: %v", route, err)
		handlers.RespondConflict(w, msgInvalidTransition)

	case errors.Is(err, slotsService.ErrStatusConflict):
		h.logger.Warn("%s - Status conflict: slot_id=%s", route, slotID)
		handlers.RespondConflict(w, msgStatusConflict)

	case errors.Is(err, domain.ErrStoreUnavailable):
		h.logger.Error("%s - Store unavailable: %v", route, err)
		handlers.RespondServiceUnavailable(w)

	default:
		h.logger.Error("%s - Failed: slot_id=%s, error=%v", route, slotID, err)
		handlers.RespondInternalError(w)
	}
}
