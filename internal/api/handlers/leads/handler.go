package leads

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/MHS-BookingService/internal/api/handlers"
	"github.com/m04kA/MHS-BookingService/internal/domain"
	leadsService "github.com/m04kA/MHS-BookingService/internal/service/leads"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidQuery       = "некорректные параметры запроса"
	msgInvalidInput       = "некорректные данные заявки"
	msgLeadNotFound       = "лид не найден"
)

// Handler операции с лидами
type Handler struct {
	service LeadsService
	logger  Logger
}

func NewHandler(service LeadsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Submit POST /api/v1/leads
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /leads - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	lead, err := h.service.Submit(r.Context(), req.ToContact())
	if err != nil {
		h.respondError(w, "POST /leads", "", err)
		return
	}

	h.logger.Info("POST /leads - Lead saved: lead_id=%s, score=%d", lead.ID, lead.QualificationScore)
	handlers.RespondJSON(w, http.StatusCreated, FromLead(lead))
}

// List GET /api/v1/leads
// Query params: status, minScore
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := ToFilter(r)
	if err != nil {
		h.logger.Warn("GET /leads - Invalid query: %v", err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	result, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, "GET /leads", "", err)
		return
	}

	response := make([]LeadResponse, 0, len(result))
	for _, l := range result {
		response = append(response, FromLead(l))
	}

	h.logger.Info("GET /leads - Leads retrieved: count=%d", len(response))
	handlers.RespondJSON(w, http.StatusOK, response)
}

// Get GET /api/v1/leads/{leadId}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	leadID := mux.Vars(r)["leadId"]

	lead, err := h.service.Get(r.Context(), leadID)
	if err != nil {
		h.respondError(w, "GET /leads/{id}", leadID, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromLead(lead))
}

// Delete DELETE /api/v1/leads/{leadId}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	leadID := mux.Vars(r)["leadId"]

	released, err := h.service.Delete(r.Context(), leadID)
	if err != nil {
		h.respondError(w, "DELETE /leads/{id}", leadID, err)
		return
	}

	h.logger.Info("DELETE /leads/{id} - Lead deleted: lead_id=%s, released_slots=%d", leadID, released)
	handlers.RespondJSON(w, http.StatusOK, DeleteResponse{ID: leadID, ReleasedSlots: released})
}

func (h *Handler) respondError(w http.ResponseWriter, route, leadID string, err error) {
	switch {
	case errors.Is(err, leadsService.ErrLeadNotFound):
		h.logger.Warn("%s - Lead not found: lead_id=%s", route, leadID)
		handlers.RespondNotFound(w, msgLeadNotFound)

	case errors.Is(err, leadsService.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidInput)

	case errors.Is(err, domain.ErrStoreUnavailable):
		h.logger.Error("%s - Store unavailable: %v", route, err)
		handlers.RespondServiceUnavailable(w)

	default:
		h.logger.Error("%s - Failed: lead_id=%s, error=%v", route, leadID, err)
		handlers.RespondInternalError(w)
	}
}
