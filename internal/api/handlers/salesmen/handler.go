package salesmen

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/MHS-BookingService/internal/api/handlers"
	"github.com/m04kA/MHS-BookingService/internal/domain"
	salesmenService "github.com/m04kA/MHS-BookingService/internal/service/salesmen"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInstant     = "некорректный формат времени, ожидается RFC3339"
	msgInvalidStatus      = "некорректный статус"
	msgInvalidInput       = "некорректные данные менеджера"
	msgSalesmanNotFound   = "менеджер не найден"
	msgEmailTaken         = "менеджер с таким email уже существует"
	msgSalesmanInactive   = "менеджер неактивен"
)

// Handler операции с менеджерами
type Handler struct {
	service SalesmenService
	logger  Logger
}

func NewHandler(service SalesmenService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Create POST /api/v1/salesmen
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /salesmen - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	salesman, err := h.service.Create(r.Context(), req.toService())
	if err != nil {
		h.respondError(w, "POST /salesmen", "", err)
		return
	}

	h.logger.Info("POST /salesmen - Salesman created: salesman_id=%s", salesman.ID)
	handlers.RespondJSON(w, http.StatusCreated, FromSalesman(salesman))
}

// List GET /api/v1/salesmen
// Query params: status
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.List(r.Context(), handlers.QueryString(r, "status"))
	if err != nil {
		h.respondError(w, "GET /salesmen", "", err)
		return
	}

	response := make([]SalesmanResponse, 0, len(result))
	for _, m := range result {
		response = append(response, FromSalesman(m))
	}
	handlers.RespondJSON(w, http.StatusOK, response)
}

// Get GET /api/v1/salesmen/{salesmanId}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	salesmanID := mux.Vars(r)["salesmanId"]

	salesman, err := h.service.Get(r.Context(), salesmanID)
	if err != nil {
		h.respondError(w, "GET /salesmen/{id}", salesmanID, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, FromSalesman(salesman))
}

// Update PUT /api/v1/salesmen/{salesmanId}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	salesmanID := mux.Vars(r)["salesmanId"]

	var req UpdateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /salesmen/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	salesman, err := h.service.Update(r.Context(), salesmanID, req.toService())
	if err != nil {
		h.respondError(w, "PUT /salesmen/{id}", salesmanID, err)
		return
	}

	h.logger.Info("PUT /salesmen/{id} - Salesman updated: salesman_id=%s", salesmanID)
	handlers.RespondJSON(w, http.StatusOK, FromSalesman(salesman))
}

// Delete DELETE /api/v1/salesmen/{salesmanId}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	salesmanID := mux.Vars(r)["salesmanId"]

	if err := h.service.Delete(r.Context(), salesmanID); err != nil {
		h.respondError(w, "DELETE /salesmen/{id}", salesmanID, err)
		return
	}

	h.logger.Info("DELETE /salesmen/{id} - Salesman deleted: salesman_id=%s", salesmanID)
	handlers.RespondNoContent(w)
}

// AddAvailability POST /api/v1/salesmen/{salesmanId}/availability
func (h *Handler) AddAvailability(w http.ResponseWriter, r *http.Request) {
	salesmanID := mux.Vars(r)["salesmanId"]

	var req AvailabilityRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /salesmen/{id}/availability - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	instants, err := req.ParseInstants()
	if err != nil {
		h.logger.Warn("POST /salesmen/{id}/availability - Invalid instant: %v", err)
		handlers.RespondBadRequest(w, msgInvalidInstant)
		return
	}

	result, err := h.service.AddAvailability(r.Context(), salesmanID, instants)
	if err != nil {
		h.respondError(w, "POST /salesmen/{id}/availability", salesmanID, err)
		return
	}

	h.logger.Info("POST /salesmen/{id}/availability - salesman_id=%s, created=%d, existing=%d",
		salesmanID, result.Created, result.Existing)
	handlers.RespondJSON(w, http.StatusCreated, FromAvailability(result))
}

// ListSlots GET /api/v1/salesmen/{salesmanId}/slots
// Query params: status
func (h *Handler) ListSlots(w http.ResponseWriter, r *http.Request) {
	salesmanID := mux.Vars(r)["salesmanId"]

	var status *domain.SlotStatus
	if raw := handlers.QueryString(r, "status"); raw != nil {
		s := domain.SlotStatus(*raw)
		if !s.Valid() {
			handlers.RespondBadRequest(w, msgInvalidStatus)
			return
		}
		status = &s
	}

	slots, err := h.service.ListSlots(r.Context(), salesmanID, status)
	if err != nil {
		h.respondError(w, "GET /salesmen/{id}/slots", salesmanID, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, handlers.NewSlotsResponse(slots))
}

func (h *Handler) respondError(w http.ResponseWriter, route, salesmanID string, err error) {
	switch {
	case errors.Is(err, salesmenService.ErrSalesmanNotFound):
		h.logger.Warn("%s - Salesman not found: salesman_id=%s", route, salesmanID)
		handlers.RespondNotFound(w, msgSalesmanNotFound)

	case errors.Is(err, salesmenService.ErrEmailTaken):
		h.logger.Warn("%s - Email taken", route)
		handlers.RespondConflict(w, msgEmailTaken)

	case errors.Is(err, salesmenService.ErrSalesmanInactive):
		h.logger.Warn("%s - Salesman inactive: salesman_id=%s", route, salesmanID)
		handlers.RespondConflict(w, msgSalesmanInactive)

	case errors.Is(err, salesmenService.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidInput)

	case errors.Is(err, domain.ErrStoreUnavailable):
		h.logger.Error("%s - Store unavailable: %v", route, err)
		handlers.RespondServiceUnavailable(w)

	default:
		h.logger.Error("%s - Failed: salesman_id=%s, error=%v", route, salesmanID, err)
		handlers.RespondInternalError(w)
	}
}
