package slots

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/MHS-BookingService/internal/api/handlers"
	"github.com/m04kA/MHS-BookingService/internal/domain"
	"github.com/m04kA/MHS-BookingService/internal/infra/storage"
	slotsService "github.com/m04kA/MHS-BookingService/internal/service/slots"
	"github.com/m04kA/MHS-BookingService/internal/testutil/memstore"
	"github.com/m04kA/MHS-BookingService/pkg/logger"
)

var when = time.Date(2025, 3, 3, 15, 0, 0, 0, time.UTC)

func newRouter(store *memstore.Store) *mux.Router {
	h := NewHandler(slotsService.NewService(store.Slots(), logger.NewNop()), logger.NewNop())
	r := mux.NewRouter()
	r.HandleFunc("/slots", h.List).Methods(http.MethodGet)
	r.HandleFunc("/slots/{slotId}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/slots/{slotId}", h.UpdateStatus).Methods(http.MethodPut)
	r.HandleFunc("/slots/{slotId}", h.Delete).Methods(http.MethodDelete)
	return r
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func TestList(t *testing.T) {
	store := memstore.New()
	salesman := store.AddSalesman(domain.Salesman{Name: "Ann"})
	store.AddSlot(domain.Slot{WhenUTC: when, SalesmanID: &salesman.ID})
	store.AddSlot(domain.Slot{WhenUTC: when.Add(time.Hour)})
	store.AddSlot(domain.Slot{WhenUTC: when.Add(2 * time.Hour), Status: domain.SlotCompleted})
	r := newRouter(store)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"all", "/slots", 3},
		{"by status", "/slots?status=available", 2},
		{"unassigned", "/slots?unassigned=true", 2},
		{"by salesman", "/slots?salesmanId=" + salesman.ID, 1},
		{"by range", "/slots?from=2025-03-03T15:30:00Z&to=2025-03-03T16:00:00Z", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(r, http.MethodGet, tt.target, "")
			require.Equal(t, http.StatusOK, rec.Code)

			var body []handlers.SlotResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Len(t, body, tt.want)
		})
	}
}

func TestList_InvalidQuery(t *testing.T) {
	r := newRouter(memstore.New())

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/slots?status=lost", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/slots?from=yesterday", "").Code)
	assert.Equal(t, http.StatusBadRequest,
		do(r, http.MethodGet, "/slots?from=2025-03-04T00:00:00Z&to=2025-03-03T00:00:00Z", "").Code)
}

func TestGet(t *testing.T) {
	store := memstore.New()
	slot := store.AddSlot(domain.Slot{WhenUTC: when})
	r := newRouter(store)

	rec := do(r, http.MethodGet, "/slots/"+slot.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body handlers.SlotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, slot.ID, body.ID)
	assert.Equal(t, "2025-03-03T15:00:00Z", body.WhenUTC)
	assert.Equal(t, "available", body.Status)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/slots/missing", "").Code)
}

func TestUpdateStatus(t *testing.T) {
	store := memstore.New()
	booked := store.AddSlot(domain.Slot{WhenUTC: when, Status: domain.SlotBooked})
	available := store.AddSlot(domain.Slot{WhenUTC: when.Add(time.Hour)})
	r := newRouter(store)

	rec := do(r, http.MethodPut, "/slots/"+booked.ID, `{"status":"completed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, store.CountSlots(domain.SlotCompleted))

	tests := []struct {
		name   string
		id     string
		body   string
		status int
	}{
		{"terminal slot", booked.ID, `{"status":"cancelled"}`, http.StatusConflict},
		{"complete available", available.ID, `{"status":"completed"}`, http.StatusConflict},
		{"book through admin", available.ID, `{"status":"booked"}`, http.StatusBadRequest},
		{"bad body", available.ID, `{"state":"cancelled"}`, http.StatusBadRequest},
		{"missing", "missing", `{"status":"cancelled"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, do(r, http.MethodPut, "/slots/"+tt.id, tt.body).Code)
		})
	}
}

func TestDelete(t *testing.T) {
	store := memstore.New()
	slot := store.AddSlot(domain.Slot{WhenUTC: when})
	r := newRouter(store)

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/slots/"+slot.ID, "").Code)
	assert.Equal(t, 0, store.CountSlots(domain.SlotAvailable))
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/slots/"+slot.ID, "").Code)
}

func TestStoreUnavailable(t *testing.T) {
	store := memstore.New()
	store.Err = errors.Join(storage.ErrUnavailable, errors.New("dial tcp: connection refused"))
	r := newRouter(store)

	assert.Equal(t, http.StatusServiceUnavailable, do(r, http.MethodGet, "/slots", "").Code)
}
