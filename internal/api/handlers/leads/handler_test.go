package leads

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	leadsService "github.com/m04kA/MHS-BookingService/internal/service/leads"
	"github.com/m04kA/MHS-BookingService/internal/testutil/memstore"
	"github.com/m04kA/MHS-BookingService/pkg/logger"
)

func newRouter(store *memstore.Store) *mux.Router {
	svc := leadsService.NewService(store.Leads(), store.Bookings(), store.Slots(), store, logger.NewNop())
	h := NewHandler(svc, logger.NewNop())
	r := mux.NewRouter()
	r.HandleFunc("/leads", h.Submit).Methods(http.MethodPost)
	r.HandleFunc("/leads", h.List).Methods(http.MethodGet)
	r.HandleFunc("/leads/{leadId}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/leads/{leadId}", h.Delete).Methods(http.MethodDelete)
	return r
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func submit(t *testing.T, r http.Handler, body string) LeadResponse {
	t.Helper()
	rec := do(r, http.MethodPost, "/leads", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var lead LeadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lead))
	return lead
}

func TestSubmit_ComputesScore(t *testing.T) {
	r := newRouter(memstore.New())

	lead := submit(t, r, `{"name":"Jane","email":"Jane@Example.com","timeline":"Immediate","financingStatus":"Ready to proceed","lotStatus":"Owned"}`)

	assert.Equal(t, "jane@example.com", lead.Email)
	assert.Equal(t, domain.MaxQualificationScore, lead.QualificationScore)
	assert.Equal(t, domain.DefaultLeadStatus, lead.Status)
}

func TestSubmit_ResubmissionUpdates(t *testing.T) {
	store := memstore.New()
	r := newRouter(store)

	first := submit(t, r, `{"name":"Jane","email":"jane@example.com","timeline":"6-12 months"}`)
	second := submit(t, r, `{"name":"Jane D","email":"JANE@example.com","timeline":"Immediate"}`)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 15, second.QualificationScore)
	assert.Equal(t, 1, store.CountLeads())
}

func TestSubmit_Invalid(t *testing.T) {
	r := newRouter(memstore.New())

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/leads", `{"name":"","email":"a@b.c"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/leads", `{"name":"Jane","email":"nope"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/leads", `[]`).Code)
}

func TestListAndGet(t *testing.T) {
	r := newRouter(memstore.New())
	hot := submit(t, r, `{"name":"Hot","email":"hot@example.com","timeline":"Immediate","financingStatus":"Pre-approved"}`)
	submit(t, r, `{"name":"Cold","email":"cold@example.com"}`)

	rec := do(r, http.MethodGet, "/leads?minScore=20", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []LeadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, hot.ID, list[0].ID)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/leads?minScore=99", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/leads?minScore=high", "").Code)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/leads/"+hot.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/leads/missing", "").Code)
}

func TestDelete_ReleasesBookedSlots(t *testing.T) {
	store := memstore.New()
	r := newRouter(store)
	lead := submit(t, r, `{"name":"Jane","email":"jane@example.com"}`)

	slot := store.AddSlot(domain.Slot{WhenUTC: time.Date(2025, 3, 3, 15, 0, 0, 0, time.UTC), Status: domain.SlotBooked})
	_, err := store.Bookings().Create(context.Background(), &domain.Booking{SlotID: slot.ID, LeadID: lead.ID})
	require.NoError(t, err)

	rec := do(r, http.MethodDelete, "/leads/"+lead.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body DeleteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.ReleasedSlots)
	assert.Equal(t, 1, store.CountSlots(domain.SlotAvailable))
	assert.Equal(t, 0, store.CountBookings())
	assert.Equal(t, 0, store.CountLeads())

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/leads/"+lead.ID, "").Code)
}
