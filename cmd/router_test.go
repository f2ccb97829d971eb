package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/MHS-BookingService/internal/api/handlers/health"
	"github.com/m04kA/MHS-BookingService/internal/config"
	"github.com/m04kA/MHS-BookingService/internal/domain"
	"github.com/m04kA/MHS-BookingService/internal/testutil/memstore"
	"github.com/m04kA/MHS-BookingService/pkg/logger"
	"github.com/m04kA/MHS-BookingService/pkg/metrics"
)

func newTestRouter(t *testing.T, store *memstore.Store) *mux.Router {
	t.Helper()

	a := &app{
		cfg:       config.Default(),
		log:       logger.NewNop(),
		metrics:   metrics.New("test", prometheus.NewRegistry()),
		slots:     store.Slots(),
		bookings:  store.Bookings(),
		leads:     store.Leads(),
		salesmen:  store.Salesmen(),
		txManager: store,
		pinger:    health.PingFunc(func(context.Context) error { return nil }),
	}
	c, err := a.buildComponents()
	require.NoError(t, err)
	return newRouter(a, c)
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestRouter_BookingFlow(t *testing.T) {
	store := memstore.New()
	r := newTestRouter(t, store)
	when := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Hour)

	rec := do(t, r, http.MethodPost, "/api/v1/salesmen", map[string]any{
		"name":  "Dana Builder",
		"email": "dana@homes.example",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	salesman := decode[map[string]any](t, rec)
	salesmanID := salesman["id"].(string)

	rec = do(t, r, http.MethodPost, "/api/v1/salesmen/"+salesmanID+"/availability", map[string]any{
		"instants": []string{when.Format(time.RFC3339)},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, r, http.MethodGet, "/api/v1/slots/free", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	free := decode[struct {
		Slots []struct {
			ID      string `json:"id"`
			WhenUTC string `json:"whenUtc"`
		} `json:"slots"`
	}](t, rec)
	require.Len(t, free.Slots, 1)
	assert.Equal(t, when.Format(time.RFC3339), free.Slots[0].WhenUTC)

	book := map[string]any{
		"whenUtc": when.Format(time.RFC3339),
		"name":    "Pat Owner",
		"email":   "pat@example.com",
		"service": "custom_home",
	}
	rec = do(t, r, http.MethodPost, "/api/v1/bookings", book)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	booked := decode[map[string]any](t, rec)
	assert.Equal(t, free.Slots[0].ID, booked["slotId"])
	assert.Equal(t, "booked", booked["status"])

	book["email"] = "other@example.com"
	rec = do(t, r, http.MethodPost, "/api/v1/bookings", book)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 1, store.CountBookings())

	rec = do(t, r, http.MethodDelete, "/api/v1/slots/"+free.Slots[0].ID+"/booking", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 0, store.CountBookings())
	assert.Equal(t, 1, store.CountSlots(domain.SlotAvailable))
}

func TestRouter_FreeSlotsRouteTakesPrecedence(t *testing.T) {
	r := newTestRouter(t, memstore.New())

	rec := do(t, r, http.MethodGet, "/api/v1/slots/free?from=2030-01-02T00:00:00Z&to=2030-01-01T00:00:00Z", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter(t, memstore.New())

	rec := do(t, r, http.MethodGet, "/api/v1/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), config.DriverPostgres)
}

func TestRouter_BookingTooSoon(t *testing.T) {
	r := newTestRouter(t, memstore.New())

	rec := do(t, r, http.MethodPost, "/api/v1/bookings", map[string]any{
		"whenUtc": time.Now().UTC().Add(10 * time.Minute).Format(time.RFC3339),
		"name":    "Pat Owner",
		"email":   "pat@example.com",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
