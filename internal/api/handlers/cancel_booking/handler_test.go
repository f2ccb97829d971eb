package cancel_booking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	cancelBooking "github.com/m04kA/MHS-BookingService/internal/usecase/cancel_booking"
	"github.com/m04kA/MHS-BookingService/pkg/logger"
)

type stubUseCase struct {
	got  *cancelBooking.Request
	resp *cancelBooking.Response
	err  error
}

func (s *stubUseCase) Execute(_ context.Context, req *cancelBooking.Request) (*cancelBooking.Response, error) {
	s.got = req
	return s.resp, s.err
}

func serve(uc *stubUseCase) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/slots/{slotId}/booking", NewHandler(uc, logger.NewNop()).Handle).Methods(http.MethodDelete)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/slots/slot-1/booking", nil))
	return rec
}

func TestHandler_Success(t *testing.T) {
	lead := "lead-1"
	uc := &stubUseCase{resp: &cancelBooking.Response{SlotID: "slot-1", LeadID: &lead, Status: domain.SlotAvailable}}

	rec := serve(uc)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "slot-1", uc.got.SlotID)

	var body CancelResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "available", body.Status)
	assert.Equal(t, "lead-1", *body.LeadID)
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", cancelBooking.ErrSlotNotFound, http.StatusNotFound},
		{"not booked", fmt.Errorf("%w: status available", cancelBooking.ErrNotBooked), http.StatusConflict},
		{"store unavailable", domain.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{"internal", cancelBooking.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, serve(&stubUseCase{err: tt.err}).Code)
		})
	}
}
