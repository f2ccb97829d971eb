package book_appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	bookAppointment "github.com/m04kA/MHS-BookingService/internal/usecase/book_appointment"
	"github.com/m04kA/MHS-BookingService/pkg/logger"
)

type stubUseCase struct {
	got  *bookAppointment.Request
	resp *bookAppointment.Response
	err  error
}

func (s *stubUseCase) Execute(_ context.Context, req *bookAppointment.Request) (*bookAppointment.Response, error) {
	s.got = req
	return s.resp, s.err
}

const validBody = `{
	"whenUtc": "2025-03-03T09:00:00-06:00",
	"name": "Jane Doe",
	"email": "jane@example.com",
	"timeline": "Immediate",
	"financingStatus": "Pre-approved",
	"lotStatus": "Owned"
}`

func serve(t *testing.T, uc *stubUseCase, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewHandler(uc, logger.NewNop())
	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body)))
	return rec
}

func TestHandler_Success(t *testing.T) {
	when := time.Date(2025, 3, 3, 15, 0, 0, 0, time.UTC)
	salesman := "s-1"
	uc := &stubUseCase{resp: &bookAppointment.Response{
		SlotID:             "slot-1",
		SalesmanID:         &salesman,
		LeadID:             "lead-1",
		WhenUTC:            when,
		QualificationScore: 40,
		BookedAt:           when.Add(-48 * time.Hour),
	}}

	rec := serve(t, uc, validBody)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, when, uc.got.WhenUTC, "время приводится к UTC")
	assert.Equal(t, "jane@example.com", uc.got.Contact.Email)

	var body BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "slot-1", body.SlotID)
	assert.Equal(t, "2025-03-03T15:00:00Z", body.WhenUTC)
	assert.Equal(t, "booked", body.Status)
	assert.Equal(t, 40, body.QualificationScore)
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{"bad json", `{`, nil, http.StatusBadRequest},
		{"bad time", `{"whenUtc":"tomorrow"}`, nil, http.StatusBadRequest},
		{"invalid timing", validBody, fmt.Errorf("%w: too soon", domain.ErrInvalidTiming), http.StatusBadRequest},
		{"invalid input", validBody, fmt.Errorf("%w: email", bookAppointment.ErrInvalidInput), http.StatusBadRequest},
		{"slot unavailable", validBody, fmt.Errorf("%w: taken", domain.ErrSlotUnavailable), http.StatusConflict},
		{"store unavailable", validBody, fmt.Errorf("%w: dial", domain.ErrStoreUnavailable), http.StatusServiceUnavailable},
		{"internal", validBody, bookAppointment.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, &stubUseCase{err: tt.err}, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
