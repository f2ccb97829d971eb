package generate_slots

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	generateSlots "github.com/m04kA/MHS-BookingService/internal/usecase/generate_slots"
	"github.com/m04kA/MHS-BookingService/pkg/logger"
)

type stubUseCase struct {
	got  *generateSlots.Request
	resp *generateSlots.Response
	err  error
}

func (s *stubUseCase) Execute(_ context.Context, req *generateSlots.Request) (*generateSlots.Response, error) {
	s.got = req
	return s.resp, s.err
}

func serve(uc *stubUseCase, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	NewHandler(uc, logger.NewNop()).Handle(rec, httptest.NewRequest(http.MethodPost, "/api/v1/slots/generate", strings.NewReader(body)))
	return rec
}

func TestHandler_EmptyBodyUsesDefaults(t *testing.T) {
	uc := &stubUseCase{resp: &generateSlots.Response{Strategy: generateSlots.StrategyDefault, Created: 9, Candidates: 9}}

	rec := serve(uc, "")

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, generateSlots.Strategy(""), uc.got.Strategy)
	assert.False(t, uc.got.DryRun)
}

func TestHandler_DryRun(t *testing.T) {
	when := time.Date(2025, 3, 3, 15, 0, 0, 0, time.UTC)
	uc := &stubUseCase{resp: &generateSlots.Response{
		Strategy:   generateSlots.StrategyRoundRobin,
		DryRun:     true,
		Candidates: 1,
		Slots:      []generateSlots.PlannedSlot{{WhenUTC: when}},
	}}

	rec := serve(uc, `{"strategy":"round_robin","days":1,"dryRun":true}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, generateSlots.StrategyRoundRobin, uc.got.Strategy)
	assert.Equal(t, 1, *uc.got.Days)

	var body GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.DryRun)
	require.Len(t, body.Slots, 1)
	assert.Equal(t, "2025-03-03T15:00:00Z", body.Slots[0].WhenUTC)
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{"bad json", `{"days":"x"}`, nil, http.StatusBadRequest},
		{"invalid input", `{}`, generateSlots.ErrInvalidInput, http.StatusBadRequest},
		{"salesman not found", `{}`, generateSlots.ErrSalesmanNotFound, http.StatusNotFound},
		{"salesman inactive", `{}`, generateSlots.ErrSalesmanInactive, http.StatusConflict},
		{"store unavailable", `{}`, domain.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{"internal", `{}`, generateSlots.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, serve(&stubUseCase{err: tt.err}, tt.body).Code)
		})
	}
}
