package run_maintenance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	"github.com/m04kA/MHS-BookingService/internal/usecase/maintenance"
	"github.com/m04kA/MHS-BookingService/pkg/logger"
)

type stubUseCase struct {
	gotNow time.Time
	report *maintenance.Report
	err    error
}

func (s *stubUseCase) PruneAndReconcile(_ context.Context, now time.Time) (*maintenance.Report, error) {
	s.gotNow = now
	return s.report, s.err
}

func serve(uc *stubUseCase, now time.Time) *httptest.ResponseRecorder {
	h := NewHandler(uc, logger.NewNop())
	h.now = func() time.Time { return now }
	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodPost, "/api/v1/maintenance/run", nil))
	return rec
}

func TestHandler_Success(t *testing.T) {
	now := time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)
	uc := &stubUseCase{report: &maintenance.Report{RanAt: now, Pruned: 3, Assigned: 2, Unassigned: 1}}

	rec := serve(uc, now)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, now, uc.gotNow)

	var body ReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(3), body.Pruned)
	assert.Equal(t, 2, body.Assigned)
	assert.Equal(t, 1, body.Unassigned)
	assert.Equal(t, "2025-03-03T12:00:00Z", body.RanAt)
}

func TestHandler_Errors(t *testing.T) {
	now := time.Now()

	rec := serve(&stubUseCase{err: fmt.Errorf("%w: dial", domain.ErrStoreUnavailable)}, now)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(&stubUseCase{err: maintenance.ErrInternal}, now)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
