package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/MHS-BookingService/pkg/logger"
)

func TestHandler(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
		wantBody   string
	}{
		{"ok", nil, http.StatusOK, statusOK},
		{"unavailable", errors.New("connection refused"), http.StatusServiceUnavailable, statusUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(PingFunc(func(context.Context) error { return tt.pingErr }), "postgres", logger.NewNop())

			rec := httptest.NewRecorder()
			h.Handle(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body StatusResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body.Status)
			assert.Equal(t, "postgres", body.Storage)
		})
	}
}
