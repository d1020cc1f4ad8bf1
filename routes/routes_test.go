package routes

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/ciw-intake/handlers"
	"github.com/upb/ciw-intake/internal/observability"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	metrics.IncrementOutcome("successfully_processed")

	health := handlers.NewHealthHandler(nil, nil, handlers.StatusInfo{ExpectedVersion: "2.1"}, zap.NewNop())
	return SetupRoutes(health, reg, zap.NewNop())
}

func TestSetupRoutes(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		path     string
		wantCode int
		contains string
	}{
		{"/health", http.StatusOK, `"healthy"`},
		{"/health/ready", http.StatusOK, `"database":"healthy"`},
		{"/status", http.StatusOK, `"expected_worksheet_version":"2.1"`},
		{"/metrics", http.StatusOK, `ciw_intake_files_processed_total{code="successfully_processed"} 1`},
		{"/unknown", http.StatusNotFound, "endpoint not found"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			body, err := io.ReadAll(w.Body)
			require.NoError(t, err)
			assert.Contains(t, string(body), tt.contains)
		})
	}
}

func TestSetupRoutes_MethodNotAllowed(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
