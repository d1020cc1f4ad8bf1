package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	return response["data"].(map[string]interface{})
}

func TestHandleHealth(t *testing.T) {
	handler := NewHealthHandler(nil, nil, StatusInfo{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handler.HandleHealth(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "healthy", data["status"])
	assert.NotEmpty(t, data["timestamp"])
}

func TestHandleReadiness(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name       string
		setup      func(mock sqlmock.Sqlmock)
		wantCode   int
		wantStatus string
	}{
		{
			name: "healthy when database is available",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectPing()
				mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
			},
			wantCode:   http.StatusOK,
			wantStatus: "healthy",
		},
		{
			name: "unhealthy when database ping fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectPing().WillReturnError(sql.ErrConnDone)
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unhealthy",
		},
		{
			name: "unhealthy when database query fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectPing()
				mock.ExpectQuery("SELECT 1").WillReturnError(sql.ErrConnDone)
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
			require.NoError(t, err)
			defer db.Close()
			tt.setup(mock)

			handler := NewHealthHandler(db, nil, StatusInfo{}, logger)
			req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
			w := httptest.NewRecorder()

			handler.HandleReadiness(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			data := decodeData(t, w)
			assert.Equal(t, tt.wantStatus, data["status"])
			checks := data["checks"].(map[string]interface{})
			assert.Equal(t, tt.wantStatus, checks["database"])
			assert.NotContains(t, checks, "redis")
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}

	t.Run("healthy when no database configured", func(t *testing.T) {
		handler := NewHealthHandler(nil, nil, StatusInfo{}, logger)

		req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
		w := httptest.NewRecorder()

		handler.HandleReadiness(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeData(t, w)
		assert.Equal(t, "healthy", data["status"])
	})

	t.Run("unhealthy when redis is unreachable", func(t *testing.T) {
		client := redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 50 * time.Millisecond,
			MaxRetries:  -1,
		})
		defer client.Close()

		handler := NewHealthHandler(nil, client, StatusInfo{}, logger)
		req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
		w := httptest.NewRecorder()

		handler.HandleReadiness(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		checks := decodeData(t, w)["checks"].(map[string]interface{})
		assert.Equal(t, "healthy", checks["database"])
		assert.Equal(t, "unhealthy", checks["redis"])
	})
}

func TestHandleStatus(t *testing.T) {
	handler := NewHealthHandler(nil, nil, StatusInfo{
		Version:         "1.4.0",
		Environment:     "production",
		ExpectedVersion: "2.1",
		ContractSource:  "fpds",
		LockBackend:     "redis",
		Workers:         4,
	}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()

	handler.HandleStatus(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "2.1", data["expected_worksheet_version"])
	assert.Equal(t, "fpds", data["contract_source"])
	assert.Equal(t, float64(4), data["workers"])
}
