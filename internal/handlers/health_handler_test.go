// internal/handlers/health_handler_test.go
package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/resell-orders/internal/handlers"
	"github.com/ammerola/resell-orders/internal/pkg/config"
	"github.com/ammerola/resell-orders/test/helpers"
	"github.com/ammerola/resell-orders/test/mocks"
)

func TestHealthHandler_Health(t *testing.T) {
	tests := []struct {
		name           string
		dbErr          error
		stopRedis      bool
		expectedStatus int
		expectedState  string
	}{
		{name: "all_healthy", expectedStatus: http.StatusOK, expectedState: "healthy"},
		{name: "database_down", dbErr: errors.New("connection refused"), expectedStatus: http.StatusServiceUnavailable, expectedState: "degraded"},
		{name: "redis_down", stopRedis: true, expectedStatus: http.StatusServiceUnavailable, expectedState: "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			db := mocks.NewMockDatabase(ctrl)
			db.EXPECT().Ping(gomock.Any()).Return(tt.dbErr)
			if tt.dbErr == nil {
				db.EXPECT().Health(gomock.Any()).Return(map[string]interface{}{"total_connections": int32(4)})
			}

			tr := helpers.SetupTestRedis(t)
			if tt.stopRedis {
				tr.Server.Close()
			}

			handler := handlers.NewHealthHandler(db, tr.Client, nil, helpers.LoadTestConfig(), helpers.TestLogger())
			w := httptest.NewRecorder()
			handler.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)

			var status handlers.HealthStatus
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
			assert.Equal(t, tt.expectedState, status.Status)
			assert.Contains(t, status.Services, "database")
			assert.Contains(t, status.Services, "redis")
		})
	}
}

func TestHealthHandler_MemoryStore(t *testing.T) {
	cfg := helpers.LoadTestConfig()
	cfg.Store.Driver = config.DriverMemory
	handler := handlers.NewHealthHandler(nil, nil, nil, cfg, helpers.TestLogger())

	w := httptest.NewRecorder()
	handler.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var status handlers.HealthStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "memory", status.Store)
	assert.Empty(t, status.Services)

	w = httptest.NewRecorder()
	handler.Readiness(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthHandler_Readiness(t *testing.T) {
	ctrl := gomock.NewController(t)
	db := mocks.NewMockDatabase(ctrl)
	db.EXPECT().Ping(gomock.Any()).Return(errors.New("starting up"))

	client := redis.NewClient(&redis.Options{Addr: helpers.SetupTestRedis(t).Server.Addr()})
	t.Cleanup(func() { client.Close() })

	handler := handlers.NewHealthHandler(db, client, nil, helpers.LoadTestConfig(), helpers.TestLogger())
	w := httptest.NewRecorder()
	handler.Readiness(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body struct {
		Ready   bool              `json:"ready"`
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Ready)
	assert.Equal(t, "not ready", body.Details["database"])
	assert.Equal(t, "ready", body.Details["redis"])
}
