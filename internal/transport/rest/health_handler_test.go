package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_HealthHandler(t *testing.T) {
	// given
	mux := chi.NewRouter()
	NewHealthHandler(testLogger()).RegisterRoutes(mux)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	// when
	mux.ServeHTTP(rec, req)
	// then
	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status        string `json:"status"`
		Timestamp     string `json:"timestamp"`
		UptimeSeconds *int64 `json:"uptime_seconds"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.NotEmpty(t, body.Timestamp)
	require.NotNil(t, body.UptimeSeconds)
	assert.GreaterOrEqual(t, *body.UptimeSeconds, int64(0))
}
