package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trekatlas/trekatlas/internal/api/middleware"
	"github.com/trekatlas/trekatlas/internal/api/models"
)

func TestRecovery_WritesProblemOnPanic(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	handler := middleware.RequestID(
		middleware.Recovery(log)(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			panic("route index out of range")
		})),
	)

	req := httptest.NewRequest(http.MethodGet, "/v1/treks/trk_everest/camera", http.NoBody)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var problem models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "/v1/treks/trk_everest/camera", problem.Instance)
	assert.Contains(t, problem.TraceID, "req_")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "panic recovered", entry["message"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/v1/treks/trk_everest/camera", entry["path"])
	assert.NotEmpty(t, entry["stack"])
}

func TestRecovery_PassesThroughNormalRequests(t *testing.T) {
	handler := middleware.Recovery(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/treks", http.NoBody)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecovery_RethrowsAbortHandler(t *testing.T) {
	handler := middleware.Recovery(zerolog.Nop())(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/treks", http.NoBody)
	rec := httptest.NewRecorder()

	defer func() {
		r := recover()
		require.NotNil(t, r, "ErrAbortHandler must propagate")
		assert.Equal(t, http.ErrAbortHandler, r)
	}()

	handler.ServeHTTP(rec, req)
}
