package predictor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/nba-oracle/internal/config"
	"github.com/yourusername/nba-oracle/internal/models"
)

func newTestHTTPClient(t *testing.T, handler http.Handler) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.PredictorConfig{
		HTTPAddress:    srv.URL + "/",
		APIKey:         "secret",
		ModelVersion:   "xgb-2024",
		TimeoutSeconds: 5,
	}
	tcfg := DefaultTransportConfig()
	tcfg.MaxRetries = 0
	tcfg.Timeout = 5 * time.Second
	return NewHTTPClientWithTransport(cfg, NewRateLimitedHTTPClient(tcfg, nil), nil)
}

// TestHTTPClientPredict tests request shape and response decoding
func TestHTTPClientPredict(t *testing.T) {
	var got PredictRequest
	var apiKey string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/predict", func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get(apiKeyHeader)
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"probability": 0.71})
	})

	client := newTestHTTPClient(t, mux)
	p, err := client.PredictWinProbability(context.Background(), sampleVector())
	require.NoError(t, err)
	assert.InDelta(t, 0.71, p, 1e-9)

	assert.Equal(t, "secret", apiKey)
	assert.Equal(t, models.FeatureNames(), got.FeatureNames)
	assert.Equal(t, sampleVector().Values(), got.Features)
	assert.Equal(t, "xgb-2024", got.ModelVersion)
}

// TestHTTPClientErrors tests the mapping of server responses to errors
func TestHTTPClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "negative probability", status: http.StatusOK, body: `{"probability": -0.1}`, wantErr: ErrInvalidProbability},
		{name: "missing probability", status: http.StatusOK, body: `{}`, wantErr: ErrInvalidResponse},
		{name: "malformed body", status: http.StatusOK, body: `not json`, wantErr: ErrInvalidResponse},
		{name: "schema rejected", status: http.StatusUnprocessableEntity, body: `unexpected feature rest_days`, wantErr: ErrFeatureOrderMismatch},
		{name: "server error", status: http.StatusInternalServerError, body: `boom`, wantErr: ErrPredictorUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestHTTPClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			_, err := client.PredictWinProbability(context.Background(), sampleVector())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// TestHTTPClientModelInfoAndHealth tests the schema and health endpoints
func TestHTTPClientModelInfoAndHealth(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/model", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ModelInfo{ModelVersion: "xgb-2024", FeatureNames: []string{"rest_days", "is_home"}})
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})

	client := newTestHTTPClient(t, mux)
	info, err := VerifySchema(context.Background(), client)
	assert.ErrorIs(t, err, ErrFeatureOrderMismatch)
	require.NotNil(t, info)
	assert.Equal(t, "xgb-2024", info.ModelVersion)

	assert.NoError(t, client.HealthCheck(context.Background()))
	healthy.Store(false)
	assert.ErrorIs(t, client.HealthCheck(context.Background()), ErrPredictorUnavailable)
}

// TestTransportCircuitBreaker tests that repeated server failures open the circuit
func TestTransportCircuitBreaker(t *testing.T) {
	var calls atomic.Int32
	var failing atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if failing.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	cfg := DefaultTransportConfig()
	cfg.MaxRetries = 0
	cfg.CircuitBreakerMax = 2
	cfg.CircuitCooldown = time.Hour
	client := NewRateLimitedHTTPClient(cfg, nil)

	// client errors do not count against the circuit
	for i := 0; i < 3; i++ {
		resp, err := client.Get(context.Background(), srv.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.Equal(t, int32(3), calls.Load())

	failing.Store(true)
	for i := 0; i < 2; i++ {
		_, err := client.Get(context.Background(), srv.URL)
		require.Error(t, err)
	}

	_, err := client.Get(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(5), calls.Load())
}
