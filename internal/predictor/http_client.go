package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/nba-oracle/internal/config"
	"github.com/yourusername/nba-oracle/internal/models"
)

const apiKeyHeader = "X-API-Key"

// HTTPClient calls the model server's JSON API
type HTTPClient struct {
	transport    *RateLimitedHTTPClient
	baseURL      string
	apiKey       string
	modelVersion string
	logger       *logrus.Logger
}

// PredictRequest is the body of POST /api/v1/predict
type PredictRequest struct {
	FeatureNames []string  `json:"feature_names"`
	Features     []float64 `json:"features"`
	ModelVersion string    `json:"model_version,omitempty"`
}

// PredictResponse is the reply of POST /api/v1/predict
type PredictResponse struct {
	Probability  *float64 `json:"probability"`
	ModelVersion string   `json:"model_version"`
}

// NewHTTPClient creates a new HTTP client for the model server
func NewHTTPClient(cfg *config.PredictorConfig, logger *logrus.Logger) *HTTPClient {
	tcfg := DefaultTransportConfig()
	tcfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	tcfg.MaxRetries = cfg.RetryAttempts
	tcfg.RateLimit = cfg.RequestsPerSecond
	tcfg.Burst = cfg.Burst
	return NewHTTPClientWithTransport(cfg, NewRateLimitedHTTPClient(tcfg, logger), logger)
}

// NewHTTPClientWithTransport creates an HTTP client over an existing transport
func NewHTTPClientWithTransport(cfg *config.PredictorConfig, transport *RateLimitedHTTPClient, logger *logrus.Logger) *HTTPClient {
	if logger == nil {
		logger = logrus.New()
	}
	return &HTTPClient{
		transport:    transport,
		baseURL:      strings.TrimRight(cfg.HTTPAddress, "/"),
		apiKey:       cfg.APIKey,
		modelVersion: cfg.ModelVersion,
		logger:       logger,
	}
}

// PredictWinProbability implements Predictor
func (c *HTTPClient) PredictWinProbability(ctx context.Context, features models.FeatureVector) (float64, error) {
	start := time.Now()
	defer func() {
		PredictorLatency.WithLabelValues("http").Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(PredictRequest{
		FeatureNames: models.FeatureNames(),
		Features:     features.Values(),
		ModelVersion: c.modelVersion,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/predict", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		PredictorErrorsTotal.WithLabelValues("predict", "network").Inc()
		return 0, fmt.Errorf("%w: %v", ErrPredictorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		PredictorErrorsTotal.WithLabelValues("predict", "http_error").Inc()
		if resp.StatusCode == http.StatusUnprocessableEntity {
			return 0, fmt.Errorf("%w: %s", ErrFeatureOrderMismatch, strings.TrimSpace(string(msg)))
		}
		return 0, fmt.Errorf("%w: status %d: %s", ErrPredictorUnavailable, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		PredictorErrorsTotal.WithLabelValues("predict", "decode").Inc()
		return 0, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if out.Probability == nil {
		return 0, fmt.Errorf("%w: missing probability", ErrInvalidResponse)
	}
	if err := ValidateProbability(*out.Probability); err != nil {
		PredictorErrorsTotal.WithLabelValues("predict", "invalid_probability").Inc()
		return 0, err
	}

	PredictorRequestsTotal.WithLabelValues("http", "false").Inc()
	return *out.Probability, nil
}

// ModelInfo implements SchemaDescriber
func (c *HTTPClient) ModelInfo(ctx context.Context) (*ModelInfo, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/model", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPredictorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: model info request failed with status %d", ErrPredictorUnavailable, resp.StatusCode)
	}

	var info ModelInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &info, nil
}

// HealthCheck checks model server health
func (c *HTTPClient) HealthCheck(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPredictorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrPredictorUnavailable, resp.StatusCode)
	}
	return nil
}

// Close releases idle connections
func (c *HTTPClient) Close() error {
	return c.transport.Close()
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}
	return req, nil
}
