// Package predictor provides clients for the win probability model.
package predictor

import "errors"

var (
	// ErrPredictorUnavailable indicates the model service is unreachable or unhealthy
	ErrPredictorUnavailable = errors.New("predictor unavailable")

	// ErrInvalidProbability indicates a returned probability is not a finite value in [0, 1]
	ErrInvalidProbability = errors.New("invalid probability")

	// ErrFeatureOrderMismatch indicates the model was built against a different feature schema
	ErrFeatureOrderMismatch = errors.New("feature order mismatch")

	// ErrConnectionFailed indicates the client could not be set up
	ErrConnectionFailed = errors.New("predictor connection failed")

	// ErrInvalidResponse indicates a malformed response from the model service
	ErrInvalidResponse = errors.New("invalid response from predictor")

	// ErrCircuitOpen indicates requests are being refused after repeated failures
	ErrCircuitOpen = errors.New("circuit breaker open")
)
