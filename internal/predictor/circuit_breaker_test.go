package predictor

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/nba-oracle/internal/models"
)

func newTestBreaker(next Predictor) (*CircuitBreaker, *time.Time) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cb := NewCircuitBreaker(next, CircuitBreakerConfig{
		MaxFailureCount:   2,
		FailureTimeWindow: time.Minute,
		CooldownPeriod:    30 * time.Second,
	}, logger)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return now }
	return cb, &now
}

// TestCircuitBreakerOpensAndRecovers tests open, half-open and close transitions
func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	inner := &countingPredictor{err: errors.New("connection refused")}
	cb, now := newTestBreaker(inner)
	ctx := context.Background()
	var fv models.FeatureVector

	_, err := cb.PredictWinProbability(ctx, fv)
	require.Error(t, err)
	assert.Equal(t, CircuitClosed, cb.GetState())

	_, err = cb.PredictWinProbability(ctx, fv)
	require.Error(t, err)
	assert.Equal(t, CircuitOpen, cb.GetState())

	_, err = cb.PredictWinProbability(ctx, fv)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, inner.calls, "open circuit must not reach the predictor")
	assert.ErrorIs(t, cb.HealthCheck(ctx), ErrCircuitOpen)

	// a failed trial call reopens the circuit
	*now = now.Add(31 * time.Second)
	_, err = cb.PredictWinProbability(ctx, fv)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, CircuitOpen, cb.GetState())

	*now = now.Add(31 * time.Second)
	inner.err, inner.p = nil, 0.61
	p, err := cb.PredictWinProbability(ctx, fv)
	require.NoError(t, err)
	assert.Equal(t, 0.61, p)
	assert.Equal(t, CircuitClosed, cb.GetState())
}

// TestCircuitBreakerIgnoresCallerErrors tests that cancellations and schema errors do not count
func TestCircuitBreakerIgnoresCallerErrors(t *testing.T) {
	inner := &countingPredictor{err: context.Canceled}
	cb, _ := newTestBreaker(inner)

	for i := 0; i < 3; i++ {
		_, _ = cb.PredictWinProbability(context.Background(), models.FeatureVector{})
	}
	assert.Equal(t, CircuitClosed, cb.GetState())

	inner.err = ErrFeatureOrderMismatch
	for i := 0; i < 3; i++ {
		_, _ = cb.PredictWinProbability(context.Background(), models.FeatureVector{})
	}
	assert.Equal(t, CircuitClosed, cb.GetState())
}

// TestCircuitBreakerWindow tests that old failures fall out of the window
func TestCircuitBreakerWindow(t *testing.T) {
	cb, now := newTestBreaker(&countingPredictor{})
	cb.RecordFailure(errors.New("timeout"))
	*now = now.Add(2 * time.Minute)
	cb.RecordFailure(errors.New("timeout"))
	assert.Equal(t, CircuitClosed, cb.GetState())

	cb.RecordFailure(errors.New("timeout"))
	assert.Equal(t, CircuitOpen, cb.GetState())
	cb.Reset()
	assert.Equal(t, CircuitClosed, cb.GetState())
	assert.Equal(t, "HALF_OPEN", CircuitHalfOpen.String())
}
