package predictor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/nba-oracle/internal/models"
)

// CircuitState represents the state of the circuit breaker
type CircuitState int

const (
	// CircuitClosed means calls pass through
	CircuitClosed CircuitState = iota
	// CircuitHalfOpen means one trial call is allowed after the cooldown
	CircuitHalfOpen
	// CircuitOpen means calls are refused
	CircuitOpen
)

// String returns string representation of circuit state
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "CLOSED"
	case CircuitHalfOpen:
		return "HALF_OPEN"
	case CircuitOpen:
		return "OPEN"
	default:
		return "UNKNOWN"
	}
}

// CircuitBreakerConfig defines circuit breaker thresholds
type CircuitBreakerConfig struct {
	MaxFailureCount   int
	FailureTimeWindow time.Duration
	CooldownPeriod    time.Duration
}

// DefaultCircuitBreakerConfig returns the thresholds used for remote predictors
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		MaxFailureCount:   5,
		FailureTimeWindow: time.Minute,
		CooldownPeriod:    30 * time.Second,
	}
}

// CircuitBreaker refuses calls to a failing predictor until a cooldown has passed
type CircuitBreaker struct {
	next            Predictor
	config          CircuitBreakerConfig
	state           CircuitState
	failureCount    int
	lastFailureTime time.Time
	openedAt        time.Time
	lastError       error
	mu              sync.Mutex
	logger          *logrus.Logger
	now             func() time.Time
}

// NewCircuitBreaker wraps next with a circuit breaker
func NewCircuitBreaker(next Predictor, config CircuitBreakerConfig, logger *logrus.Logger) *CircuitBreaker {
	if logger == nil {
		logger = logrus.New()
	}
	return &CircuitBreaker{
		next:   next,
		config: config,
		state:  CircuitClosed,
		logger: logger,
		now:    time.Now,
	}
}

// PredictWinProbability forwards the call unless the circuit is open
func (cb *CircuitBreaker) PredictWinProbability(ctx context.Context, features models.FeatureVector) (float64, error) {
	if err := cb.allow(); err != nil {
		return 0, err
	}

	p, err := cb.next.PredictWinProbability(ctx, features)
	switch {
	case err == nil:
		cb.RecordSuccess()
	case errors.Is(err, context.Canceled), errors.Is(err, ErrFeatureOrderMismatch):
		// not a sign of an unhealthy service
	default:
		cb.RecordFailure(err)
	}
	return p, err
}

func (cb *CircuitBreaker) allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != CircuitOpen {
		return nil
	}
	if cb.now().Sub(cb.openedAt) < cb.config.CooldownPeriod {
		return fmt.Errorf("%w: %v", ErrCircuitOpen, cb.lastError)
	}

	cb.state = CircuitHalfOpen
	cb.logger.Info("Predictor circuit breaker entering half-open state after cooldown")
	return nil
}

// RecordFailure increments the failure count and opens the circuit when the threshold is reached
// within the time window. A failure while half-open reopens it immediately.
func (cb *CircuitBreaker) RecordFailure(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.now()
	if now.Sub(cb.lastFailureTime) > cb.config.FailureTimeWindow {
		cb.failureCount = 0
	}
	cb.failureCount++
	cb.lastFailureTime = now
	cb.lastError = err

	cb.logger.WithFields(logrus.Fields{
		"failure_count": cb.failureCount,
		"max_allowed":   cb.config.MaxFailureCount,
		"error":         err.Error(),
	}).Warn("Predictor failure recorded")

	if cb.state == CircuitHalfOpen || cb.failureCount >= cb.config.MaxFailureCount {
		cb.openLocked(now)
	}
}

// RecordSuccess closes the circuit and resets the failure count
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != CircuitClosed {
		cb.logger.WithField("old_state", cb.state.String()).Info("Predictor circuit breaker closed")
	}
	cb.state = CircuitClosed
	cb.failureCount = 0
}

// GetState returns current circuit state
func (cb *CircuitBreaker) GetState() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset manually resets circuit breaker to closed state
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = CircuitClosed
	cb.failureCount = 0
	cb.lastError = nil
}

func (cb *CircuitBreaker) openLocked(now time.Time) {
	if cb.state == CircuitOpen {
		return
	}
	oldState := cb.state
	cb.state = CircuitOpen
	cb.openedAt = now

	cb.logger.WithFields(logrus.Fields{
		"old_state":       oldState.String(),
		"failure_count":   cb.failureCount,
		"cooldown_period": cb.config.CooldownPeriod,
		"last_error":      cb.lastError.Error(),
	}).Error("Predictor circuit breaker opened")
}

// HealthCheck reports an open circuit, otherwise delegates to the wrapped predictor
func (cb *CircuitBreaker) HealthCheck(ctx context.Context) error {
	if cb.GetState() == CircuitOpen {
		return ErrCircuitOpen
	}
	if hc, ok := cb.next.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

// ModelInfo delegates to the wrapped predictor
func (cb *CircuitBreaker) ModelInfo(ctx context.Context) (*ModelInfo, error) {
	if d, ok := cb.next.(SchemaDescriber); ok {
		return d.ModelInfo(ctx)
	}
	return nil, fmt.Errorf("%w: predictor does not describe its model", ErrInvalidResponse)
}
