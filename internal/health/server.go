// Package health serves liveness and readiness probes for the oracle and hosts the extra
// routes (metrics, prediction feed) that share its port.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const checkTimeout = 3 * time.Second

// DatabasePinger defines the interface for checking database connectivity.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// PredictorChecker defines the interface for checking the win probability model.
type PredictorChecker interface {
	HealthCheck(ctx context.Context) error
}

// CheckFunc reports a dependency as healthy by returning nil
type CheckFunc func(ctx context.Context) error

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
	Commit    string `json:"commit,omitempty"`
}

// ReadyResponse represents the JSON response for readiness check endpoints.
type ReadyResponse struct {
	Status         string            `json:"status"`
	Service        string            `json:"service"`
	Checks         map[string]string `json:"checks,omitempty"`
	DatasetBuiltAt string            `json:"dataset_built_at,omitempty"`
	Duration       string            `json:"duration,omitempty"`
}

// Config holds the configuration for the health server.
type Config struct {
	ServiceName string
	Version     string
	Commit      string
	Port        string
	Logger      *logrus.Logger
	DB          DatabasePinger
	Predictor   PredictorChecker

	// DatasetBuiltAt returns when the rated dataset was last built, zero if never
	DatasetBuiltAt func() time.Time
	// MaxDatasetAge fails readiness once the dataset is older, zero disables the check
	MaxDatasetAge time.Duration
}

// Server answers probes and serves the mounted routes.
type Server struct {
	cfg    Config
	port   string
	server *http.Server
	logger *logrus.Entry
	checks map[string]CheckFunc
	routes map[string]http.Handler
	now    func() time.Time

	mu    sync.RWMutex
	ready bool
}

// NewServer creates a new health check server.
func NewServer(cfg Config) *Server {
	port := cfg.Port
	if port == "" {
		port = os.Getenv("HEALTH_PORT")
	}
	if port == "" {
		port = "8080"
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.New()
	}

	s := &Server{
		cfg:    cfg,
		port:   port,
		logger: log.WithField("component", "health"),
		checks: make(map[string]CheckFunc),
		routes: make(map[string]http.Handler),
		now:    time.Now,
	}
	if cfg.DB != nil {
		s.AddCheck("database", cfg.DB.Ping)
	}
	if cfg.Predictor != nil {
		s.AddCheck("predictor", cfg.Predictor.HealthCheck)
	}
	if cfg.DatasetBuiltAt != nil {
		s.AddCheck("dataset", s.checkDataset)
	}
	return s
}

// AddCheck registers a named readiness check. It must be called before Start.
func (s *Server) AddCheck(name string, check CheckFunc) {
	s.checks[name] = check
}

// Handle mounts an additional handler, such as metrics or the prediction feed, on the server.
// It must be called before Start.
func (s *Server) Handle(pattern string, handler http.Handler) {
	s.routes[pattern] = handler
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/live", s.handleLive)
	mux.HandleFunc("/ready", s.handleReady)
	for pattern, handler := range s.routes {
		mux.Handle(pattern, handler)
	}
	return mux
}

// SetReady marks the server as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady returns whether the server is ready.
func (s *Server) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Start serves in the background until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		s.logger.WithFields(logrus.Fields{
			"port":   s.port,
			"checks": s.checkNames(),
			"routes": len(s.routes),
		}).Info("Health server starting")

		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("Health server error")
		}
	}()

	go func() {
		<-ctx.Done()
		_ = s.Shutdown()
	}()

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("Health server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   s.cfg.ServiceName,
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Version:   s.cfg.Version,
		Commit:    s.cfg.Commit,
	})
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Service: s.cfg.ServiceName})
}

// handleReady runs every registered check concurrently and fails if any of them fails or the
// server has not been marked ready
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	checks := s.runChecks(r.Context())

	healthy := true
	for _, result := range checks {
		if result != "ok" {
			healthy = false
		}
	}
	if s.IsReady() {
		checks["service"] = "ok"
	} else {
		checks["service"] = "not_ready"
		healthy = false
	}

	response := ReadyResponse{
		Status:   "ok",
		Service:  s.cfg.ServiceName,
		Checks:   checks,
		Duration: time.Since(start).String(),
	}
	if s.cfg.DatasetBuiltAt != nil {
		if built := s.cfg.DatasetBuiltAt(); !built.IsZero() {
			response.DatasetBuiltAt = built.UTC().Format(time.RFC3339)
		}
	}

	code := http.StatusOK
	if !healthy {
		response.Status = "not_ready"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, response)
}

func (s *Server) runChecks(ctx context.Context) map[string]string {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]string, len(s.checks)+1)
	)
	for name, check := range s.checks {
		wg.Add(1)
		go func(name string, check CheckFunc) {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()

			result := "ok"
			if err := check(checkCtx); err != nil {
				result = fmt.Sprintf("error: %v", err)
				s.logger.WithField("check", name).WithError(err).Warn("Readiness check failed")
			}
			mu.Lock()
			results[name] = result
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()
	return results
}

func (s *Server) checkDataset(ctx context.Context) error {
	built := s.cfg.DatasetBuiltAt()
	if built.IsZero() {
		return errors.New("dataset not built")
	}
	if s.cfg.MaxDatasetAge > 0 {
		if age := s.now().Sub(built); age > s.cfg.MaxDatasetAge {
			return fmt.Errorf("dataset is %s old", age.Truncate(time.Minute))
		}
	}
	return nil
}

func (s *Server) checkNames() []string {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
