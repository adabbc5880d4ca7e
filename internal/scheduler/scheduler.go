// Package scheduler runs ingestion and prediction on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/nba-oracle/internal/datasource"
	"github.com/yourusername/nba-oracle/internal/service"
)

// Ingester loads a game source into storage
type Ingester interface {
	Ingest(ctx context.Context, source datasource.GameSource) (*service.IngestionMetrics, error)
}

// Refresher rebuilds the dataset and scores upcoming fixtures
type Refresher interface {
	RefreshAndPredict(ctx context.Context, source datasource.FixtureSource) (*service.PredictionRun, error)
}

// Scheduler manages scheduled ingestion and prediction jobs
type Scheduler struct {
	cron            *cron.Cron
	logger          *logrus.Entry
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	jobTimeout      time.Duration
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		logger:          logger.WithField("component", "scheduler"),
		jobIDs:          make([]cron.EntryID, 0),
		jobTimeout:      time.Hour,
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleIngestion schedules a periodic load of source into storage
func (s *Scheduler) ScheduleIngestion(cronExpression string, ingester Ingester, source datasource.GameSource) (cron.EntryID, error) {
	return s.schedule("ingestion", cronExpression, func(ctx context.Context) error {
		m, err := ingester.Ingest(ctx, source)
		if err != nil {
			return err
		}
		s.logger.WithField("job", "ingestion").Info(m.String())
		return nil
	})
}

// SchedulePrediction schedules a periodic rebuild and scoring of the fixtures from source
func (s *Scheduler) SchedulePrediction(cronExpression string, refresher Refresher, source datasource.FixtureSource) (cron.EntryID, error) {
	return s.schedule("prediction", cronExpression, func(ctx context.Context) error {
		run, err := refresher.RefreshAndPredict(ctx, source)
		if err != nil {
			return err
		}
		s.logger.WithFields(logrus.Fields{
			"job":         "prediction",
			"run_id":      run.ID.String(),
			"available":   run.Available,
			"unavailable": run.Unavailable,
		}).Info("Scheduled prediction completed")
		return nil
	})
}

func (s *Scheduler) schedule(name, cronExpression string, job func(ctx context.Context) error) (cron.EntryID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return 0, fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()

		start := time.Now()
		s.logger.WithField("job", name).Info("Starting scheduled job")
		if err := job(ctx); err != nil {
			s.logger.WithField("job", name).WithError(err).Error("Scheduled job failed")
			return
		}
		s.logger.WithFields(logrus.Fields{"job": name, "duration_ms": time.Since(start).Milliseconds()}).Info("Scheduled job finished")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return 0, fmt.Errorf("failed to add %s job: %w", name, err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{"job": name, "cron": cronExpression}).Info("Scheduled job")

	return entryID, nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop stops the scheduler, waiting up to the graceful timeout for running jobs
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.isRunning = false
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return fmt.Errorf("scheduler stop timed out after %v", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			nextTime := entry.Next
			if nextRun.IsZero() || nextTime.Before(nextRun) {
				nextRun = nextTime
			}
		}
	}

	return nextRun
}

// RunJob runs a scheduled job immediately, outside its schedule
func (s *Scheduler) RunJob(jobID cron.EntryID) error {
	s.mu.RLock()
	entry := s.cron.Entry(jobID)
	s.mu.RUnlock()

	if !entry.Valid() {
		return fmt.Errorf("job %d not found", jobID)
	}
	entry.Job.Run()
	return nil
}

// RemoveJob removes a scheduled job
func (s *Scheduler) RemoveJob(jobID cron.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot remove job while scheduler is running")
	}

	s.cron.Remove(jobID)
	for i, id := range s.jobIDs {
		if id == jobID {
			s.jobIDs = append(s.jobIDs[:i], s.jobIDs[i+1:]...)
			break
		}
	}
	s.logger.WithField("job_id", jobID).Info("Removed job")

	return nil
}
