package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/nba-oracle/internal/datasource"
	"github.com/yourusername/nba-oracle/internal/health"
	"github.com/yourusername/nba-oracle/internal/metrics"
	"github.com/yourusername/nba-oracle/internal/scheduler"
	"github.com/yourusername/nba-oracle/internal/service"
	"github.com/yourusername/nba-oracle/internal/stream"
)

// readiness fails once scheduled refreshes have stopped producing a fresh dataset
const maxDatasetAge = 48 * time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduled ingestion and prediction with health, metrics and the live feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	cfg := oracle.cfg
	log := oracle.logger

	if oracle.needsDatabase() || cfg.Schedule.Enabled {
		if err := oracle.connect(ctx); err != nil {
			return err
		}
	}
	factory, err := oracle.sources(ctx)
	if err != nil {
		return err
	}

	var opts []service.PredictionOption
	var hub *stream.Hub
	if cfg.Stream.Enabled {
		hub = stream.NewHub(cfg.Stream, log)
		go hub.Run(ctx)
		opts = append(opts, service.WithPublisher(hub))
	}

	predictions, err := oracle.predictionService(ctx, oracle.db != nil, opts...)
	if err != nil {
		return err
	}
	defer predictions.close()

	games, err := factory.GameSource()
	if err != nil {
		return err
	}
	builder, err := service.NewDatasetBuilder(cfg.Pipeline, log)
	if err != nil {
		return err
	}
	oracleSvc := service.NewOracle(games, builder, predictions.PredictionService, log)

	healthCfg := health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Port:        strconv.Itoa(cfg.Health.Port),
		Logger:      log,
		Predictor:   predictions.pred,
		DatasetBuiltAt: func() time.Time {
			if ds := oracleSvc.Dataset(); ds != nil {
				return ds.BuiltAt
			}
			return time.Time{}
		},
	}
	if oracle.db != nil {
		healthCfg.DB = oracle.db
	}
	sched := scheduler.NewScheduler(log)
	if cfg.Schedule.Enabled {
		healthCfg.MaxDatasetAge = maxDatasetAge
	}
	server := health.NewServer(healthCfg)
	if cfg.Schedule.Enabled {
		server.AddCheck("scheduler", func(ctx context.Context) error {
			if !sched.IsRunning() {
				return errors.New("scheduler stopped")
			}
			return nil
		})
	}
	if hub != nil {
		server.Handle(cfg.Stream.Path, hub)
	}
	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port == 0 || cfg.Metrics.Port == cfg.Health.Port {
			server.Handle(cfg.Metrics.Path, metrics.Handler())
		} else {
			go serveMetrics(ctx, cfg.Metrics.Port, cfg.Metrics.Path, log)
		}
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}

	if _, err := oracleSvc.Rebuild(ctx); err != nil {
		log.WithError(err).Warn("Initial dataset build failed; predictions wait for the next refresh")
	}
	server.SetReady(true)

	if cfg.Schedule.Enabled {
		if err := scheduleJobs(sched, factory, oracleSvc, cfg.Schedule.IngestCron, cfg.Schedule.PredictCron); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
		log.WithField("next_run", sched.GetNextRun()).Info("Scheduler running")
	}

	log.WithFields(logrus.Fields{
		"health_port": cfg.Health.Port,
		"stream":      cfg.Stream.Enabled,
		"schedule":    cfg.Schedule.Enabled,
	}).Info("Oracle serving")

	<-ctx.Done()
	log.Info("Shutdown signal received")
	server.SetReady(false)

	if err := sched.Stop(); err != nil {
		log.WithError(err).Error("Scheduler did not stop cleanly")
	}
	if err := server.Shutdown(); err != nil {
		log.WithError(err).Error("Health server did not stop cleanly")
	}
	return nil
}

func scheduleJobs(sched *scheduler.Scheduler, factory *datasource.Factory, refresher scheduler.Refresher, ingestCron, predictCron string) error {
	if oracle.repos != nil && ingestCron != "" {
		if _, err := sched.ScheduleIngestion(ingestCron, oracle.ingestionService(), factory.IngestSource("")); err != nil {
			return err
		}
	}
	if predictCron != "" {
		fixtures, err := factory.FixtureSource("")
		if err != nil {
			return err
		}
		if _, err := sched.SchedulePrediction(predictCron, refresher, fixtures); err != nil {
			return err
		}
	}
	return nil
}

func serveMetrics(ctx context.Context, port int, path string, log *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle(path, metrics.Handler())
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.WithField("port", port).Info("Metrics server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("Metrics server error")
	}
}
