// Package main provides the oracle command line tool.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/nba-oracle/internal/aggregator"
	"github.com/yourusername/nba-oracle/internal/config"
	"github.com/yourusername/nba-oracle/internal/database"
	"github.com/yourusername/nba-oracle/internal/datasource"
	"github.com/yourusername/nba-oracle/internal/logger"
	"github.com/yourusername/nba-oracle/internal/metrics"
	"github.com/yourusername/nba-oracle/internal/models"
	"github.com/yourusername/nba-oracle/internal/predictor"
	"github.com/yourusername/nba-oracle/internal/repository"
	"github.com/yourusername/nba-oracle/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var configFile string

// app holds what every command shares once configuration is loaded
type app struct {
	cfg    *config.Config
	logger *logrus.Logger
	db     *database.DB
	repos  *repository.Repositories
}

var oracle = &app{}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(ingestCmd, featuresCmd, predictCmd, backtestCmd, serveCmd)
}

var rootCmd = &cobra.Command{
	Use:     "oracle",
	Short:   "NBA game outcome oracle",
	Long:    `Rates teams from a league game log, derives rolling features and prices upcoming fixtures.`,
	Version: fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := oracle.loadConfig(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		oracle.close()
	},
	SilenceUsage: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		oracle.close()
		stop()
		log.Fatalf("Error: %v", err)
	}
}

func (a *app) loadConfig(ctx context.Context) error {
	cfg, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	if err := config.ApplySecretsFromEnv(ctx, cfg); err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger.NewLoggerForEnvironment(cfg.App.LogLevel, cfg.App.Environment)
	metrics.InitRegistry()
	a.logger.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
	}).Debug("Configuration loaded")
	return nil
}

// connect opens the database once and builds the repositories
func (a *app) connect(ctx context.Context) error {
	if a.db != nil {
		return nil
	}
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := database.Initialize(connectCtx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	repos, err := repository.NewRepositories(db)
	if err != nil {
		db.Close()
		return err
	}
	a.db = db
	a.repos = repos
	a.logger.Info("Database connection established")
	return nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
}

// needsDatabase reports whether history is read from Postgres
func (a *app) needsDatabase() bool {
	return a.cfg.Data.Source == string(datasource.DatabaseSourceType)
}

// sources builds the data source factory, connecting first when history lives in Postgres
func (a *app) sources(ctx context.Context) (*datasource.Factory, error) {
	if a.needsDatabase() {
		if err := a.connect(ctx); err != nil {
			return nil, err
		}
	}
	var games datasource.GameRowLister
	if a.repos != nil {
		games = a.repos.Games
	}
	return datasource.NewFactory(a.cfg.Data, games, a.logger), nil
}

// predictor builds the configured predictor and checks its feature order
func (a *app) predictor(ctx context.Context) (*predictor.Service, error) {
	svc, err := predictor.NewFromConfig(a.cfg, a.logger)
	if err != nil {
		return nil, err
	}
	if a.cfg.Predictor.VerifySchema {
		verifyCtx, cancel := context.WithTimeout(ctx, a.cfg.PredictorTimeout())
		defer cancel()
		info, err := svc.VerifySchema(verifyCtx)
		ok := err == nil
		if info != nil {
			logger.NewAuditLogger(a.logger).LogSchemaCheck(svc.ModelVersion, models.FeatureNames(), info.FeatureNames, ok)
		}
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("predictor schema check failed: %w", err)
		}
	}
	return svc, nil
}

func (a *app) aggregator() (*aggregator.Aggregator, error) {
	return aggregator.New(service.AggregatorConfig(a.cfg.Aggregator))
}

// buildDataset loads the full history and runs the rating and feature pipeline over it
func (a *app) buildDataset(ctx context.Context) (*service.Dataset, *service.DatasetBuilder, error) {
	factory, err := a.sources(ctx)
	if err != nil {
		return nil, nil, err
	}
	src, err := factory.GameSource()
	if err != nil {
		return nil, nil, err
	}
	rows, err := src.LoadGames(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load games from %s: %w", src.Name(), err)
	}
	builder, err := service.NewDatasetBuilder(a.cfg.Pipeline, a.logger)
	if err != nil {
		return nil, nil, err
	}
	ds, err := builder.Build(rows)
	if err != nil {
		return nil, nil, err
	}
	return ds, builder, nil
}
