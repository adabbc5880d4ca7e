package main

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/nba-oracle/internal/backtest"
	"github.com/yourusername/nba-oracle/internal/logger"
)

var (
	walkForward bool
	persistRun  bool
	outputDir   string
)

func init() {
	f := backtestCmd.Flags()
	f.BoolVar(&walkForward, "walk-forward", true, "Also evaluate rolling train/test windows")
	f.BoolVar(&persistRun, "persist", false, "Store the run summary in the database (also enabled by backtest.persist_results)")
	f.StringVarP(&outputDir, "output", "o", "", "Directory for the JSON and CSV reports (defaults to backtest.output_path)")
}

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Evaluate the predictor on the most recent games",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		btConfig, err := backtest.FromConfig(&oracle.cfg.Backtest)
		if err != nil {
			return err
		}
		if outputDir != "" {
			btConfig.OutputPath = outputDir
		}

		ds, _, err := oracle.buildDataset(ctx)
		if err != nil {
			return err
		}
		pred, err := oracle.predictor(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = pred.Close() }()
		agg, err := oracle.aggregator()
		if err != nil {
			return err
		}

		engine, err := backtest.NewEngine(btConfig, pred.Predictor, agg, pred.ModelVersion, oracle.logger)
		if err != nil {
			return err
		}

		examples := ds.Examples()
		result, err := engine.Run(ctx, examples)
		if err != nil {
			return err
		}
		if walkForward {
			wf, err := engine.RunWalkForward(ctx, examples, btConfig.WalkForward())
			if err != nil {
				oracle.logger.WithError(err).Warn("Walk-forward evaluation skipped")
			} else {
				result.WalkForward = &wf
			}
		}

		fmt.Print(backtest.GenerateConsoleReport(result))

		base := filepath.Join(btConfig.OutputPath, "backtest_"+result.ID.String())
		if err := backtest.ExportToJSON(result, base+".json"); err != nil {
			return fmt.Errorf("failed to export results: %w", err)
		}
		if err := backtest.GenerateCSVExport(result, base+".csv"); err != nil {
			return fmt.Errorf("failed to export metrics: %w", err)
		}
		oracle.logger.WithField("path", base+".json").Info("Backtest results exported")

		if persistRun || btConfig.PersistResults {
			if err := oracle.connect(ctx); err != nil {
				return err
			}
			if _, err := backtest.ExportToDatabase(ctx, result, oracle.repos.BacktestRuns); err != nil {
				return fmt.Errorf("failed to persist backtest run: %w", err)
			}
		}

		logger.NewAuditLogger(oracle.logger).LogBacktestRun(result.ID.String(), result.Method, result.TestExamples, result.Test.Accuracy, result.Test.BrierScore)
		oracle.logger.WithFields(logrus.Fields{
			"run_id":    result.ID.String(),
			"persisted": persistRun || btConfig.PersistResults,
		}).Debug("Backtest finished")
		return nil
	},
}
