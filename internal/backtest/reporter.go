package backtest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GenerateConsoleReport formats a run for terminal output
func GenerateConsoleReport(result *Result) string {
	var builder strings.Builder
	builder.WriteString("Backtest Report\n")
	builder.WriteString("================\n")
	builder.WriteString(fmt.Sprintf("Run: %s (%s)\n", result.ID, result.Method))
	builder.WriteString(fmt.Sprintf("Model Version: %s\n", result.ModelVersion))
	builder.WriteString(fmt.Sprintf("Test Period: %s to %s\n", result.StartDate.Format("2006-01-02"), result.EndDate.Format("2006-01-02")))
	builder.WriteString(fmt.Sprintf("Examples: %d train / %d test\n", result.TrainExamples, result.TestExamples))
	builder.WriteString(fmt.Sprintf("Accuracy: %.2f%%\n", result.Test.Accuracy*100))
	builder.WriteString(fmt.Sprintf("Brier Score: %.4f (skill %.3f vs base rate %.3f)\n", result.Test.BrierScore, result.Test.BrierSkill(), result.Test.BaseRate))
	builder.WriteString(fmt.Sprintf("Log Loss: %.4f\n", result.Test.LogLoss))
	builder.WriteString(fmt.Sprintf("Calibration Error: %.4f\n", result.Test.ExpectedCalibrationError()))
	builder.WriteString(fmt.Sprintf("Fixtures: %d paired, %d unpaired\n", result.Fixtures.Fixtures, result.Fixtures.Unpaired))
	builder.WriteString(fmt.Sprintf("Fixture Accuracy: %.2f%%\n", result.Fixtures.Accuracy*100))
	builder.WriteString(fmt.Sprintf("Fixture Brier Score: %.4f\n", result.Fixtures.BrierScore))

	builder.WriteString("\nCalibration\n")
	for _, b := range result.Test.Calibration {
		if b.Count == 0 {
			continue
		}
		builder.WriteString(fmt.Sprintf("  %.1f-%.1f  n=%-5d predicted=%.3f observed=%.3f\n",
			b.Lower, b.Upper, b.Count, b.MeanPredicted, b.ObservedRate))
	}

	if wf := result.WalkForward; wf != nil {
		builder.WriteString("\nWalk-Forward\n")
		builder.WriteString(fmt.Sprintf("Windows: %d\n", len(wf.Windows)))
		builder.WriteString(fmt.Sprintf("Accuracy: %.2f%%\n", wf.AggregatedMetrics.Accuracy*100))
		builder.WriteString(fmt.Sprintf("Brier Score: %.4f\n", wf.AggregatedMetrics.BrierScore))
		builder.WriteString(fmt.Sprintf("Consistency: %.2f\n", wf.ConsistencyScore))
	}
	return builder.String()
}

// GenerateCSVExport exports key metrics for spreadsheets
func GenerateCSVExport(result *Result, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	csv := "metric,value\n" +
		fmt.Sprintf("accuracy,%.4f\n", result.Test.Accuracy) +
		fmt.Sprintf("brier_score,%.4f\n", result.Test.BrierScore) +
		fmt.Sprintf("log_loss,%.4f\n", result.Test.LogLoss) +
		fmt.Sprintf("calibration_error,%.4f\n", result.Test.ExpectedCalibrationError()) +
		fmt.Sprintf("fixture_accuracy,%.4f\n", result.Fixtures.Accuracy) +
		fmt.Sprintf("fixture_brier_score,%.4f\n", result.Fixtures.BrierScore) +
		fmt.Sprintf("test_examples,%d\n", result.TestExamples)
	return os.WriteFile(outputPath, []byte(csv), 0o644)
}
