package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/nba-oracle/internal/models"
	"github.com/yourusername/nba-oracle/internal/predictor"
	"github.com/yourusername/nba-oracle/internal/service"
)

var (
	fixturesFile  string
	fixtureHome   string
	fixtureAway   string
	fixtureDate   string
	keyPlayersOut []string
	storeRun      bool
	jsonOutput    bool
)

func init() {
	f := predictCmd.Flags()
	f.StringVar(&fixturesFile, "fixtures", "", "Fixtures CSV to score (defaults to data.fixtures_csv)")
	f.StringVar(&fixtureHome, "home", "", "Home team id of a single fixture")
	f.StringVar(&fixtureAway, "away", "", "Away team id of a single fixture")
	f.StringVar(&fixtureDate, "date", "", "Date of a single fixture (YYYY-MM-DD, defaults to today)")
	f.StringSliceVar(&keyPlayersOut, "key-player-out", nil, "Team ids missing a key player, applied to every fixture they play")
	f.BoolVar(&storeRun, "store", false, "Persist the predictions in the database")
	f.BoolVar(&jsonOutput, "json", false, "Print predictions as JSON")
	predictCmd.MarkFlagsRequiredTogether("home", "away")
	predictCmd.MarkFlagsMutuallyExclusive("fixtures", "home")
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Price upcoming fixtures",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		ds, _, err := oracle.buildDataset(ctx)
		if err != nil {
			return err
		}
		fixtures, err := loadFixtures(ctx)
		if err != nil {
			return err
		}
		applyKeyPlayersOut(fixtures, keyPlayersOut)

		svc, err := oracle.predictionService(ctx, storeRun)
		if err != nil {
			return err
		}
		defer svc.close()

		run, err := svc.PredictFixtures(ctx, ds, fixtures)
		if err != nil {
			return err
		}
		return printRun(run)
	},
}

func loadFixtures(ctx context.Context) ([]models.Fixture, error) {
	if fixtureHome != "" {
		date := models.DateOnly(time.Now().UTC())
		if fixtureDate != "" {
			d, err := time.Parse("2006-01-02", fixtureDate)
			if err != nil {
				return nil, fmt.Errorf("invalid --date %q: %w", fixtureDate, err)
			}
			date = d
		}
		return []models.Fixture{{GameDate: date, HomeTeamID: fixtureHome, AwayTeamID: fixtureAway}}, nil
	}

	factory, err := oracle.sources(ctx)
	if err != nil {
		return nil, err
	}
	src, err := factory.FixtureSource(fixturesFile)
	if err != nil {
		return nil, err
	}
	return src.LoadFixtures(ctx)
}

func applyKeyPlayersOut(fixtures []models.Fixture, teams []string) {
	out := make(map[string]bool, len(teams))
	for _, t := range teams {
		out[t] = true
	}
	for i := range fixtures {
		if out[fixtures[i].HomeTeamID] {
			fixtures[i].Overrides.HomeKeyPlayerOut = true
		}
		if out[fixtures[i].AwayTeamID] {
			fixtures[i].Overrides.AwayKeyPlayerOut = true
		}
	}
}

// predictionService keeps the predictor next to the service so it can be health checked and closed
type predictionService struct {
	*service.PredictionService
	pred   *predictor.Service
	logger *logrus.Logger
}

func (s *predictionService) close() {
	if err := s.pred.Close(); err != nil {
		s.logger.WithError(err).Warn("Failed to close predictor")
	}
}

func (a *app) predictionService(ctx context.Context, store bool, opts ...service.PredictionOption) (*predictionService, error) {
	pred, err := a.predictor(ctx)
	if err != nil {
		return nil, err
	}
	agg, err := a.aggregator()
	if err != nil {
		_ = pred.Close()
		return nil, err
	}
	if store {
		if err := a.connect(ctx); err != nil {
			_ = pred.Close()
			return nil, err
		}
		opts = append(opts, service.WithStore(a.repos.Predictions))
	}

	return &predictionService{
		PredictionService: service.NewPredictionService(pred.Predictor, agg, pred.ModelVersion, a.logger, opts...),
		pred:              pred,
		logger:            a.logger,
	}, nil
}

func printRun(run *service.PredictionRun) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run.Predictions)
	}

	fmt.Printf("Run %s, model %s: %d available, %d unavailable\n\n", run.ID, run.ModelVersion, run.Available, run.Unavailable)
	fmt.Printf("%-10s  %-12s  %-12s  %8s  %9s  %9s\n", "DATE", "HOME", "AWAY", "P(HOME)", "HOME ODDS", "AWAY ODDS")
	for _, p := range run.Predictions {
		date := p.GameDate.Format("2006-01-02")
		if !p.IsAvailable() {
			fmt.Printf("%-10s  %-12s  %-12s  unavailable: %s\n", date, p.HomeTeamID, p.AwayTeamID, p.Reason)
			continue
		}
		fmt.Printf("%-10s  %-12s  %-12s  %8.3f  %9s  %9s%s\n",
			date, p.HomeTeamID, p.AwayTeamID, *p.HomeWinProb,
			p.HomeFairOdds.StringFixed(2), p.AwayFairOdds.StringFixed(2), overrideNote(p))
	}
	return nil
}

func overrideNote(p *models.FixturePrediction) string {
	switch {
	case p.HomeKeyPlayerOut && p.AwayKeyPlayerOut:
		return "  (both sides missing a key player)"
	case p.HomeKeyPlayerOut:
		return "  (home missing a key player)"
	case p.AwayKeyPlayerOut:
		return "  (away missing a key player)"
	}
	return ""
}
