package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/nba-oracle/internal/datasource"
	"github.com/yourusername/nba-oracle/internal/service"
)

var ingestFile string

func init() {
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "Game log CSV to load (defaults to data.games_csv)")
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load a league game log into the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := oracle.connect(ctx); err != nil {
			return err
		}

		factory := datasource.NewFactory(oracle.cfg.Data, oracle.repos.Games, oracle.logger)
		ingestion := oracle.ingestionService()

		m, err := ingestion.Ingest(ctx, factory.IngestSource(ingestFile))
		if err != nil {
			return fmt.Errorf("ingestion failed: %w", err)
		}
		fmt.Println(m.String())

		stored, err := oracle.repos.Games.Count(ctx)
		if err != nil {
			return err
		}
		latest, err := oracle.repos.Games.LatestGameDate(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%d game rows stored, latest game on %s\n", stored, latest.Format("2006-01-02"))
		return nil
	},
}

func (a *app) ingestionService() *service.IngestionService {
	return service.NewIngestionService(
		a.repos.Games,
		service.NewDataValidator(a.logger),
		service.NewDataNormalizer(a.logger),
		a.logger,
		a.cfg.Data.IngestBatchSize,
	)
}
