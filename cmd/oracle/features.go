package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var featuresOutput string

func init() {
	featuresCmd.Flags().StringVarP(&featuresOutput, "output", "o", "", "Training table CSV to write (defaults to data.features_csv)")
}

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Rate the game log and export the training table",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := featuresOutput
		if path == "" {
			path = oracle.cfg.Data.FeaturesCSV
		}
		if path == "" {
			return fmt.Errorf("no output path: pass --output or set data.features_csv")
		}

		ds, builder, err := oracle.buildDataset(cmd.Context())
		if err != nil {
			return err
		}
		if err := builder.ExportFile(path, ds); err != nil {
			return err
		}

		fmt.Printf("Rated %d rows for %d teams, wrote %d training examples to %s\n",
			len(ds.Rated), ds.Report.Teams, len(ds.Examples()), path)
		return nil
	},
}
